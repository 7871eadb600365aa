package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/api"
	"github.com/Freeeeeet/advisory_service/internal/config"
	"github.com/Freeeeeet/advisory_service/internal/controller"
	"github.com/Freeeeeet/advisory_service/internal/notify"
	"github.com/Freeeeeet/advisory_service/internal/repository"
	"github.com/Freeeeeet/advisory_service/internal/service"
	"github.com/go-telegram/bot"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App собранное приложение: HTTP API, очередь уведомлений, планировщик, бот
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool

	http      *fiber.App
	scheduler *Scheduler
	bot       *controller.BotController

	queue      *notify.Queue
	natsConn   *nats.Conn
	natsWorker *notify.NatsWorker
}

// Connect открывает пул соединений и проверяет доступность базы
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// New связывает хранилища, сервисы и транспорты
func New(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, pool: pool}

	var botInstance *bot.Bot
	if cfg.TelegramEnabled() {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		botInstance = b
	}

	sender := a.buildSender(botInstance)

	dispatcher, err := a.buildDispatcher(sender)
	if err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(pool)
	slots := repository.NewSlotRepository(pool)
	advisories := repository.NewAdvisoryRepository(pool)
	txManager := repository.NewPostgresTxManager(pool)

	scheduleService := service.NewScheduleService(users, slots, txManager, logger.Named("schedule"))
	advisoryService := service.NewAdvisoryService(users, advisories, txManager, dispatcher, logger.Named("advisory"))

	a.http = api.NewRouter(advisoryService, scheduleService, logger.Named("http"))
	a.scheduler = NewScheduler(advisoryService, cfg.ReminderInterval, logger.Named("scheduler"))

	if botInstance != nil {
		a.bot = controller.NewBotController(botInstance, advisoryService, scheduleService, cfg.TelegramChatID, logger.Named("bot"))
		if err := a.bot.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands were not registered", zap.Error(err))
		}
	}

	return a, nil
}

func (a *App) buildSender(botInstance *bot.Bot) notify.Sender {
	var senders []notify.Sender

	if a.cfg.BrevoAPIKey != "" {
		senders = append(senders, notify.NewBrevoSender(a.cfg.BrevoAPIKey, a.cfg.BrevoSenderEmail, a.cfg.BrevoSenderName))
	}
	if botInstance != nil {
		senders = append(senders, notify.NewTelegramSender(botInstance, a.cfg.TelegramChatID))
	}

	if len(senders) == 0 {
		a.logger.Warn("No notification channel configured, notifications are only logged")
		return notify.NewLogSender(a.logger.Named("notify"))
	}
	return notify.NewMultiSender(senders...)
}

func (a *App) buildDispatcher(sender notify.Sender) (notify.Dispatcher, error) {
	if a.cfg.NatsURL == "" {
		a.queue = notify.NewQueue(sender, a.cfg.NotifyQueueSize, a.logger.Named("queue"))
		return a.queue, nil
	}

	conn, err := nats.Connect(a.cfg.NatsURL, nats.Name("advisory-service"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	a.natsConn = conn
	a.natsWorker = notify.NewNatsWorker(conn, a.cfg.NatsSubject, sender, a.logger.Named("nats"))

	a.logger.Info("Successfully connected to NATS", zap.String("url", a.cfg.NatsURL))
	return notify.NewNatsPublisher(conn, a.cfg.NatsSubject, a.logger.Named("nats")), nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливается
func (a *App) Run(ctx context.Context) error {
	if a.queue != nil {
		a.queue.Start(a.cfg.NotifyWorkers)
	}
	if a.natsWorker != nil {
		if err := a.natsWorker.Start(); err != nil {
			return err
		}
	}

	a.scheduler.Start(ctx)

	if a.bot != nil {
		go a.bot.Start(ctx)
	}

	listenErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.HTTPAddr))
		listenErr <- a.http.Listen(a.cfg.HTTPAddr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received")
	case err := <-listenErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	if err := a.http.ShutdownWithTimeout(shutdownTimeout); err != nil {
		a.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	a.scheduler.Stop()

	// очередь останавливается после HTTP, чтобы принятые заявки успели уведомить
	if a.queue != nil {
		a.queue.Stop()
	}
	if a.natsWorker != nil {
		if err := a.natsWorker.Stop(); err != nil {
			a.logger.Error("NATS worker drain failed", zap.Error(err))
		}
	}
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			a.logger.Error("NATS connection drain failed", zap.Error(err))
		}
	}

	a.logger.Info("Application stopped")
}
