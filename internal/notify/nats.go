package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	DefaultNatsSubject = "advisory.notifications"
	natsQueueGroup     = "advisory-notification-workers"
)

// NatsPublisher публикует уведомления в NATS; доставкой занимается NatsWorker
type NatsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewNatsPublisher(conn *nats.Conn, subject string, logger *zap.Logger) *NatsPublisher {
	return &NatsPublisher{conn: conn, subject: subject, logger: logger}
}

func (p *NatsPublisher) Dispatch(_ context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal notification", zap.Error(err))
		return
	}

	// Publish буферизуется клиентом и не ждёт сервер
	if err := p.conn.Publish(p.subject, data); err != nil {
		notificationsTotal.WithLabelValues(msg.Kind, "dropped").Inc()
		p.logger.Error("Failed to publish notification to NATS",
			zap.String("subject", p.subject),
			zap.String("id", msg.ID.String()),
			zap.Error(err))
		return
	}

	p.logger.Debug("Published notification to NATS",
		zap.String("subject", p.subject),
		zap.String("id", msg.ID.String()))
}

// NatsWorker читает уведомления из NATS в группе очереди и отправляет их
type NatsWorker struct {
	conn    *nats.Conn
	subject string
	sender  Sender
	sub     *nats.Subscription
	logger  *zap.Logger
}

func NewNatsWorker(conn *nats.Conn, subject string, sender Sender, logger *zap.Logger) *NatsWorker {
	return &NatsWorker{conn: conn, subject: subject, sender: sender, logger: logger}
}

// Start подписывается на subject
func (w *NatsWorker) Start() error {
	sub, err := w.conn.QueueSubscribe(w.subject, natsQueueGroup, w.handle)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.subject, err)
	}
	w.sub = sub

	w.logger.Info("Notification worker subscribed", zap.String("subject", w.subject))
	return nil
}

// Stop дожидается обработки уже полученных сообщений
func (w *NatsWorker) Stop() error {
	if w.sub == nil {
		return nil
	}
	return w.sub.Drain()
}

func (w *NatsWorker) handle(m *nats.Msg) {
	msg, err := decodeMessage(m.Data)
	if err != nil {
		w.logger.Error("Error unmarshalling notification", zap.Error(err))
		return
	}

	deliver(w.sender, msg, DefaultSendTimeout, w.logger)
}

func decodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode notification: %w", err)
	}
	return msg, nil
}
