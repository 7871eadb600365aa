package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Freeeeeet/advisory_service/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Служебные команды:\n\n" +
	"/stats <id> - Статистика заявок программиста\n" +
	"/slots <id> - Свободные слоты программиста\n" +
	"/pending <id> - Заявки, ожидающие ответа\n" +
	"/help - Показать эту справку"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"👋 Бот сервиса консультаций.\n\nСюда приходят копии уведомлений.\n\n"+helpText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleStats обрабатывает команду /stats <id>
func (h *Handlers) HandleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	programmerID, ok := parseIDArg(update.Message.Text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Использование: /stats <id программиста>")
		return
	}

	stats, err := h.advisories.GetProgrammerStats(ctx, programmerID)
	if err != nil {
		h.replyFailure(ctx, b, chatID, "stats", err)
		return
	}

	h.sendMessage(ctx, b, chatID, FormatStats(programmerID, stats))
}

// HandleSlots обрабатывает команду /slots <id>
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	programmerID, ok := parseIDArg(update.Message.Text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Использование: /slots <id программиста>")
		return
	}

	slots, err := h.slots.ListAvailable(ctx, programmerID)
	if err != nil {
		h.replyFailure(ctx, b, chatID, "slots", err)
		return
	}

	h.sendMessage(ctx, b, chatID, FormatSlots(slots))
}

// HandlePending обрабатывает команду /pending <id>
func (h *Handlers) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	programmerID, ok := parseIDArg(update.Message.Text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Использование: /pending <id программиста>")
		return
	}

	advisories, err := h.advisories.ListByProgrammer(ctx, programmerID)
	if err != nil {
		h.replyFailure(ctx, b, chatID, "pending", err)
		return
	}

	h.sendMessage(ctx, b, chatID, FormatPending(advisories))
}

func (h *Handlers) replyFailure(ctx context.Context, b *bot.Bot, chatID int64, command string, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		h.sendError(ctx, b, chatID, "❌ "+svcErr.Msg)
		return
	}

	h.logger.Error("Command failed", zap.String("command", command), zap.Error(err))
	h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
}

// parseIDArg достаёт числовой аргумент команды: "/stats 42" -> 42
func parseIDArg(text string) (int64, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
