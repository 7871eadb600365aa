package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type telegramClient interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSender дублирует уведомления в служебный чат Telegram
type TelegramSender struct {
	client telegramClient
	chatID int64
}

func NewTelegramSender(client telegramClient, chatID int64) *TelegramSender {
	return &TelegramSender{client: client, chatID: chatID}
}

func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	text := fmt.Sprintf("📩 %s\nTo: %s\n\n%s", msg.Subject, msg.To, msg.Body)

	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
