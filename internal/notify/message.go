// Package notify доставляет уведомления о заявках по принципу fire-and-forget:
// ошибки отправки логируются и никогда не возвращаются в процесс бронирования.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrUndeliverable адрес пустой или тестовый, отправка пропущена
var ErrUndeliverable = errors.New("recipient address is not deliverable")

// Message одно уведомление одному получателю
type Message struct {
	ID      uuid.UUID `json:"id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Kind    string    `json:"kind"`
}

// NewMessage создаёт уведомление с новым идентификатором
func NewMessage(kind, to, subject, body string) Message {
	return Message{
		ID:      uuid.New(),
		To:      to,
		Subject: subject,
		Body:    body,
		Kind:    kind,
	}
}

// Sender доставляет сообщение по одному каналу
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher ставит сообщение в очередь и не блокирует вызывающего
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message)
}

// IsDeliverable отсекает пустые и заглушечные адреса вида *@example.com
func IsDeliverable(addr string) bool {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" || !strings.Contains(addr, "@") {
		return false
	}
	return !strings.Contains(addr, "example.com")
}
