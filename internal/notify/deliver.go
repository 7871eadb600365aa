package notify

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const DefaultSendTimeout = 15 * time.Second

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "advisory_notifications_total",
		Help: "Notifications processed by result",
	},
	[]string{"kind", "result"},
)

// deliver отправляет сообщение с собственным таймаутом, отвязанным от запроса,
// и поглощает ошибку
func deliver(sender Sender, msg Message, timeout time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := sender.Send(ctx, msg)
	switch {
	case err == nil:
		notificationsTotal.WithLabelValues(msg.Kind, "sent").Inc()
		logger.Debug("Notification sent",
			zap.String("id", msg.ID.String()),
			zap.String("kind", msg.Kind))
	case errors.Is(err, ErrUndeliverable):
		notificationsTotal.WithLabelValues(msg.Kind, "skipped").Inc()
		logger.Warn("Notification skipped, recipient is not deliverable",
			zap.String("id", msg.ID.String()),
			zap.String("to", msg.To))
	default:
		notificationsTotal.WithLabelValues(msg.Kind, "failed").Inc()
		logger.Error("Failed to send notification",
			zap.String("id", msg.ID.String()),
			zap.String("kind", msg.Kind),
			zap.String("to", msg.To),
			zap.Error(err))
	}
}
