package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Queue внутрипроцессная очередь уведомлений с пулом воркеров.
// Dispatch никогда не блокирует: при переполненном буфере сообщение отбрасывается.
type Queue struct {
	sender      Sender
	messages    chan Message
	done        chan struct{}
	mu          sync.RWMutex // stopped и закрытие done под Lock, постановка в буфер под RLock
	stopped     bool
	stopOnce    sync.Once
	wg          sync.WaitGroup
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewQueue создаёт очередь с буфером size
func NewQueue(sender Sender, size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		sender:      sender,
		messages:    make(chan Message, size),
		done:        make(chan struct{}),
		sendTimeout: DefaultSendTimeout,
		logger:      logger,
	}
}

// Start запускает воркеры
func (q *Queue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	q.logger.Info("Starting notification queue", zap.Int("workers", workers), zap.Int("capacity", cap(q.messages)))

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
}

// Dispatch ставит сообщение в очередь.
// После Stop ни одно сообщение не попадёт в буфер, который уже никто не читает.
func (q *Queue) Dispatch(_ context.Context, msg Message) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		notificationsTotal.WithLabelValues(msg.Kind, "dropped").Inc()
		q.logger.Warn("Notification queue stopped, message dropped", zap.String("id", msg.ID.String()))
		return
	}

	select {
	case q.messages <- msg:
	default:
		notificationsTotal.WithLabelValues(msg.Kind, "dropped").Inc()
		q.logger.Warn("Notification queue is full, message dropped",
			zap.String("id", msg.ID.String()),
			zap.String("kind", msg.Kind))
	}
}

// Stop останавливает воркеры, предварительно отправив то, что уже в буфере
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.logger.Info("Stopping notification queue")
		q.mu.Lock()
		q.stopped = true
		close(q.done)
		q.mu.Unlock()
	})
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case msg := <-q.messages:
			deliver(q.sender, msg, q.sendTimeout, q.logger)
		case <-q.done:
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case msg := <-q.messages:
			deliver(q.sender, msg, q.sendTimeout, q.logger)
		default:
			return
		}
	}
}
