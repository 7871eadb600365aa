package handlers

import (
	"context"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"go.uber.org/zap"
)

// AdvisoryReader чтение заявок и статистики для служебных команд
type AdvisoryReader interface {
	GetProgrammerStats(ctx context.Context, programmerID int64) (*model.AdvisoryStats, error)
	ListByProgrammer(ctx context.Context, programmerID int64) ([]*model.Advisory, error)
}

// SlotReader чтение свободных слотов
type SlotReader interface {
	ListAvailable(ctx context.Context, programmerID int64) ([]*model.Slot, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	advisories AdvisoryReader
	slots      SlotReader
	opsChatID  int64
	logger     *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(advisories AdvisoryReader, slots SlotReader, opsChatID int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		advisories: advisories,
		slots:      slots,
		opsChatID:  opsChatID,
		logger:     logger,
	}
}
