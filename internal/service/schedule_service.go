package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/repository"
	"go.uber.org/zap"
)

type ScheduleService struct {
	users  repository.UserDirectory
	slots  repository.SlotStore
	tx     repository.TxManager
	logger *zap.Logger
}

func NewScheduleService(
	users repository.UserDirectory,
	slots repository.SlotStore,
	tx repository.TxManager,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		users:  users,
		slots:  slots,
		tx:     tx,
		logger: logger,
	}
}

type CreateSlotInput struct {
	ProgrammerID int64
	Date         time.Time
	Time         string
	EndTime      string // необязательно, по умолчанию Time + 1 час
	Modality     string // необязательно, по умолчанию VIRTUAL
}

// CreateSlot создаёт свободный слот программиста
func (s *ScheduleService) CreateSlot(ctx context.Context, in CreateSlotInput) (*model.Slot, error) {
	if in.Date.IsZero() {
		return nil, newError(ErrInvalidArgument, "slot date is required")
	}

	start, err := parseClock(in.Time)
	if err != nil {
		return nil, err
	}

	end := plusHour(start)
	if in.EndTime != "" {
		if end, err = parseClock(in.EndTime); err != nil {
			return nil, err
		}
		if end <= start {
			return nil, newError(ErrInvalidArgument, "slot end time %s must be after start time %s", end, start)
		}
	}

	modality := model.ModalityVirtual
	if in.Modality != "" {
		if modality, err = model.ParseModality(in.Modality); err != nil {
			return nil, newError(ErrInvalidArgument, "%v", err)
		}
	}

	programmer, err := s.users.GetByID(ctx, in.ProgrammerID)
	if err != nil {
		return nil, fmt.Errorf("get programmer: %w", err)
	}
	if programmer == nil {
		return nil, newError(ErrNotFound, "programmer %d not found", in.ProgrammerID)
	}

	date := dateOnly(in.Date)
	slot := &model.Slot{
		ProgrammerID:   programmer.ID,
		ProgrammerName: programmer.Name,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		DayOfWeek:      date.Weekday(),
		Modality:       modality,
		Status:         model.SlotStatusAvailable,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("programmer_id", slot.ProgrammerID),
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("time", start),
	)

	return slot, nil
}

// ListAvailable свободные слоты программиста
func (s *ScheduleService) ListAvailable(ctx context.Context, programmerID int64) ([]*model.Slot, error) {
	slots, err := s.slots.ListAvailableByProgrammer(ctx, programmerID)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}

// ListAll все слоты
func (s *ScheduleService) ListAll(ctx context.Context) ([]*model.Slot, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// DeleteSlot удаляет слот. Забронированный слот удалить нельзя:
// сначала заявку нужно отклонить, иначе она останется без слота.
func (s *ScheduleService) DeleteSlot(ctx context.Context, slotID int64) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		slot, err := repos.Slots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return newError(ErrNotFound, "slot %d not found", slotID)
		}
		if !slot.IsAvailable() {
			return newError(ErrConflict, "slot %d is booked, reject its advisory before deleting", slotID)
		}

		if err := repos.Slots.DeleteAvailable(ctx, slotID); err != nil {
			if errors.Is(err, repository.ErrSlotUnavailable) {
				return newError(ErrConflict, "slot %d was booked concurrently", slotID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Slot deleted", zap.Int64("slot_id", slotID))
	return nil
}
