package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/notify"
	"github.com/Freeeeeet/advisory_service/internal/repository"
	"go.uber.org/zap"
)

// AdvisoryService ядро бронирования: заявки, переходы статусов, статистика
type AdvisoryService struct {
	users      repository.UserDirectory
	advisories repository.AdvisoryStore
	tx         repository.TxManager
	dispatcher notify.Dispatcher
	logger     *zap.Logger
}

func NewAdvisoryService(
	users repository.UserDirectory,
	advisories repository.AdvisoryStore,
	tx repository.TxManager,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) *AdvisoryService {
	return &AdvisoryService{
		users:      users,
		advisories: advisories,
		tx:         tx,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type CreateAdvisoryInput struct {
	ProgrammerID int64
	UserID       int64
	SlotID       *int64
	Message      string
	Date         *time.Time // по умолчанию дата слота
	Time         string     // по умолчанию начало слота
	Modality     string     // по умолчанию модальность слота
}

// CreateAdvisory бронирует слот и создаёт заявку в одной транзакции.
// Программист уведомляется после коммита, ошибка уведомления не влияет на результат.
func (s *AdvisoryService) CreateAdvisory(ctx context.Context, in CreateAdvisoryInput) (*model.Advisory, error) {
	if in.SlotID == nil || *in.SlotID <= 0 {
		return nil, newError(ErrInvalidArgument, "slot id must be provided for advisory creation")
	}
	slotID := *in.SlotID

	var (
		clock    string
		modality model.Modality
		err      error
	)
	if in.Time != "" {
		if clock, err = parseClock(in.Time); err != nil {
			return nil, err
		}
	}
	if in.Modality != "" {
		if modality, err = model.ParseModality(in.Modality); err != nil {
			return nil, newError(ErrInvalidArgument, "%v", err)
		}
	}

	programmer, err := s.resolve(ctx, in.ProgrammerID, "programmer")
	if err != nil {
		return nil, err
	}
	user, err := s.resolve(ctx, in.UserID, "user")
	if err != nil {
		return nil, err
	}

	var advisory *model.Advisory
	err = s.tx.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		slot, err := repos.Slots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return newError(ErrNotFound, "slot %d not found", slotID)
		}
		if slot.ProgrammerID != programmer.ID {
			return newError(ErrInvalidArgument, "slot %d does not belong to programmer %d", slotID, programmer.ID)
		}

		if err := repos.Slots.Book(ctx, slotID); err != nil {
			if errors.Is(err, repository.ErrSlotUnavailable) {
				return newError(ErrConflict, "slot %d is already booked", slotID)
			}
			return err
		}

		advisory = &model.Advisory{
			ProgrammerID: programmer.ID,
			UserID:       user.ID,
			SlotID:       &slotID,
			Status:       model.AdvisoryStatusPending,
			Message:      in.Message,
			Date:         slot.Date,
			Time:         slot.StartTime,
			Modality:     slot.Modality,
		}
		if in.Date != nil {
			advisory.Date = dateOnly(*in.Date)
		}
		if clock != "" {
			advisory.Time = clock
		}
		if modality != "" {
			advisory.Modality = modality
		}

		if err := repos.Advisories.Create(ctx, advisory); err != nil {
			if errors.Is(err, repository.ErrSlotUnavailable) {
				return newError(ErrConflict, "slot %d is already booked", slotID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			bookingsTotal.WithLabelValues("conflict").Inc()
		} else {
			bookingsTotal.WithLabelValues("failed").Inc()
		}
		return nil, err
	}
	bookingsTotal.WithLabelValues("created").Inc()

	advisory.ProgrammerName = programmer.Name
	advisory.UserName = user.Name

	s.logger.Info("Advisory created",
		zap.Int64("advisory_id", advisory.ID),
		zap.Int64("programmer_id", programmer.ID),
		zap.Int64("user_id", user.ID),
		zap.Int64("slot_id", slotID),
	)

	s.dispatcher.Dispatch(ctx, requestedMessage(programmer, user, advisory))

	return advisory, nil
}

// UpdateAdvisoryStatus переводит заявку по графу статусов.
// При отклонении слот освобождается в той же транзакции.
func (s *AdvisoryService) UpdateAdvisoryStatus(ctx context.Context, advisoryID int64, status string, responseMessage *string) (*model.Advisory, error) {
	advisory, err := s.GetByID(ctx, advisoryID)
	if err != nil {
		return nil, err
	}

	next, err := model.ParseAdvisoryStatus(status)
	if err != nil {
		return nil, newError(ErrInvalidArgument, "%v", err)
	}

	prev := advisory.Status
	if prev.IsTerminal() {
		return nil, newError(ErrConflict, "advisory %d is already %s", advisoryID, prev)
	}
	if !prev.CanTransitionTo(next) {
		return nil, newError(ErrConflict, "advisory %d cannot change from %s to %s", advisoryID, prev, next)
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if err := repos.Advisories.UpdateStatus(ctx, advisoryID, prev, next, responseMessage); err != nil {
			if errors.Is(err, repository.ErrStatusChanged) {
				return newError(ErrConflict, "advisory %d was modified concurrently", advisoryID)
			}
			return err
		}

		if next == model.AdvisoryStatusRejected && advisory.SlotID != nil {
			if err := repos.Slots.Release(ctx, *advisory.SlotID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	statusTransitionsTotal.WithLabelValues(string(prev), string(next)).Inc()

	advisory.Status = next
	advisory.ResponseMessage = responseMessage
	advisory.UpdatedAt = time.Now()

	s.logger.Info("Advisory status updated",
		zap.Int64("advisory_id", advisoryID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)

	s.notifyUser(ctx, advisory)

	return advisory, nil
}

// DeleteAdvisory удаляет заявку и освобождает слот, который она удерживала
func (s *AdvisoryService) DeleteAdvisory(ctx context.Context, advisoryID int64) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		advisory, err := repos.Advisories.GetByID(ctx, advisoryID)
		if err != nil {
			return fmt.Errorf("get advisory: %w", err)
		}
		if advisory == nil {
			return newError(ErrNotFound, "advisory %d not found", advisoryID)
		}

		if err := repos.Advisories.Delete(ctx, advisoryID); err != nil {
			if errors.Is(err, repository.ErrAdvisoryNotFound) {
				return newError(ErrNotFound, "advisory %d not found", advisoryID)
			}
			return err
		}

		// отклонённая заявка слот уже не держит
		if advisory.SlotID != nil && advisory.Status != model.AdvisoryStatusRejected {
			return repos.Slots.Release(ctx, *advisory.SlotID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Advisory deleted", zap.Int64("advisory_id", advisoryID))
	return nil
}

// GetStats статистика заявок участника в заданной роли
func (s *AdvisoryService) GetStats(ctx context.Context, partyID int64, role model.Role) (*model.AdvisoryStats, error) {
	party, err := s.resolve(ctx, partyID, "user")
	if err != nil {
		return nil, err
	}

	var advisories []*model.Advisory
	switch role {
	case model.RoleProgrammer:
		if !party.IsProgrammer() {
			return nil, newError(ErrForbidden, "user %d is not a programmer", partyID)
		}
		advisories, err = s.advisories.ListByProgrammer(ctx, partyID)
	case model.RoleUser:
		advisories, err = s.advisories.ListByUser(ctx, partyID)
	default:
		return nil, newError(ErrInvalidArgument, "unsupported stats role %q", role)
	}
	if err != nil {
		return nil, fmt.Errorf("list advisories: %w", err)
	}

	return model.ComputeStats(advisories), nil
}

func (s *AdvisoryService) GetProgrammerStats(ctx context.Context, programmerID int64) (*model.AdvisoryStats, error) {
	return s.GetStats(ctx, programmerID, model.RoleProgrammer)
}

func (s *AdvisoryService) GetUserStats(ctx context.Context, userID int64) (*model.AdvisoryStats, error) {
	return s.GetStats(ctx, userID, model.RoleUser)
}

// GetByID получает заявку по ID
func (s *AdvisoryService) GetByID(ctx context.Context, advisoryID int64) (*model.Advisory, error) {
	advisory, err := s.advisories.GetByID(ctx, advisoryID)
	if err != nil {
		return nil, fmt.Errorf("get advisory: %w", err)
	}
	if advisory == nil {
		return nil, newError(ErrNotFound, "advisory %d not found", advisoryID)
	}
	return advisory, nil
}

func (s *AdvisoryService) ListByProgrammer(ctx context.Context, programmerID int64) ([]*model.Advisory, error) {
	advisories, err := s.advisories.ListByProgrammer(ctx, programmerID)
	if err != nil {
		return nil, fmt.Errorf("list advisories by programmer: %w", err)
	}
	return advisories, nil
}

func (s *AdvisoryService) ListByUser(ctx context.Context, userID int64) ([]*model.Advisory, error) {
	advisories, err := s.advisories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list advisories by user: %w", err)
	}
	return advisories, nil
}

func (s *AdvisoryService) ListAll(ctx context.Context) ([]*model.Advisory, error) {
	advisories, err := s.advisories.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list advisories: %w", err)
	}
	return advisories, nil
}

// SendReminders напоминает обеим сторонам о принятых заявках на день day.
// Каждая заявка напоминается не больше одного раза, повторный запуск ничего не шлёт.
// Возвращает число поставленных в очередь уведомлений.
func (s *AdvisoryService) SendReminders(ctx context.Context, day time.Time) (int, error) {
	advisories, err := s.advisories.ListAcceptedOn(ctx, dateOnly(day))
	if err != nil {
		return 0, fmt.Errorf("list accepted advisories: %w", err)
	}

	sent := 0
	for _, a := range advisories {
		programmer, err := s.users.GetByID(ctx, a.ProgrammerID)
		if err != nil || programmer == nil {
			s.logger.Warn("Skipping reminder, programmer unresolved",
				zap.Int64("advisory_id", a.ID), zap.Error(err))
			continue
		}
		user, err := s.users.GetByID(ctx, a.UserID)
		if err != nil || user == nil {
			s.logger.Warn("Skipping reminder, user unresolved",
				zap.Int64("advisory_id", a.ID), zap.Error(err))
			continue
		}

		claimed, err := s.advisories.ClaimReminder(ctx, a.ID)
		if err != nil {
			s.logger.Warn("Skipping reminder, claim failed",
				zap.Int64("advisory_id", a.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		s.dispatcher.Dispatch(ctx, reminderMessage(programmer, user.Name, a))
		s.dispatcher.Dispatch(ctx, reminderMessage(user, programmer.Name, a))
		sent += 2
	}

	return sent, nil
}

func (s *AdvisoryService) resolve(ctx context.Context, id int64, who string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", who, err)
	}
	if u == nil {
		return nil, newError(ErrNotFound, "%s %d not found", who, id)
	}
	return u, nil
}

// notifyUser уведомляет автора заявки; ошибки только логируются
func (s *AdvisoryService) notifyUser(ctx context.Context, advisory *model.Advisory) {
	user, err := s.users.GetByID(ctx, advisory.UserID)
	if err != nil || user == nil {
		s.logger.Warn("Cannot notify user about advisory update",
			zap.Int64("advisory_id", advisory.ID),
			zap.Int64("user_id", advisory.UserID),
			zap.Error(err))
		return
	}

	s.dispatcher.Dispatch(ctx, statusChangedMessage(user, advisory))
}
