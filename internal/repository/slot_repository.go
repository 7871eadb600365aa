package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.Querier) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

const slotSelect = `
		SELECT s.id, s.programmer_id, p.name, s.date,
		       to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
		       s.day_of_week, s.modality, s.status, s.created_at
		FROM schedules s
		JOIN users p ON p.id = s.programmer_id
`

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO schedules (programmer_id, date, start_time, end_time, day_of_week, modality, status)
		VALUES ($1, $2, $3::time, $4::time, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.ProgrammerID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		int(slot.DayOfWeek),
		slot.Modality,
		slot.Status,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := slotSelect + ` WHERE s.id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListAvailableByProgrammer получает свободные слоты программиста
func (r *SlotRepository) ListAvailableByProgrammer(ctx context.Context, programmerID int64) ([]*model.Slot, error) {
	query := slotSelect + `
		WHERE s.programmer_id = $1 AND s.status = 'AVAILABLE'
		ORDER BY s.date, s.start_time
	`

	rows, err := r.Query(ctx, query, programmerID)
	if err != nil {
		return nil, fmt.Errorf("get available slots: %w", err)
	}

	return collectSlots(rows)
}

// ListAll получает все слоты
func (r *SlotRepository) ListAll(ctx context.Context) ([]*model.Slot, error) {
	rows, err := r.Query(ctx, slotSelect+` ORDER BY s.date, s.start_time`)
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}

	return collectSlots(rows)
}

// Book бронирует слот: условный UPDATE, поэтому из конкурентных вызовов успешен только один
func (r *SlotRepository) Book(ctx context.Context, id int64) error {
	query := `
		UPDATE schedules
		SET status = 'BOOKED'
		WHERE id = $1 AND status = 'AVAILABLE'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("book slot: %w", err)
	}

	if affected == 0 {
		return ErrSlotUnavailable
	}

	return nil
}

// Release освобождает слот; повторный вызов ничего не меняет
func (r *SlotRepository) Release(ctx context.Context, id int64) error {
	query := `
		UPDATE schedules
		SET status = 'AVAILABLE'
		WHERE id = $1
	`

	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	return nil
}

// DeleteAvailable удаляет слот, только если он свободен
func (r *SlotRepository) DeleteAvailable(ctx context.Context, id int64) error {
	query := `DELETE FROM schedules WHERE id = $1 AND status = 'AVAILABLE'`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return ErrSlotUnavailable
	}

	return nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		slot      model.Slot
		dayOfWeek int
	)
	err := row.Scan(
		&slot.ID,
		&slot.ProgrammerID,
		&slot.ProgrammerName,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&dayOfWeek,
		&slot.Modality,
		&slot.Status,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.DayOfWeek = time.Weekday(dayOfWeek)
	return &slot, nil
}

func collectSlots(rows pgx.Rows) ([]*model.Slot, error) {
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}
