package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type AdvisoryRepository struct {
	*base.Repository
}

func NewAdvisoryRepository(db base.Querier) *AdvisoryRepository {
	return &AdvisoryRepository{Repository: base.NewRepository(db)}
}

const advisorySelect = `
		SELECT a.id, a.programmer_id, p.name, a.user_id, u.name, a.schedule_id,
		       a.status, a.message, a.response_message, a.date,
		       to_char(a.time, 'HH24:MI'), a.modality, a.created_at, a.updated_at
		FROM advisories a
		JOIN users p ON p.id = a.programmer_id
		JOIN users u ON u.id = a.user_id
`

// Create создаёт новую заявку
func (r *AdvisoryRepository) Create(ctx context.Context, advisory *model.Advisory) error {
	query := `
		INSERT INTO advisories (programmer_id, user_id, schedule_id, status, message, response_message, date, time, modality)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::time, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		advisory.ProgrammerID,
		advisory.UserID,
		advisory.SlotID,
		advisory.Status,
		advisory.Message,
		advisory.ResponseMessage,
		advisory.Date,
		advisory.Time,
		advisory.Modality,
	).Scan(&advisory.ID, &advisory.CreatedAt, &advisory.UpdatedAt)

	if err != nil {
		// Частичный уникальный индекс: на слот уже есть активная заявка
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("create advisory: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *AdvisoryRepository) GetByID(ctx context.Context, id int64) (*model.Advisory, error) {
	advisory, err := scanAdvisory(r.QueryRow(ctx, advisorySelect+` WHERE a.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get advisory by id: %w", err)
	}

	return advisory, nil
}

// ListByProgrammer получает все заявки к программисту
func (r *AdvisoryRepository) ListByProgrammer(ctx context.Context, programmerID int64) ([]*model.Advisory, error) {
	rows, err := r.Query(ctx, advisorySelect+` WHERE a.programmer_id = $1 ORDER BY a.created_at DESC, a.id DESC`, programmerID)
	if err != nil {
		return nil, fmt.Errorf("get advisories by programmer: %w", err)
	}

	return collectAdvisories(rows)
}

// ListByUser получает все заявки пользователя
func (r *AdvisoryRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Advisory, error) {
	rows, err := r.Query(ctx, advisorySelect+` WHERE a.user_id = $1 ORDER BY a.created_at DESC, a.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("get advisories by user: %w", err)
	}

	return collectAdvisories(rows)
}

// ListAll получает все заявки
func (r *AdvisoryRepository) ListAll(ctx context.Context) ([]*model.Advisory, error) {
	rows, err := r.Query(ctx, advisorySelect+` ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("get advisories: %w", err)
	}

	return collectAdvisories(rows)
}

// ListAcceptedOn получает принятые заявки на указанную дату без отправленного напоминания
func (r *AdvisoryRepository) ListAcceptedOn(ctx context.Context, date time.Time) ([]*model.Advisory, error) {
	query := advisorySelect + `
		WHERE a.status = 'ACCEPTED' AND a.date = $1 AND a.reminder_sent_at IS NULL
		ORDER BY a.time
	`

	rows, err := r.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get accepted advisories: %w", err)
	}

	return collectAdvisories(rows)
}

// UpdateStatus обновляет статус, если заявка всё ещё в статусе from
func (r *AdvisoryRepository) UpdateStatus(ctx context.Context, id int64, from, to model.AdvisoryStatus, responseMessage *string) error {
	query := `
		UPDATE advisories
		SET status = $1, response_message = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`

	affected, err := r.ExecAffected(ctx, query, to, responseMessage, id, from)
	if err != nil {
		return fmt.Errorf("update advisory status: %w", err)
	}

	if affected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// ClaimReminder атомарно отмечает напоминание; повторный вызов вернёт false
func (r *AdvisoryRepository) ClaimReminder(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE advisories
		SET reminder_sent_at = now()
		WHERE id = $1 AND reminder_sent_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("claim advisory reminder: %w", err)
	}

	return affected == 1, nil
}

// Delete удаляет заявку; слот не трогает
func (r *AdvisoryRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM advisories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete advisory: %w", err)
	}

	if affected == 0 {
		return ErrAdvisoryNotFound
	}

	return nil
}

func scanAdvisory(row pgx.Row) (*model.Advisory, error) {
	var advisory model.Advisory
	err := row.Scan(
		&advisory.ID,
		&advisory.ProgrammerID,
		&advisory.ProgrammerName,
		&advisory.UserID,
		&advisory.UserName,
		&advisory.SlotID,
		&advisory.Status,
		&advisory.Message,
		&advisory.ResponseMessage,
		&advisory.Date,
		&advisory.Time,
		&advisory.Modality,
		&advisory.CreatedAt,
		&advisory.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &advisory, nil
}

func collectAdvisories(rows pgx.Rows) ([]*model.Advisory, error) {
	defer rows.Close()

	var advisories []*model.Advisory
	for rows.Next() {
		advisory, err := scanAdvisory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan advisory: %w", err)
		}
		advisories = append(advisories, advisory)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate advisories: %w", err)
	}

	return advisories, nil
}
