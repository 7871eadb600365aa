package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
)

var (
	// ErrSlotUnavailable условное обновление слота не затронуло ни одной строки
	ErrSlotUnavailable = errors.New("slot not available or already booked")
	// ErrStatusChanged статус заявки изменился между чтением и записью
	ErrStatusChanged = errors.New("advisory status changed concurrently")
	// ErrAdvisoryNotFound удаляемой заявки нет
	ErrAdvisoryNotFound = errors.New("advisory not found")
)

// UserDirectory разрешает участников по id или email.
// Оба метода возвращают (nil, nil), если пользователь не найден.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SlotStore хранилище слотов расписания
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	ListAvailableByProgrammer(ctx context.Context, programmerID int64) ([]*model.Slot, error)
	ListAll(ctx context.Context) ([]*model.Slot, error)
	// Book атомарно переводит AVAILABLE -> BOOKED, иначе ErrSlotUnavailable
	Book(ctx context.Context, id int64) error
	// Release идемпотентно возвращает слот в AVAILABLE
	Release(ctx context.Context, id int64) error
	// DeleteAvailable удаляет только свободный слот, иначе ErrSlotUnavailable
	DeleteAvailable(ctx context.Context, id int64) error
}

// AdvisoryStore хранилище заявок
type AdvisoryStore interface {
	Create(ctx context.Context, advisory *model.Advisory) error
	GetByID(ctx context.Context, id int64) (*model.Advisory, error)
	ListByProgrammer(ctx context.Context, programmerID int64) ([]*model.Advisory, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Advisory, error)
	ListAll(ctx context.Context) ([]*model.Advisory, error)
	ListAcceptedOn(ctx context.Context, date time.Time) ([]*model.Advisory, error)
	// UpdateStatus меняет статус только если текущий равен from, иначе ErrStatusChanged
	UpdateStatus(ctx context.Context, id int64, from, to model.AdvisoryStatus, responseMessage *string) error
	// ClaimReminder помечает напоминание отправленным; false, если оно уже было
	ClaimReminder(ctx context.Context, id int64) (bool, error)
	// Delete удаляет заявку, иначе ErrAdvisoryNotFound
	Delete(ctx context.Context, id int64) error
}

// TxRepositories репозитории, привязанные к одной транзакции
type TxRepositories struct {
	Slots      SlotStore
	Advisories AdvisoryStore
}

// TxManager выполняет fn в транзакции; ошибка fn откатывает всё
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
