package service

import (
	"errors"
	"fmt"
)

// Категории ошибок ядра бронирования. Транспорт сопоставляет их с кодом ответа
// через errors.Is, текст ошибки пригоден для показа клиенту.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
)

// Error ошибка с категорией и человекочитаемым сообщением
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
