package model

import (
	"fmt"
	"strings"
	"time"
)

type AdvisoryStatus string

const (
	AdvisoryStatusPending   AdvisoryStatus = "PENDING"   // ждёт ответа программиста
	AdvisoryStatusAccepted  AdvisoryStatus = "ACCEPTED"  // принята
	AdvisoryStatusRejected  AdvisoryStatus = "REJECTED"  // отклонена, слот освобождён
	AdvisoryStatusCompleted AdvisoryStatus = "COMPLETED" // проведена
)

// ParseAdvisoryStatus разбирает статус без учёта регистра
func ParseAdvisoryStatus(s string) (AdvisoryStatus, error) {
	status := AdvisoryStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case AdvisoryStatusPending, AdvisoryStatusAccepted, AdvisoryStatusRejected, AdvisoryStatusCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("unknown advisory status %q", s)
	}
}

// advisoryTransitions допустимые переходы статусов.
// В PENDING перейти нельзя, из REJECTED и COMPLETED выхода нет.
var advisoryTransitions = map[AdvisoryStatus][]AdvisoryStatus{
	AdvisoryStatusPending:  {AdvisoryStatusAccepted, AdvisoryStatusRejected},
	AdvisoryStatusAccepted: {AdvisoryStatusCompleted},
}

// CanTransitionTo проверяет переход по графу статусов
func (s AdvisoryStatus) CanTransitionTo(next AdvisoryStatus) bool {
	if s.IsTerminal() {
		return false
	}
	for _, allowed := range advisoryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal из REJECTED и COMPLETED переходов нет
func (s AdvisoryStatus) IsTerminal() bool {
	return s == AdvisoryStatusRejected || s == AdvisoryStatusCompleted
}

// Advisory заявка пользователя на консультацию, привязанная к одному слоту
type Advisory struct {
	ID              int64          `json:"id"`
	ProgrammerID    int64          `json:"programmerId"`
	UserID          int64          `json:"userId"`
	SlotID          *int64         `json:"slotId"` // nil только если слот удалён после отклонения
	Status          AdvisoryStatus `json:"status"`
	Message         string         `json:"message"`
	ResponseMessage *string        `json:"responseMessage"`
	Date            time.Time      `json:"date"`
	Time            string         `json:"time"` // HH:MM
	Modality        Modality       `json:"modality"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	// Денормализованные поля для удобства клиента (не хранятся в advisories)
	ProgrammerName string `json:"programmerName,omitempty"`
	UserName       string `json:"userName,omitempty"`
}
