package model

import (
	"fmt"
	"strings"
	"time"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "AVAILABLE"
	SlotStatusBooked    SlotStatus = "BOOKED"
)

type Modality string

const (
	ModalityVirtual  Modality = "VIRTUAL"
	ModalityInPerson Modality = "IN_PERSON"
)

// ParseModality разбирает модальность без учёта регистра.
// "PRESENCIAL" принимается как синоним IN_PERSON.
func ParseModality(s string) (Modality, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VIRTUAL":
		return ModalityVirtual, nil
	case "IN_PERSON", "PRESENCIAL":
		return ModalityInPerson, nil
	default:
		return "", fmt.Errorf("unknown modality %q", s)
	}
}

// Slot временное окно, которое программист открывает для записи
type Slot struct {
	ID             int64        `json:"id"`
	ProgrammerID   int64        `json:"programmerId"`
	ProgrammerName string       `json:"programmerName,omitempty"`
	Date           time.Time    `json:"date"`
	StartTime      string       `json:"time"`    // HH:MM
	EndTime        string       `json:"endTime"` // HH:MM
	DayOfWeek      time.Weekday `json:"dayOfWeek"`
	Modality       Modality     `json:"modality"`
	Status         SlotStatus   `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func (s *Slot) IsAvailable() bool {
	return s.Status == SlotStatusAvailable
}
