package api

import (
	"strings"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
)

const dateLayout = time.DateOnly

type CreateAdvisoryRequest struct {
	ProgrammerID int64  `json:"programmerId" validate:"required,gt=0"`
	UserID       int64  `json:"userId" validate:"required,gt=0"`
	ScheduleID   *int64 `json:"scheduleId"`
	Message      string `json:"message" validate:"max=2000"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time         string `json:"time"`
	Modality     string `json:"modality"`
}

type CreateSlotRequest struct {
	ProgrammerID int64  `json:"programmerId" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required"`
	EndTime      string `json:"endTime"`
	Modality     string `json:"modality"`
}

type AdvisoryResponse struct {
	ID              int64   `json:"id"`
	ProgrammerID    int64   `json:"programmerId"`
	ProgrammerName  string  `json:"programmerName"`
	UserID          int64   `json:"userId"`
	UserName        string  `json:"userName"`
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Modality        string  `json:"modality"`
	ResponseMessage *string `json:"responseMessage"`
	ScheduleID      *int64  `json:"scheduleId"`
}

type SlotResponse struct {
	ID             int64  `json:"id"`
	ProgrammerID   int64  `json:"programmerId"`
	ProgrammerName string `json:"programmerName"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	EndTime        string `json:"endTime"`
	DayOfWeek      string `json:"dayOfWeek"`
	Modality       string `json:"modality"`
	Status         string `json:"status"`
}

func toAdvisoryResponse(a *model.Advisory) AdvisoryResponse {
	return AdvisoryResponse{
		ID:              a.ID,
		ProgrammerID:    a.ProgrammerID,
		ProgrammerName:  a.ProgrammerName,
		UserID:          a.UserID,
		UserName:        a.UserName,
		Status:          string(a.Status),
		Message:         a.Message,
		Date:            a.Date.Format(dateLayout),
		Time:            a.Time,
		Modality:        string(a.Modality),
		ResponseMessage: a.ResponseMessage,
		ScheduleID:      a.SlotID,
	}
}

func toAdvisoryResponses(list []*model.Advisory) []AdvisoryResponse {
	out := make([]AdvisoryResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAdvisoryResponse(a))
	}
	return out
}

func toSlotResponse(s *model.Slot) SlotResponse {
	return SlotResponse{
		ID:             s.ID,
		ProgrammerID:   s.ProgrammerID,
		ProgrammerName: s.ProgrammerName,
		Date:           s.Date.Format(dateLayout),
		Time:           s.StartTime,
		EndTime:        s.EndTime,
		DayOfWeek:      strings.ToUpper(s.DayOfWeek.String()),
		Modality:       string(s.Modality),
		Status:         string(s.Status),
	}
}

func toSlotResponses(list []*model.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSlotResponse(s))
	}
	return out
}
