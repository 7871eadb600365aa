package service

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/advisory_service/internal/model"
	"github.com/Freeeeeet/advisory_service/internal/notify"
)

const (
	KindAdvisoryRequested = "advisory.requested"
	KindAdvisoryUpdated   = "advisory.status_changed"
	KindAdvisoryReminder  = "advisory.reminder"
)

func requestedMessage(programmer, user *model.User, a *model.Advisory) notify.Message {
	body := fmt.Sprintf(
		"Hello %s,\n\nYou have a new advisory request from %s.\n\nDate: %s\nTime: %s\nMessage: %s\n\nOpen your dashboard to respond.",
		programmer.Name, user.Name, a.Date.Format(time.DateOnly), a.Time, a.Message,
	)
	return notify.NewMessage(KindAdvisoryRequested, programmer.Email, "New advisory request", body)
}

func statusChangedMessage(user *model.User, a *model.Advisory) notify.Message {
	response := "No additional notes."
	if a.ResponseMessage != nil && *a.ResponseMessage != "" {
		response = *a.ResponseMessage
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nYour advisory with %s has been %s.\n\nResponse: %s",
		user.Name, a.ProgrammerName, a.Status, response,
	)
	return notify.NewMessage(KindAdvisoryUpdated, user.Email, "Your advisory was updated", body)
}

func reminderMessage(recipient *model.User, counterpart string, a *model.Advisory) notify.Message {
	body := fmt.Sprintf(
		"Hello %s,\n\nReminder: you have an advisory with %s on %s at %s (%s).",
		recipient.Name, counterpart, a.Date.Format(time.DateOnly), a.Time, a.Modality,
	)
	return notify.NewMessage(KindAdvisoryReminder, recipient.Email, "Advisory reminder", body)
}
