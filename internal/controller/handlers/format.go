package handlers

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/advisory_service/internal/model"
)

// StatusDisplay emoji и текст статуса заявки
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetStatusDisplay возвращает emoji и текст для статуса заявки
func GetStatusDisplay(status model.AdvisoryStatus) StatusDisplay {
	displays := map[model.AdvisoryStatus]StatusDisplay{
		model.AdvisoryStatusPending:   {"⏳", "Ожидает ответа"},
		model.AdvisoryStatusAccepted:  {"✅", "Принята"},
		model.AdvisoryStatusRejected:  {"🚫", "Отклонена"},
		model.AdvisoryStatusCompleted: {"✔️", "Завершена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// FormatStats форматирует статистику программиста
func FormatStats(programmerID int64, s *model.AdvisoryStats) string {
	return fmt.Sprintf(
		"📊 Статистика программиста #%d\n\n"+
			"Всего: %d\n"+
			"⏳ Ожидают: %d\n"+
			"✅ Приняты: %d\n"+
			"🚫 Отклонены: %d\n"+
			"✔️ Завершены: %d\n\n"+
			"💻 Онлайн: %d\n"+
			"🏢 Очно: %d",
		programmerID, s.Total, s.Pending, s.Accepted, s.Rejected, s.Completed, s.Virtual, s.Presencial,
	)
}

// FormatSlots форматирует список свободных слотов
func FormatSlots(slots []*model.Slot) string {
	if len(slots) == 0 {
		return "📭 Свободных слотов нет"
	}

	var sb strings.Builder
	sb.WriteString("🟢 Свободные слоты:\n")
	for _, s := range slots {
		fmt.Fprintf(&sb, "\n#%d  %s %s-%s  %s", s.ID, s.Date.Format("02.01.2006"), s.StartTime, s.EndTime, s.Modality)
	}
	return sb.String()
}

// FormatPending форматирует заявки, ожидающие ответа
func FormatPending(advisories []*model.Advisory) string {
	var sb strings.Builder
	count := 0
	for _, a := range advisories {
		if a.Status != model.AdvisoryStatusPending {
			continue
		}
		if count == 0 {
			sb.WriteString("⏳ Ожидают ответа:\n")
		}
		count++
		fmt.Fprintf(&sb, "\n%s #%d  %s %s  от %s", GetStatusDisplay(a.Status).Emoji, a.ID, a.Date.Format("02.01.2006"), a.Time, a.UserName)
		if a.Message != "" {
			fmt.Fprintf(&sb, "\n    %s", a.Message)
		}
	}

	if count == 0 {
		return "📭 Нет заявок, ожидающих ответа"
	}
	return sb.String()
}
