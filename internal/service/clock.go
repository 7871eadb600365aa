package service

import (
	"strings"
	"time"
)

const clockLayout = "15:04"

// parseClock приводит время суток к виду HH:MM
func parseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		var errSec error
		t, errSec = time.Parse("15:04:05", s)
		if errSec != nil {
			return "", newError(ErrInvalidArgument, "invalid time %q, expected HH:MM", s)
		}
	}
	return t.Format(clockLayout), nil
}

// plusHour прибавляет час, не переходя через полночь
func plusHour(clock string) string {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return clock
	}
	end := t.Add(time.Hour)
	if end.Day() != t.Day() {
		return "23:59"
	}
	return end.Format(clockLayout)
}

// dateOnly отбрасывает время суток
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
