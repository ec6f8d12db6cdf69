package utils

import (
	"testing"
	"time"
)

func TestClockMinute(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 5, 42, 0, time.UTC)

	if got := ClockMinute(at); got != "09:05" {
		t.Errorf("ClockMinute = %q, want 09:05", got)
	}
}

func TestWeekdayName(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if got := WeekdayName(monday); got != "monday" {
		t.Errorf("WeekdayName = %q, want monday", got)
	}
}

func TestDateOnly(t *testing.T) {
	at := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)

	got := DateOnly(at)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly = %v, want %v", got, want)
	}
}

func TestDateString(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if got := DateString(at); got != "2026-03-02" {
		t.Errorf("DateString = %q, want 2026-03-02", got)
	}
}
