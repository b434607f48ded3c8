package domain_test

import (
	"testing"
	"time"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)

	if got := domain.FormatOrderNumber(day, 1); got != "YT-20260830-0001" {
		t.Errorf("expected YT-20260830-0001, got %q", got)
	}
	if got := domain.FormatOrderNumber(day, 482); got != "YT-20260830-0482" {
		t.Errorf("expected YT-20260830-0482, got %q", got)
	}
	if got := domain.FormatOrderNumber(day, 12345); got != "YT-20260830-12345" {
		t.Errorf("expected widened suffix for large sequences, got %q", got)
	}

	// Local times collapse onto the same UTC day.
	ist := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2026, 8, 31, 1, 0, 0, 0, ist)
	if got := domain.FormatOrderNumber(late, 7); got != "YT-20260830-0007" {
		t.Errorf("expected UTC day in number, got %q", got)
	}
}

func TestValidOrderNumber(t *testing.T) {
	valid := []string{"YT-20260830-0001", "YT-19991231-9999"}
	for _, number := range valid {
		if !domain.ValidOrderNumber(number) {
			t.Errorf("expected %q valid", number)
		}
	}

	invalid := []string{"", "YT-2026-0001", "XX-20260830-0001", "YT-20260830-1", "yt-20260830-0001", "YT-20260830-0001-extra"}
	for _, number := range invalid {
		if domain.ValidOrderNumber(number) {
			t.Errorf("expected %q invalid", number)
		}
	}
}
