package domain_test

import (
	"testing"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"709.97", 70997},
		{"0", 0},
		{"0.01", 1},
		{"100", 10000},
		{"349.995", 35000},
		{"349.994", 34999},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			if got := domain.ToMinorUnits(dec(tt.amount)); got != tt.want {
				t.Errorf("ToMinorUnits(%s) = %d, want %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	if got := domain.FromMinorUnits(70997); !got.Equal(dec("709.97")) {
		t.Errorf("FromMinorUnits(70997) = %s, want 709.97", got)
	}
	if got := domain.FromMinorUnits(0); !got.IsZero() {
		t.Errorf("FromMinorUnits(0) = %s, want 0", got)
	}
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	for _, amount := range []string{"709.97", "0.01", "1234.50", "99999.99"} {
		d := dec(amount)
		if back := domain.FromMinorUnits(domain.ToMinorUnits(d)); !back.Equal(d) {
			t.Errorf("round trip of %s gave %s", amount, back)
		}
	}
}
