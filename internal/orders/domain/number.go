package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Order numbers are the human-facing identifier, distinct from the
// internal id: YT-YYYYMMDD-NNNN with a per-day sequence.
const orderNumberPrefix = "YT"

var orderNumberPattern = regexp.MustCompile(`^YT-\d{8}-\d{4}$`)

// FormatOrderNumber renders an order number for the given day and
// sequence value. Sequences beyond 9999 simply widen the suffix.
func FormatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, day.UTC().Format("20060102"), seq)
}

// ValidOrderNumber reports whether the value matches the persisted
// order-number format.
func ValidOrderNumber(number string) bool {
	return orderNumberPattern.MatchString(number)
}
