package util //nolint:revive // package name util hosts shared formatting helpers for CLI output

import (
	"fmt"
	"time"
)

// FormatSince renders the age of t relative to now in the largest whole unit.
// Returns "-" for a zero time or a time in the future.
func FormatSince(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return "-"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}
