package time

import (
	"strings"
	"time"
)

// ShortDur shortens d.String() by dropping trailing zero units, so 1h0m0s
// becomes 1h and 2m0s becomes 2m.
func ShortDur(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// Elapsed formats the span between two instants, or "-" when either is zero
// or end precedes start.
func Elapsed(start, end time.Time) string {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return "-"
	}
	return ShortDur(end.Sub(start))
}
