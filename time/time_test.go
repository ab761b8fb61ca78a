package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShortDur(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"zero", 0, "0s"},
		{"1 second", 1 * time.Second, "1s"},
		{"1 minute", 1 * time.Minute, "1m"},
		{"1 minute 30 seconds", 1*time.Minute + 30*time.Second, "1m30s"},
		{"1 hour", 1 * time.Hour, "1h"},
		{"1 hour 30 minutes", 1*time.Hour + 30*time.Minute, "1h30m"},
		{"1 hour 0 minutes 30 seconds", 1*time.Hour + 30*time.Second, "1h0m30s"},
		{"500 milliseconds", 500 * time.Millisecond, "500ms"},
		{"1.5 seconds", 1*time.Second + 500*time.Millisecond, "1.5s"},
		{"negative 1h30m", -(1*time.Hour + 30*time.Minute), "-1h30m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortDur(tt.duration))
		})
	}
}

func TestElapsed(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "1h2m", Elapsed(start, start.Add(62*time.Minute)))
	assert.Equal(t, "0s", Elapsed(start, start))
	assert.Equal(t, "-", Elapsed(time.Time{}, start))
	assert.Equal(t, "-", Elapsed(start, time.Time{}))
	assert.Equal(t, "-", Elapsed(start, start.Add(-time.Second)))
}
