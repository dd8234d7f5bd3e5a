package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	c := NewSystem(time.UTC)
	got := c.StartOfDay(time.Date(2026, 3, 4, 18, 30, 12, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), got)
}

func TestIsSameDay(t *testing.T) {
	c := NewSystem(time.UTC)
	a := time.Date(2026, 3, 4, 0, 1, 0, 0, time.UTC)
	b := time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC)
	assert.True(t, c.IsSameDay(a, b))
	assert.False(t, c.IsSameDay(a, b.Add(2*time.Minute)))
}

func TestIsYesterday(t *testing.T) {
	c := NewSystem(time.UTC)
	now := time.Date(2026, 3, 4, 0, 30, 0, 0, time.UTC)

	assert.True(t, c.IsYesterday(now.Add(-time.Hour), now), "23:30 the day before")
	assert.False(t, c.IsYesterday(now.Add(-49*time.Hour), now))
	assert.False(t, c.IsYesterday(now, now))
}

func TestISOWeekStart(t *testing.T) {
	c := NewSystem(time.UTC)
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, c.ISOWeekStart(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)), "Monday maps to itself")
	assert.Equal(t, monday, c.ISOWeekStart(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday, c.ISOWeekStart(time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)), "Sunday closes the week")
	assert.NotEqual(t, monday, c.ISOWeekStart(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestFixedClockAdvances(t *testing.T) {
	f := NewFixed(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))

	f.Advance(30 * time.Minute)
	assert.Equal(t, time.Date(2026, 3, 4, 12, 30, 0, 0, time.UTC), f.Now())

	f.AdvanceDays(2)
	assert.Equal(t, 6, f.Now().Day())
}
