// Package clock isolates calendar arithmetic so streak, debuff-expiry and
// quest-week logic can run against an injected fixed time in tests. All
// boundaries use the local calendar of the supplied location, not UTC.
package clock

import "time"

type Clock interface {
	Now() time.Time
	StartOfDay(t time.Time) time.Time
	IsSameDay(a, b time.Time) bool
	IsYesterday(t, relativeTo time.Time) bool
	ISOWeekStart(t time.Time) time.Time
}

// System is the wall clock in a fixed location.
type System struct {
	Loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{Loc: loc}
}

func (c System) Now() time.Time { return time.Now().In(c.Loc) }

func (c System) StartOfDay(t time.Time) time.Time {
	t = t.In(c.Loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Loc)
}

func (c System) IsSameDay(a, b time.Time) bool {
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}

func (c System) IsYesterday(t, relativeTo time.Time) bool {
	return c.StartOfDay(t).Equal(c.StartOfDay(relativeTo).AddDate(0, 0, -1))
}

// ISOWeekStart returns midnight on the Monday of t's ISO week.
func (c System) ISOWeekStart(t time.Time) time.Time {
	day := c.StartOfDay(t)
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7 // Sunday belongs to the week that started the previous Monday
	}
	return day.AddDate(0, 0, -(wd - 1))
}

// Fixed is a settable clock for tests.
type Fixed struct {
	System
	Current time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{System: NewSystem(t.Location()), Current: t}
}

func (c *Fixed) Now() time.Time { return c.Current }

func (c *Fixed) Advance(d time.Duration) { c.Current = c.Current.Add(d) }

func (c *Fixed) AdvanceDays(n int) { c.Current = c.Current.AddDate(0, 0, n) }
