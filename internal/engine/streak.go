package engine

import (
	"time"

	"growapi/internal/clock"
	"growapi/internal/models"
)

// AdvanceStreak applies one completion to a habit's streak fields and stamps
// lastCompletedDate with now. Rules, calendar-day granularity:
//
//   - already completed today: streak unchanged (duplicate guard)
//   - last completion was yesterday: streak continues
//   - gap of two or more days, or first ever completion: streak restarts at 1
//
// A bad-habit slip never touches the streak; streaks track completions only.
func AdvanceStreak(habit *models.Habit, c clock.Clock, now time.Time) {
	switch {
	case habit.LastCompletedDate == nil:
		habit.CurrentStreak = 1
		if habit.BestStreak < 1 {
			habit.BestStreak = 1
		}
	case c.IsSameDay(*habit.LastCompletedDate, now):
		// second completion the same day leaves the streak alone
	case c.IsYesterday(*habit.LastCompletedDate, now):
		habit.CurrentStreak++
		if habit.CurrentStreak > habit.BestStreak {
			habit.BestStreak = habit.CurrentStreak
		}
	default:
		habit.CurrentStreak = 1
	}
	t := now
	habit.LastCompletedDate = &t
}
