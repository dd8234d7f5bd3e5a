package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"growapi/internal/models"
)

// Store is the persistence collaborator. LoadSession returns the player's
// current view (active habits, today's logs, active debuffs, this week's
// quest); SaveSession is an all-or-nothing flush of the whole state. The
// engine never patches rows incrementally.
type Store interface {
	LoadSession(ctx context.Context, userID int) (*SessionState, error)
	SaveSession(ctx context.Context, userID int, state *SessionState) error
}

// SessionState is one player's loaded game state. The session mutates it in
// memory and flushes it through the Store after every operation.
type SessionState struct {
	Profile   *models.PlayerProfile // nil until onboarding
	Habits    []models.Habit        // active habits
	TodayLogs []models.HabitLog     // logs dated today, any habit
	Debuffs   []models.Debuff       // unexpired only
	Quest     *models.WeeklyQuest   // current ISO week, nil if none
	Skills    []models.Skill

	// Granted is the achievement grant ledger: keys unlocked forever.
	Granted map[string]bool

	// Records maps normalized exercise name to the best estimated 1RM.
	Records map[string]models.PersonalRecord

	// Iron Will bookkeeping, reset when the ISO week rolls over.
	IronWillUses      int
	IronWillWeekStart time.Time

	// Pending appends, drained by the session after a successful save.
	PendingEvents []models.ExperienceEvent
	PendingBadges []models.Badge
}

// NewSessionState returns an empty pre-onboarding state with its maps ready.
func NewSessionState() *SessionState {
	return &SessionState{
		Granted: make(map[string]bool),
		Records: make(map[string]models.PersonalRecord),
	}
}

// Clone deep-copies the state. The session snapshots before every mutation so
// a failed save, or an undo, can restore the exact prior state.
func (st *SessionState) Clone() *SessionState {
	if st == nil {
		return nil
	}
	out := &SessionState{
		Habits:            append([]models.Habit(nil), st.Habits...),
		TodayLogs:         append([]models.HabitLog(nil), st.TodayLogs...),
		Debuffs:           append([]models.Debuff(nil), st.Debuffs...),
		Skills:            append([]models.Skill(nil), st.Skills...),
		IronWillUses:      st.IronWillUses,
		IronWillWeekStart: st.IronWillWeekStart,
		PendingEvents:     append([]models.ExperienceEvent(nil), st.PendingEvents...),
		PendingBadges:     append([]models.Badge(nil), st.PendingBadges...),
	}
	if st.Profile != nil {
		p := *st.Profile
		out.Profile = &p
	}
	if st.Quest != nil {
		q := *st.Quest
		out.Quest = &q
	}
	// habits hold a pointer field; detach it
	for i := range out.Habits {
		if st.Habits[i].LastCompletedDate != nil {
			t := *st.Habits[i].LastCompletedDate
			out.Habits[i].LastCompletedDate = &t
		}
	}
	out.Granted = make(map[string]bool, len(st.Granted))
	for k, v := range st.Granted {
		out.Granted[k] = v
	}
	out.Records = make(map[string]models.PersonalRecord, len(st.Records))
	for k, v := range st.Records {
		out.Records[k] = v
	}
	return out
}

func (st *SessionState) findHabit(id uuid.UUID) int {
	for i := range st.Habits {
		if st.Habits[i].ID == id {
			return i
		}
	}
	return -1
}
