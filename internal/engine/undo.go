package engine

import "time"

// DefaultUndoWindow matches the snackbar lifetime the action was designed
// around: one compensating action, available for ten seconds.
const DefaultUndoWindow = 10 * time.Second

// undoSlot is the single-slot compensating-action holder. It keeps the exact
// pre-operation state plus the applied EXP delta, so reversing is a restore,
// not a recomputation. Any newer mutating operation replaces or clears the
// slot; expiry is an explicit timestamp checked on use, no timers involved.
type undoSlot struct {
	snapshot  *SessionState
	expDelta  int
	reason    string
	expiresAt time.Time
}

func (u *undoSlot) usable(now time.Time) bool {
	return u != nil && now.Before(u.expiresAt)
}
