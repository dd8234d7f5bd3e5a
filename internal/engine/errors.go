package engine

import "errors"

// Expected failure conditions. Handlers map these to HTTP statuses; none of
// them leave partial state behind.
var (
	// ErrInsufficientSkillPoints: unlock attempted with zero points. No side
	// effect; skill points are untouched.
	ErrInsufficientSkillPoints = errors.New("no skill points available")

	// ErrProfileNotFound: an EXP-granting operation ran before onboarding
	// created a profile. Callers are expected to finish onboarding first.
	ErrProfileNotFound = errors.New("player profile not found")

	// ErrInvalidQuantity: a quantity habit was submitted with value <= 0.
	// Rejected before any log is created.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrPersistenceFailed wraps a store write failure. The session reloads
	// its pre-operation state before surfacing this, so the caller observes
	// either the whole operation or none of it.
	ErrPersistenceFailed = errors.New("could not persist changes")

	// ErrUndoUnavailable: nothing to undo, or the undo window elapsed.
	ErrUndoUnavailable = errors.New("nothing to undo")

	// ErrSkillAlreadyUnlocked: each skill key can be unlocked once.
	ErrSkillAlreadyUnlocked = errors.New("skill already unlocked")

	// ErrUnknownSkill: key outside the closed skill enumeration.
	ErrUnknownSkill = errors.New("unknown skill key")
)
