package store

import (
	"context"
	"errors"
	"sync"

	"growapi/internal/engine"
	"growapi/internal/models"
)

// Memory is an in-process Store used by tests and local experiments. It keeps
// the same all-or-nothing flush contract as the Postgres store.
type Memory struct {
	mu     sync.Mutex
	states map[int]*engine.SessionState

	// Events and Badges accumulate everything flushed, per user, so tests
	// can assert on the append-only timelines.
	Events map[int][]models.ExperienceEvent
	Badges map[int][]models.Badge

	// FailNextSave makes the next SaveSession return an error, once.
	FailNextSave bool
	SaveCount    int
}

func NewMemory() *Memory {
	return &Memory{
		states: make(map[int]*engine.SessionState),
		Events: make(map[int][]models.ExperienceEvent),
		Badges: make(map[int][]models.Badge),
	}
}

// Seed installs a starting state for a user.
func (m *Memory) Seed(userID int, st *engine.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st.Clone()
}

func (m *Memory) LoadSession(_ context.Context, userID int) (*engine.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[userID]; ok {
		return st.Clone(), nil
	}
	return engine.NewSessionState(), nil
}

func (m *Memory) SaveSession(_ context.Context, userID int, st *engine.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCount++
	if m.FailNextSave {
		m.FailNextSave = false
		return errors.New("save failed")
	}
	m.Events[userID] = append(m.Events[userID], st.PendingEvents...)
	m.Badges[userID] = append(m.Badges[userID], st.PendingBadges...)
	kept := st.Clone()
	kept.PendingEvents = nil
	kept.PendingBadges = nil
	m.states[userID] = kept
	return nil
}
