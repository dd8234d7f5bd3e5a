package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"growapi/internal/clock"
)

// Manager hands out one Session per player and keeps it for the life of the
// process. There is no ambient global: construct one Manager in main and pass
// it to whoever needs it.
type Manager struct {
	store      Store
	clk        clock.Clock
	undoWindow time.Duration

	mu       sync.Mutex
	sessions map[int]*Session
}

func NewManager(store Store, clk clock.Clock, undoWindow time.Duration) *Manager {
	return &Manager{
		store:      store,
		clk:        clk,
		undoWindow: undoWindow,
		sessions:   make(map[int]*Session),
	}
}

// Session returns the player's session, loading it from the store on first
// touch.
func (m *Manager) Session(ctx context.Context, userID int) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	state, err := m.store.LoadSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	s := NewSession(userID, state, m.store, m.clk, m.undoWindow)
	m.sessions[userID] = s
	return s, nil
}

// Invalidate drops a cached session so the next touch reloads from the store.
// Called after writes that bypass the session (habit creation, onboarding).
func (m *Manager) Invalidate(userID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
