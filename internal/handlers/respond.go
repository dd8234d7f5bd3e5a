package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"growapi/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// engineError maps the engine's sentinel errors onto HTTP statuses.
func engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrProfileNotFound):
		http.Error(w, "profile not found; complete onboarding first", http.StatusNotFound)
	case errors.Is(err, engine.ErrInvalidQuantity):
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
	case errors.Is(err, engine.ErrInsufficientSkillPoints):
		http.Error(w, "no skill points available", http.StatusBadRequest)
	case errors.Is(err, engine.ErrSkillAlreadyUnlocked):
		http.Error(w, "skill already unlocked", http.StatusConflict)
	case errors.Is(err, engine.ErrUnknownSkill):
		http.Error(w, "unknown skill", http.StatusBadRequest)
	case errors.Is(err, engine.ErrUndoUnavailable):
		http.Error(w, "nothing to undo", http.StatusConflict)
	case errors.Is(err, engine.ErrPersistenceFailed):
		http.Error(w, "could not save progress", http.StatusInternalServerError)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
