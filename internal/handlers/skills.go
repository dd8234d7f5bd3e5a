package handlers

import (
	"encoding/json"
	"net/http"

	"growapi/internal/engine"
	mw "growapi/internal/middleware"
	"growapi/internal/models"
)

type SkillHandler struct {
	manager *engine.Manager
}

func NewSkillHandler(manager *engine.Manager) *SkillHandler {
	return &SkillHandler{manager: manager}
}

func (h *SkillHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	st := sess.State()
	points := 0
	if st.Profile != nil {
		points = st.Profile.SkillPoints
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skills":       st.Skills,
		"skill_points": points,
	})
}

// Unlock spends one skill point. The engine rejects unknown keys, duplicate
// unlocks and zero-point spends without side effects.
func (h *SkillHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		Key models.SkillKey `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	skill, err := sess.UnlockSkill(r.Context(), req.Key)
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, skill)
}
