package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"growapi/internal/engine"
	"growapi/internal/leaderboard"
	mw "growapi/internal/middleware"
	"growapi/internal/models"
	"growapi/internal/services"
)

type HabitHandler struct {
	db      *sqlx.DB
	manager *engine.Manager
	lb      *leaderboard.Service
	enc     *services.EncryptionService
}

func NewHabitHandler(db *sqlx.DB, manager *engine.Manager, lb *leaderboard.Service, enc *services.EncryptionService) *HabitHandler {
	return &HabitHandler{db: db, manager: manager, lb: lb, enc: enc}
}

const defaultBaseExp = 30

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		Name         string            `json:"name"`
		Mode         models.HabitMode  `json:"mode"`
		HabitType    models.HabitType  `json:"habit_type"`
		Scalar       models.ScalarType `json:"scalar"`
		TargetNumber float64           `json:"target_number"`
		BaseExp      int               `json:"base_exp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = models.HabitModeGood
	}
	if req.HabitType == "" {
		req.HabitType = models.HabitTypeDaily
	}
	if req.Scalar == "" {
		req.Scalar = models.ScalarBinary
	}
	if req.Scalar == models.ScalarQuantity && req.TargetNumber <= 0 {
		http.Error(w, "target number required for quantity habits", http.StatusBadRequest)
		return
	}
	if req.BaseExp <= 0 {
		req.BaseExp = defaultBaseExp
	}

	habit := models.Habit{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         req.Name,
		Mode:         req.Mode,
		HabitType:    req.HabitType,
		Scalar:       req.Scalar,
		TargetNumber: req.TargetNumber,
		BaseExp:      req.BaseExp,
		IsActive:     true,
	}
	err := h.db.QueryRowx(`
		INSERT INTO habits (id, user_id, name, mode, habit_type, scalar, target_number, base_exp, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true) RETURNING created_at`,
		habit.ID, habit.UserID, habit.Name, habit.Mode, habit.HabitType, habit.Scalar, habit.TargetNumber, habit.BaseExp).
		Scan(&habit.CreatedAt)
	if err != nil {
		http.Error(w, "could not create habit", http.StatusInternalServerError)
		return
	}
	h.manager.Invalidate(userID)
	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	st := sess.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"habits":     st.Habits,
		"today_logs": st.TodayLogs,
		"debuffs":    st.Debuffs,
	})
}

func (h *HabitHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	habitID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}

	res, err := h.db.Exec(`UPDATE habits SET is_active=false WHERE id=$1 AND user_id=$2`, habitID, userID)
	if err != nil {
		http.Error(w, "could not archive habit", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "habit not found", http.StatusNotFound)
		return
	}
	h.manager.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

// Complete scores one habit completion through the progression engine.
func (h *HabitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	habitID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}

	var req struct {
		Value float64 `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means a binary completion
	if req.Value == 0 {
		req.Value = 1
	}

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	result, err := sess.CompleteHabit(r.Context(), habitID, req.Value)
	if err != nil {
		engineError(w, err)
		return
	}
	publishScore(r.Context(), h.db, h.enc, h.lb, userID)
	writeJSON(w, http.StatusOK, result)
}

// Slip records a bad-habit occurrence and its penalty.
func (h *HabitHandler) Slip(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	habitID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	result, err := sess.LogBadHabit(r.Context(), habitID)
	if err != nil {
		engineError(w, err)
		return
	}
	publishScore(r.Context(), h.db, h.enc, h.lb, userID)
	writeJSON(w, http.StatusOK, result)
}

// Undo reverses the most recent completion while its window is open.
func (h *HabitHandler) Undo(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	if err := sess.Undo(r.Context()); err != nil {
		engineError(w, err)
		return
	}
	publishScore(r.Context(), h.db, h.enc, h.lb, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) UndoStatus(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	expiresAt, ok := sess.UndoAvailable()
	resp := map[string]any{"available": ok}
	if ok {
		resp["expires_at"] = expiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}
