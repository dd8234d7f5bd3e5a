package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"growapi/internal/clock"
	"growapi/internal/engine"
	mw "growapi/internal/middleware"
	"growapi/internal/models"
)

type QuestHandler struct {
	db      *sqlx.DB
	manager *engine.Manager
	clk     clock.Clock
}

func NewQuestHandler(db *sqlx.DB, manager *engine.Manager, clk clock.Clock) *QuestHandler {
	return &QuestHandler{db: db, manager: manager, clk: clk}
}

// Get returns this ISO week's quest, if one was created.
func (h *QuestHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	st := sess.State()
	if st.Quest == nil {
		http.Error(w, "no quest this week", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st.Quest)
}

// Create starts a quest for the current ISO week. One quest per week; its
// progress advances automatically as weekly habits complete.
func (h *QuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		Name        string `json:"name"`
		TargetCount int    `json:"target_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.TargetCount <= 0 {
		http.Error(w, "name and positive target_count required", http.StatusBadRequest)
		return
	}

	quest := models.WeeklyQuest{
		ID:            uuid.New(),
		Name:          req.Name,
		TargetCount:   req.TargetCount,
		WeekStartDate: h.clk.ISOWeekStart(h.clk.Now()),
	}
	_, err := h.db.Exec(`
		INSERT INTO weekly_quests (id, user_id, name, target_count, progress_count, completed, week_start_date)
		VALUES ($1,$2,$3,$4,0,false,$5)`,
		quest.ID, userID, quest.Name, quest.TargetCount, quest.WeekStartDate)
	if err != nil {
		http.Error(w, "quest already exists for this week", http.StatusConflict)
		return
	}
	h.manager.Invalidate(userID)
	writeJSON(w, http.StatusCreated, quest)
}
