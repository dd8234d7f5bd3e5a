package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"growapi/internal/engine"
	"growapi/internal/leaderboard"
	mw "growapi/internal/middleware"
	"growapi/internal/models"
	"growapi/internal/services"
)

type ProfileHandler struct {
	db      *sqlx.DB
	manager *engine.Manager
	lb      *leaderboard.Service
	enc     *services.EncryptionService
}

func NewProfileHandler(db *sqlx.DB, manager *engine.Manager, lb *leaderboard.Service, enc *services.EncryptionService) *ProfileHandler {
	return &ProfileHandler{db: db, manager: manager, lb: lb, enc: enc}
}

// Create is the onboarding step: one profile per user, class fixed at creation.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		DisplayName string             `json:"display_name"`
		PlayerClass models.PlayerClass `json:"player_class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		http.Error(w, "display name required", http.StatusBadRequest)
		return
	}
	if !req.PlayerClass.Valid() {
		http.Error(w, "player class must be Warrior, Scholar or Monk", http.StatusBadRequest)
		return
	}

	profile := models.PlayerProfile{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: req.DisplayName,
		PlayerClass: req.PlayerClass,
		Level:       1,
		ExpToNext:   engine.ExpForLevel(1),
	}
	plainName := profile.DisplayName
	if err := h.enc.EncryptProfile(&profile); err != nil {
		http.Error(w, "could not encrypt profile", http.StatusInternalServerError)
		return
	}

	err := h.db.QueryRowx(`
		INSERT INTO player_profiles (id, user_id, display_name, player_class, level, exp_current, exp_to_next, perm_exp_multiplier, skill_points)
		VALUES ($1,$2,$3,$4,$5,0,$6,0,0) RETURNING created_at`,
		profile.ID, profile.UserID, profile.DisplayName, profile.PlayerClass, profile.Level, profile.ExpToNext).
		Scan(&profile.CreatedAt)
	if err != nil {
		http.Error(w, "profile already exists", http.StatusConflict)
		return
	}
	h.manager.Invalidate(userID)

	if err := h.lb.Publish(r.Context(), userID, plainName); err != nil {
		http.Error(w, "could not publish leaderboard entry", http.StatusInternalServerError)
		return
	}

	profile.DisplayName = plainName
	writeJSON(w, http.StatusCreated, profile)
}

// Get returns the profile with current skills and achievement grants.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	st := sess.State()
	if st.Profile == nil {
		http.Error(w, "profile not found; complete onboarding first", http.StatusNotFound)
		return
	}
	if err := h.enc.DecryptProfile(st.Profile); err != nil {
		http.Error(w, "could not decrypt profile", http.StatusInternalServerError)
		return
	}

	granted := make([]string, 0, len(st.Granted))
	for _, def := range engine.AchievementCatalog() {
		if st.Granted[def.Key] {
			granted = append(granted, def.Key)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile":      st.Profile,
		"skills":       st.Skills,
		"achievements": granted,
	})
}
