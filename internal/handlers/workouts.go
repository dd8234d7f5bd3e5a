package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"growapi/internal/clock"
	"growapi/internal/engine"
	"growapi/internal/leaderboard"
	mw "growapi/internal/middleware"
	"growapi/internal/models"
	"growapi/internal/services"
)

type WorkoutHandler struct {
	db      *sqlx.DB
	manager *engine.Manager
	lb      *leaderboard.Service
	enc     *services.EncryptionService
	clk     clock.Clock
}

func NewWorkoutHandler(db *sqlx.DB, manager *engine.Manager, lb *leaderboard.Service, enc *services.EncryptionService, clk clock.Clock) *WorkoutHandler {
	return &WorkoutHandler{db: db, manager: manager, lb: lb, enc: enc, clk: clk}
}

type workoutSetRequest struct {
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
	RPE      int     `json:"rpe"`
}

// Finish records a completed workout: EXP from duration and tonnage, then a
// personal-record scan over its sets. The engine grants EXP and badges; this
// handler owns the workout rows.
func (h *WorkoutHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		Title    string              `json:"title"`
		Duration int                 `json:"duration"`
		Sets     []workoutSetRequest `json:"sets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = "Workout"
	}
	if req.Duration < 0 {
		http.Error(w, "duration must not be negative", http.StatusBadRequest)
		return
	}

	workout := models.Workout{
		ID:     uuid.New(),
		UserID: userID,
		Date:   h.clk.Now(),
		Title:  req.Title,
	}
	for i, s := range req.Sets {
		if strings.TrimSpace(s.Exercise) == "" || s.Sets <= 0 || s.Reps <= 0 || s.Weight < 0 {
			http.Error(w, "each set needs an exercise, positive sets and reps", http.StatusBadRequest)
			return
		}
		workout.Sets = append(workout.Sets, models.WorkoutSet{
			ID:         uuid.New(),
			WorkoutID:  workout.ID,
			Exercise:   s.Exercise,
			Sets:       s.Sets,
			Reps:       s.Reps,
			Weight:     s.Weight,
			RPE:        s.RPE,
			OrderIndex: i,
		})
	}

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	result, err := sess.FinishWorkout(r.Context(), &workout, req.Duration)
	if err != nil {
		engineError(w, err)
		return
	}

	if err := h.insertWorkout(r, &workout); err != nil {
		http.Error(w, "could not save workout", http.StatusInternalServerError)
		return
	}
	publishScore(r.Context(), h.db, h.enc, h.lb, userID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"workout": workout,
		"result":  result,
	})
}

func (h *WorkoutHandler) insertWorkout(r *http.Request, workout *models.Workout) error {
	tx, err := h.db.BeginTxx(r.Context(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO workouts (id, user_id, date, title, duration, exp_granted)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		workout.ID, workout.UserID, workout.Date, workout.Title, workout.Duration, workout.ExpGranted); err != nil {
		return err
	}
	for _, s := range workout.Sets {
		if _, err := tx.Exec(`
			INSERT INTO workout_sets (id, workout_id, exercise, sets, reps, weight, rpe, order_index)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			s.ID, s.WorkoutID, s.Exercise, s.Sets, s.Reps, s.Weight, s.RPE, s.OrderIndex); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var workouts []models.Workout
	if err := h.db.Select(&workouts, `
		SELECT id, user_id, date, title, duration, exp_granted
		FROM workouts WHERE user_id=$1 ORDER BY date DESC LIMIT 50`, userID); err != nil {
		http.Error(w, "could not fetch workouts", http.StatusInternalServerError)
		return
	}
	for i := range workouts {
		if err := h.db.Select(&workouts[i].Sets, `
			SELECT id, workout_id, exercise, sets, reps, weight, rpe, order_index
			FROM workout_sets WHERE workout_id=$1 ORDER BY order_index`, workouts[i].ID); err != nil {
			http.Error(w, "could not fetch workout sets", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, workouts)
}

// Delete removes the workout rows. EXP already granted stays on the timeline.
func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	res, err := h.db.Exec(`DELETE FROM workouts WHERE id=$1 AND user_id=$2`, workoutID, userID)
	if err != nil {
		http.Error(w, "could not delete workout", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Records lists the player's personal records.
func (h *WorkoutHandler) Records(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var records []models.PersonalRecord
	if err := h.db.Select(&records, `
		SELECT exercise, best_value, updated_at
		FROM personal_records WHERE user_id=$1 ORDER BY exercise`, userID); err != nil {
		http.Error(w, "could not fetch records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
