package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"growapi/internal/clock"
	"growapi/internal/engine"
	mw "growapi/internal/middleware"
	"growapi/internal/models"
)

const weightEMAAlpha = 0.3

type NutritionHandler struct {
	db      *sqlx.DB
	manager *engine.Manager
	clk     clock.Clock
}

func NewNutritionHandler(db *sqlx.DB, manager *engine.Manager, clk clock.Clock) *NutritionHandler {
	return &NutritionHandler{db: db, manager: manager, clk: clk}
}

// LogFood stores the entry and awards its EXP through the engine.
func (h *NutritionHandler) LogFood(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		Label   string  `json:"label"`
		Kcal    int     `json:"kcal"`
		Protein int     `json:"protein"`
		Carbs   int     `json:"carbs"`
		Fat     int     `json:"fat"`
		Meal    *string `json:"meal"`
		Barcode bool    `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		http.Error(w, "label required", http.StatusBadRequest)
		return
	}
	if req.Kcal < 0 || req.Protein < 0 || req.Carbs < 0 || req.Fat < 0 {
		http.Error(w, "macros must not be negative", http.StatusBadRequest)
		return
	}

	entry := models.FoodLog{
		ID:      uuid.New(),
		UserID:  userID,
		Date:    h.clk.Now(),
		Label:   req.Label,
		Kcal:    req.Kcal,
		Protein: req.Protein,
		Carbs:   req.Carbs,
		Fat:     req.Fat,
		Meal:    req.Meal,
	}
	if _, err := h.db.Exec(`
		INSERT INTO food_logs (id, user_id, date, label, kcal, protein, carbs, fat, meal, is_favorite)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false)`,
		entry.ID, entry.UserID, entry.Date, entry.Label, entry.Kcal, entry.Protein, entry.Carbs, entry.Fat, entry.Meal); err != nil {
		http.Error(w, "could not save food log", http.StatusInternalServerError)
		return
	}

	source := models.SourceNutrition
	if req.Barcode {
		source = models.SourceBarcode
	}
	exp := engine.FoodExp(entry.Kcal, entry.Protein, entry.Carbs, entry.Fat)

	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	award, err := sess.AwardExp(r.Context(), exp, source, "Logged "+entry.Label, map[string]string{
		"food_log_id": entry.ID.String(),
	})
	if err != nil {
		engineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"entry":      entry,
		"exp_gained": exp,
		"result":     award,
	})
}

func (h *NutritionHandler) TodayFood(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	dayStart := h.clk.StartOfDay(h.clk.Now())

	var entries []models.FoodLog
	if err := h.db.Select(&entries, `
		SELECT id, user_id, date, label, kcal, protein, carbs, fat, meal, is_favorite
		FROM food_logs WHERE user_id=$1 AND date >= $2 ORDER BY date`, userID, dayStart); err != nil {
		http.Error(w, "could not fetch food logs", http.StatusInternalServerError)
		return
	}

	var totals struct {
		Kcal    int `json:"kcal"`
		Protein int `json:"protein"`
		Carbs   int `json:"carbs"`
		Fat     int `json:"fat"`
	}
	for _, e := range entries {
		totals.Kcal += e.Kcal
		totals.Protein += e.Protein
		totals.Carbs += e.Carbs
		totals.Fat += e.Fat
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "totals": totals})
}

func (h *NutritionHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid food log id", http.StatusBadRequest)
		return
	}

	res, err := h.db.Exec(`UPDATE food_logs SET is_favorite = NOT is_favorite WHERE id=$1 AND user_id=$2`, entryID, userID)
	if err != nil {
		http.Error(w, "could not update food log", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "food log not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NutritionHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid food log id", http.StatusBadRequest)
		return
	}

	res, err := h.db.Exec(`DELETE FROM food_logs WHERE id=$1 AND user_id=$2`, entryID, userID)
	if err != nil {
		http.Error(w, "could not delete food log", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "food log not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogWeight stores a scale reading and awards its small EXP.
func (h *NutritionHandler) LogWeight(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var req struct {
		Kg float64 `json:"kg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Kg <= 0 || req.Kg > 500 {
		http.Error(w, "weight out of range", http.StatusBadRequest)
		return
	}

	entry := models.WeightEntry{
		ID:     uuid.New(),
		UserID: userID,
		Date:   h.clk.Now(),
		Kg:     req.Kg,
	}
	if _, err := h.db.Exec(`
		INSERT INTO weight_entries (id, user_id, date, kg) VALUES ($1,$2,$3,$4)`,
		entry.ID, entry.UserID, entry.Date, entry.Kg); err != nil {
		http.Error(w, "could not save weight entry", http.StatusInternalServerError)
		return
	}

	exp := engine.WeightExp(entry.Kg)
	sess, err := h.manager.Session(r.Context(), userID)
	if err != nil {
		engineError(w, err)
		return
	}
	award, err := sess.AwardExp(r.Context(), exp, models.SourceWeight,
		fmt.Sprintf("Weighed in at %.1f kg", entry.Kg), nil)
	if err != nil {
		engineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"entry":      entry,
		"exp_gained": exp,
		"result":     award,
	})
}

// WeightTrend returns recent readings plus the smoothed trend value.
func (h *NutritionHandler) WeightTrend(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	var entries []models.WeightEntry
	if err := h.db.Select(&entries, `
		SELECT id, user_id, date, kg
		FROM weight_entries WHERE user_id=$1 ORDER BY date DESC LIMIT 90`, userID); err != nil {
		http.Error(w, "could not fetch weight entries", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"entries": entries,
		"trend":   engine.WeightTrend(entries, 30),
	}
	if ema, ok := engine.WeightEMA(entries, weightEMAAlpha); ok {
		resp["ema"] = ema
	}
	writeJSON(w, http.StatusOK, resp)
}
