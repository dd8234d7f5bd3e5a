package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"growapi/internal/clock"
	mw "growapi/internal/middleware"
)

type DashboardHandler struct {
	db  *sqlx.DB
	clk clock.Clock
}

func NewDashboardHandler(db *sqlx.DB, clk clock.Clock) *DashboardHandler {
	return &DashboardHandler{db: db, clk: clk}
}

type timelineEvent struct {
	Amount    int       `db:"amount" json:"amount"`
	Source    string    `db:"source" json:"source"`
	Reason    string    `db:"reason" json:"reason"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

type dashboardResponse struct {
	DayExp          int             `json:"day_exp"`
	WeekExp         int             `json:"week_exp"`
	TotalExp        int             `json:"total_exp"`
	CompletionsWeek int             `json:"completions_week"`
	PenaltiesWeek   int             `json:"penalties_week"`
	RecentEvents    []timelineEvent `json:"recent_events"`
}

// Get aggregates the experience-event timeline into the numbers the home
// screen shows.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	now := h.clk.Now()
	dayStart := h.clk.StartOfDay(now)
	weekStart := h.clk.ISOWeekStart(now)

	var resp dashboardResponse
	err := h.db.QueryRowx(`
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE timestamp >= $2), 0) AS day_exp,
			COALESCE(SUM(amount) FILTER (WHERE timestamp >= $3), 0) AS week_exp,
			COALESCE(SUM(amount), 0) AS total_exp,
			COALESCE(COUNT(*) FILTER (WHERE source = 'habit' AND timestamp >= $3), 0) AS completions_week,
			COALESCE(COUNT(*) FILTER (WHERE source = 'habitPenalty' AND timestamp >= $3), 0) AS penalties_week
		FROM experience_events WHERE user_id = $1`, userID, dayStart, weekStart).
		Scan(&resp.DayExp, &resp.WeekExp, &resp.TotalExp, &resp.CompletionsWeek, &resp.PenaltiesWeek)
	if err != nil {
		http.Error(w, "could not fetch aggregates", http.StatusInternalServerError)
		return
	}

	if err := h.db.Select(&resp.RecentEvents, `
		SELECT amount, source, reason, timestamp
		FROM experience_events WHERE user_id=$1
		ORDER BY timestamp DESC LIMIT 20`, userID); err != nil {
		http.Error(w, "could not fetch events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
