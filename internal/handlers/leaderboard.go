package handlers

import (
	"net/http"

	"growapi/internal/leaderboard"
)

type LeaderboardHandler struct {
	lb *leaderboard.Service
}

func NewLeaderboardHandler(lb *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{lb: lb}
}

// Top returns the ranked board; ?type=weekly switches to this week's EXP.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	t := leaderboard.AllTime
	if r.URL.Query().Get("type") == "weekly" {
		t = leaderboard.Weekly
	}
	entries, err := h.lb.Top(r.Context(), t)
	if err != nil {
		http.Error(w, "could not fetch leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": t, "entries": entries})
}
