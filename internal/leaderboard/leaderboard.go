// Package leaderboard is the ranked-storage collaborator: it accepts
// denormalized snapshots and answers top-N queries. Rank is assigned here,
// as the 1-based position in the sorted result — the progression engine
// never computes ranks.
package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"growapi/internal/clock"
	"growapi/internal/models"
)

type Type string

const (
	AllTime Type = "allTime"
	Weekly  Type = "weekly"
)

const topLimit = 100

type Service struct {
	db  *sqlx.DB
	clk clock.Clock
}

func NewService(db *sqlx.DB, clk clock.Clock) *Service {
	return &Service{db: db, clk: clk}
}

// Publish upserts the player's snapshot. Total and weekly EXP come from the
// experience-event timeline, which is the authoritative aggregate source.
func (s *Service) Publish(ctx context.Context, userID int, displayName string) error {
	weekStart := s.clk.ISOWeekStart(s.clk.Now())

	var snap struct {
		PlayerClass string `db:"player_class"`
		Level       int    `db:"level"`
	}
	if err := s.db.GetContext(ctx, &snap, `
		SELECT player_class, level FROM player_profiles WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	var totalExp, weeklyExp, bestStreak int
	if err := s.db.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(amount), 0),
		       COALESCE(SUM(amount) FILTER (WHERE timestamp >= $2), 0)
		FROM experience_events WHERE user_id=$1`, userID, weekStart).Scan(&totalExp, &weeklyExp); err != nil {
		return fmt.Errorf("aggregate exp: %w", err)
	}
	if err := s.db.GetContext(ctx, &bestStreak, `
		SELECT COALESCE(MAX(best_streak), 0) FROM habits WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("best streak: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_entries (user_id, display_name, player_class, level, total_exp, weekly_exp, best_streak, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (user_id) DO UPDATE SET
		  display_name=EXCLUDED.display_name, player_class=EXCLUDED.player_class,
		  level=EXCLUDED.level, total_exp=EXCLUDED.total_exp, weekly_exp=EXCLUDED.weekly_exp,
		  best_streak=EXCLUDED.best_streak, updated_at=EXCLUDED.updated_at`,
		strconv.Itoa(userID), displayName, snap.PlayerClass, snap.Level, totalExp, weeklyExp, bestStreak)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// Top returns the highest entries by total or weekly EXP with ranks filled in.
func (s *Service) Top(ctx context.Context, t Type) ([]models.LeaderboardEntry, error) {
	field := "total_exp"
	if t == Weekly {
		field = "weekly_exp"
	}
	var entries []models.LeaderboardEntry
	query := fmt.Sprintf(`
		SELECT user_id, display_name, player_class, level, total_exp, weekly_exp, best_streak, updated_at
		FROM leaderboard_entries ORDER BY %s DESC LIMIT %d`, field, topLimit)
	if err := s.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
