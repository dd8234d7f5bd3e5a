package handlers

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"growapi/internal/leaderboard"
	"growapi/internal/services"
)

// publishScore refreshes the player's leaderboard snapshot after a mutation.
// Failures are logged, not surfaced: the ranked board lags behind rather than
// failing the progression write that already committed.
func publishScore(ctx context.Context, db *sqlx.DB, enc *services.EncryptionService, lb *leaderboard.Service, userID int) {
	var name string
	if err := db.GetContext(ctx, &name, `SELECT display_name FROM player_profiles WHERE user_id=$1`, userID); err != nil {
		slog.Warn("leaderboard publish skipped", slog.Int("user_id", userID), slog.Any("err", err))
		return
	}
	plain, err := enc.DecryptName(name)
	if err != nil {
		slog.Warn("leaderboard publish skipped", slog.Int("user_id", userID), slog.Any("err", err))
		return
	}
	if err := lb.Publish(ctx, userID, plain); err != nil {
		slog.Warn("leaderboard publish failed", slog.Int("user_id", userID), slog.Any("err", err))
	}
}
