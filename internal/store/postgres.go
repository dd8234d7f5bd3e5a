package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"growapi/internal/clock"
	"growapi/internal/engine"
	"growapi/internal/models"
)

// Postgres implements the engine's Store over sqlx. LoadSession re-derives
// the player's current view (active habits, today's logs, unexpired debuffs,
// this week's quest); SaveSession flushes the whole state inside one
// transaction so a failed write leaves the database untouched.
type Postgres struct {
	db  *sqlx.DB
	clk clock.Clock
}

func NewPostgres(db *sqlx.DB, clk clock.Clock) *Postgres {
	return &Postgres{db: db, clk: clk}
}

func (p *Postgres) LoadSession(ctx context.Context, userID int) (*engine.SessionState, error) {
	st := engine.NewSessionState()
	now := p.clk.Now()
	dayStart := p.clk.StartOfDay(now)
	weekStart := p.clk.ISOWeekStart(now)

	var profile models.PlayerProfile
	err := p.db.GetContext(ctx, &profile, `
		SELECT id, user_id, display_name, player_class, level, exp_current, exp_to_next,
		       perm_exp_multiplier, skill_points, created_at
		FROM player_profiles WHERE user_id=$1`, userID)
	switch {
	case err == sql.ErrNoRows:
		// pre-onboarding; the empty state is valid
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	}
	st.Profile = &profile

	if err := p.db.SelectContext(ctx, &st.Habits, `
		SELECT id, user_id, name, mode, habit_type, scalar, target_number, base_exp,
		       current_streak, best_streak, last_completed_date, is_active, created_at
		FROM habits WHERE user_id=$1 AND is_active ORDER BY created_at`, userID); err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}

	if err := p.db.SelectContext(ctx, &st.TodayLogs, `
		SELECT l.id, l.habit_id, l.date, l.completed, l.value_number, l.exp_gained, l.penalty_triggered
		FROM habit_logs l JOIN habits h ON h.id = l.habit_id
		WHERE h.user_id=$1 AND l.date >= $2 ORDER BY l.date`, userID, dayStart); err != nil {
		return nil, fmt.Errorf("load today logs: %w", err)
	}

	if err := p.db.SelectContext(ctx, &st.Debuffs, `
		SELECT id, key, applied_at, expires_at, exp_reduction
		FROM debuffs WHERE user_id=$1 AND expires_at > $2`, userID, now); err != nil {
		return nil, fmt.Errorf("load debuffs: %w", err)
	}

	var quest models.WeeklyQuest
	err = p.db.GetContext(ctx, &quest, `
		SELECT id, name, target_count, progress_count, completed, week_start_date
		FROM weekly_quests WHERE user_id=$1 AND week_start_date=$2`, userID, weekStart)
	if err == nil {
		st.Quest = &quest
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("load quest: %w", err)
	}

	if err := p.db.SelectContext(ctx, &st.Skills, `
		SELECT id, key, tier, level, is_active FROM skills WHERE user_id=$1`, userID); err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}

	var grantedKeys []string
	if err := p.db.SelectContext(ctx, &grantedKeys, `
		SELECT achievement_key FROM achievement_grants WHERE user_id=$1`, userID); err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}
	for _, k := range grantedKeys {
		st.Granted[k] = true
	}

	var records []models.PersonalRecord
	if err := p.db.SelectContext(ctx, &records, `
		SELECT exercise, best_value, updated_at FROM personal_records WHERE user_id=$1`, userID); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for _, r := range records {
		st.Records[r.Exercise] = r
	}

	if err := p.db.QueryRowxContext(ctx, `
		SELECT iron_will_uses, iron_will_week_start FROM player_profiles WHERE user_id=$1`,
		userID).Scan(&st.IronWillUses, &st.IronWillWeekStart); err != nil {
		return nil, fmt.Errorf("load iron will state: %w", err)
	}

	return st, nil
}

func (p *Postgres) SaveSession(ctx context.Context, userID int, st *engine.SessionState) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if st.Profile != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO player_profiles (id, user_id, display_name, player_class, level, exp_current,
			                             exp_to_next, perm_exp_multiplier, skill_points, created_at,
			                             iron_will_uses, iron_will_week_start)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (user_id) DO UPDATE SET
			  display_name=EXCLUDED.display_name, player_class=EXCLUDED.player_class,
			  level=EXCLUDED.level, exp_current=EXCLUDED.exp_current, exp_to_next=EXCLUDED.exp_to_next,
			  perm_exp_multiplier=EXCLUDED.perm_exp_multiplier, skill_points=EXCLUDED.skill_points,
			  iron_will_uses=EXCLUDED.iron_will_uses, iron_will_week_start=EXCLUDED.iron_will_week_start`,
			st.Profile.ID, userID, st.Profile.DisplayName, st.Profile.PlayerClass, st.Profile.Level,
			st.Profile.ExpCurrent, st.Profile.ExpToNext, st.Profile.PermExpMultiplier,
			st.Profile.SkillPoints, st.Profile.CreatedAt, st.IronWillUses, st.IronWillWeekStart); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}

	for _, h := range st.Habits {
		if _, err := tx.ExecContext(ctx, `
			UPDATE habits SET current_streak=$1, best_streak=$2, last_completed_date=$3, is_active=$4
			WHERE id=$5 AND user_id=$6`,
			h.CurrentStreak, h.BestStreak, h.LastCompletedDate, h.IsActive, h.ID, userID); err != nil {
			return fmt.Errorf("save habit: %w", err)
		}
	}

	// today's log list is authoritative: upsert what is present, delete what
	// the undo buffer retracted
	dayStart := p.clk.StartOfDay(p.clk.Now())
	keep := make([]interface{}, 0, len(st.TodayLogs))
	for _, l := range st.TodayLogs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO habit_logs (id, habit_id, user_id, date, completed, value_number, exp_gained, penalty_triggered)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
			l.ID, l.HabitID, userID, l.Date, l.Completed, l.ValueNumber, l.ExpGained, l.PenaltyTriggered); err != nil {
			return fmt.Errorf("save log: %w", err)
		}
		keep = append(keep, l.ID)
	}
	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM habit_logs WHERE user_id=$1 AND date >= $2`, userID, dayStart); err != nil {
			return fmt.Errorf("trim logs: %w", err)
		}
	} else {
		query, args, err := sqlx.In(`DELETE FROM habit_logs WHERE user_id=? AND date >= ? AND id NOT IN (?)`, userID, dayStart, keep)
		if err != nil {
			return fmt.Errorf("trim logs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("trim logs: %w", err)
		}
	}

	for _, d := range st.Debuffs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO debuffs (id, user_id, key, applied_at, expires_at, exp_reduction)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
			d.ID, userID, d.Key, d.AppliedAt, d.ExpiresAt, d.ExpReduction); err != nil {
			return fmt.Errorf("save debuff: %w", err)
		}
	}

	if st.Quest != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weekly_quests (id, user_id, name, target_count, progress_count, completed, week_start_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO UPDATE SET progress_count=EXCLUDED.progress_count, completed=EXCLUDED.completed`,
			st.Quest.ID, userID, st.Quest.Name, st.Quest.TargetCount, st.Quest.ProgressCount,
			st.Quest.Completed, st.Quest.WeekStartDate); err != nil {
			return fmt.Errorf("save quest: %w", err)
		}
	}

	for _, sk := range st.Skills {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO skills (id, user_id, key, tier, level, is_active)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
			sk.ID, userID, sk.Key, sk.Tier, sk.Level, sk.IsActive); err != nil {
			return fmt.Errorf("save skill: %w", err)
		}
	}

	for key := range st.Granted {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO achievement_grants (user_id, achievement_key, granted_at)
			VALUES ($1,$2,NOW()) ON CONFLICT (user_id, achievement_key) DO NOTHING`, userID, key); err != nil {
			return fmt.Errorf("save grant: %w", err)
		}
	}

	for _, r := range st.Records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO personal_records (user_id, exercise, best_value, updated_at)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (user_id, exercise) DO UPDATE SET best_value=EXCLUDED.best_value, updated_at=EXCLUDED.updated_at`,
			userID, r.Exercise, r.BestValue, r.UpdatedAt); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
	}

	for _, e := range st.PendingEvents {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO experience_events (id, user_id, amount, source, reason, metadata, timestamp)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			e.ID, userID, e.Amount, e.Source, e.Reason, meta, e.Timestamp); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
	}

	for _, b := range st.PendingBadges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO badges (id, user_id, key, earned_at) VALUES ($1,$2,$3,$4)`,
			b.ID, userID, b.Key, b.EarnedAt); err != nil {
			return fmt.Errorf("save badge: %w", err)
		}
	}

	return tx.Commit()
}
