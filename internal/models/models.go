package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              int       `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"` // Encrypted in DB
	EmailBlindIndex string    `db:"email_blind_index" json:"-"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PlayerProfile is the progression root. Invariant after every mutation:
// level >= 1 and 0 <= exp_current < exp_to_next.
type PlayerProfile struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	UserID            int         `db:"user_id" json:"-"`
	DisplayName       string      `db:"display_name" json:"display_name"` // Encrypted in DB
	PlayerClass       PlayerClass `db:"player_class" json:"player_class"`
	Level             int         `db:"level" json:"level"`
	ExpCurrent        int         `db:"exp_current" json:"exp_current"`
	ExpToNext         int         `db:"exp_to_next" json:"exp_to_next"`
	PermExpMultiplier float64     `db:"perm_exp_multiplier" json:"perm_exp_multiplier"`
	SkillPoints       int         `db:"skill_points" json:"skill_points"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
}

type Habit struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	UserID            int        `db:"user_id" json:"-"`
	Name              string     `db:"name" json:"name"`
	Mode              HabitMode  `db:"mode" json:"mode"`
	HabitType         HabitType  `db:"habit_type" json:"habit_type"`
	Scalar            ScalarType `db:"scalar" json:"scalar"`
	TargetNumber      float64    `db:"target_number" json:"target_number"`
	BaseExp           int        `db:"base_exp" json:"base_exp"`
	CurrentStreak     int        `db:"current_streak" json:"current_streak"`
	BestStreak        int        `db:"best_streak" json:"best_streak"`
	LastCompletedDate *time.Time `db:"last_completed_date" json:"last_completed_date,omitempty"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// HabitLog is append-only except that the undo buffer may retract the single
// most recent entry.
type HabitLog struct {
	ID               uuid.UUID `db:"id" json:"id"`
	HabitID          uuid.UUID `db:"habit_id" json:"habit_id"`
	Date             time.Time `db:"date" json:"date"`
	Completed        bool      `db:"completed" json:"completed"`
	ValueNumber      float64   `db:"value_number" json:"value_number"`
	ExpGained        int       `db:"exp_gained" json:"exp_gained"` // negative for penalties
	PenaltyTriggered bool      `db:"penalty_triggered" json:"penalty_triggered"`
}

// Debuff expires naturally; "active" means expires_at > now.
type Debuff struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Key          string    `db:"key" json:"key"`
	AppliedAt    time.Time `db:"applied_at" json:"applied_at"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	ExpReduction float64   `db:"exp_reduction" json:"exp_reduction"`
}

func (d Debuff) ActiveAt(t time.Time) bool { return d.ExpiresAt.After(t) }

// Skill is permanently active once unlocked.
type Skill struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Key      SkillKey  `db:"key" json:"key"`
	Tier     int       `db:"tier" json:"tier"`
	Level    int       `db:"level" json:"level"`
	IsActive bool      `db:"is_active" json:"is_active"`
}

type WeeklyQuest struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	TargetCount   int       `db:"target_count" json:"target_count"`
	ProgressCount int       `db:"progress_count" json:"progress_count"`
	Completed     bool      `db:"completed" json:"completed"`
	WeekStartDate time.Time `db:"week_start_date" json:"week_start_date"`
}

type Workout struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	UserID     int          `db:"user_id" json:"-"`
	Date       time.Time    `db:"date" json:"date"`
	Title      string       `db:"title" json:"title"`
	Duration   int          `db:"duration" json:"duration"` // minutes
	ExpGranted int          `db:"exp_granted" json:"exp_granted"`
	Sets       []WorkoutSet `db:"-" json:"sets"`
}

type WorkoutSet struct {
	ID         uuid.UUID `db:"id" json:"id"`
	WorkoutID  uuid.UUID `db:"workout_id" json:"-"`
	Exercise   string    `db:"exercise" json:"exercise"`
	Sets       int       `db:"sets" json:"sets"`
	Reps       int       `db:"reps" json:"reps"`
	Weight     float64   `db:"weight" json:"weight"`
	RPE        int       `db:"rpe" json:"rpe"`
	OrderIndex int       `db:"order_index" json:"order_index"`
}

// ExperienceEvent is the authoritative audit timeline for every EXP change.
// Append-only, never mutated.
type ExperienceEvent struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	Amount    int               `db:"amount" json:"amount"`
	Source    ExperienceSource  `db:"source" json:"source"`
	Reason    string            `db:"reason" json:"reason"`
	Metadata  map[string]string `db:"-" json:"metadata,omitempty"`
	Timestamp time.Time         `db:"timestamp" json:"timestamp"`
}

type Badge struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Key      string    `db:"key" json:"key"`
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}

// PersonalRecord is the per-exercise best estimated 1RM.
type PersonalRecord struct {
	Exercise  string    `db:"exercise" json:"exercise"` // case-normalized
	BestValue float64   `db:"best_value" json:"best_value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type FoodLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"-"`
	Date       time.Time `db:"date" json:"date"`
	Label      string    `db:"label" json:"label"`
	Kcal       int       `db:"kcal" json:"kcal"`
	Protein    int       `db:"protein" json:"protein"`
	Carbs      int       `db:"carbs" json:"carbs"`
	Fat        int       `db:"fat" json:"fat"`
	Meal       *string   `db:"meal" json:"meal,omitempty"`
	IsFavorite bool      `db:"is_favorite" json:"is_favorite"`
}

type WeightEntry struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID int       `db:"user_id" json:"-"`
	Date   time.Time `db:"date" json:"date"`
	Kg     float64   `db:"kg" json:"kg"`
}

// LeaderboardEntry is the denormalized snapshot pushed to the ranked store.
// Rank is assigned by the store as the 1-based position in the sorted result.
type LeaderboardEntry struct {
	UserID      string    `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	PlayerClass string    `db:"player_class" json:"player_class"`
	Level       int       `db:"level" json:"level"`
	TotalExp    int       `db:"total_exp" json:"total_exp"`
	WeeklyExp   int       `db:"weekly_exp" json:"weekly_exp"`
	BestStreak  int       `db:"best_streak" json:"best_streak"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Rank        int       `db:"-" json:"rank"`
}
