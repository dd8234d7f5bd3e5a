package engine

import (
	"math"

	"github.com/google/uuid"

	"growapi/internal/models"
)

// Caps on the individual multipliers. The streak bonus saturates long before
// most streaks do; the quantity ratio rewards over-performance up to +30%.
const (
	quantityRatioCap = 1.3
	streakBonusCap   = 1.5
	permMultCap      = 0.10
)

// GainContext carries the situational inputs to CalculateExpGain. All fields
// describe the moment of completion; the function itself is pure.
type GainContext struct {
	ActualValue           float64
	Streak                int
	DailiesCompletedToday int
	ActiveSkills          map[models.SkillKey]bool
	PermMultiplier        float64
	BeforeTenAM           bool
	AfterEightPM          bool
	PerfectDay            bool
	TopTwoHabits          []uuid.UUID
}

// CalculateExpGain computes the EXP awarded for one habit completion.
// Bonuses compound multiplicatively; the result is rounded half-up and is
// never negative for the non-negative baseExp values callers pass.
func CalculateExpGain(habit models.Habit, ctx GainContext) int {
	base := float64(habit.BaseExp)

	quantityRatio := 1.0
	if habit.Scalar == models.ScalarQuantity && habit.TargetNumber > 0 {
		// Partial completion earns partial credit; over-performance is
		// rewarded up to +30%.
		quantityRatio = math.Min(ctx.ActualValue/habit.TargetNumber, quantityRatioCap)
	}

	streakBonus := 1.0 + 0.05*float64(ctx.Streak/3)
	streakMult := math.Min(streakBonus, streakBonusCap)

	comboMult := 1.0
	if ctx.DailiesCompletedToday >= 4 {
		comboMult = 1.05
	}

	skillMult := 1.0
	if ctx.BeforeTenAM && ctx.ActiveSkills[models.SkillEarlyBird] {
		skillMult *= 1.10
	}
	if ctx.AfterEightPM && ctx.ActiveSkills[models.SkillNightOwl] {
		skillMult *= 1.10
	}
	if ctx.ActiveSkills[models.SkillSpecialist] && containsID(ctx.TopTwoHabits, habit.ID) {
		skillMult *= 1.10
	}
	if ctx.PerfectDay && ctx.ActiveSkills[models.SkillPerfectionist] {
		skillMult *= 1.15
	}

	permMult := 1.0 + ctx.PermMultiplier

	total := base * quantityRatio * streakMult * comboMult * skillMult * permMult
	return int(math.Round(total))
}

// CalculatePenalty computes the EXP deducted for a bad-habit slip. Iron Will
// softens the hit by 20% while the player has weekly uses left; consuming a
// use is the caller's job.
func CalculatePenalty(baseExp int, hasIronWillActive bool, ironWillUsesLeft int) int {
	penalty := float64(baseExp) * 0.6
	if hasIronWillActive && ironWillUsesLeft > 0 {
		penalty *= 0.8
	}
	return int(math.Round(penalty))
}

// ExpForLevel is the EXP threshold to complete the given level:
// round(200 * 1.25^(level-1)). Strictly increasing.
func ExpForLevel(level int) int {
	return int(math.Round(200.0 * math.Pow(1.25, float64(level-1))))
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
