package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"growapi/internal/models"
)

func binaryHabit(baseExp int) models.Habit {
	return models.Habit{ID: uuid.New(), Scalar: models.ScalarBinary, BaseExp: baseExp}
}

func quantityHabit(baseExp int, target float64) models.Habit {
	return models.Habit{ID: uuid.New(), Scalar: models.ScalarQuantity, TargetNumber: target, BaseExp: baseExp}
}

func TestCalculateExpGain_NoBonuses(t *testing.T) {
	got := CalculateExpGain(binaryHabit(30), GainContext{ActualValue: 1})
	assert.Equal(t, 30, got)
}

func TestCalculateExpGain_QuantityRatio(t *testing.T) {
	h := quantityHabit(30, 10)

	assert.Equal(t, 15, CalculateExpGain(h, GainContext{ActualValue: 5}), "half the target earns half credit")
	assert.Equal(t, 30, CalculateExpGain(h, GainContext{ActualValue: 10}))
	assert.Equal(t, 39, CalculateExpGain(h, GainContext{ActualValue: 13}), "over-performance pays up to +30%")
	assert.Equal(t, 39, CalculateExpGain(h, GainContext{ActualValue: 100}), "ratio is capped at 1.3")
}

func TestCalculateExpGain_StreakBonus(t *testing.T) {
	h := binaryHabit(30)

	assert.Equal(t, 30, CalculateExpGain(h, GainContext{Streak: 2}), "no bonus below three days")
	assert.Equal(t, 32, CalculateExpGain(h, GainContext{Streak: 3}))
	assert.Equal(t, 33, CalculateExpGain(h, GainContext{Streak: 6}))
	assert.Equal(t, 45, CalculateExpGain(h, GainContext{Streak: 300}), "streak bonus saturates at 1.5x")
}

func TestCalculateExpGain_ComboBonus(t *testing.T) {
	h := binaryHabit(100)

	assert.Equal(t, 100, CalculateExpGain(h, GainContext{DailiesCompletedToday: 3}))
	assert.Equal(t, 105, CalculateExpGain(h, GainContext{DailiesCompletedToday: 4}))
}

func TestCalculateExpGain_SkillMultipliers(t *testing.T) {
	h := binaryHabit(100)

	earlyBird := GainContext{
		BeforeTenAM:  true,
		ActiveSkills: SkillSet{models.SkillEarlyBird: true},
	}
	assert.Equal(t, 110, CalculateExpGain(h, earlyBird))

	// skill active but outside its time window
	earlyBird.BeforeTenAM = false
	assert.Equal(t, 100, CalculateExpGain(h, earlyBird))

	nightOwl := GainContext{
		AfterEightPM: true,
		ActiveSkills: SkillSet{models.SkillNightOwl: true},
	}
	assert.Equal(t, 110, CalculateExpGain(h, nightOwl))

	specialist := GainContext{
		ActiveSkills: SkillSet{models.SkillSpecialist: true},
		TopTwoHabits: []uuid.UUID{h.ID},
	}
	assert.Equal(t, 110, CalculateExpGain(h, specialist))

	// specialist only pays on the two longest-streak habits
	specialist.TopTwoHabits = []uuid.UUID{uuid.New()}
	assert.Equal(t, 100, CalculateExpGain(h, specialist))

	perfectionist := GainContext{
		PerfectDay:   true,
		ActiveSkills: SkillSet{models.SkillPerfectionist: true},
	}
	assert.Equal(t, 115, CalculateExpGain(h, perfectionist))
}

func TestCalculateExpGain_PermanentMultiplier(t *testing.T) {
	h := binaryHabit(100)

	assert.Equal(t, 110, CalculateExpGain(h, GainContext{PermMultiplier: 0.10}))
}

func TestCalculateExpGain_BonusesCompound(t *testing.T) {
	h := binaryHabit(30)
	ctx := GainContext{
		Streak:                6,
		DailiesCompletedToday: 4,
		BeforeTenAM:           true,
		ActiveSkills:          SkillSet{models.SkillEarlyBird: true},
		PermMultiplier:        0.02,
	}
	// 30 * 1.10 * 1.05 * 1.10 * 1.02 = 38.88 -> 39
	assert.Equal(t, 39, CalculateExpGain(h, ctx))
}

func TestCalculatePenalty(t *testing.T) {
	assert.Equal(t, 15, CalculatePenalty(25, false, 0))
	assert.Equal(t, 12, CalculatePenalty(25, true, 2), "iron will softens by 20%")
	assert.Equal(t, 15, CalculatePenalty(25, true, 0), "exhausted iron will does not help")
	assert.Equal(t, 18, CalculatePenalty(30, false, 1), "uses left without the skill do nothing")
}

func TestExpForLevel(t *testing.T) {
	assert.Equal(t, 200, ExpForLevel(1))
	assert.Equal(t, 250, ExpForLevel(2))
	assert.Equal(t, 313, ExpForLevel(3))
	assert.Equal(t, 488, ExpForLevel(5))

	prev := 0
	for lvl := 1; lvl <= 50; lvl++ {
		cur := ExpForLevel(lvl)
		assert.Greater(t, cur, prev, "thresholds must strictly increase")
		prev = cur
	}
}
