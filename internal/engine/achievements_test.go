package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"growapi/internal/models"
)

func TestEvaluateAchievements_FirstHabit(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	st := NewSessionState()
	st.Profile = &models.PlayerProfile{Level: 1}
	st.TodayLogs = []models.HabitLog{{Completed: true}}

	unlocked := EvaluateAchievements(st, now)

	assert.Len(t, unlocked, 1)
	assert.Equal(t, "first_habit", unlocked[0].Key)
	assert.True(t, st.Granted["first_habit"])
}

func TestEvaluateAchievements_GrantedOnce(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	st := NewSessionState()
	st.Profile = &models.PlayerProfile{Level: 1}
	st.TodayLogs = []models.HabitLog{{Completed: true}}

	first := EvaluateAchievements(st, now)
	second := EvaluateAchievements(st, now)

	assert.Len(t, first, 1)
	assert.Empty(t, second, "granted keys are never re-reported")
}

func TestEvaluateAchievements_LevelThresholds(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	st := NewSessionState()
	st.Profile = &models.PlayerProfile{Level: 10}

	unlocked := EvaluateAchievements(st, now)

	keys := make([]string, len(unlocked))
	for i, u := range unlocked {
		keys[i] = u.Key
	}
	assert.Equal(t, []string{"level_5", "level_10"}, keys, "catalog order")
}

func TestEvaluateAchievements_StreakThresholds(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	st := NewSessionState()
	st.Profile = &models.PlayerProfile{Level: 1}
	st.Habits = []models.Habit{{CurrentStreak: 7}}

	unlocked := EvaluateAchievements(st, now)

	assert.Len(t, unlocked, 1)
	assert.Equal(t, "streak_7", unlocked[0].Key)

	st.Habits[0].CurrentStreak = 30
	unlocked = EvaluateAchievements(st, now)
	assert.Len(t, unlocked, 1)
	assert.Equal(t, "streak_30", unlocked[0].Key)
}
