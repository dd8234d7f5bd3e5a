package engine_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growapi/internal/clock"
	"growapi/internal/engine"
	"growapi/internal/models"
	"growapi/internal/store"
)

func newTestEngine() (*store.Memory, *clock.Fixed, *engine.Manager) {
	mem := store.NewMemory()
	clk := clock.NewFixed(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)) // Wednesday noon
	return mem, clk, engine.NewManager(mem, clk, 10*time.Second)
}

func seedUser(mem *store.Memory, userID int, habits ...models.Habit) *engine.SessionState {
	st := engine.NewSessionState()
	st.Profile = &models.PlayerProfile{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     1,
		ExpToNext: engine.ExpForLevel(1),
	}
	st.Habits = habits
	mem.Seed(userID, st)
	return st
}

func newDaily(baseExp int) models.Habit {
	return models.Habit{
		ID:        uuid.New(),
		Name:      "Meditate",
		Mode:      models.HabitModeGood,
		HabitType: models.HabitTypeDaily,
		Scalar:    models.ScalarBinary,
		BaseExp:   baseExp,
		IsActive:  true,
	}
}

func newBadHabit(baseExp int) models.Habit {
	return models.Habit{
		ID:        uuid.New(),
		Name:      "Doomscrolling",
		Mode:      models.HabitModeBad,
		HabitType: models.HabitTypeDaily,
		Scalar:    models.ScalarBinary,
		BaseExp:   baseExp,
		IsActive:  true,
	}
}

func TestCompleteHabit_GrantsExpStreakAndAchievement(t *testing.T) {
	mem, _, mgr := newTestEngine()
	habit := newDaily(30)
	seedUser(mem, 1, habit)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	res, err := sess.CompleteHabit(context.Background(), habit.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, 30, res.ExpGained)
	assert.Equal(t, 1, res.StreakAfter)
	assert.False(t, res.LeveledUp)
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "first_habit", res.NewAchievements[0].Key)

	st := sess.State()
	assert.Equal(t, 30, st.Profile.ExpCurrent)
	assert.Len(t, st.TodayLogs, 1)
	assert.Equal(t, 30, st.TodayLogs[0].ExpGained)

	require.Len(t, mem.Events[1], 1)
	assert.Equal(t, 30, mem.Events[1][0].Amount)
	assert.Equal(t, models.SourceHabit, mem.Events[1][0].Source)
}

func TestCompleteHabit_RejectsNonPositiveQuantity(t *testing.T) {
	mem, _, mgr := newTestEngine()
	habit := models.Habit{
		ID: uuid.New(), Name: "Run", Mode: models.HabitModeGood,
		HabitType: models.HabitTypeDaily, Scalar: models.ScalarQuantity,
		TargetNumber: 5, BaseExp: 30, IsActive: true,
	}
	seedUser(mem, 1, habit)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.CompleteHabit(context.Background(), habit.ID, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidQuantity)

	st := sess.State()
	assert.Equal(t, 0, st.Profile.ExpCurrent, "rejected before any mutation")
	assert.Empty(t, st.TodayLogs)
}

func TestCompleteHabit_RequiresProfile(t *testing.T) {
	_, _, mgr := newTestEngine()

	sess, err := mgr.Session(context.Background(), 9)
	require.NoError(t, err)

	_, err = sess.CompleteHabit(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, engine.ErrProfileNotFound)
}

func TestCompleteHabit_LevelUpGrantsSkillPoint(t *testing.T) {
	mem, _, mgr := newTestEngine()
	habit := newDaily(30)
	st := seedUser(mem, 1, habit)
	st.Profile.ExpCurrent = 190
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	res, err := sess.CompleteHabit(context.Background(), habit.ID, 1)
	require.NoError(t, err)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.LevelsGained)

	got := sess.State()
	assert.Equal(t, 2, got.Profile.Level)
	assert.Equal(t, 20, got.Profile.ExpCurrent)
	assert.Equal(t, 250, got.Profile.ExpToNext)
	assert.Equal(t, 1, got.Profile.SkillPoints)
}

func TestAwardExp_MultiLevelJump(t *testing.T) {
	mem, _, mgr := newTestEngine()
	seedUser(mem, 1)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	res, err := sess.AwardExp(context.Background(), 460, models.SourceManual, "bonus", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.LevelsGained, "one grant can cross several thresholds")

	st := sess.State()
	assert.Equal(t, 3, st.Profile.Level)
	assert.Equal(t, 10, st.Profile.ExpCurrent) // 460 - 200 - 250
	assert.Equal(t, engine.ExpForLevel(3), st.Profile.ExpToNext)
	assert.Equal(t, 2, st.Profile.SkillPoints)
}

func TestAwardExp_ExactThreshold(t *testing.T) {
	mem, _, mgr := newTestEngine()
	seedUser(mem, 1)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.AwardExp(context.Background(), 200, models.SourceManual, "bonus", nil)
	require.NoError(t, err)

	st := sess.State()
	assert.Equal(t, 2, st.Profile.Level, "reaching the threshold exactly levels up")
	assert.Equal(t, 0, st.Profile.ExpCurrent)
}

func TestUndo_RestoresPreCompletionState(t *testing.T) {
	mem, _, mgr := newTestEngine()
	habit := newDaily(30)
	seedUser(mem, 1, habit)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)
	before := sess.State()

	_, err = sess.CompleteHabit(context.Background(), habit.ID, 1)
	require.NoError(t, err)

	_, ok := sess.UndoAvailable()
	assert.True(t, ok)

	require.NoError(t, sess.Undo(context.Background()))

	after := sess.State()
	assert.Equal(t, before.Profile, after.Profile)
	assert.Equal(t, before.Habits, after.Habits, "streak and last-completed restored")
	assert.Empty(t, after.TodayLogs)
	assert.True(t, after.Granted["first_habit"], "achievement grants survive undo")

	// timeline balances to zero instead of being rewritten
	require.Len(t, mem.Events[1], 2)
	assert.Equal(t, 30, mem.Events[1][0].Amount)
	assert.Equal(t, -30, mem.Events[1][1].Amount)

	assert.ErrorIs(t, sess.Undo(context.Background()), engine.ErrUndoUnavailable)
}

func TestUndo_WindowExpires(t *testing.T) {
	mem, clk, mgr := newTestEngine()
	habit := newDaily(30)
	seedUser(mem, 1, habit)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.CompleteHabit(context.Background(), habit.ID, 1)
	require.NoError(t, err)

	clk.Advance(11 * time.Second)

	_, ok := sess.UndoAvailable()
	assert.False(t, ok)
	assert.ErrorIs(t, sess.Undo(context.Background()), engine.ErrUndoUnavailable)

	st := sess.State()
	assert.Equal(t, 30, st.Profile.ExpCurrent, "expired undo leaves the completion standing")
}

func TestUndo_SlotHoldsOnlyTheLatestAction(t *testing.T) {
	mem, _, mgr := newTestEngine()
	a, b := newDaily(30), newDaily(40)
	b.Name = "Read"
	seedUser(mem, 1, a, b)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.CompleteHabit(context.Background(), a.ID, 1)
	require.NoError(t, err)
	_, err = sess.CompleteHabit(context.Background(), b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, sess.Undo(context.Background()))

	st := sess.State()
	assert.Equal(t, 30, st.Profile.ExpCurrent, "only the second completion was reversed")
	assert.Len(t, st.TodayLogs, 1)
	assert.Equal(t, a.ID, st.TodayLogs[0].HabitID)
}

func TestLogBadHabit_PenaltyDebuffAndNoUndo(t *testing.T) {
	mem, _, mgr := newTestEngine()
	bad := newBadHabit(25)
	st := seedUser(mem, 1, bad)
	st.Profile.ExpCurrent = 100
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	res, err := sess.LogBadHabit(context.Background(), bad.ID)
	require.NoError(t, err)

	assert.Equal(t, 15, res.PenaltyApplied)
	assert.False(t, res.IronWillUsed)

	got := sess.State()
	assert.Equal(t, 85, got.Profile.ExpCurrent)
	require.Len(t, got.Debuffs, 1)
	assert.Equal(t, bad.Name, got.Debuffs[0].Key)
	assert.Equal(t, 0, got.Habits[0].CurrentStreak, "slips never touch streaks")

	_, ok := sess.UndoAvailable()
	assert.False(t, ok, "penalties are not undoable")
}

func TestLogBadHabit_ExpFloorsAtZero(t *testing.T) {
	mem, _, mgr := newTestEngine()
	bad := newBadHabit(25)
	st := seedUser(mem, 1, bad)
	st.Profile.ExpCurrent = 10
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.LogBadHabit(context.Background(), bad.ID)
	require.NoError(t, err)

	got := sess.State()
	assert.Equal(t, 0, got.Profile.ExpCurrent)
	assert.Equal(t, 1, got.Profile.Level, "no de-leveling")
}

func TestLogBadHabit_IronWillWeeklyCap(t *testing.T) {
	mem, clk, mgr := newTestEngine()
	bad := newBadHabit(25)
	st := seedUser(mem, 1, bad)
	st.Profile.ExpCurrent = 500
	st.Skills = []models.Skill{{ID: uuid.New(), Key: models.SkillIronWill, Tier: 2, Level: 1, IsActive: true}}
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := sess.LogBadHabit(context.Background(), bad.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, res.PenaltyApplied)
		assert.True(t, res.IronWillUsed)
	}

	res, err := sess.LogBadHabit(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, res.PenaltyApplied, "two uses per week")
	assert.False(t, res.IronWillUsed)

	clk.AdvanceDays(7) // next ISO week
	res, err = sess.LogBadHabit(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, res.PenaltyApplied, "uses reset with the week")
	assert.True(t, res.IronWillUsed)
}

func TestUnlockSkill(t *testing.T) {
	mem, _, mgr := newTestEngine()
	st := seedUser(mem, 1)
	st.Profile.SkillPoints = 1
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.UnlockSkill(context.Background(), "timeTraveler")
	assert.ErrorIs(t, err, engine.ErrUnknownSkill)

	skill, err := sess.UnlockSkill(context.Background(), models.SkillEarlyBird)
	require.NoError(t, err)
	assert.Equal(t, models.SkillEarlyBird, skill.Key)
	assert.Equal(t, 1, skill.Tier)
	assert.True(t, skill.IsActive)
	assert.Equal(t, 0, sess.State().Profile.SkillPoints)

	_, err = sess.UnlockSkill(context.Background(), models.SkillEarlyBird)
	assert.ErrorIs(t, err, engine.ErrSkillAlreadyUnlocked)

	_, err = sess.UnlockSkill(context.Background(), models.SkillNightOwl)
	assert.ErrorIs(t, err, engine.ErrInsufficientSkillPoints)
	assert.Len(t, sess.State().Skills, 1, "failed unlock has no side effects")
}

func TestCompleteHabit_QuestProgressAndChestReward(t *testing.T) {
	mem, clk, mgr := newTestEngine()
	weekly := models.Habit{
		ID: uuid.New(), Name: "Long run", Mode: models.HabitModeGood,
		HabitType: models.HabitTypeWeekly, Scalar: models.ScalarBinary,
		BaseExp: 30, IsActive: true,
	}
	st := seedUser(mem, 1, weekly)
	st.Quest = &models.WeeklyQuest{
		ID: uuid.New(), Name: "Move more", TargetCount: 1,
		WeekStartDate: clk.ISOWeekStart(clk.Now()),
	}
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	res, err := sess.CompleteHabit(context.Background(), weekly.ID, 1)
	require.NoError(t, err)

	assert.True(t, res.QuestProgressed)
	assert.True(t, res.QuestCompleted)

	got := sess.State()
	assert.True(t, got.Quest.Completed)
	assert.InDelta(t, 0.01, got.Profile.PermExpMultiplier, 0.0001)

	require.Len(t, mem.Badges[1], 1)
	assert.True(t, strings.HasPrefix(mem.Badges[1][0].Key, "chest_"))
}

func TestChestReward_MultiplierCapped(t *testing.T) {
	mem, clk, mgr := newTestEngine()
	weekly := models.Habit{
		ID: uuid.New(), Name: "Long run", Mode: models.HabitModeGood,
		HabitType: models.HabitTypeWeekly, Scalar: models.ScalarBinary,
		BaseExp: 30, IsActive: true,
	}
	st := seedUser(mem, 1, weekly)
	st.Profile.PermExpMultiplier = 0.10
	st.Quest = &models.WeeklyQuest{
		ID: uuid.New(), Name: "Move more", TargetCount: 1,
		WeekStartDate: clk.ISOWeekStart(clk.Now()),
	}
	mem.Seed(1, st)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	_, err = sess.CompleteHabit(context.Background(), weekly.ID, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.10, sess.State().Profile.PermExpMultiplier, 0.0001)
}

func TestFinishWorkout_ExpAndPersonalRecords(t *testing.T) {
	mem, _, mgr := newTestEngine()
	seedUser(mem, 1)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	first := &models.Workout{
		ID: uuid.New(), Title: "Push day",
		Sets: []models.WorkoutSet{{Exercise: "Bench Press", Sets: 1, Reps: 5, Weight: 100}},
	}
	res, err := sess.FinishWorkout(context.Background(), first, 60)
	require.NoError(t, err)

	assert.Equal(t, 30, res.ExpGranted)
	assert.Equal(t, 30, first.ExpGranted)
	require.Len(t, res.Records, 1)
	assert.False(t, res.Records[0].Improved, "first appearance is a baseline")
	assert.Equal(t, 30, sess.State().Profile.ExpCurrent)

	second := &models.Workout{
		ID: uuid.New(), Title: "Push day",
		Sets: []models.WorkoutSet{{Exercise: "bench press", Sets: 1, Reps: 5, Weight: 110}},
	}
	res, err = sess.FinishWorkout(context.Background(), second, 60)
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.True(t, res.Records[0].Improved)
	assert.Equal(t, 30+30+engine.PRBonusExp, sess.State().Profile.ExpCurrent)

	require.Len(t, mem.Badges[1], 1)
	assert.Equal(t, "pr_bench_press", mem.Badges[1][0].Key)
}

func TestSaveFailure_RollsBackInMemoryState(t *testing.T) {
	mem, _, mgr := newTestEngine()
	habit := newDaily(30)
	seedUser(mem, 1, habit)

	sess, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)

	mem.FailNextSave = true
	_, err = sess.CompleteHabit(context.Background(), habit.ID, 1)
	assert.ErrorIs(t, err, engine.ErrPersistenceFailed)

	st := sess.State()
	assert.Equal(t, 0, st.Profile.ExpCurrent)
	assert.Equal(t, 0, st.Habits[0].CurrentStreak)
	assert.Empty(t, st.TodayLogs)
	assert.Empty(t, mem.Events[1])

	// the same operation succeeds once the store recovers
	res, err := sess.CompleteHabit(context.Background(), habit.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, res.ExpGained)
}

func TestManager_CachesSessionsUntilInvalidated(t *testing.T) {
	mem, _, mgr := newTestEngine()
	seedUser(mem, 1)

	a, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)
	b, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)
	assert.Same(t, a, b)

	mgr.Invalidate(1)
	c, err := mgr.Session(context.Background(), 1)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
