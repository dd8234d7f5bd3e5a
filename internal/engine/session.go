package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"growapi/internal/clock"
	"growapi/internal/models"
)

// Session is the progression ledger for one player: it owns the loaded game
// state and is the only thing allowed to mutate EXP, streaks, skills and the
// quest. Operations run to completion under the session mutex — the
// per-profile serialization this engine requires, since the level-up loop and
// the EXP floor are not safe under interleaved writes.
type Session struct {
	userID     int
	store      Store
	clk        clock.Clock
	undoWindow time.Duration

	mu        sync.Mutex
	state     *SessionState
	loadedDay time.Time
	undo      *undoSlot
}

func NewSession(userID int, state *SessionState, store Store, clk clock.Clock, undoWindow time.Duration) *Session {
	if undoWindow <= 0 {
		undoWindow = DefaultUndoWindow
	}
	return &Session{
		userID:     userID,
		store:      store,
		clk:        clk,
		undoWindow: undoWindow,
		state:      state,
		loadedDay:  clk.StartOfDay(clk.Now()),
	}
}

// CompletionResult is what a habit completion produced.
type CompletionResult struct {
	ExpGained       int                   `json:"exp_gained"`
	StreakAfter     int                   `json:"streak_after"`
	LeveledUp       bool                  `json:"leveled_up"`
	LevelsGained    int                   `json:"levels_gained"`
	QuestProgressed bool                  `json:"quest_progressed"`
	QuestCompleted  bool                  `json:"quest_completed"`
	NewAchievements []UnlockedAchievement `json:"new_achievements,omitempty"`
	UndoExpiresAt   time.Time             `json:"undo_expires_at"`
}

// PenaltyResult reports a bad-habit slip.
type PenaltyResult struct {
	PenaltyApplied int  `json:"penalty_applied"`
	IronWillUsed   bool `json:"iron_will_used"`
}

// AwardResult reports a generic EXP grant.
type AwardResult struct {
	LeveledUp       bool                  `json:"leveled_up"`
	LevelsGained    int                   `json:"levels_gained"`
	NewAchievements []UnlockedAchievement `json:"new_achievements,omitempty"`
}

// WorkoutResult reports a finished workout.
type WorkoutResult struct {
	ExpGranted      int                   `json:"exp_granted"`
	Records         []PRResult            `json:"records,omitempty"`
	LeveledUp       bool                  `json:"leveled_up"`
	LevelsGained    int                   `json:"levels_gained"`
	NewAchievements []UnlockedAchievement `json:"new_achievements,omitempty"`
}

// CompleteHabit applies one completion: log, streak, EXP with live bonuses,
// quest progress, achievements, undo registration. Calling it twice the same
// day is two completions; preventing duplicates for binary habits is the
// caller's job. Either the whole sequence persists or none of it does.
func (s *Session) CompleteHabit(ctx context.Context, habitID uuid.UUID, value float64) (*CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if s.state.Profile == nil {
		return nil, ErrProfileNotFound
	}
	idx := s.state.findHabit(habitID)
	if idx < 0 {
		return nil, fmt.Errorf("habit %s: not found", habitID)
	}
	habit := &s.state.Habits[idx]
	if habit.Scalar == models.ScalarQuantity && value <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := s.clk.Now()
	snapshot := s.state.Clone()

	gainCtx := GainContext{
		ActualValue:           value,
		Streak:                habit.CurrentStreak,
		DailiesCompletedToday: s.dailiesCompletedToday(),
		ActiveSkills:          NewSkillSet(s.state.Skills),
		PermMultiplier:        s.state.Profile.PermExpMultiplier,
		BeforeTenAM:           now.Hour() < 10,
		AfterEightPM:          now.Hour() >= 20,
		PerfectDay:            s.isPerfectDay(),
		TopTwoHabits:          s.topTwoHabitIDs(),
	}
	expGain := CalculateExpGain(*habit, gainCtx)

	AdvanceStreak(habit, s.clk, now)

	s.state.TodayLogs = append(s.state.TodayLogs, models.HabitLog{
		ID:          uuid.New(),
		HabitID:     habit.ID,
		Date:        now,
		Completed:   true,
		ValueNumber: value,
		ExpGained:   expGain,
	})

	levels := s.addExp(expGain)

	res := &CompletionResult{
		ExpGained:    expGain,
		StreakAfter:  habit.CurrentStreak,
		LeveledUp:    levels > 0,
		LevelsGained: levels,
	}

	if habit.HabitType == models.HabitTypeWeekly && s.state.Quest != nil {
		q := s.state.Quest
		if !q.Completed {
			q.ProgressCount++
			res.QuestProgressed = true
			if q.ProgressCount >= q.TargetCount {
				q.Completed = true
				res.QuestCompleted = true
				s.grantChestReward(now)
			}
		}
	}

	s.appendEvent(expGain, models.SourceHabit, "Completed "+habit.Name, map[string]string{
		"habit_id": habit.ID.String(),
		"value":    fmt.Sprintf("%g", value),
	}, now)

	res.NewAchievements = EvaluateAchievements(s.state, now)

	if err := s.flush(ctx, snapshot); err != nil {
		return nil, err
	}

	s.undo = &undoSlot{
		snapshot:  snapshot,
		expDelta:  expGain,
		reason:    "completion of " + habit.Name,
		expiresAt: now.Add(s.undoWindow),
	}
	res.UndoExpiresAt = s.undo.expiresAt
	return res, nil
}

// LogBadHabit records a slip: a penalty log, a 24-hour debuff and an EXP
// deduction floored at zero. Iron Will softens the penalty while weekly uses
// remain; the streak of the habit is deliberately left alone.
func (s *Session) LogBadHabit(ctx context.Context, habitID uuid.UUID) (*PenaltyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if s.state.Profile == nil {
		return nil, ErrProfileNotFound
	}
	idx := s.state.findHabit(habitID)
	if idx < 0 {
		return nil, fmt.Errorf("habit %s: not found", habitID)
	}
	habit := &s.state.Habits[idx]

	now := s.clk.Now()
	snapshot := s.state.Clone()
	s.rollIronWillWeek(now)

	skills := NewSkillSet(s.state.Skills)
	hasIronWill := skills.Has(models.SkillIronWill)
	usesLeft := IronWillWeeklyUses - s.state.IronWillUses

	penalty := CalculatePenalty(habit.BaseExp, hasIronWill, usesLeft)
	ironWillUsed := hasIronWill && usesLeft > 0
	if ironWillUsed {
		s.state.IronWillUses++
	}

	s.state.TodayLogs = append(s.state.TodayLogs, models.HabitLog{
		ID:               uuid.New(),
		HabitID:          habit.ID,
		Date:             now,
		ExpGained:        -penalty,
		PenaltyTriggered: true,
	})

	s.state.Debuffs = append(s.state.Debuffs, models.Debuff{
		ID:           uuid.New(),
		Key:          habit.Name,
		AppliedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
		ExpReduction: 0.05,
	})

	s.state.Profile.ExpCurrent -= penalty
	if s.state.Profile.ExpCurrent < 0 {
		s.state.Profile.ExpCurrent = 0
	}

	s.appendEvent(-penalty, models.SourceHabitPenalty, "Slipped on "+habit.Name, map[string]string{
		"habit_id": habit.ID.String(),
	}, now)

	if err := s.flush(ctx, snapshot); err != nil {
		return nil, err
	}
	s.undo = nil
	return &PenaltyResult{PenaltyApplied: penalty, IronWillUsed: ironWillUsed}, nil
}

// UnlockSkill spends one skill point on the given key. Fails without side
// effects when no points are available or the key is already unlocked.
func (s *Session) UnlockSkill(ctx context.Context, key models.SkillKey) (*models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if s.state.Profile == nil {
		return nil, ErrProfileNotFound
	}
	if !key.Valid() {
		return nil, ErrUnknownSkill
	}
	for _, sk := range s.state.Skills {
		if sk.Key == key {
			return nil, ErrSkillAlreadyUnlocked
		}
	}
	if s.state.Profile.SkillPoints <= 0 {
		return nil, ErrInsufficientSkillPoints
	}

	snapshot := s.state.Clone()
	s.state.Profile.SkillPoints--
	skill := models.Skill{
		ID:       uuid.New(),
		Key:      key,
		Tier:     models.SkillTiers[key],
		Level:    1,
		IsActive: true,
	}
	s.state.Skills = append(s.state.Skills, skill)

	if err := s.flush(ctx, snapshot); err != nil {
		return nil, err
	}
	s.undo = nil
	return &skill, nil
}

// AwardExp is the generic entry point for non-habit EXP sources: nutrition,
// weight, workouts, records, manual grants.
func (s *Session) AwardExp(ctx context.Context, amount int, source models.ExperienceSource, reason string, metadata map[string]string) (*AwardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if s.state.Profile == nil {
		return nil, ErrProfileNotFound
	}

	now := s.clk.Now()
	snapshot := s.state.Clone()

	levels := s.addExp(amount)
	s.appendEvent(amount, source, reason, metadata, now)
	unlocked := EvaluateAchievements(s.state, now)

	if err := s.flush(ctx, snapshot); err != nil {
		return nil, err
	}
	s.undo = nil
	return &AwardResult{LeveledUp: levels > 0, LevelsGained: levels, NewAchievements: unlocked}, nil
}

// FinishWorkout grants the workout's EXP, then scans its sets for personal
// records; each beaten record earns a badge and a flat bonus. The caller owns
// persisting the workout row itself.
func (s *Session) FinishWorkout(ctx context.Context, workout *models.Workout, durationMinutes int) (*WorkoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	if s.state.Profile == nil {
		return nil, ErrProfileNotFound
	}

	now := s.clk.Now()
	snapshot := s.state.Clone()

	volume := WorkoutVolume(workout.Sets)
	exp := WorkoutExp(durationMinutes, volume)
	workout.Duration = durationMinutes
	workout.ExpGranted = exp

	levels := s.addExp(exp)
	s.appendEvent(exp, models.SourceWorkout, "Finished "+workout.Title, map[string]string{
		"workout_id": workout.ID.String(),
		"volume":     fmt.Sprintf("%.0f", volume),
	}, now)

	records := DetectRecords(workout.Sets, s.state.Records, now)
	for _, r := range records {
		if !r.Improved {
			continue
		}
		levels += s.addExp(PRBonusExp)
		s.grantBadge(BadgeKeyForExercise(r.Exercise), now)
		s.appendEvent(PRBonusExp, models.SourcePersonalRecord, "New record: "+r.Exercise, map[string]string{
			"exercise": r.Exercise,
			"best":     fmt.Sprintf("%.1f", r.Best),
		}, now)
	}

	unlocked := EvaluateAchievements(s.state, now)

	if err := s.flush(ctx, snapshot); err != nil {
		return nil, err
	}
	s.undo = nil
	return &WorkoutResult{
		ExpGranted:      exp,
		Records:         records,
		LeveledUp:       levels > 0,
		LevelsGained:    levels,
		NewAchievements: unlocked,
	}, nil
}

// Undo reverses the last EXP-affecting action exactly once within its
// window: the pre-action state is restored wholesale (streak, EXP, logs),
// a compensating entry balances the timeline, and the slot is cleared.
// Achievement grants are permanent and survive the restore.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	if !s.undo.usable(now) {
		s.undo = nil
		return ErrUndoUnavailable
	}
	slot := s.undo

	current := s.state
	restored := slot.snapshot
	for k := range current.Granted {
		restored.Granted[k] = true
	}
	s.state = restored
	if slot.expDelta != 0 {
		s.appendEvent(-slot.expDelta, models.SourceManual, "Undid "+slot.reason, nil, now)
	}

	if err := s.flush(ctx, current); err != nil {
		return err
	}
	s.undo = nil
	return nil
}

// UndoAvailable reports whether a compensating action is still pending and
// when it expires. Callers check this before offering undo.
func (s *Session) UndoAvailable() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.undo.usable(s.clk.Now()) {
		return time.Time{}, false
	}
	return s.undo.expiresAt, true
}

// State returns a deep copy for read-only callers.
func (s *Session) State() *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Refresh re-reads the session from the store.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *Session) reload(ctx context.Context) error {
	st, err := s.store.LoadSession(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	s.state = st
	s.loadedDay = s.clk.StartOfDay(s.clk.Now())
	s.undo = nil
	return nil
}

// ─── internals ──────────────────────────────────────────────────────────────

// ensureFresh reloads once the calendar day rolls over, so "today's logs" and
// the current quest never go stale in a long-lived session.
func (s *Session) ensureFresh(ctx context.Context) error {
	if s.clk.StartOfDay(s.clk.Now()).Equal(s.loadedDay) {
		return nil
	}
	return s.reload(ctx)
}

// addExp applies a signed delta and rolls levels: every threshold crossed
// bumps the level, recomputes the threshold and grants one skill point. A
// single large grant can cross several levels. EXP never goes negative.
func (s *Session) addExp(amount int) int {
	p := s.state.Profile
	p.ExpCurrent += amount
	if p.ExpCurrent < 0 {
		p.ExpCurrent = 0
	}
	levels := 0
	for p.ExpCurrent >= p.ExpToNext {
		p.ExpCurrent -= p.ExpToNext
		p.Level++
		p.ExpToNext = ExpForLevel(p.Level)
		p.SkillPoints++
		levels++
	}
	return levels
}

// flush saves everything or restores the pre-operation state. The silent
// save-swallowing of earlier designs is gone on purpose: the caller always
// learns about a persistence failure, and in-memory state stays consistent
// with what the store holds.
func (s *Session) flush(ctx context.Context, snapshot *SessionState) error {
	if err := s.store.SaveSession(ctx, s.userID, s.state); err != nil {
		s.state = snapshot
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	s.state.PendingEvents = nil
	s.state.PendingBadges = nil
	return nil
}

func (s *Session) appendEvent(amount int, source models.ExperienceSource, reason string, metadata map[string]string, now time.Time) {
	s.state.PendingEvents = append(s.state.PendingEvents, models.ExperienceEvent{
		ID:        uuid.New(),
		Amount:    amount,
		Source:    source,
		Reason:    reason,
		Metadata:  metadata,
		Timestamp: now,
	})
}

func (s *Session) grantBadge(key string, now time.Time) {
	s.state.PendingBadges = append(s.state.PendingBadges, models.Badge{
		ID:       uuid.New(),
		Key:      key,
		EarnedAt: now,
	})
}

// grantChestReward is the weekly-quest completion reward: a permanent EXP
// multiplier bump, capped, plus a badge.
func (s *Session) grantChestReward(now time.Time) {
	p := s.state.Profile
	if p.PermExpMultiplier < permMultCap {
		p.PermExpMultiplier += 0.01
	}
	s.grantBadge("chest_"+uuid.NewString()[:8], now)
}

// dailiesCompletedToday counts distinct daily habits completed today.
func (s *Session) dailiesCompletedToday() int {
	seen := make(map[uuid.UUID]bool)
	daily := make(map[uuid.UUID]bool)
	for _, h := range s.state.Habits {
		if h.HabitType == models.HabitTypeDaily {
			daily[h.ID] = true
		}
	}
	for _, l := range s.state.TodayLogs {
		if l.Completed && daily[l.HabitID] {
			seen[l.HabitID] = true
		}
	}
	return len(seen)
}

// isPerfectDay is true when every active good daily habit already has a
// completion today. Evaluated before the in-flight completion is logged.
func (s *Session) isPerfectDay() bool {
	completed := make(map[uuid.UUID]bool)
	for _, l := range s.state.TodayLogs {
		if l.Completed {
			completed[l.HabitID] = true
		}
	}
	total := 0
	for _, h := range s.state.Habits {
		if h.Mode == models.HabitModeGood && h.HabitType == models.HabitTypeDaily {
			total++
			if !completed[h.ID] {
				return false
			}
		}
	}
	return total > 0
}

// topTwoHabitIDs ranks habits by current streak, highest first.
func (s *Session) topTwoHabitIDs() []uuid.UUID {
	best, second := -1, -1
	for i := range s.state.Habits {
		switch {
		case best < 0 || s.state.Habits[i].CurrentStreak > s.state.Habits[best].CurrentStreak:
			second = best
			best = i
		case second < 0 || s.state.Habits[i].CurrentStreak > s.state.Habits[second].CurrentStreak:
			second = i
		}
	}
	var out []uuid.UUID
	if best >= 0 {
		out = append(out, s.state.Habits[best].ID)
	}
	if second >= 0 {
		out = append(out, s.state.Habits[second].ID)
	}
	return out
}

func (s *Session) rollIronWillWeek(now time.Time) {
	ws := s.clk.ISOWeekStart(now)
	if !s.state.IronWillWeekStart.Equal(ws) {
		s.state.IronWillWeekStart = ws
		s.state.IronWillUses = 0
	}
}
