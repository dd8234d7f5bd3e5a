package engine

import "time"

// AchievementDef is one entry in the closed achievement catalog. Predicates
// read the current snapshot only; grant state lives in the caller's ledger.
type AchievementDef struct {
	Key         string
	Name        string
	Description string
	Icon        string
	Predicate   func(st *SessionState) bool
}

// UnlockedAchievement is returned for achievements newly crossed in one pass.
type UnlockedAchievement struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// achievementCatalog is evaluated in declaration order.
var achievementCatalog = []AchievementDef{
	{
		Key: "first_habit", Name: "First Steps",
		Description: "Complete your first habit", Icon: "figure.walk",
		Predicate: func(st *SessionState) bool {
			for _, l := range st.TodayLogs {
				if l.Completed {
					return true
				}
			}
			return false
		},
	},
	{
		Key: "level_5", Name: "Novice",
		Description: "Reach Level 5", Icon: "star.fill",
		Predicate:   levelAtLeast(5),
	},
	{
		Key: "level_10", Name: "Adept",
		Description: "Reach Level 10", Icon: "star.circle.fill",
		Predicate:   levelAtLeast(10),
	},
	{
		Key: "streak_7", Name: "Week Warrior",
		Description: "Maintain a 7-day streak", Icon: "flame.fill",
		Predicate:   streakAtLeast(7),
	},
	{
		Key: "streak_30", Name: "Month Master",
		Description: "Maintain a 30-day streak", Icon: "flame.circle.fill",
		Predicate:   streakAtLeast(30),
	},
}

func levelAtLeast(n int) func(*SessionState) bool {
	return func(st *SessionState) bool {
		return st.Profile != nil && st.Profile.Level >= n
	}
}

func streakAtLeast(n int) func(*SessionState) bool {
	return func(st *SessionState) bool {
		for _, h := range st.Habits {
			if h.CurrentStreak >= n {
				return true
			}
		}
		return false
	}
}

// EvaluateAchievements scans the catalog against the snapshot, marks every
// newly satisfied achievement in the grant ledger and returns only those.
// Already-granted keys are skipped, never re-evaluated.
func EvaluateAchievements(st *SessionState, now time.Time) []UnlockedAchievement {
	var unlocked []UnlockedAchievement
	for _, def := range achievementCatalog {
		if st.Granted[def.Key] {
			continue
		}
		if !def.Predicate(st) {
			continue
		}
		st.Granted[def.Key] = true
		unlocked = append(unlocked, UnlockedAchievement{
			Key:         def.Key,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			EarnedAt:    now,
		})
	}
	return unlocked
}

// AchievementCatalog exposes the definitions for display purposes.
func AchievementCatalog() []AchievementDef {
	return achievementCatalog
}
