package models

// HabitMode distinguishes habits you want to build from habits you want to break.
type HabitMode string

const (
	HabitModeGood HabitMode = "good"
	HabitModeBad  HabitMode = "bad"
)

// HabitType controls which cadence a habit counts toward.
type HabitType string

const (
	HabitTypeDaily  HabitType = "daily"
	HabitTypeWeekly HabitType = "weekly"
)

// ScalarType says whether a habit is a yes/no checkbox or a measured quantity.
type ScalarType string

const (
	ScalarBinary   ScalarType = "binary"
	ScalarQuantity ScalarType = "quantity"
)

// PlayerClass is chosen once at onboarding. Cosmetic, but shown on the leaderboard.
type PlayerClass string

const (
	ClassWarrior PlayerClass = "Warrior"
	ClassScholar PlayerClass = "Scholar"
	ClassMonk    PlayerClass = "Monk"
)

func (c PlayerClass) Valid() bool {
	switch c {
	case ClassWarrior, ClassScholar, ClassMonk:
		return true
	}
	return false
}

// SkillKey names one of the fixed set of passive abilities.
type SkillKey string

const (
	SkillEarlyBird     SkillKey = "earlyBird"
	SkillSpecialist    SkillKey = "specialist"
	SkillIronWill      SkillKey = "ironWill"
	SkillNightOwl      SkillKey = "nightOwl"
	SkillPerfectionist SkillKey = "perfectionist"
	SkillResilient     SkillKey = "resilient"
)

// SkillTiers maps each unlockable skill to its tree tier.
var SkillTiers = map[SkillKey]int{
	SkillEarlyBird:     1,
	SkillNightOwl:      1,
	SkillSpecialist:    2,
	SkillIronWill:      2,
	SkillPerfectionist: 3,
	SkillResilient:     3,
}

func (k SkillKey) Valid() bool {
	_, ok := SkillTiers[k]
	return ok
}

// ExperienceSource is the closed enumeration of things that can move EXP.
type ExperienceSource string

const (
	SourceHabit          ExperienceSource = "habit"
	SourceHabitPenalty   ExperienceSource = "habitPenalty"
	SourceWorkout        ExperienceSource = "workout"
	SourcePersonalRecord ExperienceSource = "personalRecord"
	SourceNutrition      ExperienceSource = "nutrition"
	SourceWeight         ExperienceSource = "weight"
	SourceBarcode        ExperienceSource = "barcode"
	SourceManual         ExperienceSource = "manual"
)
