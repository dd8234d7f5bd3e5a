package engine

import "growapi/internal/models"

// SkillSet answers "is skill X active" for the scoring engine, the iron-will
// use counter and any future passive hook. Generic over skill key.
type SkillSet map[models.SkillKey]bool

// NewSkillSet collects the active skills from the player's unlocked list.
func NewSkillSet(skills []models.Skill) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		if s.IsActive {
			set[s.Key] = true
		}
	}
	return set
}

func (s SkillSet) Has(key models.SkillKey) bool { return s[key] }

// IronWillWeeklyUses caps how often Iron Will softens a penalty per ISO week.
const IronWillWeeklyUses = 2
