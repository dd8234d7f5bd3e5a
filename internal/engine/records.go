package engine

import (
	"sort"
	"strings"
	"time"

	"growapi/internal/models"
)

// PRBonusExp is the flat EXP granted per beaten personal record.
const PRBonusExp = 50

// PRResult describes the outcome of one exercise's scan within a workout.
type PRResult struct {
	Exercise string  `json:"exercise"` // normalized name
	Best     float64 `json:"best"`
	Previous float64 `json:"previous"` // 0 when this is the first appearance
	Improved bool    `json:"improved"`
}

// OneRepMax estimates a single-rep maximum from a submaximal set
// (Epley-style: weight * (1 + reps/30)).
func OneRepMax(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30.0)
}

// NormalizeExercise folds case and surrounding whitespace so "Bench Press"
// and "bench press" hit the same record.
func NormalizeExercise(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BadgeKeyForExercise derives the badge key emitted when a record falls.
func BadgeKeyForExercise(normalized string) string {
	return "pr_" + strings.ReplaceAll(normalized, " ", "_")
}

// DetectRecords scans a finished workout's sets in logged order, updates the
// per-exercise best table in place and reports what changed. Each exercise
// yields at most one result per workout: its heaviest estimated 1RM compared
// against the pre-workout record. A first-ever appearance records a baseline
// without a bonus; a known exercise counts only on strict improvement, ties
// leave the record standing.
func DetectRecords(sets []models.WorkoutSet, records map[string]models.PersonalRecord, now time.Time) []PRResult {
	ordered := append([]models.WorkoutSet(nil), sets...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].OrderIndex < ordered[j].OrderIndex })

	workoutBest := make(map[string]float64)
	var names []string
	for _, set := range ordered {
		name := NormalizeExercise(set.Exercise)
		if name == "" {
			continue
		}
		oneRM := OneRepMax(set.Weight, set.Reps)
		if best, seen := workoutBest[name]; !seen || oneRM > best {
			if !seen {
				names = append(names, name)
			}
			workoutBest[name] = oneRM
		}
	}

	var out []PRResult
	for _, name := range names {
		best := workoutBest[name]
		prev, known := records[name]
		switch {
		case !known:
			records[name] = models.PersonalRecord{Exercise: name, BestValue: best, UpdatedAt: now}
			out = append(out, PRResult{Exercise: name, Best: best})
		case best > prev.BestValue:
			records[name] = models.PersonalRecord{Exercise: name, BestValue: best, UpdatedAt: now}
			out = append(out, PRResult{Exercise: name, Best: best, Previous: prev.BestValue, Improved: true})
		}
	}
	return out
}
