package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"growapi/internal/models"
)

func TestOneRepMax(t *testing.T) {
	assert.InDelta(t, 100.0, OneRepMax(100, 0), 0.001)
	assert.InDelta(t, 116.667, OneRepMax(100, 5), 0.001)
	assert.InDelta(t, 133.333, OneRepMax(100, 10), 0.001)
}

func TestNormalizeExercise(t *testing.T) {
	assert.Equal(t, "bench press", NormalizeExercise("  Bench Press "))
	assert.Equal(t, "pr_bench_press", BadgeKeyForExercise("bench press"))
}

func TestDetectRecords_Baseline(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	records := map[string]models.PersonalRecord{}

	out := DetectRecords([]models.WorkoutSet{
		{Exercise: "Bench Press", Reps: 5, Weight: 100},
	}, records, now)

	assert.Len(t, out, 1)
	assert.False(t, out[0].Improved, "first appearance sets a baseline, no bonus")
	assert.InDelta(t, 116.667, out[0].Best, 0.001)
	assert.InDelta(t, 116.667, records["bench press"].BestValue, 0.001)
}

func TestDetectRecords_Improvement(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	records := map[string]models.PersonalRecord{
		"bench press": {Exercise: "bench press", BestValue: 110},
	}

	out := DetectRecords([]models.WorkoutSet{
		{Exercise: "bench press", Reps: 5, Weight: 100},
	}, records, now)

	assert.Len(t, out, 1)
	assert.True(t, out[0].Improved)
	assert.InDelta(t, 110, out[0].Previous, 0.001)
	assert.InDelta(t, 116.667, records["bench press"].BestValue, 0.001)
}

func TestDetectRecords_TieStands(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	records := map[string]models.PersonalRecord{
		"squat": {Exercise: "squat", BestValue: 100},
	}

	out := DetectRecords([]models.WorkoutSet{
		{Exercise: "Squat", Reps: 0, Weight: 100},
	}, records, now)

	assert.Empty(t, out, "equalling a record changes nothing")
	assert.InDelta(t, 100, records["squat"].BestValue, 0.001)
}

func TestDetectRecords_OneResultPerExercise(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	records := map[string]models.PersonalRecord{}

	out := DetectRecords([]models.WorkoutSet{
		{Exercise: "Deadlift", Reps: 5, Weight: 140, OrderIndex: 0},
		{Exercise: "deadlift", Reps: 3, Weight: 160, OrderIndex: 1},
		{Exercise: "Deadlift", Reps: 8, Weight: 120, OrderIndex: 2},
	}, records, now)

	assert.Len(t, out, 1, "heaviest estimate wins within a workout")
	assert.InDelta(t, 176, out[0].Best, 0.001)
}
