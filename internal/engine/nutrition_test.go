package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"growapi/internal/models"
)

func TestFoodExp(t *testing.T) {
	// protein 30 -> 60, macros way off balance -> 0, low density -> 15
	assert.Equal(t, 75, FoodExp(500, 30, 40, 20))

	// macros matching kcal/10 exactly earn the full balance bonus, but such
	// food is dense enough to drop the density bonus to 5
	assert.Equal(t, 75, FoodExp(900, 30, 40, 20))

	// energy-dense junk gets the small density bonus
	assert.Equal(t, 5, FoodExp(1000, 0, 0, 1))
}

func TestWeightExp(t *testing.T) {
	assert.Equal(t, 10, WeightExp(80.4), "floor of 10")
	assert.Equal(t, 25, WeightExp(250))
}

func TestWorkoutExp(t *testing.T) {
	assert.Equal(t, 30, WorkoutExp(60, 500))
	assert.Equal(t, 65, WorkoutExp(60, 35000))
	assert.Equal(t, 100, WorkoutExp(200, 100000), "both components are capped")
	assert.Equal(t, 0, WorkoutExp(0, 0))
}

func TestWorkoutVolume(t *testing.T) {
	vol := WorkoutVolume([]models.WorkoutSet{
		{Sets: 3, Reps: 5, Weight: 100},
		{Sets: 2, Reps: 10, Weight: 40},
	})
	assert.InDelta(t, 2300, vol, 0.001)
}

func TestWeightEMA(t *testing.T) {
	_, ok := WeightEMA(nil, 0.3)
	assert.False(t, ok)

	day := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	entries := []models.WeightEntry{
		{Date: day.AddDate(0, 0, 1), Kg: 82}, // newest deliberately first
		{Date: day, Kg: 80},
	}
	ema, ok := WeightEMA(entries, 0.3)
	assert.True(t, ok)
	assert.InDelta(t, 80.6, ema, 0.001, "smoothing runs oldest to newest")
}

func TestWeightTrend(t *testing.T) {
	day := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var entries []models.WeightEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, models.WeightEntry{Date: day.AddDate(0, 0, i), Kg: 80 + float64(i)})
	}

	trend := WeightTrend(entries, 3)
	assert.Equal(t, []float64{84, 83, 82}, trend, "newest first, truncated")
}
