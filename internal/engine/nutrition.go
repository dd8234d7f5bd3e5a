package engine

import (
	"math"
	"sort"

	"growapi/internal/models"
)

// FoodExp scores a food log: protein is rewarded, balanced macros earn up to
// 10, low energy density earns 15 instead of 5. Never below 5.
func FoodExp(kcal, protein, carbs, fat int) int {
	proteinBonus := protein * 2
	balanceBonus := 10 - abs(protein+carbs+fat-kcal/10)
	if balanceBonus < 0 {
		balanceBonus = 0
	}
	density := float64(kcal) / math.Max(float64(protein+carbs+fat), 1)
	densityBonus := 15
	if density > 9 {
		densityBonus = 5
	}
	total := proteinBonus + balanceBonus + densityBonus
	if total < 5 {
		return 5
	}
	return total
}

// WeightExp is the small fixed-ish reward for stepping on the scale.
func WeightExp(kg float64) int {
	exp := int(math.Round(kg)) / 10
	if exp < 10 {
		return 10
	}
	return exp
}

// WorkoutVolume sums weight*sets*reps across all sets.
func WorkoutVolume(sets []models.WorkoutSet) float64 {
	var total float64
	for _, s := range sets {
		total += s.Weight * float64(s.Sets) * float64(s.Reps)
	}
	return total
}

// WorkoutExp converts duration (minutes) and total volume into EXP:
// up to 60 from time under the bar, up to 40 from tonnage.
func WorkoutExp(durationMinutes int, volume float64) int {
	base := durationMinutes / 2
	if base > 60 {
		base = 60
	}
	volumeBonus := int(volume / 1000)
	if volumeBonus > 40 {
		volumeBonus = 40
	}
	return base + volumeBonus
}

// WeightTrend returns the most recent measurements, newest first.
func WeightTrend(entries []models.WeightEntry, days int) []float64 {
	sorted := append([]models.WeightEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > days {
		sorted = sorted[:days]
	}
	out := make([]float64, len(sorted))
	for i, e := range sorted {
		out[i] = e.Kg
	}
	return out
}

// WeightEMA smooths the weight series oldest-to-newest with the given alpha.
// The second return is false when there are no entries.
func WeightEMA(entries []models.WeightEntry, alpha float64) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	sorted := append([]models.WeightEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	ema := sorted[0].Kg
	for _, e := range sorted[1:] {
		ema = alpha*e.Kg + (1-alpha)*ema
	}
	return ema, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
