package nutrition

import (
	"math"
	"strings"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
)

// MacroTargets holds daily nutrition targets.
type MacroTargets struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

// activityMultipliers maps fitness level to the TDEE activity factor.
var activityMultipliers = map[string]float64{
	domain.DifficultyBeginner:     1.375,
	domain.DifficultyIntermediate: 1.55,
	domain.DifficultyAdvanced:     1.725,
}

const defaultActivityMultiplier = 1.55

// CalculateMacros derives calorie and macro targets from a profile using the
// Mifflin-St Jeor equation. Pure computation, no I/O.
//
// The gender branch is binary: a leading "m" (case-insensitive) selects the
// male constant, everything else the female one. This simplification is
// intentional and matches the formula's published variants.
func CalculateMacros(profile *domain.UserProfile) (MacroTargets, error) {
	if profile == nil {
		return MacroTargets{}, domain.E(domain.KindValidation, "user profile is required for macro calculation")
	}
	if err := profile.Validate(); err != nil {
		return MacroTargets{}, domain.Wrap(domain.KindValidation, "invalid user profile for macro calculation", err)
	}

	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(profile.Age)
	if strings.HasPrefix(strings.ToUpper(profile.Gender), "M") {
		bmr += 5
	} else {
		bmr -= 161
	}

	activity, ok := activityMultipliers[profile.FitnessLevel]
	if !ok {
		activity = defaultActivityMultiplier
	}
	tdee := bmr * activity

	goals := make(map[string]bool, len(profile.Goals))
	for _, goal := range profile.Goals {
		goals[strings.ToLower(goal)] = true
	}

	var targetCalories, proteinG float64
	switch {
	case goals["build_muscle"] || goals["gain_weight"]:
		targetCalories = tdee * 1.15
		proteinG = profile.WeightKg * 2.0
	case goals["lose_weight"] || goals["cut"]:
		targetCalories = tdee * 0.8
		proteinG = profile.WeightKg * 1.8
	default:
		targetCalories = tdee
		proteinG = profile.WeightKg * 1.6
	}

	fatsG := targetCalories * 0.275 / 9
	// Carbs take the remaining energy budget and may go negative for extreme
	// profiles; downstream validation only sanity-checks totals loosely.
	carbsG := (targetCalories - proteinG*4 - fatsG*9) / 4

	return MacroTargets{
		Calories: int(math.Round(targetCalories)),
		ProteinG: round1(proteinG),
		CarbsG:   round1(carbsG),
		FatsG:    round1(fatsG),
	}, nil
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
