// Package domain defines the entities of the gym assistant.
package domain

import (
	"errors"
	"time"
)

// Difficulty levels recognized across the assistant.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// DifficultyLevels lists the valid levels in ascending order of intensity.
var DifficultyLevels = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// difficultyRank orders levels so the highest can be selected.
var difficultyRank = map[string]int{
	DifficultyBeginner:     1,
	DifficultyIntermediate: 2,
	DifficultyAdvanced:     3,
}

// DifficultyRank returns the ordering rank of a level; unknown levels rank as beginner.
func DifficultyRank(level string) int {
	if rank, ok := difficultyRank[level]; ok {
		return rank
	}
	return difficultyRank[DifficultyBeginner]
}

// UserProfile holds the fitness information plans are generated for.
type UserProfile struct {
	UserID             string   `json:"user_id"`
	Age                int      `json:"age"`
	WeightKg           float64  `json:"weight_kg"`
	HeightCm           float64  `json:"height_cm"`
	Gender             string   `json:"gender"`
	FitnessLevel       string   `json:"fitness_level"`
	Goals              []string `json:"goals"`
	Injuries           []string `json:"injuries,omitempty"`
	EquipmentAvailable []string `json:"equipment_available,omitempty"`
}

// BMI derives body mass index from weight and height.
func (p UserProfile) BMI() float64 {
	heightM := p.HeightCm / 100.0
	return p.WeightKg / (heightM * heightM)
}

// Validate enforces the profile invariants.
func (p UserProfile) Validate() error {
	if p.WeightKg <= 0 {
		return errors.New("weight must be positive")
	}
	if p.HeightCm <= 0 {
		return errors.New("height must be positive")
	}
	return nil
}

// Exercise is a single exercise with its prescription and instructions.
type Exercise struct {
	Name         string   `json:"name"`
	MuscleGroups []string `json:"muscle_groups"`
	Equipment    []string `json:"equipment"`
	Difficulty   string   `json:"difficulty"`
	Sets         int      `json:"sets"`
	Reps         string   `json:"reps"`
	RestSeconds  int      `json:"rest_seconds"`
	Instructions string   `json:"instructions"`
	SafetyTips   string   `json:"safety_tips,omitempty"`
}

// Workout is a complete generated workout plan.
type Workout struct {
	WorkoutID        string     `json:"workout_id"`
	Title            string     `json:"title"`
	DurationMinutes  int        `json:"duration_minutes"`
	Exercises        []Exercise `json:"exercises"`
	Warmup           string     `json:"warmup"`
	Cooldown         string     `json:"cooldown"`
	Difficulty       string     `json:"difficulty"`
	TargetMuscles    []string   `json:"target_muscles"`
	CaloriesEstimate int        `json:"calories_estimate"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Meal is a single meal with its nutritional breakdown.
type Meal struct {
	Name            string   `json:"name"`
	MealType        string   `json:"meal_type"`
	Calories        int      `json:"calories"`
	ProteinG        float64  `json:"protein_g"`
	CarbsG          float64  `json:"carbs_g"`
	FatsG           float64  `json:"fats_g"`
	Ingredients     []string `json:"ingredients"`
	Instructions    string   `json:"instructions"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
}

// NutritionPlan is a daily meal plan. Totals are always derived from the
// meal list, never taken from input.
type NutritionPlan struct {
	PlanID        string  `json:"plan_id"`
	Date          string  `json:"date"`
	Meals         []Meal  `json:"meals"`
	TotalCalories int     `json:"total_calories"`
	TotalProteinG float64 `json:"total_protein_g"`
	TotalCarbsG   float64 `json:"total_carbs_g"`
	TotalFatsG    float64 `json:"total_fats_g"`
	Notes         string  `json:"notes,omitempty"`
}

// WorkoutRequest describes a workout generation request.
type WorkoutRequest struct {
	UserProfile     *UserProfile `json:"user_profile"`
	WorkoutType     string       `json:"workout_type"`
	DurationMinutes int          `json:"duration_minutes"`
	TargetMuscles   []string     `json:"target_muscles,omitempty"`
	Model           string       `json:"model,omitempty"`
}

// NutritionRequest describes a meal plan generation request.
type NutritionRequest struct {
	UserProfile         *UserProfile `json:"user_profile"`
	DietaryRestrictions []string     `json:"dietary_restrictions,omitempty"`
	CuisinePreferences  []string     `json:"cuisine_preferences,omitempty"`
	BudgetLevel         string       `json:"budget_level,omitempty"`
	Model               string       `json:"model,omitempty"`
}

// ExerciseEmbedding is the unit of similarity search: an exercise name keyed
// to its embedding vector plus enough metadata to reconstruct the exercise.
type ExerciseEmbedding struct {
	ExerciseName string         `json:"exercise_name"`
	Description  string         `json:"description"`
	Embedding    []float64      `json:"embedding"`
	Metadata     map[string]any `json:"metadata"`
}
