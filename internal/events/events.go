// Package events defines the payloads emitted when plans are generated and
// the publishers that deliver them.
package events

import "time"

// Event types carried in message headers.
const (
	TypeWorkoutGenerated  = "workout.generated"
	TypeMealPlanGenerated = "meal_plan.generated"
)

// WorkoutGenerated is emitted after a workout plan is produced for a user.
type WorkoutGenerated struct {
	WorkoutID        string    `json:"workout_id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	DurationMinutes  int       `json:"duration_minutes"`
	Difficulty       string    `json:"difficulty"`
	TargetMuscles    []string  `json:"target_muscles"`
	CaloriesEstimate int       `json:"calories_estimate"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// MealPlanGenerated is emitted after a nutrition plan is produced for a user.
type MealPlanGenerated struct {
	PlanID        string    `json:"plan_id"`
	UserID        string    `json:"user_id"`
	Date          string    `json:"date"`
	TotalCalories int       `json:"total_calories"`
	MealCount     int       `json:"meal_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}
