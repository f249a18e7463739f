// Package storage persists the user profile and plan history to a single
// JSON state file.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
)

// WorkoutSummary is the history entry recorded for a generated workout.
type WorkoutSummary struct {
	WorkoutID        string   `json:"workout_id"`
	Title            string   `json:"title"`
	DurationMinutes  int      `json:"duration_minutes"`
	CaloriesEstimate int      `json:"calories_estimate"`
	TargetMuscles    []string `json:"target_muscles"`
	CreatedAt        string   `json:"created_at"`
}

// MealPlanSummary is the history entry recorded for a generated meal plan.
type MealPlanSummary struct {
	PlanID        string   `json:"plan_id"`
	Date          string   `json:"date"`
	TotalCalories int      `json:"total_calories"`
	MealNames     []string `json:"meal_names"`
}

// History holds the recorded plan summaries, most recent first.
type History struct {
	Workouts  []WorkoutSummary  `json:"workouts"`
	MealPlans []MealPlanSummary `json:"meal_plans"`
}

type state struct {
	UserProfile *domain.UserProfile `json:"user_profile"`
	History     History             `json:"history"`
}

// Store reads and writes the JSON state file.
type Store struct {
	path     string
	limit    int
	disabled bool
}

// New constructs a Store writing to dir/filename, keeping at most limit
// history entries per list. A disabled store ignores every operation.
func New(dir, filename string, limit int, disabled bool) *Store {
	return &Store{
		path:     filepath.Join(dir, filename),
		limit:    limit,
		disabled: disabled,
	}
}

// SaveProfile persists the user profile.
func (s *Store) SaveProfile(profile domain.UserProfile) error {
	if s.disabled {
		return nil
	}
	st := s.load()
	st.UserProfile = &profile
	return s.save(st)
}

// LoadProfile returns the stored profile, or nil when none exists.
func (s *Store) LoadProfile() (*domain.UserProfile, error) {
	if s.disabled {
		return nil, nil
	}
	return s.load().UserProfile, nil
}

// RecordWorkoutSummary prepends a workout summary to the history. Re-recording
// an id moves its entry to the front instead of duplicating it.
func (s *Store) RecordWorkoutSummary(workout domain.Workout) error {
	if s.disabled {
		return nil
	}
	st := s.load()
	summary := WorkoutSummary{
		WorkoutID:        workout.WorkoutID,
		Title:            workout.Title,
		DurationMinutes:  workout.DurationMinutes,
		CaloriesEstimate: workout.CaloriesEstimate,
		TargetMuscles:    workout.TargetMuscles,
		CreatedAt:        workout.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	kept := make([]WorkoutSummary, 0, len(st.History.Workouts)+1)
	kept = append(kept, summary)
	for _, entry := range st.History.Workouts {
		if entry.WorkoutID != summary.WorkoutID {
			kept = append(kept, entry)
		}
	}
	if len(kept) > s.limit {
		kept = kept[:s.limit]
	}
	st.History.Workouts = kept
	return s.save(st)
}

// RecordMealPlanSummary prepends a meal plan summary to the history with the
// same de-duplication rule as workouts.
func (s *Store) RecordMealPlanSummary(plan domain.NutritionPlan) error {
	if s.disabled {
		return nil
	}
	st := s.load()
	mealNames := make([]string, 0, len(plan.Meals))
	for _, meal := range plan.Meals {
		mealNames = append(mealNames, meal.Name)
	}
	summary := MealPlanSummary{
		PlanID:        plan.PlanID,
		Date:          plan.Date,
		TotalCalories: plan.TotalCalories,
		MealNames:     mealNames,
	}

	kept := make([]MealPlanSummary, 0, len(st.History.MealPlans)+1)
	kept = append(kept, summary)
	for _, entry := range st.History.MealPlans {
		if entry.PlanID != summary.PlanID {
			kept = append(kept, entry)
		}
	}
	if len(kept) > s.limit {
		kept = kept[:s.limit]
	}
	st.History.MealPlans = kept
	return s.save(st)
}

// GetHistory returns the recorded summaries, most recent first.
func (s *Store) GetHistory() (History, error) {
	if s.disabled {
		return History{Workouts: []WorkoutSummary{}, MealPlans: []MealPlanSummary{}}, nil
	}
	st := s.load()
	if st.History.Workouts == nil {
		st.History.Workouts = []WorkoutSummary{}
	}
	if st.History.MealPlans == nil {
		st.History.MealPlans = []MealPlanSummary{}
	}
	return st.History, nil
}

// load reads the state file; a missing or unreadable file yields empty state.
func (s *Store) load() state {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return state{}
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}
	}
	return st
}

func (s *Store) save(st state) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
