// Package parser transforms AI-produced JSON into validated domain entities.
//
// The parser is deliberately permissive about field values: unrecognized
// difficulties fall back to a default, out-of-range numbers are clamped, and
// missing optional fields get configured defaults. It fails fast only on
// structurally invalid input and on missing required fields.
package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
)

// Options carries the defaulting and clamping configuration. Components
// receive these explicitly at construction instead of reading ambient state.
type Options struct {
	DifficultyLevels  []string
	DefaultDifficulty string
	DefaultSets       int
	MinSets           int
	MaxSets           int
	DefaultReps       string
	DefaultRest       int
	WorkoutTitle      string
	WorkoutDuration   int
	WarmupText        string
	CooldownText      string
	CalorieBaseRate   int
	MealName          string
	MealType          string
	MealPrepTime      int
}

// DefaultOptions returns the defaults expected for unreliable AI output.
func DefaultOptions() Options {
	return Options{
		DifficultyLevels:  domain.DifficultyLevels,
		DefaultDifficulty: domain.DifficultyIntermediate,
		DefaultSets:       3,
		MinSets:           1,
		MaxSets:           10,
		DefaultReps:       "10",
		DefaultRest:       60,
		WorkoutTitle:      "Workout",
		WorkoutDuration:   30,
		WarmupText:        "5 minutes of light cardio",
		CooldownText:      "5 minutes of stretching",
		CalorieBaseRate:   7,
		MealName:          "Meal",
		MealType:          "meal",
		MealPrepTime:      15,
	}
}

// Parser converts raw key/value maps into domain entities.
type Parser struct {
	opts Options
}

// New constructs a Parser with the given options.
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

func parseErr(format string, args ...any) *domain.Error {
	return domain.E(domain.KindParser, fmt.Sprintf(format, args...))
}

// ParseExercise converts a raw map into an Exercise, applying defaults and
// clamps. Name and instructions are required.
func (p *Parser) ParseExercise(data map[string]any) (domain.Exercise, error) {
	if data == nil {
		return domain.Exercise{}, parseErr("cannot parse nil as exercise")
	}
	if len(data) == 0 {
		return domain.Exercise{}, parseErr("cannot parse empty object as exercise")
	}

	name, err := requiredString(data, "name")
	if err != nil {
		return domain.Exercise{}, err
	}
	instructions, err := requiredString(data, "instructions")
	if err != nil {
		return domain.Exercise{}, err
	}

	return domain.Exercise{
		Name:         name,
		MuscleGroups: stringOrList(data["muscle_groups"]),
		Equipment:    listOnly(data["equipment"]),
		Difficulty:   p.normalizeDifficulty(data["difficulty"]),
		Sets:         p.clampSets(data["sets"]),
		Reps:         p.defaultReps(data["reps"]),
		RestSeconds:  p.clampRest(data["rest_seconds"]),
		Instructions: instructions,
		SafetyTips:   optionalString(data["safety_tips"]),
	}, nil
}

// ParseWorkout converts a raw map into a Workout. The workout must contain at
// least one parsable exercise; any per-exercise failure fails the whole parse.
func (p *Parser) ParseWorkout(data map[string]any) (*domain.Workout, error) {
	if data == nil {
		return nil, parseErr("cannot parse nil as workout")
	}

	rawExercises, ok := data["exercises"].([]any)
	if !ok || len(rawExercises) == 0 {
		return nil, parseErr("workout must contain at least one exercise")
	}

	exercises := make([]domain.Exercise, 0, len(rawExercises))
	for i, raw := range rawExercises {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, parseErr("exercise %d is not an object", i)
		}
		exercise, err := p.ParseExercise(item)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}

	duration := p.opts.WorkoutDuration
	if raw, present := data["duration_minutes"]; present {
		value, ok := toInt(raw)
		if !ok {
			return nil, parseErr("invalid workout duration %v", raw)
		}
		duration = value
	}

	targetMuscles := stringOrList(data["target_muscles"])
	if len(targetMuscles) == 0 {
		targetMuscles = inferTargetMuscles(exercises)
	}

	calories, _ := toInt(data["calories_estimate"])
	if calories == 0 {
		calories = p.estimateCalories(duration, exercises)
	}

	return &domain.Workout{
		WorkoutID:        newID("workout"),
		Title:            stringWithDefault(data["title"], p.opts.WorkoutTitle),
		DurationMinutes:  duration,
		Exercises:        exercises,
		Warmup:           stringWithDefault(data["warmup"], p.opts.WarmupText),
		Cooldown:         stringWithDefault(data["cooldown"], p.opts.CooldownText),
		Difficulty:       inferDifficulty(exercises),
		TargetMuscles:    targetMuscles,
		CaloriesEstimate: calories,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// ParseWorkoutJSON decodes a JSON document and parses it as a workout.
func (p *Parser) ParseWorkoutJSON(text string) (*domain.Workout, error) {
	data, err := decodeObject(text)
	if err != nil {
		return nil, err
	}
	return p.ParseWorkout(data)
}

// ParseMeal converts a raw map into a Meal. Macro values that fail to cast
// default to zero; negative values are zeroed, not rejected.
func (p *Parser) ParseMeal(data map[string]any) (domain.Meal, error) {
	if data == nil {
		return domain.Meal{}, parseErr("cannot parse nil as meal")
	}

	mealType := strings.ToLower(strings.TrimSpace(optionalString(data["meal_type"])))
	if mealType == "" {
		mealType = p.opts.MealType
	}

	calories, _ := toInt(data["calories"])
	if calories < 0 {
		calories = 0
	}

	prepTime := p.opts.MealPrepTime
	if value, ok := toInt(data["prep_time_minutes"]); ok {
		prepTime = value
	}

	return domain.Meal{
		Name:            stringWithDefault(data["name"], p.opts.MealName),
		MealType:        mealType,
		Calories:        calories,
		ProteinG:        nonNegativeFloat(data["protein_g"]),
		CarbsG:          nonNegativeFloat(data["carbs_g"]),
		FatsG:           nonNegativeFloat(data["fats_g"]),
		Ingredients:     listOnly(data["ingredients"]),
		Instructions:    optionalString(data["instructions"]),
		PrepTimeMinutes: prepTime,
	}, nil
}

// ParsePlan converts a raw map into a NutritionPlan. Totals are recomputed
// from the parsed meals; totals present in the input are ignored. An empty
// meal list is accepted here; rejecting it is the orchestration layer's job.
func (p *Parser) ParsePlan(data map[string]any) (*domain.NutritionPlan, error) {
	if data == nil {
		return nil, parseErr("cannot parse nil as nutrition plan")
	}

	var meals []domain.Meal
	if rawMeals, ok := data["meals"].([]any); ok {
		meals = make([]domain.Meal, 0, len(rawMeals))
		for i, raw := range rawMeals {
			item, ok := raw.(map[string]any)
			if !ok {
				return nil, parseErr("meal %d is not an object", i)
			}
			meal, err := p.ParseMeal(item)
			if err != nil {
				return nil, err
			}
			meals = append(meals, meal)
		}
	}

	plan := &domain.NutritionPlan{
		PlanID: newID("plan"),
		Date:   stringWithDefault(data["date"], time.Now().Format("2006-01-02")),
		Meals:  meals,
		Notes:  optionalString(data["notes"]),
	}
	for _, meal := range meals {
		plan.TotalCalories += meal.Calories
		plan.TotalProteinG += meal.ProteinG
		plan.TotalCarbsG += meal.CarbsG
		plan.TotalFatsG += meal.FatsG
	}
	return plan, nil
}

// ParsePlanJSON decodes a JSON document and parses it as a nutrition plan.
func (p *Parser) ParsePlanJSON(text string) (*domain.NutritionPlan, error) {
	data, err := decodeObject(text)
	if err != nil {
		return nil, err
	}
	return p.ParsePlan(data)
}

func decodeObject(text string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, domain.Wrap(domain.KindParser, "invalid JSON", err)
	}
	return data, nil
}

// newID generates a fresh identifier on every call; two parses of identical
// input never share an id.
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (p *Parser) normalizeDifficulty(raw any) string {
	normalized := strings.ToLower(strings.TrimSpace(optionalString(raw)))
	for _, level := range p.opts.DifficultyLevels {
		if normalized == level {
			return normalized
		}
	}
	return p.opts.DefaultDifficulty
}

func (p *Parser) clampSets(raw any) int {
	sets, ok := toInt(raw)
	if !ok {
		return p.opts.DefaultSets
	}
	if sets < p.opts.MinSets {
		return p.opts.MinSets
	}
	if sets > p.opts.MaxSets {
		return p.opts.MaxSets
	}
	return sets
}

func (p *Parser) defaultReps(raw any) string {
	reps := strings.TrimSpace(optionalString(raw))
	if reps == "" {
		return p.opts.DefaultReps
	}
	return reps
}

func (p *Parser) clampRest(raw any) int {
	rest, ok := toInt(raw)
	if !ok {
		return p.opts.DefaultRest
	}
	if rest < 0 {
		return 0
	}
	return rest
}

func (p *Parser) estimateCalories(duration int, exercises []domain.Exercise) int {
	multiplier := 1.0
	for _, exercise := range exercises {
		switch exercise.Difficulty {
		case domain.DifficultyAdvanced:
			if multiplier < 1.3 {
				multiplier = 1.3
			}
		case domain.DifficultyIntermediate:
			if multiplier < 1.1 {
				multiplier = 1.1
			}
		}
	}
	return int(float64(duration) * float64(p.opts.CalorieBaseRate) * multiplier)
}

// inferTargetMuscles unions the exercises' muscle groups, deduplicated in
// first-seen order.
func inferTargetMuscles(exercises []domain.Exercise) []string {
	seen := make(map[string]struct{})
	muscles := make([]string, 0)
	for _, exercise := range exercises {
		for _, muscle := range exercise.MuscleGroups {
			if muscle == "" {
				continue
			}
			if _, ok := seen[muscle]; ok {
				continue
			}
			seen[muscle] = struct{}{}
			muscles = append(muscles, muscle)
		}
	}
	return muscles
}

// inferDifficulty picks the highest difficulty among the exercises.
func inferDifficulty(exercises []domain.Exercise) string {
	highest := domain.DifficultyBeginner
	for _, exercise := range exercises {
		if domain.DifficultyRank(exercise.Difficulty) > domain.DifficultyRank(highest) {
			highest = exercise.Difficulty
		}
	}
	return highest
}

func requiredString(data map[string]any, key string) (string, error) {
	value := strings.TrimSpace(optionalString(data[key]))
	if value == "" {
		return "", parseErr("required field %q is missing or empty", key)
	}
	return value, nil
}

// optionalString renders the value as a string, or empty when absent.
func optionalString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func stringWithDefault(raw any, fallback string) string {
	value := strings.TrimSpace(optionalString(raw))
	if value == "" {
		return fallback
	}
	return value
}

// stringOrList accepts a bare string (wrapped into a one-element list) or a
// list of strings; anything else yields an empty list. Entries are trimmed
// and empty entries dropped.
func stringOrList(raw any) []string {
	switch v := raw.(type) {
	case string:
		return cleanStrings([]any{v})
	case []any:
		return cleanStrings(v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return cleanStrings(items)
	default:
		return []string{}
	}
}

// listOnly accepts a list of strings; anything else yields an empty list.
func listOnly(raw any) []string {
	switch v := raw.(type) {
	case []any:
		return cleanStrings(v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return cleanStrings(items)
	default:
		return []string{}
	}
}

func cleanStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.TrimSpace(optionalString(item))
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

// toInt casts JSON numbers and numeric strings to int.
func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func nonNegativeFloat(raw any) float64 {
	value, ok := toFloat(raw)
	if !ok || value < 0 {
		return 0
	}
	return value
}
