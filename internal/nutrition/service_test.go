package nutrition

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/openai"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/parser"
)

type stubCompleter struct {
	response string
	err      error
	lastReq  openai.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req openai.CompletionRequest) (string, error) {
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testProfile() *domain.UserProfile {
	return &domain.UserProfile{
		UserID:       "u1",
		Age:          30,
		WeightKg:     80,
		HeightCm:     180,
		Gender:       "male",
		FitnessLevel: domain.DifficultyIntermediate,
		Goals:        []string{"build_muscle"},
	}
}

const validPlanResponse = `{
	"date": "2026-08-26",
	"meals": [
		{
			"name": "Protein Oats",
			"meal_type": "breakfast",
			"calories": 550,
			"protein_g": 40.0,
			"carbs_g": 70.0,
			"fats_g": 12.0,
			"ingredients": ["oats", "whey", "banana"],
			"instructions": "Cook oats, stir in whey.",
			"prep_time_minutes": 10
		},
		{
			"name": "Chicken Rice Bowl",
			"meal_type": "lunch",
			"calories": 700,
			"protein_g": 55.0,
			"carbs_g": 80.0,
			"fats_g": 15.0,
			"ingredients": ["chicken", "rice", "broccoli"],
			"instructions": "Grill chicken, serve over rice.",
			"prep_time_minutes": 25
		}
	],
	"notes": "Drink plenty of water."
}`

func TestGenerateMealPlanSuccess(t *testing.T) {
	completer := &stubCompleter{response: validPlanResponse}
	service := NewService(completer, parser.New(parser.DefaultOptions()))

	plan, err := service.Generate(context.Background(), domain.NutritionRequest{
		UserProfile: testProfile(),
		BudgetLevel: "low",
	})
	require.NoError(t, err)

	require.Len(t, plan.Meals, 2)
	require.Equal(t, 1250, plan.TotalCalories)
	require.Equal(t, 95.0, plan.TotalProteinG)
	require.Equal(t, "2026-08-26", plan.Date)

	require.Equal(t, 0.7, completer.lastReq.Temperature)
	require.Equal(t, 2000, completer.lastReq.MaxTokens)
	require.Contains(t, completer.lastReq.Prompt, "budget-friendly ingredients")
	require.Contains(t, completer.lastReq.Prompt, "MACRO TARGETS")
}

func TestGenerateMealPlanUnknownBudgetFallsBackToMedium(t *testing.T) {
	completer := &stubCompleter{response: validPlanResponse}
	service := NewService(completer, parser.New(parser.DefaultOptions()))

	_, err := service.Generate(context.Background(), domain.NutritionRequest{
		UserProfile: testProfile(),
		BudgetLevel: "extravagant",
	})
	require.NoError(t, err)
	require.Contains(t, completer.lastReq.Prompt, "BUDGET LEVEL: medium")
}

func TestGenerateMealPlanRequiresProfile(t *testing.T) {
	service := NewService(&stubCompleter{}, parser.New(parser.DefaultOptions()))

	_, err := service.Generate(context.Background(), domain.NutritionRequest{})
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestGenerateMealPlanRejectsEmptyMeals(t *testing.T) {
	completer := &stubCompleter{response: `{"date":"2026-08-26","meals":[]}`}
	service := NewService(completer, parser.New(parser.DefaultOptions()))

	_, err := service.Generate(context.Background(), domain.NutritionRequest{
		UserProfile: testProfile(),
	})
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
	require.Contains(t, err.Error(), "no meals")
}

func TestGenerateMealPlanRejectsZeroTotals(t *testing.T) {
	completer := &stubCompleter{response: `{"meals":[{"name":"Water","calories":0,"protein_g":0}]}`}
	service := NewService(completer, parser.New(parser.DefaultOptions()))

	_, err := service.Generate(context.Background(), domain.NutritionRequest{
		UserProfile: testProfile(),
	})
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
	require.Contains(t, err.Error(), "invalid macro totals")
}

func TestGenerateMealPlanPropagatesClassifiedErrors(t *testing.T) {
	completer := &stubCompleter{err: domain.E(domain.KindAuthentication, "bad key")}
	service := NewService(completer, parser.New(parser.DefaultOptions()))

	_, err := service.Generate(context.Background(), domain.NutritionRequest{
		UserProfile: testProfile(),
	})
	require.Error(t, err)
	require.Equal(t, domain.KindAuthentication, domain.KindOf(err))
}

func TestGenerateMealPlanWrapsUnclassifiedErrors(t *testing.T) {
	completer := &stubCompleter{err: errors.New("timeout")}
	service := NewService(completer, parser.New(parser.DefaultOptions()))

	_, err := service.Generate(context.Background(), domain.NutritionRequest{
		UserProfile: testProfile(),
	})
	require.Error(t, err)
	require.Equal(t, domain.KindGeneration, domain.KindOf(err))
}
