// Package nutrition calculates macro targets and orchestrates AI meal plan
// generation.
package nutrition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/observability"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/openai"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/parser"
)

const systemMessage = `You are an expert nutritionist and dietitian specializing in sports nutrition
and meal planning. You create personalized, balanced meal plans that help clients achieve
their fitness goals while respecting their dietary needs and preferences. You have deep
knowledge of macro nutrients, food science, and practical meal preparation. Always provide
realistic, achievable meal plans with accurate nutritional information.`

var budgetGuidance = map[string]string{
	"low":    "Use affordable, budget-friendly ingredients. Focus on staples like rice, beans, chicken, eggs.",
	"medium": "Use moderate-priced ingredients. Balance between affordability and variety.",
	"high":   "Use premium ingredients. Include high-quality proteins, organic options, specialty items.",
}

// Completer generates a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}

// Service generates personalized nutrition plans.
type Service struct {
	client Completer
	parser *parser.Parser
}

// NewService constructs a Service.
func NewService(client Completer, p *parser.Parser) *Service {
	return &Service{client: client, parser: p}
}

// Generate computes macro targets, prompts the completion backend, parses the
// response and validates the resulting plan. An empty meal list is rejected
// here, not in the parser.
func (s *Service) Generate(ctx context.Context, req domain.NutritionRequest) (*domain.NutritionPlan, error) {
	if req.UserProfile == nil {
		return nil, domain.E(domain.KindValidation, "nutrition request requires a user profile")
	}

	macros, err := CalculateMacros(req.UserProfile)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	response, err := s.client.Complete(ctx, openai.CompletionRequest{
		Prompt:        buildPrompt(req, macros),
		SystemMessage: systemMessage,
		Model:         req.Model,
		Temperature:   0.7,
		MaxTokens:     2000,
	})
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, domain.Wrap(domain.KindGeneration, "meal plan generation failed", err)
	}

	plan, err := s.parser.ParsePlanJSON(response)
	if err != nil {
		return nil, err
	}
	if err := validate(plan); err != nil {
		return nil, err
	}

	observability.RecordMealPlanGenerated(time.Since(started))
	return plan, nil
}

func buildPrompt(req domain.NutritionRequest, macros MacroTargets) string {
	user := req.UserProfile

	goals := "general fitness"
	if len(user.Goals) > 0 {
		goals = strings.Join(user.Goals, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a personalized daily meal plan for the following user:\n\n")
	fmt.Fprintf(&b, "USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d\n", user.Age)
	fmt.Fprintf(&b, "- Weight: %g kg\n", user.WeightKg)
	fmt.Fprintf(&b, "- Height: %g cm\n", user.HeightCm)
	fmt.Fprintf(&b, "- Gender: %s\n", user.Gender)
	fmt.Fprintf(&b, "- Fitness Level: %s\n", user.FitnessLevel)
	fmt.Fprintf(&b, "- Goals: %s\n", goals)
	fmt.Fprintf(&b, "\nMACRO TARGETS (must meet these closely):\n")
	fmt.Fprintf(&b, "- Calories: %d kcal\n", macros.Calories)
	fmt.Fprintf(&b, "- Protein: %gg\n", macros.ProteinG)
	fmt.Fprintf(&b, "- Carbs: %gg\n", macros.CarbsG)
	fmt.Fprintf(&b, "- Fats: %gg\n", macros.FatsG)

	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "\nDIETARY RESTRICTIONS:\n- Must be: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if len(req.CuisinePreferences) > 0 {
		fmt.Fprintf(&b, "\nCUISINE PREFERENCES:\n- Prefer: %s\n", strings.Join(req.CuisinePreferences, ", "))
	}

	budget := req.BudgetLevel
	guidance, ok := budgetGuidance[budget]
	if !ok {
		budget = "medium"
		guidance = budgetGuidance["medium"]
	}
	fmt.Fprintf(&b, "\nBUDGET LEVEL: %s\n- %s\n", budget, guidance)

	b.WriteString(`
REQUIREMENTS:
1. Create 3-5 meals for the day (breakfast, lunch, dinner, and optional snacks)
2. Each meal should have realistic portions and macro values
3. Total daily macros should closely match the targets above (within 10%)
4. Include variety of foods and flavors
5. All meals should be practical to prepare

Return your response as a JSON object with this EXACT structure:
{
    "date": "YYYY-MM-DD",
    "meals": [
        {
            "name": "meal name",
            "meal_type": "breakfast/lunch/dinner/snack",
            "calories": 500,
            "protein_g": 40.0,
            "carbs_g": 50.0,
            "fats_g": 15.0,
            "ingredients": ["ingredient1", "ingredient2"],
            "instructions": "preparation instructions",
            "prep_time_minutes": 20
        }
    ],
    "notes": "optional notes about the meal plan"
}

Ensure the JSON is valid and all fields are present.`)

	return b.String()
}

func validate(plan *domain.NutritionPlan) error {
	if len(plan.Meals) == 0 {
		return domain.E(domain.KindValidation, "generated meal plan has no meals")
	}
	if plan.TotalCalories <= 0 || plan.TotalProteinG <= 0 {
		return domain.E(domain.KindValidation, "generated meal plan has invalid macro totals")
	}
	return nil
}
