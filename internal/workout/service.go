// Package workout orchestrates AI workout generation.
package workout

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

// durationVarianceMinutes is how far a generated workout may drift from the
// requested duration before it is rejected.
const durationVarianceMinutes = 15

const systemMessage = `You are an expert certified personal trainer and fitness coach with years of experience.
You create safe, effective, and personalized workout plans. You understand proper exercise form,
safety considerations, and how to adapt exercises for different fitness levels and limitations.
Always prioritize safety and proper form over intensity.`

// Completer generates a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}

// Service generates personalized workout plans.
type Service struct {
	client Completer
	parser *parser.Parser
}

// NewService constructs a Service.
func NewService(client Completer, p *parser.Parser) *Service {
	return &Service{client: client, parser: p}
}

// Generate builds the prompt, calls the completion backend, parses the
// response into a Workout, and validates it against the request.
func (s *Service) Generate(ctx context.Context, req domain.WorkoutRequest) (*domain.Workout, error) {
	if req.UserProfile == nil {
		return nil, domain.E(domain.KindValidation, "workout request requires a user profile")
	}
	if err := req.UserProfile.Validate(); err != nil {
		return nil, domain.Wrap(domain.KindValidation, "invalid user profile", err)
	}

	started := time.Now()

	response, err := s.client.Complete(ctx, openai.CompletionRequest{
		Prompt:        buildPrompt(req),
		SystemMessage: systemMessage,
		Model:         req.Model,
		Temperature:   0.7,
		MaxTokens:     2500,
	})
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, domain.Wrap(domain.KindWorkoutGeneration, "error generating workout", err)
	}

	workout, err := s.parser.ParseWorkoutJSON(response)
	if err != nil {
		return nil, err
	}
	if err := validate(workout, req); err != nil {
		return nil, err
	}

	observability.RecordWorkoutGenerated(time.Since(started))
	return workout, nil
}

func buildPrompt(req domain.WorkoutRequest) string {
	user := req.UserProfile

	equipment := "none (bodyweight only)"
	if len(user.EquipmentAvailable) > 0 {
		equipment = strings.Join(user.EquipmentAvailable, ", ")
	}
	goals := "general fitness"
	if len(user.Goals) > 0 {
		goals = strings.Join(user.Goals, ", ")
	}
	injuries := ""
	if len(user.Injuries) > 0 {
		injuries = fmt.Sprintf("\n- Injuries to avoid: %s", strings.Join(user.Injuries, ", "))
	}
	targets := ""
	if len(req.TargetMuscles) > 0 {
		targets = fmt.Sprintf("\n- Target these muscle groups: %s", strings.Join(req.TargetMuscles, ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert personal trainer. Create a %d-minute %s workout plan.\n\n",
		req.DurationMinutes, req.WorkoutType)
	fmt.Fprintf(&b, "USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d, Gender: %s\n", user.Age, user.Gender)
	fmt.Fprintf(&b, "- Weight: %gkg, Height: %gcm (BMI: %.1f)\n", user.WeightKg, user.HeightCm, user.BMI())
	fmt.Fprintf(&b, "- Fitness Level: %s\n", user.FitnessLevel)
	fmt.Fprintf(&b, "- Goals: %s\n", goals)
	fmt.Fprintf(&b, "- Equipment Available: %s%s%s\n\n", equipment, injuries, targets)
	fmt.Fprintf(&b, "REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. Create a %d-minute %s workout\n", req.DurationMinutes, req.WorkoutType)
	fmt.Fprintf(&b, "2. Match the user's %s fitness level\n", user.FitnessLevel)
	fmt.Fprintf(&b, "3. Only use available equipment: %s\n", equipment)
	fmt.Fprintf(&b, "4. Include appropriate number of exercises for the duration\n")
	fmt.Fprintf(&b, "5. Provide sets, reps, rest time, detailed instructions, and safety tips for each exercise\n")
	fmt.Fprintf(&b, "6. Include specific warm-up and cool-down routines\n")
	fmt.Fprintf(&b, "7. Estimate total calorie burn\n")
	fmt.Fprintf(&b, "8. Consider the user's goals: %s%s\n\n", goals, injuries)
	fmt.Fprintf(&b, `Return the workout as JSON following this EXACT structure:
{
  "title": "Descriptive Workout Title",
  "duration_minutes": %d,
  "exercises": [
    {
      "name": "Exercise Name",
      "muscle_groups": ["chest", "triceps"],
      "equipment": ["dumbbells"],
      "difficulty": "%s",
      "sets": 4,
      "reps": "8-10",
      "rest_seconds": 90,
      "instructions": "Detailed step-by-step instructions on proper form and execution",
      "safety_tips": "Important safety considerations and common mistakes to avoid"
    }
  ],
  "warmup": "Specific 5-minute warm-up routine",
  "cooldown": "Specific 5-minute cool-down and stretching routine",
  "target_muscles": ["%s"],
  "calories_estimate": 350
}

IMPORTANT: Return ONLY the JSON, no additional text.`, req.DurationMinutes, user.FitnessLevel, req.WorkoutType)

	return b.String()
}

func validate(workout *domain.Workout, req domain.WorkoutRequest) error {
	if len(workout.Exercises) == 0 {
		return domain.E(domain.KindValidation, "generated workout has no exercises")
	}

	diff := workout.DurationMinutes - req.DurationMinutes
	if diff < 0 {
		diff = -diff
	}
	if diff > durationVarianceMinutes {
		return domain.E(domain.KindValidation,
			fmt.Sprintf("workout duration %d differs too much from requested %d",
				workout.DurationMinutes, req.DurationMinutes))
	}

	for _, exercise := range workout.Exercises {
		if exercise.Name == "" || exercise.Instructions == "" {
			return domain.E(domain.KindValidation, "exercise missing required fields (name or instructions)")
		}
	}
	return nil
}
