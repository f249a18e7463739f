// Package api exposes HTTP handlers for the gym assistant service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/auth"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/catalog"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/events"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/nutrition"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/parser"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/storage"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/workout"
)

const defaultSearchLimit = 5

// Handler handles HTTP interactions.
type Handler struct {
	workouts   *workout.Service
	nutrition  *nutrition.Service
	catalog    *catalog.Catalog
	parser     *parser.Parser
	store      *storage.Store
	publisher  events.Publisher
	parserOpts parser.Options
}

// NewHandler constructs Handler.
func NewHandler(
	workouts *workout.Service,
	nutritionSvc *nutrition.Service,
	cat *catalog.Catalog,
	p *parser.Parser,
	store *storage.Store,
	publisher events.Publisher,
	parserOpts parser.Options,
) *Handler {
	return &Handler{
		workouts:   workouts,
		nutrition:  nutritionSvc,
		catalog:    cat,
		parser:     p,
		store:      store,
		publisher:  publisher,
		parserOpts: parserOpts,
	}
}

// RegisterRoutes sets up routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/profile", h.profile)
	mux.HandleFunc("/v1/macros", h.macros)
	mux.HandleFunc("/v1/workouts", h.generateWorkout)
	mux.HandleFunc("/v1/meal-plans", h.generateMealPlan)
	mux.HandleFunc("/v1/catalog", h.buildCatalog)
	mux.HandleFunc("/v1/exercises/search", h.searchExercises)
	mux.HandleFunc("/v1/exercises/", h.exerciseAlternatives)
	mux.HandleFunc("/v1/history", h.history)
	mux.HandleFunc("/healthz", healthz)
}

// healthz returns an OK response for readiness probes.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, auth.ScopeRead) {
			return
		}
		profile, err := h.store.LoadProfile()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		if profile == nil {
			writeError(w, http.StatusNotFound, "not_found", "no profile stored")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "bmi": profile.BMI()})

	case http.MethodPut:
		if !requireScope(w, r, auth.ScopeWrite) {
			return
		}
		var profile domain.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := profile.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		if err := h.store.SaveProfile(profile); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) macros(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeRead) {
		return
	}

	profile, err := h.loadProfile(w)
	if err != nil {
		return
	}
	targets, err := nutrition.CalculateMacros(profile)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"macros": targets})
}

// GenerateWorkoutRequest represents the workout generation payload.
type GenerateWorkoutRequest struct {
	WorkoutType     string   `json:"workout_type"`
	DurationMinutes int      `json:"duration_minutes"`
	TargetMuscles   []string `json:"target_muscles,omitempty"`
	Model           string   `json:"model,omitempty"`
}

func (h *Handler) generateWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeWrite) {
		return
	}

	var req GenerateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	profile, err := h.loadProfile(w)
	if err != nil {
		return
	}

	generated, err := h.workouts.Generate(r.Context(), domain.WorkoutRequest{
		UserProfile:     profile,
		WorkoutType:     req.WorkoutType,
		DurationMinutes: req.DurationMinutes,
		TargetMuscles:   req.TargetMuscles,
		Model:           req.Model,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.store.RecordWorkoutSummary(*generated); err != nil {
		log.Printf("failed to record workout summary: %v", err)
	}
	h.publishWorkout(r.Context(), profile.UserID, generated)

	writeJSON(w, http.StatusOK, map[string]any{"workout": generated})
}

// GenerateMealPlanRequest represents the meal plan generation payload.
type GenerateMealPlanRequest struct {
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	CuisinePreferences  []string `json:"cuisine_preferences,omitempty"`
	BudgetLevel         string   `json:"budget_level,omitempty"`
	Model               string   `json:"model,omitempty"`
}

func (h *Handler) generateMealPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeWrite) {
		return
	}

	var req GenerateMealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	profile, err := h.loadProfile(w)
	if err != nil {
		return
	}

	plan, err := h.nutrition.Generate(r.Context(), domain.NutritionRequest{
		UserProfile:         profile,
		DietaryRestrictions: req.DietaryRestrictions,
		CuisinePreferences:  req.CuisinePreferences,
		BudgetLevel:         req.BudgetLevel,
		Model:               req.Model,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.store.RecordMealPlanSummary(*plan); err != nil {
		log.Printf("failed to record meal plan summary: %v", err)
	}
	h.publishMealPlan(r.Context(), profile.UserID, plan)

	writeJSON(w, http.StatusOK, map[string]any{"meal_plan": plan})
}

// BuildCatalogRequest carries raw exercise objects; each one goes through the
// response parser before embedding.
type BuildCatalogRequest struct {
	Exercises []map[string]any `json:"exercises"`
}

func (h *Handler) buildCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeWrite) {
		return
	}

	var req BuildCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if len(req.Exercises) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "at least one exercise is required")
		return
	}

	exercises := make([]domain.Exercise, 0, len(req.Exercises))
	for _, raw := range req.Exercises {
		exercise, err := h.parser.ParseExercise(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		exercises = append(exercises, exercise)
	}

	if err := h.catalog.Build(r.Context(), exercises); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"catalog_size": h.catalog.Size()})
}

func (h *Handler) searchExercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeRead) {
		return
	}

	query := r.URL.Query().Get("query")
	filters := catalog.Filters{
		Difficulty: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("difficulty"))),
	}
	if raw := r.URL.Query().Get("equipment"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				filters.Equipment = append(filters.Equipment, trimmed)
			}
		}
	}

	matches, err := h.catalog.FindSimilar(r.Context(), query, limitParam(r), filters)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": h.expandMatches(matches)})
}

func (h *Handler) exerciseAlternatives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeRead) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/exercises/")
	name, action, found := strings.Cut(rest, "/")
	if !found || action != "alternatives" {
		writeError(w, http.StatusNotFound, "not_found", "unknown exercise resource")
		return
	}

	matches, err := h.catalog.FindAlternatives(name, limitParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": h.expandMatches(matches)})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !requireScope(w, r, auth.ScopeRead) {
		return
	}

	history, err := h.store.GetHistory()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// SearchResult pairs a reconstructed exercise with its similarity score.
type SearchResult struct {
	Exercise domain.Exercise `json:"exercise"`
	Score    float64         `json:"score"`
}

func (h *Handler) expandMatches(matches []catalog.Match) []SearchResult {
	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		record, ok := h.catalog.Get(match.ExerciseName)
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Exercise: catalog.ExerciseFromRecord(*record, h.parserOpts),
			Score:    match.Score,
		})
	}
	return results
}

func (h *Handler) loadProfile(w http.ResponseWriter) (*domain.UserProfile, error) {
	profile, err := h.store.LoadProfile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return nil, err
	}
	if profile == nil {
		err := errors.New("no profile stored")
		writeError(w, http.StatusNotFound, "not_found", "store a profile before requesting plans")
		return nil, err
	}
	return profile, nil
}

func (h *Handler) publishWorkout(ctx context.Context, userID string, generated *domain.Workout) {
	err := h.publisher.PublishWorkoutGenerated(ctx, events.WorkoutGenerated{
		WorkoutID:        generated.WorkoutID,
		UserID:           userID,
		Title:            generated.Title,
		DurationMinutes:  generated.DurationMinutes,
		Difficulty:       generated.Difficulty,
		TargetMuscles:    generated.TargetMuscles,
		CaloriesEstimate: generated.CaloriesEstimate,
		GeneratedAt:      time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to publish workout event: %v", err)
	}
}

func (h *Handler) publishMealPlan(ctx context.Context, userID string, plan *domain.NutritionPlan) {
	err := h.publisher.PublishMealPlanGenerated(ctx, events.MealPlanGenerated{
		PlanID:        plan.PlanID,
		UserID:        userID,
		Date:          plan.Date,
		TotalCalories: plan.TotalCalories,
		MealCount:     len(plan.Meals),
		GeneratedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to publish meal plan event: %v", err)
	}
}

func requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return false
	}
	return true
}

func limitParam(r *http.Request) int {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

// writeDomainError maps a classified error onto an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindAuthentication:
		status = http.StatusUnauthorized
	case domain.KindParser, domain.KindAPI, domain.KindRateLimited:
		status = http.StatusBadGateway
	}
	code := string(kind)
	if code == "" {
		code = "server_error"
	}
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"type": code, "detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
