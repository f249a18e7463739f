// Package catalog ranks exercises by semantic closeness using embedding
// vectors. The catalog is a linear-scan in-memory collection; at the expected
// scale of a few hundred entries no index is needed.
package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/observability"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/parser"
)

// Embedder produces a fixed-length embedding vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Match pairs an exercise name with its similarity score.
type Match struct {
	ExerciseName string  `json:"exercise_name"`
	Score        float64 `json:"score"`
}

// Filters restricts which catalog entries are scored.
type Filters struct {
	// Equipment lists allowed equipment tokens. Matching is a deliberate
	// fuzzy case-insensitive substring check in either direction so that
	// "dumbbell" matches "dumbbells".
	Equipment []string
	// Difficulty requires an exact match after normalization.
	Difficulty string
}

// Catalog owns the in-memory embedding records. A single writer is assumed;
// the mutex only guards the record swap against concurrent readers.
type Catalog struct {
	embedder Embedder

	mu      sync.RWMutex
	records []domain.ExerciseEmbedding
}

// New constructs an empty catalog.
func New(embedder Embedder) *Catalog {
	return &Catalog{embedder: embedder}
}

// NewWithRecords constructs a catalog over precomputed records.
func NewWithRecords(embedder Embedder, records []domain.ExerciseEmbedding) *Catalog {
	return &Catalog{embedder: embedder, records: records}
}

// CosineSimilarity computes the normalized dot product of two equal-length
// vectors. A zero vector yields exactly 0.0, never NaN.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.E(domain.KindValidation,
			fmt.Sprintf("vectors must have the same length: %d vs %d", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// FindSimilar embeds the query and returns the topK closest catalog entries
// that pass the filters, sorted by descending score. Ties keep catalog order.
// An empty catalog returns no results without calling the embedding backend.
func (c *Catalog) FindSimilar(ctx context.Context, query string, topK int, filters Filters) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.E(domain.KindValidation, "search query cannot be empty")
	}

	c.mu.RLock()
	records := c.records
	c.mu.RUnlock()

	if len(records) == 0 {
		return []Match{}, nil
	}

	queryVector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, domain.Wrap(domain.KindEmbeddingSearch, "error finding similar exercises", err)
	}

	matches := make([]Match, 0, len(records))
	for _, record := range records {
		if !passesFilters(record, filters) {
			continue
		}
		score, err := CosineSimilarity(queryVector, record.Embedding)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{ExerciseName: record.ExerciseName, Score: score})
	}

	observability.RecordSimilaritySearch()
	return rank(matches, topK), nil
}

// FindAlternatives scores every other entry against the named exercise's own
// vector. The exercise itself is excluded case-insensitively.
func (c *Catalog) FindAlternatives(name string, topK int) ([]Match, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.E(domain.KindValidation, "exercise name cannot be empty")
	}

	target, ok := c.Get(name)
	if !ok {
		return nil, domain.E(domain.KindNotFound, fmt.Sprintf("exercise %q not found in catalog", name))
	}

	c.mu.RLock()
	records := c.records
	c.mu.RUnlock()

	normalized := strings.ToLower(strings.TrimSpace(name))
	matches := make([]Match, 0, len(records))
	for _, record := range records {
		if strings.ToLower(record.ExerciseName) == normalized {
			continue
		}
		score, err := CosineSimilarity(target.Embedding, record.Embedding)
		if err != nil {
			return nil, domain.Wrap(domain.KindEmbeddingSearch, "error finding alternatives", err)
		}
		matches = append(matches, Match{ExerciseName: record.ExerciseName, Score: score})
	}

	observability.RecordSimilaritySearch()
	return rank(matches, topK), nil
}

// Build embeds every exercise and replaces the catalog contents. Any backend
// failure aborts the build and keeps the previous catalog intact; classified
// errors propagate unchanged, everything else is wrapped as a build error.
func (c *Catalog) Build(ctx context.Context, exercises []domain.Exercise) error {
	records := make([]domain.ExerciseEmbedding, 0, len(exercises))
	for _, exercise := range exercises {
		description := Describe(exercise)
		vector, err := c.embedder.Embed(ctx, description)
		if err != nil {
			if domain.KindOf(err) != "" {
				return err
			}
			return domain.Wrap(domain.KindDatabaseBuild, "error building exercise catalog", err)
		}

		records = append(records, domain.ExerciseEmbedding{
			ExerciseName: exercise.Name,
			Description:  description,
			Embedding:    vector,
			Metadata:     metadataFor(exercise),
		})
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()

	observability.SetCatalogSize(len(records))
	return nil
}

// Get looks up a record by exercise name, case-insensitively.
func (c *Catalog) Get(name string) (*domain.ExerciseEmbedding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range c.records {
		if strings.ToLower(c.records[i].ExerciseName) == normalized {
			record := c.records[i]
			return &record, true
		}
	}
	return nil, false
}

// Size reports the number of catalog entries.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Describe synthesizes the deterministic description a record is embedded
// from.
func Describe(exercise domain.Exercise) string {
	equipment := "bodyweight"
	if len(exercise.Equipment) > 0 {
		equipment = strings.Join(exercise.Equipment, ", ")
	}
	muscles := strings.Join(exercise.MuscleGroups, ", ")
	return fmt.Sprintf("%s - %s exercise targeting %s using %s. %s",
		exercise.Name, exercise.Difficulty, muscles, equipment, exercise.Instructions)
}

// ExerciseFromRecord reconstructs a full Exercise from a record's metadata so
// search results can be rendered without re-parsing AI output.
func ExerciseFromRecord(record domain.ExerciseEmbedding, opts parser.Options) domain.Exercise {
	meta := record.Metadata
	if meta == nil {
		meta = map[string]any{}
	}

	muscles := asStringList(meta["muscle_groups"])
	equipment := asStringList(meta["equipment_list"])
	if equipment == nil {
		if single, ok := meta["equipment"].(string); ok && single != "" && single != "none" {
			equipment = []string{single}
		}
	}

	sets := opts.DefaultSets
	if value, ok := asInt(meta["sets"]); ok && value >= 1 {
		sets = value
	}
	rest := opts.DefaultRest
	if value, ok := asInt(meta["rest_seconds"]); ok && value >= 0 {
		rest = value
	}

	reps, _ := meta["reps"].(string)
	if reps == "" {
		reps = opts.DefaultReps
	}
	difficulty, _ := meta["difficulty"].(string)
	if difficulty == "" {
		difficulty = opts.DefaultDifficulty
	}
	instructions, _ := meta["instructions"].(string)
	if instructions == "" {
		instructions = "Instructions not available."
	}
	safetyTips, _ := meta["safety_tips"].(string)

	return domain.Exercise{
		Name:         record.ExerciseName,
		MuscleGroups: muscles,
		Equipment:    equipment,
		Difficulty:   difficulty,
		Sets:         sets,
		Reps:         reps,
		RestSeconds:  rest,
		Instructions: instructions,
		SafetyTips:   safetyTips,
	}
}

func metadataFor(exercise domain.Exercise) map[string]any {
	equipment := "none"
	if len(exercise.Equipment) > 0 {
		equipment = exercise.Equipment[0]
	}
	return map[string]any{
		"difficulty":     exercise.Difficulty,
		"equipment":      equipment,
		"equipment_list": exercise.Equipment,
		"muscle_groups":  exercise.MuscleGroups,
		"sets":           exercise.Sets,
		"reps":           exercise.Reps,
		"rest_seconds":   exercise.RestSeconds,
		"instructions":   exercise.Instructions,
		"safety_tips":    exercise.SafetyTips,
	}
}

func passesFilters(record domain.ExerciseEmbedding, filters Filters) bool {
	if len(filters.Equipment) > 0 {
		equipment, _ := record.Metadata["equipment"].(string)
		if equipment == "" {
			equipment = "none"
		}
		if !equipmentMatches(filters.Equipment, equipment) {
			return false
		}
	}
	if filters.Difficulty != "" {
		difficulty, _ := record.Metadata["difficulty"].(string)
		if difficulty != filters.Difficulty {
			return false
		}
	}
	return true
}

func equipmentMatches(allowed []string, equipment string) bool {
	normalized := strings.ToLower(equipment)
	for _, token := range allowed {
		candidate := strings.ToLower(token)
		if strings.Contains(normalized, candidate) || strings.Contains(candidate, normalized) {
			return true
		}
		if candidate == "none" && normalized == "none" {
			return true
		}
	}
	return false
}

// rank sorts matches by descending score, keeping insertion order for ties,
// and truncates to topK.
func rank(matches []Match, topK int) []Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func asStringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
