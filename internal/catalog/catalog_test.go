package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/parser"
)

// stubEmbedder maps texts to canned vectors and counts calls.
type stubEmbedder struct {
	vectors map[string][]float64
	fallback []float64
	err      error
	calls    int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if vector, ok := s.vectors[text]; ok {
		return vector, nil
	}
	return s.fallback, nil
}

func TestCosineSimilarity(t *testing.T) {
	score, err := CosineSimilarity([]float64{1, 0}, []float64{1, 0})
	require.NoError(t, err)
	require.InDelta(t, 1.0, score, 1e-9)

	score, err = CosineSimilarity([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.0, score, 1e-9)

	ab, err := CosineSimilarity([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	ba, err := CosineSimilarity([]float64{4, 5, 6}, []float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, ab, ba)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	score, err := CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 0.0, score)
}

func TestCosineSimilarityLengthMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func testRecords() []domain.ExerciseEmbedding {
	return []domain.ExerciseEmbedding{
		{
			ExerciseName: "Push-ups",
			Embedding:    []float64{1, 0, 0},
			Metadata:     map[string]any{"difficulty": "beginner", "equipment": "none"},
		},
		{
			ExerciseName: "Bench Press",
			Embedding:    []float64{0.9, 0.1, 0},
			Metadata:     map[string]any{"difficulty": "intermediate", "equipment": "barbell"},
		},
		{
			ExerciseName: "Dumbbell Fly",
			Embedding:    []float64{0.8, 0.2, 0},
			Metadata:     map[string]any{"difficulty": "intermediate", "equipment": "dumbbells"},
		},
	}
}

func TestFindSimilarRanksDescending(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := NewWithRecords(embedder, testRecords())

	matches, err := cat.FindSimilar(context.Background(), "chest push", 2, Filters{})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	require.Equal(t, "Push-ups", matches[0].ExerciseName)
	require.Equal(t, "Bench Press", matches[1].ExerciseName)
	require.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestFindSimilarEmptyQuery(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := NewWithRecords(embedder, testRecords())

	_, err := cat.FindSimilar(context.Background(), "   ", 5, Filters{})
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
	require.Zero(t, embedder.calls)
}

func TestFindSimilarEmptyCatalogSkipsBackend(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := New(embedder)

	matches, err := cat.FindSimilar(context.Background(), "anything", 5, Filters{})
	require.NoError(t, err)
	require.Empty(t, matches)
	require.Zero(t, embedder.calls)
}

func TestFindSimilarEquipmentFilterIsFuzzy(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := NewWithRecords(embedder, testRecords())

	matches, err := cat.FindSimilar(context.Background(), "chest", 10, Filters{
		Equipment: []string{"Dumbbell"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "Dumbbell Fly", matches[0].ExerciseName)

	matches, err = cat.FindSimilar(context.Background(), "chest", 10, Filters{
		Equipment: []string{"none"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "Push-ups", matches[0].ExerciseName)
}

func TestFindSimilarDifficultyFilterIsExact(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := NewWithRecords(embedder, testRecords())

	matches, err := cat.FindSimilar(context.Background(), "chest", 10, Filters{
		Difficulty: "intermediate",
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, match := range matches {
		require.NotEqual(t, "Push-ups", match.ExerciseName)
	}
}

func TestFindSimilarTopKBounds(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := NewWithRecords(embedder, testRecords())

	matches, err := cat.FindSimilar(context.Background(), "chest", 100, Filters{})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	matches, err = cat.FindSimilar(context.Background(), "chest", 0, Filters{})
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestFindSimilarStableTies(t *testing.T) {
	records := []domain.ExerciseEmbedding{
		{ExerciseName: "A", Embedding: []float64{1, 0}, Metadata: map[string]any{}},
		{ExerciseName: "B", Embedding: []float64{2, 0}, Metadata: map[string]any{}},
		{ExerciseName: "C", Embedding: []float64{3, 0}, Metadata: map[string]any{}},
	}
	embedder := &stubEmbedder{fallback: []float64{1, 0}}
	cat := NewWithRecords(embedder, records)

	matches, err := cat.FindSimilar(context.Background(), "anything", 10, Filters{})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, []string{
		matches[0].ExerciseName, matches[1].ExerciseName, matches[2].ExerciseName,
	})
}

func TestFindAlternativesExcludesSelf(t *testing.T) {
	embedder := &stubEmbedder{}
	cat := NewWithRecords(embedder, testRecords())

	matches, err := cat.FindAlternatives("push-ups", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, match := range matches {
		require.NotEqual(t, "Push-ups", match.ExerciseName)
	}
}

func TestFindAlternativesUnknownExercise(t *testing.T) {
	embedder := &stubEmbedder{}
	cat := NewWithRecords(embedder, testRecords())

	_, err := cat.FindAlternatives("Deadlift", 10)
	require.Error(t, err)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = cat.FindAlternatives("  ", 10)
	require.Error(t, err)
	require.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestBuildReplacesCatalog(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 2, 3}}
	cat := New(embedder)

	err := cat.Build(context.Background(), []domain.Exercise{
		{Name: "Squat", Difficulty: "beginner", MuscleGroups: []string{"legs"}, Instructions: "x"},
		{Name: "Lunge", Difficulty: "beginner", MuscleGroups: []string{"legs"}, Instructions: "x"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, cat.Size())

	record, ok := cat.Get("squat")
	require.True(t, ok)
	require.Equal(t, "Squat", record.ExerciseName)
	require.Equal(t, "beginner", record.Metadata["difficulty"])
}

func TestBuildFailureKeepsPreviousCatalog(t *testing.T) {
	embedder := &stubEmbedder{fallback: []float64{1, 0, 0}}
	cat := NewWithRecords(embedder, testRecords())

	embedder.err = errors.New("backend down")
	err := cat.Build(context.Background(), []domain.Exercise{
		{Name: "Squat", Instructions: "x"},
	})
	require.Error(t, err)
	require.Equal(t, domain.KindDatabaseBuild, domain.KindOf(err))
	require.Equal(t, 3, cat.Size())
}

func TestBuildPropagatesClassifiedErrors(t *testing.T) {
	embedder := &stubEmbedder{err: domain.E(domain.KindAuthentication, "bad key")}
	cat := New(embedder)

	err := cat.Build(context.Background(), []domain.Exercise{{Name: "Squat", Instructions: "x"}})
	require.Error(t, err)
	require.Equal(t, domain.KindAuthentication, domain.KindOf(err))
}

func TestDescribe(t *testing.T) {
	text := Describe(domain.Exercise{
		Name:         "Push-ups",
		Difficulty:   "beginner",
		MuscleGroups: []string{"chest", "triceps"},
		Instructions: "Lower and press back up.",
	})
	require.Equal(t, "Push-ups - beginner exercise targeting chest, triceps using bodyweight. Lower and press back up.", text)

	text = Describe(domain.Exercise{
		Name:         "Bench Press",
		Difficulty:   "intermediate",
		MuscleGroups: []string{"chest"},
		Equipment:    []string{"barbell", "bench"},
		Instructions: "Press.",
	})
	require.Contains(t, text, "using barbell, bench")
}

func TestExerciseFromRecordRoundTrip(t *testing.T) {
	original := domain.Exercise{
		Name:         "Bench Press",
		MuscleGroups: []string{"chest", "triceps"},
		Equipment:    []string{"barbell", "bench"},
		Difficulty:   "intermediate",
		Sets:         4,
		Reps:         "8-10",
		RestSeconds:  90,
		Instructions: "Press the bar.",
		SafetyTips:   "Use a spotter.",
	}
	record := domain.ExerciseEmbedding{
		ExerciseName: original.Name,
		Metadata:     metadataFor(original),
	}

	rebuilt := ExerciseFromRecord(record, parser.DefaultOptions())
	require.Equal(t, original, rebuilt)
}

func TestExerciseFromRecordMissingMetadata(t *testing.T) {
	rebuilt := ExerciseFromRecord(domain.ExerciseEmbedding{ExerciseName: "Mystery"}, parser.DefaultOptions())

	require.Equal(t, "Mystery", rebuilt.Name)
	require.Equal(t, domain.DifficultyIntermediate, rebuilt.Difficulty)
	require.Equal(t, 3, rebuilt.Sets)
	require.Equal(t, "10", rebuilt.Reps)
	require.Equal(t, 60, rebuilt.RestSeconds)
	require.Equal(t, "Instructions not available.", rebuilt.Instructions)
}
