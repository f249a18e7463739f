// Package observability exposes Prometheus metrics for the assistant.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gym_assistant",
		Subsystem: "generation",
		Name:      "workouts_total",
		Help:      "Number of workout plans generated successfully.",
	})

	mealPlansGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gym_assistant",
		Subsystem: "generation",
		Name:      "meal_plans_total",
		Help:      "Number of nutrition plans generated successfully.",
	})

	generationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gym_assistant",
		Subsystem: "generation",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of plan generation calls.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"kind"})

	similaritySearches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gym_assistant",
		Subsystem: "catalog",
		Name:      "similarity_searches_total",
		Help:      "Number of similarity searches served from the exercise catalog.",
	})

	catalogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gym_assistant",
		Subsystem: "catalog",
		Name:      "size",
		Help:      "Number of embedding records currently in the exercise catalog.",
	})
)

func init() {
	prometheus.MustRegister(workoutsGenerated, mealPlansGenerated, generationDuration, similaritySearches, catalogSize)
}

// RecordWorkoutGenerated counts a successful workout generation.
func RecordWorkoutGenerated(elapsed time.Duration) {
	workoutsGenerated.Inc()
	generationDuration.WithLabelValues("workout").Observe(elapsed.Seconds())
}

// RecordMealPlanGenerated counts a successful meal plan generation.
func RecordMealPlanGenerated(elapsed time.Duration) {
	mealPlansGenerated.Inc()
	generationDuration.WithLabelValues("meal_plan").Observe(elapsed.Seconds())
}

// RecordSimilaritySearch counts a served catalog search.
func RecordSimilaritySearch() {
	similaritySearches.Inc()
}

// SetCatalogSize updates the catalog size gauge after a rebuild.
func SetCatalogSize(size int) {
	catalogSize.Set(float64(size))
}
