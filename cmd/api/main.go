package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/api"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/auth"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/catalog"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/config"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/events"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/nutrition"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/openai"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/parser"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/storage"
	httptransport "github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/transport/http"
	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/workout"
)

func main() {
	cfg := config.Load()

	client, err := openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxRetries:     cfg.MaxRetries,
	})
	if err != nil {
		log.Fatalf("failed to configure completion client: %v", err)
	}

	parserOpts := parser.DefaultOptions()
	responseParser := parser.New(parserOpts)

	store := storage.New(cfg.StorageDir, cfg.StorageFilename, cfg.HistoryLimit, cfg.StorageDisabled)
	exerciseCatalog := catalog.New(client)

	workoutService := workout.NewService(client, responseParser)
	nutritionService := nutrition.NewService(client, responseParser)

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	handler := api.NewHandler(workoutService, nutritionService, exerciseCatalog, responseParser, store, publisher, parserOpts)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		func(r *http.Request) bool {
			return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
		},
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(logger(corsMiddleware.Handler(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("gym-assistant listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
