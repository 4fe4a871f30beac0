package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/patientcare/internal/api"
	"stealthcompany.com/patientcare/internal/metrics"
	"stealthcompany.com/patientcare/internal/service"
	"stealthcompany.com/patientcare/internal/store"
	"stealthcompany.com/patientcare/pkg/zerolog_config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found, assuming environment variables are set")
	}

	elasticsearchURL := getEnvOrDefault("ELASTICSEARCH_URL", "")
	apiPort := getEnvOrDefault("API_PORT", "8080")
	apiLogLevel := getEnvOrDefault("API_LOG_LEVEL", "info")

	zerolog_config.SetAppPrefix("patientcare-api")
	zerolog_config.StartupWithEnv(elasticsearchURL, "logs", apiLogLevel)

	log.Info().Msg("Starting patientcare-api service")

	// Start system metrics collection
	metrics.StartSystemMetrics(15 * time.Second)

	st, closer, err := buildStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}

	svc := service.New(st)
	router := api.SetupRoutes(api.NewHandlers(svc))

	server := &http.Server{
		Addr:    ":" + apiPort,
		Handler: router,
	}

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", apiPort).
			Str("backend", getEnvOrDefault("STORE_BACKEND", "file")).
			Msg("Server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().
				Err(err).
				Msg("Failed to start server")
		}
	}()

	<-sigChan
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if closer != nil {
		log.Info().Msg("Closing store connection...")
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store connection")
		}
	}

	log.Info().Msg("API service shutdown complete")
}

// buildStore picks the persistence backend from STORE_BACKEND. The second
// return value is non-nil when the backend holds a connection that needs
// closing on shutdown.
func buildStore() (store.Store, io.Closer, error) {
	backend := getEnvOrDefault("STORE_BACKEND", "file")

	switch backend {
	case "file":
		path := getEnvOrDefault("PATIENT_DATA_FILE", "data/patients.json")
		return store.NewFileStore(path), nil, nil
	case "memory":
		return store.NewMemStore(), nil, nil
	case "couchbase":
		cs, err := store.NewCouchbaseStore(
			getEnvOrDefault("COUCHBASE_URL", "couchbase://patientcare-db"),
			getEnvOrDefault("COUCHBASE_USERNAME", "patientcare_user"),
			getEnvOrDefault("COUCHBASE_PASSWORD", "password"),
			getEnvOrDefault("COUCHBASE_BUCKET", "patientcare"),
		)
		if err != nil {
			return nil, nil, err
		}
		return cs, cs, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
