package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/patientcare/internal/patient"
	"stealthcompany.com/patientcare/internal/store"
	"stealthcompany.com/patientcare/pkg/zerolog_config"
)

// seed bulk-loads a patients JSON file (mapping id to base attributes)
// into the configured store. Legacy files that still carry bmi/verdict
// values load fine; those fields are dropped and recomputed on read.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found, assuming environment variables are set")
	}

	zerolog_config.SetAppPrefix("patientcare-seed")
	zerolog_config.StartupWithEnv(getEnvOrDefault("ELASTICSEARCH_URL", ""), "logs",
		getEnvOrDefault("API_LOG_LEVEL", "info"))

	seedFile := getEnvOrDefault("SEED_FILE", "data/patients.json")
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	log.Info().Str("file", seedFile).Msg("Starting patient seed")

	raw, err := os.ReadFile(seedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", seedFile).Msg("Failed to read seed file")
	}

	var records map[string]patient.Attributes
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Fatal().Err(err).Str("file", seedFile).Msg("Failed to parse seed file")
	}

	st, closer, err := buildStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Lock the store while bulk-writing so a serving API instance cannot
	// interleave a save with ours.
	if cs, ok := st.(*store.CouchbaseStore); ok {
		if err := cs.Lock(ctx, "patientcare-seed"); err != nil {
			log.Fatal().Err(err).Msg("Failed to lock store")
		}
		defer func() {
			if err := cs.Unlock(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to unlock store")
			}
		}()
	}

	existing, err := st.LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load existing collection")
	}

	seeded, skipped := 0, 0
	for id, attrs := range records {
		p, err := patient.New(id, attrs)
		if err != nil {
			log.Warn().
				Err(err).
				Str("id", id).
				Msg("Skipping invalid seed record")
			skipped++
			continue
		}
		existing[id] = p.Attributes
		seeded++
	}

	if err := st.SaveAll(ctx, existing); err != nil {
		log.Fatal().Err(err).Msg("Failed to save seeded collection")
	}

	log.Info().
		Int("seeded", seeded).
		Int("skipped", skipped).
		Int("total", len(existing)).
		Msg("Patient seed completed successfully")
}

// buildStore picks the persistence backend from STORE_BACKEND.
func buildStore() (store.Store, io.Closer, error) {
	backend := getEnvOrDefault("STORE_BACKEND", "file")

	switch backend {
	case "file":
		return store.NewFileStore(getEnvOrDefault("PATIENT_DATA_FILE", "data/patients.json")), nil, nil
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
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q for seeding", backend)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
