package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/patientcare/internal/metrics"
	"stealthcompany.com/patientcare/internal/patient"
)

// FileStore persists the collection as a single JSON file mapping patient
// id to base attributes. Legacy files that still carry bmi/verdict inside
// the objects load fine; those fields are simply ignored.
type FileStore struct {
	path string
}

// NewFileStore creates a file store writing to path. The file and its
// directory are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LoadAll reads the collection from disk. A missing file is an empty
// collection, not an error.
func (fs *FileStore) LoadAll(ctx context.Context) (map[string]patient.Attributes, error) {
	start := time.Now()

	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", fs.path).Msg("Data file does not exist yet, starting empty")
			metrics.RecordStoreOperation("file", "load", start, nil, 0)
			return map[string]patient.Attributes{}, nil
		}
		metrics.RecordStoreOperation("file", "load", start, err, 0)
		return nil, &Error{Op: "load", Err: err}
	}

	var records map[string]patient.Attributes
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Error().Err(err).Str("path", fs.path).Msg("Failed to decode data file")
		metrics.RecordStoreOperation("file", "load", start, err, 0)
		return nil, &Error{Op: "load", Err: err}
	}
	if records == nil {
		records = map[string]patient.Attributes{}
	}

	log.Debug().
		Str("path", fs.path).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Loaded patient collection from file")
	metrics.RecordStoreOperation("file", "load", start, nil, len(records))
	return records, nil
}

// SaveAll writes the full collection back to disk, replacing the previous
// contents.
func (fs *FileStore) SaveAll(ctx context.Context, records map[string]patient.Attributes) error {
	start := time.Now()

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			metrics.RecordStoreOperation("file", "save", start, err, 0)
			return &Error{Op: "save", Err: err}
		}
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		metrics.RecordStoreOperation("file", "save", start, err, 0)
		return &Error{Op: "save", Err: err}
	}

	if err := os.WriteFile(fs.path, raw, 0o644); err != nil {
		log.Error().Err(err).Str("path", fs.path).Msg("Failed to write data file")
		metrics.RecordStoreOperation("file", "save", start, err, 0)
		return &Error{Op: "save", Err: err}
	}

	log.Debug().
		Str("path", fs.path).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Saved patient collection to file")
	metrics.RecordStoreOperation("file", "save", start, nil, len(records))
	return nil
}
