package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/patientcare/internal/patient"
	"stealthcompany.com/patientcare/internal/store"
)

// Service orchestrates every patient record operation against the store.
// It is stateless between calls: each operation loads the collection
// fresh and mutating operations write the whole collection back.
type Service struct {
	store store.Store

	// Serializes load-modify-save cycles. Without it two concurrent
	// mutations race and the loser's write is silently dropped.
	mu sync.Mutex
}

// New creates a service backed by st.
func New(st store.Store) *Service {
	return &Service{store: st}
}

// GetAll returns the full collection keyed by id, derived fields freshly
// computed.
func (s *Service) GetAll(ctx context.Context) (map[string]patient.Patient, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]patient.Patient, len(records))
	for id, attrs := range records {
		out[id] = patient.Materialize(id, attrs)
	}
	return out, nil
}

// Get returns a single record or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (patient.Patient, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return patient.Patient{}, err
	}

	attrs, ok := records[id]
	if !ok {
		return patient.Patient{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return patient.Materialize(id, attrs), nil
}

// Create validates and stores a new record. It fails with ErrConflict if
// the id is already taken, leaving the existing record untouched.
func (s *Service) Create(ctx context.Context, id string, attrs patient.Attributes) (patient.Patient, error) {
	created, err := patient.New(id, attrs)
	if err != nil {
		return patient.Patient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return patient.Patient{}, err
	}
	if _, exists := records[id]; exists {
		return patient.Patient{}, fmt.Errorf("%w: %s", ErrConflict, id)
	}

	records[id] = created.Attributes
	if err := s.store.SaveAll(ctx, records); err != nil {
		return patient.Patient{}, err
	}

	log.Info().Str("id", id).Msg("Patient created")
	return created, nil
}

// Replace overwrites an existing record wholesale. The record's own id
// must match the path id; the id itself never changes.
func (s *Service) Replace(ctx context.Context, id string, bodyID string, attrs patient.Attributes) (patient.Patient, error) {
	if id != bodyID {
		return patient.Patient{}, fmt.Errorf("%w: patient id mismatch", ErrInvalidArgument)
	}

	replaced, err := patient.New(id, attrs)
	if err != nil {
		return patient.Patient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return patient.Patient{}, err
	}
	if _, exists := records[id]; !exists {
		return patient.Patient{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	records[id] = replaced.Attributes
	if err := s.store.SaveAll(ctx, records); err != nil {
		return patient.Patient{}, err
	}

	log.Info().Str("id", id).Msg("Patient replaced")
	return replaced, nil
}

// Update merges a partial update onto an existing record. The merge is
// atomic: if the combined record fails validation nothing is written.
func (s *Service) Update(ctx context.Context, id string, u patient.Update) (patient.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return patient.Patient{}, err
	}

	attrs, ok := records[id]
	if !ok {
		return patient.Patient{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	merged, err := patient.Merge(patient.Materialize(id, attrs), u)
	if err != nil {
		return patient.Patient{}, err
	}

	records[id] = merged.Attributes
	if err := s.store.SaveAll(ctx, records); err != nil {
		return patient.Patient{}, err
	}

	log.Info().Str("id", id).Msg("Patient updated")
	return merged, nil
}

// Delete removes a record or fails with ErrNotFound, with no side effects.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	if _, exists := records[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(records, id)
	if err := s.store.SaveAll(ctx, records); err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("Patient deleted")
	return nil
}

// Filter returns the records matching every present predicate, ordered by
// ascending id.
func (s *Service) Filter(ctx context.Context, f patient.Filter) ([]patient.Patient, error) {
	if f.Gender != "" && !patient.ValidGender(f.Gender) {
		return nil, fmt.Errorf("%w: gender must be one of male, female, others", ErrInvalidArgument)
	}

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return patient.Apply(patient.Snapshot(records), f), nil
}

// Sort returns the collection ordered by the named field. Unknown fields
// and orders fail with ErrInvalidArgument.
func (s *Service) Sort(ctx context.Context, field, order string) ([]patient.Patient, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	sorted, err := patient.SortRecords(patient.Snapshot(records), field, order)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	return sorted, nil
}
