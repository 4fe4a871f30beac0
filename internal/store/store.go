package store

import (
	"context"
	"fmt"

	"stealthcompany.com/patientcare/internal/patient"
)

// Store persists the full patient collection keyed by patient id. The
// service loads the whole collection at the start of every operation and,
// for mutations, writes the whole collection back; the store makes no
// concurrency guarantees of its own.
type Store interface {
	LoadAll(ctx context.Context) (map[string]patient.Attributes, error)
	SaveAll(ctx context.Context, records map[string]patient.Attributes) error
}

// Error marks a persistence failure. It is fatal to the current operation
// and never retried by the service.
type Error struct {
	Op  string // "load" or "save"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
