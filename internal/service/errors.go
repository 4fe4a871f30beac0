package service

import "errors"

// Sentinel errors for the operation outcomes the transport layer maps to
// status codes. Validation failures surface as *patient.ValidationError
// and persistence failures as *store.Error; both are checked with
// errors.As.
var (
	ErrNotFound        = errors.New("patient not found")
	ErrConflict        = errors.New("patient already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)
