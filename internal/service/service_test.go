package service

import (
	"context"
	"errors"
	"testing"

	"stealthcompany.com/patientcare/internal/patient"
	"stealthcompany.com/patientcare/internal/store"
)

// brokenStore fails every operation, standing in for a dead backend.
type brokenStore struct{}

func (brokenStore) LoadAll(ctx context.Context) (map[string]patient.Attributes, error) {
	return nil, &store.Error{Op: "load", Err: errors.New("backend unavailable")}
}

func (brokenStore) SaveAll(ctx context.Context, records map[string]patient.Attributes) error {
	return &store.Error{Op: "save", Err: errors.New("backend unavailable")}
}

func validAttrs() patient.Attributes {
	return patient.Attributes{
		Name:   "Ananya",
		City:   "Delhi",
		Age:    30,
		Gender: patient.GenderFemale,
		Height: 1.65,
		Weight: 60,
	}
}

func newTestService() (*Service, *store.MemStore) {
	ms := store.NewMemStore()
	return New(ms), ms
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "P001", validAttrs())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := svc.Get(ctx, "P001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got.Attributes != validAttrs() {
		t.Errorf("Base fields changed through the round trip: %+v", got.Attributes)
	}
	if got.BMI != created.BMI || got.BMI != patient.ComputeBMI(1.65, 60) {
		t.Errorf("Derived BMI not recomputed on read: %v", got.BMI)
	}
	if got.Verdict != patient.VerdictFor(got.BMI) {
		t.Errorf("Verdict inconsistent with BMI: %s", got.Verdict)
	}
}

func TestCreateConflictLeavesExistingUntouched(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "P001", validAttrs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second := validAttrs()
	second.Weight = 90
	_, err := svc.Create(ctx, "P001", second)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	got, err := svc.Get(ctx, "P001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Weight != 60 {
		t.Errorf("Existing record was modified by failed create: weight %v", got.Weight)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	bad := validAttrs()
	bad.Age = 150
	_, err := svc.Create(context.Background(), "P001", bad)

	var vErr *patient.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	if _, err := svc.Get(context.Background(), "P001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Invalid record was stored anyway")
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), "MISSING")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReplaceIDMismatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Mismatch must fail whether or not the target exists.
	_, err := svc.Replace(ctx, "P001", "P002", validAttrs())
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	if _, err := svc.Create(ctx, "P001", validAttrs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err = svc.Replace(ctx, "P001", "P002", validAttrs())
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestReplaceNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Replace(context.Background(), "P009", "P009", validAttrs())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReplaceOverwritesWholeRecord(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "P001", validAttrs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	replacement := patient.Attributes{
		Name:   "Ananya Rao",
		City:   "Pune",
		Age:    31,
		Gender: patient.GenderFemale,
		Height: 1.65,
		Weight: 64,
	}
	if _, err := svc.Replace(ctx, "P001", "P001", replacement); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, _ := svc.Get(ctx, "P001")
	if got.Attributes != replacement {
		t.Errorf("Expected %+v, got %+v", replacement, got.Attributes)
	}
}

func TestUpdatePreservesUnspecifiedFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "P001", validAttrs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	updated, err := svc.Update(ctx, "P001", patient.Update{
		Weight: patient.Optional[float64]{Value: 70, Set: true},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if updated.Weight != 70 {
		t.Errorf("Expected weight 70, got %v", updated.Weight)
	}
	want := validAttrs()
	if updated.Name != want.Name || updated.City != want.City ||
		updated.Age != want.Age || updated.Gender != want.Gender ||
		updated.Height != want.Height {
		t.Errorf("Unspecified fields changed: %+v", updated.Attributes)
	}
}

func TestUpdateAtomicity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "P001", validAttrs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := svc.Update(ctx, "P001", patient.Update{
		Age:    patient.Optional[int]{Value: 150, Set: true},
		Weight: patient.Optional[float64]{Value: 70, Set: true},
	})

	var vErr *patient.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	got, _ := svc.Get(ctx, "P001")
	if got.Attributes != validAttrs() {
		t.Errorf("Stored record changed after failed merge: %+v", got.Attributes)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), "MISSING", patient.Update{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "P001", validAttrs()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := svc.Delete(ctx, "P001"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, "P001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, "P001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting absent record, got %v", err)
	}
}

func TestFilterThroughService(t *testing.T) {
	svc, ms := newTestService()

	ms.Seed(map[string]patient.Attributes{
		"P001": {Name: "Arjun", City: "Delhi", Age: 25, Gender: patient.GenderMale, Height: 1.8, Weight: 72},
		"P002": {Name: "Meera", City: "Mumbai", Age: 31, Gender: patient.GenderFemale, Height: 1.6, Weight: 48},
		"P003": {Name: "Kabir", City: "delhi", Age: 45, Gender: patient.GenderMale, Height: 1.7, Weight: 90},
	})

	minAge, maxAge := 20, 40
	results, err := svc.Filter(context.Background(), patient.Filter{
		City:   "DELHI",
		Gender: patient.GenderMale,
		MinAge: &minAge,
		MaxAge: &maxAge,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "P001" {
		t.Errorf("Expected [P001], got %+v", results)
	}
}

func TestFilterRejectsUnknownGender(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Filter(context.Background(), patient.Filter{Gender: "robot"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestSortThroughService(t *testing.T) {
	svc, ms := newTestService()

	ms.Seed(map[string]patient.Attributes{
		"P001": {Age: 30, Gender: patient.GenderMale, Height: 1, Weight: 22.1},
		"P002": {Age: 30, Gender: patient.GenderMale, Height: 1, Weight: 18.0},
		"P003": {Age: 30, Gender: patient.GenderMale, Height: 1, Weight: 30.5},
	})

	results, err := svc.Sort(context.Background(), "bmi", "asc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 3 || results[0].ID != "P002" || results[1].ID != "P001" || results[2].ID != "P003" {
		t.Errorf("Expected [P002 P001 P003], got %+v", results)
	}

	if _, err := svc.Sort(context.Background(), "name", "asc"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestStorageErrorsPropagate(t *testing.T) {
	svc := New(brokenStore{})
	ctx := context.Background()

	var stErr *store.Error

	if _, err := svc.GetAll(ctx); !errors.As(err, &stErr) {
		t.Errorf("Expected store.Error from GetAll, got %v", err)
	}
	if _, err := svc.Create(ctx, "P001", validAttrs()); !errors.As(err, &stErr) {
		t.Errorf("Expected store.Error from Create, got %v", err)
	}
	if err := svc.Delete(ctx, "P001"); !errors.As(err, &stErr) {
		t.Errorf("Expected store.Error from Delete, got %v", err)
	}
}
