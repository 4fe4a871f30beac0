package patient

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUpdateUnmarshalDistinguishesAbsentAndNull(t *testing.T) {
	var u Update
	if err := json.Unmarshal([]byte(`{"weight": 70, "name": null}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !u.Weight.Set || u.Weight.Null {
		t.Errorf("Expected weight to be set and non-null, got %+v", u.Weight)
	}
	if u.Weight.Value != 70 {
		t.Errorf("Expected weight value 70, got %v", u.Weight.Value)
	}
	if !u.Name.Set || !u.Name.Null {
		t.Errorf("Expected name to be set and null, got %+v", u.Name)
	}
	if u.City.Set {
		t.Errorf("Expected city to be absent, got %+v", u.City)
	}

	var empty Update
	if err := json.Unmarshal([]byte(`{}`), &empty); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !empty.Empty() {
		t.Errorf("Expected empty update, got %+v", empty)
	}
}

func TestMergeChangesOnlySuppliedFields(t *testing.T) {
	existing, err := New("P001", validAttrs())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var u Update
	if err := json.Unmarshal([]byte(`{"weight": 70}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	merged, err := Merge(existing, u)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if merged.Weight != 70 {
		t.Errorf("Expected weight 70, got %v", merged.Weight)
	}
	if merged.Name != existing.Name || merged.City != existing.City ||
		merged.Age != existing.Age || merged.Gender != existing.Gender ||
		merged.Height != existing.Height {
		t.Errorf("Unspecified fields changed: %+v", merged)
	}

	// 70 / 1.65^2 = 25.71... -> derived fields recomputed
	if merged.BMI != 25.71 {
		t.Errorf("Expected bmi 25.71, got %v", merged.BMI)
	}
	if merged.Verdict != VerdictOverweight {
		t.Errorf("Expected verdict %s, got %s", VerdictOverweight, merged.Verdict)
	}
}

func TestMergeIsAtomic(t *testing.T) {
	existing, _ := New("P001", validAttrs())

	var u Update
	if err := json.Unmarshal([]byte(`{"age": 150, "weight": 70}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	merged, err := Merge(existing, u)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if vErr.Field != "age" {
		t.Errorf("Expected field age, got %s", vErr.Field)
	}
	// The valid weight must not leak into the returned record either.
	if merged != existing {
		t.Errorf("Expected existing record back unchanged, got %+v", merged)
	}
}

func TestMergeRejectsExplicitNull(t *testing.T) {
	existing, _ := New("P001", validAttrs())

	var u Update
	if err := json.Unmarshal([]byte(`{"height": null}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := Merge(existing, u)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if vErr.Field != "height" {
		t.Errorf("Expected field height, got %s", vErr.Field)
	}
}

func TestMergeKeepsID(t *testing.T) {
	existing, _ := New("P001", validAttrs())

	var u Update
	if err := json.Unmarshal([]byte(`{"city": "Mumbai"}`), &u); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	merged, err := Merge(existing, u)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if merged.ID != "P001" {
		t.Errorf("Expected id P001, got %s", merged.ID)
	}
	if merged.City != "Mumbai" {
		t.Errorf("Expected city Mumbai, got %s", merged.City)
	}
}
