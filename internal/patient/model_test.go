package patient

import (
	"errors"
	"testing"
)

func validAttrs() Attributes {
	return Attributes{
		Name:   "Ananya",
		City:   "Delhi",
		Age:    30,
		Gender: GenderFemale,
		Height: 1.65,
		Weight: 60,
	}
}

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		name     string
		height   float64
		weight   float64
		expected float64
	}{
		{"Typical adult", 1.75, 70, 22.86},
		{"Rounds to two decimals", 1.6, 50, 19.53},
		{"Exact normal boundary", 1.0, 18.5, 18.5},
		{"Exact overweight boundary", 2.0, 100, 25},
		{"Exact obese boundary", 2.0, 120, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBMI(tt.height, tt.weight)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestVerdictBoundaries(t *testing.T) {
	tests := []struct {
		bmi      float64
		expected string
	}{
		{10, VerdictUnderweight},
		{18.49, VerdictUnderweight},
		{18.5, VerdictNormal},
		{24.99, VerdictNormal},
		{25, VerdictOverweight},
		{29.99, VerdictOverweight},
		{30, VerdictObese},
		{45, VerdictObese},
	}

	for _, tt := range tests {
		if got := VerdictFor(tt.bmi); got != tt.expected {
			t.Errorf("VerdictFor(%v): expected %s, got %s", tt.bmi, tt.expected, got)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Attributes)
		wantField string
	}{
		{"Valid record", func(a *Attributes) {}, ""},
		{"Age lower bound", func(a *Attributes) { a.Age = 1 }, ""},
		{"Age upper bound", func(a *Attributes) { a.Age = 119 }, ""},
		{"Age zero", func(a *Attributes) { a.Age = 0 }, "age"},
		{"Age 120", func(a *Attributes) { a.Age = 120 }, "age"},
		{"Age negative", func(a *Attributes) { a.Age = -4 }, "age"},
		{"Unknown gender", func(a *Attributes) { a.Gender = "unknown" }, "gender"},
		{"Empty gender", func(a *Attributes) { a.Gender = "" }, "gender"},
		{"Zero height", func(a *Attributes) { a.Height = 0 }, "height"},
		{"Negative weight", func(a *Attributes) { a.Weight = -5 }, "weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttrs()
			tt.mutate(&attrs)

			err := attrs.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s", tt.wantField, vErr.Field)
			}
		})
	}
}

func TestNewComputesDerivedFields(t *testing.T) {
	p, err := New("P001", validAttrs())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 60 / 1.65^2 = 22.038... -> 22.04
	if p.BMI != 22.04 {
		t.Errorf("Expected bmi 22.04, got %v", p.BMI)
	}
	if p.Verdict != VerdictNormal {
		t.Errorf("Expected verdict %s, got %s", VerdictNormal, p.Verdict)
	}
	if p.ID != "P001" {
		t.Errorf("Expected id P001, got %s", p.ID)
	}
}

func TestNewRejectsEmptyID(t *testing.T) {
	_, err := New("", validAttrs())

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if vErr.Field != "id" {
		t.Errorf("Expected field id, got %s", vErr.Field)
	}
}

func TestMaterializeSkipsValidation(t *testing.T) {
	// Records already in the store are served even if they would not pass
	// validation today.
	p := Materialize("LEGACY1", Attributes{Age: 500, Height: 2, Weight: 120})

	if p.BMI != 30 {
		t.Errorf("Expected bmi 30, got %v", p.BMI)
	}
	if p.Verdict != VerdictObese {
		t.Errorf("Expected verdict %s, got %s", VerdictObese, p.Verdict)
	}
}
