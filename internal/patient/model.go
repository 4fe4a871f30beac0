package patient

import (
	"fmt"
	"math"
)

// Gender values accepted on a patient record
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOthers = "others"
)

// Health verdict categories derived from BMI
const (
	VerdictUnderweight = "Underweight"
	VerdictNormal      = "Normal"
	VerdictOverweight  = "Overweight"
	VerdictObese       = "Obese"
)

// Attributes holds the base fields of a patient record. This is the shape
// the store persists; derived fields are never part of it.
type Attributes struct {
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// Patient is a full patient record as served to clients. BMI and Verdict
// are recomputed from height and weight every time a record is
// materialized, never read back from storage.
type Patient struct {
	ID string `json:"id"`
	Attributes
	BMI     float64 `json:"bmi"`
	Verdict string  `json:"verdict"`
}

// ValidationError reports a constraint violation on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOthers:
		return true
	}
	return false
}

// Validate checks the attribute constraints: age strictly inside (0, 120),
// height and weight strictly positive, gender restricted to the enum.
func (a Attributes) Validate() error {
	if a.Age <= 0 || a.Age >= 120 {
		return &ValidationError{Field: "age", Reason: "must be between 1 and 119"}
	}
	if !ValidGender(a.Gender) {
		return &ValidationError{Field: "gender", Reason: "must be one of male, female, others"}
	}
	if a.Height <= 0 {
		return &ValidationError{Field: "height", Reason: "must be greater than 0"}
	}
	if a.Weight <= 0 {
		return &ValidationError{Field: "weight", Reason: "must be greater than 0"}
	}
	return nil
}

// ComputeBMI returns weight (kg) divided by height (m) squared, rounded to
// two decimal places. Rounding is half away from zero.
func ComputeBMI(height, weight float64) float64 {
	return math.Round(weight/(height*height)*100) / 100
}

// VerdictFor classifies a BMI value. A BMI exactly on a threshold lands
// in the heavier category: exactly 18.5 is Normal, exactly 25 is
// Overweight, exactly 30 is Obese.
func VerdictFor(bmi float64) string {
	switch {
	case bmi < 18.5:
		return VerdictUnderweight
	case bmi < 25:
		return VerdictNormal
	case bmi < 30:
		return VerdictOverweight
	default:
		return VerdictObese
	}
}

// Materialize builds a servable record from stored attributes, computing
// the derived fields. It does not validate; records already in the store
// are served as-is.
func Materialize(id string, attrs Attributes) Patient {
	bmi := ComputeBMI(attrs.Height, attrs.Weight)
	return Patient{
		ID:         id,
		Attributes: attrs,
		BMI:        bmi,
		Verdict:    VerdictFor(bmi),
	}
}

// New validates the attributes and returns a materialized record.
func New(id string, attrs Attributes) (Patient, error) {
	if id == "" {
		return Patient{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := attrs.Validate(); err != nil {
		return Patient{}, err
	}
	return Materialize(id, attrs), nil
}
