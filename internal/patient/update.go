package patient

import "encoding/json"

// Optional is a field value that remembers whether it appeared in the
// payload at all. Absent fields leave the existing value unchanged;
// explicit null is not the same as absence and is rejected at merge time.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Update is a sparse set of patient fields for a partial update. The id is
// not part of it and cannot change through this path.
type Update struct {
	Name   Optional[string]  `json:"name"`
	City   Optional[string]  `json:"city"`
	Age    Optional[int]     `json:"age"`
	Gender Optional[string]  `json:"gender"`
	Height Optional[float64] `json:"height"`
	Weight Optional[float64] `json:"weight"`
}

// Empty reports whether no field was supplied at all.
func (u Update) Empty() bool {
	return !u.Name.Set && !u.City.Set && !u.Age.Set &&
		!u.Gender.Set && !u.Height.Set && !u.Weight.Set
}

func applyField[T any](dst *T, field string, o Optional[T]) error {
	if !o.Set {
		return nil
	}
	if o.Null {
		return &ValidationError{Field: field, Reason: "must not be null"}
	}
	*dst = o.Value
	return nil
}

// Merge applies the supplied fields of u onto the existing record and
// re-validates the combined attribute set as a whole. On any error the
// existing record is returned untouched, so a failed merge never leaks a
// partially applied update.
func Merge(existing Patient, u Update) (Patient, error) {
	attrs := existing.Attributes

	if err := applyField(&attrs.Name, "name", u.Name); err != nil {
		return existing, err
	}
	if err := applyField(&attrs.City, "city", u.City); err != nil {
		return existing, err
	}
	if err := applyField(&attrs.Age, "age", u.Age); err != nil {
		return existing, err
	}
	if err := applyField(&attrs.Gender, "gender", u.Gender); err != nil {
		return existing, err
	}
	if err := applyField(&attrs.Height, "height", u.Height); err != nil {
		return existing, err
	}
	if err := applyField(&attrs.Weight, "weight", u.Weight); err != nil {
		return existing, err
	}

	merged, err := New(existing.ID, attrs)
	if err != nil {
		return existing, err
	}
	return merged, nil
}
