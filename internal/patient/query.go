package patient

import (
	"errors"
	"sort"
	"strings"
)

// Sort argument errors
var (
	ErrBadSortField = errors.New("sort field must be one of age, height, weight, bmi")
	ErrBadSortOrder = errors.New("sort order must be asc or desc")
)

// Filter holds the optional predicates of a filtered listing. Empty string
// and nil mean the predicate is absent; present predicates are combined
// with AND.
type Filter struct {
	City   string
	Gender string
	MinAge *int
	MaxAge *int
}

// Match reports whether p satisfies every present predicate. City matches
// case-insensitively, gender exactly, and the age bounds are inclusive.
func (f Filter) Match(p Patient) bool {
	if f.City != "" && !strings.EqualFold(f.City, p.City) {
		return false
	}
	if f.Gender != "" && f.Gender != p.Gender {
		return false
	}
	if f.MinAge != nil && p.Age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && p.Age > *f.MaxAge {
		return false
	}
	return true
}

// Snapshot materializes the stored collection into a slice ordered by
// ascending id. All listing operations work over this snapshot so output
// ordering is deterministic and sort ties have a fixed baseline.
func Snapshot(records map[string]Attributes) []Patient {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Patient, 0, len(ids))
	for _, id := range ids {
		out = append(out, Materialize(id, records[id]))
	}
	return out
}

// Apply returns the records satisfying the filter, preserving input order.
func Apply(records []Patient, f Filter) []Patient {
	out := make([]Patient, 0, len(records))
	for _, p := range records {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// sortKeys maps the permitted sort fields to their numeric key. Fields a
// malformed record left at their zero value sort as 0 rather than failing,
// matching the behavior of the flat-file era.
var sortKeys = map[string]func(Patient) float64{
	"age":    func(p Patient) float64 { return float64(p.Age) },
	"height": func(p Patient) float64 { return p.Height },
	"weight": func(p Patient) float64 { return p.Weight },
	"bmi":    func(p Patient) float64 { return p.BMI },
}

// SortRecords orders records by the named field. Order is "asc" or "desc";
// an empty order defaults to ascending. The sort is stable, so equal keys
// keep their relative input order. The input slice is not modified.
func SortRecords(records []Patient, field, order string) ([]Patient, error) {
	key, ok := sortKeys[field]
	if !ok {
		return nil, ErrBadSortField
	}

	desc := false
	switch order {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, ErrBadSortOrder
	}

	out := make([]Patient, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})
	return out, nil
}
