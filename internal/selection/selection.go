// Package selection orders a filtered collection and resolves the record a
// user picked from it.
package selection

import (
	"fmt"
	"slices"

	"github.com/mind-engage/mathviz/internal/problem"
)

// KeyID sorts by identity. Any other key names a facet.
const KeyID = "id"

// Sort returns the identities of c ordered by key, ties broken by identity.
func Sort(c problem.Collection, key string) []problem.ID {
	out := make([]problem.ID, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	if key == "" || key == KeyID {
		slices.SortFunc(out, problem.ID.Compare)
		return out
	}
	vals := make(map[problem.ID]string, len(c))
	for id, r := range c {
		vals[id], _ = r.Facet(key)
	}
	slices.SortFunc(out, func(a, b problem.ID) int {
		if d := problem.CompareValues(vals[a], vals[b]); d != 0 {
			return d
		}
		return a.Compare(b)
	})
	return out
}

// Select resolves chosen against an ordered, filtered view of c. A chosen id
// that is not part of order fails with problem.ErrNotFound even when c
// itself still holds it.
func Select(order []problem.ID, c problem.Collection, chosen problem.ID) (problem.Record, error) {
	if !slices.Contains(order, chosen) {
		return nil, fmt.Errorf("%w: %s is not in the current selection", problem.ErrNotFound, chosen)
	}
	r, ok := c[chosen]
	if !ok {
		return nil, fmt.Errorf("%w: %s", problem.ErrNotFound, chosen)
	}
	return r, nil
}

// Result is an ordered view plus the record picked from it.
type Result struct {
	Order    []problem.ID
	Record   problem.Record
	Fallback bool
}

// SortAndSelect sorts c and picks chosen, or the first record when chosen is
// nil. A stale chosen id fails with problem.ErrNotFound; the returned Result
// still carries Order so callers can fall back explicitly. An empty
// collection fails with problem.ErrNoSelection.
func SortAndSelect(c problem.Collection, key string, chosen *problem.ID) (Result, error) {
	res := Result{Order: Sort(c, key)}
	if len(res.Order) == 0 {
		return res, problem.ErrNoSelection
	}
	if chosen == nil {
		res.Record = c[res.Order[0]]
		res.Fallback = true
		return res, nil
	}
	r, err := Select(res.Order, c, *chosen)
	if err != nil {
		return res, err
	}
	res.Record = r
	return res, nil
}

// First resolves the head of order, for callers recovering from a stale
// selection.
func First(order []problem.ID, c problem.Collection) (problem.Record, error) {
	if len(order) == 0 {
		return nil, problem.ErrNoSelection
	}
	return Select(order, c, order[0])
}
