// Package filter derives facet values from a collection and narrows it by
// facet membership and free-text search. Every function here is pure.
package filter

import (
	"maps"
	"slices"
	"strings"

	"github.com/mind-engage/mathviz/internal/problem"
)

// Spec is a conjunction of facet constraints plus an optional search term.
// A facet with no accepted values is unconstrained.
type Spec struct {
	Facets map[string][]string `json:"filters,omitempty"`
	Search string              `json:"search,omitempty"`
}

// IsEmpty reports whether the spec constrains nothing.
func (s Spec) IsEmpty() bool {
	if s.Search != "" {
		return false
	}
	for _, vals := range s.Facets {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// FacetValues returns the distinct values of facet across c, ascending.
// Records without the facet contribute "".
func FacetValues(c problem.Collection, facet string) []string {
	seen := map[string]struct{}{}
	for _, r := range c {
		v, _ := r.Facet(facet)
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.SortFunc(out, problem.CompareValues)
	return out
}

// Apply returns the records of c matching spec. c is left untouched.
func Apply(c problem.Collection, spec Spec) problem.Collection {
	if spec.IsEmpty() {
		out := make(problem.Collection, len(c))
		maps.Copy(out, c)
		return out
	}
	accept := make(map[string]map[string]struct{}, len(spec.Facets))
	for facet, vals := range spec.Facets {
		if len(vals) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			set[v] = struct{}{}
		}
		accept[facet] = set
	}
	term := strings.ToLower(spec.Search)

	out := make(problem.Collection, len(c))
	for id, r := range c {
		if matchFacets(r, accept) && matchSearch(r, term) {
			out[id] = r
		}
	}
	return out
}

func matchFacets(r problem.Record, accept map[string]map[string]struct{}) bool {
	for facet, set := range accept {
		v, _ := r.Facet(facet)
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func matchSearch(r problem.Record, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ProblemText()), term) ||
		strings.Contains(strings.ToLower(r.SolutionText()), term)
}
