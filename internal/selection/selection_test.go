package selection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mind-engage/mathviz/internal/filter"
	"github.com/mind-engage/mathviz/internal/problem"
)

func collection(t *testing.T) problem.Collection {
	t.Helper()
	c := problem.Collection{}
	for _, r := range []struct{ path, level, typ string }{
		{"geometry/3.json", "Level 2", "Geometry"},
		{"algebra/10.json", "Level 2", "Algebra"},
		{"algebra/2.json", "Level 1", "Algebra"},
		{"algebra/1.json", "Level 5", "Algebra"},
		{"prealgebra/9.json", "Level 1", "Prealgebra"},
	} {
		rec, err := problem.DecodeMath(problem.PathID(r.path),
			[]byte(fmt.Sprintf(`{"problem":"p","level":%q,"type":%q,"solution":"s"}`, r.level, r.typ)))
		if err != nil {
			t.Fatal(err)
		}
		c[rec.ID()] = rec
	}
	return c
}

func strs(ids []problem.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func TestSort_ByID(t *testing.T) {
	got := strs(Sort(collection(t), KeyID))
	want := []string{"algebra/1.json", "algebra/10.json", "algebra/2.json", "geometry/3.json", "prealgebra/9.json"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort(id) mismatch:\n%s", diff)
	}
}

func TestSort_ByFacetBreaksTiesByID(t *testing.T) {
	c := collection(t)
	got := strs(Sort(c, "level"))
	want := []string{"algebra/2.json", "prealgebra/9.json", "algebra/10.json", "geometry/3.json", "algebra/1.json"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort(level) mismatch:\n%s", diff)
	}

	got = strs(Sort(c, "type"))
	want = []string{"algebra/1.json", "algebra/10.json", "algebra/2.json", "geometry/3.json", "prealgebra/9.json"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort(type) mismatch:\n%s", diff)
	}
}

func TestSort_Deterministic(t *testing.T) {
	c := collection(t)
	for _, key := range []string{KeyID, "type", "level", "missing"} {
		a, b := Sort(c, key), Sort(c, key)
		if diff := cmp.Diff(strs(a), strs(b)); diff != "" {
			t.Errorf("Sort(%s) not deterministic:\n%s", key, diff)
		}
	}
}

func TestSelect_StaleSelectionIsNotFound(t *testing.T) {
	c := collection(t)
	filtered := filter.Apply(c, filter.Spec{Facets: map[string][]string{"type": {"Algebra"}}})
	order := Sort(filtered, KeyID)

	stale := problem.PathID("geometry/3.json")
	if _, ok := c[stale]; !ok {
		t.Fatal("stale id must exist in the unfiltered collection")
	}
	if _, err := Select(order, filtered, stale); !errors.Is(err, problem.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := Select(order, c, stale); !errors.Is(err, problem.ErrNotFound) {
		t.Fatalf("order governs membership; expected ErrNotFound, got %v", err)
	}

	r, err := Select(order, filtered, problem.PathID("algebra/2.json"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if lvl, _ := r.Facet("level"); lvl != "Level 1" {
		t.Errorf("level = %q", lvl)
	}
}

func TestSortAndSelect(t *testing.T) {
	c := collection(t)

	res, err := SortAndSelect(c, "level", nil)
	if err != nil {
		t.Fatalf("SortAndSelect: %v", err)
	}
	if !res.Fallback || res.Record.ID() != problem.PathID("algebra/2.json") {
		t.Errorf("expected fallback to first record, got %+v", res.Record.ID())
	}

	chosen := problem.PathID("algebra/1.json")
	res, err = SortAndSelect(c, KeyID, &chosen)
	if err != nil || res.Fallback || res.Record.ID() != chosen {
		t.Fatalf("unexpected result %+v, err %v", res, err)
	}

	missing := problem.PathID("nope.json")
	res, err = SortAndSelect(c, KeyID, &missing)
	if !errors.Is(err, problem.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(res.Order) != len(c) {
		t.Fatalf("order should still be returned on a stale selection")
	}
	first, err := First(res.Order, c)
	if err != nil || first.ID() != problem.PathID("algebra/1.json") {
		t.Fatalf("First = %v, %v", first, err)
	}
}

func TestSortAndSelect_Empty(t *testing.T) {
	if _, err := SortAndSelect(problem.Collection{}, KeyID, nil); !errors.Is(err, problem.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if _, err := First(nil, nil); !errors.Is(err, problem.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}
