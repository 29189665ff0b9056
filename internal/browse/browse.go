// Package browse is the surface presentation layers use: load a variant's
// dataset, list facets, filter, sort, select and assemble annotations. It
// holds no per-user state; every call takes what it needs as arguments.
package browse

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mind-engage/mathviz/internal/annotate"
	"github.com/mind-engage/mathviz/internal/dataset"
	"github.com/mind-engage/mathviz/internal/filter"
	"github.com/mind-engage/mathviz/internal/logging"
	"github.com/mind-engage/mathviz/internal/problem"
	"github.com/mind-engage/mathviz/internal/selection"
	"github.com/mind-engage/mathviz/internal/variants"
)

type Service struct {
	variants *variants.Registry
	cache    *dataset.Cache
	dataRoot string
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithLogger(l *slog.Logger) Option      { return func(s *Service) { s.log = l } }

// WithLoader replaces dataset.Load, mainly for tests.
func WithLoader(load dataset.LoadFunc) Option {
	return func(s *Service) { s.cache = dataset.NewCache(s.logged(load)) }
}

func New(reg *variants.Registry, dataRoot string, opts ...Option) *Service {
	s := &Service{
		variants: reg,
		dataRoot: dataRoot,
		log:      logging.New("browse"),
		now:      time.Now,
	}
	s.cache = dataset.NewCache(s.logged(dataset.Load))
	for _, o := range opts {
		o(s)
	}
	return s
}

// logged wraps a loader so every real load reports its warnings once.
func (s *Service) logged(load dataset.LoadFunc) dataset.LoadFunc {
	return func(src dataset.Source) (*dataset.Dataset, error) {
		start := time.Now()
		ds, err := load(src)
		if err != nil {
			s.log.Error("dataset load failed", "source", src.Fingerprint(), "err", err)
			return nil, err
		}
		for _, w := range ds.Warnings {
			s.log.Warn("skipped dataset entry", "path", w.Path, "err", w.Err)
		}
		s.log.Info("dataset loaded", "mode", src.Mode, "records", len(ds.Records),
			"warnings", len(ds.Warnings), "took", time.Since(start))
		return ds, nil
	}
}

func (s *Service) Variants() []*variants.Variant { return s.variants.All() }

func (s *Service) Variant(name string) (*variants.Variant, error) { return s.variants.Get(name) }

// LoadDataset returns the cached dataset of a variant, loading it on first
// use.
func (s *Service) LoadDataset(name string) (*variants.Variant, *dataset.Dataset, error) {
	v, err := s.variants.Get(name)
	if err != nil {
		return nil, nil, err
	}
	ds, err := s.cache.Get(v.Source(s.dataRoot))
	if err != nil {
		return v, nil, err
	}
	return v, ds, nil
}

// Reload re-reads a variant's files from storage.
func (s *Service) Reload(name string) (*dataset.Dataset, error) {
	v, err := s.variants.Get(name)
	if err != nil {
		return nil, err
	}
	return s.cache.Reload(v.Source(s.dataRoot))
}

func ListFacetValues(c problem.Collection, facet string) []string {
	return filter.FacetValues(c, facet)
}

func ApplyFilter(c problem.Collection, spec filter.Spec) problem.Collection {
	return filter.Apply(c, spec)
}

func SortAndSelect(c problem.Collection, key string, chosen *problem.ID) (selection.Result, error) {
	return selection.SortAndSelect(c, key, chosen)
}

// Query is one browse request against a variant.
type Query struct {
	Filter filter.Spec `json:"filter"`
	Sort   string      `json:"sort,omitempty"`
	// Selected is the string form of a record id; empty selects the first.
	Selected string `json:"selected,omitempty"`
	// Fallback selects the first record instead of failing when Selected
	// is no longer part of the filtered view.
	Fallback bool `json:"fallback,omitempty"`
}

// View is the outcome of a Query.
type View struct {
	Total      int
	Filtered   int
	Percentage float64
	Sort       string
	Order      []problem.ID
	Record     problem.Record
	Fallback   bool
}

// Query filters, sorts and selects in one step. An empty filtered view is
// not an error; View.Record is nil then.
func (s *Service) Query(name string, q Query) (View, error) {
	v, ds, err := s.LoadDataset(name)
	if err != nil {
		return View{}, err
	}
	key := q.Sort
	if key == "" {
		key = v.DefaultSort
	}
	if !v.HasSortKey(key) {
		return View{}, fmt.Errorf("%w: %s cannot be sorted by %q", problem.ErrValidation, v.Name, key)
	}

	filtered := ApplyFilter(ds.Records, q.Filter)
	view := View{
		Total:    len(ds.Records),
		Filtered: len(filtered),
		Sort:     key,
	}
	if view.Total > 0 {
		view.Percentage = float64(view.Filtered) / float64(view.Total) * 100
	}

	var chosen *problem.ID
	if q.Selected != "" {
		id := problem.ParseID(q.Selected)
		if _, ok := filtered[id]; !ok {
			if r, ok := filtered.Find(q.Selected); ok {
				id = r.ID()
			}
		}
		chosen = &id
	}
	res, err := SortAndSelect(filtered, key, chosen)
	view.Order = res.Order
	switch {
	case err == nil:
		view.Record, view.Fallback = res.Record, res.Fallback
	case errors.Is(err, problem.ErrNoSelection):
	case errors.Is(err, problem.ErrNotFound) && q.Fallback:
		view.Record, _ = selection.First(res.Order, filtered)
		view.Fallback = true
	default:
		return view, err
	}
	return view, nil
}

// Record resolves one record of a variant by the string form of its id.
func (s *Service) Record(name, id string) (*variants.Variant, *dataset.Dataset, problem.Record, error) {
	v, ds, err := s.LoadDataset(name)
	if err != nil {
		return nil, nil, nil, err
	}
	r, ok := ds.Records.Find(id)
	if !ok {
		return v, ds, nil, fmt.Errorf("%w: record %s in %s", problem.ErrNotFound, id, name)
	}
	return v, ds, r, nil
}

// Scale is the difficulty scale annotations of a variant are rated on.
func (s *Service) Scale(name string) (annotate.Scale, error) {
	v, ds, err := s.LoadDataset(name)
	if err != nil {
		return annotate.Scale{}, err
	}
	return v.ResolveScale(ds.Records), nil
}

// AssembleAnnotation builds the export document for record id of a variant.
func (s *Service) AssembleAnnotation(name, id string, form annotate.Form) (annotate.Document, string, error) {
	v, ds, rec, err := s.Record(name, id)
	if err != nil {
		return annotate.Document{}, "", err
	}
	opts := v.AnnotateOptions(rec, ds.Records)
	opts.Now = s.now
	doc, err := annotate.Assemble(rec, form, opts)
	if err != nil {
		return annotate.Document{}, "", err
	}
	return doc, annotate.Filename(rec), nil
}
