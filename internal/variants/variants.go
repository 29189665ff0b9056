// Package variants describes the dataset variants the tool can browse: where
// their files live, which facets they expose and which difficulty scale
// their annotations use.
package variants

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mathviz/internal/annotate"
	"github.com/mind-engage/mathviz/internal/dataset"
	"github.com/mind-engage/mathviz/internal/filter"
	"github.com/mind-engage/mathviz/internal/problem"
	"github.com/mind-engage/mathviz/internal/selection"
)

//go:embed variants.yaml
var defaultYAML []byte

// FileSpec is an array-mode file plus presentation tags.
type FileSpec struct {
	dataset.File `yaml:",inline"`
	// Tag is a short label copied into question_info (e.g. "Easy").
	Tag string `yaml:"tag" json:"tag,omitempty"`
}

type ScaleSpec struct {
	annotate.Scale `yaml:",inline"`
	// FromFacet derives the levels from the values observed in the
	// loaded collection instead of a fixed list.
	FromFacet string `yaml:"from_facet" json:"from_facet,omitempty"`
}

type Variant struct {
	Name           string       `yaml:"name" json:"name"`
	Title          string       `yaml:"title" json:"title"`
	Mode           dataset.Mode `yaml:"mode" json:"mode"`
	Root           string       `yaml:"root" json:"root,omitempty"`
	Files          []FileSpec   `yaml:"files" json:"files,omitempty"`
	Facets         []string     `yaml:"facets" json:"facets"`
	SortKeys       []string     `yaml:"sort_keys" json:"sort_keys"`
	DefaultSort    string       `yaml:"default_sort" json:"default_sort"`
	Scale          ScaleSpec    `yaml:"scale" json:"scale"`
	OriginalFields []string     `yaml:"original_fields" json:"original_fields,omitempty"`
	InfoFields     []string     `yaml:"info_fields" json:"info_fields,omitempty"`
	InfoTagKey     string       `yaml:"info_tag_key" json:"info_tag_key,omitempty"`
}

// Source resolves the variant's paths against dataRoot.
func (v *Variant) Source(dataRoot string) dataset.Source {
	src := dataset.Source{Mode: v.Mode}
	if v.Mode == dataset.ModeDirectory {
		src.Root = resolve(dataRoot, v.Root)
		return src
	}
	for _, f := range v.Files {
		file := f.File
		file.Path = resolve(dataRoot, f.Path)
		src.Files = append(src.Files, file)
	}
	return src
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// HasSortKey reports whether key is one the variant allows.
func (v *Variant) HasSortKey(key string) bool {
	return key == selection.KeyID || slices.Contains(v.SortKeys, key)
}

// ResolveScale returns the difficulty scale for annotations over c.
func (v *Variant) ResolveScale(c problem.Collection) annotate.Scale {
	s := v.Scale.Scale
	if v.Scale.FromFacet == "" {
		return s
	}
	s.Levels = nil
	for _, val := range filter.FacetValues(c, v.Scale.FromFacet) {
		if val != "" {
			s.Levels = append(s.Levels, val)
		}
	}
	return s
}

// AnnotateOptions builds the assembly options for rec.
func (v *Variant) AnnotateOptions(rec problem.Record, c problem.Collection) annotate.Options {
	opts := annotate.Options{
		Scale:          v.ResolveScale(c),
		OriginalFields: v.OriginalFields,
		InfoFields:     v.InfoFields,
	}
	if v.InfoTagKey == "" || rec == nil {
		return opts
	}
	for _, f := range v.Files {
		if f.Key == rec.ID().Path && f.Tag != "" {
			opts.InfoExtra = map[string]string{v.InfoTagKey: f.Tag}
		}
	}
	return opts
}

func (v *Variant) validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: variant without a name", problem.ErrValidation)
	}
	if err := v.Source("").Validate(); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	if v.Mode == dataset.ModeDirectory && len(v.Files) > 0 {
		return fmt.Errorf("%w: variant %s: directory mode takes no files", problem.ErrValidation, v.Name)
	}
	if v.DefaultSort == "" {
		v.DefaultSort = selection.KeyID
	}
	if !v.HasSortKey(v.DefaultSort) {
		return fmt.Errorf("%w: variant %s: default sort %q is not a sort key", problem.ErrValidation, v.Name, v.DefaultSort)
	}
	return nil
}

// Registry is an ordered set of variants keyed by name.
type Registry struct {
	byName map[string]*Variant
	order  []string
}

type file struct {
	Variants []*Variant `yaml:"variants"`
}

// Parse reads a variants YAML document.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: variants: %v", problem.ErrParse, err)
	}
	r := &Registry{byName: map[string]*Variant{}}
	for _, v := range f.Variants {
		if err := v.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variant %q", problem.ErrValidation, v.Name)
		}
		r.byName[v.Name] = v
		r.order = append(r.order, v.Name)
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("%w: no variants defined", problem.ErrValidation)
	}
	return r, nil
}

// Default returns the built-in variants.
func Default() (*Registry, error) { return Parse(defaultYAML) }

// Load reads variants from path, or the built-in set when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: variants file %s", problem.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	return Parse(data)
}

func (r *Registry) Get(name string) (*Variant, error) {
	v, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: variant %q", problem.ErrNotFound, name)
	}
	return v, nil
}

// Names returns variant names in file order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

func (r *Registry) All() []*Variant {
	out := make([]*Variant, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n])
	}
	return out
}
