package problem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
)

// Family names the dataset shape a record was decoded from.
type Family string

const (
	FamilyMath       Family = "math"
	FamilyGaokaoFill Family = "gaokao_fill"
	FamilyGaokaoOpen Family = "gaokao_open"
)

func (f Family) Valid() bool {
	switch f {
	case FamilyMath, FamilyGaokaoFill, FamilyGaokaoOpen:
		return true
	}
	return false
}

// Record is the accessor surface every dataset family provides.
type Record interface {
	ID() ID
	Family() Family
	ProblemText() string
	// SolutionText is the text searched alongside the problem.
	SolutionText() string
	// Facet returns the value of a categorical field and whether the
	// record carries it at all.
	Facet(name string) (string, bool)
	// Fields is a copy of the record exactly as decoded.
	Fields() map[string]any
	// ExportStem is the file name stem used for exported annotations.
	ExportStem() string
}

// Collection maps identities to records. It is never mutated after a load;
// filtering builds a new map.
type Collection map[ID]Record

// Find resolves the string form of an id.
func (c Collection) Find(s string) (Record, bool) {
	if r, ok := c[ParseID(s)]; ok {
		return r, true
	}
	r, ok := c[PathID(s)]
	return r, ok
}

type fields map[string]any

func (f fields) Facet(name string) (string, bool) {
	v, ok := f[name]
	if !ok {
		return "", false
	}
	return FacetString(v), true
}

func (f fields) Fields() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f fields) text(name string) string {
	s, _ := f.Facet(name)
	return s
}

// MathProblem is one file of a MATH-style dataset.
type MathProblem struct {
	fields
	id ID

	Problem  string
	Solution string
	Level    string
	Type     string
}

func (p *MathProblem) ID() ID               { return p.id }
func (p *MathProblem) Family() Family       { return FamilyMath }
func (p *MathProblem) ProblemText() string  { return p.Problem }
func (p *MathProblem) SolutionText() string { return p.Solution }

func (p *MathProblem) ExportStem() string {
	base := path.Base(p.id.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// DecodeMath parses one per-problem JSON file.
func DecodeMath(id ID, data []byte) (*MathProblem, error) {
	f, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return &MathProblem{
		fields:   f,
		id:       id,
		Problem:  f.text("problem"),
		Solution: f.text("solution"),
		Level:    f.text("level"),
		Type:     f.text("type"),
	}, nil
}

// GaokaoQuestion is one element of a Gaokao question file.
type GaokaoQuestion struct {
	fields
	id     ID
	family Family

	Question string
	Answer   string
	Analysis string
	Year     string
	Category string
	Index    int
	Score    string
}

func (q *GaokaoQuestion) ID() ID              { return q.id }
func (q *GaokaoQuestion) Family() Family      { return q.family }
func (q *GaokaoQuestion) ProblemText() string { return q.Question }

func (q *GaokaoQuestion) SolutionText() string {
	if q.Analysis == "" {
		return q.Answer
	}
	return q.Answer + "\n" + q.Analysis
}

func (q *GaokaoQuestion) ExportStem() string {
	return fmt.Sprintf("gaokao_%s_%s_q%d", q.Year, q.id.Path, q.Index)
}

// NewGaokaoQuestion wraps an already decoded array element. The element's
// position is used when it declares no index.
func NewGaokaoQuestion(fileKey string, family Family, position int, f map[string]any) *GaokaoQuestion {
	q := &GaokaoQuestion{
		fields:   f,
		family:   family,
		Question: fields(f).text("question"),
		Answer:   fields(f).text("answer"),
		Analysis: fields(f).text("analysis"),
		Year:     fields(f).text("year"),
		Category: fields(f).text("category"),
		Score:    fields(f).text("score"),
		Index:    position,
	}
	if n, ok := f["index"].(json.Number); ok {
		if i, err := n.Int64(); err == nil && i >= 0 {
			q.Index = int(i)
		}
	}
	q.id = ElementID(fileKey, q.Index)
	return q
}

// DecodeElements decodes a JSON array of objects keeping numbers verbatim.
func DecodeElements(raw json.RawMessage) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out []map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return out, nil
}

func decodeObject(data []byte) (fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var f map[string]any
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrParse)
	}
	if err := ensureEOF(dec); err != nil {
		return nil, err
	}
	return f, nil
}

func ensureEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", ErrParse)
	}
	return nil
}
