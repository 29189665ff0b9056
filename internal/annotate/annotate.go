// Package annotate merges a problem record with human-entered annotation
// fields into an exportable document.
package annotate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mind-engage/mathviz/internal/problem"
)

// DateLayout is the ISO-8601 calendar date layout used for annotation dates.
const DateLayout = "2006-01-02"

const fileSuffix = "_annotated.json"

// Form holds the user-entered annotation fields.
type Form struct {
	Hints            []string `json:"hints"`
	Difficulty       string   `json:"difficulty"`
	DifficultyReason string   `json:"difficulty_reason"`
	Annotator        string   `json:"annotator"`
	// Date is a YYYY-MM-DD string; empty means today.
	Date string `json:"annotation_date"`
}

// Options carry the dataset-dependent parts of assembly.
type Options struct {
	// Scale constrains Difficulty when it has levels.
	Scale Scale
	// OriginalFields selects the fields copied into original_data. Empty
	// copies the record verbatim.
	OriginalFields []string
	// InfoFields are copied into metadata.question_info. Empty omits it.
	InfoFields []string
	// InfoExtra is merged into question_info after InfoFields.
	InfoExtra map[string]string
	Now       func() time.Time
}

type Document struct {
	OriginalData map[string]any `json:"original_data"`
	Annotations  Annotations    `json:"annotations"`
}

type Annotations struct {
	Hints            []string `json:"hints"`
	Difficulty       string   `json:"difficulty"`
	DifficultyReason string   `json:"difficulty_reason"`
	Metadata         Metadata `json:"metadata"`
}

type Metadata struct {
	Annotator      string         `json:"annotator"`
	AnnotationDate string         `json:"annotation_date"`
	RecordID       string         `json:"record_id"`
	OriginalFile   string         `json:"original_file,omitempty"`
	QuestionInfo   map[string]any `json:"question_info,omitempty"`
}

// Assemble builds the export document for rec. It fails with
// problem.ErrValidation when the difficulty is outside a non-empty scale or
// the date is not a calendar date.
func Assemble(rec problem.Record, form Form, opts Options) (Document, error) {
	if rec == nil {
		return Document{}, fmt.Errorf("%w: no record selected", problem.ErrNotFound)
	}
	if !opts.Scale.Contains(form.Difficulty) {
		return Document{}, fmt.Errorf("%w: difficulty %q is not on the %s scale",
			problem.ErrValidation, form.Difficulty, opts.Scale.Name)
	}
	date, err := annotationDate(form.Date, opts.Now)
	if err != nil {
		return Document{}, err
	}

	id := rec.ID()
	meta := Metadata{
		Annotator:      form.Annotator,
		AnnotationDate: date,
		RecordID:       id.String(),
	}
	if id.IsElement() {
		meta.QuestionInfo = questionInfo(rec, opts)
	} else {
		meta.OriginalFile = id.Path
	}

	return Document{
		OriginalData: originalData(rec, opts.OriginalFields),
		Annotations: Annotations{
			Hints:            CleanHints(form.Hints),
			Difficulty:       form.Difficulty,
			DifficultyReason: form.DifficultyReason,
			Metadata:         meta,
		},
	}, nil
}

// CleanHints drops empty and whitespace-only hints, keeping order. The
// result is never nil so it serializes as [].
func CleanHints(hints []string) []string {
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		if strings.TrimSpace(h) == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}

func annotationDate(s string, now func() time.Time) (string, error) {
	if s == "" {
		if now == nil {
			now = time.Now
		}
		return now().Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: annotation date %q is not YYYY-MM-DD", problem.ErrValidation, s)
	}
	return t.Format(DateLayout), nil
}

func originalData(rec problem.Record, selected []string) map[string]any {
	all := rec.Fields()
	if len(selected) == 0 {
		return all
	}
	out := make(map[string]any, len(selected))
	for _, k := range selected {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

func questionInfo(rec problem.Record, opts Options) map[string]any {
	if len(opts.InfoFields) == 0 && len(opts.InfoExtra) == 0 {
		return nil
	}
	all := rec.Fields()
	info := make(map[string]any, len(opts.InfoFields)+len(opts.InfoExtra))
	for _, k := range opts.InfoFields {
		if v, ok := all[k]; ok {
			info[k] = v
		}
	}
	for k, v := range opts.InfoExtra {
		info[k] = v
	}
	return info
}

// Filename is the suggested download name for rec's annotation.
func Filename(rec problem.Record) string {
	return rec.ExportStem() + fileSuffix
}

// Encode writes doc as 2-space indented UTF-8 JSON. Map keys are emitted in
// sorted order so identical documents encode to identical bytes.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
