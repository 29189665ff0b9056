package annotate

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mind-engage/mathviz/internal/problem"
)

func mathRecord(t *testing.T) problem.Record {
	t.Helper()
	r, err := problem.DecodeMath(problem.PathID("algebra/1234.json"),
		[]byte(`{"problem":"If $x<2$ & $y>1$ ...","level":"Level 3","type":"Algebra","solution":"$x=1$"}`))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func gaokaoRecord(t *testing.T) problem.Record {
	t.Helper()
	elems, err := problem.DecodeElements(json.RawMessage(
		`[{"year":"2015","category":"（新课标Ⅰ）","question":"求 $a$","answer":["2"],"analysis":"略","index":7,"score":5}]`))
	if err != nil {
		t.Fatal(err)
	}
	return problem.NewGaokaoQuestion("math1_fill", problem.FamilyGaokaoFill, 0, elems[0])
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC) }

func TestCleanHints(t *testing.T) {
	got := CleanHints([]string{"", "a", "  ", "\t\n", "b "})
	if diff := cmp.Diff([]string{"a", "b "}, got); diff != "" {
		t.Errorf("CleanHints mismatch:\n%s", diff)
	}
	if got := CleanHints(nil); got == nil || len(got) != 0 {
		t.Errorf("CleanHints(nil) = %#v, want empty non-nil", got)
	}
}

func TestAssemble_DropsEmptyHints(t *testing.T) {
	doc, err := Assemble(mathRecord(t), Form{Hints: []string{"", "a", "  "}, Difficulty: "Level 3", Date: "2024-01-02"}, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, doc.Annotations.Hints); diff != "" {
		t.Errorf("hints mismatch:\n%s", diff)
	}
}

func TestAssemble_MathDocument(t *testing.T) {
	rec := mathRecord(t)
	doc, err := Assemble(rec, Form{
		Hints:            []string{"Isolate x."},
		Difficulty:       "Level 2",
		DifficultyReason: "one step",
		Annotator:        "alice",
		Date:             "2024-05-01",
	}, Options{Scale: Scale{Name: "MATH levels", Levels: []string{"Level 1", "Level 2", "Level 3"}}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if diff := cmp.Diff(rec.Fields(), doc.OriginalData); diff != "" {
		t.Errorf("original_data should be a verbatim copy:\n%s", diff)
	}
	want := Metadata{Annotator: "alice", AnnotationDate: "2024-05-01", RecordID: "algebra/1234.json", OriginalFile: "algebra/1234.json"}
	if diff := cmp.Diff(want, doc.Annotations.Metadata); diff != "" {
		t.Errorf("metadata mismatch:\n%s", diff)
	}
	if Filename(rec) != "1234_annotated.json" {
		t.Errorf("Filename = %q", Filename(rec))
	}
}

func TestAssemble_GaokaoDocument(t *testing.T) {
	rec := gaokaoRecord(t)
	doc, err := Assemble(rec, Form{Difficulty: "中等", Annotator: "li", Date: "2024-05-01"}, Options{
		Scale:          Scale{Name: "subjective", Levels: []string{"简单", "中等偏易", "中等", "中等偏难", "困难"}},
		OriginalFields: []string{"question", "answer", "analysis"},
		InfoFields:     []string{"year", "category", "index", "score"},
		InfoExtra:      map[string]string{"type": "Easy"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, ok := doc.OriginalData["year"]; ok {
		t.Error("year should not be in the field-selected original_data")
	}
	if len(doc.OriginalData) != 3 {
		t.Errorf("original_data = %v", doc.OriginalData)
	}
	info := doc.Annotations.Metadata.QuestionInfo
	if info["year"] != "2015" || info["type"] != "Easy" || info["index"] != json.Number("7") {
		t.Errorf("question_info = %v", info)
	}
	if doc.Annotations.Metadata.OriginalFile != "" {
		t.Error("array records carry question_info instead of original_file")
	}
	if doc.Annotations.Metadata.RecordID != "math1_fill#7" {
		t.Errorf("record_id = %q", doc.Annotations.Metadata.RecordID)
	}
	if Filename(rec) != "gaokao_2015_math1_fill_q7_annotated.json" {
		t.Errorf("Filename = %q", Filename(rec))
	}
}

func TestAssemble_ValidatesScale(t *testing.T) {
	scale := Scale{Name: "six-point", Levels: []string{"Very Easy", "Easy", "Medium", "Medium-Hard", "Hard", "Very Hard"}}
	_, err := Assemble(mathRecord(t), Form{Difficulty: "Impossible"}, Options{Scale: scale, Now: fixedNow})
	if !errors.Is(err, problem.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := Assemble(mathRecord(t), Form{Difficulty: "Impossible"}, Options{Now: fixedNow}); err != nil {
		t.Fatalf("without a scale any rating is accepted: %v", err)
	}
}

func TestAssemble_Date(t *testing.T) {
	doc, err := Assemble(mathRecord(t), Form{}, Options{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Annotations.Metadata.AnnotationDate != "2024-03-09" {
		t.Errorf("default date = %q", doc.Annotations.Metadata.AnnotationDate)
	}
	if _, err := Assemble(mathRecord(t), Form{Date: "09/03/2024"}, Options{}); !errors.Is(err, problem.ErrValidation) {
		t.Fatalf("expected ErrValidation for a non-ISO date, got %v", err)
	}
}

func TestAssemble_NilRecord(t *testing.T) {
	if _, err := Assemble(nil, Form{}, Options{}); !errors.Is(err, problem.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	rec := gaokaoRecord(t)
	form := Form{Hints: []string{"先化简", ""}, Difficulty: "Medium", DifficultyReason: "two steps", Annotator: "bob", Date: "2024-02-29"}
	opts := Options{InfoFields: []string{"year", "index"}}

	var outs [][]byte
	for i := 0; i < 2; i++ {
		doc, err := Assemble(rec, form, opts)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		outs = append(outs, b)
	}
	if !bytes.Equal(outs[0], outs[1]) {
		t.Fatalf("serialization differs:\n%s\n---\n%s", outs[0], outs[1])
	}
}

func TestEncode_Format(t *testing.T) {
	doc, err := Assemble(mathRecord(t), Form{Difficulty: "Level 3", Date: "2024-01-02"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.HasPrefix(s, "{\n  \"original_data\": {") {
		t.Errorf("unexpected layout:\n%s", s)
	}
	if !strings.Contains(s, "$x<2$ & $y>1$") {
		t.Errorf("HTML characters should not be escaped:\n%s", s)
	}
	if !strings.Contains(s, `"hints": []`) {
		t.Errorf("empty hints should encode as []:\n%s", s)
	}

	var round map[string]json.RawMessage
	if err := json.Unmarshal(b, &round); err != nil {
		t.Fatal(err)
	}
	if len(round) != 2 {
		t.Errorf("document must have exactly two top-level fields, got %d", len(round))
	}
}

func TestScaleInitial(t *testing.T) {
	s := Scale{Levels: []string{"Very Easy", "Easy", "Medium"}, Default: "Medium"}
	if got := s.Initial("Easy"); got != "Easy" {
		t.Errorf("Initial(Easy) = %q", got)
	}
	if got := s.Initial("Level 9"); got != "Medium" {
		t.Errorf("Initial(off-scale) = %q", got)
	}
	if got := (Scale{Levels: []string{"a", "b"}}).Initial(""); got != "a" {
		t.Errorf("Initial without default = %q", got)
	}
}
