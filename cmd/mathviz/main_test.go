package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
)

func seed(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"MATH/train/algebra/1.json":  `{"problem":"Solve $x^2-1=0$.","level":"Level 2","type":"Algebra","solution":"Use the quadratic formula."}`,
		"MATH/train/algebra/2.json":  `{"problem":"Compute $1+1$.","level":"Level 1","type":"Algebra","solution":"$2$"}`,
		"MATH/train/geometry/7.json": `{"problem":"Area of a unit circle?","level":"Level 2","type":"Geometry","solution":"$\\pi$"}`,
	}
	for p, body := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVariants(t *testing.T) {
	out, err := run(t, "variants")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"math", "gaokao-objective", "gaokao-subjective"} {
		if !strings.Contains(out, name) {
			t.Errorf("missing %s in:\n%s", name, out)
		}
	}
}

func TestList_FilterAndSort(t *testing.T) {
	root := seed(t)
	out, err := run(t, "list", "math", "--data-root", root, "-f", "level=Level 2", "--sort", "type")
	if err != nil {
		t.Fatal(err)
	}
	a, g := strings.Index(out, "algebra/1.json"), strings.Index(out, "geometry/7.json")
	if a < 0 || g < 0 || a > g {
		t.Errorf("unexpected order:\n%s", out)
	}
	if strings.Contains(out, "algebra/2.json") {
		t.Errorf("filtered record listed:\n%s", out)
	}
	if !strings.Contains(out, "Showing 2 of 3 problems (66.7%), sorted by type") {
		t.Errorf("missing summary:\n%s", out)
	}

	if _, err := run(t, "list", "math", "--data-root", root, "-f", "level"); err == nil {
		t.Error("malformed filter should fail")
	}
}

func TestFacets(t *testing.T) {
	out, err := run(t, "facets", "math", "level", "--data-root", seed(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `level (2): "Level 1", "Level 2"`) {
		t.Errorf("facets output:\n%s", out)
	}
}

func TestShow_NotFound(t *testing.T) {
	if _, err := run(t, "show", "math", "algebra/404.json", "--data-root", seed(t)); err == nil {
		t.Fatal("expected an error for a missing record")
	}
}

func TestAnnotate_WritesFile(t *testing.T) {
	root := seed(t)
	dir := t.TempDir()
	_, err := run(t, "annotate", "math", "algebra/1.json", "--data-root", root,
		"--hint", "factor", "--hint", " ", "-d", "Level 2", "--annotator", "ann", "--date", "2024-03-09", "-o", dir)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "1_annotated.json"))
	if err != nil {
		t.Fatalf("annotation not written: %v", err)
	}
	var doc struct {
		Annotations struct {
			Hints    []string `json:"hints"`
			Metadata struct {
				Annotator      string `json:"annotator"`
				AnnotationDate string `json:"annotation_date"`
				OriginalFile   string `json:"original_file"`
			} `json:"metadata"`
		} `json:"annotations"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"factor"}, doc.Annotations.Hints); diff != "" {
		t.Errorf("hints mismatch:\n%s", diff)
	}
	m := doc.Annotations.Metadata
	if m.Annotator != "ann" || m.AnnotationDate != "2024-03-09" || m.OriginalFile != "algebra/1.json" {
		t.Errorf("metadata = %+v", m)
	}

	if _, err := run(t, "annotate", "math", "algebra/1.json", "--data-root", root, "-d", "Level 7"); err == nil {
		t.Error("off-scale difficulty should fail")
	}
}
