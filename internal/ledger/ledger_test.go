package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mind-engage/mathviz/internal/db"
	"github.com/mind-engage/mathviz/internal/problem"
)

func newRepo(t *testing.T) *Repo {
	t.Helper()
	sqlDB, err := db.Open(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepo(sqlDB)
}

func TestAppendListGet(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	tick := int64(1_700_000_000)
	r.now = func() time.Time { tick++; return time.Unix(tick, 0) }

	first, err := r.Append(ctx, Export{Variant: "math", RecordID: "algebra/1.json", BlobKey: "annotations/math/1_annotated.json",
		Filename: "1_annotated.json", AnnotationDate: "2024-03-09"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.ID == "" || first.CreatedAt == 0 {
		t.Fatalf("Append should assign id and time: %+v", first)
	}
	second, err := r.Append(ctx, Export{Variant: "gaokao-subjective", RecordID: "math1_fill#7",
		BlobKey: "annotations/gaokao-subjective/x.json", Filename: "x.json", AnnotationDate: "2024-03-10", Subject: "ann"})
	if err != nil {
		t.Fatal(err)
	}

	all, err := r.List(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Export{second, first}, all); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	math, err := r.List(ctx, "math", 10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Export{first}, math); diff != "" {
		t.Errorf("filtered List mismatch:\n%s", diff)
	}

	got, err := r.Get(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("Get mismatch:\n%s", diff)
	}
	if _, err := r.Get(ctx, "missing"); !errors.Is(err, problem.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_Empty(t *testing.T) {
	got, err := newRepo(t).List(context.Background(), "math", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
