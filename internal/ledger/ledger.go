// Package ledger is the append-only record of exported annotation documents.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mathviz/internal/problem"
)

type Export struct {
	ID             string `json:"id"`
	Variant        string `json:"variant"`
	RecordID       string `json:"record_id"`
	BlobKey        string `json:"blob_key"`
	Filename       string `json:"filename"`
	Annotator      string `json:"annotator"`
	Difficulty     string `json:"difficulty"`
	AnnotationDate string `json:"annotation_date"`
	Subject        string `json:"subject,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db, now: time.Now} }

// Append stores e, assigning an id and creation time when unset.
func (r *Repo) Append(ctx context.Context, e Export) (Export, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = r.now().Unix()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO annotation_exports
		   (id, variant, record_id, blob_key, filename, annotator, difficulty, annotation_date, subject, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.Variant, e.RecordID, e.BlobKey, e.Filename, e.Annotator, e.Difficulty,
		e.AnnotationDate, e.Subject, e.CreatedAt)
	if err != nil {
		return Export{}, fmt.Errorf("%w: append export: %v", problem.ErrIO, err)
	}
	return e, nil
}

const selectCols = `SELECT id, variant, record_id, blob_key, filename, annotator, difficulty, annotation_date, subject, created_at
  FROM annotation_exports`

func scan(row interface{ Scan(...any) error }) (Export, error) {
	var e Export
	err := row.Scan(&e.ID, &e.Variant, &e.RecordID, &e.BlobKey, &e.Filename, &e.Annotator,
		&e.Difficulty, &e.AnnotationDate, &e.Subject, &e.CreatedAt)
	return e, err
}

// List returns exports newest first. An empty variant lists all; limit <= 0
// means 100.
func (r *Repo) List(ctx context.Context, variant string, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 100
	}
	var (
		rows *sql.Rows
		err  error
	)
	if variant == "" {
		rows, err = r.db.QueryContext(ctx, selectCols+` ORDER BY created_at DESC, id LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, selectCols+` WHERE variant=$1 ORDER BY created_at DESC, id LIMIT $2`, variant, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list exports: %v", problem.ErrIO, err)
	}
	defer rows.Close()

	out := []Export{}
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list exports: %v", problem.ErrIO, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Export, error) {
	e, err := scan(r.db.QueryRowContext(ctx, selectCols+` WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Export{}, fmt.Errorf("%w: export %s", problem.ErrNotFound, id)
	}
	if err != nil {
		return Export{}, fmt.Errorf("%w: get export: %v", problem.ErrIO, err)
	}
	return e, nil
}
