// Package export stores assembled annotation documents and records each
// export in the ledger.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/mind-engage/mathviz/internal/annotate"
	"github.com/mind-engage/mathviz/internal/ledger"
	"github.com/mind-engage/mathviz/internal/logging"
	"github.com/mind-engage/mathviz/internal/storage"
)

// Ledger is the part of ledger.Repo the sink needs.
type Ledger interface {
	Append(ctx context.Context, e ledger.Export) (ledger.Export, error)
	List(ctx context.Context, variant string, limit int) ([]ledger.Export, error)
	Get(ctx context.Context, id string) (ledger.Export, error)
}

type Sink struct {
	blobs  storage.BlobStore
	ledger Ledger
	log    *slog.Logger
}

func NewSink(blobs storage.BlobStore, l Ledger) *Sink {
	return &Sink{blobs: blobs, ledger: l, log: logging.New("export")}
}

// Key is the blob key a document of variant is stored under.
func Key(variant, filename string) string {
	return path.Join("annotations", variant, path.Base(filename))
}

// Save writes doc as filename under variant. A second save of the same
// record replaces the blob and adds another ledger entry. The blob is
// removed again when the ledger rejects the entry.
func (s *Sink) Save(ctx context.Context, variant, filename, subject string, doc annotate.Document) (ledger.Export, error) {
	data, err := annotate.Marshal(doc)
	if err != nil {
		return ledger.Export{}, err
	}
	key, err := s.blobs.Put(ctx, Key(variant, filename), bytes.NewReader(data))
	if err != nil {
		return ledger.Export{}, fmt.Errorf("store %s: %w", filename, err)
	}
	meta := doc.Annotations.Metadata
	e, err := s.ledger.Append(ctx, ledger.Export{
		Variant:        variant,
		RecordID:       meta.RecordID,
		BlobKey:        key,
		Filename:       path.Base(filename),
		Annotator:      meta.Annotator,
		Difficulty:     doc.Annotations.Difficulty,
		AnnotationDate: meta.AnnotationDate,
		Subject:        subject,
	})
	if err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.log.Error("orphaned export blob", "key", key, "err", derr)
		}
		return ledger.Export{}, err
	}
	s.log.Info("annotation exported", "variant", variant, "record", meta.RecordID, "key", key, "id", e.ID)
	return e, nil
}

func (s *Sink) List(ctx context.Context, variant string, limit int) ([]ledger.Export, error) {
	return s.ledger.List(ctx, variant, limit)
}

// Located is a ledger entry with the address of its stored document.
type Located struct {
	ledger.Export
	URL string `json:"url"`
}

// Export looks up a ledger entry by id.
func (s *Sink) Export(ctx context.Context, id string) (Located, error) {
	e, err := s.ledger.Get(ctx, id)
	if err != nil {
		return Located{}, err
	}
	u, err := s.blobs.URL(e.BlobKey)
	if err != nil {
		return Located{}, err
	}
	return Located{Export: e, URL: u}, nil
}

// Open returns the stored document at key.
func (s *Sink) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.blobs.Get(ctx, key)
}
