package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_SQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "t.db")
	db, err := Open(ctx, DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM annotation_exports`).Scan(&n); err != nil {
		t.Fatalf("annotation_exports missing: %v", err)
	}

	// ensureSchema is idempotent
	if err := ensureSchema(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("second ensureSchema: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("oracle"), ""); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
