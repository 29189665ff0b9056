package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:mathviz.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/mathviz?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer; shared-cache memory databases vanish with the last conn
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var stmts []string
	switch driver {
	case DriverSQLite:
		stmts = schemaSQLite
	case DriverPostgres:
		stmts = schemaPostgres
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

var schemaSQLite = []string{`
CREATE TABLE IF NOT EXISTS annotation_exports (
  id TEXT PRIMARY KEY,
  variant TEXT NOT NULL,
  record_id TEXT NOT NULL,
  blob_key TEXT NOT NULL,
  filename TEXT NOT NULL,
  annotator TEXT NOT NULL DEFAULT '',
  difficulty TEXT NOT NULL DEFAULT '',
  annotation_date TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',      -- JWT sub of the caller
  created_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS annotation_exports_variant ON annotation_exports (variant, created_at)`,
}

var schemaPostgres = []string{`
CREATE TABLE IF NOT EXISTS annotation_exports (
  id TEXT PRIMARY KEY,
  variant TEXT NOT NULL,
  record_id TEXT NOT NULL,
  blob_key TEXT NOT NULL,
  filename TEXT NOT NULL,
  annotator TEXT NOT NULL DEFAULT '',
  difficulty TEXT NOT NULL DEFAULT '',
  annotation_date TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS annotation_exports_variant ON annotation_exports (variant, created_at)`,
}
