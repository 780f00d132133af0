// Package sqlite implements a SQLite-backed storage.Sink using
// database/sql. Rows are written with batched INSERTs inside a
// transaction; SQLite has no bulk-load API like Postgres COPY, but a
// single transaction keeps performance acceptable for whole-genome
// annotation tables.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"gtfparse/internal/storage"
	"gtfparse/internal/table"
)

// Config holds SQLite sink configuration.
type Config struct {
	// DSN is passed directly to database/sql, e.g. "annotations.db" or
	// "file:annotations.db?cache=shared".
	DSN string

	// Table is the destination table name.
	Table string
}

// Sink is a SQLite-backed implementation of storage.Sink.
type Sink struct {
	db  *sql.DB
	cfg Config
}

var sqliteTypes = map[table.Kind]string{
	table.Int:    "INTEGER",
	table.Float:  "REAL",
	table.String: "TEXT",
}

// NewSink opens a SQLite connection and returns a Sink plus a close
// function for cleanup.
func NewSink(ctx context.Context, cfg Config) (*Sink, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, nil, fmt.Errorf("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Sink{db: db, cfg: cfg}, closeFn, nil
}

// Load creates the destination table from the table's column kinds (IF
// NOT EXISTS) and inserts every row in one transaction. Missing values
// become NULL. Column names are normalized to safe SQL identifiers.
func (s *Sink) Load(ctx context.Context, t *table.Table) (int64, error) {
	names := t.Names()
	if len(names) == 0 {
		return 0, fmt.Errorf("sqlite: table has no columns")
	}
	idents := storage.NormalizeIdents(names)

	if err := s.createTable(ctx, t, idents); err != nil {
		return 0, err
	}

	placeholders := make([]string, len(names))
	quoted := make([]string, len(names))
	for i := range names {
		placeholders[i] = "?"
		quoted[i] = quoteIdent(idents[i])
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.cfg.Table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i := 0; i < t.NumRows(); i++ {
		if _, err := stmt.ExecContext(ctx, storage.Row(t, names, i)...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert row %d: %w", i, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

func (s *Sink) createTable(ctx context.Context, t *table.Table, idents []string) error {
	defs := make([]string, len(idents))
	for i, name := range t.Names() {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(idents[i]), storage.SQLType(t.Column(name).Kind, sqliteTypes))
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteIdent(s.cfg.Table),
		strings.Join(defs, ",\n  "),
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	return nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
