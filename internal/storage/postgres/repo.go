// Package postgres implements a Postgres storage.Sink using pgx v5 and
// its native COPY protocol, which is the right tool for loading millions
// of annotation rows at once.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gtfparse/internal/storage"
	"gtfparse/internal/table"
)

// Config holds Postgres sink configuration.
type Config struct {
	// DSN is the pgxpool connection string, e.g. "postgresql://...".
	DSN string

	// Table is the target table name, optionally schema-qualified
	// ("public.annotations").
	Table string

	// CreateTable generates the target table from the parsed column kinds
	// before loading.
	CreateTable bool
}

// Sink is a Postgres-backed implementation of storage.Sink.
type Sink struct {
	pool *pgxpool.Pool
	cfg  Config
}

var pgTypes = map[table.Kind]string{
	table.Int:    "BIGINT",
	table.Float:  "DOUBLE PRECISION",
	table.String: "TEXT",
}

// NewSink constructs a Sink and returns a close function for cleanup.
func NewSink(ctx context.Context, cfg Config) (*Sink, func(), error) {
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Sink{pool: pool, cfg: cfg}, closeFn, nil
}

// Load COPYs the whole table into the target. Column names are normalized
// to safe SQL identifiers; missing values become NULL. Rows stream into
// the COPY protocol directly from the columnar storage, so no [][]any of
// the full table is materialized.
func (s *Sink) Load(ctx context.Context, t *table.Table) (int64, error) {
	names := t.Names()
	if len(names) == 0 {
		return 0, fmt.Errorf("postgres: table has no columns")
	}
	idents := storage.NormalizeIdents(names)

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	if s.cfg.CreateTable {
		defs := make([]string, len(idents))
		for i, name := range names {
			defs[i] = fmt.Sprintf("%s %s", pgIdent(idents[i]), storage.SQLType(t.Column(name).Kind, pgTypes))
		}
		ddl := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
			pgFQN(s.cfg.Table),
			strings.Join(defs, ",\n  "),
		)
		if _, err := conn.Exec(ctx, ddl); err != nil {
			return 0, fmt.Errorf("postgres: create table: %w", err)
		}
	}

	src := &tableSource{t: t, names: names, row: -1}
	copied, err := conn.Conn().CopyFrom(ctx, tableFQN(s.cfg.Table), idents, src)
	if err != nil {
		return copied, fmt.Errorf("postgres: copy: %w", err)
	}
	return copied, nil
}

// tableSource adapts a table.Table to pgx.CopyFromSource, yielding one
// row at a time.
type tableSource struct {
	t     *table.Table
	names []string
	row   int
}

func (s *tableSource) Next() bool {
	s.row++
	return s.row < s.t.NumRows()
}

func (s *tableSource) Values() ([]any, error) {
	return storage.Row(s.t, s.names, s.row), nil
}

func (s *tableSource) Err() error { return nil }

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func pgFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, pgIdent(p))
		}
	}
	return strings.Join(out, ".")
}

func tableFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	out := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
