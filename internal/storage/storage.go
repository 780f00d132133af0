// Package storage defines the sink abstraction for persisting a parsed
// annotation table, plus SQL helpers shared by the concrete backends
// (SQLite, Postgres) in subpackages.
package storage

import (
	"context"

	"gtfparse/internal/table"
)

// Sink loads a finished table into a destination and returns the number
// of rows written.
type Sink interface {
	Load(ctx context.Context, t *table.Table) (int64, error)
}

// SQLType maps a column kind to a SQL type using the given dialect
// mapping, falling back to the text type.
func SQLType(k table.Kind, dialect map[table.Kind]string) string {
	if t, ok := dialect[k]; ok {
		return t
	}
	return dialect[table.String]
}

// Row materializes row i of the table in column order, nil for missing
// values, ready to bind as SQL parameters.
func Row(t *table.Table, names []string, i int) []any {
	out := make([]any, len(names))
	for j, name := range names {
		out[j] = t.Column(name).Value(i)
	}
	return out
}
