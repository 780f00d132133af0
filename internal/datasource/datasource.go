// Package datasource abstracts where annotation bytes come from. The
// parser only consumes an io.ReadCloser; callers pick the concrete source
// (local file, possibly gzip-compressed).
package datasource

import (
	"context"
	"io"
)

// Source opens a byte stream of GTF-formatted lines.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
