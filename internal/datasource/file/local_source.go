// Package file implements a local filesystem-backed annotation source
// with transparent gzip decompression, since public GTFs (Ensembl,
// GENCODE, RefSeq) ship gzip-compressed.
package file

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Local is a filesystem data source. Paths ending in .gz or .gzip are
// decompressed on the fly.
type Local struct{ path string }

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// gzReadCloser closes both the gzip stream and the underlying file.
type gzReadCloser struct {
	io.Reader
	gz *gzip.Reader
	f  *os.File
}

func (g *gzReadCloser) Close() error {
	gzErr := g.gz.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// Open opens the configured path for reading.
//
// Behavior:
//   - If the context is already canceled at the time of the call, Open
//     returns the context error without touching the filesystem.
//   - Filesystem errors are wrapped with the path while remaining
//     errors.Is-compatible (e.g. errors.Is(err, os.ErrNotExist)).
//   - A .gz/.gzip suffix selects gzip decompression; a corrupt gzip
//     header fails here, not at first read.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	if !strings.HasSuffix(l.path, ".gz") && !strings.HasSuffix(l.path, ".gzip") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: gzip: %w", l.path, err)
	}
	return &gzReadCloser{Reader: gz, gz: gz, f: f}, nil
}
