// Package gtf implements streaming parsing of GTF/GFF2 annotation lines
// and the two attribute dialects (GTF `key "value";` and GFF3 `key=value`).
// The Reader follows the line-decoder shape used across bioinformatics Go
// readers: Read returns one record at a time and io.EOF at end of input,
// so callers control skip-versus-abort policy per line.
package gtf

import (
	"bufio"
	"io"
	"strings"
)

// ReaderOptions configures parsing behavior of a Reader.
type ReaderOptions struct {
	// Strict rejects invalid strand values and out-of-range frames instead
	// of passing them through.
	Strict bool

	// RawAttributes disables attribute expansion: the 9th field is kept as
	// one string and never tokenized.
	RawAttributes bool
}

// Reader parses GTF records from a line stream. Comment lines (leading
// '#') and blank lines are skipped; physical line numbers are still
// advanced for them so errors cite real file positions.
type Reader struct {
	s    *bufio.Scanner
	opt  ReaderOptions
	line int
}

// maxLineSize bounds a single annotation line. Ensembl attribute fields
// run to a few KB; 4 MB leaves room for pathological inputs.
const maxLineSize = 4 << 20

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader, opt ReaderOptions) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{s: s, opt: opt}
}

// Read returns the next annotation record, skipping comments and blank
// lines. It returns io.EOF at end of input. Parse failures return a
// *MalformedLineError or *MalformedAttributeError; the Reader remains
// usable afterward, so lenient callers can count the skip and keep going.
func (r *Reader) Read() (*Record, error) {
	for r.s.Scan() {
		r.line++
		text := r.s.Text()
		if len(text) == 0 || text[0] == '#' || strings.TrimSpace(text) == "" {
			continue
		}
		return parseLine(text, r.line, r.opt.Strict, !r.opt.RawAttributes)
	}
	if err := r.s.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Line returns the 1-based physical line number of the last line consumed.
func (r *Reader) Line() int { return r.line }
