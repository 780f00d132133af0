// Package validate holds the post-parse policy layer: the coordinate
// invariant (end >= start), opt-in 0-based coordinate normalization,
// column projection and biotype inference.
package validate

import (
	"fmt"

	"gtfparse/internal/gtf"
	"gtfparse/internal/table"
)

// CoordinateWarning records a row whose end precedes its start. In lenient
// mode the row is kept and the warning reported; strict mode turns the
// same condition into a CoordinateError.
type CoordinateWarning struct {
	Line  int
	Start int64
	End   int64
}

func (w CoordinateWarning) String() string {
	return fmt.Sprintf("line %d: end %d < start %d", w.Line, w.End, w.Start)
}

// CoordinateError is the strict-mode form of CoordinateWarning.
type CoordinateError struct {
	Line  int
	Start int64
	End   int64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("gtf: line %d: end %d < start %d", e.Line, e.End, e.Start)
}

// CheckRecord enforces end >= start while the record's line number is
// still known. It returns a warning in lenient mode and an error in
// strict mode; (nil, nil) means the record is fine.
func CheckRecord(rec *gtf.Record, line int, strict bool) (*CoordinateWarning, error) {
	if rec.End >= rec.Start {
		return nil, nil
	}
	if strict {
		return nil, &CoordinateError{Line: line, Start: rec.Start, End: rec.End}
	}
	return &CoordinateWarning{Line: line, Start: rec.Start, End: rec.End}, nil
}

// Options configures the post-coercion pass.
type Options struct {
	// NormalizeCoordinates shifts start from 1-based inclusive to 0-based
	// (BED/GFF3-style half-open). Explicit opt-in, never a default.
	NormalizeCoordinates bool

	// InferBiotype mirrors an old-style Ensembl source column into
	// gene_biotype / transcript_biotype columns when the source values
	// contain "protein_coding" and the columns are not already present.
	InferBiotype bool

	// UseCols, when non-empty, restricts the final table to these columns
	// in this order.
	UseCols []string
}

// Apply runs the post-coercion transforms in a fixed order: coordinate
// normalization, biotype inference, projection.
func Apply(t *table.Table, opt Options) (*table.Table, error) {
	if opt.NormalizeCoordinates {
		start := t.Column("start")
		if start == nil || start.Kind != table.Int {
			return nil, fmt.Errorf("validate: normalize coordinates: no integer start column")
		}
		for i := range start.Ints {
			if start.Valid[i] {
				start.Ints[i]--
			}
		}
	}

	if opt.InferBiotype {
		if err := inferBiotype(t); err != nil {
			return nil, err
		}
	}

	if len(opt.UseCols) > 0 {
		projected, err := t.Project(opt.UseCols)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		t = projected
	}
	return t, nil
}

// inferBiotype handles Ensembl GTFs (release <= 77) whose source column
// actually carries a biotype. Detection keys on the most common biotype
// value; whichever of gene_biotype / transcript_biotype is absent gets a
// copy of source.
func inferBiotype(t *table.Table) error {
	src := t.Column("source")
	if src == nil || src.Kind != table.String {
		return nil
	}
	found := false
	for i, v := range src.Str {
		if src.Valid[i] && v == "protein_coding" {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	for _, name := range []string{"gene_biotype", "transcript_biotype"} {
		if t.Has(name) {
			continue
		}
		vals := make([]string, len(src.Str))
		copy(vals, src.Str)
		valid := make([]bool, len(src.Valid))
		copy(valid, src.Valid)
		if err := t.AddColumn(name, table.NewStringColumn(vals, valid)); err != nil {
			return err
		}
	}
	return nil
}
