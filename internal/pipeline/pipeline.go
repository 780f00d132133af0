// Package pipeline wires the parse stages together: line source -> record
// parser -> schema unifier -> type coercion -> table build -> post
// transforms -> optional database load. It owns the lenient/strict error
// policy and the per-run bookkeeping.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"gtfparse/internal/coerce"
	"gtfparse/internal/gtf"
	"gtfparse/internal/schema"
	"gtfparse/internal/table"
	"gtfparse/internal/validate"
)

// logCap bounds per-run log lines for skipped records and coordinate
// warnings so a pathological file cannot flood the log.
const logCap = 400

// keptErrors bounds the error examples retained in the Summary.
const keptErrors = 20

// Options collects every knob of a parse run. The zero value is a lenient
// parse of the whole input with expanded attributes and inferred types.
type Options struct {
	// Strict aborts on the first malformed line instead of skipping it.
	Strict bool

	// RowLimit caps accepted records; 0 means unlimited.
	RowLimit int

	// FeatureFilter keeps only records whose feature field is listed.
	FeatureFilter []string

	// RawAttributes keeps the attribute field as one unexpanded column.
	RawAttributes bool

	// NormalizeCoordinates shifts start values to 0-based half-open.
	NormalizeCoordinates bool

	// InferBiotype reconstructs gene_biotype/transcript_biotype from
	// old-style Ensembl source values.
	InferBiotype bool

	// UseCols restricts the final table to these columns, in this order.
	UseCols []string

	// Converters pins per-column conversions, overriding inference.
	Converters map[string]coerce.Converter

	// CoerceWorkers bounds concurrent column coercion; 0 uses GOMAXPROCS.
	CoerceWorkers int

	// CreateFeatures maps feature names to reconstruct onto the grouping
	// attribute key, e.g. {"gene": "gene_id"}.
	CreateFeatures map[string]string
}

// Summary reports what a parse run did. Errors holds at most keptErrors
// examples of skipped lines; Skipped is the full count.
type Summary struct {
	Rows     int
	Columns  int
	Skipped  int64
	Filtered int64
	Warnings []validate.CoordinateWarning
	Errors   []error
}

// Parse consumes GTF lines from r and builds the final table. In lenient
// mode malformed lines are counted, logged (up to logCap) and skipped; in
// strict mode the first malformed line aborts. I/O errors and converter
// failures always abort.
func Parse(ctx context.Context, r io.Reader, opt Options, b table.Builder) (*table.Table, *Summary, error) {
	if b == nil {
		b = table.MemBuilder{}
	}
	sum := &Summary{}

	var filter map[string]struct{}
	if len(opt.FeatureFilter) > 0 {
		filter = make(map[string]struct{}, len(opt.FeatureFilter))
		for _, f := range opt.FeatureFilter {
			filter[f] = struct{}{}
		}
	}
	u := schema.NewUnifier(schema.Options{
		RowLimit:      opt.RowLimit,
		FeatureFilter: filter,
		RawAttributes: opt.RawAttributes,
	})
	rd := gtf.NewReader(r, gtf.ReaderOptions{
		Strict:        opt.Strict,
		RawAttributes: opt.RawAttributes,
	})

	var seen int
	for !u.Full() {
		if seen%4096 == 0 && ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		seen++

		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opt.Strict || !isMalformed(err) {
				return nil, nil, err
			}
			sum.Skipped++
			if sum.Skipped <= logCap {
				log.Printf("skip: %v", err)
			}
			if len(sum.Errors) < keptErrors {
				sum.Errors = append(sum.Errors, err)
			}
			continue
		}

		w, err := validate.CheckRecord(rec, rd.Line(), opt.Strict)
		if err != nil {
			return nil, nil, err
		}
		if w != nil && len(sum.Warnings) < logCap {
			sum.Warnings = append(sum.Warnings, *w)
			log.Printf("warn: %s", w)
		}

		if !u.Add(rec) {
			sum.Filtered++
		}
	}

	cols := u.Finalize()
	typed, err := coerce.Finalize(cols, coerce.Options{
		Converters: opt.Converters,
		Workers:    opt.CoerceWorkers,
	})
	if err != nil {
		return nil, nil, err
	}
	t, err := b.CreateTable(cols.Names, typed)
	if err != nil {
		return nil, nil, err
	}

	if len(opt.CreateFeatures) > 0 {
		if opt.RawAttributes {
			return nil, nil, fmt.Errorf("pipeline: create_features requires expanded attributes")
		}
		t, err = gtf.CreateMissingFeatures(t, opt.CreateFeatures)
		if err != nil {
			return nil, nil, err
		}
	}

	t, err = validate.Apply(t, validate.Options{
		NormalizeCoordinates: opt.NormalizeCoordinates,
		InferBiotype:         opt.InferBiotype,
		UseCols:              opt.UseCols,
	})
	if err != nil {
		return nil, nil, err
	}

	sum.Rows = t.NumRows()
	sum.Columns = len(t.Names())
	return t, sum, nil
}

// isMalformed reports whether err is a per-line parse problem that lenient
// mode may skip, as opposed to an I/O failure that must abort.
func isMalformed(err error) bool {
	var lineErr *gtf.MalformedLineError
	var attrErr *gtf.MalformedAttributeError
	return errors.As(err, &lineErr) || errors.As(err, &attrErr)
}
