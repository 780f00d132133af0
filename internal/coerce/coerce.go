// Package coerce resolves the raw string columns produced by the schema
// unifier into concretely typed table columns. The fixed GTF schema is
// authoritative for the eight positional columns; dynamically discovered
// attribute columns get numeric inference (all-int, else all-float, else
// text) unless the caller supplied an explicit converter for them.
//
// Each column is coerced independently, so finalization fans out across an
// errgroup with one task per column.
package coerce

import (
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"gtfparse/internal/gtf"
	"gtfparse/internal/schema"
	"gtfparse/internal/table"
)

// Converter turns one raw attribute string into a typed value. It must
// return string, int64 or float64 and must be consistent across the
// column. Converters never see missing markers; those propagate untouched.
type Converter func(raw string) (any, error)

// ConversionError reports a converter failure. It always aborts the parse:
// a failing converter is a caller configuration bug, not malformed input.
type ConversionError struct {
	Column string
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("coerce: column %q: value %q: %v", e.Column, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Options configures finalization.
type Options struct {
	// Converters maps column names to explicit converters, which strictly
	// override numeric inference. Converters may target attribute columns
	// and the string-typed fixed columns; the numeric fixed columns
	// (start, end, score, frame) are already typed by the line parser and
	// cannot be redefined.
	Converters map[string]Converter

	// Workers bounds concurrent column tasks; 0 uses GOMAXPROCS.
	Workers int
}

var fixedNumeric = map[string]bool{"start": true, "end": true, "score": true, "frame": true}

// validate rejects converter specs that reference unknown columns or try
// to override the fixed numeric schema.
func validate(cols *schema.Columns, opt Options) error {
	known := make(map[string]bool, len(cols.Names))
	for _, n := range cols.Names {
		known[n] = true
	}
	for name := range opt.Converters {
		if fixedNumeric[name] {
			return fmt.Errorf("coerce: converter for fixed numeric column %q not allowed", name)
		}
		if !known[name] {
			return fmt.Errorf("coerce: converter references unknown column %q", name)
		}
	}
	return nil
}

// Finalize turns unified raw columns into typed table columns, one entry
// per name in cols.Names.
func Finalize(cols *schema.Columns, opt Options) (map[string]*table.Column, error) {
	if err := validate(cols, opt); err != nil {
		return nil, err
	}

	out := make([]*table.Column, len(cols.Names))
	byName := make(map[string]int, len(cols.Names))
	for i, n := range cols.Names {
		byName[n] = i
	}

	g := new(errgroup.Group)
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)

	task := func(name string, build func() (*table.Column, error)) {
		i := byName[name]
		g.Go(func() error {
			c, err := build()
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}

	stringFixed := map[string][]string{
		"seqname": cols.Seqname,
		"source":  cols.Source,
		"feature": cols.Feature,
		"strand":  cols.Strand,
	}
	for name, vals := range stringFixed {
		name, vals := name, vals
		task(name, func() (*table.Column, error) {
			if fn := opt.Converters[name]; fn != nil {
				return convertColumn(name, vals, nil, fn)
			}
			return table.NewStringColumn(vals, nil), nil
		})
	}
	task("start", func() (*table.Column, error) { return table.NewIntColumn(cols.Start, nil), nil })
	task("end", func() (*table.Column, error) { return table.NewIntColumn(cols.End, nil), nil })
	task("score", func() (*table.Column, error) { return table.NewFloatColumn(cols.Score, cols.ScoreValid), nil })
	task("frame", func() (*table.Column, error) { return table.NewIntColumn(cols.Frame, cols.FrameValid), nil })

	for _, name := range cols.Names[len(gtf.FixedColumns):] {
		name := name
		raw := cols.Attr[name]
		task(name, func() (*table.Column, error) {
			if fn := opt.Converters[name]; fn != nil {
				return convertColumn(name, raw.Values, raw.Valid, fn)
			}
			return inferColumn(raw.Values, raw.Valid), nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := make(map[string]*table.Column, len(out))
	for i, n := range cols.Names {
		m[n] = out[i]
	}
	return m, nil
}

// convertColumn applies an explicit converter to every present value. The
// column kind is fixed by the first converted value; later values of a
// different type are a ConversionError. Missing values propagate without
// ever reaching the converter.
func convertColumn(name string, vals []string, valid []bool, fn Converter) (*table.Column, error) {
	converted := make([]any, len(vals))
	kind := table.String
	kindSet := false
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		cv, err := fn(v)
		if err != nil {
			return nil, &ConversionError{Column: name, Value: v, Err: err}
		}
		k, ok := kindOf(cv)
		if !ok {
			return nil, &ConversionError{Column: name, Value: v,
				Err: fmt.Errorf("converter returned unsupported type %T", cv)}
		}
		if !kindSet {
			kind, kindSet = k, true
		} else if k != kind {
			return nil, &ConversionError{Column: name, Value: v,
				Err: fmt.Errorf("converter returned %T, column is %s", cv, kind)}
		}
		converted[i] = cv
	}

	col := &table.Column{Kind: kind}
	for i := range vals {
		if converted[i] == nil {
			col.AppendNull()
			continue
		}
		if err := col.Append(converted[i]); err != nil {
			return nil, &ConversionError{Column: name, Value: vals[i], Err: err}
		}
	}
	return col, nil
}

func kindOf(v any) (table.Kind, bool) {
	switch v.(type) {
	case string:
		return table.String, true
	case int64:
		return table.Int, true
	case float64:
		return table.Float, true
	default:
		return 0, false
	}
}

// inferColumn types an attribute column: integer when every present value
// parses as int64, else float when every present value parses as float64,
// else text. Missing values never participate.
func inferColumn(vals []string, valid []bool) *table.Column {
	canInt, canFloat := true, true
	seen := false
	for i, v := range vals {
		if !valid[i] {
			continue
		}
		seen = true
		if canInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				canInt = false
			}
		}
		if !canInt && canFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				canFloat = false
				break
			}
		}
	}
	switch {
	case seen && canInt:
		ints := make([]int64, len(vals))
		for i, v := range vals {
			if valid[i] {
				ints[i], _ = strconv.ParseInt(v, 10, 64)
			}
		}
		return table.NewIntColumn(ints, valid)
	case seen && canFloat:
		floats := make([]float64, len(vals))
		for i, v := range vals {
			if valid[i] {
				floats[i], _ = strconv.ParseFloat(v, 64)
			}
		}
		return table.NewFloatColumn(floats, valid)
	default:
		return table.NewStringColumn(vals, valid)
	}
}
