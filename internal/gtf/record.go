package gtf

import (
	"fmt"
	"strconv"
	"strings"
)

// FixedColumns lists the eight positional GTF columns in file order. The
// unifier emits them first, followed by discovered attribute keys.
var FixedColumns = []string{"seqname", "source", "feature", "start", "end", "score", "strand", "frame"}

// AttributeColumn names the unexpanded 9th field when attribute expansion
// is disabled.
const AttributeColumn = "attribute"

// Record is one parsed annotation line. Start/End follow the GTF
// convention: 1-based, inclusive. Score and Frame use "." in the file to
// mean absent, reflected here by HasScore/HasFrame. Records are immutable
// once produced.
type Record struct {
	Seqname  string
	Source   string
	Feature  string
	Start    int64
	End      int64
	Score    float64
	HasScore bool
	Strand   string
	Frame    int64
	HasFrame bool

	// Attrs holds the expanded attribute pairs; RawAttributes keeps the
	// cleaned 9th field for raw mode and round-trip writing.
	Attrs         []Attr
	RawAttributes string
}

// parseLine splits a non-comment, non-blank line into a Record. line is
// the 1-based physical line number used in errors.
func parseLine(text string, line int, strict, expandAttributes bool) (*Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 9 {
		return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("wrong number of fields %d (expected 9)", len(fields))}
	}

	rec := &Record{
		Seqname: fields[0],
		Source:  fields[1],
		Feature: fields[2],
		Strand:  fields[6],
	}

	var err error
	rec.Start, err = strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("non-numeric start %q", fields[3])}
	}
	rec.End, err = strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("non-numeric end %q", fields[4])}
	}

	if fields[5] != "." {
		rec.Score, err = strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("non-numeric score %q", fields[5])}
		}
		rec.HasScore = true
	}

	switch rec.Strand {
	case "+", "-", ".":
	default:
		if strict {
			return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("invalid strand %q", rec.Strand)}
		}
		// lenient mode: pass the value through untouched
	}

	if fields[7] != "." {
		rec.Frame, err = strconv.ParseInt(fields[7], 10, 64)
		if err != nil {
			return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("non-numeric frame %q", fields[7])}
		}
		if strict && (rec.Frame < 0 || rec.Frame > 2) {
			return nil, &MalformedLineError{Line: line, Msg: fmt.Sprintf("frame %d out of range", rec.Frame)}
		}
		rec.HasFrame = true
	}

	rec.RawAttributes = cleanAttributeField(fields[8])
	if expandAttributes {
		rec.Attrs, err = ParseAttributes(fields[8], line)
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}
