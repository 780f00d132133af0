package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gtfparse/internal/coerce"
	"gtfparse/internal/gtf"
	"gtfparse/internal/table"
)

const smallGTF = `# comment line
chr1	src	gene	100	200	.	+	.	gene_id "g1"; gene_name "A";
chr1	src	exon	100	150	.	+	.	gene_id "g1"; exon_number 1;
chr1	src	gene	500	900	.	-	.	gene_id "g2"; gene_name "B";
`

/*
TestParseEndToEnd verifies the whole stack on a small input: fixed columns
first, attribute columns in first-seen order, numeric inference for
exon_number, validity masks where keys are absent.
*/
func TestParseEndToEnd(t *testing.T) {
	tbl, sum, err := Parse(context.Background(), strings.NewReader(smallGTF), Options{}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sum.Rows != 3 || sum.Skipped != 0 {
		t.Fatalf("summary: %+v", sum)
	}
	wantNames := append(append([]string{}, gtf.FixedColumns...), "gene_id", "gene_name", "exon_number")
	if !reflect.DeepEqual(tbl.Names(), wantNames) {
		t.Fatalf("names=%v; want %v", tbl.Names(), wantNames)
	}
	if k := tbl.Column("exon_number").Kind; k != table.Int {
		t.Fatalf("exon_number kind=%v", k)
	}
	en := tbl.Column("exon_number")
	if !en.IsNull(0) || en.IsNull(1) || en.Ints[1] != 1 || !en.IsNull(2) {
		t.Fatalf("exon_number: %v valid=%v", en.Ints, en.Valid)
	}
	if gn := tbl.Column("gene_name"); !gn.IsNull(1) || gn.Str[2] != "B" {
		t.Fatalf("gene_name: %v valid=%v", gn.Str, gn.Valid)
	}
	if s := tbl.Column("start"); s.Ints[2] != 500 {
		t.Fatalf("start: %v", s.Ints)
	}
}

/*
TestParseFeatureFilter verifies that filtering drops rows before column
discovery: with only gene rows kept, exon_number never becomes a column.
*/
func TestParseFeatureFilter(t *testing.T) {
	tbl, sum, err := Parse(context.Background(), strings.NewReader(smallGTF),
		Options{FeatureFilter: []string{"gene"}}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("rows=%d; want 2", tbl.NumRows())
	}
	if tbl.Has("exon_number") {
		t.Fatalf("exon_number column discovered from a filtered row")
	}
	if sum.Filtered != 1 {
		t.Fatalf("filtered=%d; want 1", sum.Filtered)
	}
	if f := tbl.Column("feature"); f.Str[0] != "gene" || f.Str[1] != "gene" {
		t.Fatalf("feature: %v", f.Str)
	}
}

/*
TestParseRowLimit verifies that the limit stops the streaming loop early.
*/
func TestParseRowLimit(t *testing.T) {
	tbl, _, err := Parse(context.Background(), strings.NewReader(smallGTF),
		Options{RowLimit: 1}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("rows=%d; want 1", tbl.NumRows())
	}
}

/*
TestParseLenientVsStrict verifies the error policy: lenient counts and
skips malformed lines, strict aborts with the line number.
*/
func TestParseLenientVsStrict(t *testing.T) {
	input := "chr1\tbroken\n" + smallGTF

	tbl, sum, err := Parse(context.Background(), strings.NewReader(input), Options{}, nil)
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if tbl.NumRows() != 3 || sum.Skipped != 1 {
		t.Fatalf("lenient: rows=%d skipped=%d", tbl.NumRows(), sum.Skipped)
	}
	if len(sum.Errors) != 1 {
		t.Fatalf("kept errors: %v", sum.Errors)
	}
	var lineErr *gtf.MalformedLineError
	if !errors.As(sum.Errors[0], &lineErr) || lineErr.Line != 1 {
		t.Fatalf("kept error: %v", sum.Errors[0])
	}

	_, _, err = Parse(context.Background(), strings.NewReader(input), Options{Strict: true}, nil)
	if !errors.As(err, &lineErr) {
		t.Fatalf("strict: error %v; want *MalformedLineError", err)
	}
}

/*
TestParseCoordinateWarning verifies end < start handling: a line-numbered
warning in lenient mode, an abort in strict mode.
*/
func TestParseCoordinateWarning(t *testing.T) {
	input := "chr1\tsrc\tgene\t300\t200\t.\t+\t.\t" + `gene_id "g";` + "\n"

	tbl, sum, err := Parse(context.Background(), strings.NewReader(input), Options{}, nil)
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("rows=%d; the offending row is kept in lenient mode", tbl.NumRows())
	}
	if len(sum.Warnings) != 1 || sum.Warnings[0].Line != 1 {
		t.Fatalf("warnings: %+v", sum.Warnings)
	}

	if _, _, err = Parse(context.Background(), strings.NewReader(input), Options{Strict: true}, nil); err == nil {
		t.Fatalf("strict: want coordinate error")
	}
}

/*
TestParseConverters verifies that configured converters reach the coercion
stage and that converter failures abort even in lenient mode.
*/
func TestParseConverters(t *testing.T) {
	toInt, err := coerce.TypeConverter("int")
	if err != nil {
		t.Fatalf("type converter: %v", err)
	}

	tbl, _, err := Parse(context.Background(), strings.NewReader(smallGTF),
		Options{Converters: map[string]coerce.Converter{"exon_number": toInt}}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k := tbl.Column("exon_number").Kind; k != table.Int {
		t.Fatalf("exon_number kind=%v", k)
	}

	_, _, err = Parse(context.Background(), strings.NewReader(smallGTF),
		Options{Converters: map[string]coerce.Converter{"gene_name": toInt}}, nil)
	var convErr *coerce.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error %v; want *ConversionError even in lenient mode", err)
	}
}

/*
TestParseRawAttributes verifies raw mode end to end: one attribute column,
no expansion, round-trippable content.
*/
func TestParseRawAttributes(t *testing.T) {
	tbl, _, err := Parse(context.Background(), strings.NewReader(smallGTF),
		Options{RawAttributes: true}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantNames := append(append([]string{}, gtf.FixedColumns...), gtf.AttributeColumn)
	if !reflect.DeepEqual(tbl.Names(), wantNames) {
		t.Fatalf("names=%v", tbl.Names())
	}
	if got := tbl.Column(gtf.AttributeColumn).Str[0]; got != `gene_id "g1"; gene_name "A";` {
		t.Fatalf("attribute[0]=%q", got)
	}
}

/*
TestParsePostTransforms verifies the post-coercion options flowing
through: normalization, usecols projection and feature reconstruction.
*/
func TestParsePostTransforms(t *testing.T) {
	exonOnly := `chr1	src	exon	100	150	.	+	.	gene_id "g1";
chr1	src	exon	300	400	.	+	.	gene_id "g1";
`
	tbl, _, err := Parse(context.Background(), strings.NewReader(exonOnly), Options{
		NormalizeCoordinates: true,
		CreateFeatures:       map[string]string{"gene": "gene_id"},
		UseCols:              []string{"feature", "start", "end", "gene_id"},
	}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(tbl.Names(), []string{"feature", "start", "end", "gene_id"}) {
		t.Fatalf("names=%v", tbl.Names())
	}
	if tbl.NumRows() != 3 {
		t.Fatalf("rows=%d; want 2 exons + 1 reconstructed gene", tbl.NumRows())
	}
	// the reconstructed gene spans the group, with the 0-based shift applied
	f := tbl.Column("feature")
	s := tbl.Column("start")
	e := tbl.Column("end")
	if f.Str[2] != "gene" || s.Ints[2] != 99 || e.Ints[2] != 400 {
		t.Fatalf("gene row: %q %d..%d", f.Str[2], s.Ints[2], e.Ints[2])
	}
}

/*
TestParseContextCancellation verifies that a canceled context aborts the
streaming loop.
*/
func TestParseContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Parse(ctx, strings.NewReader(smallGTF), Options{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error %v; want context.Canceled", err)
	}
}

/*
TestParseDeterministicFingerprint verifies repeat-parse determinism via
the table fingerprint.
*/
func TestParseDeterministicFingerprint(t *testing.T) {
	a, _, err := Parse(context.Background(), strings.NewReader(smallGTF), Options{}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, _, err := Parse(context.Background(), strings.NewReader(smallGTF), Options{}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprints differ across identical parses")
	}
}
