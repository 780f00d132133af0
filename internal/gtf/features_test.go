package gtf

import (
	"testing"

	"gtfparse/internal/table"
)

func exonOnlyTable(t *testing.T) *table.Table {
	t.Helper()
	cols := map[string]*table.Column{
		"seqname": table.NewStringColumn([]string{"chr1", "chr1", "chr2"}, nil),
		"source":  table.NewStringColumn([]string{"src", "src", "src"}, nil),
		"feature": table.NewStringColumn([]string{"exon", "exon", "exon"}, nil),
		"start":   table.NewIntColumn([]int64{100, 300, 50}, nil),
		"end":     table.NewIntColumn([]int64{200, 400, 80}, nil),
		"score":   table.NewFloatColumn([]float64{0, 0, 0}, []bool{false, false, false}),
		"strand":  table.NewStringColumn([]string{"+", "+", "-"}, nil),
		"frame":   table.NewIntColumn([]int64{0, 0, 0}, []bool{false, false, false}),
		"gene_id": table.NewStringColumn([]string{"g1", "g1", "g2"}, nil),
		"exon_id": table.NewStringColumn([]string{"e1", "e2", "e3"}, nil),
	}
	names := append(append([]string{}, FixedColumns...), "gene_id", "exon_id")
	tbl, err := table.MemBuilder{}.CreateTable(names, cols)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return tbl
}

/*
TestCreateMissingFeatures verifies gene reconstruction from exon rows:
one row per distinct gene_id, start/end spanning the group, seqname from
the first row, disagreeing columns left missing.
*/
func TestCreateMissingFeatures(t *testing.T) {
	tbl, err := CreateMissingFeatures(exonOnlyTable(t), map[string]string{"gene": "gene_id"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tbl.NumRows() != 5 {
		t.Fatalf("rows=%d; want 5", tbl.NumRows())
	}

	feature := tbl.Column("feature")
	start := tbl.Column("start")
	end := tbl.Column("end")
	geneID := tbl.Column("gene_id")
	exonID := tbl.Column("exon_id")

	// row 3: gene g1 spanning exons at 100..200 and 300..400
	if feature.Str[3] != "gene" || geneID.Str[3] != "g1" {
		t.Fatalf("row 3: feature=%q gene_id=%q", feature.Str[3], geneID.Str[3])
	}
	if start.Ints[3] != 100 || end.Ints[3] != 400 {
		t.Fatalf("row 3 span: %d..%d", start.Ints[3], end.Ints[3])
	}
	// exon_id disagrees across the g1 group, so it must be missing
	if !exonID.IsNull(3) {
		t.Fatalf("row 3 exon_id should be missing, got %q", exonID.Str[3])
	}

	// row 4: gene g2 built from a single exon; unanimous columns carry over
	if feature.Str[4] != "gene" || geneID.Str[4] != "g2" {
		t.Fatalf("row 4: feature=%q gene_id=%q", feature.Str[4], geneID.Str[4])
	}
	if start.Ints[4] != 50 || end.Ints[4] != 80 {
		t.Fatalf("row 4 span: %d..%d", start.Ints[4], end.Ints[4])
	}
	if exonID.IsNull(4) || exonID.Str[4] != "e3" {
		t.Fatalf("row 4 exon_id: %v", exonID.Value(4))
	}
	if tbl.Column("seqname").Str[4] != "chr2" {
		t.Fatalf("row 4 seqname: %q", tbl.Column("seqname").Str[4])
	}
}

/*
TestCreateMissingFeaturesExisting verifies that a feature already present
in the table is left alone.
*/
func TestCreateMissingFeaturesExisting(t *testing.T) {
	tbl := exonOnlyTable(t)
	tbl.Column("feature").Str[0] = "gene"
	out, err := CreateMissingFeatures(tbl, map[string]string{"gene": "gene_id"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("rows=%d; want 3 (no synthesis)", out.NumRows())
	}
}

/*
TestCreateMissingFeaturesBadKey verifies the error paths: unknown key
column and non-string key column.
*/
func TestCreateMissingFeaturesBadKey(t *testing.T) {
	if _, err := CreateMissingFeatures(exonOnlyTable(t), map[string]string{"gene": "nope"}); err == nil {
		t.Fatalf("want error for unknown key column")
	}
	if _, err := CreateMissingFeatures(exonOnlyTable(t), map[string]string{"gene": "start"}); err == nil {
		t.Fatalf("want error for non-string key column")
	}
}
