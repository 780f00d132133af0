package table

import (
	"reflect"
	"testing"
)

func sample(t *testing.T) *Table {
	t.Helper()
	cols := map[string]*Column{
		"name": NewStringColumn([]string{"a", "b", "c"}, nil),
		"n":    NewIntColumn([]int64{1, 2, 3}, []bool{true, false, true}),
		"x":    NewFloatColumn([]float64{0.1, 0.2, 0.3}, nil),
	}
	tbl, err := MemBuilder{}.CreateTable([]string{"name", "n", "x"}, cols)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return tbl
}

/*
TestCreateTableRectangular verifies the builder invariant: every named
column must exist and all columns must share one length.
*/
func TestCreateTableRectangular(t *testing.T) {
	short := map[string]*Column{
		"a": NewStringColumn([]string{"x", "y"}, nil),
		"b": NewIntColumn([]int64{1}, nil),
	}
	if _, err := (MemBuilder{}).CreateTable([]string{"a", "b"}, short); err == nil {
		t.Fatalf("want error for ragged columns")
	}

	missing := map[string]*Column{"a": NewStringColumn([]string{"x"}, nil)}
	if _, err := (MemBuilder{}).CreateTable([]string{"a", "b"}, missing); err == nil {
		t.Fatalf("want error for named-but-absent column")
	}

	empty, err := MemBuilder{}.CreateTable(nil, map[string]*Column{})
	if err != nil {
		t.Fatalf("empty table: %v", err)
	}
	if empty.NumRows() != 0 {
		t.Fatalf("empty table rows=%d", empty.NumRows())
	}
}

/*
TestColumnValue verifies the any-typed accessor used by database sinks:
concrete Go types for present values, nil for missing ones.
*/
func TestColumnValue(t *testing.T) {
	tbl := sample(t)
	if v := tbl.Column("name").Value(0); v != "a" {
		t.Fatalf("name[0]=%v", v)
	}
	if v := tbl.Column("n").Value(0); v != int64(1) {
		t.Fatalf("n[0]=%v (%T)", v, v)
	}
	if v := tbl.Column("n").Value(1); v != nil {
		t.Fatalf("n[1]=%v; want nil for missing", v)
	}
	if v := tbl.Column("x").Value(2); v != 0.3 {
		t.Fatalf("x[2]=%v", v)
	}
}

/*
TestProjectAndFilter verifies projection order and row filtering with the
validity mask carried through.
*/
func TestProjectAndFilter(t *testing.T) {
	tbl := sample(t)

	p, err := tbl.Project([]string{"x", "name"})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if !reflect.DeepEqual(p.Names(), []string{"x", "name"}) {
		t.Fatalf("projected names=%v", p.Names())
	}
	if _, err := tbl.Project([]string{"zzz"}); err == nil {
		t.Fatalf("want error for unknown column")
	}

	f, err := tbl.FilterRows([]bool{true, false, true})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.NumRows() != 2 {
		t.Fatalf("filtered rows=%d; want 2", f.NumRows())
	}
	if !reflect.DeepEqual(f.Column("name").Str, []string{"a", "c"}) {
		t.Fatalf("filtered names=%v", f.Column("name").Str)
	}
	if !f.Column("n").Valid[0] || f.Column("n").Ints[1] != 3 {
		t.Fatalf("filtered n: %v %v", f.Column("n").Ints, f.Column("n").Valid)
	}
	if _, err := tbl.FilterRows([]bool{true}); err == nil {
		t.Fatalf("want error for short mask")
	}
}

/*
TestAddColumnAndGrowRows verifies the mutation paths used by biotype
inference and feature reconstruction.
*/
func TestAddColumnAndGrowRows(t *testing.T) {
	tbl := sample(t)
	if err := tbl.AddColumn("name", NewStringColumn(make([]string, 3), nil)); err == nil {
		t.Fatalf("want error for duplicate column")
	}
	if err := tbl.AddColumn("y", NewIntColumn([]int64{1}, nil)); err == nil {
		t.Fatalf("want error for wrong-length column")
	}
	if err := tbl.AddColumn("y", NewIntColumn([]int64{9, 8, 7}, nil)); err != nil {
		t.Fatalf("add column: %v", err)
	}
	if !reflect.DeepEqual(tbl.Names(), []string{"name", "n", "x", "y"}) {
		t.Fatalf("names=%v", tbl.Names())
	}

	if err := tbl.GrowRows(1); err == nil {
		t.Fatalf("want error before appending")
	}
	for _, name := range tbl.Names() {
		tbl.Column(name).AppendNull()
	}
	if err := tbl.GrowRows(1); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if tbl.NumRows() != 4 {
		t.Fatalf("rows=%d; want 4", tbl.NumRows())
	}
}

/*
TestAppendTypeChecked verifies that Append rejects values of the wrong
concrete type instead of panicking.
*/
func TestAppendTypeChecked(t *testing.T) {
	c := NewIntColumn(nil, nil)
	if err := c.Append("nope"); err == nil {
		t.Fatalf("want error appending string to int column")
	}
	if err := c.Append(int64(5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	c.AppendNull()
	if c.Len() != 2 || !c.IsNull(1) || c.Ints[0] != 5 {
		t.Fatalf("column state: %+v", c)
	}
}
