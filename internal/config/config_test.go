// Package config tests exercise the JSON-friendly configuration helpers:
// the typed accessors on Options and its custom unmarshaling semantics.
package config

import (
	"encoding/json"
	"reflect"
	"testing"
)

/*
TestOptionsString verifies that Options.String returns:
 1. the string value when present and of the correct type,
 2. the provided default when the key is missing or not a string.
*/
func TestOptionsString(t *testing.T) {
	o := Options{
		"s": "ok",
		"n": 123,
	}

	tests := []struct {
		key string
		def string
		got string
	}{
		{"s", "zzz", "ok"},
		{"n", "def", "def"},
		{"missing", "fallback", "fallback"},
	}
	for _, tc := range tests {
		if got := o.String(tc.key, tc.def); got != tc.got {
			t.Fatalf("String(%q,%q)=%q; want %q", tc.key, tc.def, got, tc.got)
		}
	}
}

/*
TestOptionsBool verifies that Options.Bool returns the bool value when
present and the provided default otherwise.
*/
func TestOptionsBool(t *testing.T) {
	o := Options{
		"t": true,
		"f": false,
		"s": "not-bool",
	}

	tests := []struct {
		key string
		def bool
		got bool
	}{
		{"t", false, true},
		{"f", true, false},
		{"s", true, true},
		{"missing", false, false},
	}
	for _, tc := range tests {
		if got := o.Bool(tc.key, tc.def); got != tc.got {
			t.Fatalf("Bool(%q,%v)=%v; want %v", tc.key, tc.def, got, tc.got)
		}
	}
}

/*
TestOptionsInt verifies the JSON number handling: float64 values (the
encoding/json default) and native ints both work, anything else falls back
to the default.
*/
func TestOptionsInt(t *testing.T) {
	o := Options{
		"float": float64(40000),
		"int":   7,
		"s":     "9",
	}

	tests := []struct {
		key string
		def int
		got int
	}{
		{"float", 0, 40000},
		{"int", 0, 7},
		{"s", 3, 3},
		{"missing", -1, -1},
	}
	for _, tc := range tests {
		if got := o.Int(tc.key, tc.def); got != tc.got {
			t.Fatalf("Int(%q,%d)=%d; want %d", tc.key, tc.def, got, tc.got)
		}
	}
}

/*
TestOptionsStringSliceAndMap verifies the composite accessors against the
shapes encoding/json produces ([]any and map[string]any) plus native Go
values set programmatically.
*/
func TestOptionsStringSliceAndMap(t *testing.T) {
	o := Options{
		"decoded":  []any{"gene", "transcript", 5},
		"native":   []string{"a", "b"},
		"notslice": "x",
		"m":        map[string]any{"gene": "gene_id", "n": 3},
	}

	if got := o.StringSlice("decoded"); !reflect.DeepEqual(got, []string{"gene", "transcript"}) {
		t.Fatalf("decoded slice=%v", got)
	}
	if got := o.StringSlice("native"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("native slice=%v", got)
	}
	if got := o.StringSlice("notslice"); got != nil {
		t.Fatalf("notslice=%v; want nil", got)
	}
	if got := o.StringMap("m"); !reflect.DeepEqual(got, map[string]string{"gene": "gene_id"}) {
		t.Fatalf("map=%v", got)
	}
	if got := o.StringMap("missing"); len(got) != 0 {
		t.Fatalf("missing map=%v; want empty", got)
	}
}

/*
TestOptionsUnmarshal verifies that null or absent options decodes to a
non-nil empty map so call sites never nil-check.
*/
func TestOptionsUnmarshal(t *testing.T) {
	var p Parser
	if err := json.Unmarshal([]byte(`{"options": null}`), &p); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if p.Options == nil {
		t.Fatalf("null options decoded to nil map")
	}

	if err := json.Unmarshal([]byte(`{"options": {"strict": true, "row_limit": 10}}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Options.Bool("strict", false) || p.Options.Int("row_limit", 0) != 10 {
		t.Fatalf("decoded options: %v", p.Options)
	}
}

/*
TestPipelineDecode verifies decoding of a complete pipeline document.
*/
func TestPipelineDecode(t *testing.T) {
	doc := `{
	  "job": "gencode_v44",
	  "source": { "kind": "file", "file": { "path": "gencode.v44.gtf.gz" } },
	  "parser": { "options": { "feature_filter": ["gene"], "strict": false } },
	  "coerce": { "types": { "exon_number": "int" } },
	  "storage": { "kind": "sqlite", "db": { "dsn": "ann.db", "table": "features" } },
	  "metrics": { "kind": "prometheus", "gateway_url": "http://pg:9091" }
	}`
	var p Pipeline
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Job != "gencode_v44" || p.Source.File.Path != "gencode.v44.gtf.gz" {
		t.Fatalf("decoded: %+v", p)
	}
	if got := p.Parser.Options.StringSlice("feature_filter"); !reflect.DeepEqual(got, []string{"gene"}) {
		t.Fatalf("feature_filter=%v", got)
	}
	if p.Coerce.Types["exon_number"] != "int" {
		t.Fatalf("coerce types: %v", p.Coerce.Types)
	}
	if p.Storage.Kind != "sqlite" || p.Metrics.GatewayURL != "http://pg:9091" {
		t.Fatalf("storage/metrics: %+v %+v", p.Storage, p.Metrics)
	}
}
