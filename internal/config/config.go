// Package config defines the canonical, JSON-serializable configuration
// model for the annotation pipeline. It is intentionally small, explicit,
// and dependency-free so that pipelines can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":    "gencode_v44",
//	  "source": { "kind": "file", "file": { "path": "gencode.v44.gtf.gz" } },
//	  "parser": { "options": { "strict": false, "feature_filter": ["gene"] } },
//	  "coerce": { "types": { "exon_number": "int" } },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "ann.db", "table": "features" } }
//	}
package config

import "encoding/json"

// Pipeline describes one parse-and-load run. It is the top-level object
// decoded from a pipeline file.
type Pipeline struct {
	// Job is the logical run name, used for metrics labeling.
	Job string `json:"job"`

	// Source describes where annotation bytes come from.
	Source Source `json:"source"`

	// Parser carries the free-form parse options (strict, row_limit,
	// feature_filter, raw_attributes, normalize_coordinates, usecols,
	// infer_biotype).
	Parser Parser `json:"parser"`

	// Coerce optionally pins column types by name ("int", "float",
	// "text"), overriding numeric inference for those columns.
	Coerce Coerce `json:"coerce"`

	// Storage describes the optional destination; empty Kind means the
	// table is built in memory only.
	Storage Storage `json:"storage"`

	// Metrics selects an optional metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind. Paths ending
// in .gz/.gzip are decompressed transparently.
type SourceFile struct {
	Path string `json:"path"`
}

// Parser wraps the free-form parse options bag.
type Parser struct {
	Options Options `json:"options"`
}

// Coerce pins explicit column types.
type Coerce struct {
	// Types maps column name -> "int" | "float" | "text".
	Types map[string]string `json:"types"`
}

// Storage selects the sink used to persist the parsed table.
type Storage struct {
	// Kind selects the storage implementation: "sqlite" or "postgres".
	// Empty means no sink.
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the connection string (database/sql for sqlite, pgxpool for
	// postgres).
	DSN string `json:"dsn"`

	// Table is the destination table name, optionally schema-qualified
	// for Postgres.
	Table string `json:"table"`

	// AutoCreateTable generates the destination table from the parsed
	// column kinds before loading.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Metrics selects a metrics backend. Empty Kind leaves the no-op backend
// installed.
type Metrics struct {
	// Kind: "prometheus" or "datadog".
	Kind string `json:"kind"`

	// GatewayURL is the Pushgateway base URL (prometheus kind).
	GatewayURL string `json:"gateway_url"`

	// StatsdAddr is the DogStatsD address (datadog kind).
	StatsdAddr string `json:"statsd_addr"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to
// int. If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an
// object whose values are strings. Non-string values are ignored. Returns
// an empty map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings (or an array of interface values containing strings). Returns
// nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object in JSON decodes to a non-nil, empty Options map. This
// removes the need to nil-check Options values at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
