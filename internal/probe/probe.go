// Package probe samples the head of a GTF and reports what a full parse
// would produce: the feature kinds present, every attribute key with its
// occurrence count and inferred type, and a ready-to-edit pipeline config.
// Running it before a whole-genome parse answers "which columns will I
// get" without paying for the full file.
package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"gtfparse/internal/config"
	"gtfparse/internal/gtf"
	"gtfparse/internal/storage"
)

// Options control sampling.
type Options struct {
	// SampleRecords caps the number of records inspected; 0 means 1000.
	SampleRecords int

	// Strict aborts on the first malformed line instead of counting it.
	Strict bool
}

const defaultSample = 1000

// KeyInfo describes one discovered attribute key.
type KeyInfo struct {
	Key string `json:"key"`

	// Count is how many sampled records carried the key.
	Count int `json:"count"`

	// Type is the inferred column type: "int", "float" or "text".
	Type string `json:"type"`

	// Ident is the SQL-safe column name the storage layer would use.
	Ident string `json:"ident"`
}

// Report summarizes a sample.
type Report struct {
	Records  int            `json:"records"`
	Skipped  int            `json:"skipped"`
	Features map[string]int `json:"features"`

	// Keys lists attribute keys in first-seen order.
	Keys []KeyInfo `json:"keys"`
}

// keyState tracks inference while streaming, without storing values.
type keyState struct {
	count    int
	canInt   bool
	canFloat bool
}

// Sample reads up to Options.SampleRecords records from r and builds a
// Report. In lenient mode malformed lines are counted and skipped, the
// same policy the pipeline applies.
func Sample(r io.Reader, opt Options) (*Report, error) {
	limit := opt.SampleRecords
	if limit <= 0 {
		limit = defaultSample
	}

	rep := &Report{Features: make(map[string]int)}
	states := make(map[string]*keyState)
	var order []string

	rd := gtf.NewReader(r, gtf.ReaderOptions{Strict: opt.Strict})
	for rep.Records < limit {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opt.Strict {
				return nil, err
			}
			rep.Skipped++
			continue
		}
		rep.Records++
		rep.Features[rec.Feature]++
		for _, a := range rec.Attrs {
			st, ok := states[a.Key]
			if !ok {
				st = &keyState{canInt: true, canFloat: true}
				states[a.Key] = st
				order = append(order, a.Key)
			}
			st.count++
			if st.canInt {
				if _, err := strconv.ParseInt(a.Value, 10, 64); err != nil {
					st.canInt = false
				}
			}
			if !st.canInt && st.canFloat {
				if _, err := strconv.ParseFloat(a.Value, 64); err != nil {
					st.canFloat = false
				}
			}
		}
	}

	idents := make([]string, len(order))
	for i, key := range order {
		idents[i] = key
	}
	idents = storage.NormalizeIdents(idents)

	for i, key := range order {
		st := states[key]
		typ := "text"
		switch {
		case st.canInt:
			typ = "int"
		case st.canFloat:
			typ = "float"
		}
		rep.Keys = append(rep.Keys, KeyInfo{Key: key, Count: st.count, Type: typ, Ident: idents[i]})
	}
	return rep, nil
}

// SuggestConfig builds a pipeline config matching the sample: explicit
// types for every non-text key and an optional storage section.
func (r *Report) SuggestConfig(job, path, backend string) config.Pipeline {
	p := config.Pipeline{
		Job:    job,
		Source: config.Source{Kind: "file", File: config.SourceFile{Path: path}},
		Parser: config.Parser{Options: config.Options{}},
	}
	types := make(map[string]string)
	for _, k := range r.Keys {
		if k.Type != "text" {
			types[k.Key] = k.Type
		}
	}
	if len(types) > 0 {
		p.Coerce.Types = types
	}
	switch backend {
	case "sqlite":
		p.Storage = config.Storage{Kind: "sqlite", DB: config.DBConfig{DSN: job + ".db", Table: job}}
	case "postgres":
		p.Storage = config.Storage{
			Kind: "postgres",
			DB:   config.DBConfig{DSN: "postgres://localhost:5432/annotations", Table: job, AutoCreateTable: true},
		}
	}
	return p
}

// RenderText writes the human-readable summary.
func (r *Report) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "records sampled: %d (skipped %d)\n", r.Records, r.Skipped)
	fmt.Fprintf(w, "features:\n")
	names := make([]string, 0, len(r.Features))
	for name := range r.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%d\n", name, r.Features[name])
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCOUNT\tTYPE\tIDENT")
	for _, k := range r.Keys {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", k.Key, k.Count, k.Type, k.Ident)
	}
	return tw.Flush()
}

// RenderJSON writes the report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
