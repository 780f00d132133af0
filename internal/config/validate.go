package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline. Path is
// a dotted path into the config (e.g. "storage.db.dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation of a decoded Pipeline. It
// does not mutate the pipeline; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be labeled with the normalized source path",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateCoerce(p.Coerce)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	kind := s.Kind
	if strings.TrimSpace(kind) == "" {
		kind = "file" // the only kind today; default rather than nag
	}
	if kind != "file" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}
	if kind == "file" && strings.TrimSpace(s.File.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.file.path",
			Message:  "file source requires a non-empty path",
		})
	}
	return issues
}

var knownParserOptions = map[string]struct{}{
	"strict":                {},
	"row_limit":             {},
	"feature_filter":        {},
	"raw_attributes":        {},
	"normalize_coordinates": {},
	"usecols":               {},
	"infer_biotype":         {},
	"create_features":       {},
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	for key := range p.Options {
		if _, ok := knownParserOptions[key]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options." + key,
				Message:  "unknown parser option; it will be ignored",
			})
		}
	}
	if n := p.Options.Int("row_limit", 0); n < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.row_limit",
			Message:  "row_limit must not be negative",
		})
	}
	if p.Options.Bool("raw_attributes", false) {
		if len(p.Options.StringSlice("usecols")) > 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options.usecols",
				Message:  "usecols with raw_attributes can only select fixed columns or \"attribute\"",
			})
		}
	}
	return issues
}

func validateCoerce(c Coerce) []Issue {
	var issues []Issue
	for col, typ := range c.Types {
		switch strings.ToLower(typ) {
		case "int", "integer", "float", "real", "text", "string":
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "coerce.types." + col,
				Message:  fmt.Sprintf("unknown type %q (want int, float or text)", typ),
			})
		}
		switch col {
		case "start", "end", "score", "frame":
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "coerce.types." + col,
				Message:  "fixed numeric columns are typed by the parser and cannot be redefined",
			})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Kind) == "" {
		return issues // no sink configured
	}
	switch s.Kind {
	case "sqlite", "postgres":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Kind {
	case "", "prometheus", "datadog":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.kind",
			Message:  fmt.Sprintf("unknown metrics kind %q; the no-op backend will be used", m.Kind),
		})
	}
	if m.Kind == "prometheus" && strings.TrimSpace(m.GatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.gateway_url",
			Message:  "prometheus metrics require a gateway_url",
		})
	}
	if m.Kind == "datadog" && strings.TrimSpace(m.StatsdAddr) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.statsd_addr",
			Message:  "datadog metrics require a statsd_addr",
		})
	}
	return issues
}
