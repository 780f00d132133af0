package storage

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeIdent converts an arbitrary attribute key into a lowercase
// ASCII identifier safe for SQL schemas. GTF attribute keys are free-form
// text chosen by annotation producers, so nothing guarantees they are
// valid column names.
//
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. prefix with underscore when starting with a digit; fallback "col"
func NormalizeIdent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevUnderscore = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "col"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// NormalizeIdents maps every table column name to a unique normalized
// identifier, suffixing duplicates with _2, _3, ...
func NormalizeIdents(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		id := NormalizeIdent(name)
		if n, ok := seen[id]; ok {
			seen[id] = n + 1
			id = id + "_" + strconv.Itoa(n+1)
		} else {
			seen[id] = 1
		}
		out[i] = id
	}
	return out
}
