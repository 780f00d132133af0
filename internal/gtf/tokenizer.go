package gtf

import "strings"

// Attr is one attribute key/value pair with quotes stripped and escapes
// resolved. Order follows first appearance of the key in the field.
type Attr struct {
	Key   string
	Value string
}

// cleanAttributeField repairs two artifacts seen in real Ensembl releases
// (release 78 carries values like gene_name "PRAMEF6;"): a semicolon glued
// to the closing quote, and a semicolon glued to a dash inside a value.
func cleanAttributeField(s string) string {
	if strings.Contains(s, `;"`) {
		s = strings.ReplaceAll(s, `;"`, `"`)
	}
	if strings.Contains(s, ";-") {
		s = strings.ReplaceAll(s, ";-", "-")
	}
	return s
}

// ParseAttributes tokenizes one attribute field into ordered key/value
// pairs. Both the GTF/GFF2 dialect (key "value"; key value;) and the GFF3
// dialect (key=value;key2=value2) are accepted; the dialect is detected per
// field by whether '=' appears before any space or quote. Duplicate keys
// keep their first position but the last value wins. An empty field (or
// the GFF3 placeholder ".") yields no pairs.
func ParseAttributes(field string, line int) ([]Attr, error) {
	field = strings.TrimSpace(field)
	if field == "" || field == "." {
		return nil, nil
	}
	field = cleanAttributeField(field)
	if isGFF3Dialect(field) {
		return tokenizeGFF3(field, line)
	}
	return tokenizeGTF(field, line)
}

// isGFF3Dialect reports whether the field uses key=value attributes: an
// '=' occurring before any space or double quote.
func isGFF3Dialect(s string) bool {
	i := strings.IndexAny(s, `=" `)
	return i >= 0 && s[i] == '='
}

// tokenizeGTF scans the quoted, space-separated dialect. Semicolons inside
// quoted values do not terminate a pair; escaped quotes (\") are resolved.
func tokenizeGTF(s string, line int) ([]Attr, error) {
	var attrs []Attr
	index := make(map[string]int)
	i, n := 0, len(s)
	for {
		for i < n && (s[i] == ' ' || s[i] == '\t' || s[i] == ';') {
			i++
		}
		if i >= n {
			break
		}
		ks := i
		for i < n && s[i] != ' ' && s[i] != '\t' && s[i] != ';' {
			i++
		}
		key := s[ks:i]
		for i < n && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= n || s[i] == ';' {
			return nil, &MalformedAttributeError{Line: line, Fragment: key, Msg: "key without value"}
		}
		var val string
		if s[i] == '"' {
			i++
			var b strings.Builder
			closed := false
			for i < n {
				c := s[i]
				if c == '\\' && i+1 < n && s[i+1] == '"' {
					b.WriteByte('"')
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(c)
				i++
			}
			if !closed {
				return nil, &MalformedAttributeError{Line: line, Fragment: truncateFragment(s[ks:]), Msg: "unterminated quote"}
			}
			val = b.String()
		} else {
			vs := i
			for i < n && s[i] != ';' {
				i++
			}
			val = strings.TrimRight(s[vs:i], " \t")
		}
		putAttr(&attrs, index, key, val)
	}
	return attrs, nil
}

// tokenizeGFF3 scans the key=value dialect. Values may be quoted; a token
// without '=' is malformed.
func tokenizeGFF3(s string, line int) ([]Attr, error) {
	var attrs []Attr
	index := make(map[string]int)
	for _, tok := range strings.Split(s, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			return nil, &MalformedAttributeError{Line: line, Fragment: truncateFragment(tok), Msg: "token without '='"}
		}
		key := strings.TrimSpace(tok[:eq])
		val := strings.TrimSpace(tok[eq+1:])
		if key == "" {
			return nil, &MalformedAttributeError{Line: line, Fragment: truncateFragment(tok), Msg: "empty key"}
		}
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		putAttr(&attrs, index, key, val)
	}
	return attrs, nil
}

// putAttr appends or overwrites: last occurrence of a key wins, position
// of the first occurrence is kept.
func putAttr(attrs *[]Attr, index map[string]int, key, val string) {
	if at, ok := index[key]; ok {
		(*attrs)[at].Value = val
		return
	}
	index[key] = len(*attrs)
	*attrs = append(*attrs, Attr{Key: key, Value: val})
}

// truncateFragment bounds error fragments so a multi-KB attribute field
// does not end up verbatim in logs.
func truncateFragment(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
