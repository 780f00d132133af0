package coerce

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeConverter returns the converter for a configured type name. Accepted
// names: "int"/"integer", "float"/"real", "text"/"string".
func TypeConverter(name string) (Converter, error) {
	switch strings.ToLower(name) {
	case "int", "integer":
		return func(raw string) (any, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, err
			}
			return n, nil
		}, nil
	case "float", "real":
		return func(raw string) (any, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, err
			}
			return f, nil
		}, nil
	case "text", "string":
		return func(raw string) (any, error) { return raw, nil }, nil
	}
	return nil, fmt.Errorf("unknown column type %q", name)
}

// CompileTypes turns a column -> type-name map from configuration into a
// converter map suitable for Options.Converters.
func CompileTypes(types map[string]string) (map[string]Converter, error) {
	if len(types) == 0 {
		return nil, nil
	}
	out := make(map[string]Converter, len(types))
	for col, typ := range types {
		fn, err := TypeConverter(typ)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		out[col] = fn
	}
	return out, nil
}
