package gtf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gtfparse/internal/table"
)

// WriteTable serializes a parsed table back to GTF text. The eight fixed
// columns are written tab-separated with "." for missing values; every
// other column becomes a `key "value";` attribute pair, omitted on rows
// where the value is missing. headers are emitted first, one '#' line each.
func WriteTable(w io.Writer, t *table.Table, headers []string) error {
	bw := bufio.NewWriter(w)
	for _, h := range headers {
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		if _, err := fmt.Fprintln(bw, h); err != nil {
			return err
		}
	}

	fixed := make([]*table.Column, len(FixedColumns))
	for i, name := range FixedColumns {
		fixed[i] = t.Column(name)
		if fixed[i] == nil {
			return fmt.Errorf("write gtf: missing fixed column %q", name)
		}
	}
	var attrNames []string
	var attrCols []*table.Column
	for _, name := range t.Names() {
		if isFixedColumn(name) || name == AttributeColumn {
			continue
		}
		attrNames = append(attrNames, name)
		attrCols = append(attrCols, t.Column(name))
	}
	rawAttr := t.Column(AttributeColumn)

	for i := 0; i < t.NumRows(); i++ {
		for j, c := range fixed {
			if j > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(cellText(c, i))
		}
		bw.WriteByte('\t')
		if rawAttr != nil {
			// raw mode round-trip: the 9th field was never expanded
			bw.WriteString(cellText(rawAttr, i))
		} else {
			first := true
			for j, c := range attrCols {
				if c.IsNull(i) {
					continue
				}
				if !first {
					bw.WriteByte(' ')
				}
				first = false
				fmt.Fprintf(bw, "%s %q;", attrNames[j], cellText(c, i))
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func isFixedColumn(name string) bool {
	for _, f := range FixedColumns {
		if f == name {
			return true
		}
	}
	return false
}

// cellText renders one cell the way GTF spells it, with "." for missing.
func cellText(c *table.Column, i int) string {
	if c.IsNull(i) {
		return "."
	}
	switch c.Kind {
	case table.Int:
		return strconv.FormatInt(c.Ints[i], 10)
	case table.Float:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	default:
		return c.Str[i]
	}
}
