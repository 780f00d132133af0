package gtf

import (
	"fmt"
	"sort"

	"gtfparse/internal/table"
)

// CreateMissingFeatures synthesizes rows for feature kinds that a GTF
// lacks. Some annotations carry only exon and CDS rows yet tag every row
// with gene_id/transcript_id, which is enough to reconstruct the gene and
// transcript rows: featureToKey maps the feature name to create to the
// column that uniquely identifies it, e.g. {"gene": "gene_id"}.
//
// For each distinct key value, one row is appended with start = min(start),
// end = max(end), seqname from the group's first row, feature set to the
// new name, and every other column filled only when its value is unanimous
// across the group (missing otherwise). The input table is returned
// extended; existing rows are untouched.
func CreateMissingFeatures(t *table.Table, featureToKey map[string]string) (*table.Table, error) {
	feature := t.Column("feature")
	start := t.Column("start")
	end := t.Column("end")
	if feature == nil || start == nil || end == nil {
		return nil, fmt.Errorf("create features: table lacks fixed columns")
	}

	// deterministic creation order regardless of map iteration
	newFeatures := make([]string, 0, len(featureToKey))
	for name := range featureToKey {
		newFeatures = append(newFeatures, name)
	}
	sort.Strings(newFeatures)

	existing := make(map[string]bool)
	for i, v := range feature.Str {
		if feature.Valid[i] {
			existing[v] = true
		}
	}

	for _, name := range newFeatures {
		keyCol := t.Column(featureToKey[name])
		if keyCol == nil {
			return nil, fmt.Errorf("create features: no key column %q for feature %q", featureToKey[name], name)
		}
		if keyCol.Kind != table.String {
			return nil, fmt.Errorf("create features: key column %q is not a string column", featureToKey[name])
		}
		if existing[name] {
			// nothing to reconstruct, the annotation already has these rows
			continue
		}
		if err := appendFeatureRows(t, name, keyCol); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// group is the accumulated state for one distinct key value.
type group struct {
	rows []int
}

func appendFeatureRows(t *table.Table, featureName string, keyCol *table.Column) error {
	nRows := t.NumRows()
	var order []string
	groups := make(map[string]*group)
	for i := 0; i < nRows; i++ {
		if keyCol.IsNull(i) {
			continue
		}
		k := keyCol.Str[i]
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.rows = append(g.rows, i)
	}

	for _, k := range order {
		g := groups[k]
		for _, name := range t.Names() {
			c := t.Column(name)
			var err error
			switch name {
			case "feature":
				err = c.Append(featureName)
			case "start":
				err = c.Append(minInt(c, g.rows))
			case "end":
				err = c.Append(maxInt(c, g.rows))
			case "seqname":
				appendFirst(c, g.rows)
			default:
				appendUnanimous(c, g.rows)
			}
			if err != nil {
				return fmt.Errorf("create features: column %q: %w", name, err)
			}
		}
	}
	// Table slices grew in place through shared *Column pointers, but the
	// row count is tracked by the table itself.
	return t.GrowRows(len(order))
}

func minInt(c *table.Column, rows []int) int64 {
	m := c.Ints[rows[0]]
	for _, i := range rows[1:] {
		if c.Ints[i] < m {
			m = c.Ints[i]
		}
	}
	return m
}

func maxInt(c *table.Column, rows []int) int64 {
	m := c.Ints[rows[0]]
	for _, i := range rows[1:] {
		if c.Ints[i] > m {
			m = c.Ints[i]
		}
	}
	return m
}

func appendFirst(c *table.Column, rows []int) {
	if v := c.Value(rows[0]); v != nil {
		c.Append(v)
	} else {
		c.AppendNull()
	}
}

// appendUnanimous appends the group's shared value, or a missing marker
// when the group disagrees or has no present value.
func appendUnanimous(c *table.Column, rows []int) {
	var val any
	for _, i := range rows {
		v := c.Value(i)
		if v == nil {
			continue
		}
		if val == nil {
			val = v
		} else if val != v {
			c.AppendNull()
			return
		}
	}
	if val == nil {
		c.AppendNull()
		return
	}
	c.Append(val)
}
