// Package schema accumulates parsed GTF records into aligned columns. The
// attribute column set is not known up front: keys are discovered while
// streaming and registered in first-seen order. To keep discovery amortized
// (a new key must not trigger a backfill scan of all prior rows), attribute
// columns are stored sparsely as (row, value) pairs and densified once at
// finalization.
package schema

import (
	"gtfparse/internal/gtf"
)

// Options controls streaming accumulation.
type Options struct {
	// RowLimit caps accepted records; 0 means unlimited. Comments, blanks
	// and skipped lines do not count against it.
	RowLimit int

	// FeatureFilter, when non-empty, drops records whose feature is not in
	// the set before any attribute key discovery happens. A key that only
	// occurs on filtered-out rows therefore never becomes a column.
	FeatureFilter map[string]struct{}

	// RawAttributes keeps the 9th field as a single "attribute" column
	// instead of expanding keys.
	RawAttributes bool
}

// RawColumn is a densified attribute column before type coercion: string
// values plus a validity mask, false where the record lacked the key.
type RawColumn struct {
	Values []string
	Valid  []bool
}

// Columns is the finalized output of a Unifier: every slice has NumRows
// entries and Names holds the output order (fixed columns first, then
// attribute keys in first-seen order).
type Columns struct {
	NumRows int
	Names   []string

	Seqname []string
	Source  []string
	Feature []string
	Strand  []string
	Start   []int64
	End     []int64

	Score      []float64
	ScoreValid []bool
	Frame      []int64
	FrameValid []bool

	// Attr maps discovered attribute keys to dense columns. In raw mode it
	// instead holds the single unexpanded "attribute" column.
	Attr map[string]*RawColumn
}

type sparseColumn struct {
	rows []int
	vals []string
}

// Unifier streams records into positionally aligned columns.
type Unifier struct {
	opt Options
	n   int

	seqname, source, feature, strand []string
	start, end                       []int64
	score                            []float64
	scoreValid                       []bool
	frame                            []int64
	frameValid                       []bool
	rawAttr                          []string

	order []string
	attrs map[string]*sparseColumn
}

// NewUnifier returns an empty Unifier.
func NewUnifier(opt Options) *Unifier {
	return &Unifier{opt: opt, attrs: make(map[string]*sparseColumn)}
}

// Full reports whether the row limit has been reached; the caller should
// stop consuming the line source.
func (u *Unifier) Full() bool {
	return u.opt.RowLimit > 0 && u.n >= u.opt.RowLimit
}

// Rows returns the number of records accepted so far.
func (u *Unifier) Rows() int { return u.n }

// Add accumulates one record and reports whether it was accepted. Records
// rejected by the feature filter or the row limit are not materialized at
// all.
func (u *Unifier) Add(rec *gtf.Record) bool {
	if u.Full() {
		return false
	}
	if len(u.opt.FeatureFilter) > 0 {
		if _, ok := u.opt.FeatureFilter[rec.Feature]; !ok {
			return false
		}
	}

	i := u.n
	u.n++
	u.seqname = append(u.seqname, rec.Seqname)
	u.source = append(u.source, rec.Source)
	u.feature = append(u.feature, rec.Feature)
	u.strand = append(u.strand, rec.Strand)
	u.start = append(u.start, rec.Start)
	u.end = append(u.end, rec.End)
	u.score = append(u.score, rec.Score)
	u.scoreValid = append(u.scoreValid, rec.HasScore)
	u.frame = append(u.frame, rec.Frame)
	u.frameValid = append(u.frameValid, rec.HasFrame)

	if u.opt.RawAttributes {
		u.rawAttr = append(u.rawAttr, rec.RawAttributes)
		return true
	}
	for _, a := range rec.Attrs {
		col, ok := u.attrs[a.Key]
		if !ok {
			col = &sparseColumn{}
			u.attrs[a.Key] = col
			u.order = append(u.order, a.Key)
		}
		col.rows = append(col.rows, i)
		col.vals = append(col.vals, a.Value)
	}
	return true
}

// Finalize densifies the accumulated columns. The Unifier must not be
// reused afterward.
func (u *Unifier) Finalize() *Columns {
	c := &Columns{
		NumRows:    u.n,
		Seqname:    u.seqname,
		Source:     u.source,
		Feature:    u.feature,
		Strand:     u.strand,
		Start:      u.start,
		End:        u.end,
		Score:      u.score,
		ScoreValid: u.scoreValid,
		Frame:      u.frame,
		FrameValid: u.frameValid,
		Attr:       make(map[string]*RawColumn, len(u.attrs)+1),
	}
	c.Names = append(c.Names, gtf.FixedColumns...)

	if u.opt.RawAttributes {
		c.Names = append(c.Names, gtf.AttributeColumn)
		valid := make([]bool, u.n)
		for i := range valid {
			valid[i] = true
		}
		c.Attr[gtf.AttributeColumn] = &RawColumn{Values: u.rawAttr, Valid: valid}
		return c
	}

	for _, key := range u.order {
		sc := u.attrs[key]
		dense := &RawColumn{
			Values: make([]string, u.n),
			Valid:  make([]bool, u.n),
		}
		for j, row := range sc.rows {
			dense.Values[row] = sc.vals[j]
			dense.Valid[row] = true
		}
		c.Attr[key] = dense
		c.Names = append(c.Names, key)
	}
	return c
}
