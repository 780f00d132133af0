package table

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint computes a 64-bit content hash over column order, names,
// kinds, validity and values. Two tables with identical columns in
// identical order hash equal, which is how repeat-parse determinism is
// checked without comparing cell by cell.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	var scratch [8]byte
	writeStr := func(s string) {
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(s)))
		h.Write(scratch[:])
		h.WriteString(s)
	}
	for _, name := range t.names {
		writeStr(name)
		c := t.cols[name]
		h.Write([]byte{byte(c.Kind)})
		for i := 0; i < c.Len(); i++ {
			if !c.Valid[i] {
				h.Write([]byte{0})
				continue
			}
			h.Write([]byte{1})
			switch c.Kind {
			case Int:
				binary.LittleEndian.PutUint64(scratch[:], uint64(c.Ints[i]))
				h.Write(scratch[:])
			case Float:
				binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(c.Floats[i]))
				h.Write(scratch[:])
			default:
				writeStr(c.Str[i])
			}
		}
	}
	return h.Sum64()
}

// FingerprintString renders the fingerprint as fixed-width hex for logs.
func (t *Table) FingerprintString() string {
	return strconv.FormatUint(t.Fingerprint(), 16)
}
