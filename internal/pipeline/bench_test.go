package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// syntheticGTF builds n annotation lines with a realistic attribute mix.
func syntheticGTF(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		start := i*1000 + 1
		fmt.Fprintf(&b, "chr1\tHAVANA\texon\t%d\t%d\t.\t+\t.\t", start, start+500)
		fmt.Fprintf(&b, `gene_id "ENSG%011d"; transcript_id "ENST%011d"; gene_name "GENE%d"; exon_number %d; tag "basic";`, i/10, i/3, i/10, i%10+1)
		b.WriteByte('\n')
	}
	return b.String()
}

func BenchmarkParse(b *testing.B) {
	input := syntheticGTF(5000)
	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Parse(context.Background(), strings.NewReader(input), Options{}, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseRawAttributes(b *testing.B) {
	input := syntheticGTF(5000)
	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Parse(context.Background(), strings.NewReader(input), Options{RawAttributes: true}, nil); err != nil {
			b.Fatal(err)
		}
	}
}
