package parquetio

import (
	"path/filepath"
	"testing"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func makeFrame(rows int) *frame.Frame {
	b := frame.NewBuilder([]string{"a", "b"})
	for i := 0; i < rows; i++ {
		b.Append(frame.Float(float64(i%100)), frame.Int(int64(i%10)))
	}
	f, _ := b.Frame()
	return f
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WriteAll(path, f)
	}
}
