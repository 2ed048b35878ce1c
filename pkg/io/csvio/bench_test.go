package csvio

import (
	"io"
	"strconv"
	"testing"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func makeFrame(rows int) *frame.Frame {
	b := frame.NewBuilder([]string{"id", "peso", "especie"})
	for i := 0; i < rows; i++ {
		b.Append(frame.String("a"+strconv.Itoa(i)), frame.Float(float64(i%50)/2), frame.String("Bos taurus"))
	}
	f, _ := b.Frame()
	return f
}

func BenchmarkEncode(b *testing.B) {
	f := makeFrame(10000)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if err := Encode(io.Discard, f, WriterOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
