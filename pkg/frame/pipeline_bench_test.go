package frame

import (
	"context"
	"testing"
)

func makeFrame(rows int) *Frame {
	b := NewBuilder([]string{"a", "b", "s"})
	for i := 0; i < rows; i++ {
		b.Append(Float(float64(i%100)), Int(int64(i%10)), String("x"))
	}
	f, _ := b.Frame()
	return f
}

type noopTransform struct{}

func (n *noopTransform) Name() string { return "noop" }
func (n *noopTransform) Apply(ctx context.Context, f *Frame) (*Frame, error) { return f, nil }

func BenchmarkPipeline(b *testing.B) {
	f := makeFrame(100000)
	p := NewPipeline().Add(&noopTransform{}).Add(&noopTransform{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Run(context.Background(), f)
	}
}
