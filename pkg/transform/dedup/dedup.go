// Package dedup removes repeated rows, comparing only the columns whose every
// value is a plain scalar.
package dedup

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// Scalar drops rows equal to an earlier row on every key column. Key columns
// are the columns holding only null, bool, int, float, string or timestamp
// values. With no key columns the frame is returned as is. The first
// occurrence is kept and row order is preserved.
type Scalar struct{}

func (Scalar) Name() string { return "dedup" }

func (s Scalar) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys := s.KeyColumns(f)
	if len(keys) == 0 {
		return f, nil
	}
	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i], _ = f.Index(k)
	}
	seen := make(map[string]struct{}, f.Rows())
	var b strings.Builder
	return f.Filter(func(r int) bool {
		b.Reset()
		for _, c := range idx {
			writeKey(&b, f.At(r, c))
			b.WriteByte(0x1f)
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	}), nil
}

// KeyColumns lists, in column order, the columns used to compare rows.
func (Scalar) KeyColumns(f *frame.Frame) []string {
	var out []string
	for c, name := range f.Columns() {
		scalar := true
		for r := 0; r < f.Rows(); r++ {
			if !f.At(r, c).IsScalar() {
				scalar = false
				break
			}
		}
		if scalar {
			out = append(out, name)
		}
	}
	return out
}

// writeKey appends a kind-tagged encoding of v. Integral floats encode as
// ints so that 1 and 1.0 compare equal.
func writeKey(b *strings.Builder, v frame.Value) {
	switch v.Kind() {
	case frame.KindNull:
		b.WriteByte('n')
	case frame.KindBool:
		x, _ := v.Bool()
		b.WriteString("b" + strconv.FormatBool(x))
	case frame.KindInt:
		x, _ := v.Int()
		b.WriteString("i" + strconv.FormatInt(x, 10))
	case frame.KindFloat:
		x, _ := v.Float()
		if x == math.Trunc(x) && math.Abs(x) < 1<<63 {
			b.WriteString("i" + strconv.FormatInt(int64(x), 10))
			return
		}
		b.WriteString("f" + strconv.FormatFloat(x, 'g', -1, 64))
	case frame.KindTime:
		x, _ := v.Time()
		b.WriteString("t" + x.UTC().Format(time.RFC3339Nano))
	default:
		s := v.Text()
		b.WriteString("s" + strconv.Itoa(len(s)) + ":" + s)
	}
}
