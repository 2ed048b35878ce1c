// Package profile computes per-column statistics for the primary table:
// a numeric describe and value counts for categorical answers.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// NumStats is the describe row of a numeric column. Quantiles are empirical
// (no interpolation). Std is the sample standard deviation and is zero for
// fewer than two values.
type NumStats struct {
	Count  int     `json:"count"`
	Nulls  int     `json:"nulls"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`

	values []float64
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

// ValueCount is one entry of a value-count table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type TextStats struct {
	Count  int          `json:"count"`
	Nulls  int          `json:"nulls"`
	Unique int          `json:"unique"`
	Top    []ValueCount `json:"top,omitempty"`

	freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind frame.Kind
	Num  *NumStats
	Bool *BoolStats
	Text *TextStats
	// Other counts cells of nested kinds, which are not described.
	Other int
}

// Collector accumulates statistics over one or more frames sharing a schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
	done  bool
}

// NewCollector prepares a collector for schema. topK bounds the value-count
// tables; zero or less keeps every value.
func NewCollector(schema frame.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{}
		case frame.KindBool:
			cp.Bool = &BoolStats{}
		case frame.KindString, frame.KindTime, frame.KindNull:
			cp.Text = &TextStats{freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// ConsumeFrame adds the rows of f. Columns unknown to the collector are
// ignored.
func (c *Collector) ConsumeFrame(f *frame.Frame) {
	c.done = false
	for ci, name := range f.Columns() {
		idx, ok := c.index[name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		for r := 0; r < f.Rows(); r++ {
			cp.add(f.At(r, ci))
		}
	}
}

func (cp *ColumnProfile) add(v frame.Value) {
	switch {
	case cp.Num != nil:
		if x, ok := v.Number(); ok {
			cp.Num.Count++
			cp.Num.values = append(cp.Num.values, x)
		} else {
			cp.Num.Nulls++
		}
	case cp.Bool != nil:
		b, ok := v.Bool()
		switch {
		case !ok:
			cp.Bool.Nulls++
		case b:
			cp.Bool.Count++
			cp.Bool.True++
		default:
			cp.Bool.Count++
			cp.Bool.False++
		}
	case cp.Text != nil:
		if v.IsNull() {
			cp.Text.Nulls++
			return
		}
		cp.Text.Count++
		cp.Text.freqs[v.Text()]++
	default:
		if !v.IsNull() {
			cp.Other++
		}
	}
}

// Columns finalizes and returns the profiles in schema order.
func (c *Collector) Columns() []ColumnProfile {
	if !c.done {
		for i := range c.cols {
			c.cols[i].finish(c.topK)
		}
		c.done = true
	}
	return c.cols
}

func (cp *ColumnProfile) finish(topK int) {
	if n := cp.Num; n != nil && n.Count > 0 {
		x := append([]float64(nil), n.values...)
		sort.Float64s(x)
		n.Mean, n.Std = stat.MeanStdDev(x, nil)
		if n.Count < 2 || math.IsNaN(n.Std) {
			n.Std = 0
		}
		n.Min, n.Max = x[0], x[len(x)-1]
		n.Q1 = stat.Quantile(0.25, stat.Empirical, x, nil)
		n.Median = stat.Quantile(0.5, stat.Empirical, x, nil)
		n.Q3 = stat.Quantile(0.75, stat.Empirical, x, nil)
	}
	if t := cp.Text; t != nil {
		t.Unique = len(t.freqs)
		t.Top = ValueCounts(t.freqs, topK)
	}
}

// ValueCounts orders a frequency table by descending count, then by value.
func ValueCounts(freqs map[string]int, topK int) []ValueCount {
	out := make([]ValueCount, 0, len(freqs))
	for k, v := range freqs {
		out = append(out, ValueCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Describe profiles a whole frame in one call.
func Describe(f *frame.Frame, topK int) *Collector {
	c := NewCollector(f.Schema(), topK)
	c.ConsumeFrame(f)
	c.Columns()
	return c
}

// Column returns the profile of one column.
func (c *Collector) Column(name string) (ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return ColumnProfile{}, false
	}
	return c.Columns()[i], true
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.Columns() {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			n := cp.Num
			fmt.Fprintf(&b, "count=%d nulls=%d mean=%.6g std=%.6g min=%.6g 25%%=%.6g 50%%=%.6g 75%%=%.6g max=%.6g\n",
				n.Count, n.Nulls, n.Mean, n.Std, n.Min, n.Q1, n.Median, n.Q3, n.Max)
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		case cp.Text != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d unique=%d\n", cp.Text.Count, cp.Text.Nulls, cp.Text.Unique)
			for _, vc := range cp.Text.Top {
				fmt.Fprintf(&b, "  * %q: %d\n", vc.Value, vc.Count)
			}
		default:
			fmt.Fprintf(&b, "nested values=%d\n", cp.Other)
		}
	}
	return b.String()
}

type JSONProfile struct {
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string     `json:"name"`
	Kind string     `json:"kind"`
	Num  *NumStats  `json:"num,omitempty"`
	Bool *BoolStats `json:"bool,omitempty"`
	Text *TextStats `json:"text,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	cols := c.Columns()
	out := JSONProfile{Columns: make([]JSONColumn, 0, len(cols))}
	for _, cp := range cols {
		out.Columns = append(out.Columns, JSONColumn{
			Name: cp.Name,
			Kind: cp.Kind.String(),
			Num:  cp.Num,
			Bool: cp.Bool,
			Text: cp.Text,
		})
	}
	return out
}
