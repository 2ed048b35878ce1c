// Package temporal finds date-like columns and filters rows by date range.
package temporal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// DateLayout is the strict calendar-date layout tried before any permissive
// parsing.
const DateLayout = "2006-01-02"

// Classifier decides which columns hold timestamps.
type Classifier struct {
	// MaxInvalidRatio is the largest share of non-null values allowed to fail
	// parsing for a column to still count as temporal. Zero requires every
	// non-null value to parse.
	MaxInvalidRatio float64
}

// Classify returns the temporal columns of f in column order. A column with
// no non-null values is never temporal.
func (c Classifier) Classify(f *frame.Frame) []string {
	var out []string
	for _, name := range f.Columns() {
		vals, _ := f.Column(name)
		if c.Temporal(vals) {
			out = append(out, name)
		}
	}
	return out
}

// Temporal reports whether vals qualify as a timestamp column, trying the
// strict layout for every value first and the permissive parser second.
func (c Classifier) Temporal(vals []frame.Value) bool {
	return c.accepts(vals, parseStrict) || c.accepts(vals, Coerce)
}

func (c Classifier) accepts(vals []frame.Value, parse func(frame.Value) (time.Time, bool)) bool {
	total, invalid := 0, 0
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		total++
		if _, ok := parse(v); !ok {
			invalid++
		}
	}
	if total == 0 || invalid == total {
		return false
	}
	return float64(invalid)/float64(total) <= c.MaxInvalidRatio
}

// Coerce converts v to a timestamp. Timestamps pass through; strings are
// tried with DateLayout and then with a permissive parser. Anything else,
// including numbers and booleans, is not a timestamp.
func Coerce(v frame.Value) (time.Time, bool) {
	if t, ok := parseStrict(v); ok {
		return t, true
	}
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseStrict(v frame.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CoerceColumn replaces the values of a column with timestamps. Values that
// do not parse become null. Unknown columns are left alone.
type CoerceColumn struct{ Column string }

func (t *CoerceColumn) Name() string { return "coerce_time" }

func (t *CoerceColumn) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.MapColumn(t.Column, func(v frame.Value) frame.Value {
		if ts, ok := Coerce(v); ok {
			return frame.Time(ts)
		}
		return frame.Null()
	})
}

// Range keeps the rows whose value in Column, once coerced, lies within
// [From, To]. A zero bound is open. Rows whose value does not coerce are
// dropped.
type Range struct {
	Column string
	From   time.Time
	To     time.Time
}

func (t *Range) Name() string { return "date_range" }

func (t *Range) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ci, ok := f.Index(t.Column)
	if !ok {
		return nil, fmt.Errorf("date_range: unknown column: %s", t.Column)
	}
	if !t.From.IsZero() && !t.To.IsZero() && t.To.Before(t.From) {
		return nil, fmt.Errorf("date_range: end %s before start %s", t.To.Format(DateLayout), t.From.Format(DateLayout))
	}
	return f.Filter(func(r int) bool {
		ts, ok := Coerce(f.At(r, ci))
		if !ok {
			return false
		}
		if !t.From.IsZero() && ts.Before(t.From) {
			return false
		}
		if !t.To.IsZero() && ts.After(t.To) {
			return false
		}
		return true
	}), nil
}
