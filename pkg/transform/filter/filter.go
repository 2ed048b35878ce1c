// Package filter narrows the primary table to the rows and columns an
// analysis cares about.
package filter

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// InSet keeps rows whose value in Column is one of Values. Values compare by
// their text form. Null cells are dropped unless KeepNull is set.
type InSet struct {
	Column   string
	Values   []string
	KeepNull bool
}

func NewInSet(col string, vals []string) *InSet {
	return &InSet{Column: col, Values: lo.Uniq(vals)}
}

func (t *InSet) Name() string { return "filter_in" }

func (t *InSet) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	c, ok := f.Index(t.Column)
	if !ok {
		return nil, fmt.Errorf("filter_in: unknown column: %s", t.Column)
	}
	allowed := lo.SliceToMap(t.Values, func(v string) (string, struct{}) { return v, struct{}{} })
	return f.Filter(func(r int) bool {
		v := f.At(r, c)
		if v.IsNull() {
			return t.KeepNull
		}
		_, ok := allowed[v.Text()]
		return ok
	}), nil
}

// Distinct returns the distinct non-null text values of a column in order of
// first appearance, e.g. to offer the choices an InSet can keep.
func Distinct(f *frame.Frame, column string) []string {
	vals, ok := f.Column(column)
	if !ok {
		return nil
	}
	texts := lo.FilterMap(vals, func(v frame.Value, _ int) (string, bool) {
		return v.Text(), !v.IsNull()
	})
	return lo.Uniq(texts)
}

// Candidates lists the columns whose name contains any of the substrings,
// ignoring case and accents, so "especie" finds "animais/Espécie".
func Candidates(f *frame.Frame, substrings ...string) []string {
	needles := lo.Map(substrings, func(s string, _ int) string { return fold(s) })
	return lo.Filter(f.Columns(), func(col string, _ int) bool {
		name := fold(col)
		return lo.SomeBy(needles, func(n string) bool { return n != "" && strings.Contains(name, n) })
	})
}

// fold strips combining marks and case folds.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}
