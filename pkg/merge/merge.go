// Package merge enriches the primary survey table with columns taken from an
// uploaded table, joining on a key column whose name in the upload only has
// to match loosely.
package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/header"
)

var (
	// ErrUnresolvedKey is returned when the secondary table has no column
	// matching the nominal key. The primary table is left untouched.
	ErrUnresolvedKey = errors.New("merge key not found in secondary table")
	// ErrUnknownColumn is returned when the primary key column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// Suffixes applied when an imported column has the same name as a primary
// column.
const (
	SuffixPrimary   = "_x"
	SuffixSecondary = "_y"
)

// Merger left-joins a secondary table onto a primary one.
type Merger struct {
	// KeyA is the exact name of the key column in the primary table.
	KeyA string
	// KeyB is the nominal key name in the secondary table; it is resolved
	// ignoring case, surrounding whitespace and quotes.
	KeyB string
	// Import lists nominal names of secondary columns to copy. Names that do
	// not resolve are skipped and reported in Result.Dropped.
	Import []string
}

// Result describes a completed merge.
type Result struct {
	Frame *frame.Frame
	// KeyB is the secondary column the nominal key resolved to.
	KeyB string
	// Imported lists the secondary columns copied, in secondary column order.
	Imported []string
	// Dropped lists requested import names that were not copied.
	Dropped []string
	// Renamed maps original names to suffixed names for columns present on
	// both sides.
	Renamed map[string]string
	// Matched counts primary rows with at least one secondary match.
	Matched int
}

// Merge joins b onto a. Every row of a appears at least once: once per
// matching row of b, or once with nulls in the imported columns when nothing
// matches. Output rows follow a's order and, within a fan-out, b's order.
// Key values compare by their text form, trimmed and case folded; null keys
// never match. b's key column is never copied.
func (m Merger) Merge(a, b *frame.Frame) (*Result, error) {
	ka, ok := a.Index(m.KeyA)
	if !ok {
		return nil, fmt.Errorf("merge: %w: %q in primary table", ErrUnknownColumn, m.KeyA)
	}
	bcols := b.Columns()
	keyB, ok := header.Resolve(bcols, m.KeyB)
	if !ok {
		return nil, fmt.Errorf("merge: %w: %q (columns: %s)", ErrUnresolvedKey, m.KeyB, strings.Join(bcols, ", "))
	}
	kb, _ := b.Index(keyB)

	res := &Result{KeyB: keyB, Renamed: map[string]string{}}
	resolved := lo.FilterMap(m.Import, func(name string, _ int) (string, bool) {
		col, ok := header.Resolve(bcols, name)
		if !ok || col == keyB {
			res.Dropped = append(res.Dropped, name)
			return "", false
		}
		return col, true
	})
	res.Imported = lo.Filter(bcols, func(c string, _ int) bool { return lo.Contains(resolved, c) })
	imports := lo.Map(res.Imported, func(c string, _ int) int {
		i, _ := b.Index(c)
		return i
	})

	cols := a.Columns()
	for i, c := range cols {
		if lo.Contains(res.Imported, c) {
			res.Renamed[c] = c + SuffixPrimary
			cols[i] = c + SuffixPrimary
		}
	}
	for _, c := range res.Imported {
		if _, clash := res.Renamed[c]; clash {
			cols = append(cols, c+SuffixSecondary)
			continue
		}
		cols = append(cols, c)
	}

	index := make(map[string][]int, b.Rows())
	for r := 0; r < b.Rows(); r++ {
		if k, ok := joinKey(b.At(r, kb)); ok {
			index[k] = append(index[k], r)
		}
	}

	out := frame.NewBuilder(cols)
	for r := 0; r < a.Rows(); r++ {
		var matches []int
		if k, ok := joinKey(a.At(r, ka)); ok {
			matches = index[k]
		}
		if len(matches) > 0 {
			res.Matched++
		}
		if len(matches) == 0 {
			out.Append(a.RowValues(r)...)
			continue
		}
		for _, br := range matches {
			row := append(a.RowValues(r), make([]frame.Value, len(imports))...)
			for i, c := range imports {
				row[a.Cols()+i] = b.At(br, c)
			}
			out.Append(row...)
		}
	}
	f, err := out.Frame()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	res.Frame = f
	return res, nil
}

// joinKey is the comparison form of a key value.
func joinKey(v frame.Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	return cases.Fold().String(strings.TrimSpace(v.Text())), true
}

// Step runs a merge against a fixed secondary table inside a pipeline.
type Step struct {
	Merger
	Secondary *frame.Frame
	// Last holds the result of the most recent successful Apply.
	Last *Result
}

func (s *Step) Name() string { return "merge" }

func (s *Step) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.Merge(f, s.Secondary)
	if err != nil {
		return nil, err
	}
	s.Last = res
	return res.Frame, nil
}
