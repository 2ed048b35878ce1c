// Package flatten turns nested survey submissions into a flat table. Nested
// objects become path-named columns ("group/field") and repeat groups
// (arrays of objects) fan out into one row per element.
package flatten

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// Sep joins a parent column and a nested key into a derived column name.
const Sep = "/"

// ErrAmbiguousColumn is returned when a derived column name equals a name that
// already exists in the output.
var ErrAmbiguousColumn = errors.New("ambiguous column")

func reserved(name string) bool { return name == frame.ReservedAttachments }

// Flatten replaces every column holding an object in at least one row with one
// column per nested leaf key, named by path. Derived columns take the parent's
// position. Rows whose value is absent, null or not an object are null in the
// derived columns. On error the input frame is returned unchanged.
func Flatten(f *frame.Frame) (*frame.Frame, error) {
	var targets []string
	for _, c := range f.Columns() {
		if !reserved(c) && holds(f, c, frame.KindObject) {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		return f, nil
	}
	out, err := splice(f, targets, false)
	if err != nil {
		return f, err
	}
	return out, nil
}

// Explode expands repeat groups. Each column holding an array of objects in at
// least one row is handled in column order on the previous result: a row with
// n > 0 elements becomes n rows, an empty array or null becomes one row with
// null, and other values pass through. The exploded objects are then flattened
// into derived columns. Repeat groups nested inside a group are expanded in
// turn until none remain.
func Explode(f *frame.Frame) (*frame.Frame, error) {
	cur := f
	for {
		cols := arrayColumns(cur)
		if len(cols) == 0 {
			return cur, nil
		}
		for _, c := range cols {
			next, err := explodeColumn(cur, c)
			if err != nil {
				return f, err
			}
			cur = next
		}
	}
}

// Tabulate alternates Flatten and Explode until neither changes the frame, so
// that no cell outside the reserved attachments column holds an object or a
// repeat group.
func Tabulate(f *frame.Frame) (*frame.Frame, error) {
	cur := f
	for {
		next, err := Flatten(cur)
		if err != nil {
			return f, err
		}
		next, err = Explode(next)
		if err != nil {
			return f, err
		}
		if next == cur {
			return cur, nil
		}
		cur = next
	}
}

// Flattener is the pipeline step for Flatten.
type Flattener struct{}

func (Flattener) Name() string { return "flatten" }
func (Flattener) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Flatten(f)
}

// Expander is the pipeline step for Explode.
type Expander struct{}

func (Expander) Name() string { return "explode" }
func (Expander) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Explode(f)
}

// Tabulator is the pipeline step for Tabulate.
type Tabulator struct{}

func (Tabulator) Name() string { return "tabulate" }
func (Tabulator) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Tabulate(f)
}

func holds(f *frame.Frame, col string, k frame.Kind) bool {
	ci, ok := f.Index(col)
	if !ok {
		return false
	}
	for r := 0; r < f.Rows(); r++ {
		if f.At(r, ci).Kind() == k {
			return true
		}
	}
	return false
}

func arrayColumns(f *frame.Frame) []string {
	var out []string
	for _, c := range f.Columns() {
		if !reserved(c) && holds(f, c, frame.KindArray) {
			out = append(out, c)
		}
	}
	return out
}

func explodeColumn(f *frame.Frame, col string) (*frame.Frame, error) {
	ci, _ := f.Index(col)
	b := frame.NewBuilder(f.Columns())
	for r := 0; r < f.Rows(); r++ {
		row := f.RowValues(r)
		arr, ok := row[ci].Array()
		if !ok {
			b.Append(row...)
			continue
		}
		if len(arr) == 0 {
			row[ci] = frame.Null()
			b.Append(row...)
			continue
		}
		for _, o := range arr {
			next := make([]frame.Value, len(row))
			copy(next, row)
			next[ci] = frame.ObjectValue(o)
			b.Append(next...)
		}
	}
	g, err := b.Frame()
	if err != nil {
		return nil, err
	}
	return splice(g, []string{col}, true)
}

// outCol describes one output column: either a copy of source column src, or
// the value found at path inside the object in src.
type outCol struct {
	name   string
	origin string
	src    int
	path   []string
}

// splice rebuilds f with each target column replaced by its derived leaf
// columns. With vanish set, a target holding nothing but nulls is dropped too.
func splice(f *frame.Frame, targets []string, vanish bool) (*frame.Frame, error) {
	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	var plan []outCol
	for ci, c := range f.Columns() {
		if !isTarget[c] {
			plan = append(plan, outCol{name: c, origin: fmt.Sprintf("existing column %q", c), src: ci})
			continue
		}
		vals, _ := f.Column(c)
		paths, objects := leafPaths(vals)
		if !objects && !(vanish && allNull(vals)) {
			plan = append(plan, outCol{name: c, origin: fmt.Sprintf("existing column %q", c), src: ci})
			continue
		}
		for _, p := range paths {
			plan = append(plan, outCol{
				name:   c + Sep + strings.Join(p, Sep),
				origin: fmt.Sprintf("key %q of column %q", strings.Join(p, "."), c),
				src:    ci,
				path:   p,
			})
		}
	}

	seen := make(map[string]string, len(plan))
	names := make([]string, len(plan))
	for i, oc := range plan {
		if prev, dup := seen[oc.name]; dup {
			return nil, fmt.Errorf("flatten: %w: %q from %s collides with %s", ErrAmbiguousColumn, oc.name, oc.origin, prev)
		}
		seen[oc.name] = oc.origin
		names[i] = oc.name
	}

	b := frame.NewBuilder(names)
	for r := 0; r < f.Rows(); r++ {
		row := make([]frame.Value, len(plan))
		for i, oc := range plan {
			v := f.At(r, oc.src)
			if oc.path != nil {
				v = lookup(v, oc.path)
			}
			row[i] = v
		}
		b.Append(row...)
	}
	return b.Frame()
}

// leafPaths lists the paths to non-object values across all objects in vals,
// in first-appearance order, and reports whether vals held any object.
func leafPaths(vals []frame.Value) ([][]string, bool) {
	var paths [][]string
	seen := map[string]bool{}
	var walk func(o *frame.Object, prefix []string)
	walk = func(o *frame.Object, prefix []string) {
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			p := append(append([]string(nil), prefix...), k)
			if sub, ok := v.Object(); ok {
				walk(sub, p)
				continue
			}
			key := strings.Join(p, "\x00")
			if !seen[key] {
				seen[key] = true
				paths = append(paths, p)
			}
		}
	}
	objects := false
	for _, v := range vals {
		if o, ok := v.Object(); ok {
			objects = true
			walk(o, nil)
		}
	}
	return paths, objects
}

// lookup follows path through nested objects. Anything missing, or an object
// where a leaf was expected, is null.
func lookup(v frame.Value, path []string) frame.Value {
	for _, seg := range path {
		o, ok := v.Object()
		if !ok {
			return frame.Null()
		}
		if v, ok = o.Get(seg); !ok {
			return frame.Null()
		}
	}
	if v.IsObject() {
		return frame.Null()
	}
	return v
}

func allNull(vals []frame.Value) bool {
	for _, v := range vals {
		if !v.IsNull() {
			return false
		}
	}
	return true
}
