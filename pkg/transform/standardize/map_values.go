package standardize

import (
	"context"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// MapValues recodes string cells, e.g. survey choice codes to labels.
type MapValues struct {
	Column string
	Map    map[string]string
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return mapStrings(f, t.Column, func(s string) string {
		if nv, ok := t.Map[s]; ok {
			return nv
		}
		return s
	})
}
