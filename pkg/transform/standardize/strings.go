package standardize

import "github.com/wdm0006/surveyframe/pkg/frame"

// mapStrings rewrites the string cells of a column. Other kinds are left as
// they are.
func mapStrings(f *frame.Frame, column string, fn func(string) string) (*frame.Frame, error) {
	return f.MapColumn(column, func(v frame.Value) frame.Value {
		s, ok := v.Str()
		if !ok {
			return v
		}
		return frame.String(fn(s))
	})
}
