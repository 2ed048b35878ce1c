package frame

import (
	"regexp"
	"strconv"
	"strings"
)

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// InferKinds guesses a scalar kind per column from text rows, as read from a
// delimited file or spreadsheet. Columns are int, float, bool or string.
func InferKinds(rows [][]string, ncol int) []Kind {
	kinds := make([]Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
				continue
			}
			lv := strings.ToLower(v)
			if lv == "true" || lv == "false" {
				boolean++
				continue
			}
			str++
		}
		switch {
		case str == 0 && num == 0 && boolean > 0:
			kinds[c] = KindBool
		case str == 0 && boolean == 0 && num > 0:
			if integer == num {
				kinds[c] = KindInt
			} else {
				kinds[c] = KindFloat
			}
		default:
			kinds[c] = KindString
		}
	}
	return kinds
}

// ParseCell converts raw text into a value of kind k. Blank text is null;
// text that does not parse as k is kept as a string rather than lost.
func ParseCell(k Kind, raw string) Value {
	val := strings.ToValidUTF8(strings.TrimSpace(raw), "?")
	if val == "" {
		return Null()
	}
	switch k {
	case KindInt:
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			return Int(x)
		}
	case KindFloat:
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			return Float(x)
		}
	case KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			return Bool(x)
		}
	}
	return String(val)
}

// FromText builds a typed frame from a header and text rows, inferring kinds
// from all rows.
func FromText(header []string, rows [][]string) (*Frame, error) {
	kinds := InferKinds(rows, len(header))
	b := NewBuilder(header)
	for _, rec := range rows {
		vals := make([]Value, len(header))
		for i := range header {
			if i >= len(rec) {
				continue
			}
			vals[i] = ParseCell(kinds[i], rec[i])
		}
		b.Append(vals...)
	}
	return b.Frame()
}
