package frame

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Kind enumerates the logical types a cell can hold.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
	// KindObject is a nested record.
	KindObject
	// KindArray is a repeat group: an array whose elements are all objects.
	KindArray
	// KindList is any other array (mixed or scalar elements).
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Scalar reports whether cells of this kind are plain comparable values.
func (k Kind) Scalar() bool { return k <= KindTime }

// TimeLayout is the layout used when a timestamp is rendered as text.
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// Value is an immutable tagged cell value.
type Value struct {
	kind Kind
	v    any
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, v: b} }
func Int(i int64) Value { return Value{kind: KindInt, v: i} }
func Float(f float64) Value { return Value{kind: KindFloat, v: f} }
func String(s string) Value { return Value{kind: KindString, v: s} }
func Time(t time.Time) Value { return Value{kind: KindTime, v: t} }
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, v: o}
}

// ArrayValue wraps a repeat group. A nil or empty slice is still an array.
func ArrayValue(elems []*Object) Value { return Value{kind: KindArray, v: elems} }

// ListValue wraps an array that is not a repeat group.
func ListValue(elems []Value) Value { return Value{kind: KindList, v: elems} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsScalar() bool { return v.kind.Scalar() }
func (v Value) IsObject() bool { return v.kind == KindObject }
func (v Value) IsArray() bool { return v.kind == KindArray }

func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok && v.kind == KindBool
}

func (v Value) Int() (int64, bool) {
	i, ok := v.v.(int64)
	return i, ok && v.kind == KindInt
}

func (v Value) Float() (float64, bool) {
	f, ok := v.v.(float64)
	return f, ok && v.kind == KindFloat
}

func (v Value) Str() (string, bool) {
	s, ok := v.v.(string)
	return s, ok && v.kind == KindString
}

func (v Value) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok && v.kind == KindTime
}

func (v Value) Object() (*Object, bool) {
	o, ok := v.v.(*Object)
	return o, ok && v.kind == KindObject
}

func (v Value) Array() ([]*Object, bool) {
	a, ok := v.v.([]*Object)
	return a, v.kind == KindArray && (ok || v.v == nil)
}

func (v Value) List() ([]Value, bool) {
	l, ok := v.v.([]Value)
	return l, v.kind == KindList && (ok || v.v == nil)
}

// Number returns the value as float64 for int and float cells.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.v.(int64)), true
	case KindFloat:
		return v.v.(float64), true
	}
	return 0, false
}

// Text renders the value in its canonical text form. Null renders as "".
// Floats with an integral value render without a fractional part so that
// 1 and 1.0 share a text form.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.v.(bool))
	case KindInt:
		return strconv.FormatInt(v.v.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.v.(float64), 'f', -1, 64)
	case KindString:
		return v.v.(string)
	case KindTime:
		return v.v.(time.Time).Format(TimeLayout)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v.v)
		}
		return string(b)
	}
}

func (v Value) String() string { return v.Text() }

// Any converts the value back into plain Go data (nil, bool, int64, float64,
// string, time.Time, map[string]any, []any).
func (v Value) Any() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindObject:
		return v.v.(*Object).Map()
	case KindArray:
		arr, _ := v.Array()
		out := make([]any, len(arr))
		for i, o := range arr {
			out[i] = o.Map()
		}
		return out
	case KindList:
		l, _ := v.List()
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = e.Any()
		}
		return out
	default:
		return v.v
	}
}

// Equal compares two values. Int and float compare numerically, nulls are
// equal to each other and timestamps compare as instants.
func (v Value) Equal(o Value) bool {
	if a, ok := v.Number(); ok {
		b, ok := o.Number()
		return ok && a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindTime:
		return v.v.(time.Time).Equal(o.v.(time.Time))
	case KindBool, KindString:
		return v.v == o.v
	default:
		return v.Text() == o.Text()
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindFloat:
		f := v.v.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(f)
	case KindTime:
		return json.Marshal(v.v.(time.Time).Format(TimeLayout))
	case KindObject:
		return v.v.(*Object).MarshalJSON()
	case KindArray:
		arr, _ := v.Array()
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, o := range arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := o.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindList:
		l, _ := v.List()
		if l == nil {
			l = []Value{}
		}
		return json.Marshal(l)
	default:
		return json.Marshal(v.v)
	}
}

// FromAny converts decoded Go data into a Value. Maps become objects with
// sorted keys; use an *Object to keep source order.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		return FromNumber(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case time.Time:
		return Time(t)
	case *Object:
		return ObjectValue(t)
	case map[string]any:
		return ObjectValue(ObjectFromMap(t))
	case []*Object:
		return ArrayValue(t)
	case []map[string]any:
		arr := make([]*Object, len(t))
		for i, m := range t {
			arr[i] = ObjectFromMap(m)
		}
		return ArrayValue(arr)
	case []any:
		return fromSlice(t)
	default:
		return String(fmt.Sprint(t))
	}
}

// FromNumber keeps integers as KindInt and everything else as KindFloat.
func FromNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	if f, err := n.Float64(); err == nil {
		return Float(f)
	}
	return String(n.String())
}

// fromSlice classifies a decoded array: all-object (or empty) arrays are
// repeat groups, anything else is a list.
func fromSlice(elems []any) Value {
	objs := make([]*Object, 0, len(elems))
	for _, e := range elems {
		switch o := e.(type) {
		case map[string]any:
			objs = append(objs, ObjectFromMap(o))
		case *Object:
			objs = append(objs, o)
		default:
			list := make([]Value, len(elems))
			for i, e := range elems {
				list[i] = FromAny(e)
			}
			return ListValue(list)
		}
	}
	return ArrayValue(objs)
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
