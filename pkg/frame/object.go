package frame

import (
	"bytes"
	"encoding/json"
)

// Object is a nested record that remembers the order its keys were added in.
// A submission record is an *Object whose values may themselves be objects or
// repeat groups.
type Object struct {
	keys   []string
	fields map[string]Value
}

func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// ObjectFromMap builds an object from decoded JSON. Keys are sorted since Go
// maps carry no order.
func ObjectFromMap(m map[string]any) *Object {
	o := &Object{keys: make([]string, 0, len(m)), fields: make(map[string]Value, len(m))}
	for _, k := range sortedKeys(m) {
		o.Set(k, FromAny(m[k]))
	}
	return o
}

// Set stores v under k. New keys are appended; existing keys keep their slot.
func (o *Object) Set(k string, v Value) *Object {
	if _, ok := o.fields[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.fields[k] = v
	return o
}

func (o *Object) Get(k string) (Value, bool) {
	if o == nil {
		return Null(), false
	}
	v, ok := o.fields[k]
	return v, ok
}

func (o *Object) Delete(k string) {
	if _, ok := o.fields[k]; !ok {
		return
	}
	delete(o.fields, k)
	for i, key := range o.keys {
		if key == k {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the key order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Map converts the object into plain Go data.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, o.Len())
	for _, k := range o.keys {
		out[k] = o.fields[k].Any()
	}
	return out
}

// MarshalJSON writes keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := o.fields[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
