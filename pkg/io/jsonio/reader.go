// Package jsonio reads survey submissions from JSON and writes frames as JSON
// Lines. Decoding keeps the key order of the source document and keeps
// integers apart from floats.
package jsonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wdm0006/surveyframe/pkg/frame"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
)

// DefaultEnvelope is the field of the collector API response that holds the
// submissions.
const DefaultEnvelope = "results"

type Options struct {
	// Envelope names the field of a root object holding the records.
	// Defaults to DefaultEnvelope.
	Envelope string
	// AnyEnvelope falls back to the first array-of-objects field of a root
	// object when the Envelope field is absent.
	AnyEnvelope bool
}

// ReadRecords decodes submissions from r. The input may be a JSON array of
// objects, an envelope object holding such an array, a single object, or a
// stream of objects (JSON Lines). Null array elements are skipped.
func ReadRecords(r io.Reader, opt Options) ([]*frame.Object, error) {
	if opt.Envelope == "" {
		opt.Envelope = DefaultEnvelope
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var roots []frame.Value
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("json: read root token: %w", err)
		}
		v, err := decodeValue(dec, tok)
		if err != nil {
			return nil, err
		}
		roots = append(roots, v)
	}

	if len(roots) == 1 {
		if o, ok := roots[0].Object(); ok {
			if recs, ok := unwrap(o, opt); ok {
				return recs, nil
			}
		}
	}

	var out []*frame.Object
	for i, root := range roots {
		switch root.Kind() {
		case frame.KindObject:
			o, _ := root.Object()
			out = append(out, o)
		case frame.KindArray:
			arr, _ := root.Array()
			out = append(out, arr...)
		case frame.KindList:
			l, _ := root.List()
			for j, e := range l {
				if e.IsNull() {
					continue
				}
				o, ok := e.Object()
				if !ok {
					return nil, fmt.Errorf("json: root %d element %d not an object (got %v)", i, j, e.Kind())
				}
				out = append(out, o)
			}
		default:
			return nil, fmt.Errorf("json: unsupported root value %v (want object or array)", root.Kind())
		}
	}
	return out, nil
}

// ReadFile is ReadRecords over a path, gzip aware. "-" reads stdin.
func ReadFile(path string, opt Options) ([]*frame.Object, error) {
	in, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()
	return ReadRecords(in, opt)
}

// ReadFrame reloads a frame written by WriteAll.
func ReadFrame(path string) (*frame.Frame, error) {
	recs, err := ReadFile(path, Options{})
	if err != nil {
		return nil, err
	}
	return frame.FromRecords(recs, frame.IngestOptions{KeepAttachments: true})
}

func unwrap(o *frame.Object, opt Options) ([]*frame.Object, bool) {
	if v, ok := o.Get(opt.Envelope); ok {
		if arr, ok := v.Array(); ok {
			return arr, true
		}
	}
	if !opt.AnyEnvelope {
		return nil, false
	}
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		if arr, ok := v.Array(); ok && len(arr) > 0 {
			return arr, true
		}
	}
	return nil, false
}

// decodeValue builds a Value for the JSON value whose first token is tok.
func decodeValue(dec *json.Decoder, tok json.Token) (frame.Value, error) {
	switch t := tok.(type) {
	case nil:
		return frame.Null(), nil
	case bool:
		return frame.Bool(t), nil
	case string:
		return frame.String(t), nil
	case json.Number:
		return frame.FromNumber(t), nil
	case float64:
		return frame.Float(t), nil
	case json.Delim:
		switch t {
		case '{':
			o, err := decodeObject(dec)
			if err != nil {
				return frame.Null(), err
			}
			return frame.ObjectValue(o), nil
		case '[':
			return decodeArray(dec)
		}
		return frame.Null(), fmt.Errorf("json: unexpected delimiter %q", t)
	}
	return frame.Null(), fmt.Errorf("json: unexpected token %T", tok)
}

// decodeObject reads the members of an object whose '{' was consumed.
func decodeObject(dec *json.Decoder) (*frame.Object, error) {
	o := frame.NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json: read object key: %w", err)
		}
		k, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("json: object key not a string (got %T)", kt)
		}
		vt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json: read value of %q: %w", k, err)
		}
		v, err := decodeValue(dec, vt)
		if err != nil {
			return nil, err
		}
		o.Set(k, v)
	}
	if end, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("json: read object end: %w", err)
	} else if end != json.Delim('}') {
		return nil, fmt.Errorf("json: expected '}', got %v", end)
	}
	return o, nil
}

// decodeArray reads the elements of an array whose '[' was consumed. Arrays of
// objects (and empty arrays) are repeat groups; anything else is a list.
func decodeArray(dec *json.Decoder) (frame.Value, error) {
	var elems []frame.Value
	objects := true
	for dec.More() {
		vt, err := dec.Token()
		if err != nil {
			return frame.Null(), fmt.Errorf("json: read array element: %w", err)
		}
		v, err := decodeValue(dec, vt)
		if err != nil {
			return frame.Null(), err
		}
		if !v.IsObject() {
			objects = false
		}
		elems = append(elems, v)
	}
	if end, err := dec.Token(); err != nil {
		return frame.Null(), fmt.Errorf("json: read array end: %w", err)
	} else if end != json.Delim(']') {
		return frame.Null(), fmt.Errorf("json: expected ']', got %v", end)
	}
	if !objects {
		return frame.ListValue(elems), nil
	}
	group := make([]*frame.Object, len(elems))
	for i, e := range elems {
		group[i], _ = e.Object()
	}
	return frame.ArrayValue(group), nil
}
