package jsonio

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/wdm0006/surveyframe/pkg/frame"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
)

// WriteAll writes f as JSON Lines, one object per row with keys in column
// order. Null cells are written as null so that every column survives a
// reload.
func WriteAll(path string, f *frame.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Encode(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Encode writes f to w as JSON Lines.
func Encode(w io.Writer, f *frame.Frame) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	cols := f.Columns()
	for r := 0; r < f.Rows(); r++ {
		o := frame.NewObject()
		for c, name := range cols {
			o.Set(name, f.At(r, c))
		}
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Sink persists each snapshot as a JSON Lines file, replacing the previous
// one.
type Sink struct {
	Path string
}

func NewSink(path string) *Sink { return &Sink{Path: path} }

func (s *Sink) Write(f *frame.Frame) error { return WriteAll(s.Path, f) }
func (s *Sink) Close() error               { return nil }
