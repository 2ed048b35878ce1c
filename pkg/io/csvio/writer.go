package csvio

import (
	"encoding/csv"
	"io"

	"github.com/wdm0006/surveyframe/pkg/frame"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with a header row. Cells are written
// in their canonical text form; null is an empty field.
func WriteAll(path string, f *frame.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Encode(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Encode writes f as CSV to w.
func Encode(out io.Writer, f *frame.Frame, opt WriterOptions) error {
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	if err := w.Write(f.Columns()); err != nil {
		return err
	}
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			row[c] = f.At(r, c).Text()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Sink replaces a CSV snapshot on every Write.
type Sink struct {
	Path string
	Opt  WriterOptions
}

func NewSink(path string) *Sink { return &Sink{Path: path} }

func (s *Sink) Write(f *frame.Frame) error { return WriteAll(s.Path, f, s.Opt) }
func (s *Sink) Close() error               { return nil }
