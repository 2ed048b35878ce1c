package csvio

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/header"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
)

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows. Kinds are
// inferred once from the first chunk and reused for the rest.
type StreamReader struct {
	r         *Reader
	names     []string
	kinds     []frame.Kind
	chunkSize int
}

// NewStreamReader opens the file and reads its header.
func NewStreamReader(path string, opt ReaderOptions, chunkSize int) (*StreamReader, io.Closer, error) {
	rr, c, err := Open(path, opt)
	if err != nil {
		return nil, nil, err
	}
	hdr, err := rr.r.Read()
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	names := make([]string, len(hdr))
	copy(names, hdr)
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	return &StreamReader{r: rr, names: header.Unique(header.SanitizeAll(names)), chunkSize: chunkSize}, c, nil
}

func (s *StreamReader) Columns() []string { return s.names }

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*frame.Frame, error) {
	var rows [][]string
	for len(rows) < s.chunkSize {
		rec, err := s.r.r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, io.EOF
	}
	if s.kinds == nil {
		s.kinds = frame.InferKinds(rows, len(s.names))
	}
	b := frame.NewBuilder(s.names)
	for _, rec := range rows {
		vals := make([]frame.Value, len(s.names))
		for i := range vals {
			if i < len(rec) {
				vals[i] = frame.ParseCell(s.kinds[i], rec[i])
			}
		}
		b.Append(vals...)
	}
	return b.Frame()
}

// StreamWriter appends frames to a CSV file with a header (written once).
type StreamWriter struct {
	w           *csv.Writer
	file        io.WriteCloser
	wroteHeader bool
	cols        []string
}

func NewStreamWriter(path string, cols []string, opt WriterOptions) (*StreamWriter, error) {
	f, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	return &StreamWriter{w: w, file: f, cols: cols}, nil
}

// Write appends the rows of fr, aligned by column name. Columns missing from
// fr are written empty.
func (s *StreamWriter) Write(fr *frame.Frame) error {
	if !s.wroteHeader {
		if err := s.w.Write(s.cols); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	row := make([]string, len(s.cols))
	for r := 0; r < fr.Rows(); r++ {
		for c, name := range s.cols {
			v, _ := fr.Cell(r, name)
			row[c] = v.Text()
		}
		if err := s.w.Write(row); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *StreamWriter) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
