package session

import (
	"fmt"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/io/csvio"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
	"github.com/wdm0006/surveyframe/pkg/io/jsonio"
	"github.com/wdm0006/surveyframe/pkg/io/parquetio"
	"github.com/wdm0006/surveyframe/pkg/io/sqliteio"
	"github.com/wdm0006/surveyframe/pkg/io/xlsxio"
)

// ReadTable loads a table by file extension: CSV/TSV, JSON/JSONL, Parquet,
// SQLite (DefaultTable) or XLSX (first sheet).
func ReadTable(path string) (*frame.Frame, error) {
	switch format := iox.Format(path); format {
	case "csv":
		return csvio.ReadTable(path, csvio.ReaderOptions{})
	case "tsv":
		return csvio.ReadTable(path, csvio.ReaderOptions{Delimiter: '\t'})
	case "json", "jsonl":
		return jsonio.ReadFrame(path)
	case "parquet":
		return parquetio.ReadAll(path)
	case "sqlite":
		return sqliteio.ReadFile(path, sqliteio.DefaultTable)
	case "xlsx":
		return xlsxio.ReadTable(path, xlsxio.Options{})
	default:
		return nil, fmt.Errorf("unsupported table format: %s", path)
	}
}

// Restore reloads a snapshot as the primary table. The reloaded table is not
// written back to the sinks.
func (s *Session) Restore(path string) error {
	f, err := ReadTable(path)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sink := s.sink
	s.sink = nil
	err = s.commit("restore", f)
	s.sink = sink
	return err
}

// NewSink opens a snapshot sink for path, chosen by extension.
func NewSink(path string) (frame.Sink, error) {
	switch format := iox.Format(path); format {
	case "csv":
		return csvio.NewSink(path), nil
	case "tsv":
		return &csvio.Sink{Path: path, Opt: csvio.WriterOptions{Delimiter: '\t'}}, nil
	case "json", "jsonl":
		return jsonio.NewSink(path), nil
	case "parquet":
		return parquetio.NewSink(path), nil
	case "sqlite":
		return sqliteio.Open(path, sqliteio.DefaultTable)
	case "xlsx":
		return &xlsxio.Sink{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", path)
	}
}

// NewSinks opens one sink per path. Sinks already opened are closed when a
// later path fails.
func NewSinks(paths ...string) (frame.MultiSink, error) {
	var out frame.MultiSink
	for _, p := range paths {
		s, err := NewSink(p)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
