package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/header"
	iox "github.com/wdm0006/surveyframe/pkg/io/ioutils"
)

type ReaderOptions struct {
	NoHeader  bool // first row is data; columns are named col_0, col_1, ...
	Delimiter rune // 0 = sniff, default ','
	Strict    bool // if true, error on short/long records
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file (gzip aware, "-" for stdin) and returns a Reader and
// the closer for the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (upload body,
// stdin, pipe). The delimiter is sniffed from the first 4KiB unless set.
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	br := bufio.NewReader(r)
	rr := csv.NewReader(br)
	sample, _ := br.Peek(4096)
	if opt.Delimiter == 0 {
		d, lazy := sniffDelimiterAndQuotes(sample)
		rr.Comma = d
		rr.LazyQuotes = lazy
	} else {
		rr.Comma = opt.Delimiter
		rr.LazyQuotes = strings.ContainsRune(string(sample), '"')
	}
	if !opt.Strict {
		rr.FieldsPerRecord = -1
	}
	return &Reader{r: rr, opt: opt}
}

// ReadAll loads the whole table. Headers are sanitized and made unique; kinds
// are inferred from every row. An input with no rows at all is an empty frame.
func (r *Reader) ReadAll() (*frame.Frame, error) {
	first, err := r.r.Read()
	if errors.Is(err, io.EOF) {
		return frame.Empty(), nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	var rows [][]string
	if r.opt.NoHeader {
		names = make([]string, len(first))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		rows = append(rows, first)
	} else {
		names = make([]string, len(first))
		for i := range first {
			names[i] = strings.ToValidUTF8(first[i], "?")
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		names = header.Unique(header.SanitizeAll(names))
	}

	for {
		rec, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch {
		case len(rec) > len(names):
			r.longRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv long record at row %d: need %d fields, got %d", len(rows)+1, len(names), len(rec))
			}
			rec = rec[:len(names)]
		case len(rec) < len(names):
			r.shortRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv short record at row %d: need %d fields, got %d", len(rows)+1, len(names), len(rec))
			}
		}
		rows = append(rows, rec)
	}
	return frame.FromText(names, rows)
}

// ReadTable reads an uploaded delimited file into a frame.
func ReadTable(path string, opt ReaderOptions) (*frame.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	f, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}
	return f, nil
}

// sniffDelimiterAndQuotes picks the most frequent candidate delimiter in the
// sample and enables lazy quotes when the sample contains any quote.
func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := -1
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount > 0
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
