package parquetio

import (
	"encoding/json"
	"fmt"
	"strconv"

	local "github.com/xitongsys/parquet-go-source/local"
	xparquet "github.com/xitongsys/parquet-go/parquet"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// ColumnsKey is the key/value metadata entry holding the JSON list of column
// names. Physical parquet columns are named c0, c1, ... since derived names
// such as "grp/x" are not valid parquet field names.
const ColumnsKey = "surveyframe.columns"

func physical(i int) string { return "c" + strconv.Itoa(i) }

func parquetSchemaJSON(s frame.Schema) string {
	// Build a minimal JSON schema for parquet-go JSONWriter
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for i, cs := range s.Columns {
		tag := "name=" + physical(i) + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// cellFor converts v for a column of kind k. Columns of any kind other than
// bool, int and float are stored as text.
func cellFor(k frame.Kind, v frame.Value) (any, bool) {
	if v.IsNull() {
		return nil, false
	}
	switch k {
	case frame.KindBool:
		return v.Bool()
	case frame.KindInt:
		return v.Int()
	case frame.KindFloat:
		return v.Number()
	default:
		return v.Text(), true
	}
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter. A
// frame without columns is not written.
func WriteAll(path string, f *frame.Frame) error {
	if f.Cols() == 0 {
		return nil
	}
	schema := f.Schema()
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(schema), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	names, _ := json.Marshal(f.Columns())
	meta := string(names)
	writer.Footer.KeyValueMetadata = append(writer.Footer.KeyValueMetadata, &xparquet.KeyValue{Key: ColumnsKey, Value: &meta})

	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, f.Cols())
		for c, cs := range schema.Columns {
			if x, ok := cellFor(cs.Type, f.At(r, c)); ok {
				rec[physical(c)] = x
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(b)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet write stop: %w", err)
	}
	return fw.Close()
}

// Sink replaces a Parquet snapshot on every Write.
type Sink struct{ Path string }

func NewSink(path string) *Sink { return &Sink{Path: path} }

func (s *Sink) Write(f *frame.Frame) error { return WriteAll(s.Path, f) }
func (s *Sink) Close() error               { return nil }
