package parquetio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

// ReadAll loads a Parquet file into a frame. Column names are restored from
// the ColumnsKey metadata when present; otherwise the leaf paths are used.
func ReadAll(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parquet open: %w", err)
	}

	leaves := pf.Schema().Columns()
	names := make([]string, len(leaves))
	for i, p := range leaves {
		names[i] = strings.Join(p, ".")
	}
	if raw, ok := pf.Lookup(ColumnsKey); ok {
		var stored []string
		if err := json.Unmarshal([]byte(raw), &stored); err == nil && len(stored) == len(names) {
			names = stored
		}
	}

	b := frame.NewBuilder(names)
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				vals := make([]frame.Value, len(names))
				for _, v := range row {
					if c := v.Column(); c >= 0 && c < len(vals) {
						vals[c] = fromParquet(v)
					}
				}
				b.Append(vals...)
			}
			if errors.Is(err, io.EOF) || (err == nil && n == 0) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("parquet read: %w", err)
			}
		}
		_ = rows.Close()
	}
	return b.Frame()
}

func fromParquet(v parquet.Value) frame.Value {
	if v.IsNull() {
		return frame.Null()
	}
	switch v.Kind() {
	case parquet.Boolean:
		return frame.Bool(v.Boolean())
	case parquet.Int32, parquet.Int64:
		return frame.Int(v.Int64())
	case parquet.Float:
		return frame.Float(float64(v.Float()))
	case parquet.Double:
		return frame.Float(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return frame.String(string(v.ByteArray()))
	}
	return frame.String(v.String())
}
