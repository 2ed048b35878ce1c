package parquetio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func TestWriteAndReload(t *testing.T) {
	f, err := frame.New([]string{"ID", "grp/x", "peso", "ok", "n"}, [][]frame.Value{
		{frame.String("a1"), frame.Int(1), frame.Float(12.5), frame.Bool(true), frame.Null()},
		{frame.String("b2"), frame.Null(), frame.Int(8), frame.Bool(false), frame.Null()},
		{frame.Null(), frame.Int(3), frame.Null(), frame.Null(), frame.Null()},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "snap.parquet")
	if err := NewSink(p).Write(f); err != nil {
		t.Fatal(err)
	}
	g, err := ReadAll(p)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(g.Columns(), ","); got != "ID,grp/x,peso,ok,n" {
		t.Fatalf("columns = %s", got)
	}
	if !f.Equal(g) {
		for r := 0; r < g.Rows(); r++ {
			t.Logf("row %d: %v", r, g.RowValues(r))
		}
		t.Fatal("reload differs")
	}
	if v, _ := g.Cell(1, "peso"); v.Kind() != frame.KindFloat {
		t.Fatalf("int cell in a float column should reload as float, got %v", v.Kind())
	}
}
