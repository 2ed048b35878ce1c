package flatten_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/io/jsonio"
	"github.com/wdm0006/surveyframe/pkg/transform/flatten"
)

func load(t *testing.T, src string, opt frame.IngestOptions) *frame.Frame {
	t.Helper()
	recs, err := jsonio.ReadRecords(strings.NewReader(src), jsonio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := frame.FromRecords(recs, opt)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func texts(f *frame.Frame, col string) []string {
	vals, _ := f.Column(col)
	out := make([]string, len(vals))
	for i, v := range vals {
		if v.IsNull() {
			out[i] = "<nil>"
			continue
		}
		out[i] = v.Text()
	}
	return out
}

func noNesting(f *frame.Frame) bool {
	for r := 0; r < f.Rows(); r++ {
		for c := 0; c < f.Cols(); c++ {
			k := f.At(r, c).Kind()
			if k == frame.KindObject || k == frame.KindArray {
				return false
			}
		}
	}
	return true
}

func TestRepeatGroupScenario(t *testing.T) {
	Convey("Given a submission with a two-element repeat group", t, func() {
		f := load(t, `[{"a":1,"grp":[{"x":1},{"x":2}]}]`, frame.IngestOptions{})

		Convey("Tabulate yields one row per element", func() {
			out, err := flatten.Tabulate(f)
			So(err, ShouldBeNil)
			So(out.Columns(), ShouldResemble, []string{"a", "grp/x"})
			So(out.Rows(), ShouldEqual, 2)
			So(texts(out, "a"), ShouldResemble, []string{"1", "1"})
			So(texts(out, "grp/x"), ShouldResemble, []string{"1", "2"})
		})

		Convey("The input frame is left as it was", func() {
			_, _ = flatten.Tabulate(f)
			So(f.Columns(), ShouldResemble, []string{"a", "grp"})
			So(f.Rows(), ShouldEqual, 1)
		})
	})
}

func TestEmptyRepeatGroup(t *testing.T) {
	Convey("An empty array keeps its row with nulls", t, func() {
		f := load(t, `[{"a":1,"grp":[]},{"a":2,"grp":[{"x":5}]},{"a":3}]`, frame.IngestOptions{})
		out, err := flatten.Explode(f)
		So(err, ShouldBeNil)
		So(out.Rows(), ShouldEqual, 3)
		So(texts(out, "grp/x"), ShouldResemble, []string{"<nil>", "5", "<nil>"})
	})

	Convey("A group that is empty everywhere leaves no column behind", t, func() {
		f := load(t, `[{"a":1,"grp":[]},{"a":2,"grp":[]}]`, frame.IngestOptions{})
		out, err := flatten.Explode(f)
		So(err, ShouldBeNil)
		So(out.Columns(), ShouldResemble, []string{"a"})
		So(out.Rows(), ShouldEqual, 2)
	})
}

func TestCartesianFanOut(t *testing.T) {
	f := load(t, `[
		{"id":1,"g1":[{"x":1},{"x":2}],"g2":[{"y":"a"},{"y":"b"},{"y":"c"}]},
		{"id":2,"g1":[],"g2":[{"y":"z"}]}
	]`, frame.IngestOptions{})
	out, err := flatten.Explode(f)
	if err != nil {
		t.Fatal(err)
	}
	// bound: sum over records of the product of max(1, len(group))
	if out.Rows() != 2*3+1*1 {
		t.Fatalf("expected 7 rows, got %d", out.Rows())
	}
	want := []string{"1", "1", "1", "2", "2", "2", "<nil>"}
	if got := texts(out, "g1/x"); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("g1/x = %v", got)
	}
	want = []string{"a", "b", "c", "a", "b", "c", "z"}
	if got := texts(out, "g2/y"); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("g2/y = %v", got)
	}
}

func TestFlattenNestedObjects(t *testing.T) {
	f := load(t, `[
		{"id":1,"meta":{"start":"2024-01-01","geo":{"lat":1.5}},"b":true},
		{"id":2,"meta":"oops","b":false},
		{"id":3,"meta":{"end":"x"}}
	]`, frame.IngestOptions{})
	out, err := flatten.Flatten(f)
	if err != nil {
		t.Fatal(err)
	}
	wantCols := []string{"id", "meta/start", "meta/geo/lat", "meta/end", "b"}
	if strings.Join(out.Columns(), ",") != strings.Join(wantCols, ",") {
		t.Fatalf("columns = %v", out.Columns())
	}
	if got := texts(out, "meta/start"); got[0] != "2024-01-01" || got[1] != "<nil>" || got[2] != "<nil>" {
		t.Fatalf("meta/start = %v", got)
	}
	lat, _ := out.Cell(0, "meta/geo/lat")
	if x, ok := lat.Float(); !ok || x != 1.5 {
		t.Fatalf("float leaf changed: %v (%v)", lat, lat.Kind())
	}
	id, _ := out.Cell(2, "id")
	if id.Kind() != frame.KindInt {
		t.Fatalf("int leaf changed kind: %v", id.Kind())
	}
	if !noNesting(out) {
		t.Fatal("objects remain after Flatten")
	}
}

func TestFlattenCollision(t *testing.T) {
	f := load(t, `[{"a":{"x":1},"a/x":2}]`, frame.IngestOptions{})
	out, err := flatten.Flatten(f)
	if !errors.Is(err, flatten.ErrAmbiguousColumn) {
		t.Fatalf("expected ErrAmbiguousColumn, got %v", err)
	}
	if out != f {
		t.Fatal("input frame should be returned on collision")
	}
	if !strings.Contains(err.Error(), `"a/x"`) {
		t.Fatalf("error should name the column: %v", err)
	}
}

func TestTabulateDeepNesting(t *testing.T) {
	f := load(t, `[{
		"id":1,
		"grp":[{"x":1,"sub":[{"y":1},{"y":2}]},{"x":2,"sub":[]}],
		"info":{"rep":[{"z":9}]},
		"geo":[-8.05,-34.9]
	}]`, frame.IngestOptions{})
	out, err := flatten.Tabulate(f)
	if err != nil {
		t.Fatal(err)
	}
	if !noNesting(out) {
		t.Fatal("objects or repeat groups remain after Tabulate")
	}
	wantCols := []string{"id", "grp/x", "grp/sub/y", "info/rep/z", "geo"}
	if strings.Join(out.Columns(), ",") != strings.Join(wantCols, ",") {
		t.Fatalf("columns = %v", out.Columns())
	}
	if out.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.Rows())
	}
	if got := texts(out, "grp/sub/y"); strings.Join(got, ",") != "1,2,<nil>" {
		t.Fatalf("grp/sub/y = %v", got)
	}
	if v, _ := out.Cell(0, "geo"); v.Kind() != frame.KindList {
		t.Fatalf("scalar list should pass through, got %v", v.Kind())
	}
}

func TestAttachmentsNeverExpanded(t *testing.T) {
	f := load(t, `[{"a":1,"_attachments":[{"filename":"p.jpg"},{"filename":"q.jpg"}]}]`,
		frame.IngestOptions{KeepAttachments: true})
	out, err := flatten.Tabulate(f)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 1 {
		t.Fatalf("attachments must not fan out rows, got %d", out.Rows())
	}
	if v, _ := out.Cell(0, frame.ReservedAttachments); v.Kind() != frame.KindArray {
		t.Fatalf("attachments changed: %v", v.Kind())
	}
}

func TestTabulatorStep(t *testing.T) {
	f := load(t, `[{"a":{"b":1}}]`, frame.IngestOptions{})
	p := frame.NewPipeline(flatten.Tabulator{})
	out, err := p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Has("a/b") {
		t.Fatalf("columns = %v", out.Columns())
	}
	flat, _ := flatten.Tabulate(out)
	if flat != out {
		t.Fatal("Tabulate on a flat frame should return it unchanged")
	}
}
