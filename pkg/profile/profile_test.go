package profile

import (
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func TestDescribe(t *testing.T) {
	Convey("Given answers with numbers, flags and choices", t, func() {
		f, err := frame.New([]string{"peso", "vacinado", "especie", "grp"}, [][]frame.Value{
			{frame.Int(1), frame.Bool(true), frame.String("bovino"), frame.ListValue(nil)},
			{frame.Float(2), frame.Bool(false), frame.String("ovino"), frame.Null()},
			{frame.Int(3), frame.Null(), frame.String("bovino"), frame.Null()},
			{frame.Int(4), frame.Bool(true), frame.Null(), frame.Null()},
			{frame.Null(), frame.Bool(true), frame.String("caprino"), frame.Null()},
		})
		So(err, ShouldBeNil)
		c := Describe(f, 2)

		Convey("Numeric columns get a describe row", func() {
			cp, ok := c.Column("peso")
			So(ok, ShouldBeTrue)
			n := cp.Num
			So(n.Count, ShouldEqual, 4)
			So(n.Nulls, ShouldEqual, 1)
			So(n.Mean, ShouldAlmostEqual, 2.5)
			So(n.Std, ShouldAlmostEqual, 1.2909944, 1e-6)
			So(n.Min, ShouldEqual, 1)
			So(n.Q1, ShouldEqual, 1)
			So(n.Median, ShouldEqual, 2)
			So(n.Q3, ShouldEqual, 3)
			So(n.Max, ShouldEqual, 4)
		})

		Convey("Boolean columns count each side", func() {
			cp, _ := c.Column("vacinado")
			So(*cp.Bool, ShouldResemble, BoolStats{Count: 4, Nulls: 1, True: 3, False: 1})
		})

		Convey("Text columns get value counts bounded by topK", func() {
			cp, _ := c.Column("especie")
			So(cp.Text.Unique, ShouldEqual, 3)
			So(cp.Text.Top, ShouldResemble, []ValueCount{{"bovino", 2}, {"caprino", 1}})
		})

		Convey("Nested columns are only counted", func() {
			cp, _ := c.Column("grp")
			So(cp.Other, ShouldEqual, 1)
		})

		Convey("Reports render every column", func() {
			txt := c.ReportText()
			So(txt, ShouldContainSubstring, "- peso (float): count=4 nulls=1")
			So(txt, ShouldContainSubstring, `"bovino": 2`)
			b, err := json.Marshal(c.ReportJSON())
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"name":"vacinado","kind":"bool"`)
		})
	})
}

func TestSingleValueStd(t *testing.T) {
	f, _ := frame.New([]string{"x"}, [][]frame.Value{{frame.Float(7)}})
	cp, _ := Describe(f, 0).Column("x")
	if cp.Num.Std != 0 || cp.Num.Median != 7 {
		t.Fatalf("unexpected stats: %+v", *cp.Num)
	}
	if !strings.Contains(Describe(f, 0).ReportText(), "std=0") {
		t.Fatal("single value should report zero std")
	}
}

func TestValueCountsTies(t *testing.T) {
	got := ValueCounts(map[string]int{"b": 1, "a": 1, "c": 3}, 0)
	want := []ValueCount{{"c", 3}, {"a", 1}, {"b", 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
