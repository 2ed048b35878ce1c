package jsonio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func TestReadRecordsShapes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opt  Options
		want int
	}{
		{"array", `[{"a":1},null,{"a":2}]`, Options{}, 2},
		{"envelope", `{"count":2,"next":null,"results":[{"a":1},{"a":2}]}`, Options{}, 2},
		{"custom envelope", `{"data":[{"a":1}]}`, Options{Envelope: "data"}, 1},
		{"any envelope", `{"meta":{"n":1},"rows":[{"a":1},{"a":2},{"a":3}]}`, Options{AnyEnvelope: true}, 3},
		{"single object", `{"a":1,"grp":[{"x":1}]}`, Options{}, 1},
		{"jsonl", "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n", Options{}, 3},
		{"empty array", `[]`, Options{}, 0},
	}
	for _, c := range cases {
		recs, err := ReadRecords(strings.NewReader(c.src), c.opt)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if len(recs) != c.want {
			t.Fatalf("%s: expected %d records, got %d", c.name, c.want, len(recs))
		}
	}
}

func TestReadRecordsKeepsOrderAndKinds(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader(`[{"z":1,"a":1.5,"m":"x","grp":[{"q":true}],"geo":[1,2],"tags":[]}]`), Options{})
	if err != nil {
		t.Fatal(err)
	}
	o := recs[0]
	if got := strings.Join(o.Keys(), ","); got != "z,a,m,grp,geo,tags" {
		t.Fatalf("key order lost: %s", got)
	}
	kinds := map[string]frame.Kind{
		"z":    frame.KindInt,
		"a":    frame.KindFloat,
		"m":    frame.KindString,
		"grp":  frame.KindArray,
		"geo":  frame.KindList,
		"tags": frame.KindArray,
	}
	for k, want := range kinds {
		if v, _ := o.Get(k); v.Kind() != want {
			t.Fatalf("%s: got %v want %v", k, v.Kind(), want)
		}
	}
}

func TestReadRecordsErrors(t *testing.T) {
	for _, src := range []string{`[1,2]`, `"x"`, `{"a":`} {
		if _, err := ReadRecords(strings.NewReader(src), Options{}); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}

func TestWriteAndReload(t *testing.T) {
	f, err := frame.New([]string{"id", "name", "w"}, [][]frame.Value{
		{frame.Int(1), frame.String("a"), frame.Float(2.5)},
		{frame.Int(2), frame.Null(), frame.Null()},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "snap.jsonl.gz")
	s := NewSink(p)
	if err := s.Write(f); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	g, err := ReadFrame(p)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Equal(g) {
		t.Fatalf("reload differs: %v vs %v", f.Columns(), g.Columns())
	}
}
