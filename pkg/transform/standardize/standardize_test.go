package standardize

import (
	"context"
	"testing"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func TestTrimAndLower(t *testing.T) {
	f, err := frame.New([]string{"s", "n"}, [][]frame.Value{
		{frame.String("  Foo  "), frame.Int(1)},
		{frame.String("BAR"), frame.Int(2)},
		{frame.Null(), frame.Int(3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	f, err = (&Trim{Column: "s"}).Apply(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := f.Cell(0, "s")
	if v.Text() != "Foo" {
		t.Fatalf("trim failed, got %q", v.Text())
	}

	f, err = (&Lower{Column: "s"}).Apply(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	v0, _ := f.Cell(0, "s")
	v1, _ := f.Cell(1, "s")
	if v0.Text() != "foo" || v1.Text() != "bar" {
		t.Fatalf("lower failed, got %q %q", v0.Text(), v1.Text())
	}
	if v2, _ := f.Cell(2, "s"); !v2.IsNull() {
		t.Fatal("null cell should stay null")
	}

	f, err = (&RegexReplace{Column: "s", Pattern: "o+", Replace: "O"}).Apply(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	v0, _ = f.Cell(0, "s")
	if v0.Text() != "fO" {
		t.Fatalf("regex replace failed, got %q", v0.Text())
	}

	f, err = (&MapValues{Column: "s", Map: map[string]string{"bar": "baz"}}).Apply(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	v1, _ = f.Cell(1, "s")
	if v1.Text() != "baz" {
		t.Fatalf("map values failed, got %q", v1.Text())
	}
}

func TestNonStringCellsUntouched(t *testing.T) {
	f, _ := frame.New([]string{"n"}, [][]frame.Value{{frame.Int(7)}})
	out, err := (&Lower{Column: "n"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Cell(0, "n"); v.Kind() != frame.KindInt {
		t.Fatalf("int cell changed kind: %v", v.Kind())
	}
	same, _ := (&Trim{Column: "missing"}).Apply(context.Background(), f)
	if same != f {
		t.Fatal("unknown column should return the input frame")
	}
}

func TestBadPattern(t *testing.T) {
	f, _ := frame.New([]string{"s"}, nil)
	if _, err := (&RegexReplace{Column: "s", Pattern: "("}).Apply(context.Background(), f); err == nil {
		t.Fatal("expected compile error")
	}
}
