package golearn

import (
	"testing"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

func TestRoundTrip(t *testing.T) {
	f, err := frame.New([]string{"animais/idade", "animais/especie", "peso"}, [][]frame.Value{
		{frame.Int(3), frame.String("bovino"), frame.Float(300.5)},
		{frame.Int(1), frame.String("ovino"), frame.Float(40)},
		{frame.Int(2), frame.String("bovino"), frame.Float(280)},
	})
	if err != nil {
		t.Fatal(err)
	}
	inst, err := ToDenseInstances(f, "animais/especie")
	if err != nil {
		t.Fatal(err)
	}
	cols, rows := inst.Size()
	if cols != 3 || rows != 3 {
		t.Fatalf("size = %d cols, %d rows", cols, rows)
	}
	if classes := inst.AllClassAttributes(); len(classes) != 1 || classes[0].GetName() != "animais/especie" {
		t.Fatalf("unexpected class attributes: %v", classes)
	}

	back, err := FromDenseInstances(inst)
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 3 {
		t.Fatalf("rows = %d", back.Rows())
	}
	if v, _ := back.Cell(1, "animais/especie"); v.Text() != "ovino" {
		t.Fatalf("especie = %q", v.Text())
	}
	if v, _ := back.Cell(0, "peso"); v.Text() != "300.5" {
		t.Fatalf("peso = %q", v.Text())
	}
	if v, _ := back.Cell(2, "animais/idade"); v.Text() != "2" {
		t.Fatalf("idade = %q", v.Text())
	}
}

func TestRejectsNested(t *testing.T) {
	f, _ := frame.New([]string{"grp"}, [][]frame.Value{{frame.ArrayValue(nil)}})
	if _, err := ToDenseInstances(f, ""); err == nil {
		t.Fatal("expected error for unflattened column")
	}
	g, _ := frame.New([]string{"x"}, [][]frame.Value{{frame.Int(1)}})
	if _, err := ToDenseInstances(g, "missing"); err == nil {
		t.Fatal("expected error for unknown class column")
	}
}
