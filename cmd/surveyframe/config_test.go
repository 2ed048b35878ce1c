package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/wdm0006/surveyframe/pkg/io/csvio"
)

const yamlConfig = `
input:
  path: submissions.json
upload:
  path: animals.csv
merge:
  key_a: ID
  key_b: id
  import: [Peso]
snapshots: [snap.csv, snap.jsonl]
steps:
  - trim: {column: ID}
  - lower: {column: animais/especie}
  - bogus: {}
`

const tomlConfig = `
snapshots = ["snap.parquet"]

[input]
path = "submissions.json"
envelope = "results"

[[steps]]
[steps.date_range]
column = "data_coleta"
from = "2024-03-01"
to = "2024-03-05"
`

func TestDecodeFormats(t *testing.T) {
	ycfg, err := decodeConfig([]byte(yamlConfig), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if ycfg.Merge == nil || ycfg.Merge.KeyB != "id" || len(ycfg.Snapshots) != 2 {
		t.Fatalf("yaml decoded wrong: %+v", ycfg)
	}
	steps, err := buildSteps(ycfg.Steps, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 || steps[0].Name() != "trim" || steps[1].Name() != "lower" {
		t.Fatalf("unexpected steps: %d", len(steps))
	}

	tcfg, err := decodeConfig([]byte(tomlConfig), "toml")
	if err != nil {
		t.Fatal(err)
	}
	if tcfg.Input.Envelope != "results" || tcfg.Snapshots[0] != "snap.parquet" {
		t.Fatalf("toml decoded wrong: %+v", tcfg)
	}
	steps, err = buildSteps(tcfg.Steps, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 1 || steps[0].Name() != "date_range" {
		t.Fatalf("unexpected toml steps")
	}

	if _, err := decodeConfig([]byte(`{"input": {}}`), "json"); err == nil {
		t.Fatal("missing input path should fail")
	}
	if _, err := decodeConfig([]byte(`{"input": {"path": "x"}, "merge": {"key_a": "id"}}`), "json"); err == nil {
		t.Fatal("merge without upload should fail")
	}
	if _, err := decodeConfig([]byte(`a=1`), "ini"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestDateBound(t *testing.T) {
	end, err := dateBound("2024-03-05", true)
	if err != nil {
		t.Fatal(err)
	}
	if end.Hour() != 23 || end.Day() != 5 {
		t.Fatalf("end bound should cover the day, got %v", end)
	}
	start, _ := dateBound("2024-03-05", false)
	if start.Hour() != 0 {
		t.Fatalf("start bound should be midnight, got %v", start)
	}
	if _, err := dateBound("not a date", false); err == nil {
		t.Fatal("expected error")
	}
	if zero, _ := dateBound("", true); !zero.IsZero() {
		t.Fatal("empty bound should be open")
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	data, _ := filepath.Abs("../../examples/data")
	cfg, err := decodeConfig([]byte(`{
		"input": {"path": "`+filepath.Join(data, "submissions.json")+`"},
		"upload": {"path": "`+filepath.Join(data, "animals.csv")+`"},
		"merge": {"key_a": "ID", "key_b": "id", "import": ["peso", "especie"]},
		"snapshots": ["`+filepath.Join(dir, "snap.csv")+`"],
		"output": {"path": "`+filepath.Join(dir, "out.csv")+`", "columns": ["ID", "animais/especie", "Peso"]},
		"steps": [{"date_range": {"column": "data_coleta", "to": "2024-03-05"}}]
	}`), "json")
	if err != nil {
		t.Fatal(err)
	}
	f, err := run(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	// Z9 was collected after the range
	if f.Rows() != 3 {
		t.Fatalf("rows = %d", f.Rows())
	}
	if !f.Has("Peso") || f.Has("Espécie") {
		t.Fatalf("columns = %v", f.Columns())
	}
	if _, err := os.Stat(filepath.Join(dir, "snap.csv")); err != nil {
		t.Fatal(err)
	}
	out, err := csvio.ReadTable(filepath.Join(dir, "out.csv"), csvio.ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Columns(); len(got) != 3 || got[2] != "Peso" {
		t.Fatalf("export columns = %v", got)
	}
}
