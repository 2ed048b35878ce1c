package ioutils

import (
	"io"
	"path/filepath"
	"testing"
)

func TestGzipRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.csv.gz")
	w, err := CreateMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "a,b\n1,2\n"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := OpenMaybeCompressed(p)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("got %q", b)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"data.csv":           "csv",
		"DATA.CSV.gz":        "csv",
		"sub.json":           "json",
		"sub.ndjson":         "jsonl",
		"snap.parquet":       "parquet",
		"snap.db":            "sqlite",
		"animals.xlsx":       "xlsx",
		"readme.md":          "",
		"dados_para_analise": "",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Fatalf("Format(%q) = %q, want %q", in, got, want)
		}
	}
}
