package csvio

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func TestStreamRoundTrip(t *testing.T) {
	src := makeFrame(25)
	p := filepath.Join(t.TempDir(), "chunks.csv")
	w, err := NewStreamWriter(p, src.Columns(), WriterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := w.Write(src); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	sr, c, err := NewStreamReader(p, ReaderOptions{}, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()
	total, chunks := 0, 0
	for {
		fr, err := sr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		total += fr.Rows()
		chunks++
	}
	if total != 50 || chunks != 5 {
		t.Fatalf("expected 50 rows in 5 chunks, got %d in %d", total, chunks)
	}
}
