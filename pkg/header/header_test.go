package header

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct{ in, want string }{
		{" ID ", "ID"},
		{"“Nome”", "Nome"},
		{"'peso'", "peso"},
		{"\"  quoted \" ", "quoted"},
		{"ＩＤ", "ID"}, // fullwidth
		{"grp/x", "grp/x"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{" ID ", "“ id ”", "e'́", "＂x＂", "  '\"a\"'  ", "café"}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestResolve(t *testing.T) {
	headers := SanitizeAll([]string{" ID ", "Peso", "Espécie"})
	got, ok := Resolve(headers, "id")
	if !ok || got != "ID" {
		t.Fatalf("Resolve id: got %q %v", got, ok)
	}
	got, ok = Resolve(headers, " ESPÉCIE ")
	if !ok || got != "Espécie" {
		t.Fatalf("Resolve especie: got %q %v", got, ok)
	}
	if _, ok := Resolve(headers, "missing"); ok {
		t.Fatal("expected no match")
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"a", "a", "", "a.1", "b"})
	want := []string{"a", "a.1", "column_3", "a.1.1", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Unique = %v, want %v", got, want)
		}
	}
}
