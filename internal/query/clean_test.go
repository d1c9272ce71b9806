package query

import "testing"

func TestCleanDedupesAndSorts(t *testing.T) {
	cleaned, terms := Clean("zebra Alpha zebra alpha")
	if cleaned != "alpha zebra" {
		t.Fatalf("cleaned = %q, want %q", cleaned, "alpha zebra")
	}
	if len(terms) != 2 || terms[0] != "alpha" || terms[1] != "zebra" {
		t.Fatalf("terms = %v", terms)
	}
}

func TestCleanEmptyQuery(t *testing.T) {
	cleaned, terms := Clean("   ")
	if cleaned != "" || len(terms) != 0 {
		t.Fatalf("expected empty clean result, got cleaned=%q terms=%v", cleaned, terms)
	}
}

func TestCleanIsOrderInsensitive(t *testing.T) {
	a, _ := Clean("cat dog")
	b, _ := Clean("dog cat")
	if a != b {
		t.Fatalf("expected order-insensitive cleaning, got %q vs %q", a, b)
	}
}
