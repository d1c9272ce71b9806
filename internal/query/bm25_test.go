package query

import "testing"

func TestBM25ScoreIncreasesWithTermFrequency(t *testing.T) {
	p := DefaultBM25Params
	low := p.score(100, 10, 1, 50, 50)
	high := p.score(100, 10, 5, 50, 50)
	if !(high > low) {
		t.Fatalf("expected score to increase with term frequency: low=%v high=%v", low, high)
	}
}

func TestBM25ScoreDecreasesWithDocLength(t *testing.T) {
	p := DefaultBM25Params
	short := p.score(100, 10, 2, 20, 50)
	long := p.score(100, 10, 2, 500, 50)
	if !(short > long) {
		t.Fatalf("expected longer documents to score lower for the same raw term frequency: short=%v long=%v", short, long)
	}
}

func TestBM25RareTermScoresHigherThanCommonTerm(t *testing.T) {
	p := DefaultBM25Params
	rare := p.score(1000, 2, 3, 100, 100)
	common := p.score(1000, 900, 3, 100, 100)
	if !(rare > common) {
		t.Fatalf("expected a rare term to score higher than a common one: rare=%v common=%v", rare, common)
	}
}

func TestBM25ZeroAvgDocLenDoesNotDivideByZero(t *testing.T) {
	p := DefaultBM25Params
	got := p.score(10, 1, 1, 5, 0)
	if got <= 0 {
		t.Fatalf("expected a finite positive score with zero avgDocLen fallback, got %v", got)
	}
}
