// Package types defines the shared value types passed between the indexing
// and query packages: document identifiers, postings, and the page-table
// record format shared by the builder, merger, and query engine.
package types

// DocID is a dense, non-negative identifier assigned to a document in the
// order the Corpus Reader encounters it. DocID values begin at 0.
type DocID uint32

// Posting is a single (document, term-frequency) pair within a posting list.
type Posting struct {
	DocID DocID
	Freq  uint32
}

// Document is a single parsed TREC record, as produced by the Corpus Reader.
type Document struct {
	ID          DocID
	DocNo       string
	URL         string
	TermCount   int
	BeginOffset int64
	EndOffset   int64
}

// LexiconEntry gives the byte offsets of one term's encoded postings in the
// final index and freqs files, plus its document frequency.
type LexiconEntry struct {
	Term       string
	IDsOffset  int64
	FreqOffset int64
	DocCount   int
}

// QueryMode selects how a multi-term query is combined.
type QueryMode int

const (
	// Conjunctive requires every resolved term to match (AND / intersection).
	Conjunctive QueryMode = iota
	// Disjunctive matches any resolved term (OR / union).
	Disjunctive
)

// Scored is a single ranked result: a document and its accumulated score.
type Scored struct {
	DocID DocID
	Score float64
}
