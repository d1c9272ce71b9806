// Package query implements the online query pipeline (C6): lexicon lookup,
// posting retrieval through the LRU cache, conjunctive/disjunctive
// evaluation, and BM25 ranking.
package query

import (
	"bufio"
	"container/heap"
	"os"

	"github.com/standardbeagle/trecsearch/internal/cache"
	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/index"
	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// DefaultNResults is the default number of ranked results returned by a
// search.
const DefaultNResults = 10

// Engine answers queries against a merged index: a lexicon, a page table,
// and the final index/freqs files, fronted by a posting cache.
type Engine struct {
	lexicon   map[string]types.LexiconEntry
	pageTable []types.Document
	idxPath   string
	freqsPath string
	format    codec.Format
	codec     codec.Codec
	cache     *cache.PostingCache
	bm25      BM25Params
	avgDocLen float64
}

// Options configures Open.
type Options struct {
	LexiconPath   string
	PageTablePath string
	IndexPath     string
	FreqsPath     string
	Format        codec.Format
	CacheCapacity int
	BM25          BM25Params
}

// Open loads the lexicon and page table into memory and returns an Engine
// ready to answer queries. The index and freqs files are read lazily,
// per-term, through the posting cache.
func Open(opts Options) (*Engine, error) {
	lexicon, err := LoadLexicon(opts.LexiconPath)
	if err != nil {
		return nil, err
	}
	pageTable, err := index.ReadPageTable(opts.PageTablePath)
	if err != nil {
		return nil, err
	}

	bm25 := opts.BM25
	if bm25 == (BM25Params{}) {
		bm25 = DefaultBM25Params
	}

	e := &Engine{
		lexicon:   lexicon,
		pageTable: pageTable,
		idxPath:   opts.IndexPath,
		freqsPath: opts.FreqsPath,
		format:    opts.Format,
		codec:     codec.ForFormat(opts.Format),
		cache:     cache.New(opts.CacheCapacity),
		bm25:      bm25,
		avgDocLen: averageDocLen(pageTable),
	}
	return e, nil
}

func averageDocLen(pageTable []types.Document) float64 {
	if len(pageTable) == 0 {
		return 0
	}
	total := 0
	for _, doc := range pageTable {
		total += doc.TermCount
	}
	return float64(total) / float64(len(pageTable))
}

// NumDocs returns the number of documents in the collection.
func (e *Engine) NumDocs() int { return len(e.pageTable) }

// CacheStats exposes the posting cache's hit/miss counters.
func (e *Engine) CacheStats() cache.Stats { return e.cache.Stats() }

// postings returns the decoded posting list for term, via the cache.
func (e *Engine) postings(term string) (cache.Entry, error) {
	le, ok := e.lexicon[term]
	if !ok {
		return cache.Entry{}, xerrors.NewLookupMiss(term)
	}
	return e.cache.Get(term, func(term string) (cache.Entry, error) {
		return e.loadPostings(le)
	})
}

func (e *Engine) loadPostings(le types.LexiconEntry) (cache.Entry, error) {
	idsFile, err := os.Open(e.idxPath)
	if err != nil {
		return cache.Entry{}, xerrors.NewIOError("open", e.idxPath, err)
	}
	defer idsFile.Close()
	if _, err := idsFile.Seek(le.IDsOffset, 0); err != nil {
		return cache.Entry{}, xerrors.NewIOError("seek", e.idxPath, err)
	}
	gaps, err := e.codec.DecodeInts(bufio.NewReader(idsFile), le.DocCount)
	if err != nil {
		return cache.Entry{}, xerrors.NewFormatError("decode_postings:"+e.idxPath, le.IDsOffset, err)
	}

	freqsFile, err := os.Open(e.freqsPath)
	if err != nil {
		return cache.Entry{}, xerrors.NewIOError("open", e.freqsPath, err)
	}
	defer freqsFile.Close()
	if _, err := freqsFile.Seek(le.FreqOffset, 0); err != nil {
		return cache.Entry{}, xerrors.NewIOError("seek", e.freqsPath, err)
	}
	freqs, err := e.codec.DecodeInts(bufio.NewReader(freqsFile), le.DocCount)
	if err != nil {
		return cache.Entry{}, xerrors.NewFormatError("decode_freqs:"+e.freqsPath, le.FreqOffset, err)
	}

	docIDs := make([]types.DocID, len(gaps))
	ids := codec.FromGaps(gaps)
	for i, v := range ids {
		docIDs[i] = types.DocID(v)
	}
	return cache.Entry{DocIDs: docIDs, Freqs: freqs}, nil
}

// Search cleans raw, resolves it against the lexicon (silently dropping
// unknown terms), evaluates it in the given mode, and returns the top n
// results ordered by descending score then ascending DocID.
func (e *Engine) Search(raw string, mode types.QueryMode, n int) ([]types.Scored, error) {
	if n <= 0 {
		n = DefaultNResults
	}
	_, terms := Clean(raw)
	if len(terms) == 0 {
		return []types.Scored{}, nil
	}

	type resolved struct {
		term  string
		entry cache.Entry
		docFq int
	}
	var resolvedTerms []resolved
	for _, term := range terms {
		le, ok := e.lexicon[term]
		if !ok {
			continue // LookupMiss: silently dropped
		}
		postings, err := e.postings(term)
		if err != nil {
			return nil, err
		}
		resolvedTerms = append(resolvedTerms, resolved{term: term, entry: postings, docFq: le.DocCount})
	}
	if len(resolvedTerms) == 0 {
		return []types.Scored{}, nil
	}

	scores := make(map[types.DocID]float64)
	docSeenBy := make(map[types.DocID]int) // how many resolved terms hit this doc

	for _, rt := range resolvedTerms {
		for i, docID := range rt.entry.DocIDs {
			freq := rt.entry.Freqs[i]
			docLen := e.docLen(docID)
			scores[docID] += e.bm25.score(e.NumDocs(), rt.docFq, freq, docLen, e.avgDocLen)
			docSeenBy[docID]++
		}
	}

	required := 1
	if mode == types.Conjunctive {
		required = len(resolvedTerms)
	}

	h := &scoredHeap{}
	for docID, hitCount := range docSeenBy {
		if hitCount < required {
			continue
		}
		heap.Push(h, types.Scored{DocID: docID, Score: scores[docID]})
		if h.Len() > n {
			heap.Pop(h)
		}
	}

	results := make([]types.Scored, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(types.Scored)
	}
	return results, nil
}

func (e *Engine) docLen(id types.DocID) int {
	if int(id) < 0 || int(id) >= len(e.pageTable) {
		return 0
	}
	return e.pageTable[id].TermCount
}

// Document returns the page-table entry for a docID.
func (e *Engine) Document(id types.DocID) (types.Document, bool) {
	if int(id) < 0 || int(id) >= len(e.pageTable) {
		return types.Document{}, false
	}
	return e.pageTable[id], true
}

// scoredHeap is a min-heap over (Score, -DocID) so that Pop repeatedly
// removes the worst-ranked candidate, letting Search keep only the best n
// results in bounded memory. Ties break toward the lower DocID, matching
// a deterministic tie-break.
type scoredHeap []types.Scored

func (h scoredHeap) Len() int { return len(h) }
func (h scoredHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}
func (h scoredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap) Push(x any)   { *h = append(*h, x.(types.Scored)) }
func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
