// Package merge implements the Merger (C4): a k-way external merge of the
// sorted partial-index chunks produced by the Builder into a single final
// index file, a freqs file, and a lexicon.
package merge

import (
	"bufio"
	"container/heap"
	"fmt"
	"os"
	"sort"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/index"
	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// DefaultInputIndexChunkSize is the default read-ahead size per chunk
// stream, in entries; each stream's read buffer holds 16 bytes per entry.
const DefaultInputIndexChunkSize = 8192

// Options configures a merge run.
type Options struct {
	OutDir              string
	NumChunks           int
	Format              codec.Format
	InputIndexChunkSize int // read-ahead batch size per input stream
}

// entry is one (term, postings) pair read from a chunk's ids/freqs files.
type entry struct {
	term   string
	docIDs []uint32
	freqs  []uint32
}

// Merge performs the k-way merge of opts.NumChunks chunks and returns the
// final lexicon (also persisted to storage_<ext>.txt in opts.OutDir).
func Merge(opts Options) ([]types.LexiconEntry, error) {
	if opts.InputIndexChunkSize <= 0 {
		opts.InputIndexChunkSize = DefaultInputIndexChunkSize
	}

	streams := make([]*chunkStream, 0, opts.NumChunks)
	for i := 0; i < opts.NumChunks; i++ {
		idsPath, freqsPath := index.ChunkPaths(opts.OutDir, i, opts.Format)
		ok, err := index.VerifyChunk(idsPath, freqsPath)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, xerrors.NewFormatError("verify_chunk:"+idsPath, 0, fmt.Errorf("checksum mismatch, chunk is corrupt or truncated"))
		}

		cs, err := openChunkStream(idsPath, freqsPath, opts.Format, opts.InputIndexChunkSize)
		if err != nil {
			return nil, err
		}
		streams = append(streams, cs)
	}
	defer func() {
		for _, cs := range streams {
			cs.close()
		}
	}()

	ext := index.FormatExt(opts.Format)
	finalIdxPath := opts.OutDir + "/merged_index." + ext
	freqsPath := opts.OutDir + "/freqs." + ext
	lexiconPath := opts.OutDir + "/storage_" + ext + ".txt"

	w, err := newMergeWriter(finalIdxPath, freqsPath, opts.Format)
	if err != nil {
		return nil, err
	}
	defer w.close()

	h := &entryHeap{}
	heap.Init(h)
	for i, cs := range streams {
		e, ok, err := cs.next()
		if err != nil {
			return nil, err
		}
		if ok {
			heap.Push(h, heapItem{streamIdx: i, entry: e})
		}
	}

	var current *mergedEntry
	var lexicon []types.LexiconEntry

	flushCurrent := func() error {
		if current == nil {
			return nil
		}
		le, err := w.writeEntry(current.term, current.docIDs, current.freqs)
		if err != nil {
			return err
		}
		lexicon = append(lexicon, le)
		current = nil
		return nil
	}

	for h.Len() > 0 {
		item := heap.Pop(h).(heapItem)

		if current != nil && current.term == item.entry.term {
			// Concatenation preserves docID order: each contributing
			// chunk's doc_ids is monotone and chunks produce disjoint
			// docID ranges because the Builder visits documents in
			// strictly ascending order.
			current.docIDs = append(current.docIDs, item.entry.docIDs...)
			current.freqs = append(current.freqs, item.entry.freqs...)
		} else {
			if err := flushCurrent(); err != nil {
				return nil, err
			}
			current = &mergedEntry{
				term:   item.entry.term,
				docIDs: append([]uint32(nil), item.entry.docIDs...),
				freqs:  append([]uint32(nil), item.entry.freqs...),
			}
		}

		cs := streams[item.streamIdx]
		next, ok, err := cs.next()
		if err != nil {
			return nil, err
		}
		if ok {
			heap.Push(h, heapItem{streamIdx: item.streamIdx, entry: next})
		}
	}
	if err := flushCurrent(); err != nil {
		return nil, err
	}

	if err := w.flush(); err != nil {
		return nil, err
	}
	if err := writeLexicon(lexiconPath, lexicon); err != nil {
		return nil, err
	}
	return lexicon, nil
}

type mergedEntry struct {
	term   string
	docIDs []uint32
	freqs  []uint32
}

// heapItem is one pending entry from one chunk stream, ordered by
// (term, first docID) ties on term are broken by the lower
// first-docID side draining first (optimization, not a correctness
// requirement — different chunks never share a docID).
type heapItem struct {
	streamIdx int
	entry     entry
}

type entryHeap []heapItem

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].entry.term != h[j].entry.term {
		return h[i].entry.term < h[j].entry.term
	}
	fi, fj := firstDocID(h[i].entry), firstDocID(h[j].entry)
	return fi < fj
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(heapItem)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func firstDocID(e entry) uint32 {
	if len(e.docIDs) == 0 {
		return 0
	}
	return e.docIDs[0]
}

func writeLexicon(path string, lexicon []types.LexiconEntry) error {
	sort.Slice(lexicon, func(i, j int) bool { return lexicon[i].Term < lexicon[j].Term })

	f, err := os.Create(path)
	if err != nil {
		return xerrors.NewIOError("create", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, le := range lexicon {
		if _, err := fmt.Fprintf(w, "%s %d %d %d\n", le.Term, le.IDsOffset, le.FreqOffset, le.DocCount); err != nil {
			return xerrors.NewIOError("write", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return xerrors.NewIOError("flush", path, err)
	}
	return nil
}
