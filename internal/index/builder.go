// Package index implements the Partial-Index Builder (C3): it accumulates
// term -> (docIDs, termFreqs) in memory as documents stream in, and spills
// a lexicographically sorted chunk to disk once the term count threshold
// is reached.
package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/tokenize"
	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// DefaultOutputEntrySize is the default term-count spill threshold.
const DefaultOutputEntrySize = 1_000_000

// postingAccumulator is the growing (docIDs, freqs) pair for one term
// within the current in-memory chunk. Invariant: len(docIDs) == len(freqs)
// at all times between documents.
type postingAccumulator struct {
	docIDs []uint32
	freqs  []uint32
}

// Builder accumulates term->postings in memory and spills sorted chunks to
// an output directory as the term count grows past OutputEntrySize.
type Builder struct {
	OutDir          string
	OutputEntrySize int
	Format          codec.Format

	terms     map[string]*postingAccumulator
	perDocTF  map[string]uint32 // cleared after each document
	chunkNo   int
	pageTable []types.Document
	docNoSeen map[uint64]types.DocID // keyed by xxhash of docno, not the string itself
}

// NewBuilder creates a Builder that spills chunks into outDir.
func NewBuilder(outDir string, outputEntrySize int, format codec.Format) *Builder {
	if outputEntrySize <= 0 {
		outputEntrySize = DefaultOutputEntrySize
	}
	return &Builder{
		OutDir:          outDir,
		OutputEntrySize: outputEntrySize,
		Format:          format,
		terms:           make(map[string]*postingAccumulator),
		perDocTF:        make(map[string]uint32),
		docNoSeen:       make(map[uint64]types.DocID),
	}
}

// AddDocument tokenizes body and folds its tokens into the in-memory
// postings map, then appends doc (with TermCount filled in) to the page
// table. Spills a chunk to disk if the distinct-term threshold is crossed.
//
// The first-occurrence path appends the docID before counting the
// frequency, preserving len(docIDs) == len(freqs) at the document boundary
// even though the increment itself happens for every token (open
// question).
func (b *Builder) AddDocument(doc types.Document, body []byte) error {
	docNoHash := xxhash.Sum64String(doc.DocNo)
	if prev, dup := b.docNoSeen[docNoHash]; dup {
		return xerrors.NewFormatError("add_document", doc.BeginOffset,
			fmt.Errorf("duplicate docno %q (first seen as doc %d)", doc.DocNo, prev))
	}
	b.docNoSeen[docNoHash] = doc.ID

	clear(b.perDocTF)
	tokens := tokenize.Tokenize(body)
	for _, w := range tokens {
		acc, ok := b.terms[w]
		if !ok {
			acc = &postingAccumulator{}
			b.terms[w] = acc
		}
		if len(acc.docIDs) == 0 || acc.docIDs[len(acc.docIDs)-1] != uint32(doc.ID) {
			acc.docIDs = append(acc.docIDs, uint32(doc.ID))
		}
		b.perDocTF[w]++
	}
	for w, tf := range b.perDocTF {
		b.terms[w].freqs = append(b.terms[w].freqs, tf)
	}

	doc.TermCount = len(tokens)
	b.pageTable = append(b.pageTable, doc)

	if len(b.terms) > b.OutputEntrySize {
		return b.spill()
	}
	return nil
}

// FormatExt returns the file extension used for a given codec Format.
func FormatExt(f codec.Format) string {
	if f == codec.Bin {
		return "bin"
	}
	return "vbyte"
}

// ChunkPaths returns the (ids, freqs) file paths for the chunk with the
// given zero-padded index and codec format.
func ChunkPaths(outDir string, chunkNo int, format codec.Format) (idsPath, freqsPath string) {
	ext := FormatExt(format)
	idsPath = filepath.Join(outDir, fmt.Sprintf("%03d.%s", chunkNo, ext))
	freqsPath = filepath.Join(outDir, fmt.Sprintf("%03d_freqs.%s", chunkNo, ext))
	return
}

// chunkSumPath returns the checksum companion file path for a chunk's ids
// file, used by VerifyChunk to detect truncated or corrupted spills.
func chunkSumPath(idsPath string) string {
	return idsPath + ".sum"
}

// VerifyChunk recomputes the xxhash of a chunk's ids and freqs files and
// compares it against the checksum recorded when the chunk was spilled.
func VerifyChunk(idsPath, freqsPath string) (bool, error) {
	want, err := os.ReadFile(chunkSumPath(idsPath))
	if err != nil {
		return false, xerrors.NewIOError("read", chunkSumPath(idsPath), err)
	}
	got, err := chunkChecksum(idsPath, freqsPath)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(want)) == got, nil
}

// chunkChecksum hashes the concatenated ids+freqs file contents with
// xxhash, returning it as a hex string.
func chunkChecksum(idsPath, freqsPath string) (string, error) {
	h := xxhash.New()
	for _, p := range []string{idsPath, freqsPath} {
		f, err := os.Open(p)
		if err != nil {
			return "", xerrors.NewIOError("open", p, err)
		}
		_, copyErr := io.Copy(h, f)
		f.Close()
		if copyErr != nil {
			return "", xerrors.NewIOError("read", p, copyErr)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// spill writes the current in-memory term map to disk as one sorted chunk
// and clears the term map; the page table is kept and returned by Finish.
func (b *Builder) spill() error {
	terms := make([]string, 0, len(b.terms))
	for t := range b.terms {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	idsPath, freqsPath := ChunkPaths(b.OutDir, b.chunkNo, b.Format)
	if err := writeChunk(idsPath, freqsPath, terms, b.terms, b.Format); err != nil {
		return err
	}
	sum, err := chunkChecksum(idsPath, freqsPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(chunkSumPath(idsPath), []byte(sum+"\n"), 0o644); err != nil {
		return xerrors.NewIOError("write", chunkSumPath(idsPath), err)
	}

	b.chunkNo++
	b.terms = make(map[string]*postingAccumulator)
	return nil
}

// writeChunk writes the ids file as a sequence of records, one per term in
// sorted order: the term bytes, a space, a 4-byte little-endian count of
// postings for that term, then the raw (not yet gap-coded) docIDs encoded
// with the chunk's codec. The freqs file holds the parallel term-frequency
// runs in the same term order with no extra framing: the merger reads both
// files in lockstep, reusing the count it just read from the ids record.
//
// docIDs are not gap-coded at this stage because chunks only ever hold a
// subset of the full docID space; the Merger re-gaps each term's final,
// fully concatenated run starting from 0.
func writeChunk(idsPath, freqsPath string, terms []string, accum map[string]*postingAccumulator, format codec.Format) error {
	idsFile, err := os.Create(idsPath)
	if err != nil {
		return xerrors.NewIOError("create", idsPath, err)
	}
	defer idsFile.Close()
	freqsFile, err := os.Create(freqsPath)
	if err != nil {
		return xerrors.NewIOError("create", freqsPath, err)
	}
	defer freqsFile.Close()

	idsW := bufio.NewWriter(idsFile)
	freqsW := bufio.NewWriter(freqsFile)

	c := codec.ForFormat(format)
	var countBuf [4]byte
	for _, term := range terms {
		acc := accum[term]

		if _, err := idsW.WriteString(term); err != nil {
			return xerrors.NewIOError("write", idsPath, err)
		}
		if err := idsW.WriteByte(' '); err != nil {
			return xerrors.NewIOError("write", idsPath, err)
		}
		binary.LittleEndian.PutUint32(countBuf[:], uint32(len(acc.docIDs)))
		if _, err := idsW.Write(countBuf[:]); err != nil {
			return xerrors.NewIOError("write", idsPath, err)
		}
		if _, err := idsW.Write(c.EncodeInts(acc.docIDs)); err != nil {
			return xerrors.NewIOError("write", idsPath, err)
		}

		if _, err := freqsW.Write(c.EncodeInts(acc.freqs)); err != nil {
			return xerrors.NewIOError("write", freqsPath, err)
		}
	}

	if err := idsW.Flush(); err != nil {
		return xerrors.NewIOError("flush", idsPath, err)
	}
	if err := freqsW.Flush(); err != nil {
		return xerrors.NewIOError("flush", freqsPath, err)
	}
	return nil
}

// Finish flushes any remaining in-memory terms as a final chunk (even if
// below threshold) and returns the total number of chunks written and the
// assembled page table.
func (b *Builder) Finish() (numChunks int, pageTable []types.Document, err error) {
	if len(b.terms) > 0 {
		if err := b.spill(); err != nil {
			return 0, nil, err
		}
	}
	return b.chunkNo, b.pageTable, nil
}
