package merge

import (
	"bufio"
	"os"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// mergeWriter appends one finalized term's postings at a time to the final
// index and freqs files, tracking the byte offsets the lexicon needs.
type mergeWriter struct {
	idxFile   *os.File
	freqsFile *os.File
	idxW      *bufio.Writer
	freqsW    *bufio.Writer
	idxPath   string
	freqsPath string
	codec     codec.Codec
	idxOff    int64
	freqsOff  int64
}

func newMergeWriter(idxPath, freqsPath string, format codec.Format) (*mergeWriter, error) {
	idxFile, err := os.Create(idxPath)
	if err != nil {
		return nil, xerrors.NewIOError("create", idxPath, err)
	}
	freqsFile, err := os.Create(freqsPath)
	if err != nil {
		idxFile.Close()
		return nil, xerrors.NewIOError("create", freqsPath, err)
	}
	return &mergeWriter{
		idxFile:   idxFile,
		freqsFile: freqsFile,
		idxW:      bufio.NewWriter(idxFile),
		freqsW:    bufio.NewWriter(freqsFile),
		idxPath:   idxPath,
		freqsPath: freqsPath,
		codec:     codec.ForFormat(format),
	}, nil
}

// writeEntry appends one term's fully merged postings and returns the
// lexicon entry pointing at the offsets it was written at. docIDs are
// gap-coded before encoding; term frequencies are not ascending and are
// encoded as-is.
func (w *mergeWriter) writeEntry(term string, docIDs, freqs []uint32) (types.LexiconEntry, error) {
	idsOffset := w.idxOff
	freqOffset := w.freqsOff

	gaps := codec.ToGaps(docIDs)
	idsBytes := w.codec.EncodeInts(gaps)
	n, err := w.idxW.Write(idsBytes)
	if err != nil {
		return types.LexiconEntry{}, xerrors.NewIOError("write", w.idxPath, err)
	}
	w.idxOff += int64(n)

	freqBytes := w.codec.EncodeInts(freqs)
	n, err = w.freqsW.Write(freqBytes)
	if err != nil {
		return types.LexiconEntry{}, xerrors.NewIOError("write", w.freqsPath, err)
	}
	w.freqsOff += int64(n)

	return types.LexiconEntry{
		Term:       term,
		IDsOffset:  idsOffset,
		FreqOffset: freqOffset,
		DocCount:   len(docIDs),
	}, nil
}

func (w *mergeWriter) flush() error {
	if err := w.idxW.Flush(); err != nil {
		return xerrors.NewIOError("flush", w.idxPath, err)
	}
	if err := w.freqsW.Flush(); err != nil {
		return xerrors.NewIOError("flush", w.freqsPath, err)
	}
	return nil
}

func (w *mergeWriter) close() {
	w.idxFile.Close()
	w.freqsFile.Close()
}
