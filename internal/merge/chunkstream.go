package merge

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// chunkStream reads term records sequentially from one partial-index
// chunk's ids/freqs file pair, one entry per next() call, through read
// buffers of 16 bytes per read-ahead entry so most records need no new read.
type chunkStream struct {
	idsFile   *os.File
	freqsFile *os.File
	idsR      *bufio.Reader
	freqsR    *bufio.Reader
	codec     codec.Codec
	idsPath   string
	freqsPath string
}

func openChunkStream(idsPath, freqsPath string, format codec.Format, readAhead int) (*chunkStream, error) {
	idsFile, err := os.Open(idsPath)
	if err != nil {
		return nil, xerrors.NewIOError("open", idsPath, err)
	}
	freqsFile, err := os.Open(freqsPath)
	if err != nil {
		idsFile.Close()
		return nil, xerrors.NewIOError("open", freqsPath, err)
	}
	return &chunkStream{
		idsFile:   idsFile,
		freqsFile: freqsFile,
		idsR:      bufio.NewReaderSize(idsFile, readAhead*16),
		freqsR:    bufio.NewReaderSize(freqsFile, readAhead*16),
		codec:     codec.ForFormat(format),
		idsPath:   idsPath,
		freqsPath: freqsPath,
	}, nil
}

// next reads the next term record, or returns ok=false at clean EOF.
func (cs *chunkStream) next() (entry, bool, error) {
	term, err := cs.idsR.ReadString(' ')
	if err != nil {
		if err == io.EOF && term == "" {
			return entry{}, false, nil
		}
		return entry{}, false, xerrors.NewFormatError("read_chunk_term", 0, err)
	}
	term = strings.TrimSuffix(term, " ")

	var countBuf [4]byte
	if _, err := io.ReadFull(cs.idsR, countBuf[:]); err != nil {
		return entry{}, false, xerrors.NewIOError("read", cs.idsPath, err)
	}
	count := int(binary.LittleEndian.Uint32(countBuf[:]))

	docIDs, err := cs.codec.DecodeInts(cs.idsR, count)
	if err != nil {
		return entry{}, false, xerrors.NewFormatError("decode_chunk_ids:"+cs.idsPath, 0, err)
	}
	freqs, err := cs.codec.DecodeInts(cs.freqsR, count)
	if err != nil {
		return entry{}, false, xerrors.NewFormatError("decode_chunk_freqs:"+cs.freqsPath, 0, err)
	}

	return entry{term: term, docIDs: docIDs, freqs: freqs}, true, nil
}

func (cs *chunkStream) close() {
	cs.idsFile.Close()
	cs.freqsFile.Close()
}
