package corpus

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Open opens a TREC dataset file at path, transparently decompressing it
// through klauspost/compress's gzip reader when the name ends in .gz. The
// returned io.ReadCloser yields the logical (decompressed) byte stream that
// Reader.Next's offsets are relative to.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipCloser{gz: gz, file: f}, nil
}

// gzipCloser closes both the gzip reader and the underlying file handle.
type gzipCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
