// Package corpus implements the Corpus Reader (C1): a streaming parser for
// TREC-style documents of the form
//
//	<DOC>\n<DOCNO>...</DOCNO>\n<TEXT>\n<url-line>\n<body>...</TEXT>\n</DOC>\n
//
// The reader advances a cursor through a fixed-size buffer that is refilled
// from the underlying byte stream (plain file or gzip) by copying the
// unread tail to the buffer head and reading fresh bytes to fill it. It
// tracks a global byte offset into the logical (decompressed) stream so
// that Document.BeginOffset/EndOffset can be used later to re-fetch the raw
// body for snippet generation.
package corpus

import (
	"bytes"
	"io"
	"log"
	"unicode/utf8"

	"github.com/standardbeagle/trecsearch/internal/types"
	"github.com/standardbeagle/trecsearch/internal/xerrors"
)

// DefaultBufferSize is the default input buffer capacity (256 MiB).
const DefaultBufferSize = 256 << 20

const (
	tagDocOpen     = "<DOC>"
	tagDocNoOpen   = "<DOCNO>"
	tagDocNoClose  = "</DOCNO>"
	tagTextOpen    = "<TEXT>"
	tagTextClose   = "</TEXT>"
	tagDocClose    = "</DOC>"
)

// Reader parses a sequence of TREC <DOC> records out of an underlying byte
// stream, assigning each a dense, monotonically increasing DocID.
type Reader struct {
	src io.Reader
	buf []byte

	// The valid window of data is buf[pos:end]. base is the absolute
	// logical-stream offset of buf[0] for the current window.
	pos, end int
	base     int64

	eofReached bool
	nextID     types.DocID
}

// NewReader creates a Reader with the default buffer size.
func NewReader(src io.Reader) *Reader {
	return NewReaderSize(src, DefaultBufferSize)
}

// NewReaderSize creates a Reader with an explicit buffer capacity, mainly
// useful for tests that want to exercise the refill path without a 256 MiB
// allocation.
func NewReaderSize(src io.Reader, bufSize int) *Reader {
	return &Reader{src: src, buf: make([]byte, 0, bufSize)[:0]}
}

// offset returns the absolute logical-stream position of the read cursor.
func (r *Reader) offset() int64 { return r.base + int64(r.pos) }

// fill attempts to make more data available at the cursor: it slides the
// unread tail to the buffer head (freeing space consumed by already-parsed
// bytes) and then reads fresh bytes from src to extend the window. Returns
// false once the buffer is full with no progress possible, or the source is
// exhausted.
func (r *Reader) fill() bool {
	if r.pos > 0 {
		tail := r.end - r.pos
		copy(r.buf[:tail], r.buf[r.pos:r.end])
		r.base += int64(r.pos)
		r.pos = 0
		r.end = tail
	}
	if cap(r.buf) == 0 {
		return false
	}
	if r.end == cap(r.buf) {
		return false // record exceeds the configured buffer capacity
	}
	if r.eofReached {
		return false
	}
	n, err := r.src.Read(r.buf[r.end:cap(r.buf)])
	r.end += n
	r.buf = r.buf[:r.end]
	if err != nil {
		if err == io.EOF {
			r.eofReached = true
		}
		return n > 0
	}
	return true
}

// ensure guarantees at least n unread bytes are available at the cursor,
// refilling as needed. Returns false if the stream ends first.
func (r *Reader) ensure(n int) bool {
	for r.end-r.pos < n {
		if !r.fill() {
			return false
		}
	}
	return true
}

// atLiteral reports whether the cursor is positioned at the exact byte
// sequence s, pulling in more data if necessary.
func (r *Reader) atLiteral(s string) bool {
	if !r.ensure(len(s)) {
		return false
	}
	return bytes.Equal(r.buf[r.pos:r.pos+len(s)], []byte(s))
}

// consumeLiteral requires the exact literal s at the cursor, advancing past
// it. A mismatch or truncated stream is a fatal FormatError.
func (r *Reader) consumeLiteral(op, s string) error {
	if !r.atLiteral(s) {
		return xerrors.NewFormatError(op, r.offset(), errExpected(s))
	}
	r.pos += len(s)
	return nil
}

type expectedLiteralError string

func (e expectedLiteralError) Error() string { return "expected literal " + string(e) }

func errExpected(s string) error { return expectedLiteralError(s) }

// skipOptionalNewline consumes a single trailing '\n' if present. A missing
// newline is tolerated: it emits a recoverable warning and does not
// consume a byte.
func (r *Reader) skipOptionalNewline(after string) {
	if r.ensure(1) && r.buf[r.pos] == '\n' {
		r.pos++
		return
	}
	log.Printf("corpus: warning: missing newline after %s at offset %d", after, r.offset())
}

// readUntil scans forward for the literal delim, returning the bytes before
// it (copied, since they may be overwritten by a later slide) without
// consuming delim itself. Fatal if delim is never found before the stream
// ends or the buffer is exhausted (a truncated final document).
func (r *Reader) readUntil(op, delim string) ([]byte, error) {
	needle := []byte(delim)
	for {
		if idx := bytes.Index(r.buf[r.pos:r.end], needle); idx >= 0 {
			out := make([]byte, idx)
			copy(out, r.buf[r.pos:r.pos+idx])
			r.pos += idx
			return out, nil
		}
		if !r.fill() {
			return nil, xerrors.NewFormatError(op, r.offset(), errExpected(delim))
		}
	}
}

// atEOF reports whether the cursor has reached the true end of the
// logical stream with no more bytes pending.
func (r *Reader) atEOF() bool {
	if r.pos < r.end {
		return false
	}
	return !r.fill() && r.eofReached && r.pos >= r.end
}

// Next parses the next TREC document, returning its metadata and the raw
// <TEXT> interior (the "body", including its leading URL line) for
// tokenization by the caller. Returns io.EOF when the stream is exhausted
// at a document boundary.
func (r *Reader) Next() (types.Document, []byte, error) {
	if r.atEOF() {
		return types.Document{}, nil, io.EOF
	}

	if err := r.consumeLiteral("expect_doc", tagDocOpen); err != nil {
		return types.Document{}, nil, err
	}
	r.skipOptionalNewline("<DOC>")

	if err := r.consumeLiteral("expect_docno_open", tagDocNoOpen); err != nil {
		return types.Document{}, nil, err
	}
	docnoBytes, err := r.readUntil("read_docno", tagDocNoClose)
	if err != nil {
		return types.Document{}, nil, err
	}
	if !utf8.Valid(docnoBytes) {
		return types.Document{}, nil, xerrors.NewEncodingError("read_docno", r.offset(), errInvalidUTF8)
	}
	docno := string(docnoBytes)

	if err := r.consumeLiteral("expect_docno_close", tagDocNoClose); err != nil {
		return types.Document{}, nil, err
	}
	r.skipOptionalNewline("</DOCNO>")

	if err := r.consumeLiteral("expect_text_open", tagTextOpen); err != nil {
		return types.Document{}, nil, err
	}
	r.skipOptionalNewline("<TEXT>")

	beginOffset := r.offset()
	body, err := r.readUntil("read_body", tagTextClose)
	if err != nil {
		return types.Document{}, nil, err
	}
	endOffset := r.offset()
	if !utf8.Valid(body) {
		return types.Document{}, nil, xerrors.NewEncodingError("read_body", beginOffset, errInvalidUTF8)
	}

	if err := r.consumeLiteral("expect_text_close", tagTextClose); err != nil {
		return types.Document{}, nil, err
	}
	r.skipOptionalNewline("</TEXT>")

	if err := r.consumeLiteral("expect_doc_close", tagDocClose); err != nil {
		return types.Document{}, nil, err
	}
	r.skipOptionalNewline("</DOC>")

	doc := types.Document{
		ID:          r.nextID,
		DocNo:       docno,
		URL:         firstNonEmptyLine(body),
		BeginOffset: beginOffset,
		EndOffset:   endOffset,
	}
	r.nextID++
	return doc, body, nil
}

var errInvalidUTF8 = expectedLiteralError("valid UTF-8")

// firstNonEmptyLine returns the first non-empty line of body, per the
// Document.URL invariant.
func firstNonEmptyLine(body []byte) string {
	for _, line := range bytes.Split(body, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 {
			return string(trimmed)
		}
	}
	return ""
}
