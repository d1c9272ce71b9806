package corpus

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCorpus = `<DOC>
<DOCNO>D0</DOCNO>
<TEXT>
http://example.com/0
alpha beta alpha
</TEXT>
</DOC>
<DOC>
<DOCNO>D1</DOCNO>
<TEXT>
http://example.com/1
beta gamma
</TEXT>
</DOC>
`

func TestReaderParsesDocuments(t *testing.T) {
	r := NewReader(strings.NewReader(sampleCorpus))

	doc0, body0, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "D0", doc0.DocNo)
	require.Equal(t, "http://example.com/0", doc0.URL)
	require.Contains(t, string(body0), "alpha beta alpha")

	doc1, body1, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "D1", doc1.DocNo)
	require.Equal(t, doc0.ID+1, doc1.ID)
	require.Contains(t, string(body1), "beta gamma")

	_, _, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderDocIDsAreDenseFromZero(t *testing.T) {
	r := NewReader(strings.NewReader(sampleCorpus))
	doc0, _, err := r.Next()
	require.NoError(t, err)
	require.EqualValues(t, 0, doc0.ID)
}

func TestReaderToleratesMissingNewlines(t *testing.T) {
	const noNewlines = `<DOC><DOCNO>D0</DOCNO><TEXT>http://x/0
body text</TEXT></DOC>`
	r := NewReader(strings.NewReader(noNewlines))
	doc, _, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "D0", doc.DocNo)
}

func TestReaderFatalOnMissingDocNo(t *testing.T) {
	const malformed = `<DOC><TEXT>http://x/0
body</TEXT></DOC>`
	r := NewReader(strings.NewReader(malformed))
	_, _, err := r.Next()
	require.Error(t, err)
}

func TestReaderFatalOnTruncatedFinalDocument(t *testing.T) {
	const truncated = `<DOC>
<DOCNO>D0</DOCNO>
<TEXT>
http://x/0
unterminated body`
	r := NewReader(strings.NewReader(truncated))
	_, _, err := r.Next()
	require.Error(t, err)
}

func TestReaderSmallBufferForcesRefill(t *testing.T) {
	// A buffer smaller than a single document forces the tail-slide refill
	// path while each document is parsed.
	r := NewReaderSize(strings.NewReader(sampleCorpus), 64)

	doc0, body0, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "D0", doc0.DocNo)
	require.Contains(t, string(body0), "alpha beta alpha")

	doc1, _, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "D1", doc1.DocNo)
}

func TestReaderOffsetsAreMonotonic(t *testing.T) {
	r := NewReader(strings.NewReader(sampleCorpus))
	doc0, _, err := r.Next()
	require.NoError(t, err)
	doc1, _, err := r.Next()
	require.NoError(t, err)

	require.True(t, doc0.BeginOffset < doc0.EndOffset)
	require.True(t, doc0.EndOffset < doc1.BeginOffset)
}

func TestReaderRejectsInvalidUTF8(t *testing.T) {
	corpus := "<DOC>\n<DOCNO>D0</DOCNO>\n<TEXT>\nhttp://x/0\n" + string([]byte{0xff, 0xfe}) + "\n</TEXT>\n</DOC>\n"
	r := NewReader(strings.NewReader(corpus))
	_, _, err := r.Next()
	require.Error(t, err)
}
