package tokenize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicSplit(t *testing.T) {
	require.Equal(t, []string{"alpha", "beta", "alpha"}, Tokenize([]byte("alpha beta alpha")))
}

func TestLowercasesASCII(t *testing.T) {
	require.Equal(t, []string{"hello", "world"}, Tokenize([]byte("Hello WORLD")))
}

func TestDigitsAreTokenMembers(t *testing.T) {
	require.Equal(t, []string{"abc123", "42"}, Tokenize([]byte("abc123 42")))
}

// S4: U+2003 EM SPACE (General Punctuation block) must split tokens but
// never appear inside one.
func TestUTF8ExclusionEmSpace(t *testing.T) {
	input := "hello world"
	require.Equal(t, []string{"hello", "world"}, Tokenize([]byte(input)))
}

func TestCJKSymbolsExcluded(t *testing.T) {
	// U+3001 IDEOGRAPHIC COMMA sits in the excluded CJK Symbols block.
	input := "foo、bar"
	require.Equal(t, []string{"foo", "bar"}, Tokenize([]byte(input)))
}

func TestNonExcludedMultiByteIsTokenMember(t *testing.T) {
	// U+00E9 (é) is outside both excluded blocks, so it's a token member
	// and is not casefolded.
	input := "café"
	require.Equal(t, []string{"café"}, Tokenize([]byte(input)))
}

func TestEmptyTokensDiscarded(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, Tokenize([]byte("   a   b   ")))
	require.Empty(t, Tokenize([]byte("   ")))
	require.Empty(t, Tokenize(nil))
}

// Property 3: tokenizing the joined output equals the input token sequence
// when the join separator is any non-token byte.
func TestTokenizeIdempotentUnderJoin(t *testing.T) {
	original := []string{"alpha", "beta", "gamma", "delta42"}
	for _, sep := range []string{" ", "\n", ",", "|"} {
		joined := strings.Join(original, sep)
		require.Equal(t, original, Tokenize([]byte(joined)), "sep=%q", sep)
	}
}

func TestInvalidUTF8SequenceIsNotATokenMember(t *testing.T) {
	// A lone continuation byte (0x80) is invalid UTF-8; utf8.DecodeRune
	// reports utf8.RuneError with size 1, which must not become a token
	// member and must not merge with surrounding ASCII.
	input := []byte{'a', 0x80, 'b'}
	require.Equal(t, []string{"a", "b"}, Tokenize(input))
}
