// Package tokenize implements the UTF-8-aware tokenizer shared by corpus
// indexing and query cleaning: ASCII lowercasing, alnum splitting, and a
// punctuation-block exclusion for multi-byte code points.
package tokenize

import "unicode/utf8"

// Excluded Unicode blocks: General Punctuation and CJK Symbols/Punctuation.
// Multi-byte code points in these ranges never become part of a token.
const (
	generalPunctuationStart = 0x2000
	generalPunctuationEnd   = 0x206F
	cjkSymbolsStart         = 0x3000
	cjkSymbolsEnd           = 0x303F
)

// isASCIIAlnum reports whether b is an ASCII letter or digit.
func isASCIIAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

func isExcludedPunctuation(r rune) bool {
	return (r >= generalPunctuationStart && r <= generalPunctuationEnd) ||
		(r >= cjkSymbolsStart && r <= cjkSymbolsEnd)
}

// isTokenMember reports whether the rune r (which occupied size bytes of
// the input) is part of a token.
func isTokenMember(r rune, size int) bool {
	if size == 1 {
		return isASCIIAlnum(byte(r))
	}
	if r == utf8.RuneError {
		return false
	}
	return !isExcludedPunctuation(r)
}

// Tokenize splits text into lowercased alnum tokens: ASCII letters
// and digits are lowercased and classified by isalnum; any other valid
// UTF-8 code point is a token member unless it falls in the excluded
// punctuation blocks. A token ends at the first non-member code point,
// which is skipped and belongs to no token. Empty tokens are discarded.
//
// Two implementations given the same input must produce byte-identical
// token sequences (the tokenizer is specified as byte-exact).
func Tokenize(text []byte) []string {
	var tokens []string
	var cur []byte

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRune(text[i:])
		if isTokenMember(r, size) {
			if size == 1 {
				cur = append(cur, lowerASCII(text[i]))
			} else {
				cur = append(cur, text[i:i+size]...)
			}
			i += size
			continue
		}
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
		i += size
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}
	return tokens
}
