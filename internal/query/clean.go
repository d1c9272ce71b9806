package query

import (
	"sort"
	"strings"

	"github.com/standardbeagle/trecsearch/internal/tokenize"
)

// Clean tokenizes raw, deduplicates and lexicographically sorts the
// resulting terms, and rejoins them into a canonical query string. Queries
// that only differ in term order or ASCII casing clean to the same string.
func Clean(raw string) (cleaned string, terms []string) {
	tokens := tokenize.Tokenize([]byte(raw))

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	sort.Strings(terms)

	return strings.Join(terms, " "), terms
}
