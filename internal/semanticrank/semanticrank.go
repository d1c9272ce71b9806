// Package semanticrank defines the interface boundary for an external
// semantic reranking collaborator. No implementation is provided here: the
// scoring model itself is out of scope, and callers compose a Ranker with
// the BM25 pipeline in internal/query when one becomes available.
package semanticrank

import "github.com/standardbeagle/trecsearch/internal/types"

// Ranker reorders or rescoring a BM25 candidate set using a semantic
// signal external to the inverted index (e.g. a learned embedding model).
// Implementations are expected to live outside this module.
type Ranker interface {
	Rank(query string, candidates []types.Scored) ([]types.Scored, error)
}
