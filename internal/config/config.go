// Package config loads build and query configuration from an optional KDL
// file, falling back to documented defaults when the file is absent or a
// setting is unspecified.
package config

import (
	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/query"
)

// BuildConfig configures the offline indexing pipeline (corpus reader,
// tokenizer, builder, merger).
type BuildConfig struct {
	BufferSize          int64 // corpus reader refill buffer size, bytes
	OutputEntrySize     int   // builder spill threshold, distinct terms
	InputIndexChunkSize int   // merger read-ahead batch size, postings
	Format              codec.Format
}

// DefaultBuildConfig uses the package's documented defaults.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		BufferSize:          256 << 20,
		OutputEntrySize:     1_000_000,
		InputIndexChunkSize: 8192,
		Format:              codec.Vbyte,
	}
}

// QueryConfig configures the online query pipeline (engine, cache, ranking).
type QueryConfig struct {
	CacheCapacity int
	NResults      int
	Workers       int
	BM25          query.BM25Params
}

// DefaultQueryConfig uses the package's documented defaults.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		CacheCapacity: 131_072,
		NResults:      10,
		Workers:       0, // 0 = one worker per logical CPU
		BM25:          query.DefaultBM25Params,
	}
}
