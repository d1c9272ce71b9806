package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/trecsearch/internal/codec"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	build, q, err := Load(filepath.Join(t.TempDir(), "missing.kdl"))
	require.NoError(t, err)
	require.Equal(t, DefaultBuildConfig(), build)
	require.Equal(t, DefaultQueryConfig(), q)
}

func TestLoadOverridesPresentSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trecsearch.kdl")
	content := `
build {
    output_entry_size 50000
    format "bin"
}
query {
    cache_capacity 256
    bm25 {
        k1 1.2
        b 0.75
    }
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	build, q, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 50000, build.OutputEntrySize)
	require.Equal(t, codec.Bin, build.Format)
	require.Equal(t, DefaultBuildConfig().BufferSize, build.BufferSize, "unset fields must keep their default")

	require.Equal(t, 256, q.CacheCapacity)
	require.Equal(t, 1.2, q.BM25.K1)
	require.Equal(t, 0.75, q.BM25.B)
	require.Equal(t, DefaultQueryConfig().NResults, q.NResults)
}

func TestLoadMalformedKDLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.kdl")
	require.NoError(t, os.WriteFile(path, []byte("build { this is not valid kdl {{{"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
}
