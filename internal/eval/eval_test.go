package eval

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/trecsearch/internal/codec"
	"github.com/standardbeagle/trecsearch/internal/index"
	"github.com/standardbeagle/trecsearch/internal/merge"
	"github.com/standardbeagle/trecsearch/internal/query"
	"github.com/standardbeagle/trecsearch/internal/types"
)

func buildTestEngine(t *testing.T) *query.Engine {
	t.Helper()
	dir := t.TempDir()

	b := index.NewBuilder(dir, index.DefaultOutputEntrySize, codec.Vbyte)
	docs := []struct {
		docno string
		body  string
	}{
		{"D0", "alpha beta alpha"},
		{"D1", "beta gamma"},
		{"D2", "alpha gamma gamma"},
	}
	for i, d := range docs {
		require.NoError(t, b.AddDocument(types.Document{ID: types.DocID(i), DocNo: d.docno}, []byte(d.body)))
	}
	numChunks, pageTable, err := b.Finish()
	require.NoError(t, err)

	pageTablePath := filepath.Join(dir, "docs.txt")
	require.NoError(t, index.WritePageTable(pageTablePath, pageTable))

	_, err = merge.Merge(merge.Options{OutDir: dir, NumChunks: numChunks, Format: codec.Vbyte})
	require.NoError(t, err)

	e, err := query.Open(query.Options{
		LexiconPath:   filepath.Join(dir, "storage_vbyte.txt"),
		PageTablePath: pageTablePath,
		IndexPath:     filepath.Join(dir, "merged_index.vbyte"),
		FreqsPath:     filepath.Join(dir, "freqs.vbyte"),
		Format:        codec.Vbyte,
		CacheCapacity: 16,
	})
	require.NoError(t, err)
	return e
}

func TestRunComputesPerfectMRR(t *testing.T) {
	e := buildTestEngine(t)
	judgments := []Judgment{
		{QueryID: "q0", QueryText: "alpha beta", RelevantID: 0},
	}

	report, err := Run(context.Background(), e, judgments, Options{Mode: types.Conjunctive, N: 10})
	require.NoError(t, err)
	require.Equal(t, 1.0, report.MRR, "the only relevant doc is also the only conjunctive match, at rank 1")
	require.Zero(t, report.Errors)
}

func TestRunAveragesReciprocalRanksAcrossJudgments(t *testing.T) {
	e := buildTestEngine(t)
	judgments := []Judgment{
		{QueryID: "q0", QueryText: "alpha beta", RelevantID: 0}, // conjunctive: doc0 only, rank 1
		{QueryID: "q1", QueryText: "nonexistentterm", RelevantID: 1},
	}

	report, err := Run(context.Background(), e, judgments, Options{Mode: types.Conjunctive, N: 10})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Equal(t, 0, report.Errors, "the all-unknown-term query is an empty result, not an error")
	require.InDelta(t, 0.5, report.MRR, 1e-9, "one perfect hit (RR=1) and one miss (RR=0) average to 0.5")
}

func TestRunIsConcurrencySafeAcrossManyJudgments(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := buildTestEngine(t)
	var judgments []Judgment
	for i := 0; i < 100; i++ {
		judgments = append(judgments, Judgment{QueryID: "q", QueryText: "alpha gamma", RelevantID: 2})
	}

	report, err := Run(context.Background(), e, judgments, Options{Mode: types.Disjunctive, N: 10, Workers: 16})
	require.NoError(t, err)
	require.Len(t, report.Results, 100)
	for _, r := range report.Results {
		require.NoError(t, r.Err)
		require.Equal(t, 3, r.Rank, "alpha and gamma each have df=2 of N=3, so their idf is negative; doc 2 matches both and always ranks last")
	}
}

func TestStreamRunInvokesCallbackPerResult(t *testing.T) {
	e := buildTestEngine(t)
	judgments := []Judgment{
		{QueryID: "q0", QueryText: "beta", RelevantID: 0},
		{QueryID: "q1", QueryText: "gamma", RelevantID: 1},
	}

	var count int
	report, err := StreamRun(context.Background(), e, judgments, Options{Mode: types.Disjunctive, N: 10}, func(QueryResult) {
		count++
	})
	require.NoError(t, err)
	require.Equal(t, len(judgments), count)
	require.Len(t, report.Results, len(judgments))
}
