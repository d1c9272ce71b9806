// Package eval implements the Evaluator Pool (C7): a bounded worker pool
// that runs a batch of judged queries against the Engine concurrently and
// aggregates Mean Reciprocal Rank and latency statistics.
package eval

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/trecsearch/internal/query"
	"github.com/standardbeagle/trecsearch/internal/types"
)

// DefaultWorkers is the default bound on concurrent query evaluations, per
// errgroup.SetLimit: one worker per logical CPU of the host.
var DefaultWorkers = runtime.NumCPU()

// Judgment is one evaluation case: a query and the one relevant DocID the
// evaluator expects to find in the ranked results.
type Judgment struct {
	QueryID    string
	QueryText  string
	RelevantID types.DocID
}

// QueryResult captures the outcome of evaluating a single Judgment.
type QueryResult struct {
	QueryID        string
	ReciprocalRank float64 // 0 if the relevant document was not retrieved in the top n
	Rank           int     // 1-based rank of the relevant document, 0 if not found
	Latency        time.Duration
	Err            error
}

// Report summarizes one evaluation run.
type Report struct {
	Results       []QueryResult
	MRR           float64
	AvgLatency    time.Duration
	TotalDuration time.Duration
	Errors        int
}

// Options configures a Run.
type Options struct {
	Mode    types.QueryMode
	N       int // top-n cutoff for both ranking and MRR
	Workers int
}

// Run evaluates every judgment against engine concurrently (bounded by
// Workers) and returns the aggregated MRR@N report. A per-query error (e.g.
// a posting list failing to decode) is recorded on that query's QueryResult
// and does not abort the run; a query with no resolvable terms simply scores
// a miss (Rank 0), since Engine.Search treats that as an empty result, not an
// error. Run itself only returns an error if the worker pool setup fails or
// ctx is canceled.
func Run(ctx context.Context, engine *query.Engine, judgments []Judgment, opts Options) (Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.N <= 0 {
		opts.N = query.DefaultNResults
	}

	start := time.Now()
	results := make([]QueryResult, len(judgments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, j := range judgments {
		i, j := i, j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = evaluateOne(engine, j, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return summarize(results, time.Since(start)), nil
}

func evaluateOne(engine *query.Engine, j Judgment, opts Options) QueryResult {
	t0 := time.Now()
	scored, err := engine.Search(j.QueryText, opts.Mode, opts.N)
	latency := time.Since(t0)

	if err != nil {
		return QueryResult{QueryID: j.QueryID, Latency: latency, Err: err}
	}

	for rank, s := range scored {
		if s.DocID == j.RelevantID {
			return QueryResult{
				QueryID:        j.QueryID,
				Rank:           rank + 1,
				ReciprocalRank: 1.0 / float64(rank+1),
				Latency:        latency,
			}
		}
	}
	return QueryResult{QueryID: j.QueryID, Latency: latency}
}

func summarize(results []QueryResult, total time.Duration) Report {
	var sumRR float64
	var sumLatency time.Duration
	var errCount int
	for _, r := range results {
		sumRR += r.ReciprocalRank
		sumLatency += r.Latency
		if r.Err != nil {
			errCount++
		}
	}

	n := len(results)
	report := Report{
		Results:       results,
		TotalDuration: total,
		Errors:        errCount,
	}
	if n > 0 {
		report.MRR = sumRR / float64(n)
		report.AvgLatency = sumLatency / time.Duration(n)
	}
	return report
}

// StreamRun is a variant of Run that calls onResult as each judgment
// finishes, useful for progress reporting during long evaluation batches.
// Results are still returned in a final Report once all judgments finish.
func StreamRun(ctx context.Context, engine *query.Engine, judgments []Judgment, opts Options, onResult func(QueryResult)) (Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.N <= 0 {
		opts.N = query.DefaultNResults
	}

	start := time.Now()
	results := make([]QueryResult, len(judgments))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, j := range judgments {
		i, j := i, j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r := evaluateOne(engine, j, opts)
			results[i] = r
			if onResult != nil {
				mu.Lock()
				onResult(r)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return summarize(results, time.Since(start)), nil
}
