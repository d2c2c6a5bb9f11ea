// Package batchmint drives concurrent process_mint load against memo-mint
// and aggregates the results.
package batchmint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pushchain/memo-clients/memoClient/client"
	merrors "github.com/pushchain/memo-clients/memoClient/errors"
	"github.com/pushchain/memo-clients/memoClient/guardrail"
)

// Worker is one signer's pipeline. *client.Client wrapped by ClientWorker
// satisfies it.
type Worker interface {
	Mint(ctx context.Context, p client.MintParams) (client.Outcome, error)
	Supply(ctx context.Context) (uint64, error)
}

// NewWorker builds the worker with index id. Each worker owns its ledger
// connection.
type NewWorker func(ctx context.Context, id int) (Worker, error)

// Recorder receives per-attempt measurements. *metrics.Metrics satisfies
// it.
type Recorder interface {
	BatchAttempt(elapsed time.Duration, mintedUnits uint64)
}

// Options configure Run.
type Options struct {
	Workers   int
	PerWorker int
	// MemoLength of the generated mint memos; 69 when zero.
	MemoLength int
	// Pause between a worker's attempts.
	Pause time.Duration
}

// Stats aggregate one run.
type Stats struct {
	Attempts    int
	Successes   int
	Failures    map[string]int
	MintedUnits uint64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	TotalTime   time.Duration

	latencySum time.Duration
}

// AvgLatency is the mean latency over all attempts.
func (s Stats) AvgLatency() time.Duration {
	if s.Attempts == 0 {
		return 0
	}
	return s.latencySum / time.Duration(s.Attempts)
}

// FailureKeys returns the failure hints sorted by count, highest first.
func (s Stats) FailureKeys() []string {
	keys := make([]string, 0, len(s.Failures))
	for k := range s.Failures {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if s.Failures[keys[i]] != s.Failures[keys[j]] {
			return s.Failures[keys[i]] > s.Failures[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

type aggregator struct {
	mu    sync.Mutex
	stats Stats
}

func (a *aggregator) add(elapsed time.Duration, minted uint64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := &a.stats
	s.Attempts++
	s.latencySum += elapsed
	if s.Attempts == 1 || elapsed < s.MinLatency {
		s.MinLatency = elapsed
	}
	if elapsed > s.MaxLatency {
		s.MaxLatency = elapsed
	}
	if err != nil {
		key := "unknown"
		if hint, ok := merrors.HintOf(err); ok {
			key = hint.Key
		}
		s.Failures[key]++
		return
	}
	s.Successes++
	s.MintedUnits += minted
}

// Runner executes batch runs.
type Runner struct {
	newWorker NewWorker
	recorder  Recorder
	logger    zerolog.Logger
}

// New creates a runner. A nil recorder is allowed.
func New(newWorker NewWorker, recorder Recorder, logger zerolog.Logger) *Runner {
	return &Runner{
		newWorker: newWorker,
		recorder:  recorder,
		logger:    logger.With().Str("component", "batchmint").Logger(),
	}
}

// Run starts opts.Workers workers, each attempting opts.PerWorker mints.
// Failed attempts are counted, not returned; a worker stops early once the
// supply cap is reached. Run fails only when a worker cannot be built or
// ctx ends.
func (r *Runner) Run(ctx context.Context, opts Options) (Stats, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.PerWorker <= 0 {
		opts.PerWorker = 1
	}
	agg := &aggregator{stats: Stats{Failures: map[string]int{}}}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < opts.Workers; id++ {
		id := id
		g.Go(func() error {
			w, err := r.newWorker(gctx, id)
			if err != nil {
				return merrors.WrapClientError(err, merrors.ErrCodeConfig, "batchmint", "failed to start worker")
			}
			return r.work(gctx, id, w, opts, agg)
		})
	}
	err := g.Wait()

	agg.mu.Lock()
	stats := agg.stats
	agg.mu.Unlock()
	stats.TotalTime = time.Since(start)

	r.logger.Info().
		Int("attempts", stats.Attempts).
		Int("successes", stats.Successes).
		Uint64("minted_units", stats.MintedUnits).
		Dur("avg_latency", stats.AvgLatency()).
		Dur("total", stats.TotalTime).
		Msg("batch mint finished")
	return stats, err
}

func (r *Runner) work(ctx context.Context, id int, w Worker, opts Options, agg *aggregator) error {
	logger := r.logger.With().Int("worker", id).Logger()
	for i := 0; i < opts.PerWorker; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The tier is read before the mint; concurrent workers can move it.
		var expected uint64
		supply, err := w.Supply(ctx)
		if err == nil {
			expected, err = guardrail.MintAmount(supply)
		}

		began := time.Now()
		if err == nil {
			_, err = w.Mint(ctx, client.MintParams{MemoLength: opts.MemoLength})
		}
		elapsed := time.Since(began)

		agg.add(elapsed, expected, err)
		if r.recorder != nil {
			minted := expected
			if err != nil {
				minted = 0
			}
			r.recorder.BatchAttempt(elapsed, minted)
		}

		if err != nil {
			logger.Warn().Err(err).Int("attempt", i+1).Msg("mint failed")
			if merrors.IsCode(err, merrors.ErrCodeSupply) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		} else {
			logger.Debug().Int("attempt", i+1).Uint64("units", expected).Dur("latency", elapsed).Msg("mint confirmed")
		}

		if opts.Pause > 0 && i+1 < opts.PerWorker {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Pause):
			}
		}
	}
	return nil
}

// ClientWorker adapts a client to Worker.
type ClientWorker struct {
	*client.Client
}

func (w ClientWorker) Supply(ctx context.Context) (uint64, error) {
	return w.Reader().Supply(ctx)
}
