package classify

import (
	"context"
	"errors"
	"qcl/internal/domain"
	"qcl/internal/guidelines"
	"qcl/internal/integrations/llm"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// QueryClassifier is the per-query step the Driver sequences.
type QueryClassifier interface {
	Classify(ctx context.Context, q domain.Query, corpus *guidelines.Corpus) (domain.Result, error)
}

// RunStats summarizes one Driver run.
type RunStats struct {
	Attempted int
	Produced  int
	Failures  int
	Omitted   int
	TotalTime time.Duration
	Elapsed   time.Duration
}

// AverageTime is the mean per-query processing time of produced results.
func (s RunStats) AverageTime() time.Duration {
	if s.Produced == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Produced)
}

// SuccessRate is produced results over attempted queries, in [0,1].
func (s RunStats) SuccessRate() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Produced) / float64(s.Attempted)
}

// Merge adds the counters of another run.
func (s *RunStats) Merge(o RunStats) {
	s.Attempted += o.Attempted
	s.Produced += o.Produced
	s.Failures += o.Failures
	s.Omitted += o.Omitted
	s.TotalTime += o.TotalTime
	s.Elapsed += o.Elapsed
}

func (s *RunStats) record(r domain.Result) {
	s.Produced++
	s.TotalTime += r.ProcessingTime
	if IsFailure(r) {
		s.Failures++
	}
}

// RunOutput is what a run collected. Results keep input order; queries that
// produced no result are absent, so callers match on Query.Index.
type RunOutput struct {
	Results []domain.Result
	Stats   RunStats
}

type DriverOptions struct {
	RequestsPerMinute int
	Concurrency       int
}

// Driver classifies a query list with rate pacing.
type Driver struct {
	classifier QueryClassifier
	interval   time.Duration
	workers    int
	limiter    *rate.Limiter
	log        *zap.Logger

	// Sleep is the pacing wait of sequential runs; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewDriver(classifier QueryClassifier, opts DriverOptions, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	rpm := max(opts.RequestsPerMinute, 1)
	interval := time.Minute / time.Duration(rpm)
	return &Driver{
		classifier: classifier,
		interval:   interval,
		workers:    max(opts.Concurrency, 1),
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		log:        log,
		Sleep:      llm.SleepContext,
	}
}

// Interval is the pause between requests.
func (d *Driver) Interval() time.Duration { return d.interval }

// Run classifies queries. On cancellation it returns what was collected so
// far together with the context error.
func (d *Driver) Run(ctx context.Context, queries []domain.Query, corpus *guidelines.Corpus) (RunOutput, error) {
	start := time.Now()
	var (
		out RunOutput
		err error
	)
	if d.workers > 1 {
		out, err = d.runPool(ctx, queries, corpus)
	} else {
		out, err = d.runSequential(ctx, queries, corpus)
	}
	out.Stats.Elapsed = time.Since(start)
	if out.Results == nil {
		out.Results = []domain.Result{}
	}

	d.log.Info("classification run finished",
		zap.Int("attempted", out.Stats.Attempted),
		zap.Int("produced", out.Stats.Produced),
		zap.Int("api_failures", out.Stats.Failures),
		zap.Int("omitted", out.Stats.Omitted),
		zap.Float64("success_rate", out.Stats.SuccessRate()),
		zap.Duration("avg_time", out.Stats.AverageTime()),
		zap.Duration("elapsed", out.Stats.Elapsed),
		zap.Bool("interrupted", err != nil))
	return out, err
}

func (d *Driver) runSequential(ctx context.Context, queries []domain.Query, corpus *guidelines.Corpus) (RunOutput, error) {
	var out RunOutput
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Stats.Attempted++
		r, err := d.classifier.Classify(ctx, q, corpus)
		if err != nil {
			if isCancel(ctx, err) {
				return out, ctx.Err()
			}
			d.log.Error("classify query omitted", zap.Int("query_index", q.Index), zap.Error(err))
			out.Stats.Omitted++
			continue
		}
		out.Results = append(out.Results, r)
		out.Stats.record(r)
		d.log.Info("classified query",
			zap.Int("n", i+1),
			zap.Int("of", len(queries)),
			zap.String("prime_category", r.PrimeCategory))

		if err := d.Sleep(ctx, d.interval); err != nil {
			return out, err
		}
	}
	return out, nil
}

// runPool fans queries out to a bounded set of workers. The limiter belongs
// to the Driver so pacing carries over between consecutive runs.
// Each worker writes only its own slot; slots are compacted in input order.
func (d *Driver) runPool(ctx context.Context, queries []domain.Query, corpus *guidelines.Corpus) (RunOutput, error) {
	slots := make([]*domain.Result, len(queries))

	var (
		mu    sync.Mutex
		stats RunStats
	)
	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, q := range queries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := d.limiter.Wait(ctx); err != nil {
				return nil
			}
			mu.Lock()
			stats.Attempted++
			mu.Unlock()

			r, err := d.classifier.Classify(ctx, q, corpus)
			if err != nil {
				if !isCancel(ctx, err) {
					d.log.Error("classify query omitted", zap.Int("query_index", q.Index), zap.Error(err))
					mu.Lock()
					stats.Omitted++
					mu.Unlock()
				}
				return nil
			}
			slots[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	out := RunOutput{Stats: stats}
	for _, r := range slots {
		if r != nil {
			out.Results = append(out.Results, *r)
			out.Stats.record(*r)
		}
	}
	return out, ctx.Err()
}

func isCancel(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
