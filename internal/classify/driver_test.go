package classify

import (
	"context"
	"errors"
	"fmt"
	"qcl/internal/domain"
	"qcl/internal/guidelines"
	"qcl/internal/integrations/llm"
	"qcl/internal/prompt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func testQueries(texts ...string) []domain.Query {
	out := make([]domain.Query, len(texts))
	for i, text := range texts {
		out[i] = domain.NewQuery(text, i)
	}
	return out
}

func TestClassifierWithMockClient(t *testing.T) {
	mock := &llm.Mock{Respond: func(req llm.Request) (string, error) {
		return "Here you go:\n```json\n{\"prime_category\": {\"category\": \"Shopping\"}, \"confidence_score\": 0.7}\n```", nil
	}}
	c := NewClassifier(mock, prompt.New(), Options{Model: "m", MaxTokens: 99, Temperature: 0.1}, zaptest.NewLogger(t))
	corpus, err := guidelines.NewCorpus("g", "one two three four five six", 2, 1)
	require.NoError(t, err)

	r, err := c.Classify(context.Background(), domain.NewQuery("cheap shoes", 0), corpus)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", r.PrimeCategory)
	assert.InDelta(t, 0.7, r.Confidence, 1e-9)
	assert.Positive(t, r.ProcessingTime)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, prompt.SystemInstruction, calls[0].System)
	assert.Equal(t, "m", calls[0].Model)
	assert.Equal(t, 99, calls[0].MaxTokens)
	assert.Contains(t, calls[0].User, "one two\n\ntwo three\n\nthree four")
	assert.NotContains(t, calls[0].User, "four five")
	assert.Positive(t, c.Usage().TotalTokens())
}

func TestClassifierTransportErrorBecomesFailureResult(t *testing.T) {
	mock := &llm.Mock{Respond: func(llm.Request) (string, error) {
		return "", errors.New("OpenAI API error: status 401")
	}}
	c := NewClassifier(mock, nil, Options{}, zaptest.NewLogger(t))
	r, err := c.Classify(context.Background(), domain.NewQuery("q", 0), nil)
	require.NoError(t, err)
	assert.True(t, IsFailure(r))
	assert.Contains(t, r.ResearchNotes, "status 401")
}

func TestClassifierReturnsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClassifier(&llm.Mock{}, nil, Options{}, zaptest.NewLogger(t))
	_, err := c.Classify(ctx, domain.NewQuery("q", 0), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeClassifier struct {
	mu    sync.Mutex
	seen  []int
	fn    func(ctx context.Context, q domain.Query) (domain.Result, error)
	delay func(q domain.Query) time.Duration
}

func (f *fakeClassifier) Classify(ctx context.Context, q domain.Query, _ *guidelines.Corpus) (domain.Result, error) {
	f.mu.Lock()
	f.seen = append(f.seen, q.Index)
	f.mu.Unlock()
	if f.delay != nil {
		time.Sleep(f.delay(q))
	}
	if f.fn != nil {
		return f.fn(ctx, q)
	}
	return domain.Result{Query: q, PrimeCategory: "Weather", Confidence: 0.9, ProcessingTime: time.Second}, nil
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func TestDriverPacesOnlyAfterResults(t *testing.T) {
	fc := &fakeClassifier{fn: func(ctx context.Context, q domain.Query) (domain.Result, error) {
		if q.Index == 1 {
			return domain.Result{}, errors.New("render failed")
		}
		if q.Index == 2 {
			return FailureResult(q, errors.New("boom"), fixedNow), nil
		}
		return domain.Result{Query: q, PrimeCategory: "News", ProcessingTime: 2 * time.Second}, nil
	}}
	d := NewDriver(fc, DriverOptions{RequestsPerMinute: 30}, zaptest.NewLogger(t))
	rec := &sleepRecorder{}
	d.Sleep = rec.sleep

	out, err := d.Run(context.Background(), testQueries("a", "b", "c", "d"), nil)
	require.NoError(t, err)

	require.Len(t, out.Results, 3)
	assert.Equal(t, []int{0, 2, 3}, []int{out.Results[0].Query.Index, out.Results[1].Query.Index, out.Results[2].Query.Index})
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, rec.waits)

	s := out.Stats
	assert.Equal(t, 4, s.Attempted)
	assert.Equal(t, 3, s.Produced)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, 1, s.Omitted)
	assert.InDelta(t, 0.75, s.SuccessRate(), 1e-9)
	assert.Equal(t, 4*time.Second/3, s.AverageTime())
}

func TestDriverIntervalFromRPM(t *testing.T) {
	assert.Equal(t, 1200*time.Millisecond, NewDriver(nil, DriverOptions{RequestsPerMinute: 50}, nil).Interval())
	assert.Equal(t, time.Minute, NewDriver(nil, DriverOptions{RequestsPerMinute: 0}, nil).Interval())
}

func TestDriverCancellationKeepsCollectedResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc := &fakeClassifier{}
	d := NewDriver(fc, DriverOptions{RequestsPerMinute: 60}, zaptest.NewLogger(t))
	calls := 0
	d.Sleep = func(ctx context.Context, _ time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	}

	out, err := d.Run(ctx, testQueries("a", "b", "c", "d"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, out.Results, 2)
	assert.Equal(t, []int{0, 1}, fc.seen)
	assert.Equal(t, 2, out.Stats.Attempted)
}

func TestDriverCancellationMidCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fc := &fakeClassifier{fn: func(_ context.Context, q domain.Query) (domain.Result, error) {
		if q.Index == 1 {
			cancel()
			return domain.Result{}, context.Canceled
		}
		return domain.Result{Query: q, PrimeCategory: "News"}, nil
	}}
	d := NewDriver(fc, DriverOptions{RequestsPerMinute: 60}, zaptest.NewLogger(t))
	d.Sleep = func(ctx context.Context, _ time.Duration) error { return nil }

	out, err := d.Run(ctx, testQueries("a", "b", "c"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, out.Results, 1)
	assert.Zero(t, out.Stats.Omitted)
}

func TestDriverPoolPreservesInputOrder(t *testing.T) {
	const n = 12
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("query %d", i)
	}
	fc := &fakeClassifier{
		delay: func(q domain.Query) time.Duration {
			return time.Duration(n-q.Index) * time.Millisecond
		},
		fn: func(_ context.Context, q domain.Query) (domain.Result, error) {
			if q.Index == 5 {
				return domain.Result{}, errors.New("skip me")
			}
			return domain.Result{Query: q, PrimeCategory: "Weather"}, nil
		},
	}
	d := NewDriver(fc, DriverOptions{RequestsPerMinute: 60000, Concurrency: 4}, zaptest.NewLogger(t))

	out, err := d.Run(context.Background(), testQueries(texts...), nil)
	require.NoError(t, err)
	require.Len(t, out.Results, n-1)
	prev := -1
	for _, r := range out.Results {
		assert.Greater(t, r.Query.Index, prev)
		assert.NotEqual(t, 5, r.Query.Index)
		assert.True(t, strings.HasPrefix(r.Query.Text, "query "))
		prev = r.Query.Index
	}
	assert.Equal(t, n, out.Stats.Attempted)
	assert.Equal(t, 1, out.Stats.Omitted)
	assert.Equal(t, n-1, out.Stats.Produced)
}

func TestDriverPoolPacingSpansRuns(t *testing.T) {
	var (
		mu     sync.Mutex
		starts []time.Duration
	)
	begin := time.Now()
	fc := &fakeClassifier{fn: func(_ context.Context, q domain.Query) (domain.Result, error) {
		mu.Lock()
		starts = append(starts, time.Since(begin))
		mu.Unlock()
		return domain.Result{Query: q, PrimeCategory: "Weather"}, nil
	}}
	d := NewDriver(fc, DriverOptions{RequestsPerMinute: 120, Concurrency: 2}, zaptest.NewLogger(t))
	require.Equal(t, 500*time.Millisecond, d.Interval())

	for range 2 {
		out, err := d.Run(context.Background(), testQueries("a", "b"), nil)
		require.NoError(t, err)
		require.Len(t, out.Results, 2)
	}

	require.Len(t, starts, 4)
	slices.Sort(starts)
	for i := 1; i < len(starts); i++ {
		gap := starts[i] - starts[i-1]
		assert.GreaterOrEqual(t, gap, 450*time.Millisecond, "call %d started %s after call %d", i+1, gap, i)
	}
}

func TestDriverEmptyInput(t *testing.T) {
	out, err := NewDriver(&fakeClassifier{}, DriverOptions{}, nil).Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, out.Results)
	assert.Empty(t, out.Results)
	assert.Zero(t, out.Stats.SuccessRate())
}

func TestRunStatsMerge(t *testing.T) {
	var total RunStats
	total.Merge(RunStats{Attempted: 3, Produced: 2, Omitted: 1, TotalTime: 2 * time.Second})
	total.Merge(RunStats{Attempted: 2, Produced: 2, Failures: 1, TotalTime: 2 * time.Second})

	assert.Equal(t, 5, total.Attempted)
	assert.Equal(t, 4, total.Produced)
	assert.Equal(t, 1, total.Failures)
	assert.Equal(t, time.Second, total.AverageTime())
	assert.InDelta(t, 0.8, total.SuccessRate(), 1e-9)
}

func TestDriverPoolCancellationStopsWorkers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var once sync.Once
	fc := &fakeClassifier{fn: func(ctx context.Context, q domain.Query) (domain.Result, error) {
		if q.Index == 2 {
			once.Do(cancel)
			return domain.Result{}, ctx.Err()
		}
		return domain.Result{Query: q, PrimeCategory: "News"}, nil
	}}
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = fmt.Sprintf("q%d", i)
	}
	d := NewDriver(fc, DriverOptions{RequestsPerMinute: 600, Concurrency: 3}, zaptest.NewLogger(t))

	out, err := d.Run(ctx, testQueries(texts...), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, len(out.Results), len(texts))
	assert.Zero(t, out.Stats.Omitted, "canceled calls are not omissions")
	for i := 1; i < len(out.Results); i++ {
		assert.Greater(t, out.Results[i].Query.Index, out.Results[i-1].Query.Index)
	}
}
