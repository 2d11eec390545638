package classify

import (
	"context"
	"fmt"
	"qcl/internal/domain"
	"qcl/internal/guidelines"
	"qcl/internal/integrations/llm"
	"qcl/internal/prompt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options are the per-request model settings.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Classifier runs a single query through prompt, model, parser and assembler.
type Classifier struct {
	client  llm.Client
	prompts *prompt.Builder
	opts    Options
	log     *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	usage llm.Usage
}

func NewClassifier(client llm.Client, prompts *prompt.Builder, opts Options, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	if prompts == nil {
		prompts = prompt.New()
	}
	return &Classifier{client: client, prompts: prompts, opts: opts, log: log, now: time.Now}
}

// Classify returns the result for q. A failed LLM call yields a
// FailureResult and a nil error; only cancellation and prompt rendering
// errors are returned.
func (c *Classifier) Classify(ctx context.Context, q domain.Query, corpus *guidelines.Corpus) (domain.Result, error) {
	start := time.Now()
	var chunks []string
	if corpus != nil {
		chunks = corpus.Chunks
	}
	req, err := c.prompts.Build(q.Text, chunks)
	if err != nil {
		return domain.Result{}, fmt.Errorf("query %d: %w", q.Index, err)
	}

	comp, err := c.client.Complete(ctx, llm.Request{
		Model:       c.opts.Model,
		System:      req.System,
		User:        req.User,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Result{}, ctxErr
		}
		c.log.Error("llm classify call failed",
			zap.Int("query_index", q.Index),
			zap.String("error_type", string(llm.ClassifyError(err))),
			zap.Error(err))
		r := FailureResult(q, err, c.now())
		r.ProcessingTime = time.Since(start)
		return r, nil
	}
	c.addUsage(comp.Usage)

	outcome := Parse(comp.Text, c.log.With(zap.Int("query_index", q.Index)))
	r := Assemble(q, outcome, c.now())
	r.ProcessingTime = time.Since(start)

	fields := []zap.Field{
		zap.Int("query_index", q.Index),
		zap.String("prime_category", r.PrimeCategory),
		zap.Float64("confidence", r.Confidence),
		zap.Duration("elapsed", r.ProcessingTime),
	}
	if rec, ok := outcome.(Recognized); ok {
		fields = append(fields, zap.Stringer("strategy", rec.Strategy))
	}
	c.log.Debug("llm classify done", fields...)
	return r, nil
}

// Usage is the token total of every successful call so far.
func (c *Classifier) Usage() llm.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

func (c *Classifier) addUsage(u llm.Usage) {
	c.mu.Lock()
	c.usage.Add(u)
	c.mu.Unlock()
}
