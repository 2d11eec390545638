package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"qcl/internal/classify"
	"qcl/internal/config"
	"qcl/internal/domain"
	"qcl/internal/guidelines"
	"qcl/internal/httpx"
	"qcl/internal/input"
	"qcl/internal/integrations/llm"
	slackbot "qcl/internal/integrations/slack"
	"qcl/internal/prompt"
	"qcl/internal/report"
	"qcl/internal/storage/batchfile"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultResultsFile = "results.json"

type classifyFlags struct {
	queries    string
	guidelines string
	output     string
	reportsDir string
	maxQueries int
	batchSize  int
	dryRun     bool
	notify     bool
}

func (f *classifyFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.queries, "queries", "", "CSV file with a query column (required)")
	fl.StringVar(&f.guidelines, "guidelines", "", "guideline document, PDF or text (required)")
	fl.StringVar(&f.output, "output", "", "results JSON path (default <output_dir>/results.json)")
	fl.StringVar(&f.reportsDir, "reports-dir", "", "also write the CSV reports into this directory")
	fl.IntVar(&f.maxQueries, "max-queries", 0, "classify at most this many queries (default max_queries)")
	fl.IntVar(&f.batchSize, "batch-size", 0, "queries between checkpoint saves (default batch_size)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "use the offline mock provider without pacing")
	fl.BoolVar(&f.notify, "notify", false, "post the run summary to Slack")
	_ = cmd.MarkFlagRequired("queries")
	_ = cmd.MarkFlagRequired("guidelines")
}

func (c *cli) classifyCommand() *cobra.Command {
	var f classifyFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify every query and save the batch as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.classify(cmd.Context(), f)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

type runResult struct {
	Output  string
	Batch   domain.Batch
	Stats   classify.RunStats
	Reports *report.Files
}

// classify runs the whole pipeline once. When interrupted it saves the
// results collected so far and returns the context error.
func (c *cli) classify(ctx context.Context, f classifyFlags) (runResult, error) {
	cfg := c.cfg
	if f.dryRun {
		cfg.LLMProvider = llm.ProviderMock
		cfg.LLMModel = llm.DefaultModel(llm.ProviderMock)
	}
	if err := cfg.Validate(); err != nil {
		return runResult{}, err
	}
	log := c.log.With(zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.LLMModel))

	queries, err := input.LoadQueries(f.queries)
	if err != nil {
		return runResult{}, err
	}
	maxQueries := cfg.MaxQueries
	if f.maxQueries > 0 {
		maxQueries = f.maxQueries
	}
	queries = input.Limit(queries, maxQueries)
	log.Info("queries loaded", zap.String("path", f.queries), zap.Int("count", len(queries)))

	corpus, err := guidelines.Load(ctx, f.guidelines, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return runResult{}, err
	}
	log.Info("guidelines loaded",
		zap.String("source", corpus.Source),
		zap.Int("chars", corpus.TotalLength),
		zap.Int("chunks", len(corpus.Chunks)))

	prompts, err := prompt.FromFile(cfg.PromptTemplatePath)
	if err != nil {
		return runResult{}, err
	}
	client, err := newLLMClient(ctx, cfg, log)
	if err != nil {
		return runResult{}, err
	}
	classifier := classify.NewClassifier(client, prompts, classify.Options{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}, log)

	opts := classify.DriverOptions{RequestsPerMinute: cfg.RequestsPerMinute, Concurrency: cfg.ConcurrentRequests}
	if f.dryRun {
		opts.Concurrency = 1
	}
	driver := classify.NewDriver(classifier, opts, log)
	if f.dryRun {
		driver.Sleep = func(context.Context, time.Duration) error { return nil }
	}

	output := f.output
	if output == "" {
		output = filepath.Join(cfg.OutputDir, defaultResultsFile)
	}
	batchSize := cfg.BatchSize
	if f.batchSize > 0 {
		batchSize = f.batchSize
	}
	meta := domain.Metadata{
		RunID:    uuid.NewString(),
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
	}
	log.Info("classification starting",
		zap.String("run_id", meta.RunID),
		zap.Int("queries", len(queries)),
		zap.Duration("interval", driver.Interval()),
		zap.Int("concurrency", opts.Concurrency))

	res := runResult{Output: output}
	results := make([]domain.Result, 0, len(queries))
	var runErr error
	for start := 0; start < len(queries); start += batchSize {
		end := min(start+batchSize, len(queries))
		out, err := driver.Run(ctx, queries[start:end], corpus)
		results = append(results, out.Results...)
		res.Stats.Merge(out.Stats)

		meta.QueriesAttempted = res.Stats.Attempted
		meta.CreatedAt = time.Now()
		if saveErr := batchfile.Save(output, domain.NewBatch(results, meta)); saveErr != nil {
			return res, saveErr
		}
		log.Debug("checkpoint saved", zap.String("path", output), zap.Int("results", len(results)))
		if err != nil {
			runErr = err
			break
		}
	}
	if len(queries) == 0 {
		meta.CreatedAt = time.Now()
		if err := batchfile.Save(output, domain.NewBatch(results, meta)); err != nil {
			return res, err
		}
	}
	res.Batch = domain.NewBatch(results, meta)

	log.Info("results saved",
		zap.String("path", output),
		zap.Int("results", len(results)),
		zap.Float64("success_rate", res.Stats.SuccessRate()),
		zap.Int64("tokens", classifier.Usage().TotalTokens()))
	if runErr != nil {
		log.Warn("classification interrupted, partial results saved", zap.Error(runErr))
		return res, fmt.Errorf("classification interrupted after %d results: %w", len(results), runErr)
	}

	summary := report.Summarize(results)
	logSummary(log, summary)
	if f.reportsDir != "" {
		files, err := report.Generate(res.Batch, f.reportsDir)
		if err != nil {
			return res, err
		}
		res.Reports = &files
		log.Info("reports written", zap.String("dir", f.reportsDir))
	}
	if f.notify {
		attachment := ""
		if res.Reports != nil {
			attachment = res.Reports.Prime
		}
		c.notify(ctx, cfg, slackbot.Notice{RunID: meta.RunID, Summary: summary, Attachment: attachment})
	}
	return res, nil
}

func newLLMClient(ctx context.Context, cfg config.Config, log *zap.Logger) (llm.Client, error) {
	return llm.New(ctx, llm.Options{
		Provider:      cfg.LLMProvider,
		APIKey:        cfg.APIKey(),
		BaseURL:       cfg.LLMBaseURL,
		HTTPClient:    httpx.New(cfg.LLMTimeoutSeconds),
		Logger:        log,
		Timeout:       httpx.TimeoutFor(cfg.LLMTimeoutSeconds),
		RetryAttempts: cfg.RetryAttempts,
	})
}

// notify posts to Slack. Failures are logged; a run never fails on them.
func (c *cli) notify(ctx context.Context, cfg config.Config, n slackbot.Notice) {
	notifier := c.notifier
	if notifier == nil {
		if !cfg.SlackConfigured() {
			c.log.Warn("slack notify skipped: slack_bot_token and slack_channel_id are not set")
			return
		}
		client, err := slackbot.New(cfg.SlackBotToken, cfg.SlackChannelID, cfg.LLMTimeoutSeconds, c.log)
		if err != nil {
			c.log.Warn("slack notify skipped", zap.Error(err))
			return
		}
		notifier = client
	}
	if err := notifier.Notify(ctx, n); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("slack notify failed", zap.Error(err))
	}
}

func logSummary(log *zap.Logger, s report.Summary) {
	log.Info("classification summary",
		zap.Int("total", s.Total),
		zap.Float64("mean_confidence", s.MeanConfidence),
		zap.Int("fallbacks", s.Fallbacks),
		zap.Any("annotations", s.Annotations),
		zap.Any("top_entities", s.TopEntities),
		zap.Any("top_intents", s.TopIntents),
		zap.Any("top_topics", s.TopTopics))
}
