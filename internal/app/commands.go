package app

import (
	"context"
	"fmt"
	"path/filepath"
	"qcl/internal/guidelines"
	"qcl/internal/input"
	"qcl/internal/integrations/llm"
	slackbot "qcl/internal/integrations/slack"
	"qcl/internal/report"
	"qcl/internal/schedule"
	"qcl/internal/storage/batchfile"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) validateCommand() *cobra.Command {
	var queries, guidelinesPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the input files without calling a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := input.LoadQueries(queries)
			if err != nil {
				return err
			}
			s := input.Summarize(qs)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Queries: %d\n", s.Total)
			fmt.Fprintf(w, "Average length: %.1f characters\n", s.AvgLength)
			fmt.Fprintf(w, "Average words: %.1f\n", s.AvgWords)
			fmt.Fprintf(w, "Duplicates: %d\n", s.Duplicates)
			for i, d := range s.DuplicateText {
				if i == 5 {
					fmt.Fprintf(w, "  ... and %d more\n", len(s.DuplicateText)-i)
					break
				}
				fmt.Fprintf(w, "  %q\n", d)
			}

			if guidelinesPath == "" {
				return nil
			}
			corpus, err := guidelines.Load(cmd.Context(), guidelinesPath, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Guidelines: %s (%d characters, %d chunks)\n", corpus.Source, corpus.TotalLength, len(corpus.Chunks))
			return nil
		},
	}
	cmd.Flags().StringVar(&queries, "queries", "", "CSV file with a query column (required)")
	cmd.Flags().StringVar(&guidelinesPath, "guidelines", "", "guideline document to check")
	_ = cmd.MarkFlagRequired("queries")
	return cmd
}

func (c *cli) reportCommand() *cobra.Command {
	var inputPath, outputDir string
	var notify bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the CSV reports for a saved batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = c.cfg.OutputDir
			}
			_, err := c.report(cmd.Context(), inputPath, outputDir, notify)
			return err
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "results JSON written by classify (required)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "report directory (default output_dir)")
	cmd.Flags().BoolVar(&notify, "notify", false, "post the summary and PRIME report to Slack")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (c *cli) report(ctx context.Context, inputPath, outputDir string, notify bool) (report.Files, error) {
	batch, err := batchfile.Load(inputPath)
	if err != nil {
		return report.Files{}, err
	}
	files, err := report.Generate(batch, outputDir)
	if err != nil {
		return report.Files{}, err
	}
	c.log.Info("reports written",
		zap.String("input", inputPath),
		zap.Int("results", len(batch.Results)),
		zap.String("detailed", files.Detailed),
		zap.String("prime", files.Prime),
		zap.String("meta", files.Meta))

	summary := report.Summarize(batch.Results)
	logSummary(c.log, summary)
	if notify {
		c.notify(ctx, c.cfg, slackbot.Notice{
			Title:      "Query classification report",
			RunID:      batch.Metadata.RunID,
			Summary:    summary,
			Attachment: files.Prime,
		})
	}
	return files, nil
}

func (c *cli) scheduleCommand() *cobra.Command {
	var f classifyFlags
	var expr string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Repeat classify on a cron schedule",
		Long: `Runs classify at every activation of a 5-field cron expression
(minute hour day-of-month month day-of-week), for example "0 9 * * 1-5".
Each run writes its own timestamped results file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if expr == "" {
				expr = c.cfg.Schedule
			}
			cfg := c.cfg
			if f.dryRun {
				cfg.LLMProvider = llm.ProviderMock
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			runner, err := schedule.NewRunner(expr, cfg.Location, c.log)
			if err != nil {
				return err
			}
			c.log.Info("classification scheduled", zap.String("cron", strings.TrimSpace(expr)))
			return runner.Run(cmd.Context(), func(ctx context.Context) error {
				run := f
				run.output = timestampedPath(c.outputFor(f), time.Now())
				_, err := c.classify(ctx, run)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&expr, "cron", "", "5-field cron expression (default schedule)")
	f.register(cmd)
	return cmd
}

func (c *cli) outputFor(f classifyFlags) string {
	if f.output != "" {
		return f.output
	}
	return filepath.Join(c.cfg.OutputDir, defaultResultsFile)
}

// timestampedPath turns results.json into results-20250114T090000.json.
func timestampedPath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + t.Format("20060102T150405") + ext
}
