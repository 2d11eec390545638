package slackbot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"qcl/internal/httpx"
	"qcl/internal/report"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("slack notifier requires bot token and channel id")

// Notifier announces finished classification runs.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Notice is what gets posted for one run.
type Notice struct {
	Title string
	RunID string
	// Summary is rendered into the message body.
	Summary report.Summary
	// Attachment is an optional file uploaded after the message.
	Attachment string
}

// Client posts notices to one Slack channel.
type Client struct {
	api     *slack.Client
	channel string
	log     *zap.Logger
}

// New builds a Client whose API calls are bounded by timeoutSeconds
// (httpx.DefaultTimeout when not positive). Extra options are passed to
// slack.New after the HTTP client option.
func New(token, channel string, timeoutSeconds int, log *zap.Logger, opts ...slack.Option) (*Client, error) {
	if token == "" || channel == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]slack.Option{slack.OptionHTTPClient(httpx.New(timeoutSeconds))}, opts...)
	return &Client{api: slack.New(token, opts...), channel: channel, log: log}, nil
}

func (c *Client) Notify(ctx context.Context, n Notice) error {
	text := FormatSummary(n)
	if _, _, err := c.api.PostMessageContext(ctx, c.channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post summary: %w", err)
	}
	c.log.Info("slack summary posted", zap.String("channel", c.channel), zap.String("run_id", n.RunID))

	if n.Attachment == "" {
		return nil
	}
	fi, err := os.Stat(n.Attachment)
	if err != nil {
		return fmt.Errorf("stat attachment: %w", err)
	}
	if fi.Size() <= 0 {
		c.log.Warn("slack attachment empty, skipping upload", zap.String("path", n.Attachment))
		return nil
	}
	_, err = c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           n.Attachment,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(n.Attachment),
		Channel:        c.channel,
		Title:          filepath.Base(n.Attachment),
		InitialComment: fmt.Sprintf("PRIME report for run %s", n.RunID),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", filepath.Base(n.Attachment), err)
	}
	c.log.Info("slack report uploaded", zap.String("file", filepath.Base(n.Attachment)))
	return nil
}

// FormatSummary renders a notice as Slack mrkdwn.
func FormatSummary(n Notice) string {
	s := n.Summary
	var b strings.Builder
	title := n.Title
	if title == "" {
		title = "Query classification finished"
	}
	fmt.Fprintf(&b, "*%s*", title)
	if n.RunID != "" {
		fmt.Fprintf(&b, " (run `%s`)", n.RunID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Queries classified: %d\n", s.Total)
	fmt.Fprintf(&b, "Mean confidence: %.2f\n", s.MeanConfidence)
	if s.Fallbacks > 0 {
		fmt.Fprintf(&b, "Fallbacks: %d\n", s.Fallbacks)
	}
	writeCounts(&b, "Annotation issues", s.Annotations, s.Total)
	writeCounts(&b, "Top entity types", s.TopEntities, 0)
	writeCounts(&b, "Top intents", s.TopIntents, 0)
	writeCounts(&b, "Top topics", s.TopTopics, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeCounts(b *strings.Builder, heading string, counts []report.Count, total int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n_%s_\n", heading)
	for _, c := range counts {
		if total > 0 {
			fmt.Fprintf(b, "• %s: %d (%.1f%%)\n", c.Name, c.Count, float64(c.Count)/float64(total)*100)
			continue
		}
		fmt.Fprintf(b, "• %s: %d\n", c.Name, c.Count)
	}
}
