// Package schedule repeats a job on a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), for example "0 9 * * 1-5".
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrEmptySchedule = errors.New("schedule expression is empty")

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Parse validates a 5-field cron expression.
func Parse(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptySchedule
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return sched, nil
}

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Runner fires a Job at each schedule activation until its context ends.
type Runner struct {
	Schedule cron.Schedule
	Location *time.Location
	Log      *zap.Logger

	// Now and After are replaced in tests.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// NewRunner builds a Runner for expr evaluated in loc.
func NewRunner(expr string, loc *time.Location, log *zap.Logger) (*Runner, error) {
	sched, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Schedule: sched, Location: loc, Log: log, Now: time.Now, After: time.After}, nil
}

// Next returns the first activation strictly after t.
func (r *Runner) Next(t time.Time) time.Time {
	return r.Schedule.Next(t.In(r.Location))
}

// Run blocks, invoking job at every activation. A failing job is logged and
// the schedule continues. Run returns ctx.Err() once ctx is done.
func (r *Runner) Run(ctx context.Context, job Job) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := r.Now().In(r.Location)
		next := r.Next(now)
		wait := next.Sub(now)
		r.Log.Info("schedule next run",
			zap.String("at", next.Format("Mon Jan 2 15:04")),
			zap.Duration("in", wait.Round(time.Second)),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.After(wait):
		}

		start := r.Now()
		if err := job(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Log.Error("schedule job failed", zap.Error(err))
			continue
		}
		r.Log.Info("schedule job complete", zap.Duration("elapsed", r.Now().Sub(start)))
	}
}
