// Package runner sequences one dsping invocation: a single completion
// call, one printed report, and an optional history entry.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jxucoder/dsping/internal/deepseek"
	"github.com/jxucoder/dsping/internal/history"
	"github.com/jxucoder/dsping/internal/report"
)

// Completer performs the chat completion call.
type Completer interface {
	Complete(ctx context.Context) (string, error)
}

// Recorder persists a finished run.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Runner executes a single shot. Recorder and Logger are optional.
type Runner struct {
	Client   Completer
	Recorder Recorder
	Out      io.Writer
	Logger   *slog.Logger
}

// Run calls the client once and writes exactly one report to Out.
// API and parse errors are reported and yield nil; a transport failure is
// reported and then returned so the caller can exit non-zero.
func (r *Runner) Run(ctx context.Context) error {
	content, err := r.Client.Complete(ctx)

	if werr := report.Write(r.Out, content, err); werr != nil {
		return fmt.Errorf("writing report: %w", werr)
	}

	if r.Recorder != nil {
		run := newRun(content, err)
		// Record even when ctx was canceled mid-request.
		if rerr := r.Recorder.Record(context.WithoutCancel(ctx), run); rerr != nil {
			r.logger().WarnContext(ctx, "recording run failed", "error", rerr)
		} else {
			r.logger().DebugContext(ctx, "run recorded", "id", run.ID, "outcome", run.Outcome)
		}
	}

	var transportErr *deepseek.TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	return nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func newRun(content string, err error) *history.Run {
	run := &history.Run{Outcome: report.Outcome(err), Content: content}

	var (
		apiErr   *deepseek.APIError
		parseErr *deepseek.ParseError
	)
	switch {
	case errors.As(err, &apiErr):
		run.HTTPStatus = apiErr.StatusCode
		run.Detail = string(apiErr.Body)
	case errors.As(err, &parseErr):
		run.HTTPStatus = parseErr.StatusCode
		run.Detail = string(parseErr.Raw)
	case err != nil:
		run.Detail = err.Error()
	}
	return run
}
