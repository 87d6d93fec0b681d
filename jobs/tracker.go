// Package jobs tracks the single background key publication job of the panel.
//
// The Tracker holds at most one job. Starting while a job is held is a silent
// no-op, completion is discovered lazily by CheckAndReconcile on the next
// status render, and cancellation is fire and forget.
package jobs

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/ruteri/hostkey-panel/metrics"
)

// Messages shown to the user on job transitions.
const (
	MsgPublished       = "Published key to keyserver."
	MsgPublishFailed   = "Error occurred while publishing key."
	MsgPublishCanceled = "Cancelled key publishing."
)

const (
	publishModule  = "monkeysphere"
	publishCommand = "host-publish-key"
)

// detailer is implemented by jobs that keep the helper's failure output.
type detailer interface {
	Detail() string
}

// Tracker owns zero or one in-flight publish job.
type Tracker struct {
	runner interfaces.ActionRunner
	log    *slog.Logger

	mu  sync.Mutex
	job interfaces.Job
}

func NewTracker(runner interfaces.ActionRunner, log *slog.Logger) *Tracker {
	return &Tracker{
		runner: runner,
		log:    log,
	}
}

// Start launches the publish job for fingerprint unless one is already
// running, in which case nothing happens.
func (t *Tracker) Start(fingerprint interfaces.Fingerprint) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job != nil {
		t.log.Debug("Publish already running, ignoring request",
			slog.String("fingerprint", fingerprint.String()),
			slog.String("job", t.job.ID()))
		return nil
	}

	job, err := t.runner.RunAsync(publishModule, []string{publishCommand, fingerprint.String()})
	if err != nil {
		return fmt.Errorf("could not start key publishing: %w", err)
	}

	t.job = job
	metrics.PublishJobsTotal.WithLabelValues(metrics.OutcomeStarted).Inc()
	t.log.Info("Key publishing started",
		slog.String("fingerprint", fingerprint.String()),
		slog.String("job", job.ID()))
	return nil
}

// CheckAndReconcile polls the running job and, once it has finished, reports
// the outcome to notes and returns to idle. It must run before IsRunning is
// read for display.
func (t *Tracker) CheckAndReconcile(notes *interfaces.Notifications) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job == nil {
		return
	}

	exitCode, done := t.job.Poll()
	if !done {
		return
	}

	if exitCode == 0 {
		notes.Success(MsgPublished)
		metrics.PublishJobsTotal.WithLabelValues(metrics.OutcomeSucceeded).Inc()
		t.log.Info("Key publishing completed", slog.String("job", t.job.ID()))
	} else {
		// The user sees the generic message; the helper output goes to the log.
		notes.Error(MsgPublishFailed)
		metrics.PublishJobsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		attrs := []any{slog.String("job", t.job.ID()), slog.Int("exitCode", exitCode)}
		if d, ok := t.job.(detailer); ok {
			attrs = append(attrs, slog.String("detail", d.Detail()))
		}
		t.log.Warn("Key publishing failed", attrs...)
	}

	t.job = nil
}

// Cancel terminates the running job, if any, and returns to idle without
// waiting for the helper to exit. A job that finished since the last poll is
// still reported as cancelled.
func (t *Tracker) Cancel(notes *interfaces.Notifications) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job == nil {
		return
	}

	if err := t.job.Terminate(); err != nil {
		t.log.Warn("Could not terminate key publishing",
			slog.String("job", t.job.ID()),
			slog.Any("err", err))
	}

	t.log.Info("Key publishing cancelled", slog.String("job", t.job.ID()))
	t.job = nil
	metrics.PublishJobsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
	notes.Info(MsgPublishCanceled)
}

// IsRunning reports whether a job is held.
func (t *Tracker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job != nil
}
