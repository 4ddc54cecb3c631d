package basinexport

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Watcher polls the manifest's non-terminal jobs until they settle,
// so nobody has to keep re-running `hydroclip status` by hand.
type Watcher struct {
	service          Service
	notifier         Notifier
	interval         time.Duration
	completedCounter metric.Int64Counter
	failedCounter    metric.Int64Counter
}

func NewWatcher(service Service, notifier Notifier, interval time.Duration) (Watcher, error) {
	if interval <= 0 {
		interval = time.Minute
	}
	completedCounter, err := meter.Int64Counter(
		"export_jobs_completed_total",
		metric.WithDescription("The total amount of export jobs observed reaching COMPLETED."),
	)
	if err != nil {
		return Watcher{}, err
	}
	failedCounter, err := meter.Int64Counter(
		"export_jobs_failed_total",
		metric.WithDescription("The total amount of export jobs observed reaching FAILED or CANCELLED."),
	)
	if err != nil {
		return Watcher{}, err
	}
	return Watcher{
		service:          service,
		notifier:         notifier,
		interval:         interval,
		completedCounter: completedCounter,
		failedCounter:    failedCounter,
	}, nil
}

// Run blocks until ctx is cancelled.
func (w Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w Watcher) poll(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "watcher:poll")
	defer span.End()

	transitions, err := w.service.RefreshJobs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh pass failed")
		return
	}

	for _, t := range transitions {
		job := t.Job
		slog.Info(
			"export job state changed",
			"task", job.TaskId,
			"region", job.Region,
			"kind", job.Kind,
			"from", t.Previous,
			"to", job.State,
		)

		switch job.State {
		case "COMPLETED":
			w.completedCounter.Add(ctx, 1)
		case "FAILED", "CANCELLED":
			w.failedCounter.Add(ctx, 1)
		default:
			continue
		}

		err := w.notifier.JobFinished(job)
		if err != nil {
			slog.Warn("failed to send job notification", "task", job.TaskId, "err", err)
		}
	}
}
