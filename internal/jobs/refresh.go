package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// PaperIDSource lists the papers eligible for a hot score sweep.
type PaperIDSource interface {
	AllIDs() ([]string, error)
}

// ActivitySink receives activity signals for papers whose scores should be
// recomputed. The recompute worker implements it.
type ActivitySink interface {
	PaperActivity(ctx context.Context, paperID string)
}

// HotRefreshJob periodically marks every paper for recomputation so hot
// scores decay even on papers with no new activity. Votes and discussions
// keep scores current on their own; this sweep covers the quiet papers.
type HotRefreshJob struct {
	papers  PaperIDSource
	sink    ActivitySink
	logger  *slog.Logger
	metrics *Metrics

	cron *cron.Cron
	spec string
}

// NewHotRefreshJob creates a hot refresh job with the given cron spec
// (standard five-field format, e.g. "*/10 * * * *").
func NewHotRefreshJob(spec string, papers PaperIDSource, sink ActivitySink, logger *slog.Logger, metrics *Metrics) *HotRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &HotRefreshJob{
		papers:  papers,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		cron:    cron.New(),
		spec:    spec,
	}
}

// Start schedules the sweep and starts the cron runner.
func (j *HotRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("hot refresh job started", "cron", j.spec)
	return nil
}

// Stop stops the cron runner and waits for an in-flight sweep to finish.
func (j *HotRefreshJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("hot refresh job stopped")
}

// Run performs one sweep. Exported so the sweep can be triggered manually.
func (j *HotRefreshJob) Run() {
	start := time.Now()
	ctx := context.Background()

	ids, err := j.papers.AllIDs()
	if err != nil {
		j.logger.Error("hot refresh sweep failed to list papers", "error", err)
		if j.metrics != nil {
			j.metrics.IncJobsTotal(JobTypeHotRefresh, StatusFailure)
			j.metrics.IncJobErrors(JobTypeHotRefresh, "database_error")
		}
		return
	}

	for _, id := range ids {
		j.sink.PaperActivity(ctx, id)
	}

	elapsed := time.Since(start)
	j.logger.Info("hot refresh sweep complete", "papers", len(ids), "duration", elapsed)
	if j.metrics != nil {
		j.metrics.IncJobsTotal(JobTypeHotRefresh, StatusSuccess)
		j.metrics.ObserveJobDuration(JobTypeHotRefresh, elapsed.Seconds())
	}
}
