package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/twstrategy/internal/brain"
	"github.com/wonny/twstrategy/pkg/logger"
)

// ErrNoFlowPublished marks a refresh that found no institutional flow (feeds not published yet)
var ErrNoFlowPublished = errors.New("no institutional flow published")

// ErrLowCoverage marks a refresh whose flow covers too little of the directory (one feed missing)
var ErrLowCoverage = errors.New("institutional flow coverage too low")

// Refresher reloads the snapshots and publishes a new leaderboard
type Refresher interface {
	Refresh(ctx context.Context) (*brain.RankingView, error)
}

// SnapshotRefreshJob keeps the directory, flow and leaderboard current
// ⭐ SSOT: 스냅샷 갱신 스케줄은 이 Job에서만
type SnapshotRefreshJob struct {
	refresher Refresher
	schedule  string
	logger    *logger.Logger
}

// NewSnapshotRefreshJob creates a new snapshot refresh job
func NewSnapshotRefreshJob(refresher Refresher, schedule string, log *logger.Logger) *SnapshotRefreshJob {
	if schedule == "" {
		schedule = "0 */30 * * * *"
	}
	return &SnapshotRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *SnapshotRefreshJob) Name() string {
	return "snapshot_refresh"
}

// Schedule returns the cron schedule (every 30 minutes by default)
func (j *SnapshotRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes the snapshot. An empty or partial flow is reported as an error so the scheduler retries.
func (j *SnapshotRefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled snapshot refresh")

	view, err := j.refresher.Refresh(ctx)
	if err != nil {
		return err
	}
	if view.Scanned == 0 {
		return ErrNoFlowPublished
	}
	if view.Quality != nil && !view.Quality.Passed {
		return fmt.Errorf("%w: %s", ErrLowCoverage, strings.Join(view.Quality.Issues, "; "))
	}

	j.logger.WithFields(map[string]interface{}{
		"trade_date": view.TradeDate,
		"scanned":    view.Scanned,
		"entries":    len(view.Entries),
	}).Info("Snapshot refresh completed")

	return nil
}
