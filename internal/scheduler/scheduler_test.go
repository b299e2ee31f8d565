package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/twstrategy/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	failures int32 // attempts that fail before succeeding; negative fails forever
	calls    int32
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if j.failures < 0 || n <= j.failures {
		return errors.New("feed not ready")
	}
	return nil
}

func newTestScheduler(opts ...Option) *Scheduler {
	opts = append([]Option{WithRetry(2, 10*time.Millisecond)}, opts...)
	return New(logger.Nop(), time.UTC, opts...)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&stubJob{name: "refresh", schedule: "0 */30 * * * *"}))
	assert.Error(t, s.AddJob(&stubJob{name: "refresh", schedule: "0 */30 * * * *"}), "duplicate name")
	assert.Error(t, s.AddJob(&stubJob{name: "bad", schedule: "not a schedule"}))

	assert.ElementsMatch(t, []string{"refresh"}, s.GetAllJobs())
}

func TestLocation(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)
	assert.Same(t, taipei, New(logger.Nop(), taipei).Location())
	assert.Same(t, time.Local, New(logger.Nop(), nil).Location())
}

func TestRunJobSync_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "refresh", schedule: "@every 1h", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("refresh")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.calls))
}

func TestRunJobSync_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&stubJob{name: "refresh", schedule: "@every 1h", failures: -1}))

	result, err := s.RunJobSync("refresh")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "feed not ready", result.Error)

	history, err := s.GetJobHistory("refresh")
	require.NoError(t, err)
	require.Len(t, history, 1)

	stats := s.GetJobStats()["refresh"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
	assert.Equal(t, "feed not ready", stats.LastError)
}

func TestRunJob_Unknown(t *testing.T) {
	s := newTestScheduler()

	assert.Error(t, s.RunJob("missing"))
	_, err := s.RunJobSync("missing")
	assert.Error(t, err)
	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&stubJob{name: "cleanup", schedule: "@every 1m"}))

	require.NoError(t, s.RemoveJob("cleanup"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.GetJobStats())
	assert.Error(t, s.RemoveJob("cleanup"))
}

func TestStopInterruptsRetries(t *testing.T) {
	s := New(logger.Nop(), time.UTC, WithRetry(5, time.Hour))
	job := &stubJob{name: "refresh", schedule: "@every 1h", failures: -1}
	require.NoError(t, s.AddJob(job))
	s.Start()

	require.NoError(t, s.RunJob("refresh"))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.calls) >= 1
	}, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt the retry wait")
	}

	history, err := s.GetJobHistory("refresh")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Contains(t, history[0].Error, "scheduler stopped")
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{JobName: "refresh", Success: i%4 != 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetFailedResults(), 25)
	assert.InDelta(t, 0.75, h.GetSuccessRate(), 1e-9)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
}
