package handlers

import (
	"net/http"

	"github.com/wonny/twstrategy/internal/scheduler"
)

// JobStatsProvider reports scheduled job statistics
type JobStatsProvider interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SchedulerHandler exposes scheduler state
type SchedulerHandler struct {
	provider JobStatsProvider
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(provider JobStatsProvider) *SchedulerHandler {
	return &SchedulerHandler{provider: provider}
}

// GetJobs returns statistics for every scheduled job
// GET /api/scheduler/jobs
func (h *SchedulerHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.provider.GetJobStats())
}
