package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grocer/backend/internal/infrastructure/scheduler"
	"github.com/grocer/backend/internal/interfaces/http/dto"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// JobSubmitter queues a background job by name
type JobSubmitter interface {
	Submit(name scheduler.JobName) (*scheduler.Job, error)
}

// SystemHandler serves health probes, build info and manual job triggers
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]HealthCheck
	jobs      JobSubmitter
}

// NewSystemHandler creates a new SystemHandler. jobs may be nil when the
// scheduler is disabled.
func NewSystemHandler(name, version string, checks map[string]HealthCheck, jobs JobSubmitter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		jobs:      jobs,
	}
}

// SystemInfoResponse is the build and uptime information
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse is the result of the readiness probe
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// JobResponse describes a queued job
type JobResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Health is the liveness probe
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready checks every dependency and answers 503 if one is down
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	c.JSON(status, resp)
}

// Info returns the service name, version and uptime
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// TriggerJob queues a scheduled job now
func (h *SystemHandler) TriggerJob(c *gin.Context) {
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "The scheduler is disabled")
		return
	}
	job, err := h.jobs.Submit(scheduler.JobName(c.Param("name")))
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Unknown job")
		return
	case errors.Is(err, scheduler.ErrJobInFlight):
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, "The job is already running")
		return
	case errors.Is(err, scheduler.ErrSchedulerNotRunning), errors.Is(err, scheduler.ErrJobQueueFull):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, err.Error())
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(JobResponse{
		ID:     job.ID.String(),
		Name:   string(job.Name),
		Status: string(scheduler.JobStatusPending),
	}))
}
