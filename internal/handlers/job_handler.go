package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/feria-api/internal/jobs"
)

type HealthHandler struct {
	worker *jobs.Worker
}

func NewHealthHandler(worker *jobs.Worker) *HealthHandler {
	return &HealthHandler{worker: worker}
}

// @Summary Health Check
// @Description Checks if the API is running and reports background job statistics
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"service": "feria-api",
		"version": "1.0.0",
	}
	if h.worker != nil {
		resp["jobs"] = h.worker.GetStats()
	}
	c.JSON(http.StatusOK, resp)
}

type JobHandler struct {
	worker *jobs.Worker
}

func NewJobHandler(worker *jobs.Worker) *JobHandler {
	return &JobHandler{worker: worker}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (runs, failures, last error)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.WorkerStats
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.GetStats())
}

// Run queues a registered job for immediate execution
// @Summary Run background job
// @Description Queue a registered job (e.g. reconcile) to run now
// @Tags Jobs
// @Produce json
// @Param name path string true "Job name"
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")

	err := h.worker.RunNow(name)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"job": name, "status": "queued"})
	case errors.Is(err, jobs.ErrUnknownJob):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, jobs.ErrJobPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "conflict"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "unavailable"})
	}
}
