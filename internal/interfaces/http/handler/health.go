package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/missionpuck/logprinter/internal/interfaces/http/dto"
)

// HealthChecker is satisfied by the database handle
type HealthChecker interface {
	Ping() error
}

// HealthHandler serves liveness and readiness
type HealthHandler struct {
	BaseHandler
	db      HealthChecker
	jobs    PrintJobService
	version string
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db HealthChecker, jobs PrintJobService, version string) *HealthHandler {
	return &HealthHandler{db: db, jobs: jobs, version: version}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database"`
	Busy     bool   `json:"busy"`
}

// Health answers 200 when the database is reachable and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Version: h.version, Database: "ok"}
	status := http.StatusOK

	if h.db == nil {
		resp.Database = "disabled"
	} else if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	if busy, err := h.jobs.IsBusy(c.Request.Context()); err == nil {
		resp.Busy = busy
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}
