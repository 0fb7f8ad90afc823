package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	printingapp "github.com/missionpuck/logprinter/internal/application/printing"
	"github.com/missionpuck/logprinter/internal/interfaces/http/dto"
	"github.com/missionpuck/logprinter/internal/interfaces/http/middleware"
)

// PrintJobService is the part of the print service the HTTP layer drives
type PrintJobService interface {
	Submit(ctx context.Context, req printingapp.SubmitPrintJobRequest) (*printingapp.PrintJobResponse, error)
	Current() (*printingapp.PrintJobResponse, bool)
	IsBusy(ctx context.Context) (bool, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*printingapp.PrintJobResponse, error)
	ListJobs(ctx context.Context, req printingapp.ListPrintJobsRequest) (*printingapp.ListPrintJobsResponse, error)
}

var _ PrintJobService = (*printingapp.PrintService)(nil)

// PrintJobHandler handles print job endpoints
type PrintJobHandler struct {
	BaseHandler
	service PrintJobService
}

// NewPrintJobHandler creates a new PrintJobHandler
func NewPrintJobHandler(service PrintJobService) *PrintJobHandler {
	return &PrintJobHandler{service: service}
}

// CurrentJobResponse reports the job running in this process
type CurrentJobResponse struct {
	Busy bool                          `json:"busy"`
	Job  *printingapp.PrintJobResponse `json:"job,omitempty"`
}

// Submit queues a mission log for printing. The job runs in the background
// and is answered with 202; a second job while one runs is answered with 409.
func (h *PrintJobHandler) Submit(c *gin.Context) {
	var req printingapp.SubmitPrintJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	job, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Set(middleware.JobIDKey, job.ID)
	c.Header("Location", c.FullPath()+"/"+job.ID)
	h.Accepted(c, job)
}

// Current reports whether a job is running and, when it runs here, its state
func (h *PrintJobHandler) Current(c *gin.Context) {
	if job, ok := h.service.Current(); ok {
		c.Set(middleware.JobIDKey, job.ID)
		h.Success(c, CurrentJobResponse{Busy: true, Job: job})
		return
	}

	// Another process may hold the guard.
	busy, err := h.service.IsBusy(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CurrentJobResponse{Busy: busy})
}

// List returns the job history, newest first
func (h *PrintJobHandler) List(c *gin.Context) {
	var req printingapp.ListPrintJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, jobs)
}

// Get returns one job by ID
func (h *PrintJobHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}
	c.Set(middleware.JobIDKey, req.ID)

	job, err := h.service.GetJob(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}
