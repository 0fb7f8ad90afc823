package printing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
	"github.com/missionpuck/logprinter/internal/domain/printing"
	"github.com/missionpuck/logprinter/internal/domain/shared"
	infra "github.com/missionpuck/logprinter/internal/infrastructure/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/logger"
	"github.com/missionpuck/logprinter/internal/infrastructure/telemetry"
)

// Progress milestones of the pipeline
const (
	progressSplit      = 10
	progressRendered   = 40
	progressRasterized = 60
	progressPrinted    = 70
	defaultListLimit   = 20
)

// TemplateSource resolves form templates by name
type TemplateSource interface {
	Get(name string) (*infra.FormTemplate, error)
}

// PrinterSource resolves printers by name; "" is the default printer
type PrinterSource interface {
	Get(name string) (infra.Printer, error)
}

// Dependencies are the collaborators of the print service
type Dependencies struct {
	Jobs       printing.PrintJobRepository
	Guard      printing.JobGuard
	Templates  TemplateSource
	Measurer   infra.TextMeasurer
	Assembler  *infra.DocumentAssembler
	Rasterizer infra.Rasterizer
	Scratch    *infra.Scratch
	Printers   PrinterSource
	// Metrics may be nil
	Metrics *telemetry.JobMetrics
}

// Config holds print service settings
type Config struct {
	// TemplateName selects the form; empty uses the built-in ICS-109 form
	TemplateName   string
	PreparedBy     string
	WatermarkLabel string
	Location       *time.Location
	// GuardTTL bounds how long a crashed worker can hold the job guard. A
	// running worker extends its claim every GuardTTL/3.
	GuardTTL time.Duration
	// DPI overrides the rasterizer default when positive
	DPI int
	// OnProgress, if set, receives every progress update
	OnProgress ProgressFunc
}

// PrintService runs mission logs through the print pipeline, one job at a time
type PrintService struct {
	deps   Dependencies
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *printing.PrintJob
	workers sync.WaitGroup
}

// NewPrintService creates a new PrintService
func NewPrintService(deps Dependencies, config Config, log *zap.Logger) *PrintService {
	if log == nil {
		log = zap.NewNop()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.GuardTTL <= 0 {
		config.GuardTTL = printing.DefaultGuardTTL
	}
	return &PrintService{
		deps:   deps,
		config: config,
		logger: log,
		now:    time.Now,
	}
}

// jobInput is the validated input of one job
type jobInput struct {
	mission logbook.Mission
	records []logbook.LogRecord
	printer infra.Printer
}

// =============================================================================
// Job submission
// =============================================================================

// Submit validates the request, claims the job guard and starts the pipeline
// on a worker goroutine. It returns shared.ErrJobInProgress when another job
// holds the guard. The worker is detached from ctx.
func (s *PrintService) Submit(ctx context.Context, req SubmitPrintJobRequest) (*PrintJobResponse, error) {
	job, in, err := s.start(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := s.snapshot(job)

	workerCtx := context.WithoutCancel(ctx)
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		_ = s.execute(workerCtx, job, in)
	}()
	return resp, nil
}

// Run executes one job synchronously and returns its final state. The
// returned error is the pipeline failure, if any; the response is still set.
func (s *PrintService) Run(ctx context.Context, req SubmitPrintJobRequest) (*PrintJobResponse, error) {
	job, in, err := s.start(ctx, req)
	if err != nil {
		return nil, err
	}
	runErr := s.execute(ctx, job, in)
	return s.snapshot(job), runErr
}

// Wait blocks until every submitted job has finished
func (s *PrintService) Wait() {
	s.workers.Wait()
}

func (s *PrintService) start(ctx context.Context, req SubmitPrintJobRequest) (*printing.PrintJob, *jobInput, error) {
	if err := logbook.ValidateMission(req.Mission); err != nil {
		return nil, nil, err
	}
	if err := logbook.ValidateRecords(req.Mission.ID, req.Records); err != nil {
		return nil, nil, err
	}

	printer, err := s.deps.Printers.Get(req.Printer)
	if err != nil {
		return nil, nil, shared.NewDomainError("INVALID_PRINTER", err.Error())
	}

	s.mu.Lock()
	busy := s.current != nil
	s.mu.Unlock()
	if busy {
		return nil, nil, shared.ErrJobInProgress
	}

	job, err := printing.NewPrintJob(req.Mission.ID, req.Mission.Title, req.Mission.Number, printer.Name())
	if err != nil {
		return nil, nil, err
	}

	acquired, err := s.deps.Guard.Acquire(ctx, job.ID.String(), s.config.GuardTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire job guard: %w", err)
	}
	if !acquired {
		return nil, nil, shared.ErrJobInProgress
	}

	if err := s.deps.Jobs.Save(ctx, job); err != nil {
		s.releaseGuard(job)
		return nil, nil, fmt.Errorf("failed to save print job: %w", err)
	}

	s.mu.Lock()
	s.current = job
	s.mu.Unlock()

	s.logger.Info("print job accepted",
		zap.String("job_id", job.ID.String()),
		zap.String("mission_id", job.MissionID.String()),
		zap.String("printer", job.PrinterName),
		zap.Int("records", len(req.Records)))

	// The pipeline sorts its own copy.
	records := slices.Clone(req.Records)
	return job, &jobInput{mission: req.Mission, records: records, printer: printer}, nil
}

// execute runs the pipeline and records the terminal state. The guard is
// always released and the current job cleared.
func (s *PrintService) execute(ctx context.Context, job *printing.PrintJob, in *jobInput) error {
	ctx, log := logger.WithJobID(ctx, s.logger, job.ID.String())
	ctx, log = logger.WithMissionID(ctx, log, job.MissionID.String())

	ctx, span := telemetry.StartStageSpan(ctx, "run",
		telemetry.WithAttribute(telemetry.SpanAttrJobID, job.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrMissionID, job.MissionID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPrinter, job.PrinterName),
	)
	defer span.End()

	stopKeepAlive := s.keepGuard(job, log)
	defer func() {
		stopKeepAlive()
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		s.releaseGuard(job)
	}()

	s.emit(job, nil)

	err := s.pipeline(ctx, job, in, log)
	if err != nil {
		kind := infra.KindOf(err)
		telemetry.RecordError(span, err)
		telemetry.SetAttributes(span, telemetry.SpanAttrFailure, kind.String())

		s.mu.Lock()
		if failErr := job.Fail(kind, err.Error()); failErr != nil {
			log.Error("failed to mark job failed", zap.Error(failErr))
		}
		s.mu.Unlock()

		log.Error("print job failed",
			zap.String("failure_kind", kind.String()),
			zap.Error(err))
		s.emit(job, err)
	} else {
		log.Info("print job completed",
			zap.Int("pages", job.PageCount),
			zap.Duration("duration", job.Duration()))
		s.emit(job, nil)
	}

	s.mu.Lock()
	status, kind, duration := job.Status.String(), job.FailureKind.String(), job.Duration()
	s.mu.Unlock()
	s.deps.Metrics.RecordOutcome(ctx, status, kind, job.PrinterName, duration)

	if saveErr := s.deps.Jobs.Save(ctx, job); saveErr != nil {
		log.Error("failed to save final job state", zap.Error(saveErr))
	}
	return err
}

func (s *PrintService) pipeline(ctx context.Context, job *printing.PrintJob, in *jobInput, log *zap.Logger) error {
	if err := s.advance(ctx, job, printing.JobStatusRendering); err != nil {
		return err
	}

	tpl, err := s.deps.Templates.Get(s.config.TemplateName)
	if err != nil {
		return err
	}

	// Sort and split
	_, splitSpan := telemetry.StartStageSpan(ctx, "split")
	logbook.SortByTime(in.records)
	splitter, err := infra.NewTemplateRowSplitter(tpl, s.deps.Measurer, s.config.Location)
	if err != nil {
		telemetry.RecordError(splitSpan, err)
		splitSpan.End()
		return err
	}
	queue := infra.DrainRows(splitter.Split(in.records))
	telemetry.SetAttributes(splitSpan,
		telemetry.SpanAttrRecords, len(in.records),
		telemetry.SpanAttrRows, queue.Total())
	splitSpan.End()
	s.progress(job, progressSplit)

	// Paginate and render
	pages, err := s.render(ctx, job, tpl, in, queue, log)
	if err != nil {
		return err
	}

	ws, err := s.deps.Scratch.Acquire(job.ID)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := ws.Release(); relErr != nil {
			log.Warn("failed to release job workspace", zap.String("dir", ws.Dir), zap.Error(relErr))
		}
	}()

	doc, err := s.deps.Assembler.Assemble(pages, ws.DocumentPath)
	if err != nil {
		return err
	}

	// Rasterize
	if err := s.advance(ctx, job, printing.JobStatusRasterizing); err != nil {
		return err
	}
	rasterCtx, rasterSpan := telemetry.StartStageSpan(ctx, "rasterize",
		telemetry.WithAttribute(telemetry.SpanAttrPages, doc.PageCount))
	result, err := s.deps.Rasterizer.Rasterize(rasterCtx, &infra.RasterRequest{
		Document:  doc,
		OutputDir: ws.RasterDir,
		DPI:       s.config.DPI,
	})
	if err != nil {
		telemetry.RecordError(rasterSpan, err)
		rasterSpan.End()
		return err
	}
	telemetry.SetAttributes(rasterSpan, telemetry.SpanAttrFrameCount, len(result.Frames))
	rasterSpan.End()
	s.deps.Metrics.RecordRaster(ctx, result.RenderDuration)
	s.progress(job, progressRasterized)

	// Print
	if err := s.advance(ctx, job, printing.JobStatusPrinting); err != nil {
		return err
	}
	if err := s.print(ctx, job, in, result); err != nil {
		return err
	}

	return s.advance(ctx, job, printing.JobStatusCompleted)
}

func (s *PrintService) render(ctx context.Context, job *printing.PrintJob, tpl *infra.FormTemplate, in *jobInput, queue *infra.RowQueue, log *zap.Logger) ([]*infra.PageArtifact, error) {
	_, span := telemetry.StartStageSpan(ctx, "render")
	defer span.End()

	renderer, err := infra.NewPageRenderer(&infra.PageRendererConfig{
		Template:       tpl,
		PreparedBy:     s.config.PreparedBy,
		WatermarkLabel: s.config.WatermarkLabel,
		Location:       s.config.Location,
		Logger:         log,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	header := infra.NewHeader(in.mission, in.records, queue, s.now())
	rows := queue.Total()
	paginator := infra.NewPaginator(tpl)

	pages, err := paginator.Paginate(queue, func(content infra.PageContent) (*infra.PageArtifact, error) {
		artifact, err := renderer.Render(content, header)
		if err != nil {
			return nil, err
		}
		telemetry.AddEvent(span, "page_rendered", "index", content.Index, "rows", len(content.Rows))
		s.progress(job, progressSplit+(progressRendered-progressSplit)*content.Index/content.Total)
		return artifact, nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	capacity, _ := paginator.Capacity()
	s.mu.Lock()
	job.RecordLayout(len(in.records), rows, capacity, len(pages))
	s.mu.Unlock()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPages, len(pages),
		telemetry.SpanAttrCapacity, capacity)
	s.deps.Metrics.RecordPages(ctx, len(pages))
	log.Info("pages rendered",
		zap.Int("rows", rows),
		zap.Int("capacity", capacity),
		zap.Int("pages", len(pages)))
	return pages, nil
}

func (s *PrintService) print(ctx context.Context, job *printing.PrintJob, in *jobInput, result *infra.RasterResult) error {
	ctx, span := telemetry.StartStageSpan(ctx, "print",
		telemetry.WithAttribute(telemetry.SpanAttrPrinter, in.printer.Name()))
	defer span.End()

	driver := infra.NewPrintDriver(infra.NewPNGFrames(result), func(drawn, total int) {
		s.progress(job, progressRasterized+(progressPrinted-progressRasterized)*drawn/total)
	})

	err := in.printer.Print(ctx, &infra.PrintRequest{
		JobID: job.ID,
		Title: in.mission.String(),
		Pages: driver,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.progress(job, progressPrinted)

	if !driver.Done() {
		err := infra.NewRenderError(infra.ErrCodePrinterFailed,
			fmt.Sprintf("printer stopped after %d of %d frames", driver.Drawn(), len(result.Frames)), nil)
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// advance moves the job to target and persists the transition
func (s *PrintService) advance(ctx context.Context, job *printing.PrintJob, target printing.JobStatus) error {
	s.mu.Lock()
	err := job.Advance(target)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if target != printing.JobStatusCompleted {
		if err := s.deps.Jobs.Save(ctx, job); err != nil {
			return fmt.Errorf("failed to save print job: %w", err)
		}
	}
	return nil
}

func (s *PrintService) progress(job *printing.PrintJob, percent int) {
	s.mu.Lock()
	before := job.Progress
	job.SetProgress(percent)
	changed := job.Progress != before
	s.mu.Unlock()
	if changed {
		s.emit(job, nil)
	}
}

func (s *PrintService) emit(job *printing.PrintJob, err error) {
	if s.config.OnProgress == nil {
		return
	}
	s.mu.Lock()
	update := ProgressUpdate{JobID: job.ID, Percent: job.Progress, Status: job.Status, Err: err}
	s.mu.Unlock()
	s.config.OnProgress(update)
}

// keepGuard extends the job's guard claim until the returned stop func is
// called. Losing the claim is logged; the job keeps running.
func (s *PrintService) keepGuard(job *printing.PrintJob, log *zap.Logger) (stop func()) {
	interval := s.config.GuardTTL / 3
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				held, err := s.deps.Guard.Extend(ctx, job.ID.String(), s.config.GuardTTL)
				cancel()
				switch {
				case err != nil:
					log.Warn("failed to extend job guard", zap.Error(err))
				case !held:
					log.Warn("job guard lost to another holder")
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
		})
	}
}

func (s *PrintService) releaseGuard(job *printing.PrintJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.deps.Guard.Release(ctx, job.ID.String()); err != nil {
		s.logger.Warn("failed to release job guard",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}
}

func (s *PrintService) snapshot(job *printing.PrintJob) *PrintJobResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toPrintJobResponse(job)
}

// =============================================================================
// Job queries
// =============================================================================

// Current returns the job in flight in this process, if any
func (s *PrintService) Current() (*PrintJobResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return toPrintJobResponse(s.current), true
}

// IsBusy reports whether any process holds the job guard
func (s *PrintService) IsBusy(ctx context.Context) (bool, error) {
	holder, err := s.deps.Guard.Holder(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read job guard: %w", err)
	}
	return holder != "", nil
}

// GetJob retrieves a job by ID
func (s *PrintService) GetJob(ctx context.Context, jobID uuid.UUID) (*PrintJobResponse, error) {
	if resp, ok := s.Current(); ok && resp.ID == jobID.String() {
		return resp, nil
	}
	job, err := s.deps.Jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return toPrintJobResponse(job), nil
}

// ListJobs returns the job history, newest first
func (s *PrintService) ListJobs(ctx context.Context, req ListPrintJobsRequest) (*ListPrintJobsResponse, error) {
	var (
		jobs []printing.PrintJob
		err  error
	)
	if req.MissionID != "" {
		missionID, parseErr := uuid.Parse(req.MissionID)
		if parseErr != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid mission ID")
		}
		jobs, err = s.deps.Jobs.FindByMission(ctx, missionID)
		if err == nil && req.Limit > 0 && len(jobs) > req.Limit {
			jobs = jobs[:req.Limit]
		}
	} else {
		limit := req.Limit
		if limit <= 0 {
			limit = defaultListLimit
		}
		jobs, err = s.deps.Jobs.FindRecent(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}

	return &ListPrintJobsResponse{
		Jobs:  toPrintJobResponses(jobs),
		Total: len(jobs),
	}, nil
}
