package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultGhostscriptBinary = "gs"
	defaultRasterTimeout     = 2 * time.Minute
	defaultRasterDPI         = 200
	defaultRasterDevice      = "png16m"

	framePattern = "frame-%04d.png"
	frameGlob    = "frame-*.png"
)

// RasterRequest asks for one document to be rasterized into OutputDir
type RasterRequest struct {
	Document *Document
	// OutputDir must exist and be empty; frames are written as frame-NNNN.png
	OutputDir string
	// DPI overrides the configured resolution
	DPI int
	// Timeout overrides the configured timeout
	Timeout time.Duration
}

// RasterResult lists the frames in page order
type RasterResult struct {
	Dir            string
	Frames         []string
	RenderDuration time.Duration
}

// Rasterizer converts a document into page-image frames
type Rasterizer interface {
	Rasterize(ctx context.Context, req *RasterRequest) (*RasterResult, error)
}

// GhostscriptConfig contains configuration for the Ghostscript rasterizer
type GhostscriptConfig struct {
	// BinaryPath is the path to the gs binary
	// If empty, will search in PATH
	BinaryPath string
	// DefaultTimeout bounds one conversion
	DefaultTimeout time.Duration
	// DPI for rendering (default: 200)
	DPI int
	// Device is the Ghostscript output device (default: png16m)
	Device string
	// Logger for debug output
	Logger *zap.Logger
}

// GhostscriptRasterizer renders PDF pages to PNG frames with Ghostscript
type GhostscriptRasterizer struct {
	config *GhostscriptConfig
	logger *zap.Logger
}

// NewGhostscriptRasterizer creates a new Ghostscript-based rasterizer
func NewGhostscriptRasterizer(config *GhostscriptConfig) (*GhostscriptRasterizer, error) {
	if config == nil {
		config = &GhostscriptConfig{}
	}

	// Set defaults
	if config.BinaryPath == "" {
		config.BinaryPath = defaultGhostscriptBinary
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultRasterTimeout
	}
	if config.DPI == 0 {
		config.DPI = defaultRasterDPI
	}
	if config.Device == "" {
		config.Device = defaultRasterDevice
	}

	// Verify gs is available
	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("ghostscript binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GhostscriptRasterizer{
		config: config,
		logger: logger,
	}, nil
}

// resolveBinaryPath finds the full path to the binary
func resolveBinaryPath(path string) (string, error) {
	// If it's an absolute path, check if it exists
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}

	// Search in PATH
	return exec.LookPath(path)
}

// Rasterize blocks until Ghostscript exits or the timeout expires
func (r *GhostscriptRasterizer) Rasterize(ctx context.Context, req *RasterRequest) (*RasterResult, error) {
	if req == nil || req.Document == nil || req.Document.Path == "" {
		return nil, NewRenderError(ErrCodeRasterFailed, "raster request has no document", nil)
	}
	if req.OutputDir == "" {
		return nil, NewRenderError(ErrCodeRasterFailed, "raster request has no output directory", nil)
	}

	startTime := time.Now()

	dpi := req.DPI
	if dpi == 0 {
		dpi = r.config.DPI
	}

	// Determine timeout
	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := r.buildArgs(req.Document.Path, req.OutputDir, dpi)

	r.logger.Debug("executing ghostscript",
		zap.String("binary", r.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.config.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRasterTimeout,
				fmt.Sprintf("rasterization timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRasterCanceled, "rasterization was canceled", err)
		}

		r.logger.Error("ghostscript failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()),
			zap.String("stdout", stdout.String()))

		return nil, NewRenderError(ErrCodeRasterFailed,
			"ghostscript execution failed: "+stderr.String(), err)
	}

	frames, err := listFrames(req.OutputDir)
	if err != nil {
		return nil, NewRenderError(ErrCodeRasterFailed, "failed to list frames", err)
	}
	if len(frames) != req.Document.PageCount {
		return nil, NewRenderError(ErrCodeRasterFailed,
			fmt.Sprintf("ghostscript produced %d frames for %d pages", len(frames), req.Document.PageCount), nil)
	}

	renderDuration := time.Since(startTime)

	r.logger.Info("document rasterized",
		zap.Int("frames", len(frames)),
		zap.Int("dpi", dpi),
		zap.Duration("duration", renderDuration))

	return &RasterResult{
		Dir:            req.OutputDir,
		Frames:         frames,
		RenderDuration: renderDuration,
	}, nil
}

// buildArgs constructs the command-line arguments for gs
func (r *GhostscriptRasterizer) buildArgs(documentPath, outputDir string, dpi int) []string {
	return []string{
		"-q",
		"-dBATCH",
		"-dNOPAUSE",
		"-dSAFER",
		"-sDEVICE=" + r.config.Device,
		"-r" + strconv.Itoa(dpi),
		"-dTextAlphaBits=4",
		"-dGraphicsAlphaBits=4",
		"-sOutputFile=" + filepath.Join(outputDir, framePattern),
		documentPath,
	}
}

// listFrames returns the frame files of dir in page order
func listFrames(dir string) ([]string, error) {
	frames, err := filepath.Glob(filepath.Join(dir, frameGlob))
	if err != nil {
		return nil, err
	}
	sort.Strings(frames)
	return frames, nil
}

// Ensure GhostscriptRasterizer implements Rasterizer
var _ Rasterizer = (*GhostscriptRasterizer)(nil)
