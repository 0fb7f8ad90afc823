package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const workspacePrefix = "job-"

// ScratchConfig contains configuration for the scratch area
type ScratchConfig struct {
	// BaseDir holds one workspace directory per running job
	// Default: <os temp>/logprinter
	BaseDir string
	Logger  *zap.Logger
}

// Scratch hands out per-job workspaces for the transient document and frames
type Scratch struct {
	config *ScratchConfig
	logger *zap.Logger
}

// Workspace is one job's private temporary area. Release removes it.
type Workspace struct {
	Dir          string
	DocumentPath string
	RasterDir    string

	logger *zap.Logger
}

// NewScratch creates the scratch area
func NewScratch(config *ScratchConfig) (*Scratch, error) {
	if config == nil {
		config = &ScratchConfig{}
	}

	// Set defaults
	if config.BaseDir == "" {
		config.BaseDir = filepath.Join(os.TempDir(), "logprinter")
	}

	// Ensure base directory exists
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create scratch directory: %s", config.BaseDir), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scratch{
		config: config,
		logger: logger,
	}, nil
}

// BaseDir returns the scratch root
func (s *Scratch) BaseDir() string {
	return s.config.BaseDir
}

// Acquire creates a fresh, randomly named workspace for jobID
func (s *Scratch) Acquire(jobID uuid.UUID) (*Workspace, error) {
	dir, err := os.MkdirTemp(s.config.BaseDir, workspacePrefix+jobID.String()+"-*")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create job workspace", err)
	}

	ws := &Workspace{
		Dir:          dir,
		DocumentPath: filepath.Join(dir, "document-"+uuid.NewString()+".pdf"),
		RasterDir:    filepath.Join(dir, "frames-"+uuid.NewString()),
		logger:       s.logger,
	}
	if err := os.Mkdir(ws.RasterDir, 0755); err != nil {
		os.RemoveAll(dir)
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create raster directory", err)
	}

	s.logger.Debug("workspace acquired", zap.String("dir", dir))
	return ws, nil
}

// Release deletes the workspace and everything in it. It is safe to call
// more than once.
func (w *Workspace) Release() error {
	if err := os.RemoveAll(w.Dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return NewRenderError(ErrCodeStorageFailed, "failed to remove job workspace", err)
	}
	w.logger.Debug("workspace released", zap.String("dir", w.Dir))
	return nil
}

// CleanupOlderThan removes workspaces older than the specified duration.
// They are left behind only when a process dies mid-job.
func (s *Scratch) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deletedCount := 0

	entries, err := os.ReadDir(s.config.BaseDir)
	if err != nil {
		return 0, NewRenderError(ErrCodeStorageFailed, "failed to read scratch directory", err)
	}

	for _, entry := range entries {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return deletedCount, ctx.Err()
		default:
		}

		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Skip errors
		}

		// Check modification time
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.config.BaseDir, entry.Name())
			if err := os.RemoveAll(path); err == nil {
				deletedCount++
				s.logger.Debug("deleted orphaned workspace", zap.String("path", path))
			}
		}
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deletedCount),
		zap.Duration("age", age))

	return deletedCount, nil
}
