package printing

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DirectoryPrinterConfig contains configuration for the directory printer
type DirectoryPrinterConfig struct {
	// Name identifies the printer in job history (default: directory)
	Name string
	// Dir receives one PNG per printed page
	Dir      string
	Geometry PaperGeometry
	Logger   *zap.Logger
}

// DirectoryPrinter "prints" pages as PNG files. It is used for dry runs and
// archival copies.
type DirectoryPrinter struct {
	config *DirectoryPrinterConfig
	logger *zap.Logger
}

// NewDirectoryPrinter creates a new directory printer
func NewDirectoryPrinter(config *DirectoryPrinterConfig) (*DirectoryPrinter, error) {
	if config == nil || config.Dir == "" {
		return nil, NewRenderError(ErrCodePrinterFailed, "directory printer needs an output directory", nil)
	}
	if config.Name == "" {
		config.Name = "directory"
	}
	config.Geometry = config.Geometry.withDefaults()

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, NewRenderError(ErrCodePrinterFailed,
			fmt.Sprintf("failed to create output directory: %s", config.Dir), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DirectoryPrinter{config: config, logger: logger}, nil
}

// Name implements Printer
func (p *DirectoryPrinter) Name() string {
	return p.config.Name
}

// PagePath returns where page n of a job is written
func (p *DirectoryPrinter) PagePath(req *PrintRequest, n int) string {
	return filepath.Join(p.config.Dir, fmt.Sprintf("%s-page-%03d.png", req.JobID, n))
}

// Print implements Printer
func (p *DirectoryPrinter) Print(ctx context.Context, req *PrintRequest) error {
	if req == nil {
		return NewRenderError(ErrCodePrinterFailed, "print request is nil", nil)
	}
	pages, err := requestPages(ctx, p.config.Geometry, req.Pages, func(page *PrintPage) error {
		path := p.PagePath(req, page.Number)
		file, err := os.Create(path)
		if err != nil {
			return NewRenderError(ErrCodePrinterFailed, "failed to create page file", err)
		}
		if err := png.Encode(file, page.Canvas); err != nil {
			file.Close()
			return NewRenderError(ErrCodePrinterFailed, "failed to encode page", err)
		}
		if err := file.Close(); err != nil {
			return NewRenderError(ErrCodePrinterFailed, "failed to write page file", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.logger.Info("pages written",
		zap.String("dir", p.config.Dir),
		zap.String("title", req.Title),
		zap.Int("pages", pages))
	return nil
}

var _ Printer = (*DirectoryPrinter)(nil)
