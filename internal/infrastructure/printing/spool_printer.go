package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	defaultSpoolBinary  = "lp"
	defaultSpoolTimeout = 60 * time.Second
)

// SpoolPrinterConfig contains configuration for the CUPS spool printer
type SpoolPrinterConfig struct {
	// Destination is the CUPS queue name passed to lp -d
	Destination string
	// BinaryPath is the path to the lp binary
	// If empty, will search in PATH
	BinaryPath string
	// Sides is passed as -o sides=..., e.g. two-sided-long-edge. Empty leaves
	// the queue default.
	Sides   string
	Copies  int
	Timeout time.Duration
	// TempDir holds the spooled PDF until lp returns
	TempDir  string
	Geometry PaperGeometry
	Logger   *zap.Logger
}

// SpoolPrinter renders the requested pages into a PDF and submits it to a
// CUPS queue with lp
type SpoolPrinter struct {
	config *SpoolPrinterConfig
	logger *zap.Logger
}

// NewSpoolPrinter creates a new spool printer
func NewSpoolPrinter(config *SpoolPrinterConfig) (*SpoolPrinter, error) {
	if config == nil || config.Destination == "" {
		return nil, NewRenderError(ErrCodePrinterFailed, "spool printer needs a destination", nil)
	}

	// Set defaults
	if config.BinaryPath == "" {
		config.BinaryPath = defaultSpoolBinary
	}
	if config.Timeout == 0 {
		config.Timeout = defaultSpoolTimeout
	}
	if config.Copies <= 0 {
		config.Copies = 1
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	config.Geometry = config.Geometry.withDefaults()

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("lp binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SpoolPrinter{config: config, logger: logger}, nil
}

// Name implements Printer
func (p *SpoolPrinter) Name() string {
	return p.config.Destination
}

// Print implements Printer
func (p *SpoolPrinter) Print(ctx context.Context, req *PrintRequest) error {
	if req == nil {
		return NewRenderError(ErrCodePrinterFailed, "print request is nil", nil)
	}
	g := p.config.Geometry

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "in",
		Size:    fpdf.SizeType{Wd: g.WidthIn, Ht: g.HeightIn},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(req.Title, true)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pages, err := requestPages(ctx, g, req.Pages, func(page *PrintPage) error {
		var buf bytes.Buffer
		if err := png.Encode(&buf, page.Canvas); err != nil {
			return NewRenderError(ErrCodePrinterFailed, "failed to encode page", err)
		}
		name := "page-" + strconv.Itoa(page.Number)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, g.WidthIn, g.HeightIn, false, opts, 0, "")
		return pdf.Error()
	})
	if err != nil {
		return err
	}

	spoolFile, err := os.CreateTemp(p.config.TempDir, "spool-*.pdf")
	if err != nil {
		return NewRenderError(ErrCodePrinterFailed, "failed to create spool file", err)
	}
	spoolPath := spoolFile.Name()
	defer os.Remove(spoolPath)

	if err := pdf.Output(spoolFile); err != nil {
		spoolFile.Close()
		return NewRenderError(ErrCodePrinterFailed, "failed to write spool file", err)
	}
	spoolFile.Close()

	return p.submit(ctx, req.Title, spoolPath, pages)
}

func (p *SpoolPrinter) submit(ctx context.Context, title, path string, pages int) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	args := p.buildArgs(title, path)
	p.logger.Debug("executing lp",
		zap.String("binary", p.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, p.config.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewRenderError(ErrCodePrinterFailed,
				fmt.Sprintf("lp timed out after %v", p.config.Timeout), err)
		}
		p.logger.Error("lp failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()))
		return NewRenderError(ErrCodePrinterFailed, "lp execution failed: "+stderr.String(), err)
	}

	p.logger.Info("document spooled",
		zap.String("destination", p.config.Destination),
		zap.Int("pages", pages),
		zap.String("lp", string(bytes.TrimSpace(stdout.Bytes()))))
	return nil
}

// buildArgs constructs the command-line arguments for lp
func (p *SpoolPrinter) buildArgs(title, path string) []string {
	args := []string{
		"-d", p.config.Destination,
		"-n", strconv.Itoa(p.config.Copies),
	}
	if title != "" {
		args = append(args, "-t", title)
	}
	if p.config.Sides != "" {
		args = append(args, "-o", "sides="+p.config.Sides)
	}
	args = append(args, "-o", "fit-to-page", path)
	return args
}

var _ Printer = (*SpoolPrinter)(nil)
