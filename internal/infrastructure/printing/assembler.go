package printing

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"
)

// Document is the merged multi-page PDF handed to the rasterizer
type Document struct {
	Path      string
	PageCount int
}

// DocumentAssemblerConfig contains configuration for the assembler
type DocumentAssemblerConfig struct {
	// PageWidth and PageHeight in points; every page is placed at this size.
	PageWidth  float64
	PageHeight float64
	Logger     *zap.Logger
}

// DocumentAssembler merges single-page artifacts into one PDF
type DocumentAssembler struct {
	config *DocumentAssemblerConfig
	logger *zap.Logger
}

// NewDocumentAssembler creates a new assembler
func NewDocumentAssembler(config *DocumentAssemblerConfig) (*DocumentAssembler, error) {
	if config == nil || config.PageWidth <= 0 || config.PageHeight <= 0 {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "assembler needs a positive page size", nil)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DocumentAssembler{
		config: config,
		logger: logger,
	}, nil
}

// Assemble writes pages, in order, to path. Pages must be numbered 1..n.
func (a *DocumentAssembler) Assemble(pages []*PageArtifact, path string) (*Document, error) {
	if len(pages) == 0 {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "no pages to assemble", nil)
	}
	for i, p := range pages {
		if p == nil || p.Index != i+1 {
			return nil, NewRenderError(ErrCodeAssemblyFailed,
				fmt.Sprintf("page at position %d is out of order", i+1), nil)
		}
		if len(p.PDF) == 0 {
			return nil, NewRenderError(ErrCodeAssemblyFailed,
				fmt.Sprintf("page %d is empty", p.Index), nil)
		}
	}

	startTime := time.Now()
	w, h := a.config.PageWidth, a.config.PageHeight

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)

	imp := gofpdi.NewImporter()
	for _, p := range pages {
		pdf.AddPage()
		rs := io.ReadSeeker(bytes.NewReader(p.PDF))
		err := guardImport(func() {
			tpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
			imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
		})
		if err != nil {
			return nil, NewRenderError(ErrCodeAssemblyFailed,
				fmt.Sprintf("failed to import page %d", p.Index), err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to write document", err)
	}
	if err := checkPageCount(buf.Bytes(), len(pages)); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		os.Remove(path)
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to write document", err)
	}

	a.logger.Info("document assembled",
		zap.String("path", path),
		zap.Int("pages", len(pages)),
		zap.Duration("duration", time.Since(startTime)))

	return &Document{Path: path, PageCount: len(pages)}, nil
}

// CountPages estimates the page count of PDF data
// This is a simple heuristic that counts "/Type /Page" occurrences
func CountPages(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// Each page has one "/Type /Page" but the count also includes "/Type /Pages"
	// So we subtract the parent Pages object occurrences
	parentCount := bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count-parentCount, 0)
}

// checkPageCount rejects a merged document whose page tree does not hold
// exactly want pages; the rasterizer would otherwise emit the wrong frames.
func checkPageCount(pdfData []byte, want int) error {
	if got := CountPages(pdfData); got != want {
		return NewRenderError(ErrCodeAssemblyFailed,
			fmt.Sprintf("assembled document has %d pages, expected %d", got, want), nil)
	}
	return nil
}
