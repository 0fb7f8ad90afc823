package printing

import (
	"context"
	"image"
	"image/draw"
	"math"

	"github.com/google/uuid"
)

// PrintPage is one page request from a printer. The printer supplies the
// canvas and printable area; the page source draws and sets HasMorePages.
type PrintPage struct {
	Number        int
	Canvas        draw.Image
	PrintableArea image.Rectangle
	HasMorePages  bool
}

// PageSource answers page requests
type PageSource interface {
	PrintPage(page *PrintPage) error
}

// PrintRequest is one document sent to a printer
type PrintRequest struct {
	JobID uuid.UUID
	Title string
	Pages PageSource
}

// Printer requests pages from a source until it reports no more pages
type Printer interface {
	Name() string
	Print(ctx context.Context, req *PrintRequest) error
}

// PaperGeometry is the physical page a printer draws on
type PaperGeometry struct {
	WidthIn  float64
	HeightIn float64
	MarginIn float64
	DPI      int
}

// DefaultPaperGeometry is US Letter at 150 dpi with quarter-inch margins
func DefaultPaperGeometry() PaperGeometry {
	return PaperGeometry{WidthIn: 8.5, HeightIn: 11, MarginIn: 0.25, DPI: 150}
}

func (g PaperGeometry) withDefaults() PaperGeometry {
	d := DefaultPaperGeometry()
	if g.WidthIn <= 0 || g.HeightIn <= 0 {
		g.WidthIn, g.HeightIn = d.WidthIn, d.HeightIn
	}
	if g.DPI <= 0 {
		g.DPI = d.DPI
	}
	if g.MarginIn < 0 {
		g.MarginIn = 0
	}
	return g
}

func (g PaperGeometry) px(in float64) int {
	return int(math.Round(in * float64(g.DPI)))
}

// Bounds is the full page in device pixels
func (g PaperGeometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.px(g.WidthIn), g.px(g.HeightIn))
}

// PrintableArea is the page inset by the margin
func (g PaperGeometry) PrintableArea() image.Rectangle {
	return g.Bounds().Inset(g.px(g.MarginIn))
}

// requestPages drives src until it reports no more pages, handing each drawn
// page to emit
func requestPages(ctx context.Context, geom PaperGeometry, src PageSource, emit func(*PrintPage) error) (int, error) {
	if src == nil {
		return 0, NewRenderError(ErrCodePrinterFailed, "print request has no page source", nil)
	}
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return n - 1, NewRenderError(ErrCodePrinterFailed, "printing interrupted", err)
		}
		canvas := image.NewRGBA(geom.Bounds())
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

		page := &PrintPage{
			Number:        n,
			Canvas:        canvas,
			PrintableArea: geom.PrintableArea(),
		}
		if err := src.PrintPage(page); err != nil {
			return n - 1, err
		}
		if err := emit(page); err != nil {
			return n, err
		}
		if !page.HasMorePages {
			return n, nil
		}
	}
}
