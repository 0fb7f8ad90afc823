package printing

import (
	"fmt"

	xdraw "golang.org/x/image/draw"
)

// PrintDriver feeds raster frames to a printer, one frame per page request.
// It is the only owner of its frame cursor and is used for a single job.
type PrintDriver struct {
	frames  FrameSource
	current int
	onFrame func(drawn, total int)
}

// NewPrintDriver binds a driver to the frames of one job. onFrame, if set,
// is called after every drawn frame.
func NewPrintDriver(frames FrameSource, onFrame func(drawn, total int)) *PrintDriver {
	return &PrintDriver{frames: frames, onFrame: onFrame}
}

// PrintPage draws the current frame stretched into the page's printable area
// and advances. HasMorePages is false once the last frame has been drawn.
func (d *PrintDriver) PrintPage(page *PrintPage) error {
	total := d.frames.Len()
	if d.current >= total {
		return NewRenderError(ErrCodeDrawFailed,
			fmt.Sprintf("printer requested page %d but only %d frames exist", d.current+1, total), nil)
	}
	if page == nil || page.Canvas == nil {
		return NewRenderError(ErrCodeDrawFailed, "printer supplied no canvas", nil)
	}
	area := page.PrintableArea.Intersect(page.Canvas.Bounds())
	if area.Empty() {
		return NewRenderError(ErrCodeDrawFailed, "printable area is empty", nil)
	}

	frame, err := d.frames.Frame(d.current)
	if err != nil {
		return NewRenderError(ErrCodeDrawFailed, fmt.Sprintf("failed to load frame %d", d.current+1), err)
	}
	xdraw.CatmullRom.Scale(page.Canvas, area, frame, frame.Bounds(), xdraw.Over, nil)

	d.current++
	page.HasMorePages = d.current < total
	if d.onFrame != nil {
		d.onFrame(d.current, total)
	}
	return nil
}

// Drawn returns how many frames have been drawn
func (d *PrintDriver) Drawn() int {
	return d.current
}

// Done reports whether every frame has been drawn
func (d *PrintDriver) Done() bool {
	return d.current == d.frames.Len()
}

var _ PageSource = (*PrintDriver)(nil)
