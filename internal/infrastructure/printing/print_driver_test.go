package printing

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

func newTestPage() *PrintPage {
	return &PrintPage{
		Canvas:        image.NewRGBA(image.Rect(0, 0, 100, 100)),
		PrintableArea: image.Rect(10, 10, 90, 90),
	}
}

func TestPrintDriver_DrawsEveryFrame(t *testing.T) {
	var progress [][2]int
	d := NewPrintDriver(ImageFrames{solidFrame(red), solidFrame(red)}, func(drawn, total int) {
		progress = append(progress, [2]int{drawn, total})
	})

	first := newTestPage()
	require.NoError(t, d.PrintPage(first))
	assert.True(t, first.HasMorePages)
	assert.False(t, d.Done())

	second := newTestPage()
	require.NoError(t, d.PrintPage(second))
	assert.False(t, second.HasMorePages)
	assert.True(t, d.Done())
	assert.Equal(t, 2, d.Drawn())

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

	t.Run("frame fills the printable area only", func(t *testing.T) {
		canvas := second.Canvas.(*image.RGBA)
		assert.Equal(t, red, canvas.RGBAAt(50, 50))
		assert.Equal(t, red, canvas.RGBAAt(11, 11))
		assert.Equal(t, color.RGBA{}, canvas.RGBAAt(5, 5))
		assert.Equal(t, color.RGBA{}, canvas.RGBAAt(95, 95))
	})

	t.Run("requests past the last frame fail", func(t *testing.T) {
		err := d.PrintPage(newTestPage())
		requireRenderCode(t, err, ErrCodeDrawFailed)
	})
}

func TestPrintDriver_Failures(t *testing.T) {
	t.Run("no canvas", func(t *testing.T) {
		d := NewPrintDriver(ImageFrames{solidFrame(red)}, nil)
		requireRenderCode(t, d.PrintPage(&PrintPage{}), ErrCodeDrawFailed)
		assert.Zero(t, d.Drawn())
	})

	t.Run("empty printable area", func(t *testing.T) {
		d := NewPrintDriver(ImageFrames{solidFrame(red)}, nil)
		page := newTestPage()
		page.PrintableArea = image.Rect(200, 200, 300, 300)
		requireRenderCode(t, d.PrintPage(page), ErrCodeDrawFailed)
	})

	t.Run("frame cannot be loaded", func(t *testing.T) {
		d := NewPrintDriver(NewPNGFrames(&RasterResult{Frames: []string{"/nonexistent/frame-0001.png"}}), nil)
		requireRenderCode(t, d.PrintPage(newTestPage()), ErrCodeDrawFailed)
		assert.False(t, d.Done())
	})

	t.Run("no frames", func(t *testing.T) {
		d := NewPrintDriver(ImageFrames{}, nil)
		requireRenderCode(t, d.PrintPage(newTestPage()), ErrCodeDrawFailed)
	})
}
