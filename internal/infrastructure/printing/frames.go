package printing

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// FrameSource yields raster frames by index
type FrameSource interface {
	Len() int
	Frame(i int) (image.Image, error)
}

// PNGFrames decodes frame files on demand so only one page is held in memory
type PNGFrames struct {
	paths []string
}

// NewPNGFrames creates a frame source over the rasterizer's output
func NewPNGFrames(result *RasterResult) *PNGFrames {
	if result == nil {
		return &PNGFrames{}
	}
	return &PNGFrames{paths: result.Frames}
}

// Len implements FrameSource
func (f *PNGFrames) Len() int {
	return len(f.paths)
}

// Frame implements FrameSource
func (f *PNGFrames) Frame(i int) (image.Image, error) {
	if i < 0 || i >= len(f.paths) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(f.paths))
	}
	file, err := os.Open(f.paths[i])
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.paths[i], err)
	}
	return img, nil
}

// ImageFrames serves frames already in memory
type ImageFrames []image.Image

// Len implements FrameSource
func (f ImageFrames) Len() int {
	return len(f)
}

// Frame implements FrameSource
func (f ImageFrames) Frame(i int) (image.Image, error) {
	if i < 0 || i >= len(f) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(f))
	}
	return f[i], nil
}

var (
	_ FrameSource = (*PNGFrames)(nil)
	_ FrameSource = ImageFrames(nil)
)
