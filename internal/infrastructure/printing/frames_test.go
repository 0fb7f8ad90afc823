package printing

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNGFrames(t *testing.T, colors ...color.Color) *RasterResult {
	t.Helper()
	dir := t.TempDir()
	result := &RasterResult{Dir: dir}
	for i, c := range colors {
		path := filepath.Join(dir, "frame-000"+string(rune('1'+i))+".png")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, solidFrame(c)))
		require.NoError(t, f.Close())
		result.Frames = append(result.Frames, path)
	}
	return result
}

func TestPNGFrames(t *testing.T) {
	frames := NewPNGFrames(writePNGFrames(t, color.Black, color.White))
	require.Equal(t, 2, frames.Len())

	img, err := frames.Frame(1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})

	_, err = frames.Frame(2)
	assert.Error(t, err)
	_, err = frames.Frame(-1)
	assert.Error(t, err)
}

func TestPNGFrames_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame-0001.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0644))

	_, err := NewPNGFrames(&RasterResult{Frames: []string{path}}).Frame(0)
	assert.Error(t, err)
}

func TestNewPNGFrames_Nil(t *testing.T) {
	assert.Zero(t, NewPNGFrames(nil).Len())
}
