package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFpdfMeasurer_Width(t *testing.T) {
	m := NewFpdfMeasurer()

	t.Run("empty string has no width", func(t *testing.T) {
		assert.Zero(t, m.Width("", FontSpec{Family: "Helvetica", Size: 10}))
	})

	t.Run("helvetica m", func(t *testing.T) {
		// Helvetica "m" is 833/1000 em
		assert.InDelta(t, 8.33, m.Width("m", FontSpec{Family: "Helvetica", Size: 10}), 0.001)
	})

	t.Run("courier is monospaced", func(t *testing.T) {
		font := FontSpec{Family: "Courier", Size: 10}
		assert.InDelta(t, 6.0, m.Width("i", font), 0.001)
		assert.InDelta(t, 60.0, m.Width("iiiiiWWWWW", font), 0.001)
	})

	t.Run("width scales with size", func(t *testing.T) {
		small := m.Width("Mission log", FontSpec{Family: "Helvetica", Size: 9})
		large := m.Width("Mission log", FontSpec{Family: "Helvetica", Size: 18})
		assert.InDelta(t, 2*small, large, 0.001)
	})

	t.Run("non-ASCII text is measured in cp1252", func(t *testing.T) {
		font := FontSpec{Family: "Helvetica", Size: 10}
		assert.InDelta(t, m.Width("e", font), m.Width("é", font), 0.001)
	})
}

func TestFontSpec_WithSize(t *testing.T) {
	f := FontSpec{Family: "Helvetica", Style: "B", Size: 9}
	g := f.WithSize(12)
	assert.Equal(t, 12.0, g.Size)
	assert.Equal(t, 9.0, f.Size)
	assert.Equal(t, "B", g.Style)
}
