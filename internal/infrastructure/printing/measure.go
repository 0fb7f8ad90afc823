package printing

import (
	"sync"

	"github.com/go-pdf/fpdf"
)

// FontSpec describes the font a field is rendered with.
// Sizes are in points, the same unit as template geometry.
type FontSpec struct {
	Family string  `yaml:"family"`
	Style  string  `yaml:"style"`
	Size   float64 `yaml:"size"`
}

// WithSize returns a copy of the font at another size
func (f FontSpec) WithSize(size float64) FontSpec {
	f.Size = size
	return f
}

// TextMeasurer returns the rendered width of text in points
type TextMeasurer interface {
	Width(text string, font FontSpec) float64
}

// FpdfMeasurer measures text with the core-font metrics fpdf embeds.
// It is safe for concurrent use.
type FpdfMeasurer struct {
	mu        sync.Mutex
	pdf       *fpdf.Fpdf
	translate func(string) string
}

// NewFpdfMeasurer creates a measurer backed by an off-screen fpdf document
func NewFpdfMeasurer() *FpdfMeasurer {
	pdf := fpdf.New("P", "pt", "Letter", "")
	return &FpdfMeasurer{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Width implements TextMeasurer
func (m *FpdfMeasurer) Width(text string, font FontSpec) float64 {
	if text == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(font.Family, font.Style, font.Size)
	return m.pdf.GetStringWidth(m.translate(text))
}

var _ TextMeasurer = (*FpdfMeasurer)(nil)
