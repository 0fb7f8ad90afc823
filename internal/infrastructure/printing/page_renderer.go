package printing

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
)

const (
	defaultPreparedBy     = "Mission Puck"
	defaultWatermarkLabel = "DRAFT"

	watermarkFontSize = 64
	watermarkOpacity  = 0.45

	dateLayout      = "2006-01-02"
	generatedLayout = "Jan 2, 2006  15:04"
	watermarkLayout = "2006-01-02 15:04"
)

// Header is the metadata stamped on every page, computed once per job
type Header struct {
	MissionTitle  string
	MissionNumber string
	Operators     []string
	MinDate       *time.Time
	MaxDate       *time.Time
	GeneratedAt   time.Time
}

// NewHeader derives header metadata from the full record set and the rows
// that are about to be placed
func NewHeader(mission logbook.Mission, records []logbook.LogRecord, queue *RowQueue, generatedAt time.Time) Header {
	minDate, maxDate := logbook.TimeSpan(records)
	return Header{
		MissionTitle:  mission.Title,
		MissionNumber: mission.Number,
		Operators:     queue.Authors(),
		MinDate:       minDate,
		MaxDate:       maxDate,
		GeneratedAt:   generatedAt,
	}
}

// PageArtifact is one filled, flattened page
type PageArtifact struct {
	Index     int
	Total     int
	Watermark string
	Values    map[string]string
	PDF       []byte
}

// PageRendererConfig contains configuration for the page renderer
type PageRendererConfig struct {
	Template *FormTemplate
	// PreparedBy is stamped into the prepared-by field (default: Mission Puck)
	PreparedBy string
	// WatermarkLabel is the first watermark line (default: DRAFT)
	WatermarkLabel string
	// Location formats dates and timestamps (default: time.Local)
	Location *time.Location
	Logger   *zap.Logger
}

// PageRenderer draws single form pages with fpdf
type PageRenderer struct {
	config *PageRendererConfig
	tpl    *FormTemplate
	logger *zap.Logger
}

// NewPageRenderer creates a new page renderer
func NewPageRenderer(config *PageRendererConfig) (*PageRenderer, error) {
	if config == nil || config.Template == nil {
		return nil, NewRenderError(ErrCodeTemplateInvalid, "page renderer needs a template", nil)
	}
	if config.PreparedBy == "" {
		config.PreparedBy = defaultPreparedBy
	}
	if config.WatermarkLabel == "" {
		config.WatermarkLabel = defaultWatermarkLabel
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PageRenderer{
		config: config,
		tpl:    config.Template,
		logger: logger,
	}, nil
}

// Values returns the field values of one page, starting from a cleared set
func (r *PageRenderer) Values(content PageContent, header Header) (map[string]string, error) {
	values := r.tpl.BlankValues()

	for i, row := range content.Rows {
		timeName, subjectName := r.tpl.RowFieldNames(i + 1)
		if _, ok := values[subjectName]; !ok {
			return nil, NewRenderError(ErrCodeFieldMissing,
				fmt.Sprintf("page %d has %d rows but slot %s is missing", content.Index, len(content.Rows), subjectName), nil)
		}
		if _, ok := values[timeName]; !ok {
			return nil, NewRenderError(ErrCodeFieldMissing,
				fmt.Sprintf("page %d has %d rows but slot %s is missing", content.Index, len(content.Rows), timeName), nil)
		}
		values[timeName] = row.TimeLabel
		values[subjectName] = row.Text
	}

	h := r.tpl.Header
	values[h.IncidentName] = header.MissionTitle
	values[h.MissionNumber] = header.MissionNumber
	values[h.Operators] = strings.Join(header.Operators, ",")
	values[h.DateFrom] = r.formatDate(header.MinDate)
	values[h.DateTo] = r.formatDate(header.MaxDate)
	values[h.PageIndex] = strconv.Itoa(content.Index)
	values[h.PageCount] = strconv.Itoa(content.Total)
	values[h.Generated] = header.GeneratedAt.In(r.config.Location).Format(generatedLayout)
	values[h.PreparedBy] = r.config.PreparedBy

	return values, nil
}

// WatermarkText returns the two watermark lines joined by a newline
func (r *PageRenderer) WatermarkText(generatedAt time.Time) string {
	return r.config.WatermarkLabel + "\n" + generatedAt.In(r.config.Location).Format(watermarkLayout)
}

func (r *PageRenderer) formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(r.config.Location).Format(dateLayout)
}

// Render fills and flattens one page
func (r *PageRenderer) Render(content PageContent, header Header) (*PageArtifact, error) {
	values, err := r.Values(content, header)
	if err != nil {
		return nil, err
	}
	watermark := r.WatermarkText(header.GeneratedAt)

	pdf := r.newDocument(header.GeneratedAt)
	pdf.AddPage()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	// Watermark first so the form and field text are painted over it.
	r.drawWatermark(pdf, translate, watermark)

	if r.tpl.Background != "" {
		if err := r.drawBackground(pdf); err != nil {
			return nil, err
		}
	}

	r.drawLabels(pdf, translate)
	r.drawFields(pdf, translate, values)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, fmt.Sprintf("failed to render page %d", content.Index), err)
	}

	r.logger.Debug("page rendered",
		zap.Int("page", content.Index),
		zap.Int("total", content.Total),
		zap.Int("rows", len(content.Rows)),
		zap.Int("bytes", buf.Len()))

	return &PageArtifact{
		Index:     content.Index,
		Total:     content.Total,
		Watermark: watermark,
		Values:    values,
		PDF:       buf.Bytes(),
	}, nil
}

func (r *PageRenderer) newDocument(generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: r.tpl.Page.Width, Ht: r.tpl.Page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetCatalogSort(true)
	return pdf
}

func (r *PageRenderer) drawWatermark(pdf *fpdf.Fpdf, translate func(string) string, text string) {
	w, h := r.tpl.Page.Width, r.tpl.Page.Height

	pdf.SetAlpha(watermarkOpacity, "Normal")
	pdf.SetTextColor(192, 192, 192)
	pdf.SetFont("Helvetica", "B", watermarkFontSize)

	// Two lines centred on the page, the label above the timestamp.
	baseline := h/2 - watermarkFontSize
	for i, line := range strings.Split(text, "\n") {
		line = translate(line)
		y := baseline + float64(i)*(watermarkFontSize+watermarkFontSize/4)
		pdf.Text((w-pdf.GetStringWidth(line))/2, y, line)
	}

	pdf.SetAlpha(1, "Normal")
	pdf.SetTextColor(0, 0, 0)
}

func (r *PageRenderer) drawBackground(pdf *fpdf.Fpdf) error {
	err := guardImport(func() {
		imp := gofpdi.NewImporter()
		tpl := imp.ImportPage(pdf, r.tpl.Background, 1, "/MediaBox")
		imp.UseImportedTemplate(pdf, tpl, 0, 0, r.tpl.Page.Width, r.tpl.Page.Height)
	})
	if err != nil {
		return NewRenderError(ErrCodeTemplateInvalid, "failed to import background form "+r.tpl.Background, err)
	}
	return nil
}

func (r *PageRenderer) drawLabels(pdf *fpdf.Fpdf, translate func(string) string) {
	for _, l := range r.tpl.Labels {
		size := l.Size
		if size <= 0 {
			size = r.tpl.Font.Size
		}
		pdf.SetFont(r.tpl.Font.Family, l.Style, size)
		pdf.Text(l.X, l.Y, translate(l.Text))
	}
}

// drawFields paints values as static page content. Buttons are never drawn.
func (r *PageRenderer) drawFields(pdf *fpdf.Fpdf, translate func(string) string, values map[string]string) {
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 0, 0)
	for _, f := range r.tpl.AllFields() {
		if f.Kind != FieldKindText {
			continue
		}
		if r.tpl.DrawBorders {
			pdf.Rect(f.Rect.X, f.Rect.Y, f.Rect.W, f.Rect.H, "D")
		}
		value := values[f.Name]
		if value == "" {
			continue
		}
		font := r.tpl.FontFor(f)
		pdf.SetFont(font.Family, font.Style, font.Size)
		pdf.SetXY(f.Rect.X, f.Rect.Y)
		pdf.CellFormat(f.Rect.W, f.Rect.H, translate(value), "", 0, f.Align, false, 0, "")
	}
}

// guardImport converts gofpdi panics on unreadable input into errors
func guardImport(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf import: %v", rec)
		}
	}()
	fn()
	return nil
}
