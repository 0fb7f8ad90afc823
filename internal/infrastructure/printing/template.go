package printing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldKind distinguishes fillable fields from interactive elements
type FieldKind string

const (
	FieldKindText   FieldKind = "text"
	FieldKindButton FieldKind = "button"
)

// Rect is a field rectangle in points, origin at the top-left of the page
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// FieldDef is one named field on the form
type FieldDef struct {
	Name     string    `yaml:"name"`
	Kind     FieldKind `yaml:"kind"`
	Rect     Rect      `yaml:"rect"`
	FontSize float64   `yaml:"font_size"`
	// Align is passed to fpdf: L, C or R optionally followed by T, M, B or A
	Align string `yaml:"align"`
}

// LabelDef is static text printed on every page
type LabelDef struct {
	Text  string  `yaml:"text"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Size  float64 `yaml:"size"`
	Style string  `yaml:"style"`
}

// ColumnDef positions one column of the repeating row group
type ColumnDef struct {
	X float64 `yaml:"x"`
	W float64 `yaml:"w"`
}

// RowsDef generates the repeating TIMERow<n>/SUBJECTRow<n> field pairs
type RowsDef struct {
	Group    string    `yaml:"group"`
	Suffix   string    `yaml:"suffix"`
	Count    int       `yaml:"count"`
	Top      float64   `yaml:"top"`
	Height   float64   `yaml:"height"`
	FontSize float64   `yaml:"font_size"`
	Time     ColumnDef `yaml:"time"`
	Subject  ColumnDef `yaml:"subject"`
}

// HeaderFields maps header roles to field names
type HeaderFields struct {
	IncidentName  string `yaml:"incident_name"`
	MissionNumber string `yaml:"mission_number"`
	Operators     string `yaml:"operators"`
	DateFrom      string `yaml:"date_from"`
	DateTo        string `yaml:"date_to"`
	PageIndex     string `yaml:"page_index"`
	PageCount     string `yaml:"page_count"`
	Generated     string `yaml:"generated"`
	PreparedBy    string `yaml:"prepared_by"`
}

func (h HeaderFields) roles() []headerRole {
	return []headerRole{
		{"incident_name", h.IncidentName},
		{"mission_number", h.MissionNumber},
		{"operators", h.Operators},
		{"date_from", h.DateFrom},
		{"date_to", h.DateTo},
		{"page_index", h.PageIndex},
		{"page_count", h.PageCount},
		{"generated", h.Generated},
		{"prepared_by", h.PreparedBy},
	}
}

type headerRole struct {
	role  string
	field string
}

// PageDef is the page size in points
type PageDef struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FormTemplate is a parsed, validated form definition.
// It is read-only after ParseTemplate returns and may be shared between jobs.
type FormTemplate struct {
	Name        string       `yaml:"name"`
	Page        PageDef      `yaml:"page"`
	Background  string       `yaml:"background"`
	DrawBorders bool         `yaml:"draw_borders"`
	Font        FontSpec     `yaml:"font"`
	Header      HeaderFields `yaml:"header"`
	Labels      []LabelDef   `yaml:"labels"`
	Fields      []FieldDef   `yaml:"fields"`
	Rows        RowsDef      `yaml:"rows"`

	fields  []FieldDef
	index   map[string]int
	baseDir string
}

const (
	defaultRowSuffix = "[0]"
	defaultAlign     = "LM"
)

var coreFonts = map[string]bool{
	"helvetica":    true,
	"arial":        true,
	"courier":      true,
	"times":        true,
	"symbol":       true,
	"zapfdingbats": true,
}

// ParseTemplate decodes a YAML form definition. A relative background path
// is resolved against baseDir.
func ParseTemplate(data []byte, baseDir string) (*FormTemplate, error) {
	var t FormTemplate
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, NewRenderError(ErrCodeTemplateInvalid, "failed to parse template", err)
	}
	t.baseDir = baseDir
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTemplateFile reads and parses a template from disk
func LoadTemplateFile(path string) (*FormTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateInvalid, fmt.Sprintf("failed to read template %s", path), err)
	}
	return ParseTemplate(data, filepath.Dir(path))
}

func (t *FormTemplate) compile() error {
	if t.Page.Width <= 0 || t.Page.Height <= 0 {
		return NewRenderError(ErrCodeTemplateInvalid, "page width and height must be positive", nil)
	}
	if t.Font.Family == "" {
		t.Font.Family = "Helvetica"
	}
	if t.Font.Size <= 0 {
		t.Font.Size = 9
	}
	if !coreFonts[strings.ToLower(t.Font.Family)] {
		return NewRenderError(ErrCodeTemplateInvalid, fmt.Sprintf("unsupported font family %q", t.Font.Family), nil)
	}
	if t.Rows.Suffix == "" {
		t.Rows.Suffix = defaultRowSuffix
	}

	t.fields = make([]FieldDef, 0, len(t.Fields)+2*t.Rows.Count)
	t.index = make(map[string]int, cap(t.fields))

	for _, f := range t.Fields {
		if err := t.add(f); err != nil {
			return err
		}
	}

	if t.Rows.Count < 0 {
		return NewRenderError(ErrCodeTemplateInvalid, "rows.count must not be negative", nil)
	}
	if t.Rows.Count > 0 {
		if t.Rows.Height <= 0 || t.Rows.Time.W <= 0 || t.Rows.Subject.W <= 0 {
			return NewRenderError(ErrCodeTemplateInvalid, "rows need a positive height and column widths", nil)
		}
		for n := 1; n <= t.Rows.Count; n++ {
			y := t.Rows.Top + float64(n-1)*t.Rows.Height
			timeName, subjectName := t.RowFieldNames(n)
			if err := t.add(FieldDef{
				Name:     timeName,
				Rect:     Rect{X: t.Rows.Time.X, Y: y, W: t.Rows.Time.W, H: t.Rows.Height},
				FontSize: t.Rows.FontSize,
				Align:    "CM",
			}); err != nil {
				return err
			}
			if err := t.add(FieldDef{
				Name:     subjectName,
				Rect:     Rect{X: t.Rows.Subject.X, Y: y, W: t.Rows.Subject.W, H: t.Rows.Height},
				FontSize: t.Rows.FontSize,
			}); err != nil {
				return err
			}
		}
	}

	for _, r := range t.Header.roles() {
		if r.field == "" {
			return NewRenderError(ErrCodeFieldMissing, fmt.Sprintf("header role %s has no field name", r.role), nil)
		}
		f, ok := t.Field(r.field)
		if !ok {
			return NewRenderError(ErrCodeFieldMissing, fmt.Sprintf("header field %s (%s) not found", r.field, r.role), nil)
		}
		if f.Kind != FieldKindText {
			return NewRenderError(ErrCodeTemplateInvalid, fmt.Sprintf("header field %s is not a text field", r.field), nil)
		}
	}

	if t.Background != "" {
		if !filepath.IsAbs(t.Background) && t.baseDir != "" {
			t.Background = filepath.Join(t.baseDir, t.Background)
		}
		if _, err := os.Stat(t.Background); err != nil {
			return NewRenderError(ErrCodeTemplateInvalid, "background form not readable", err)
		}
	}
	return nil
}

func (t *FormTemplate) add(f FieldDef) error {
	if f.Name == "" {
		return NewRenderError(ErrCodeTemplateInvalid, "field without a name", nil)
	}
	if _, dup := t.index[f.Name]; dup {
		return NewRenderError(ErrCodeTemplateInvalid, fmt.Sprintf("duplicate field name %q", f.Name), nil)
	}
	if f.Kind == "" {
		f.Kind = FieldKindText
	}
	if f.Kind != FieldKindText && f.Kind != FieldKindButton {
		return NewRenderError(ErrCodeTemplateInvalid, fmt.Sprintf("field %s has unknown kind %q", f.Name, f.Kind), nil)
	}
	if f.Rect.W <= 0 || f.Rect.H <= 0 {
		return NewRenderError(ErrCodeTemplateInvalid, fmt.Sprintf("field %s has an empty rectangle", f.Name), nil)
	}
	if f.FontSize <= 0 {
		f.FontSize = t.Font.Size
	}
	if f.Align == "" {
		f.Align = defaultAlign
	}
	t.index[f.Name] = len(t.fields)
	t.fields = append(t.fields, f)
	return nil
}

// RowFieldNames returns the time and subject field names of 1-indexed row slot n
func (t *FormTemplate) RowFieldNames(n int) (timeName, subjectName string) {
	prefix := t.Rows.Group
	if prefix != "" {
		prefix += "."
	}
	return fmt.Sprintf("%sTIMERow%d%s", prefix, n, t.Rows.Suffix),
		fmt.Sprintf("%sSUBJECTRow%d%s", prefix, n, t.Rows.Suffix)
}

// HasRowSlot reports whether slot n exists. A missing slot marks capacity.
func (t *FormTemplate) HasRowSlot(n int) bool {
	timeName, subjectName := t.RowFieldNames(n)
	_, hasTime := t.index[timeName]
	_, hasSubject := t.index[subjectName]
	return hasTime && hasSubject
}

// SubjectField returns the first subject field, whose width bounds every row
func (t *FormTemplate) SubjectField() (FieldDef, bool) {
	_, name := t.RowFieldNames(1)
	return t.Field(name)
}

// Field looks up a field by name
func (t *FormTemplate) Field(name string) (FieldDef, bool) {
	i, ok := t.index[name]
	if !ok {
		return FieldDef{}, false
	}
	return t.fields[i], true
}

// AllFields returns every field in declaration order, generated rows last
func (t *FormTemplate) AllFields() []FieldDef {
	out := make([]FieldDef, len(t.fields))
	copy(out, t.fields)
	return out
}

// BlankValues returns a cleared value for every text field
func (t *FormTemplate) BlankValues() map[string]string {
	values := make(map[string]string, len(t.fields))
	for _, f := range t.fields {
		if f.Kind == FieldKindText {
			values[f.Name] = ""
		}
	}
	return values
}

// FontFor returns the font a field is drawn with
func (t *FormTemplate) FontFor(f FieldDef) FontSpec {
	return t.Font.WithSize(f.FontSize)
}
