package printing

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
)

var testGenerated = time.Date(2024, 3, 2, 14, 7, 0, 0, time.UTC)

func newTestRenderer(t *testing.T, tpl *FormTemplate) *PageRenderer {
	t.Helper()
	r, err := NewPageRenderer(&PageRendererConfig{Template: tpl, Location: time.UTC})
	require.NoError(t, err)
	return r
}

func testHeader() Header {
	from := testStart
	to := testStart.Add(26 * time.Hour)
	return Header{
		MissionTitle:  "Lost hiker",
		MissionNumber: "24-0117",
		Operators:     []string{"K7ABC", "N0XYZ"},
		MinDate:       &from,
		MaxDate:       &to,
		GeneratedAt:   testGenerated,
	}
}

func TestNewPageRenderer(t *testing.T) {
	_, err := NewPageRenderer(nil)
	requireRenderCode(t, err, ErrCodeTemplateInvalid)

	r := newTestRenderer(t, mustTemplate(t, 3))
	assert.Equal(t, "Mission Puck", r.config.PreparedBy)
	assert.Equal(t, "DRAFT", r.config.WatermarkLabel)
}

func TestPageRenderer_Values(t *testing.T) {
	tpl := mustTemplate(t, 5)
	r := newTestRenderer(t, tpl)

	values, err := r.Values(PageContent{Rows: testRows(3), Index: 2, Total: 4}, testHeader())
	require.NoError(t, err)

	for n := 1; n <= 3; n++ {
		timeName, subjectName := tpl.RowFieldNames(n)
		assert.Equal(t, testRows(3)[n-1].TimeLabel, values[timeName])
		assert.Equal(t, testRows(3)[n-1].Text, values[subjectName])
	}
	for n := 4; n <= 5; n++ {
		timeName, subjectName := tpl.RowFieldNames(n)
		assert.Empty(t, values[timeName], "unused slots are cleared")
		assert.Empty(t, values[subjectName])
	}

	assert.Equal(t, "Lost hiker", values["title"])
	assert.Equal(t, "24-0117", values["number"])
	assert.Equal(t, "K7ABC,N0XYZ", values["operators"])
	assert.Equal(t, "2024-03-01", values["from"])
	assert.Equal(t, "2024-03-02", values["to"])
	assert.Equal(t, "2", values["page"])
	assert.Equal(t, "4", values["pages"])
	assert.Equal(t, "Mar 2, 2024  14:07", values["generated"])
	assert.Equal(t, "Mission Puck", values["prepared"])
	assert.NotContains(t, values, "print")
}

func TestPageRenderer_ValuesWithoutRecords(t *testing.T) {
	r := newTestRenderer(t, mustTemplate(t, 5))
	header := NewHeader(logbook.Mission{Title: "Empty"}, nil, queueOf(nil), testGenerated)

	values, err := r.Values(PageContent{Index: 1, Total: 1}, header)
	require.NoError(t, err)

	assert.Empty(t, values["from"])
	assert.Empty(t, values["to"])
	assert.Empty(t, values["operators"])
	assert.Equal(t, "1", values["page"])
	assert.Equal(t, "1", values["pages"])
}

func TestPageRenderer_TooManyRows(t *testing.T) {
	r := newTestRenderer(t, mustTemplate(t, 2))
	_, err := r.Values(PageContent{Rows: testRows(3), Index: 1, Total: 1}, testHeader())
	requireRenderCode(t, err, ErrCodeFieldMissing)
}

func TestPageRenderer_Render(t *testing.T) {
	r := newTestRenderer(t, mustTemplate(t, 5))
	content := PageContent{Rows: testRows(5), Index: 1, Total: 2}

	artifact, err := r.Render(content, testHeader())
	require.NoError(t, err)

	assert.Equal(t, 1, artifact.Index)
	assert.Equal(t, 2, artifact.Total)
	assert.Equal(t, "DRAFT\n2024-03-02 14:07", artifact.Watermark)
	assert.True(t, bytes.HasPrefix(artifact.PDF, []byte("%PDF-")))
	assert.Equal(t, 1, CountPages(artifact.PDF))
	assert.NotContains(t, string(artifact.PDF), "/AcroForm", "output is flattened")
	assert.Equal(t, "row 5", artifact.Values[testGroup+".SUBJECTRow5[0]"])

	t.Run("identical input renders identical pages", func(t *testing.T) {
		again, err := r.Render(content, testHeader())
		require.NoError(t, err)
		assert.Equal(t, artifact.Values, again.Values)
		assert.Equal(t, artifact.PDF, again.PDF)
	})
}

func TestPageRenderer_RenderWithBackground(t *testing.T) {
	dir := t.TempDir()
	writeBackgroundPDF(t, filepath.Join(dir, "form.pdf"))
	yaml := strings.Replace(testTemplateYAML(3), "draw_borders: true", "background: form.pdf", 1)
	tpl, err := ParseTemplate([]byte(yaml), dir)
	require.NoError(t, err)

	artifact, err := newTestRenderer(t, tpl).Render(PageContent{Rows: testRows(2), Index: 1, Total: 1}, testHeader())
	require.NoError(t, err)
	assert.Equal(t, 1, CountPages(artifact.PDF))
	assert.Contains(t, string(artifact.PDF), "/XObject")
}

func TestNewHeader(t *testing.T) {
	missionID := uuid.New()
	records := testRecords(missionID, "b", "a", "c")
	records[0].When = testStart.Add(48 * time.Hour)
	rows := testRows(2)
	rows[1].Author = "K7ABC"

	h := NewHeader(logbook.Mission{ID: missionID, Title: "Flood", Number: "24-9"}, records, queueOf(rows), testGenerated)

	assert.Equal(t, "Flood", h.MissionTitle)
	assert.Equal(t, "24-9", h.MissionNumber)
	assert.Equal(t, []string{"K7ABC"}, h.Operators)
	require.NotNil(t, h.MinDate)
	require.NotNil(t, h.MaxDate)
	assert.Equal(t, records[1].When, *h.MinDate)
	assert.Equal(t, records[0].When, *h.MaxDate)
	assert.Equal(t, testGenerated, h.GeneratedAt)
}
