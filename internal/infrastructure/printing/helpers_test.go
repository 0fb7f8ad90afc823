package printing

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
)

// runeMeasurer gives every rune the same width
type runeMeasurer float64

func (m runeMeasurer) Width(text string, _ FontSpec) float64 {
	return float64(utf8.RuneCountInString(text)) * float64(m)
}

// slotCount is a layout with slots 1..n
type slotCount int

func (s slotCount) HasRowSlot(n int) bool {
	return n >= 1 && n <= int(s)
}

const testGroup = "form[0].Page1[0]"

func testTemplateYAML(rows int) string {
	var b strings.Builder
	b.WriteString(`name: test
page: {width: 612, height: 792}
draw_borders: true
font: {family: Helvetica, size: 9}
header:
  incident_name: title
  mission_number: number
  operators: operators
  date_from: from
  date_to: to
  page_index: page
  page_count: pages
  generated: generated
  prepared_by: prepared
labels:
  - {text: "TEST LOG", x: 36, y: 30, size: 12, style: B}
fields:
`)
	for i, name := range []string{"title", "number", "operators", "from", "to", "page", "pages", "generated", "prepared"} {
		fmt.Fprintf(&b, "  - {name: %s, rect: {x: 36, y: %d, w: 200, h: 14}}\n", name, 40+i*16)
	}
	b.WriteString("  - {name: print, kind: button, rect: {x: 500, y: 740, w: 60, h: 20}}\n")
	fmt.Fprintf(&b, `rows:
  group: %s
  count: %d
  top: 200
  height: 14
  time: {x: 36, w: 50}
  subject: {x: 86, w: 300}
`, testGroup, rows)
	return b.String()
}

func mustTemplate(t *testing.T, rows int) *FormTemplate {
	t.Helper()
	tpl, err := ParseTemplate([]byte(testTemplateYAML(rows)), "")
	require.NoError(t, err)
	return tpl
}

var testStart = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testRecords(missionID uuid.UUID, messages ...string) []logbook.LogRecord {
	records := make([]logbook.LogRecord, len(messages))
	for i, msg := range messages {
		m := msg
		records[i] = logbook.LogRecord{
			ID:        uuid.New(),
			Message:   &m,
			MissionID: missionID,
			When:      testStart.Add(time.Duration(i) * time.Minute),
		}
	}
	return records
}

func testRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{TimeLabel: fmt.Sprintf("%04d", i), Text: fmt.Sprintf("row %d", i+1)}
	}
	return rows
}

func queueOf(rows []Row) *RowQueue {
	return DrainRows(func(yield func(Row) bool) {
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	})
}

func solidFrame(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writeScript writes an executable shell script standing in for gs or lp
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}
