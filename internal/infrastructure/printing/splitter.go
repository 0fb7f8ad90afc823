package printing

import (
	"iter"
	"strings"
	"time"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
)

// Row is one line-fitting unit of text bound for a TIMERow/SUBJECTRow pair
type Row struct {
	TimeLabel string
	Text      string
	// Author is carried through to the operators header but no upstream
	// record populates it yet.
	Author string
}

// RowSplitter cuts log messages into rows no wider than a field
type RowSplitter struct {
	measurer   TextMeasurer
	font       FontSpec
	fieldWidth float64
	padding    float64
	location   *time.Location
}

// NewRowSplitter creates a splitter for a field of the given width.
// Padding defaults to the width of "m" in the field font.
func NewRowSplitter(measurer TextMeasurer, font FontSpec, fieldWidth float64, location *time.Location) *RowSplitter {
	if location == nil {
		location = time.Local
	}
	return &RowSplitter{
		measurer:   measurer,
		font:       font,
		fieldWidth: fieldWidth,
		padding:    measurer.Width("m", font),
		location:   location,
	}
}

// NewTemplateRowSplitter sizes a splitter from the template's first subject field
func NewTemplateRowSplitter(tpl *FormTemplate, measurer TextMeasurer, location *time.Location) (*RowSplitter, error) {
	field, ok := tpl.SubjectField()
	if !ok {
		_, name := tpl.RowFieldNames(1)
		return nil, NewRenderError(ErrCodeNoRowSlots, "template has no repeating row fields: "+name+" not found", nil)
	}
	return NewRowSplitter(measurer, tpl.FontFor(field), field.Rect.W, location), nil
}

// WithPadding overrides the default padding
func (s *RowSplitter) WithPadding(padding float64) *RowSplitter {
	c := *s
	c.padding = padding
	return &c
}

// FieldWidth returns the width rows are fitted to
func (s *RowSplitter) FieldWidth() float64 {
	return s.fieldWidth
}

// Split returns the rows of records in order. Records must already be sorted.
// The sequence is lazy and deterministic for identical input.
func (s *RowSplitter) Split(records []logbook.LogRecord) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, rec := range records {
			if !rec.HasMessage() {
				continue
			}
			label := rec.When.In(s.location).Format("1504")
			for line := range logicalLines(rec.Text()) {
				remaining := line
				for remaining != "" {
					candidate := s.fit(remaining)
					if !yield(Row{TimeLabel: label, Text: candidate}) {
						return
					}
					label = ""
					remaining = strings.TrimLeft(remaining[len(candidate):], " ")
				}
			}
		}
	}
}

// fit shortens line at its last space until it fits. A line with no usable
// space is returned whole even if it overflows.
func (s *RowSplitter) fit(line string) string {
	candidate := line
	for s.measurer.Width(candidate, s.font)+s.padding > s.fieldWidth {
		idx := strings.LastIndexByte(candidate, ' ')
		if idx <= 0 {
			break
		}
		shorter := strings.TrimRight(candidate[:idx], " ")
		if shorter == "" {
			break
		}
		candidate = shorter
	}
	return candidate
}

func logicalLines(message string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.SplitSeq(strings.ReplaceAll(message, "\r", ""), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// RowQueue is the destructive row queue the paginator consumes
type RowQueue struct {
	rows  []Row
	total int
}

// DrainRows consumes seq into a queue and records the total row count
func DrainRows(seq iter.Seq[Row]) *RowQueue {
	q := &RowQueue{}
	for row := range seq {
		q.rows = append(q.rows, row)
	}
	q.total = len(q.rows)
	return q
}

// Total is the row count recorded when the queue was filled
func (q *RowQueue) Total() int {
	return q.total
}

// Len is the number of rows not yet dequeued
func (q *RowQueue) Len() int {
	return len(q.rows)
}

// Pop dequeues the next row
func (q *RowQueue) Pop() (Row, bool) {
	if len(q.rows) == 0 {
		return Row{}, false
	}
	row := q.rows[0]
	q.rows[0] = Row{}
	q.rows = q.rows[1:]
	return row, true
}

// Authors returns the distinct non-empty authors of the queued rows in
// first-seen order
func (q *RowQueue) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, row := range q.rows {
		if row.Author == "" || seen[row.Author] {
			continue
		}
		seen[row.Author] = true
		authors = append(authors, row.Author)
	}
	return authors
}
