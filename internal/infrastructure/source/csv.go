package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
)

// CSV log columns. Extra columns are ignored.
const (
	ColumnID        = "id"
	ColumnMissionID = "mission_id"
	ColumnWhen      = "when"
	ColumnMessage   = "message"
)

var requiredColumns = []string{ColumnID, ColumnMissionID, ColumnWhen, ColumnMessage}

// CSVParser reads a log export with a header row
type CSVParser struct {
	delimiter  rune
	headerMap  map[string]int
	currentRow int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser strips a UTF-8 BOM, checks the encoding and reads the header
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter: ',',
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	if err := validateUTF8(br); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(br)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.FieldsPerRecord = -1

	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return nil
}

func validateUTF8(br *bufio.Reader) error {
	const checkSize = 4096
	content, err := br.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return ErrEmptyFile
	}
	// A multi-byte rune may straddle the peek window.
	for i := 0; i < utf8.UTFMax && len(content) == checkSize && !utf8.Valid(content); i++ {
		content = content[:len(content)-1]
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

func (p *CSVParser) parseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.currentRow = 1

	for i, h := range record {
		p.headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := p.headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrMissingHeader, strings.Join(missing, ", "))
	}
	return nil
}

func (p *CSVParser) field(record []string, column string) string {
	idx := p.headerMap[column]
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

// ReadRecords parses every data row. Blank lines are skipped; bad rows are
// collected into RowErrors instead of stopping at the first one.
func (p *CSVParser) ReadRecords() ([]logbook.LogRecord, error) {
	var (
		records []logbook.LogRecord
		errs    RowErrors
	)
	for {
		fields, err := p.reader.Read()
		if err == io.EOF {
			break
		}
		p.currentRow++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
		}
		if isBlank(fields) {
			continue
		}

		rec, rowErrs := p.parseRow(fields)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		records = append(records, rec)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return records, nil
}

func (p *CSVParser) parseRow(fields []string) (logbook.LogRecord, []RowError) {
	var (
		rec  logbook.LogRecord
		errs []RowError
		err  error
	)
	fail := func(column, message, value string) {
		errs = append(errs, RowError{Row: p.currentRow, Column: column, Message: message, Value: value})
	}

	raw := strings.TrimSpace(p.field(fields, ColumnID))
	if rec.ID, err = uuid.Parse(raw); err != nil {
		fail(ColumnID, "not a valid UUID", raw)
	}
	raw = strings.TrimSpace(p.field(fields, ColumnMissionID))
	if rec.MissionID, err = uuid.Parse(raw); err != nil {
		fail(ColumnMissionID, "not a valid UUID", raw)
	}
	raw = strings.TrimSpace(p.field(fields, ColumnWhen))
	if rec.When, err = ParseTimestamp(raw); err != nil {
		fail(ColumnWhen, err.Error(), raw)
	}
	// Leading spaces in messages are meaningful to the row splitter.
	if msg := p.field(fields, ColumnMessage); msg != "" {
		rec.Message = &msg
	}
	return rec, errs
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts ISO-8601 with or without an offset. Timestamps
// without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("not an ISO-8601 timestamp")
}
