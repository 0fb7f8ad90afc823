// Package source loads a mission and its log records from files, standing in
// for the service that normally hands them to the printer.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadMission reads a mission snapshot from a JSON file
func LoadMission(path string) (logbook.Mission, error) {
	var m logbook.Mission
	data, err := readFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to decode mission %s: %w", path, err)
	}
	return m, nil
}

// LoadRecords reads log records from a .json or .csv file. JSON may be a
// bare array or an object with a "records" array.
func LoadRecords(path string) ([]logbook.LogRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		records, err := DecodeRecordsJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode log records %s: %w", path, err)
		}
		return records, nil
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open log records: %w", err)
		}
		defer f.Close()
		p, err := NewCSVParser(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read log records %s: %w", path, err)
		}
		return p.ReadRecords()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// DecodeRecordsJSON decodes a bare array or a {"records": [...]} wrapper
func DecodeRecordsJSON(data []byte) ([]logbook.LogRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyFile
	}

	var records []logbook.LogRecord
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapper struct {
		Records *[]logbook.LogRecord `json:"records"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Records == nil {
		return nil, errors.New(`expected an array or an object with "records"`)
	}
	return *wrapper.Records, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}
