package logbook

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/missionpuck/logprinter/internal/domain/shared"
)

// Error codes for upstream data problems
const (
	ErrCodeInvalidMission   = "INVALID_MISSION"
	ErrCodeInvalidLogRecord = "INVALID_LOG_RECORD"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LogRecord is one timestamped entry of a mission log.
type LogRecord struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	Message   *string   `json:"message"`
	MissionID uuid.UUID `json:"mission_id" validate:"required"`
	When      time.Time `json:"when" validate:"required"`
}

// HasMessage reports whether the record carries printable text
func (r LogRecord) HasMessage() bool {
	return r.Message != nil && *r.Message != ""
}

// Text returns the message or "" when absent
func (r LogRecord) Text() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}

// ValidateMission checks the mission snapshot a job is printed for.
func ValidateMission(m Mission) error {
	if err := validate.Struct(m); err != nil {
		return shared.NewDomainError(ErrCodeInvalidMission, "mission: "+describe(err))
	}
	return nil
}

// ValidateRecords checks every record and that each belongs to missionID.
// The first offending record aborts validation.
func ValidateRecords(missionID uuid.UUID, records []LogRecord) error {
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return shared.NewDomainError(ErrCodeInvalidLogRecord,
				fmt.Sprintf("log record %d: %s", i, describe(err)))
		}
		if r.MissionID != missionID {
			return shared.NewDomainError(ErrCodeInvalidLogRecord,
				fmt.Sprintf("log record %d (%s) belongs to mission %s", i, r.ID, r.MissionID))
		}
	}
	return nil
}

// SortByTime orders records ascending by timestamp. Records with equal
// timestamps keep their input order.
func SortByTime(records []LogRecord) {
	slices.SortStableFunc(records, func(a, b LogRecord) int {
		return a.When.Compare(b.When)
	})
}

// TimeSpan returns the earliest and latest timestamps across records, or
// nil, nil when there are none.
func TimeSpan(records []LogRecord) (minTime, maxTime *time.Time) {
	for i := range records {
		w := records[i].When
		if minTime == nil || w.Before(*minTime) {
			minTime = &w
		}
		if maxTime == nil || w.After(*maxTime) {
			maxTime = &w
		}
	}
	return minTime, maxTime
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
