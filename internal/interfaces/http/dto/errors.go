package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when request binding fails
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidMission is used when the mission snapshot is malformed
	ErrCodeInvalidMission = "ERR_INVALID_MISSION"
	// ErrCodeInvalidLogRecord is used when a log record is malformed or foreign
	ErrCodeInvalidLogRecord = "ERR_INVALID_LOG_RECORD"
	// ErrCodeInvalidPrinter is used when the named printer is not registered
	ErrCodeInvalidPrinter = "ERR_INVALID_PRINTER"
)

// Resource and state error codes
const (
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeJobInProgress is used when a print job is already running
	ErrCodeJobInProgress = "ERR_JOB_IN_PROGRESS"
	ErrCodeTooLarge      = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidMission:   http.StatusBadRequest,
	ErrCodeInvalidLogRecord: http.StatusBadRequest,
	ErrCodeInvalidPrinter:   http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeJobInProgress: http.StatusConflict,
	ErrCodeTooLarge:      http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodes maps domain error codes to API codes
var domainErrorCodes = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"INVALID_INPUT":      ErrCodeInvalidInput,
	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_MISSION":    ErrCodeInvalidMission,
	"INVALID_LOG_RECORD": ErrCodeInvalidLogRecord,
	"INVALID_PRINTER":    ErrCodeInvalidPrinter,
	"JOB_IN_PROGRESS":    ErrCodeJobInProgress,
	"INTERNAL_ERROR":     ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := domainErrorCodes[code]; ok {
		return newCode
	}
	return code
}
