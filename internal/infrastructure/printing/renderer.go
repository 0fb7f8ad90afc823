package printing

import (
	"errors"

	"github.com/missionpuck/logprinter/internal/domain/printing"
	"github.com/missionpuck/logprinter/internal/domain/shared"
)

// RenderError represents a failure in one of the pipeline stages
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for pipeline failures
const (
	ErrCodeTemplateInvalid = "TEMPLATE_INVALID"
	ErrCodeFieldMissing    = "FIELD_MISSING"
	ErrCodeNoRowSlots      = "NO_ROW_SLOTS"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeAssemblyFailed  = "ASSEMBLY_FAILED"
	ErrCodeRasterFailed    = "RASTER_FAILED"
	ErrCodeRasterTimeout   = "RASTER_TIMEOUT"
	ErrCodeRasterCanceled  = "RASTER_CANCELED"
	ErrCodeBinaryNotFound  = "BINARY_NOT_FOUND"
	ErrCodeStorageFailed   = "STORAGE_FAILED"
	ErrCodePrinterFailed   = "PRINTER_FAILED"
	ErrCodePrinterUnknown  = "PRINTER_UNKNOWN"
	ErrCodeDrawFailed      = "DRAW_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

var failureKinds = map[string]printing.FailureKind{
	ErrCodeTemplateInvalid: printing.FailureKindTemplate,
	ErrCodeFieldMissing:    printing.FailureKindTemplate,
	ErrCodeNoRowSlots:      printing.FailureKindTemplate,
	ErrCodeRenderFailed:    printing.FailureKindInternal,
	ErrCodeAssemblyFailed:  printing.FailureKindInternal,
	ErrCodeStorageFailed:   printing.FailureKindInternal,
	ErrCodeRasterFailed:    printing.FailureKindProcess,
	ErrCodeRasterTimeout:   printing.FailureKindProcess,
	ErrCodeRasterCanceled:  printing.FailureKindProcess,
	ErrCodeBinaryNotFound:  printing.FailureKindProcess,
	ErrCodePrinterFailed:   printing.FailureKindDevice,
	ErrCodePrinterUnknown:  printing.FailureKindDevice,
	ErrCodeDrawFailed:      printing.FailureKindDevice,
}

// KindOf classifies an error returned by the pipeline.
// Domain errors are upstream-data problems; anything unrecognised is internal.
func KindOf(err error) printing.FailureKind {
	if err == nil {
		return printing.FailureKindNone
	}
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		if kind, ok := failureKinds[renderErr.Code]; ok {
			return kind
		}
		return printing.FailureKindInternal
	}
	if _, ok := shared.AsDomainError(err); ok {
		return printing.FailureKindData
	}
	return printing.FailureKindInternal
}
