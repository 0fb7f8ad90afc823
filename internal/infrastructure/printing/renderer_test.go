package printing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/missionpuck/logprinter/internal/domain/printing"
	"github.com/missionpuck/logprinter/internal/domain/shared"
)

func TestRenderError(t *testing.T) {
	t.Run("error without cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRasterFailed, "ghostscript failed", nil)
		assert.Equal(t, "ghostscript failed", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("error with cause", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := NewRenderError(ErrCodeRasterFailed, "ghostscript failed", cause)
		assert.Equal(t, "ghostscript failed: exit status 1", err.Error())
		assert.ErrorIs(t, err, cause)
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want printing.FailureKind
	}{
		{"nil", nil, printing.FailureKindNone},
		{"template", NewRenderError(ErrCodeNoRowSlots, "x", nil), printing.FailureKindTemplate},
		{"missing header field", NewRenderError(ErrCodeFieldMissing, "x", nil), printing.FailureKindTemplate},
		{"raster failure", NewRenderError(ErrCodeRasterFailed, "x", nil), printing.FailureKindProcess},
		{"raster timeout", NewRenderError(ErrCodeRasterTimeout, "x", nil), printing.FailureKindProcess},
		{"raster canceled", NewRenderError(ErrCodeRasterCanceled, "x", nil), printing.FailureKindProcess},
		{"missing binary", NewRenderError(ErrCodeBinaryNotFound, "x", nil), printing.FailureKindProcess},
		{"draw failure", NewRenderError(ErrCodeDrawFailed, "x", nil), printing.FailureKindDevice},
		{"printer failure", NewRenderError(ErrCodePrinterFailed, "x", nil), printing.FailureKindDevice},
		{"unknown printer", NewRenderError(ErrCodePrinterUnknown, "x", nil), printing.FailureKindDevice},
		{"assembly", NewRenderError(ErrCodeAssemblyFailed, "x", nil), printing.FailureKindInternal},
		{"unknown code", NewRenderError("SOMETHING", "x", nil), printing.FailureKindInternal},
		{"wrapped render error", fmt.Errorf("stage: %w", NewRenderError(ErrCodeDrawFailed, "x", nil)), printing.FailureKindDevice},
		{"domain error", shared.NewDomainError("INVALID_LOG_RECORD", "bad"), printing.FailureKindData},
		{"plain error", errors.New("boom"), printing.FailureKindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
