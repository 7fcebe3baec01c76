package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := NewAgeClassNotFoundError(1850, "no class contains the year")
	wrapped := fmt.Errorf("building 7: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrAgeClassNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrExternalDataFailed))
	assert.True(t, IsLookupError(wrapped))
	assert.False(t, IsConfigurationError(wrapped))
	assert.Equal(t, 1850, err.Metadata["year"])
}

func TestStandardError_UnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewExternalDataError("get_layers", "Wall_1948", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, IsExternalDataError(err))
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "Wall_1948")
}

func TestAsStandardError(t *testing.T) {
	assert.Nil(t, AsStandardError(nil))

	plain := AsStandardError(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)

	cfg := NewConfigurationError("factory \"x\" is not registered")
	assert.Same(t, cfg, AsStandardError(fmt.Errorf("wrap: %w", cfg)))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
		wantRetry   bool
	}{
		{"external data is retried", NewExternalDataError("op", "uri", nil), 3, true},
		{"lookup is thrown", NewBuildingNotFoundError(3, "year of construction lookup"), 0, false},
		{"report export", NewReportExportError("sns", stderrors.New("denied")), 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			require.NotNil(t, bpmn)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.wantRetry, bpmn.Retryable)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, bpmn.Code, vars["errorCode"])
		})
	}
	assert.Nil(t, ConvertToBPMNError(nil))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeBuildingNotFound))
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeAgeClassesNotContiguous))
	assert.Equal(t, "EXTERNAL_DATA", GetErrorCategory(ErrCodeExternalDataFailed))
	assert.Equal(t, "UNKNOWN", GetErrorCategory("SOMETHING"))
}
