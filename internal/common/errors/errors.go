// Package errors provides the error taxonomy shared by the resolver, the
// readers and the job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// LookupError family: hard failures that must reach the caller.
	ErrCodeAgeClassNotFound ErrorCode = "AGE_CLASS_NOT_FOUND"
	ErrCodeBuildingNotFound ErrorCode = "BUILDING_NOT_FOUND"

	// ConfigurationError family.
	ErrCodeAgeClassesNotContiguous ErrorCode = "AGE_CLASSES_NOT_CONTIGUOUS"
	ErrCodeConfigurationInvalid    ErrorCode = "CONFIGURATION_INVALID"
	ErrCodeLookupFileInvalid       ErrorCode = "LOOKUP_FILE_INVALID"

	// ExternalDataError family.
	ErrCodeExternalDataFailed ErrorCode = "EXTERNAL_DATA_FAILED"

	ErrCodeReportExportFailed ErrorCode = "REPORT_EXPORT_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error { return e.cause }

// Is matches another StandardError by code, so the sentinels below work
// with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns e.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrAgeClassNotFound        = &StandardError{Code: ErrCodeAgeClassNotFound}
	ErrBuildingNotFound        = &StandardError{Code: ErrCodeBuildingNotFound}
	ErrAgeClassesNotContiguous = &StandardError{Code: ErrCodeAgeClassesNotContiguous}
	ErrConfigurationInvalid    = &StandardError{Code: ErrCodeConfigurationInvalid}
	ErrLookupFileInvalid       = &StandardError{Code: ErrCodeLookupFileInvalid}
	ErrExternalDataFailed      = &StandardError{Code: ErrCodeExternalDataFailed}
	ErrReportExportFailed      = &StandardError{Code: ErrCodeReportExportFailed}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewAgeClassNotFoundError reports a year no age class contains, or more
// than one class contains.
func NewAgeClassNotFoundError(year int, details string) *StandardError {
	return (&StandardError{
		Code:      ErrCodeAgeClassNotFound,
		Message:   fmt.Sprintf("no unique age class for year %d", year),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}).WithMetadata("year", year)
}

// NewBuildingNotFoundError reports a building id missing from a lookup table.
func NewBuildingNotFoundError(buildingID int, lookup string) *StandardError {
	return (&StandardError{
		Code:      ErrCodeBuildingNotFound,
		Message:   fmt.Sprintf("building %d not found in %s", buildingID, lookup),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}).WithMetadata("buildingId", buildingID)
}

// NewAgeClassesNotContiguousError describes gaps or overlaps in the loaded
// age classes.
func NewAgeClassesNotContiguousError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgeClassesNotContiguous,
		Message:   "age classes are not consecutive",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError reports invalid configuration.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLookupFileError reports a malformed lookup file.
func NewLookupFileError(path string, err error) *StandardError {
	return (&StandardError{
		Code:      ErrCodeLookupFileInvalid,
		Message:   "lookup file could not be read",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}).WithMetadata("path", path)
}

// NewExternalDataError wraps a failure of the graph data source.
func NewExternalDataError(operation, uri string, err error) *StandardError {
	details := fmt.Sprintf("operation: %s, uri: %s", operation, uri)
	if err != nil {
		details += ", error: " + err.Error()
	}
	return (&StandardError{
		Code:      ErrCodeExternalDataFailed,
		Message:   "graph data source query failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}).WithMetadata("uri", uri)
}

// NewReportExportError wraps a failure of a report sink.
func NewReportExportError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportExportFailed,
		Message:   "report export failed",
		Details:   fmt.Sprintf("sink: %s, error: %v", sink, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExternalDataFailed:
		return 3
	case ErrCodeReportExportFailed:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	if stdErr == nil {
		return nil
	}
	vars := map[string]interface{}{}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain. Anything else is
// wrapped as a non-retryable internal error.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsLookupError reports whether err belongs to the LookupError family.
func IsLookupError(err error) bool {
	return stderrors.Is(err, ErrAgeClassNotFound) || stderrors.Is(err, ErrBuildingNotFound)
}

// IsConfigurationError reports whether err belongs to the ConfigurationError family.
func IsConfigurationError(err error) bool {
	return stderrors.Is(err, ErrAgeClassesNotContiguous) ||
		stderrors.Is(err, ErrConfigurationInvalid) ||
		stderrors.Is(err, ErrLookupFileInvalid)
}

// IsExternalDataError reports whether err belongs to the ExternalDataError family.
func IsExternalDataError(err error) bool {
	return stderrors.Is(err, ErrExternalDataFailed)
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeAgeClassNotFound, ErrCodeBuildingNotFound:
		return "LOOKUP"
	case ErrCodeAgeClassesNotContiguous, ErrCodeConfigurationInvalid, ErrCodeLookupFileInvalid:
		return "CONFIGURATION"
	case ErrCodeExternalDataFailed:
		return "EXTERNAL_DATA"
	case ErrCodeReportExportFailed:
		return "REPORT"
	default:
		return "UNKNOWN"
	}
}
