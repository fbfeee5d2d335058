package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all fatal failure modes of a run
type ErrorCode string

const (
	// ConfigLoadFailed indicates an explicit configuration source could not be read or parsed
	ConfigLoadFailed ErrorCode = "CONFIG_LOAD_FAILED"
	// InvalidFilter indicates a path filter pattern could not be compiled
	InvalidFilter ErrorCode = "INVALID_FILTER"
	// AnalysisFailed indicates the analysis engine aborted the pass
	AnalysisFailed ErrorCode = "ANALYSIS_FAILED"
	// RulePackInvalid indicates an extra rule path is missing or malformed
	RulePackInvalid ErrorCode = "RULE_PACK_INVALID"
	// ReportFailed indicates a report could not be rendered or written
	ReportFailed ErrorCode = "REPORT_FAILED"
	// BaselineInvalid indicates the baseline file could not be read or written
	BaselineInvalid ErrorCode = "BASELINE_INVALID"
	// HistoryUnavailable indicates the run history store could not be used
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// DetektError represents a fatal run error with code, message, and suggestions
type DetektError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new DetektError with the default suggestions for its code
func New(code ErrorCode, message string, cause error) *DetektError {
	return &DetektError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Newf creates a new DetektError without a cause and a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DetektError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *DetektError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DetektError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DetektError carrying the same code.
func (e *DetektError) Is(target error) bool {
	t, ok := target.(*DetektError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails adds details to the error
func (e *DetektError) WithDetails(details interface{}) *DetektError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first DetektError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var de *DetektError
	if stderrors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// HasCode reports whether err's chain contains a DetektError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &DetektError{Code: code})
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigLoadFailed: {
		{
			Command:     "detekt generate-config",
			Description: "Write a default configuration file and point --config at it",
		},
	},
	InvalidFilter: {
		{
			Description: "Use glob patterns separated by ';', e.g. \"**/test/**;**/build/**\"",
		},
	},
	RulePackInvalid: {
		{
			Description: "Check that every --plugins path exists and is a YAML rule pack or a directory of them",
		},
	},
	BaselineInvalid: {
		{
			Command:     "detekt --create-baseline --baseline <file>",
			Description: "Regenerate the baseline file",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
