package models

import (
	"errors"
	"fmt"
)

type FailureReason string

const (
	// Extraction failures.
	ReasonUnreadable     FailureReason = "unreadable"
	ReasonNoTextLayer    FailureReason = "no_text_layer"
	ReasonOCRUnavailable FailureReason = "ocr_unavailable"
	ReasonOCRNoText      FailureReason = "ocr_no_text"

	// Parse failures.
	ReasonNoRecordsFound  FailureReason = "no_records_found"
	ReasonMalformedRecord FailureReason = "malformed_record"

	// Output failure. Fatal to the run, unlike the per-file reasons above.
	ReasonIOError FailureReason = "io_error"
)

// PipelineError carries the failure taxonomy through the extraction and
// parsing stages so callers can branch on the reason with errors.As.
type PipelineError struct {
	Reason FailureReason
	Err    error
}

func NewPipelineError(reason FailureReason, err error) *PipelineError {
	return &PipelineError{Reason: reason, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from an error chain.
func ReasonOf(err error) (FailureReason, bool) {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Reason, true
	}
	return "", false
}
