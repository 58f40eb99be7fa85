package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoData is returned when a batch completes without a single usable record.
var ErrNoData = errors.New("no data available for the selected location, date range, model, or scenario")

// ErrSourceUnavailable marks remote failures that no retry or skip can recover from,
// such as rejected credentials. The pipeline aborts the batch when it sees one.
var ErrSourceUnavailable = errors.New("projection source unavailable")

// InitializationError reports missing or malformed credentials or configuration for
// the remote service. It is fatal at startup.
type InitializationError struct {
	Reason string
	Err    error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialization failed: %s: %v", e.Reason, e.Err)
	}
	return "initialization failed: " + e.Reason
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ValidationError reports a query rejected before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SampleError describes a single day or month that could not be turned into a
// record. The pipeline logs and skips these.
type SampleError struct {
	// Key is the ISO date or YYYY-MM of the sample.
	Key string
	// Missing lists absent bands, empty when Err is set.
	Missing []string
	Err     error
}

func (e *SampleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sample %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("sample %s: missing %v", e.Key, e.Missing)
}

func (e *SampleError) Unwrap() error { return e.Err }

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func dateKey(t time.Time) string {
	return t.Format(DateLayout)
}
