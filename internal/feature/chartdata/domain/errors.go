// Package domain defines domain-level errors for the chartdata feature.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors for chart export.
// Everything except NormalizationError crosses the process boundary unrecovered.
var (
	// ErrUsage marks invalid flag combinations. The CLI prints usage and exits 2.
	ErrUsage = errors.New("usage error")

	// ErrIntervalNotSet is returned by the minute pipeline when no interval was given.
	ErrIntervalNotSet = &UsageError{Message: "Interval is not set."}

	// ErrConnectivity indicates that a gateway session could not be opened or connected.
	ErrConnectivity = errors.New("gateway connectivity error")

	// ErrRemoteQuery indicates that the gateway failed the chart query or returned malformed data.
	ErrRemoteQuery = errors.New("remote query error")

	// ErrSink indicates that the output file could not be written.
	ErrSink = errors.New("sink error")

	// ErrTableExists is returned by the sqlite3 sink when the target table already exists.
	ErrTableExists = errors.New("table already exists")

	// ErrUnsupportedFormat is returned for an output format no sink handles.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// UsageError is a rejected invocation. An empty Message means "no filter given".
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	if e.Message == "" {
		return ErrUsage.Error()
	}
	return e.Message
}

// Is lets errors.Is(err, ErrUsage) match every UsageError.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// NewUsageError builds a UsageError with a formatted message.
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// NormalizationError records the column whose conversion failed.
// It is logged and never fatal.
type NormalizationError struct {
	Column string
	Err    error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize column %s: %v", e.Column, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }
