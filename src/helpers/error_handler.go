package helpers

import (
	"context"
	"fmt"
	"time"

	"stock-analysis/src/logger"

	"github.com/cenkalti/backoff/v4"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PipelineError struct {
	Message string
	Path    string
	Cause   error
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks.
// DiscoveryError and PersistenceError abort a run; FileParseError and
// RecordValidationError are logged and skipped.
type DiscoveryError struct{ PipelineError }
type FileParseError struct{ PipelineError }
type RecordValidationError struct{ PipelineError }
type PersistenceError struct{ PipelineError }
type DatabaseError struct{ PipelineError }

func NewDiscoveryError(path string, cause error) *DiscoveryError {
	return &DiscoveryError{PipelineError{Message: "cannot read source root", Path: path, Cause: cause}}
}

func NewFileParseError(path string, cause error) *FileParseError {
	return &FileParseError{PipelineError{Message: "cannot parse source file", Path: path, Cause: cause}}
}

func NewRecordValidationError(identity string, reason string) *RecordValidationError {
	return &RecordValidationError{PipelineError{Message: fmt.Sprintf("invalid record %s: %s", identity, reason)}}
}

func NewPersistenceError(path string, cause error) *PersistenceError {
	return &PersistenceError{PipelineError{Message: "cannot write artifact", Path: path, Cause: cause}}
}

func NewDatabaseError(operation string, cause error) *DatabaseError {
	return &DatabaseError{PipelineError{Message: fmt.Sprintf("%s failed", operation), Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries times with exponential backoff,
// starting at baseDelay. It stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = baseDelay
	expo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(maxRetries-1)), ctx)

	attempt := 0
	notify := func(err error, delay time.Duration) {
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt, maxRetries, operation, err, delay)
		}
	}

	return backoff.RetryNotify(func() error {
		attempt++
		return fn()
	}, policy, notify)
}
