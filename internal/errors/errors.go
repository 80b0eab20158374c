package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of deltamail error.
type ErrorCode string

const (
	ErrInvalidConfig         ErrorCode = "INVALID_CONFIG"
	ErrInsufficientSnapshots ErrorCode = "INSUFFICIENT_SNAPSHOTS"
	ErrSnapshotRead          ErrorCode = "SNAPSHOT_READ"
	ErrDraftWrite            ErrorCode = "DRAFT_WRITE"
	ErrInternal              ErrorCode = "INTERNAL"
)

// MailerError is a structured error with a code and optional details.
type MailerError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *MailerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *MailerError) Unwrap() error {
	return e.Err
}

// NewInvalidConfig creates an error for an invalid configuration value.
func NewInvalidConfig(msg string) *MailerError {
	return &MailerError{
		Code:    ErrInvalidConfig,
		Message: msg,
	}
}

// NewInsufficientSnapshots creates an error for when fewer than two snapshot
// files exist in the export directory.
func NewInsufficientSnapshots(dir string, found int) *MailerError {
	return &MailerError{
		Code:    ErrInsufficientSnapshots,
		Message: fmt.Sprintf("need at least two snapshots in %s, found %d", dir, found),
		Details: map[string]any{"dir": dir, "found": found},
	}
}

// NewSnapshotRead creates an error for an unreadable or headerless snapshot file.
func NewSnapshotRead(path string, err error) *MailerError {
	return &MailerError{
		Code:    ErrSnapshotRead,
		Message: fmt.Sprintf("cannot read snapshot %s: %v", path, err),
		Details: map[string]any{"path": path},
		Err:     err,
	}
}

// NewDraftWrite creates an error for a failed fallback draft write.
// Both delivery paths have failed at this point, so callers treat it as fatal.
func NewDraftWrite(path string, err error) *MailerError {
	return &MailerError{
		Code:    ErrDraftWrite,
		Message: fmt.Sprintf("cannot write draft %s: %v", path, err),
		Details: map[string]any{"path": path},
		Err:     err,
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *MailerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MailerError{
		Code:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a MailerError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MailerError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}
