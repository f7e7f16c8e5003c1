package store

import (
	"errors"
	"fmt"

	"github.com/roach88/lumos/internal/ldl"
)

// ErrNotFound is returned by read operations when no project matches.
var ErrNotFound = errors.New("project not found")

// Status is the outcome tag of a persistence operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is what CreateProject and SaveProject return. The persistence
// engine never returns an error past its boundary; failures are reported
// here with the error text in Message.
//
// JSON form: {"status":"success","project_id":7} or {"status":"error","message":"..."}.
type Result struct {
	Status      Status `json:"status"`
	ProjectID   int64  `json:"project_id,omitempty"`
	Message     string `json:"message,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`

	// Err is the underlying failure, kept for errors.As classification.
	Err error `json:"-"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func success(projectID int64, hash string) Result {
	return Result{Status: StatusSuccess, ProjectID: projectID, ContentHash: hash}
}

func failure(err error) Result {
	return Result{Status: StatusError, Message: err.Error(), Err: err}
}

// PersistenceError reports a database-level failure inside a transaction.
// The transaction has been rolled back when this error is observed.
type PersistenceError struct {
	// Op is the operation that failed ("create project", "save project", ...).
	Op string
	// Err is the wrapped driver error.
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err wraps a *PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err came from a missing document field.
func IsValidationError(err error) bool {
	return ldl.IsFieldError(err)
}
