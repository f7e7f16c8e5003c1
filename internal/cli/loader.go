package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/schema"
)

// LoadError is returned when a document file cannot be turned into a
// project document.
type LoadError struct {
	Code       string
	Path       string
	Message    string
	Violations []schema.Violation
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

// LoadDocument reads path, checks it against the project schema, and
// decodes it. The format follows the file extension.
func LoadDocument(path string) (*ldl.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, os.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, &LoadError{Code: code, Path: path, Message: err.Error()}
	}

	format := ldl.FormatFromPath(path)
	if violations := schema.Validate(data, format); len(violations) > 0 {
		return nil, &LoadError{
			Code:       ErrCodeInvalidDocument,
			Path:       path,
			Message:    fmt.Sprintf("%d schema violation(s), first: %s", len(violations), violations[0].Error()),
			Violations: violations,
		}
	}

	doc, err := ldl.Decode(data, format)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidDocument, Path: path, Message: err.Error()}
	}
	return doc, nil
}

// loadFailure reports a LoadDocument error through the formatter.
// Missing or unreadable files are command errors; invalid documents are
// validation failures.
func loadFailure(f *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	exit := ExitCommandError
	if le.Code == ErrCodeInvalidDocument {
		exit = ExitFailure
	}
	var details any
	if len(le.Violations) > 0 {
		details = le.Violations
	}
	return f.Fail(exit, le.Code, fmt.Sprintf("%s: %s", le.Path, le.Message), details)
}
