package extractor

import (
	"errors"
	"fmt"
)

// Failure kinds. Both are fatal for the document they occur in.
var (
	// ErrUnreadable means the source could not be opened or parsed as a PDF.
	ErrUnreadable = errors.New("unreadable PDF")
	// ErrEmptyDocument means the PDF has no pages or no extractable text.
	ErrEmptyDocument = errors.New("empty document")
)

// ExtractionError describes a failed extraction. It matches its Kind with
// errors.Is and also unwraps to the underlying cause.
type ExtractionError struct {
	Kind   error
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Kind)
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unreadable(source string, err error) error {
	return &ExtractionError{Kind: ErrUnreadable, Source: source, Err: err}
}

func empty(source string, err error) error {
	return &ExtractionError{Kind: ErrEmptyDocument, Source: source, Err: err}
}
