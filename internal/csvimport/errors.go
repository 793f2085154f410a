package csvimport

import (
	"errors"
	"fmt"
)

// Run-level failures. Anything else that goes wrong with a single row is
// reported as an Outcome and never returned as an error.
var (
	// ErrHeadersNotSuitable rejects a file whose first line does not match
	// Columns exactly (names, order and count).
	ErrHeadersNotSuitable = errors.New("headers not suitable")

	// ErrEmptyFile is returned for an upload with no header line at all.
	// It matches ErrHeadersNotSuitable with errors.Is.
	ErrEmptyFile = fmt.Errorf("%w: file is empty", ErrHeadersNotSuitable)

	// ErrEmptyDelimiter is returned when no delimiter was supplied.
	ErrEmptyDelimiter = errors.New("delimiter must not be empty")
)

// FieldCountError reports a data line whose number of delimited fields
// differs from the header.
type FieldCountError struct {
	FirstField string
	Got, Want  int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%s: %s (got %d, want %d)", e.FirstField, fieldCountMessage, e.Got, e.Want)
}

const fieldCountMessage = "Number of delimited fields does not match header"
