package normalizer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat is returned when no header row matches a known layout.
	ErrUnrecognizedFormat = errors.New("unrecognized file format")
	// ErrEmptyInput is returned for files with no content.
	ErrEmptyInput = errors.New("empty input")
)

// ParseError reports a file that could not be interpreted at all.
// No partial result accompanies it.
type ParseError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	name := e.Filename
	if name == "" {
		name = "input"
	}
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", name, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
