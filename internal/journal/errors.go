package journal

import "fmt"

// ParseError indicates the journal file exists but does not contain a valid
// JSON task array.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse journal file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidInputError indicates a rejected argument: a malformed due date,
// empty task text, an unknown priority, or an out-of-range position.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}
