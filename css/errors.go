package css

import (
	"errors"
	"fmt"
)

// ErrValueTooDeep is returned when a value nests deeper than the configured
// limit.
var ErrValueTooDeep = errors.New("value nesting too deep")

// ErrUnsafeURL is returned for image URLs with a scheme that can execute
// code, or for data URLs that do not carry an image.
var ErrUnsafeURL = errors.New("unsafe url")

// ParseError describes malformed value or media query text.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse %q: %s", e.Input, e.Reason)
}

func parseErrorf(input, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}
