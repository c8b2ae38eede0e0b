package wire

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrFrameTooShort indicates a frame below the minimum valid length,
	// usually a truncated or corrupted read.
	ErrFrameTooShort = errors.New("frame too short")

	// ErrMalformedNumber indicates a numeric payload that does not parse
	// as a decimal integer, usually device misbehavior or protocol desync.
	ErrMalformedNumber = errors.New("malformed numeric payload")

	// ErrMalformedFrame indicates a request line whose structure does not
	// match the protocol format.
	ErrMalformedFrame = errors.New("malformed request frame")
)

// ValidationError reports a request field outside its protocol range, or
// an invalid direction. Validation runs before any I/O, so the caller can
// fix the input and retry.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	if e.Field == "direction" {
		return fmt.Sprintf("direction must be %q or %q, got %q", byte(Read), byte(Write), byte(e.Value))
	}
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}
