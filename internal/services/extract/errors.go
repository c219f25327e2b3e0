package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparsableCompletion is returned when no JSON value of the requested
	// shape can be recovered from a completion.
	ErrUnparsableCompletion = errors.New("unparsable completion")

	// ErrEmptyCompletion is the unparsable case of a blank completion.
	ErrEmptyCompletion = fmt.Errorf("%w: empty completion", ErrUnparsableCompletion)
)

// UnparsableError carries the raw completion for diagnostic logging.
// Raw must never be returned to an end user.
type UnparsableError struct {
	Raw   string
	Shape Shape
	Err   error
}

func (e *UnparsableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unparsable completion: no %s found: %v", e.Shape, e.Err)
	}
	return fmt.Sprintf("unparsable completion: no %s found", e.Shape)
}

func (e *UnparsableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnparsableCompletion}
	}
	return []error{ErrUnparsableCompletion, e.Err}
}

// RawCompletion returns the raw completion attached to err, if any.
func RawCompletion(err error) (string, bool) {
	var ue *UnparsableError
	if errors.As(err, &ue) {
		return ue.Raw, true
	}
	var se *SchemaError
	if errors.As(err, &se) && se.Raw != "" {
		return se.Raw, true
	}
	return "", false
}
