package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrSchemaMismatch is returned when a recovered value is valid JSON but does
// not satisfy the expected structure.
var ErrSchemaMismatch = errors.New("completion does not match expected schema")

var validate = validator.New(validator.WithRequiredStructEnabled())

// SchemaError lists the fields that failed validation.
type SchemaError struct {
	Raw    string
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSchemaMismatch, strings.Join(e.Fields, ", "))
}

func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchemaMismatch, e.Err}
}

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate completion: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
	}
	return &SchemaError{Fields: fields, Err: err}
}

// DecodeValid recovers a value of the given shape from content, unmarshals it
// into v and validates it. v must point to a struct, or use a wrapper struct
// for array shapes.
func (e *Extractor) DecodeValid(content string, shape Shape, v any) error {
	if err := e.Decode(content, shape, v); err != nil {
		return err
	}
	if err := Validate(v); err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			se.Raw = content
		}
		return err
	}
	return nil
}
