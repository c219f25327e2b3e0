// Package extract recovers JSON values from free-text LLM completions.
//
// Completions may wrap the payload in prose or a fenced block, or omit it
// entirely. The extractor is permissive on success and explicit on failure:
// it either returns a syntactically valid JSON value of the requested shape
// or an *UnparsableError carrying the raw text. It performs no logging and
// no retries.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Shape selects which top-level JSON value a completion must contain.
type Shape int

const (
	ShapeAny Shape = iota
	ShapeObject
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "JSON object"
	case ShapeArray:
		return "JSON array"
	default:
		return "JSON object or array"
	}
}

// Greedy on purpose: the match runs from the first opener to the last closer
// so nested structures are never truncated.
var (
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	anyPattern    = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)
)

func (s Shape) pattern() *regexp.Regexp {
	switch s {
	case ShapeObject:
		return objectPattern
	case ShapeArray:
		return arrayPattern
	default:
		return anyPattern
	}
}

// matches reports whether data is a JSON value of shape s.
func (s Shape) matches(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return false
	}
	switch s {
	case ShapeObject:
		return data[0] == '{'
	case ShapeArray:
		return data[0] == '['
	default:
		return data[0] == '{' || data[0] == '['
	}
}

// Extractor recovers JSON values from completions.
type Extractor struct {
	repair bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRepair enables a final jsonrepair pass over the candidate text.
// It is off by default: malformed JSON then fails instead of being patched.
func WithRepair(enabled bool) Option {
	return func(e *Extractor) {
		e.repair = enabled
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Raw returns the JSON text of the first value of the given shape found in content.
func (e *Extractor) Raw(content string, shape Shape) (json.RawMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}

	match := shape.pattern().FindString(content)
	if match != "" && shape.matches([]byte(match)) {
		return json.RawMessage(match), nil
	}

	// The model may have emitted pure JSON that the search misread.
	if shape.matches([]byte(content)) {
		return json.RawMessage(strings.TrimSpace(content)), nil
	}

	var lastErr error
	if e.repair {
		candidate := match
		if candidate == "" {
			candidate = content
		}
		repaired, err := jsonrepair.JSONRepair(candidate)
		if err == nil && shape.matches([]byte(repaired)) {
			return json.RawMessage(repaired), nil
		}
		lastErr = err
	}

	if lastErr == nil {
		candidate := match
		if candidate == "" {
			candidate = content
		}
		var v any
		lastErr = json.Unmarshal([]byte(candidate), &v)
	}

	return nil, &UnparsableError{Raw: content, Shape: shape, Err: lastErr}
}

// Decode recovers a value of the given shape from content and unmarshals it
// into v. Well-formed JSON whose values have the wrong types for v is a
// *SchemaError, not an *UnparsableError.
func (e *Extractor) Decode(content string, shape Shape, v any) error {
	raw, err := e.Raw(content, shape)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return &SchemaError{Raw: content, Fields: []string{typeField(te)}, Err: err}
		}
		return &UnparsableError{Raw: content, Shape: shape, Err: err}
	}
	return nil
}

func typeField(te *json.UnmarshalTypeError) string {
	name := te.Field
	if te.Struct != "" {
		name = te.Struct + "." + te.Field
	}
	return fmt.Sprintf("%s(%s)", name, te.Type)
}

// Object recovers a JSON object from content.
func (e *Extractor) Object(content string) (map[string]any, error) {
	var out map[string]any
	if err := e.Decode(content, ShapeObject, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Array recovers a JSON array from content.
func (e *Extractor) Array(content string) ([]any, error) {
	var out []any
	if err := e.Decode(content, ShapeArray, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Any recovers either a JSON object or a JSON array, whichever opens first.
func (e *Extractor) Any(content string) (any, error) {
	var out any
	if err := e.Decode(content, ShapeAny, &out); err != nil {
		return nil, err
	}
	return out, nil
}
