package wedding

import (
	"errors"
	"net/http"

	"venue-tagger/internal/services/extract"
)

// Domain errors for wedding planning.
var (
	ErrMissingLocation   = errors.New("location is required")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrUnknownSection    = errors.New("unknown section type")
)

// MapHTTPStatus converts wedding errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingLocation),
		errors.Is(err, ErrMissingParameters),
		errors.Is(err, ErrUnknownSection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PlanMessage returns the user-facing text for a plan failure.
func PlanMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingLocation):
		return "Location is required"
	case errors.Is(err, extract.ErrUnparsableCompletion), errors.Is(err, extract.ErrSchemaMismatch):
		return "Failed to parse wedding plan from AI response"
	default:
		return "Failed to generate wedding plan"
	}
}

// RefreshMessage returns the user-facing text for a section refresh failure.
func RefreshMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingParameters), errors.Is(err, ErrMissingLocation):
		return "Missing required parameters"
	case errors.Is(err, ErrUnknownSection):
		return "Invalid section type"
	case errors.Is(err, extract.ErrUnparsableCompletion), errors.Is(err, extract.ErrSchemaMismatch):
		return "Failed to parse new recommendation"
	default:
		return "Failed to refresh section"
	}
}
