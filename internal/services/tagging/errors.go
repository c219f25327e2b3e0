package tagging

import (
	"errors"
	"net/http"

	"venue-tagger/internal/services/pdf"
)

// Domain errors for tag extraction.
var (
	ErrMissingFile       = errors.New("no PDF file uploaded")
	ErrInvalidFileType   = pdf.ErrNotPDF
	ErrFileTooLarge      = pdf.ErrFileTooLarge
	ErrNoExtractableText = errors.New("PDF contains no extractable text")
	ErrNoTags            = errors.New("no tags generated from the document")
)

// MapHTTPStatus converts tagging errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrInvalidFileType),
		errors.Is(err, ErrNoExtractableText),
		errors.Is(err, ErrNoTags):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for err. Internal detail never leaks.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return "No PDF file uploaded"
	case errors.Is(err, ErrInvalidFileType):
		return "File must be a PDF"
	case errors.Is(err, ErrFileTooLarge):
		return "File exceeds maximum upload size"
	case errors.Is(err, ErrNoExtractableText):
		return "PDF contains no extractable text"
	case errors.Is(err, ErrNoTags):
		return "No tags generated from the document"
	default:
		return "Failed to process document"
	}
}
