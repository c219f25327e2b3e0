package pdf

import (
	"bytes"
	"errors"
	"mime"
)

// Domain errors for PDF handling.
var (
	ErrParse        = errors.New("malformed PDF document")
	ErrNotPDF       = errors.New("file must be a PDF")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

const MediaType = "application/pdf"

var signature = []byte("%PDF-")

// HasPDFSignature reports whether data starts with the PDF magic bytes,
// allowing for leading whitespace.
func HasPDFSignature(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n\x00"), signature)
}

// IsPDFMediaType reports whether a declared Content-Type names a PDF.
func IsPDFMediaType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == MediaType
}

// IsPDF reports whether an upload is a PDF: the declared media type must be
// application/pdf and the body must carry the PDF signature.
func IsPDF(contentType string, data []byte) bool {
	return IsPDFMediaType(contentType) && HasPDFSignature(data)
}
