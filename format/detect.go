// Package format sniffs input files so that only PDF documents reach the
// extraction backends.
package format

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format represents an input format
type Format int

const (
	// Unknown indicates content that is not a supported document
	Unknown Format = iota
	// PDF indicates a PDF document
	PDF
)

// pdfMIME is the media type mimetype reports for PDF content
const pdfMIME = "application/pdf"

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format
func (f Format) Extension() string {
	if f == PDF {
		return ".pdf"
	}
	return ""
}

// FromExtension determines the format from a filename extension alone
func FromExtension(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return PDF
	}
	return Unknown
}

// Detect sniffs content and returns its format and media type
func Detect(data []byte) (Format, string) {
	return fromMIME(mimetype.Detect(data))
}

// DetectReader sniffs the header of r
func DetectReader(r io.Reader) (Format, string, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return Unknown, "", fmt.Errorf("sniff: %w", err)
	}
	f, mime := fromMIME(m)
	return f, mime, nil
}

// DetectFile sniffs the file at path
func DetectFile(path string) (Format, string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return Unknown, "", fmt.Errorf("sniff %s: %w", path, err)
	}
	f, mime := fromMIME(m)
	return f, mime, nil
}

// IsPDF reports whether the file at path holds PDF content, whatever its
// extension
func IsPDF(path string) bool {
	f, _, err := DetectFile(path)
	return err == nil && f == PDF
}

func fromMIME(m *mimetype.MIME) (Format, string) {
	if m.Is(pdfMIME) {
		return PDF, m.String()
	}
	return Unknown, m.String()
}
