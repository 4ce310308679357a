// Package detect classifies raw input bytes ahead of the import
// pipeline. Every function here is total: arbitrary input yields an
// answer, never a panic or an error.
package detect

import (
	"bytes"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/pdf"
)

// Format is the coarse container format of an input file.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// DetectFormat sniffs the container format from magic bytes.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("%PDF-")):
		return FormatPDF
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatXML
	default:
		return FormatUnknown
	}
}

// IsZUGFeRD reports whether data is a PDF carrying a Cross-Industry
// Invoice attachment.
func IsZUGFeRD(data []byte) bool {
	if DetectFormat(data) != FormatPDF {
		return false
	}
	xml, err := pdf.Extract(data)
	if err != nil {
		return false
	}
	return cii.IsCII(xml)
}

// IsXInvoice reports whether data is a standalone Cross-Industry Invoice
// document.
func IsXInvoice(data []byte) bool {
	return DetectFormat(data) == FormatXML && cii.IsCII(data)
}
