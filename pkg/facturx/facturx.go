// Package facturx provides the public API for reading and writing
// Factur-X / ZUGFeRD electronic invoices.
//
// Export derives an invoice's totals, renders EN 16931 CII XML, validates
// it against the embedded schema set and either returns the bytes or
// embeds them into a PDF. Import goes the other way: detect the container,
// extract the XML, classify its profile and parse it back into the
// canonical model.
//
// Example usage:
//
//	validator, err := facturx.NewValidator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer validator.Close()
//
//	exporter := facturx.NewExporter(validator)
//	xml, err := exporter.BuildXML(invoice)
package facturx

import (
	"time"

	"github.com/rezonia/facturx/internal/detect"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/totals"
	"github.com/rezonia/facturx/internal/xsd"
)

// Re-export core types for public API
type (
	Invoice         = model.Invoice
	TradeParty      = model.TradeParty
	Address         = model.Address
	Contact         = model.Contact
	Payment         = model.Payment
	PaymentMethod   = model.PaymentMethod
	LineItem        = model.LineItem
	AllowanceCharge = model.AllowanceCharge
	TaxBreakdown    = model.TaxBreakdown
	Totals          = model.Totals
	Reference       = model.Reference
	TypedReference  = model.TypedReference
	Period          = model.Period
	Date            = model.Date
)

// Re-export error and warning types
type (
	InputInvalidError      = model.InputInvalidError
	SchemaInvalidError     = model.SchemaInvalidError
	Violation              = model.Violation
	AttachmentMissingError = model.AttachmentMissingError
	IOError                = model.IOError
	Warning                = model.Warning
	WarningCode            = model.WarningCode
)

// Re-export warning codes
const (
	WarnMalformedNumber    = model.WarnMalformedNumber
	WarnMalformedDate      = model.WarnMalformedDate
	WarnUnknownCode        = model.WarnUnknownCode
	WarnExtendedConformant = model.WarnExtendedConformant
)

// NewDate builds a calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return model.NewDate(year, month, day)
}

// Validator holds the compiled schema profiles shared by exporters and
// importers. Construct one per process and Close it on shutdown.
type Validator = xsd.Validator

// Profile identifies the schema profile a document conforms to.
type Profile = xsd.Profile

// Re-export profiles
const (
	ProfileEN16931  = xsd.ProfileEN16931
	ProfileExtended = xsd.ProfileExtended
	ProfileInvalid  = xsd.ProfileInvalid
)

// NewValidator compiles the embedded schema profiles.
func NewValidator() (*Validator, error) {
	return xsd.New()
}

// Derive returns a copy of the invoice with all derived fields rebuilt:
// line net amounts, the VAT breakdown and the document totals.
func Derive(inv *Invoice) *Invoice {
	return totals.Derive(inv)
}

// Format is the coarse container format of an input file.
type Format = detect.Format

// Re-export formats
const (
	FormatUnknown = detect.FormatUnknown
	FormatPDF     = detect.FormatPDF
	FormatXML     = detect.FormatXML
)

// DetectFormat sniffs the container format from magic bytes.
func DetectFormat(data []byte) Format {
	return detect.DetectFormat(data)
}

// IsZUGFeRD reports whether data is a PDF carrying an invoice attachment.
func IsZUGFeRD(data []byte) bool {
	return detect.IsZUGFeRD(data)
}

// IsXInvoice reports whether data is a standalone CII invoice document.
func IsXInvoice(data []byte) bool {
	return detect.IsXInvoice(data)
}
