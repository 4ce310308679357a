package facturx

import (
	"os"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/totals"
)

// Exporter turns canonical invoices into validated XML and hybrid PDFs.
// A document that fails schema validation never reaches disk.
type Exporter struct {
	validator *Validator
}

// NewExporter creates an exporter on a shared validator.
func NewExporter(v *Validator) *Exporter {
	return &Exporter{validator: v}
}

// BuildXML derives the invoice, renders it as CII XML and validates the
// result. The returned bytes are guaranteed schema-valid.
func (e *Exporter) BuildXML(inv *model.Invoice) ([]byte, error) {
	derived := totals.Derive(inv)
	data, err := cii.Render(derived)
	if err != nil {
		return nil, err
	}
	if err := e.validator.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ExportXML writes the validated XML to path. Validation runs before the
// file is touched, so a rejected invoice leaves no file behind.
func (e *Exporter) ExportXML(inv *model.Invoice, path string) error {
	data, err := e.BuildXML(inv)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.NewIOError("export: write XML", err)
	}
	return nil
}

// BuildPDF embeds the validated XML into the given base PDF and returns
// the hybrid document. The base PDF is expected to already be PDF/A-3;
// pages and images pass through untouched.
func (e *Exporter) BuildPDF(inv *model.Invoice, base []byte) ([]byte, error) {
	data, err := e.BuildXML(inv)
	if err != nil {
		return nil, err
	}
	return pdf.Embed(base, data)
}

// ExportPDF embeds the validated XML into the PDF at pdfIn and writes the
// hybrid document to pdfOut.
func (e *Exporter) ExportPDF(inv *model.Invoice, pdfIn, pdfOut string) error {
	base, err := os.ReadFile(pdfIn)
	if err != nil {
		return model.NewIOError("export: read PDF", err)
	}
	hybrid, err := e.BuildPDF(inv, base)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pdfOut, hybrid, 0o644); err != nil {
		return model.NewIOError("export: write PDF", err)
	}
	return nil
}
