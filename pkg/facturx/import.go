package facturx

import (
	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/detect"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
)

// Result is the outcome of an import: the parsed invoice, the schema
// profile the XML satisfied, the container it arrived in, the raw XML and
// any recoverable conditions hit along the way.
type Result struct {
	Invoice  *model.Invoice  `json:"invoice"`
	Profile  Profile         `json:"profile"`
	Format   Format          `json:"-"`
	XML      []byte          `json:"-"`
	Warnings []model.Warning `json:"warnings,omitempty"`
}

// Importer reads hybrid PDFs and standalone XML back into the canonical
// model.
type Importer struct {
	validator *Validator
}

// NewImporter creates an importer on a shared validator.
func NewImporter(v *Validator) *Importer {
	return &Importer{validator: v}
}

// Import detects the container format, extracts the XML when the input is
// a PDF, classifies the document against the schema profiles and parses
// it. A document that satisfies only the Extended profile still imports,
// with an ExtendedConformant warning; one that satisfies neither fails
// with the EN 16931 violation list.
func (i *Importer) Import(data []byte) (*Result, error) {
	result := &Result{Format: detect.DetectFormat(data)}

	switch result.Format {
	case detect.FormatPDF:
		xml, err := pdf.Extract(data)
		if err != nil {
			return nil, err
		}
		result.XML = xml
	case detect.FormatXML:
		result.XML = data
	default:
		return nil, model.NewInputInvalidError("input is neither a PDF nor an XML document")
	}

	result.Profile = i.validator.Classify(result.XML)
	switch result.Profile {
	case ProfileExtended:
		result.Warnings = append(result.Warnings, model.Warning{
			Code:   model.WarnExtendedConformant,
			Detail: "document satisfies only the Extended profile",
		})
	case ProfileInvalid:
		if err := i.validator.Validate(result.XML); err != nil {
			return nil, err
		}
	}

	inv, warnings, err := cii.Parse(result.XML)
	if err != nil {
		return nil, err
	}
	result.Invoice = inv
	result.Warnings = append(result.Warnings, warnings...)
	return result, nil
}
