package facturx_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/money"
	"github.com/rezonia/facturx/internal/totals"
	"github.com/rezonia/facturx/pkg/facturx"
)

func newValidator(t *testing.T) *facturx.Validator {
	t.Helper()
	v, err := facturx.NewValidator()
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func sampleInvoice() *facturx.Invoice {
	return &facturx.Invoice{
		Number:       "RE-2026-042",
		IssueDate:    facturx.NewDate(2026, time.June, 1),
		CurrencyCode: "EUR",
		Seller: facturx.TradeParty{
			Name:  "Muster GmbH",
			VATID: "DE123456789",
			Address: facturx.Address{
				Line1:       "Musterstr. 1",
				Postcode:    "10115",
				City:        "Berlin",
				CountryCode: "DE",
			},
		},
		Buyer: facturx.TradeParty{
			Name: "Kunde AG",
			Address: facturx.Address{
				Line1:       "Kundenweg 2",
				Postcode:    "80331",
				City:        "Muenchen",
				CountryCode: "DE",
			},
		},
		Items: []facturx.LineItem{{
			Name:         "Consulting",
			Quantity:     money.MustFromString("8"),
			QuantityUnit: "HUR",
			NetUnitPrice: money.MustFromString("120"),
			VATRate:      money.MustFromString("19"),
			VATCode:      "S",
		}},
	}
}

// renderWithoutValidation bypasses the export validation gate to produce
// documents the exporter itself refuses to emit.
func renderWithoutValidation(t *testing.T, inv *facturx.Invoice) []byte {
	t.Helper()
	data, err := cii.Render(totals.Derive(inv))
	require.NoError(t, err)
	return data
}

func minimalPDF(t *testing.T) []byte {
	t.Helper()
	ctx, err := pdfcpulib.CreateContextWithXRefTable(nil, types.PaperSize["A4"])
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, api.WriteContext(ctx, &buf))
	return buf.Bytes()
}

func TestExportImportRoundTripXML(t *testing.T) {
	v := newValidator(t)
	exporter := facturx.NewExporter(v)
	importer := facturx.NewImporter(v)

	xml, err := exporter.BuildXML(sampleInvoice())
	require.NoError(t, err)

	result, err := importer.Import(xml)
	require.NoError(t, err)
	assert.Equal(t, facturx.ProfileEN16931, result.Profile)
	assert.Equal(t, facturx.FormatXML, result.Format)

	inv := result.Invoice
	assert.Equal(t, "RE-2026-042", inv.Number)
	assert.Equal(t, "960.00", inv.Totals.Net.StringFixed(2))
	assert.Equal(t, "182.40", inv.Totals.VAT.StringFixed(2))
	assert.Equal(t, "1142.40", inv.Totals.Gross.StringFixed(2))

	// Re-deriving the imported invoice changes nothing.
	again := facturx.Derive(inv)
	assert.True(t, inv.Totals.Gross.Equal(again.Totals.Gross))
	assert.True(t, inv.Totals.VAT.Equal(again.Totals.VAT))
}

func TestExportImportRoundTripPDF(t *testing.T) {
	v := newValidator(t)
	exporter := facturx.NewExporter(v)
	importer := facturx.NewImporter(v)

	hybrid, err := exporter.BuildPDF(sampleInvoice(), minimalPDF(t))
	require.NoError(t, err)
	assert.True(t, facturx.IsZUGFeRD(hybrid))

	result, err := importer.Import(hybrid)
	require.NoError(t, err)
	assert.Equal(t, facturx.FormatPDF, result.Format)
	assert.Equal(t, facturx.ProfileEN16931, result.Profile)
	assert.Equal(t, "RE-2026-042", result.Invoice.Number)
}

func TestExportRejectedInvoiceLeavesNoFile(t *testing.T) {
	v := newValidator(t)
	exporter := facturx.NewExporter(v)

	inv := sampleInvoice()
	inv.Seller.Name = ""

	path := filepath.Join(t.TempDir(), "invoice.xml")
	err := exporter.ExportXML(inv, path)

	var schemaErr *facturx.SchemaInvalidError
	require.ErrorAs(t, err, &schemaErr)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExportXMLWritesFile(t *testing.T) {
	v := newValidator(t)
	exporter := facturx.NewExporter(v)

	path := filepath.Join(t.TempDir(), "invoice.xml")
	require.NoError(t, exporter.ExportXML(sampleInvoice(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, facturx.IsXInvoice(data))
}

func TestImportExtendedConformant(t *testing.T) {
	v := newValidator(t)
	exporter := facturx.NewExporter(v)
	importer := facturx.NewImporter(v)

	inv := sampleInvoice()
	inv.Seller.Name = ""

	// Build the XML without the export validation gate.
	xml, buildErr := exporter.BuildXML(inv)
	require.Error(t, buildErr)
	require.Nil(t, xml)

	relaxed := renderWithoutValidation(t, inv)
	result, err := importer.Import(relaxed)
	require.NoError(t, err)
	assert.Equal(t, facturx.ProfileExtended, result.Profile)

	found := false
	for _, w := range result.Warnings {
		if w.Code == facturx.WarnExtendedConformant {
			found = true
		}
	}
	assert.True(t, found)
}

func TestImportUnknownFormat(t *testing.T) {
	v := newValidator(t)
	importer := facturx.NewImporter(v)

	_, err := importer.Import([]byte("neither pdf nor xml"))
	var inputErr *facturx.InputInvalidError
	require.ErrorAs(t, err, &inputErr)
}
