package cii_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
	"github.com/rezonia/facturx/internal/totals"
)

func sampleInvoice() *model.Invoice {
	return &model.Invoice{
		Number:       "RE-2026-001",
		IssueDate:    model.NewDate(2026, time.March, 15),
		CurrencyCode: "EUR",
		DueDate:      model.NewDate(2026, time.April, 14),
		Seller: model.TradeParty{
			Name:  "Muster GmbH",
			VATID: "DE123456789",
			Address: model.Address{
				Line1:       "Musterstr. 1",
				Postcode:    "10115",
				City:        "Berlin",
				CountryCode: "DE",
			},
		},
		Buyer: model.TradeParty{
			Name: "Kunde AG",
			Address: model.Address{
				Line1:       "Kundenweg 2",
				Postcode:    "80331",
				City:        "Muenchen",
				CountryCode: "DE",
			},
		},
		Payment: model.Payment{
			Methods: []model.PaymentMethod{{
				IBAN:        "DE89370400440532013000",
				AccountName: "Muster GmbH",
				BIC:         "COBADEFFXXX",
			}},
			Terms: "Zahlbar innerhalb von 30 Tagen",
		},
		Items: []model.LineItem{
			{
				Name:         "Consulting",
				Quantity:     money.MustFromString("10"),
				QuantityUnit: "HUR",
				NetUnitPrice: money.MustFromString("100"),
				VATRate:      money.MustFromString("19"),
				VATCode:      "S",
			},
		},
	}
}

func renderDerived(t *testing.T, inv *model.Invoice) (*model.Invoice, []byte) {
	t.Helper()
	derived := totals.Derive(inv)
	data, err := cii.Render(derived)
	require.NoError(t, err)
	return derived, data
}

func TestRenderSkeleton(t *testing.T) {
	_, data := renderDerived(t, sampleInvoice())
	xml := string(data)

	assert.Contains(t, xml, "<rsm:CrossIndustryInvoice")
	assert.Contains(t, xml, "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100")
	assert.Contains(t, xml, "<ram:ID>urn:cen.eu:en16931:2017</ram:ID>")
	assert.Contains(t, xml, "<ram:ID>RE-2026-001</ram:ID>")
	assert.Contains(t, xml, "<ram:TypeCode>380</ram:TypeCode>")
	assert.Contains(t, xml, `<udt:DateTimeString format="102">2026-03-15</udt:DateTimeString>`)
	assert.Contains(t, xml, "<ram:InvoiceCurrencyCode>EUR</ram:InvoiceCurrencyCode>")
}

func TestRenderAmountsAndQuantities(t *testing.T) {
	_, data := renderDerived(t, sampleInvoice())
	xml := string(data)

	// Amounts carry two decimals, quantities drop trailing zeros.
	assert.Contains(t, xml, "<ram:ChargeAmount>100.00</ram:ChargeAmount>")
	assert.Contains(t, xml, `<ram:BilledQuantity unitCode="HUR">10</ram:BilledQuantity>`)
	assert.Contains(t, xml, "<ram:LineTotalAmount>1000.00</ram:LineTotalAmount>")
	assert.Contains(t, xml, "<ram:RateApplicablePercent>19</ram:RateApplicablePercent>")
	assert.Contains(t, xml, "<ram:GrandTotalAmount>1190.00</ram:GrandTotalAmount>")
	assert.Contains(t, xml, "<ram:DuePayableAmount>1190.00</ram:DuePayableAmount>")

	// currencyID appears on the tax total and nowhere else.
	assert.Contains(t, xml, `<ram:TaxTotalAmount currencyID="EUR">190.00</ram:TaxTotalAmount>`)
	assert.NotContains(t, xml, `<ram:GrandTotalAmount currencyID`)
}

func TestRenderSellerRegistrations(t *testing.T) {
	inv := sampleInvoice()
	inv.Seller.TaxID = ""

	_, data := renderDerived(t, inv)
	xml := string(data)

	// Both registrations present, missing one encoded in-band.
	assert.Contains(t, xml, `<ram:ID schemeID="FC">KEINE</ram:ID>`)
	assert.Contains(t, xml, `<ram:ID schemeID="VA">DE123456789</ram:ID>`)
}

func TestRenderOmission(t *testing.T) {
	_, data := renderDerived(t, sampleInvoice())
	xml := string(data)

	// Empty optionals stay out of the document.
	assert.NotContains(t, xml, "BuyerReference")
	assert.NotContains(t, xml, "SpecifiedProcuringProject")
	assert.NotContains(t, xml, "ShipToTradeParty")
	assert.NotContains(t, xml, "ChargeTotalAmount")
	assert.NotContains(t, xml, "AllowanceTotalAmount")
	assert.NotContains(t, xml, "TotalPrepaidAmount")
	assert.NotContains(t, xml, "BasisQuantity")
}

func TestRenderLineIDsAreOrdinals(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = append(inv.Items, inv.Items[0])

	_, data := renderDerived(t, inv)
	xml := string(data)

	assert.Contains(t, xml, "<ram:LineID>1</ram:LineID>")
	assert.Contains(t, xml, "<ram:LineID>2</ram:LineID>")
	assert.NotContains(t, xml, "<ram:LineID>3</ram:LineID>")
}

func TestRenderByteStable(t *testing.T) {
	derived := totals.Derive(sampleInvoice())

	first, err := cii.Render(derived)
	require.NoError(t, err)
	second, err := cii.Render(derived)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderSortedTaxBreakdown(t *testing.T) {
	inv := sampleInvoice()
	second := inv.Items[0]
	second.VATRate = money.MustFromString("7")
	inv.Items = append(inv.Items, second)

	derived := totals.Derive(inv)
	data, err := cii.Render(derived)
	require.NoError(t, err)

	xml := string(data)
	settlement := xml[strings.Index(xml, "ApplicableHeaderTradeSettlement"):]
	i19 := strings.Index(settlement, "<ram:RateApplicablePercent>19</ram:RateApplicablePercent>")
	i7 := strings.Index(settlement, "<ram:RateApplicablePercent>7</ram:RateApplicablePercent>")
	require.Positive(t, i19)
	require.Positive(t, i7)
	// Breakdown keys sort lexically: S-19 before S-7.
	assert.Less(t, i19, i7)
}

func TestRenderBasisQuantityOnlyWhenMeaningful(t *testing.T) {
	inv := sampleInvoice()
	inv.Items[0].BasisQuantity = money.MustFromString("10")

	_, data := renderDerived(t, inv)
	assert.Contains(t, string(data), `<ram:BasisQuantity unitCode="HUR">10</ram:BasisQuantity>`)
}

func TestRenderProcuringProject(t *testing.T) {
	inv := sampleInvoice()
	inv.ProjectReference = "P-2026-7"

	_, data := renderDerived(t, inv)
	xml := string(data)

	assert.Contains(t, xml, "<ram:SpecifiedProcuringProject>")
	assert.Contains(t, xml, "<ram:ID>P-2026-7</ram:ID>")
	// The name is mandatory in the schema; the model has no field for it.
	assert.Contains(t, xml, "<ram:Name>Project</ram:Name>")
}

func TestIsCII(t *testing.T) {
	_, data := renderDerived(t, sampleInvoice())

	assert.True(t, cii.IsCII(data))
	assert.False(t, cii.IsCII([]byte("<Invoice/>")))
	assert.False(t, cii.IsCII([]byte("not xml")))
	assert.False(t, cii.IsCII(nil))
}
