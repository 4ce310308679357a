package xsd_test

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
	"github.com/rezonia/facturx/internal/xsd"
)

func newValidator(t *testing.T) *xsd.Validator {
	t.Helper()
	v, err := xsd.New()
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func render(t *testing.T, inv *model.Invoice) []byte {
	t.Helper()
	data, err := cii.Render(totals.Derive(inv))
	require.NoError(t, err)
	return data
}

func validInvoice() *model.Invoice {
	return &model.Invoice{
		Number:       "RE-2026-001",
		IssueDate:    model.NewDate(2026, time.March, 15),
		CurrencyCode: "EUR",
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
		Items: []model.LineItem{{
			Name:         "Consulting",
			Quantity:     money.MustFromString("10"),
			QuantityUnit: "HUR",
			NetUnitPrice: money.MustFromString("100"),
			VATRate:      money.MustFromString("19"),
			VATCode:      "S",
		}},
	}
}

func TestValidateConformingDocument(t *testing.T) {
	v := newValidator(t)
	data := render(t, validInvoice())

	require.NoError(t, v.Validate(data))
	assert.Equal(t, xsd.ProfileEN16931, v.Classify(data))
}

func TestValidateMissingSellerName(t *testing.T) {
	v := newValidator(t)
	inv := validInvoice()
	inv.Seller.Name = ""

	data := render(t, inv)

	err := v.Validate(data)
	var schemaErr *model.SchemaInvalidError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Violations)
}

func TestClassifyRelaxedDocument(t *testing.T) {
	v := newValidator(t)
	inv := validInvoice()
	inv.Seller.Name = ""

	data := render(t, inv)

	// Fails the strict profile but still parses under the relaxed one.
	assert.Equal(t, xsd.ProfileExtended, v.Classify(data))
}

func TestValidateMalformedCountryCode(t *testing.T) {
	v := newValidator(t)
	data := render(t, validInvoice())

	broken := []byte(strings.Replace(string(data),
		"<ram:CountryID>DE</ram:CountryID>",
		"<ram:CountryID>Deutschland</ram:CountryID>", 1))

	err := v.Validate(broken)
	var schemaErr *model.SchemaInvalidError
	require.ErrorAs(t, err, &schemaErr)

	// The relaxed profile carries the same code facets.
	assert.Equal(t, xsd.ProfileInvalid, v.Classify(broken))
}

func TestValidateNonNumericTypeCode(t *testing.T) {
	v := newValidator(t)
	data := render(t, validInvoice())

	broken := []byte(strings.Replace(string(data),
		"<ram:TypeCode>380</ram:TypeCode>",
		"<ram:TypeCode>INVOICE</ram:TypeCode>", 1))

	err := v.Validate(broken)
	var schemaErr *model.SchemaInvalidError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Violations)
}

func TestValidateNotXML(t *testing.T) {
	v := newValidator(t)

	err := v.Validate([]byte("this is not xml"))
	var inputErr *model.InputInvalidError
	require.ErrorAs(t, err, &inputErr)

	assert.Equal(t, xsd.ProfileInvalid, v.Classify([]byte("this is not xml")))
}

func TestValidateForeignRoot(t *testing.T) {
	v := newValidator(t)

	err := v.Validate([]byte("<Invoice/>"))
	var schemaErr *model.SchemaInvalidError
	require.ErrorAs(t, err, &schemaErr)

	assert.Equal(t, xsd.ProfileInvalid, v.Classify([]byte("<Invoice/>")))
}
