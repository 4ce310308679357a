package codes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/facturx/internal/codes"
)

func TestNameKnownCode(t *testing.T) {
	assert.Equal(t, "Commercial invoice", codes.InvoiceTypes.Name("380"))
	assert.Equal(t, "Euro", codes.Currencies.Name("EUR"))
	assert.Equal(t, "Germany", codes.Countries.Name("DE"))
}

func TestNameUnknownCodeIsTotal(t *testing.T) {
	// Unknown codes echo back instead of failing.
	assert.Equal(t, "999", codes.InvoiceTypes.Name("999"))
	assert.Equal(t, "", codes.Currencies.Name(""))
	assert.Equal(t, "XX", codes.Countries.Name("XX"))
}

func TestIsKnown(t *testing.T) {
	tests := []struct {
		name  string
		table codes.Table
		code  string
		known bool
	}{
		{"invoice type", codes.InvoiceTypes, "380", true},
		{"credit note", codes.InvoiceTypes, "381", true},
		{"bogus type", codes.InvoiceTypes, "000", false},
		{"sepa transfer", codes.PaymentMeans, "58", true},
		{"piece unit", codes.Units, "H87", true},
		{"hour unit", codes.Units, "HUR", true},
		{"standard vat", codes.VATCategories, "S", true},
		{"reverse charge", codes.VATCategories, "AE", true},
		{"bogus vat", codes.VATCategories, "X", false},
		{"reverse charge exemption", codes.ExemptionReasons, "BR-AE-10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.known, tt.table.IsKnown(tt.code))
		})
	}
}

func TestAllowanceAndChargeReasons(t *testing.T) {
	assert.True(t, codes.AllowanceReasons.IsKnown("95"))
	assert.True(t, codes.ChargeReasons.IsKnown("FC"))
}
