// Package totals recomputes every derived field of an invoice from its
// primitive inputs: per-line net amounts, the VAT breakdown per category
// and rate, and the document totals. It never fails and never mutates its
// input; callers serialize the returned invoice.
package totals

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
)

// BreakdownKey builds the taxes map key for a category code and rate,
// e.g. "S-19" or "AE-0".
func BreakdownKey(code string, rate decimal.Decimal) string {
	return fmt.Sprintf("%s-%s", code, money.FormatRate(rate))
}

// Derive returns a copy of the invoice with all derived fields rebuilt.
// Deriving an already-derived invoice yields an identical result.
//
// Document-level allowance and charge totals are intentionally kept at
// zero; accumulating the allowances/charges sequences into the totals is
// reserved until the feature is supported end to end.
func Derive(in *model.Invoice) *model.Invoice {
	inv := in.Clone()

	applyDefaults(inv)

	// A seller missing one of its two tax registrations still has to
	// produce both XML elements; the sentinel keeps absence visible.
	if inv.Seller.TaxID == "" {
		inv.Seller.TaxID = model.SentinelNone
	}
	if inv.Seller.VATID == "" {
		inv.Seller.VATID = model.SentinelNone
	}

	if inv.Payment.Reference != "" {
		inv.Payment.Reference = strings.ReplaceAll(inv.Payment.Reference, "{number}", inv.Number)
	}

	// Exemption metadata survives the rebuild of the breakdown map.
	prev := inv.Taxes
	inv.Taxes = make(map[string]model.TaxBreakdown)

	type accumulator struct {
		net   decimal.Decimal
		gross decimal.Decimal
		rate  decimal.Decimal
		code  string
	}
	acc := make(map[string]*accumulator)

	itemsNet := money.Zero

	for i := range inv.Items {
		it := &inv.Items[i]

		grossUnit := money.Round2(it.NetUnitPrice.Mul(money.One.Add(it.VATRate.Div(money.Hundred))))

		net := it.Quantity.Mul(it.NetUnitPrice).Div(it.BasisQuantity)
		gross := it.Quantity.Mul(grossUnit).Div(it.BasisQuantity)

		it.NetAmount = money.Round2(net)

		// Totals accumulate the serialized per-line amounts, never the
		// unrounded intermediates, so the header line total always equals
		// the sum of the line totals exactly.
		itemsNet = itemsNet.Add(it.NetAmount)

		key := BreakdownKey(it.VATCode, it.VATRate)
		a, ok := acc[key]
		if !ok {
			a = &accumulator{net: money.Zero, gross: money.Zero, rate: it.VATRate, code: it.VATCode}
			acc[key] = a
		}
		a.net = a.net.Add(it.NetAmount)
		a.gross = a.gross.Add(gross)
	}

	vatTotal := money.Zero
	for key, a := range acc {
		tb := model.TaxBreakdown{
			Code:      a.code,
			Rate:      a.rate,
			NetAmount: a.net,
			VATAmount: money.Round2(a.gross.Sub(a.net)),
		}
		if old, ok := prev[key]; ok {
			tb.ExemptionReason = old.ExemptionReason
			tb.ExemptionReasonCode = old.ExemptionReasonCode
		}
		inv.Taxes[key] = tb
		vatTotal = vatTotal.Add(tb.VATAmount)
	}

	t := &inv.Totals
	t.ItemsNet = itemsNet
	t.ChargesNet = money.Zero
	t.AllowancesNet = money.Zero
	t.Net = itemsNet.Add(t.ChargesNet).Sub(t.AllowancesNet)
	t.VAT = vatTotal
	t.Gross = t.Net.Add(t.VAT)
	t.Due = money.Round2(t.Gross.Add(t.Rounding).Sub(t.Paid))

	return inv
}

func applyDefaults(inv *model.Invoice) {
	if inv.GuidelineID == "" {
		inv.GuidelineID = model.GuidelineEN16931
	}
	if inv.TypeCode == "" {
		inv.TypeCode = model.DefaultTypeCode
	}
	if inv.Seller.ElectronicAddress != "" && inv.Seller.ElectronicAddressScheme == "" {
		inv.Seller.ElectronicAddressScheme = model.DefaultElectronicScheme
	}
	if inv.Buyer.ElectronicAddress != "" && inv.Buyer.ElectronicAddressScheme == "" {
		inv.Buyer.ElectronicAddressScheme = model.DefaultElectronicScheme
	}
	for i := range inv.Payment.Methods {
		if inv.Payment.Methods[i].TypeCode == "" {
			inv.Payment.Methods[i].TypeCode = model.DefaultPaymentMeansCode
		}
	}
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.Quantity.IsZero() {
			it.Quantity = money.One
		}
		if it.QuantityUnit == "" {
			it.QuantityUnit = model.DefaultQuantityUnit
		}
		if it.BasisQuantity.IsZero() {
			it.BasisQuantity = money.One
		}
	}
}
