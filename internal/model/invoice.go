// Package model holds the canonical invoice representation shared by the
// derivation engine, the CII codec and the hybrid container. It is a plain
// data structure: no I/O, no formatting, no validation.
package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The canonical JSON contract encodes amounts as JSON numbers,
	// not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Guideline identifiers recognized on import. Only EN 16931 is emitted.
const (
	GuidelineEN16931  = "urn:cen.eu:en16931:2017"
	GuidelineExtended = "urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:extended"
	GuidelineBasic    = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"
)

// Defaults applied when a field is left empty.
const (
	DefaultTypeCode         = "380"
	DefaultPaymentMeansCode = "58"
	DefaultQuantityUnit     = "H87"
	DefaultElectronicScheme = "EM"
)

// SentinelNone is substituted into a mandatory seller tax registration
// that the source left empty, keeping the XML schema-valid while still
// encoding absence in-band.
const SentinelNone = "KEINE"

// Invoice is the canonical invoice tree. Field names mirror the canonical
// JSON interchange format one-to-one.
type Invoice struct {
	GuidelineID  string `json:"guidelineID,omitempty"`
	Number       string `json:"number"`
	IssueDate    Date   `json:"issueDate,omitzero"`
	TypeCode     string `json:"typeCode"`
	CurrencyCode string `json:"currencyCode"`

	DueDate       Date   `json:"dueDate,omitzero"`
	DeliveryDate  Date   `json:"deliveryDate,omitzero"`
	BillingPeriod Period `json:"billingPeriod,omitzero"`

	BuyerReference         string `json:"buyerReference,omitempty"`
	ProjectReference       string `json:"projectReference,omitempty"`
	ContractReference      string `json:"contractReference,omitempty"`
	PurchaseOrderReference string `json:"purchaseOrderReference,omitempty"`
	SalesOrderReference    string `json:"salesOrderReference,omitempty"`

	ReceivingAdvice Reference `json:"receivingAdvice,omitzero"`
	DespatchAdvice  Reference `json:"despatchAdvice,omitzero"`

	TenderReferences        []TypedReference `json:"tenderReferences,omitempty"`
	ObjectReferences        []TypedReference `json:"objectReferences,omitempty"`
	BuyerAccountingAccounts []string         `json:"buyerAccountingAccounts,omitempty"`
	InvoiceReferences       []Reference      `json:"invoiceReferences,omitempty"`

	Notes []string `json:"notes,omitempty"`

	// IntroText is not part of EN 16931; it is preserved in the canonical
	// model but never written to XML.
	IntroText string `json:"introText,omitempty"`

	Seller   TradeParty `json:"seller"`
	Buyer    TradeParty `json:"buyer"`
	Delivery *Address   `json:"delivery,omitempty"`

	Payment Payment `json:"payment"`

	Items []LineItem `json:"items"`

	Allowances []AllowanceCharge `json:"allowances,omitempty"`
	Charges    []AllowanceCharge `json:"charges,omitempty"`

	// Taxes is keyed by "<vatCode>-<rate>" with trailing zeros stripped
	// from the rate, e.g. "S-19" or "AE-0". Rebuilt on every derivation.
	Taxes map[string]TaxBreakdown `json:"taxes"`

	Totals Totals `json:"totals"`
}

// Period is a billing period with inclusive start and end dates.
type Period struct {
	Start Date `json:"start,omitzero"`
	End   Date `json:"end,omitzero"`
}

// IsZero reports whether both bounds are unset.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// Reference is a document reference with an optional issue date.
type Reference struct {
	ID   string `json:"id"`
	Date Date   `json:"date,omitzero"`
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r.ID == "" && r.Date.IsZero()
}

// TypedReference is a document reference qualified by a type code.
type TypedReference struct {
	ID       string `json:"id"`
	TypeCode string `json:"typeCode,omitempty"`
}

// TradeParty is a seller, buyer or other party on the invoice.
type TradeParty struct {
	Name      string `json:"name"`
	TradeName string `json:"tradeName,omitempty"`
	ID        string `json:"id,omitempty"`
	TradeID   string `json:"tradeID,omitempty"`
	VATID     string `json:"vatID,omitempty"`
	TaxID     string `json:"taxID,omitempty"`
	WEEEID    string `json:"weeeID,omitempty"`
	LegalInfo string `json:"legalInfo,omitempty"`

	ElectronicAddress       string `json:"electronicAddress,omitempty"`
	ElectronicAddressScheme string `json:"electronicAddressScheme,omitempty"`
	WebsiteText             string `json:"websiteText,omitempty"`

	Address Address `json:"address,omitzero"`
	Contact Contact `json:"contact,omitzero"`

	// LogoData is a path to the seller logo used by the rendering
	// collaborator; it is never written to XML.
	LogoData string `json:"logoData,omitempty"`
}

// Address is a postal address.
type Address struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	Line3       string `json:"line3,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Region      string `json:"region,omitempty"`
}

// IsZero reports whether every field is empty.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Contact is a named contact with communication details.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Fax   string `json:"fax,omitempty"`
}

// IsZero reports whether every field is empty.
func (c Contact) IsZero() bool {
	return c == Contact{}
}

// Payment groups the payment instructions of the invoice.
type Payment struct {
	Methods   []PaymentMethod `json:"methods,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Terms     string          `json:"terms,omitempty"`
}

// PaymentMethod is a single means of payment.
type PaymentMethod struct {
	TypeCode    string `json:"typeCode,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	IBAN        string `json:"iban,omitempty"`
	BIC         string `json:"bic,omitempty"`
	// BankName is cosmetic only; it never enters the XML.
	BankName string `json:"bankName,omitempty"`
}

// LineItem is one invoice line.
type LineItem struct {
	// LineID is assigned on export as the 1-based position of the line.
	LineID           string          `json:"lineID,omitempty"`
	Name             string          `json:"name"`
	SellerAssignedID string          `json:"sellerAssignedID,omitempty"`
	Description      string          `json:"description,omitempty"`
	VATRate          decimal.Decimal `json:"vatRate"`
	VATCode          string          `json:"vatCode,omitempty"`

	BillingPeriod    Period           `json:"billingPeriod,omitzero"`
	OrderPosition    string           `json:"orderPosition,omitempty"`
	ObjectReferences []TypedReference `json:"objectReferences,omitempty"`

	Quantity      decimal.Decimal `json:"quantity"`
	QuantityUnit  string          `json:"quantityUnit,omitempty"`
	NetUnitPrice  decimal.Decimal `json:"netUnitPrice"`
	BasisQuantity decimal.Decimal `json:"basisQuantity,omitzero"`

	// NetAmount is derived; the derivation engine overwrites it.
	NetAmount decimal.Decimal `json:"netAmount,omitzero"`

	Allowances []AllowanceCharge `json:"allowances,omitempty"`
	Charges    []AllowanceCharge `json:"charges,omitempty"`
}

// AllowanceCharge is shared between line level and document level; the
// indicator distinguishes a charge (true) from an allowance (false).
// VATCode and VATRate are only meaningful on document-level entries.
type AllowanceCharge struct {
	ChargeIndicator bool            `json:"chargeIndicator"`
	BasisAmount     decimal.Decimal `json:"basisAmount,omitzero"`
	Percent         decimal.Decimal `json:"percent,omitzero"`
	NetAmount       decimal.Decimal `json:"netAmount,omitzero"`
	Reason          string          `json:"reason,omitempty"`
	ReasonCode      string          `json:"reasonCode,omitempty"`
	VATCode         string          `json:"vatCode,omitempty"`
	VATRate         decimal.Decimal `json:"vatRate,omitzero"`
}

// TaxBreakdown is one VAT breakdown entry per distinct (code, rate) pair.
type TaxBreakdown struct {
	Code                string          `json:"code"`
	Rate                decimal.Decimal `json:"rate"`
	NetAmount           decimal.Decimal `json:"netAmount"`
	VATAmount           decimal.Decimal `json:"vatAmount"`
	ExemptionReason     string          `json:"exemptionReason,omitempty"`
	ExemptionReasonCode string          `json:"exemptionReasonCode,omitempty"`
}

// Totals are the derived monetary totals of the invoice.
type Totals struct {
	ItemsNet      decimal.Decimal `json:"itemsNet"`
	ChargesNet    decimal.Decimal `json:"chargesNet"`
	AllowancesNet decimal.Decimal `json:"allowancesNet"`
	Net           decimal.Decimal `json:"net"`
	VAT           decimal.Decimal `json:"vat"`
	Gross         decimal.Decimal `json:"gross"`
	Paid          decimal.Decimal `json:"paid"`
	Rounding      decimal.Decimal `json:"rounding"`
	Due           decimal.Decimal `json:"due"`
}

// Clone returns a deep copy of the invoice.
func (inv *Invoice) Clone() *Invoice {
	out := *inv

	out.TenderReferences = append([]TypedReference(nil), inv.TenderReferences...)
	out.ObjectReferences = append([]TypedReference(nil), inv.ObjectReferences...)
	out.BuyerAccountingAccounts = append([]string(nil), inv.BuyerAccountingAccounts...)
	out.InvoiceReferences = append([]Reference(nil), inv.InvoiceReferences...)
	out.Notes = append([]string(nil), inv.Notes...)
	out.Allowances = append([]AllowanceCharge(nil), inv.Allowances...)
	out.Charges = append([]AllowanceCharge(nil), inv.Charges...)

	if inv.Delivery != nil {
		addr := *inv.Delivery
		out.Delivery = &addr
	}

	out.Payment.Methods = append([]PaymentMethod(nil), inv.Payment.Methods...)

	out.Items = make([]LineItem, len(inv.Items))
	for i, it := range inv.Items {
		it.ObjectReferences = append([]TypedReference(nil), it.ObjectReferences...)
		it.Allowances = append([]AllowanceCharge(nil), it.Allowances...)
		it.Charges = append([]AllowanceCharge(nil), it.Charges...)
		out.Items[i] = it
	}

	if inv.Taxes != nil {
		out.Taxes = make(map[string]TaxBreakdown, len(inv.Taxes))
		for k, v := range inv.Taxes {
			out.Taxes[k] = v
		}
	}

	return &out
}
