package cii

import (
	"sort"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
)

// Render serializes a derived invoice as EN 16931 CII XML. The caller is
// expected to have run the derivation engine first; Render reads totals
// and breakdowns as-is and never mutates the invoice.
func Render(inv *model.Invoice) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", NamespaceRSM)
	root.CreateAttr("xmlns:qdt", NamespaceQDT)
	root.CreateAttr("xmlns:ram", NamespaceRAM)
	root.CreateAttr("xmlns:udt", NamespaceUDT)

	writeContext(root)
	writeDocument(root, inv)
	writeTransaction(root, inv)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func writeContext(root *etree.Element) {
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	param := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	// Only the EN 16931 guideline is ever emitted.
	param.CreateElement("ram:ID").SetText(model.GuidelineEN16931)
}

func writeDocument(root *etree.Element, inv *model.Invoice) {
	doc := root.CreateElement("rsm:ExchangedDocument")
	writeText(doc, "ram:ID", inv.Number)
	writeText(doc, "ram:TypeCode", inv.TypeCode)
	writeDate(doc, "ram:IssueDateTime", inv.IssueDate)
	for _, note := range inv.Notes {
		if note == "" {
			continue
		}
		n := doc.CreateElement("ram:IncludedNote")
		n.CreateElement("ram:Content").SetText(note)
	}
}

func writeTransaction(root *etree.Element, inv *model.Invoice) {
	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")
	for i := range inv.Items {
		writeLineItem(tx, i, &inv.Items[i])
	}
	writeAgreement(tx, inv)
	writeDelivery(tx, inv)
	writeSettlement(tx, inv)
}

func writeLineItem(tx *etree.Element, index int, it *model.LineItem) {
	line := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	lineDoc := line.CreateElement("ram:AssociatedDocumentLineDocument")
	lineDoc.CreateElement("ram:LineID").SetText(ordinal(index))

	product := line.CreateElement("ram:SpecifiedTradeProduct")
	writeText(product, "ram:SellerAssignedID", it.SellerAssignedID)
	writeText(product, "ram:Name", it.Name)
	writeText(product, "ram:Description", it.Description)

	agreement := line.CreateElement("ram:SpecifiedLineTradeAgreement")
	if it.OrderPosition != "" {
		ref := agreement.CreateElement("ram:BuyerOrderReferencedDocument")
		ref.CreateElement("ram:LineID").SetText(it.OrderPosition)
	}
	price := agreement.CreateElement("ram:NetPriceProductTradePrice")
	writeAmount(price, "ram:ChargeAmount", it.NetUnitPrice, "")
	if basisQuantityWritten(it.BasisQuantity) {
		bq := price.CreateElement("ram:BasisQuantity")
		bq.CreateAttr("unitCode", it.QuantityUnit)
		bq.SetText(money.FormatQuantity(it.BasisQuantity))
	}

	delivery := line.CreateElement("ram:SpecifiedLineTradeDelivery")
	qty := delivery.CreateElement("ram:BilledQuantity")
	qty.CreateAttr("unitCode", it.QuantityUnit)
	qty.SetText(money.FormatQuantity(it.Quantity))

	settlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
	tax := settlement.CreateElement("ram:ApplicableTradeTax")
	tax.CreateElement("ram:TypeCode").SetText("VAT")
	writeText(tax, "ram:CategoryCode", it.VATCode)
	tax.CreateElement("ram:RateApplicablePercent").SetText(money.FormatRate(it.VATRate))

	writePeriod(settlement, it.BillingPeriod)

	for _, ac := range it.Allowances {
		writeAllowanceCharge(settlement, ac, false)
	}
	for _, ac := range it.Charges {
		writeAllowanceCharge(settlement, ac, true)
	}

	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	writeAmount(sum, "ram:LineTotalAmount", it.NetAmount, "")

	for _, ref := range it.ObjectReferences {
		doc := settlement.CreateElement("ram:AdditionalReferencedDocument")
		writeText(doc, "ram:IssuerAssignedID", ref.ID)
		doc.CreateElement("ram:TypeCode").SetText("130")
		writeText(doc, "ram:ReferenceTypeCode", ref.TypeCode)
	}
}

func writeAgreement(tx *etree.Element, inv *model.Invoice) {
	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	writeText(agreement, "ram:BuyerReference", inv.BuyerReference)
	writeParty(agreement, "ram:SellerTradeParty", &inv.Seller, true)
	writeParty(agreement, "ram:BuyerTradeParty", &inv.Buyer, false)

	writeReferencedDocument(agreement, "ram:SellerOrderReferencedDocument", model.Reference{ID: inv.SalesOrderReference})
	writeReferencedDocument(agreement, "ram:BuyerOrderReferencedDocument", model.Reference{ID: inv.PurchaseOrderReference})
	writeReferencedDocument(agreement, "ram:ContractReferencedDocument", model.Reference{ID: inv.ContractReference})

	for _, ref := range inv.TenderReferences {
		doc := agreement.CreateElement("ram:AdditionalReferencedDocument")
		writeText(doc, "ram:IssuerAssignedID", ref.ID)
		doc.CreateElement("ram:TypeCode").SetText("50")
		writeText(doc, "ram:ReferenceTypeCode", ref.TypeCode)
	}
	for _, ref := range inv.ObjectReferences {
		doc := agreement.CreateElement("ram:AdditionalReferencedDocument")
		writeText(doc, "ram:IssuerAssignedID", ref.ID)
		doc.CreateElement("ram:TypeCode").SetText("130")
		writeText(doc, "ram:ReferenceTypeCode", ref.TypeCode)
	}

	if inv.ProjectReference != "" {
		project := agreement.CreateElement("ram:SpecifiedProcuringProject")
		project.CreateElement("ram:ID").SetText(inv.ProjectReference)
		// The schema makes the project name mandatory but the model only
		// carries the reference, so a fixed label fills the slot.
		project.CreateElement("ram:Name").SetText("Project")
	}
}

func writeDelivery(tx *etree.Element, inv *model.Invoice) {
	delivery := tx.CreateElement("ram:ApplicableHeaderTradeDelivery")

	if inv.Delivery != nil && !inv.Delivery.IsZero() {
		shipTo := delivery.CreateElement("ram:ShipToTradeParty")
		writeAddress(shipTo, *inv.Delivery)
	}
	if !inv.DeliveryDate.IsZero() {
		event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
		writeDate(event, "ram:OccurrenceDateTime", inv.DeliveryDate)
	}
	writeReferencedDocument(delivery, "ram:DespatchAdviceReferencedDocument", inv.DespatchAdvice)
	writeReferencedDocument(delivery, "ram:ReceivingAdviceReferencedDocument", inv.ReceivingAdvice)
}

func writeSettlement(tx *etree.Element, inv *model.Invoice) {
	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	writeText(settlement, "ram:PaymentReference", inv.Payment.Reference)
	writeText(settlement, "ram:InvoiceCurrencyCode", inv.CurrencyCode)

	for _, pm := range inv.Payment.Methods {
		means := settlement.CreateElement("ram:SpecifiedTradeSettlementPaymentMeans")
		writeText(means, "ram:TypeCode", pm.TypeCode)
		if pm.IBAN != "" || pm.AccountName != "" {
			account := means.CreateElement("ram:PayeePartyCreditorFinancialAccount")
			writeText(account, "ram:IBANID", pm.IBAN)
			writeText(account, "ram:AccountName", pm.AccountName)
		}
		if pm.BIC != "" {
			inst := means.CreateElement("ram:PayeeSpecifiedCreditorFinancialInstitution")
			writeText(inst, "ram:BICID", pm.BIC)
		}
	}

	for _, key := range sortedBreakdownKeys(inv.Taxes) {
		tb := inv.Taxes[key]
		tax := settlement.CreateElement("ram:ApplicableTradeTax")
		writeAmount(tax, "ram:CalculatedAmount", tb.VATAmount, "")
		tax.CreateElement("ram:TypeCode").SetText("VAT")
		writeText(tax, "ram:ExemptionReason", tb.ExemptionReason)
		writeAmount(tax, "ram:BasisAmount", tb.NetAmount, "")
		writeText(tax, "ram:CategoryCode", tb.Code)
		writeText(tax, "ram:ExemptionReasonCode", tb.ExemptionReasonCode)
		tax.CreateElement("ram:RateApplicablePercent").SetText(money.FormatRate(tb.Rate))
	}

	writePeriod(settlement, inv.BillingPeriod)

	for _, ac := range inv.Allowances {
		writeAllowanceCharge(settlement, ac, false)
	}
	for _, ac := range inv.Charges {
		writeAllowanceCharge(settlement, ac, true)
	}

	if inv.Payment.Terms != "" || !inv.DueDate.IsZero() {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		writeText(terms, "ram:Description", inv.Payment.Terms)
		writeDate(terms, "ram:DueDateDateTime", inv.DueDate)
	}

	writeMonetarySummation(settlement, inv)

	for _, ref := range inv.InvoiceReferences {
		doc := settlement.CreateElement("ram:InvoiceReferencedDocument")
		writeText(doc, "ram:IssuerAssignedID", ref.ID)
		writeFormattedDate(doc, ref.Date)
	}
	for _, account := range inv.BuyerAccountingAccounts {
		if account == "" {
			continue
		}
		acc := settlement.CreateElement("ram:ReceivableSpecifiedTradeAccountingAccount")
		acc.CreateElement("ram:ID").SetText(account)
	}
}

func writeMonetarySummation(settlement *etree.Element, inv *model.Invoice) {
	t := inv.Totals
	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	writeAmount(sum, "ram:LineTotalAmount", t.ItemsNet, "")
	// Forced-zero totals stay out of the document entirely.
	if !t.ChargesNet.IsZero() {
		writeAmount(sum, "ram:ChargeTotalAmount", t.ChargesNet, "")
	}
	if !t.AllowancesNet.IsZero() {
		writeAmount(sum, "ram:AllowanceTotalAmount", t.AllowancesNet, "")
	}
	writeAmount(sum, "ram:TaxBasisTotalAmount", t.Net, "")
	writeAmount(sum, "ram:TaxTotalAmount", t.VAT, inv.CurrencyCode)
	if !t.Rounding.IsZero() {
		writeAmount(sum, "ram:RoundingAmount", t.Rounding, "")
	}
	writeAmount(sum, "ram:GrandTotalAmount", t.Gross, "")
	if !t.Paid.IsZero() {
		writeAmount(sum, "ram:TotalPrepaidAmount", t.Paid, "")
	}
	writeAmount(sum, "ram:DuePayableAmount", t.Due, "")
}

func writeParty(parent *etree.Element, tag string, p *model.TradeParty, seller bool) {
	party := parent.CreateElement(tag)
	writeText(party, "ram:ID", p.ID)
	writeText(party, "ram:Name", p.Name)
	writeText(party, "ram:Description", p.LegalInfo)

	if p.TradeID != "" || p.TradeName != "" {
		org := party.CreateElement("ram:SpecifiedLegalOrganization")
		writeText(org, "ram:ID", p.TradeID)
		writeText(org, "ram:TradingBusinessName", p.TradeName)
	}

	if !p.Contact.IsZero() {
		contact := party.CreateElement("ram:DefinedTradeContact")
		writeText(contact, "ram:PersonName", p.Contact.Name)
		if p.Contact.Phone != "" {
			tel := contact.CreateElement("ram:TelephoneUniversalCommunication")
			tel.CreateElement("ram:CompleteNumber").SetText(p.Contact.Phone)
		}
		if p.Contact.Fax != "" {
			fax := contact.CreateElement("ram:FaxUniversalCommunication")
			fax.CreateElement("ram:CompleteNumber").SetText(p.Contact.Fax)
		}
		if p.Contact.Email != "" {
			mail := contact.CreateElement("ram:EmailURIUniversalCommunication")
			mail.CreateElement("ram:URIID").SetText(p.Contact.Email)
		}
	}

	if !p.Address.IsZero() {
		addr := party.CreateElement("ram:PostalTradeAddress")
		writeAddressFields(addr, p.Address)
	}

	if p.ElectronicAddress != "" {
		uri := party.CreateElement("ram:URIUniversalCommunication")
		id := uri.CreateElement("ram:URIID")
		scheme := p.ElectronicAddressScheme
		if scheme == "" {
			scheme = model.DefaultElectronicScheme
		}
		id.CreateAttr("schemeID", scheme)
		id.SetText(p.ElectronicAddress)
	}

	taxID, vatID := p.TaxID, p.VATID
	if seller {
		// Both registrations are mandatory for the seller; absence is
		// encoded in-band.
		if taxID == "" {
			taxID = model.SentinelNone
		}
		if vatID == "" {
			vatID = model.SentinelNone
		}
	}
	writeTaxRegistration(party, "FC", taxID)
	writeTaxRegistration(party, "VA", vatID)
}

func writeTaxRegistration(party *etree.Element, scheme, id string) {
	if id == "" {
		return
	}
	reg := party.CreateElement("ram:SpecifiedTaxRegistration")
	e := reg.CreateElement("ram:ID")
	e.CreateAttr("schemeID", scheme)
	e.SetText(id)
}

func writeAddress(parent *etree.Element, a model.Address) {
	addr := parent.CreateElement("ram:PostalTradeAddress")
	writeAddressFields(addr, a)
}

func writeAddressFields(addr *etree.Element, a model.Address) {
	writeText(addr, "ram:PostcodeCode", a.Postcode)
	writeText(addr, "ram:LineOne", a.Line1)
	writeText(addr, "ram:LineTwo", a.Line2)
	writeText(addr, "ram:LineThree", a.Line3)
	writeText(addr, "ram:CityName", a.City)
	writeText(addr, "ram:CountryID", a.CountryCode)
	writeText(addr, "ram:CountrySubDivisionName", a.Region)
}

func writeAllowanceCharge(parent *etree.Element, ac model.AllowanceCharge, charge bool) {
	el := parent.CreateElement("ram:SpecifiedTradeAllowanceCharge")
	indicator := el.CreateElement("ram:ChargeIndicator")
	if charge {
		indicator.CreateElement("udt:Indicator").SetText("true")
	} else {
		indicator.CreateElement("udt:Indicator").SetText("false")
	}
	if !ac.Percent.IsZero() {
		el.CreateElement("ram:CalculationPercent").SetText(money.FormatRate(ac.Percent))
	}
	if !ac.BasisAmount.IsZero() {
		writeAmount(el, "ram:BasisAmount", ac.BasisAmount, "")
	}
	writeAmount(el, "ram:ActualAmount", ac.NetAmount, "")
	writeText(el, "ram:ReasonCode", ac.ReasonCode)
	writeText(el, "ram:Reason", ac.Reason)
	if ac.VATCode != "" {
		tax := el.CreateElement("ram:CategoryTradeTax")
		tax.CreateElement("ram:TypeCode").SetText("VAT")
		writeText(tax, "ram:CategoryCode", ac.VATCode)
		tax.CreateElement("ram:RateApplicablePercent").SetText(money.FormatRate(ac.VATRate))
	}
}

func writeReferencedDocument(parent *etree.Element, tag string, ref model.Reference) {
	if ref.IsZero() {
		return
	}
	doc := parent.CreateElement(tag)
	writeText(doc, "ram:IssuerAssignedID", ref.ID)
	writeFormattedDate(doc, ref.Date)
}

func writePeriod(parent *etree.Element, p model.Period) {
	if p.IsZero() {
		return
	}
	period := parent.CreateElement("ram:BillingSpecifiedPeriod")
	writeDate(period, "ram:StartDateTime", p.Start)
	writeDate(period, "ram:EndDateTime", p.End)
}

func writeText(parent *etree.Element, tag, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(tag).SetText(value)
}

func writeAmount(parent *etree.Element, tag string, d decimal.Decimal, currency string) {
	e := parent.CreateElement(tag)
	if currency != "" {
		e.CreateAttr("currencyID", currency)
	}
	e.SetText(money.FormatAmount(d))
}

func writeDate(parent *etree.Element, tag string, d model.Date) {
	if d.IsZero() {
		return
	}
	e := parent.CreateElement(tag)
	ts := e.CreateElement("udt:DateTimeString")
	ts.CreateAttr("format", dateFormat)
	ts.SetText(d.String())
}

// writeFormattedDate emits the qdt-flavoured date used by referenced
// documents.
func writeFormattedDate(parent *etree.Element, d model.Date) {
	if d.IsZero() {
		return
	}
	e := parent.CreateElement("ram:FormattedIssueDateTime")
	ts := e.CreateElement("qdt:DateTimeString")
	ts.CreateAttr("format", dateFormat)
	ts.SetText(d.String())
}

func basisQuantityWritten(d decimal.Decimal) bool {
	return !d.IsZero() && !d.Equal(money.One)
}

func ordinal(index int) string {
	return strconv.Itoa(index + 1)
}

func sortedBreakdownKeys(taxes map[string]model.TaxBreakdown) []string {
	keys := make([]string, 0, len(taxes))
	for k := range taxes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
