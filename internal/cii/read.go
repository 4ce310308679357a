package cii

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/facturx/internal/codes"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/totals"
)

// Parse reads a CII document into the canonical model. It is tolerant of
// profile variations: missing optional groups parse as empty values,
// malformed scalars become typed defaults with a warning, and codes
// outside the frozen tables are carried through verbatim.
func Parse(data []byte) (*model.Invoice, []model.Warning, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, nil, model.NewInputInvalidError("not an XML document: " + err.Error())
	}
	root := doc.Root()
	if root == nil || root.Tag != "CrossIndustryInvoice" {
		return nil, nil, model.NewInputInvalidError("not a Cross-Industry Invoice document")
	}

	p := &docParser{}
	inv := &model.Invoice{Taxes: make(map[string]model.TaxBreakdown)}

	inv.GuidelineID = textOf(root, "ExchangedDocumentContext",
		"GuidelineSpecifiedDocumentContextParameter", "ID")

	p.parseDocument(child(root, "ExchangedDocument"), inv)

	tx := child(root, "SupplyChainTradeTransaction")
	for _, line := range children(tx, "IncludedSupplyChainTradeLineItem") {
		inv.Items = append(inv.Items, p.parseLineItem(line))
	}
	p.parseAgreement(child(tx, "ApplicableHeaderTradeAgreement"), inv)
	p.parseDelivery(child(tx, "ApplicableHeaderTradeDelivery"), inv)
	p.parseSettlement(child(tx, "ApplicableHeaderTradeSettlement"), inv)

	return inv, p.warnings, nil
}

type docParser struct {
	warnings []model.Warning
}

func (p *docParser) warn(code model.WarningCode, field, detail string) {
	p.warnings = append(p.warnings, model.Warning{Code: code, Field: field, Detail: detail})
}

func (p *docParser) parseDocument(doc *etree.Element, inv *model.Invoice) {
	inv.Number = textOf(doc, "ID")
	inv.TypeCode = textOf(doc, "TypeCode")
	p.checkCode(codes.InvoiceTypes, "typeCode", inv.TypeCode)
	inv.IssueDate = p.date(find(doc, "IssueDateTime"), "issueDate")
	for _, note := range children(doc, "IncludedNote") {
		if content := textOf(note, "Content"); content != "" {
			inv.Notes = append(inv.Notes, content)
		}
	}
}

func (p *docParser) parseLineItem(line *etree.Element) model.LineItem {
	var it model.LineItem

	it.LineID = textOf(line, "AssociatedDocumentLineDocument", "LineID")

	product := child(line, "SpecifiedTradeProduct")
	it.SellerAssignedID = textOf(product, "SellerAssignedID")
	it.Name = textOf(product, "Name")
	it.Description = textOf(product, "Description")

	agreement := child(line, "SpecifiedLineTradeAgreement")
	it.OrderPosition = textOf(agreement, "BuyerOrderReferencedDocument", "LineID")
	price := child(agreement, "NetPriceProductTradePrice")
	it.NetUnitPrice = p.amount(find(price, "ChargeAmount"), "netUnitPrice")
	if bq := find(price, "BasisQuantity"); bq != nil {
		it.BasisQuantity = p.amount(bq, "basisQuantity")
	}

	qty := find(line, "SpecifiedLineTradeDelivery", "BilledQuantity")
	it.Quantity = p.amount(qty, "quantity")
	it.QuantityUnit = attrOf(qty, "unitCode")
	p.checkCode(codes.Units, "quantityUnit", it.QuantityUnit)

	settlement := child(line, "SpecifiedLineTradeSettlement")
	if tax := child(settlement, "ApplicableTradeTax"); tax != nil {
		it.VATCode = textOf(tax, "CategoryCode")
		p.checkCode(codes.VATCategories, "vatCode", it.VATCode)
		it.VATRate = p.amount(find(tax, "RateApplicablePercent"), "vatRate")
	}
	it.BillingPeriod = p.period(child(settlement, "BillingSpecifiedPeriod"))

	for _, ac := range children(settlement, "SpecifiedTradeAllowanceCharge") {
		entry := p.parseAllowanceCharge(ac)
		if entry.ChargeIndicator {
			it.Charges = append(it.Charges, entry)
		} else {
			it.Allowances = append(it.Allowances, entry)
		}
	}

	it.NetAmount = p.amount(find(settlement,
		"SpecifiedTradeSettlementLineMonetarySummation", "LineTotalAmount"), "netAmount")

	for _, doc := range children(settlement, "AdditionalReferencedDocument") {
		it.ObjectReferences = append(it.ObjectReferences, model.TypedReference{
			ID:       textOf(doc, "IssuerAssignedID"),
			TypeCode: textOf(doc, "ReferenceTypeCode"),
		})
	}

	return it
}

func (p *docParser) parseAgreement(agreement *etree.Element, inv *model.Invoice) {
	inv.BuyerReference = textOf(agreement, "BuyerReference")
	inv.Seller = p.parseParty(child(agreement, "SellerTradeParty"))
	inv.Buyer = p.parseParty(child(agreement, "BuyerTradeParty"))
	inv.SalesOrderReference = textOf(agreement, "SellerOrderReferencedDocument", "IssuerAssignedID")
	inv.PurchaseOrderReference = textOf(agreement, "BuyerOrderReferencedDocument", "IssuerAssignedID")
	inv.ContractReference = textOf(agreement, "ContractReferencedDocument", "IssuerAssignedID")

	for _, doc := range children(agreement, "AdditionalReferencedDocument") {
		ref := model.TypedReference{
			ID:       textOf(doc, "IssuerAssignedID"),
			TypeCode: textOf(doc, "ReferenceTypeCode"),
		}
		switch textOf(doc, "TypeCode") {
		case "50":
			inv.TenderReferences = append(inv.TenderReferences, ref)
		default:
			inv.ObjectReferences = append(inv.ObjectReferences, ref)
		}
	}

	inv.ProjectReference = textOf(agreement, "SpecifiedProcuringProject", "ID")
}

func (p *docParser) parseDelivery(delivery *etree.Element, inv *model.Invoice) {
	if addr := find(delivery, "ShipToTradeParty", "PostalTradeAddress"); addr != nil {
		a := p.parseAddress(addr)
		inv.Delivery = &a
	}
	inv.DeliveryDate = p.date(find(delivery,
		"ActualDeliverySupplyChainEvent", "OccurrenceDateTime"), "deliveryDate")

	inv.DespatchAdvice = p.parseReference(child(delivery, "DespatchAdviceReferencedDocument"), "despatchAdvice")
	inv.ReceivingAdvice = p.parseReference(child(delivery, "ReceivingAdviceReferencedDocument"), "receivingAdvice")
}

func (p *docParser) parseSettlement(settlement *etree.Element, inv *model.Invoice) {
	inv.Payment.Reference = textOf(settlement, "PaymentReference")
	inv.CurrencyCode = textOf(settlement, "InvoiceCurrencyCode")
	p.checkCode(codes.Currencies, "currencyCode", inv.CurrencyCode)

	for _, means := range children(settlement, "SpecifiedTradeSettlementPaymentMeans") {
		pm := model.PaymentMethod{
			TypeCode:    textOf(means, "TypeCode"),
			IBAN:        textOf(means, "PayeePartyCreditorFinancialAccount", "IBANID"),
			AccountName: textOf(means, "PayeePartyCreditorFinancialAccount", "AccountName"),
			BIC:         textOf(means, "PayeeSpecifiedCreditorFinancialInstitution", "BICID"),
		}
		p.checkCode(codes.PaymentMeans, "payment.typeCode", pm.TypeCode)
		inv.Payment.Methods = append(inv.Payment.Methods, pm)
	}

	for _, tax := range children(settlement, "ApplicableTradeTax") {
		tb := model.TaxBreakdown{
			Code:                textOf(tax, "CategoryCode"),
			Rate:                p.amount(find(tax, "RateApplicablePercent"), "taxes.rate"),
			NetAmount:           p.amount(find(tax, "BasisAmount"), "taxes.netAmount"),
			VATAmount:           p.amount(find(tax, "CalculatedAmount"), "taxes.vatAmount"),
			ExemptionReason:     textOf(tax, "ExemptionReason"),
			ExemptionReasonCode: textOf(tax, "ExemptionReasonCode"),
		}
		p.checkCode(codes.VATCategories, "taxes.code", tb.Code)
		inv.Taxes[totals.BreakdownKey(tb.Code, tb.Rate)] = tb
	}

	inv.BillingPeriod = p.period(child(settlement, "BillingSpecifiedPeriod"))

	for _, ac := range children(settlement, "SpecifiedTradeAllowanceCharge") {
		entry := p.parseAllowanceCharge(ac)
		if entry.ChargeIndicator {
			inv.Charges = append(inv.Charges, entry)
		} else {
			inv.Allowances = append(inv.Allowances, entry)
		}
	}

	if terms := child(settlement, "SpecifiedTradePaymentTerms"); terms != nil {
		inv.Payment.Terms = textOf(terms, "Description")
		inv.DueDate = p.date(find(terms, "DueDateDateTime"), "dueDate")
	}

	p.parseTotals(child(settlement, "SpecifiedTradeSettlementHeaderMonetarySummation"), inv)

	for _, doc := range children(settlement, "InvoiceReferencedDocument") {
		inv.InvoiceReferences = append(inv.InvoiceReferences, p.parseFormattedReference(doc))
	}
	for _, acc := range children(settlement, "ReceivableSpecifiedTradeAccountingAccount") {
		if id := textOf(acc, "ID"); id != "" {
			inv.BuyerAccountingAccounts = append(inv.BuyerAccountingAccounts, id)
		}
	}
}

func (p *docParser) parseTotals(sum *etree.Element, inv *model.Invoice) {
	t := &inv.Totals
	t.ItemsNet = p.amount(find(sum, "LineTotalAmount"), "totals.itemsNet")
	t.ChargesNet = p.amount(find(sum, "ChargeTotalAmount"), "totals.chargesNet")
	t.AllowancesNet = p.amount(find(sum, "AllowanceTotalAmount"), "totals.allowancesNet")
	t.Net = p.amount(find(sum, "TaxBasisTotalAmount"), "totals.net")
	t.VAT = p.amount(find(sum, "TaxTotalAmount"), "totals.vat")
	t.Rounding = p.amount(find(sum, "RoundingAmount"), "totals.rounding")
	t.Gross = p.amount(find(sum, "GrandTotalAmount"), "totals.gross")
	t.Paid = p.amount(find(sum, "TotalPrepaidAmount"), "totals.paid")
	t.Due = p.amount(find(sum, "DuePayableAmount"), "totals.due")
}

func (p *docParser) parseParty(el *etree.Element) model.TradeParty {
	var party model.TradeParty
	if el == nil {
		return party
	}

	party.ID = textOf(el, "ID")
	party.Name = textOf(el, "Name")
	party.LegalInfo = textOf(el, "Description")

	if org := child(el, "SpecifiedLegalOrganization"); org != nil {
		party.TradeID = textOf(org, "ID")
		party.TradeName = textOf(org, "TradingBusinessName")
	}

	if contact := child(el, "DefinedTradeContact"); contact != nil {
		party.Contact = model.Contact{
			Name:  textOf(contact, "PersonName"),
			Phone: textOf(contact, "TelephoneUniversalCommunication", "CompleteNumber"),
			Fax:   textOf(contact, "FaxUniversalCommunication", "CompleteNumber"),
			Email: textOf(contact, "EmailURIUniversalCommunication", "URIID"),
		}
	}

	if addr := child(el, "PostalTradeAddress"); addr != nil {
		party.Address = p.parseAddress(addr)
		p.checkCode(codes.Countries, "address.countryCode", party.Address.CountryCode)
	}

	if uri := find(el, "URIUniversalCommunication", "URIID"); uri != nil {
		party.ElectronicAddress = strings.TrimSpace(uri.Text())
		party.ElectronicAddressScheme = attrOf(uri, "schemeID")
	}

	// Tax registrations are demultiplexed by scheme; unknown schemes are
	// ignored.
	for _, reg := range children(el, "SpecifiedTaxRegistration") {
		id := child(reg, "ID")
		if id == nil {
			continue
		}
		switch attrOf(id, "schemeID") {
		case "FC":
			party.TaxID = strings.TrimSpace(id.Text())
		case "VA":
			party.VATID = strings.TrimSpace(id.Text())
		}
	}

	return party
}

func (p *docParser) parseAddress(addr *etree.Element) model.Address {
	return model.Address{
		Postcode:    textOf(addr, "PostcodeCode"),
		Line1:       textOf(addr, "LineOne"),
		Line2:       textOf(addr, "LineTwo"),
		Line3:       textOf(addr, "LineThree"),
		City:        textOf(addr, "CityName"),
		CountryCode: textOf(addr, "CountryID"),
		Region:      textOf(addr, "CountrySubDivisionName"),
	}
}

func (p *docParser) parseAllowanceCharge(el *etree.Element) model.AllowanceCharge {
	ac := model.AllowanceCharge{
		ChargeIndicator: textOf(el, "ChargeIndicator", "Indicator") == "true",
		Percent:         p.amount(find(el, "CalculationPercent"), "allowanceCharge.percent"),
		BasisAmount:     p.amount(find(el, "BasisAmount"), "allowanceCharge.basisAmount"),
		NetAmount:       p.amount(find(el, "ActualAmount"), "allowanceCharge.netAmount"),
		ReasonCode:      textOf(el, "ReasonCode"),
		Reason:          textOf(el, "Reason"),
	}
	if tax := child(el, "CategoryTradeTax"); tax != nil {
		ac.VATCode = textOf(tax, "CategoryCode")
		ac.VATRate = p.amount(find(tax, "RateApplicablePercent"), "allowanceCharge.vatRate")
	}
	return ac
}

func (p *docParser) parseReference(doc *etree.Element, field string) model.Reference {
	if doc == nil {
		return model.Reference{}
	}
	return model.Reference{
		ID:   textOf(doc, "IssuerAssignedID"),
		Date: p.date(find(doc, "FormattedIssueDateTime"), field+".date"),
	}
}

func (p *docParser) parseFormattedReference(doc *etree.Element) model.Reference {
	return model.Reference{
		ID:   textOf(doc, "IssuerAssignedID"),
		Date: p.date(find(doc, "FormattedIssueDateTime"), "invoiceReferences.date"),
	}
}

func (p *docParser) period(el *etree.Element) model.Period {
	if el == nil {
		return model.Period{}
	}
	return model.Period{
		Start: p.date(find(el, "StartDateTime"), "billingPeriod.start"),
		End:   p.date(find(el, "EndDateTime"), "billingPeriod.end"),
	}
}

// amount converts an element's text to a decimal. Non-parseable values
// become zero and raise a MalformedNumber warning.
func (p *docParser) amount(el *etree.Element, field string) decimal.Decimal {
	if el == nil {
		return decimal.Zero
	}
	s := strings.TrimSpace(el.Text())
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.warn(model.WarnMalformedNumber, field, s)
		return decimal.Zero
	}
	return d
}

// date reads the DateTimeString child of a date wrapper. Both the
// YYYY-MM-DD encoding this codec emits and the compact YYYYMMDD variant
// used by other generators are accepted.
func (p *docParser) date(wrapper *etree.Element, field string) model.Date {
	if wrapper == nil {
		return model.Date{}
	}
	ts := child(wrapper, "DateTimeString")
	if ts == nil {
		return model.Date{}
	}
	s := strings.TrimSpace(ts.Text())
	if s == "" {
		return model.Date{}
	}
	if d, err := model.ParseDate(s); err == nil {
		return d
	}
	if t, err := time.Parse("20060102", s); err == nil {
		return model.NewDate(t.Year(), t.Month(), t.Day())
	}
	p.warn(model.WarnMalformedDate, field, s)
	return model.Date{}
}

func (p *docParser) checkCode(table codes.Table, field, code string) {
	if code == "" || table.IsKnown(code) {
		return
	}
	p.warn(model.WarnUnknownCode, field, code)
}
