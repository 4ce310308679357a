// Package codes holds the frozen code tables of the EN 16931 profile:
// invoice types, currencies, countries, payment means, quantity units, VAT
// categories and the reason-code subsets. Tables are immutable constants;
// unknown codes never fail an operation, they only surface as warnings.
package codes

// Table is a frozen code-to-display-name mapping.
type Table map[string]string

// Name returns the display name for code, or the code itself when unknown.
// The mapping is total so that unknown codes survive a round trip verbatim.
func (t Table) Name(code string) string {
	if name, ok := t[code]; ok {
		return name
	}
	return code
}

// IsKnown reports whether code belongs to the table.
func (t Table) IsKnown(code string) bool {
	_, ok := t[code]
	return ok
}

// InvoiceTypes is the UNTDID 1001 subset accepted for the document type code.
var InvoiceTypes = Table{
	"80": "Debit note related to goods or services",
	"81": "Credit note related to goods or services",
	"83": "Credit note related to financial adjustments",
	"261": "Self billed credit note",
	"262": "Consolidated credit note - goods and services",
	"325": "Proforma invoice",
	"326": "Partial invoice",
	"380": "Commercial invoice",
	"381": "Credit note",
	"383": "Debit note",
	"384": "Corrected invoice",
	"386": "Prepayment invoice",
	"389": "Self-billed invoice",
	"875": "Partial construction invoice",
	"876": "Partial final construction invoice",
	"877": "Final construction invoice",
}

// Currencies is the ISO 4217 subset.
var Currencies = Table{
	"EUR": "Euro",
	"USD": "US Dollar",
	"GBP": "Pound Sterling",
	"CHF": "Swiss Franc",
	"SEK": "Swedish Krona",
	"NOK": "Norwegian Krone",
	"DKK": "Danish Krone",
	"PLN": "Zloty",
	"CZK": "Czech Koruna",
	"HUF": "Forint",
	"RON": "Romanian Leu",
	"BGN": "Bulgarian Lev",
	"HRK": "Kuna",
	"ISK": "Iceland Krona",
	"JPY": "Yen",
	"CNY": "Yuan Renminbi",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"NZD": "New Zealand Dollar",
	"TRY": "Turkish Lira",
}

// Countries is the ISO 3166-1 alpha-2 subset.
var Countries = Table{
	"AT": "Austria",
	"BE": "Belgium",
	"BG": "Bulgaria",
	"CH": "Switzerland",
	"CY": "Cyprus",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"EE": "Estonia",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HR": "Croatia",
	"HU": "Hungary",
	"IE": "Ireland",
	"IS": "Iceland",
	"IT": "Italy",
	"LI": "Liechtenstein",
	"LT": "Lithuania",
	"LU": "Luxembourg",
	"LV": "Latvia",
	"MT": "Malta",
	"NL": "Netherlands",
	"NO": "Norway",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"SE": "Sweden",
	"SI": "Slovenia",
	"SK": "Slovakia",
	"US": "United States",
	"CN": "China",
	"JP": "Japan",
}

// PaymentMeans is the UNTDID 4461 subset accepted for payment means codes.
var PaymentMeans = Table{
	"1": "Instrument not defined",
	"10": "In cash",
	"20": "Cheque",
	"30": "Credit transfer",
	"42": "Payment to bank account",
	"48": "Bank card",
	"49": "Direct debit",
	"57": "Standing agreement",
	"58": "SEPA credit transfer",
	"59": "SEPA direct debit",
	"68": "Online payment service",
	"97": "Clearing between partners",
}

// Units is the UN/ECE Recommendation 20/21 subset accepted for quantity units.
var Units = Table{
	"C62": "one (unit)",
	"H87": "piece",
	"HUR": "hour",
	"DAY": "day",
	"WEE": "week",
	"MON": "month",
	"ANN": "year",
	"KGM": "kilogram",
	"GRM": "gram",
	"TNE": "tonne",
	"MTR": "metre",
	"KMT": "kilometre",
	"MMT": "millimetre",
	"MTK": "square metre",
	"MTQ": "cubic metre",
	"LTR": "litre",
	"MLT": "millilitre",
	"KWH": "kilowatt hour",
	"P1": "percent",
	"SET": "set",
	"XPP": "piece (package)",
}

// VATCategories is the UNTDID 5305 subset accepted for VAT category codes.
var VATCategories = Table{
	"S": "Standard rate",
	"Z": "Zero rated goods",
	"E": "Exempt from tax",
	"AE": "VAT Reverse Charge",
	"K": "VAT exempt for EEA intra-community supply",
	"G": "Free export item, tax not charged",
	"O": "Services outside scope of tax",
	"L": "Canary Islands general indirect tax",
	"M": "Tax for production, services and importation in Ceuta and Melilla",
}

// ExemptionReasons maps exemption reason codes for zero-rated breakdowns.
var ExemptionReasons = Table{
	"VATEX-EU-AE": "Reverse charge",
	"VATEX-EU-D": "Intra-Community acquisition from second hand means of transport",
	"VATEX-EU-F": "Intra-Community acquisition of second hand goods",
	"VATEX-EU-G": "Export outside the EU",
	"VATEX-EU-I": "Intra-Community acquisition of works of art",
	"VATEX-EU-IC": "Intra-Community supply",
	"VATEX-EU-O": "Not subject to VAT",
	"VATEX-EU-J": "Intra-Community acquisition of collectors items and antiques",
	"VATEX-EU-79-C": "Exempt based on article 79, point c of Council Directive 2006/112/EC",
	"VATEX-EU-132": "Exempt based on article 132 of Council Directive 2006/112/EC",
	"VATEX-EU-143": "Exempt based on article 143 of Council Directive 2006/112/EC",
	"VATEX-EU-148": "Exempt based on article 148 of Council Directive 2006/112/EC",
	"VATEX-EU-151": "Exempt based on article 151 of Council Directive 2006/112/EC",
	"VATEX-EU-309": "Exempt based on article 309 of Council Directive 2006/112/EC",
	"BR-AE-10": "Reverse charge (VAT accounted for by the buyer)",
	"BR-E-10": "Exempt from VAT",
	"BR-G-10": "Export outside the EU, tax not charged",
	"BR-IC-10": "Intra-Community supply, tax not charged",
	"BR-O-10": "Outside the scope of VAT",
	"BR-Z-10": "Zero rated",
}

// AllowanceReasons is the UNTDID 5189 subset accepted for allowance reason codes.
var AllowanceReasons = Table{
	"41": "Bonus for works ahead of schedule",
	"42": "Other bonus",
	"60": "Manufacturer's consumer discount",
	"62": "Due to military status",
	"63": "Due to work accident",
	"64": "Special agreement",
	"65": "Production error discount",
	"66": "New outlet discount",
	"67": "Sample discount",
	"68": "End-of-range discount",
	"70": "Incoterm discount",
	"71": "Point of sales threshold allowance",
	"88": "Material surcharge/deduction",
	"95": "Discount",
	"100": "Special rebate",
	"102": "Fixed long term",
	"103": "Temporary",
	"104": "Standard",
	"105": "Yearly turnover",
}

// ChargeReasons is the UNTDID 7161 subset accepted for charge reason codes.
var ChargeReasons = Table{
	"AA": "Advertising",
	"AAA": "Telecommunication",
	"AAC": "Technical modification",
	"AAD": "Job-order production",
	"AAF": "Outlays",
	"AAH": "Power supply",
	"ABK": "Miscellaneous",
	"ABL": "Additional packaging",
	"ADR": "Other services",
	"ADT": "Pick-up",
	"FC": "Freight service",
	"FI": "Financing",
	"IN": "Insurance",
	"LA": "Labelling",
	"PC": "Packing",
}
