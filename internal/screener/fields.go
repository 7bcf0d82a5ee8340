package screener

import (
	"slices"

	"github.com/samber/lo"
)

// FieldsByCategory lists the equity screener fields Yahoo accepts, grouped the
// way Yahoo's screener UI groups them.
var FieldsByCategory = map[string][]string{
	"eq_fields": {"region", "sector", "peer_group", "industry", "exchange"},
	"price": {
		"lastclosemarketcap.lasttwelvemonths", "percentchange",
		"lastclose52weekhigh.lasttwelvemonths", "fiftytwowkpercentchange",
		"intradayprice", "lastclose52weeklow.lasttwelvemonths",
		"intradaymarketcap", "intradaypricechange",
	},
	"trading": {"beta", "avgdailyvol3m", "pctheldinsider", "pctheldinst", "dayvolume", "eodvolume"},
	"short_interest": {
		"short_percentage_of_shares_outstanding.value", "short_interest.value",
		"short_percentage_of_float.value", "days_to_cover_short.value",
		"short_interest_percentage_change.value",
	},
	"valuation": {
		"bookvalueshare.lasttwelvemonths", "lastclosemarketcaptotalrevenue.lasttwelvemonths",
		"lastclosetevtotalrevenue.lasttwelvemonths", "pricebookratio.quarterly",
		"peratio.lasttwelvemonths", "lastclosepricetangiblebookvalue.lasttwelvemonths",
		"lastclosepriceearnings.lasttwelvemonths", "pegratio_5y",
	},
	"profitability": {
		"consecutive_years_of_dividend_growth_count", "returnonassets.lasttwelvemonths",
		"returnonequity.lasttwelvemonths", "forward_dividend_per_share",
		"forward_dividend_yield", "returnontotalcapital.lasttwelvemonths",
	},
	"leverage": {
		"lastclosetevebit.lasttwelvemonths", "netdebtebitda.lasttwelvemonths",
		"totaldebtequity.lasttwelvemonths", "ltdebtequity.lasttwelvemonths",
		"ebitinterestexpense.lasttwelvemonths", "ebitdainterestexpense.lasttwelvemonths",
		"lastclosetevebitda.lasttwelvemonths", "totaldebtebitda.lasttwelvemonths",
	},
	"liquidity": {
		"quickratio.lasttwelvemonths",
		"altmanzscoreusingtheaveragestockinformationforaperiod.lasttwelvemonths",
		"currentratio.lasttwelvemonths", "operatingcashflowtocurrentliabilities.lasttwelvemonths",
	},
	"income_statement": {
		"totalrevenues.lasttwelvemonths", "netincomemargin.lasttwelvemonths",
		"grossprofit.lasttwelvemonths", "ebitda1yrgrowth.lasttwelvemonths",
		"dilutedepscontinuingoperations.lasttwelvemonths", "quarterlyrevenuegrowth.quarterly",
		"epsgrowth.lasttwelvemonths", "netincomeis.lasttwelvemonths",
		"ebitda.lasttwelvemonths", "dilutedeps1yrgrowth.lasttwelvemonths",
		"totalrevenues1yrgrowth.lasttwelvemonths", "operatingincome.lasttwelvemonths",
		"netincome1yrgrowth.lasttwelvemonths", "grossprofitmargin.lasttwelvemonths",
		"ebitdamargin.lasttwelvemonths", "ebit.lasttwelvemonths",
		"basicepscontinuingoperations.lasttwelvemonths", "netepsbasic.lasttwelvemonths",
		"netepsdiluted.lasttwelvemonths",
	},
	"balance_sheet": {
		"totalassets.lasttwelvemonths", "totalcommonsharesoutstanding.lasttwelvemonths",
		"totaldebt.lasttwelvemonths", "totalequity.lasttwelvemonths",
		"totalcurrentassets.lasttwelvemonths", "totalcashandshortterminvestments.lasttwelvemonths",
		"totalcommonequity.lasttwelvemonths", "totalcurrentliabilities.lasttwelvemonths",
		"totalsharesoutstanding",
	},
	"cash_flow": {
		"forward_dividend_yield", "leveredfreecashflow.lasttwelvemonths",
		"capitalexpenditure.lasttwelvemonths", "cashfromoperations.lasttwelvemonths",
		"leveredfreecashflow1yrgrowth.lasttwelvemonths", "unleveredfreecashflow.lasttwelvemonths",
		"cashfromoperations1yrgrowth.lasttwelvemonths",
	},
	"esg": {"esg_score", "environmental_score", "governance_score", "social_score", "highest_controversy"},
}

// Regions lists the values of the region field.
var Regions = []string{
	"ar", "at", "au", "be", "br", "ca", "ch", "cl", "cn", "cz", "de", "dk", "ee",
	"eg", "es", "fi", "fr", "gb", "gr", "hk", "hu", "id", "ie", "il", "in", "is",
	"it", "jp", "kr", "kw", "lk", "lt", "lv", "mx", "my", "nl", "no", "nz", "pe",
	"ph", "pk", "pl", "pt", "qa", "ro", "ru", "sa", "se", "sg", "sr", "th", "tr",
	"tw", "us", "ve", "vn", "za",
}

// ExchangesByRegion lists the exchange codes traded in each region.
var ExchangesByRegion = map[string][]string{
	"ar": {"BUE"},
	"at": {"VIE"},
	"au": {"ASX"},
	"be": {"BRU"},
	"br": {"SAO"},
	"ca": {"CNQ", "NEO", "TOR", "VAN"},
	"ch": {"EBS"},
	"cl": {"SGO"},
	"cn": {"SHH", "SHZ"},
	"cz": {"PRA"},
	"de": {"BER", "DUS", "FRA", "HAM", "GER", "MUN", "STU"},
	"dk": {"CPH"},
	"ee": {"TAL"},
	"eg": {"CAI"},
	"es": {"MCE"},
	"fi": {"HEL"},
	"fr": {"PAR"},
	"gb": {"AQS", "IOB", "LSE"},
	"gr": {"ATH"},
	"hk": {"HKG"},
	"hu": {"BUD"},
	"id": {"JKT"},
	"ie": {"ISE"},
	"il": {"TLV"},
	"in": {"BSE", "NSI"},
	"is": {"ICE"},
	"it": {"MIL"},
	"jp": {"FKA", "JPX", "SAP"},
	"kr": {"KOE", "KSC"},
	"kw": {"KUW"},
	"lk": {"CSE"},
	"lt": {"LIT"},
	"lv": {"RIS"},
	"mx": {"MEX"},
	"my": {"KLS"},
	"nl": {"AMS"},
	"no": {"OSL"},
	"nz": {"NZE"},
	"pe": {"LIM"},
	"ph": {"PHP", "PHS"},
	"pk": {"KAR"},
	"pl": {"WSE"},
	"pt": {"LIS"},
	"qa": {"DOH"},
	"ro": {"BVB"},
	"ru": {"MCX"},
	"sa": {"SAU"},
	"se": {"STO"},
	"sg": {"SES"},
	"sr": {"SET"},
	"th": {"SET"},
	"tr": {"IST"},
	"tw": {"TAI", "TWO"},
	"us": {"ASE", "BTS", "CXI", "NCM", "NGM", "NMS", "NYQ", "OEM", "OQB", "OQX", "PCX", "PNK", "YHD"},
	"ve": {"CCS"},
	"vn": {"VSE"},
	"za": {"JNB"},
}

// Sectors lists the values of the sector field.
var Sectors = []string{
	"Basic Materials", "Communication Services", "Consumer Cyclical",
	"Consumer Defensive", "Energy", "Financial Services", "Healthcare",
	"Industrials", "Real Estate", "Technology", "Utilities",
}

// IndustriesBySector lists the values of the industry field per sector.
var IndustriesBySector = map[string][]string{
	"Basic Materials": {
		"Agricultural Inputs", "Building Materials", "Chemicals", "Specialty Chemicals",
		"Lumber & Wood Production", "Paper & Paper Products", "Aluminum", "Copper",
		"Other Industrial Metals & Mining", "Gold", "Silver", "Other Precious Metals & Mining",
		"Coking Coal", "Steel",
	},
	"Communication Services": {
		"Advertising Agencies", "Broadcasting", "Electronic Gaming & Multimedia",
		"Entertainment", "Internet Content & Information", "Publishing", "Telecom Services",
	},
	"Consumer Cyclical": {
		"Apparel Manufacturing", "Apparel Retail", "Auto & Truck Dealerships",
		"Auto Manufacturers", "Auto Parts", "Department Stores", "Footwear & Accessories",
		"Furnishings, Fixtures & Appliances", "Gambling", "Home Improvement Retail",
		"Internet Retail", "Leisure", "Lodging", "Luxury Goods", "Packaging & Containers",
		"Personal Services", "Recreational Vehicles", "Residential Construction",
		"Resorts & Casinos", "Restaurants", "Specialty Retail", "Textile Manufacturing",
		"Travel Services",
	},
	"Consumer Defensive": {
		"Beverages—Brewers", "Beverages—Non-Alcoholic", "Beverages—Wineries & Distilleries",
		"Confectioners", "Discount Stores", "Education & Training Services", "Farm Products",
		"Food Distribution", "Grocery Stores", "Household & Personal Products",
		"Packaged Foods", "Tobacco",
	},
	"Energy": {
		"Oil & Gas Drilling", "Oil & Gas E&P", "Oil & Gas Equipment & Services",
		"Oil & Gas Integrated", "Oil & Gas Midstream", "Oil & Gas Refining & Marketing",
		"Thermal Coal", "Uranium",
	},
	"Financial Services": {
		"Asset Management", "Banks—Diversified", "Banks—Regional", "Capital Markets",
		"Credit Services", "Financial Conglomerates", "Financial Data & Stock Exchanges",
		"Insurance Brokers", "Insurance—Diversified", "Insurance—Life",
		"Insurance—Property & Casualty", "Insurance—Reinsurance", "Insurance—Specialty",
		"Mortgage Finance", "Shell Companies",
	},
	"Healthcare": {
		"Biotechnology", "Diagnostics & Research", "Drug Manufacturers—General",
		"Drug Manufacturers—Specialty & Generic", "Health Information Services",
		"Healthcare Plans", "Medical Care Facilities", "Medical Devices",
		"Medical Distribution", "Medical Instruments & Supplies", "Pharmaceutical Retailers",
	},
	"Industrials": {
		"Aerospace & Defense", "Airlines", "Airports & Air Services",
		"Building Products & Equipment", "Business Equipment & Supplies", "Conglomerates",
		"Consulting Services", "Electrical Equipment & Parts", "Engineering & Construction",
		"Farm & Heavy Construction Machinery", "Industrial Distribution",
		"Infrastructure Operations", "Integrated Freight & Logistics", "Marine Shipping",
		"Metal Fabrication", "Pollution & Treatment Controls", "Railroads",
		"Rental & Leasing Services", "Security & Protection Services",
		"Specialty Business Services", "Specialty Industrial Machinery",
		"Staffing & Employment Services", "Tools & Accessories", "Trucking",
		"Waste Management",
	},
	"Real Estate": {
		"Real Estate—Development", "Real Estate Services", "Real Estate—Diversified",
		"REIT—Healthcare Facilities", "REIT—Hotel & Motel", "REIT—Industrial",
		"REIT—Mortgage", "REIT—Office", "REIT—Residential", "REIT—Retail",
		"REIT—Specialty", "REIT—Diversified",
	},
	"Technology": {
		"Communication Equipment", "Computer Hardware", "Consumer Electronics",
		"Electronic Components", "Electronics & Computer Distribution",
		"Information Technology Services", "Scientific & Technical Instruments",
		"Semiconductor Equipment & Materials", "Semiconductors", "Software—Application",
		"Software—Infrastructure", "Solar",
	},
	"Utilities": {
		"Utilities—Diversified", "Utilities—Independent Power Producers",
		"Utilities—Regulated Electric", "Utilities—Regulated Gas",
		"Utilities—Regulated Water", "Utilities—Renewable",
	},
}

// PeerGroups lists the values of the peer_group field.
var PeerGroups = []string{
	"Aerospace & Defense", "Auto Components", "Automobiles", "Banks",
	"Building Products", "Chemicals", "Commercial Services",
	"Construction & Engineering", "Construction Materials", "Consumer Durables",
	"Consumer Services", "Containers & Packaging", "Diversified Financials",
	"Diversified Metals", "Energy Services", "Food Products", "Food Retailers",
	"Healthcare", "Homebuilders", "Household Products", "Industrial Conglomerates",
	"Insurance", "Machinery", "Media", "Oil & Gas Producers", "Paper & Forestry",
	"Pharmaceuticals", "Precious Metals", "Real Estate", "Refiners & Pipelines",
	"Retailing", "Semiconductors", "Software & Services", "Steel",
	"Technology Hardware", "Telecommunication Services", "Textiles & Apparel",
	"Traders & Distributors", "Transportation", "Transportation Infrastructure",
	"Utilities",
	"US Fund Large Blend", "US Fund Large Growth", "US Fund Large Value",
	"US Fund Technology", "US Fund Health", "US Fund Financial",
	"US Fund Natural Resources", "US Fund Equity Energy", "US Fund Foreign Large Blend",
	"US Fund Diversified Emerging Mkts", "US Fund China Region",
	"US Fund Equity Precious Metals", "US Fund Consumer Cyclical",
	"US Fund Trading--Leveraged Equity", "US CE Convertibles", "US CE Preferred Stock",
	"US CE Options-based",
}

// PredefinedQueries names the screens Yahoo keeps on its side.
var PredefinedQueries = []string{
	"aggressive_small_caps", "conservative_foreign_funds", "day_gainers",
	"day_losers", "growth_technology_stocks", "high_yield_bond", "most_actives",
	"most_shorted_stocks", "portfolio_anchors", "small_cap_gainers",
	"solid_large_growth_funds", "solid_midcap_growth_funds", "top_mutual_funds",
	"undervalued_growth_stocks", "undervalued_large_caps",
}

// SortOrders lists the accepted --sort-order values.
var SortOrders = []string{"asc", "desc"}

// enumValues maps each eq_fields entry to its accepted values.
var enumValues = map[string][]string{
	"region":     Regions,
	"exchange":   lo.Uniq(lo.Flatten(lo.Values(ExchangesByRegion))),
	"sector":     Sectors,
	"industry":   lo.Uniq(lo.Flatten(lo.Values(IndustriesBySector))),
	"peer_group": PeerGroups,
}

var allFields = lo.Uniq(lo.Flatten(lo.Values(FieldsByCategory)))

// Fields returns every valid screener field, sorted.
func Fields() []string {
	out := slices.Clone(allFields)
	slices.Sort(out)
	return out
}

// IsField reports whether name is a valid screener field.
func IsField(name string) bool {
	return lo.Contains(allFields, name)
}

// IsEnumField reports whether field takes values from a fixed set rather than
// numbers.
func IsEnumField(field string) bool {
	_, ok := enumValues[field]
	return ok
}

// Values returns the sorted accepted values of an enumerated field, or nil for
// numeric fields.
func Values(field string) []string {
	vals, ok := enumValues[field]
	if !ok {
		return nil
	}
	out := slices.Clone(vals)
	slices.Sort(out)
	return out
}

// IsPredefined reports whether name is a predefined screen.
func IsPredefined(name string) bool {
	return slices.Contains(PredefinedQueries, name)
}
