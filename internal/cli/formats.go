package cli

import "yfin/internal/format"

// Table cell formatting of the formatting-aware commands. Commands without a
// spec print raw values.

var historyFormat = &format.Spec{Fields: map[string]format.Func{
	"Date":   format.Date,
	"Open":   format.Price,
	"High":   format.Price,
	"Low":    format.Price,
	"Close":  format.Price,
	"Volume": format.Volume,
}}

var dividendsFormat = &format.Spec{Fields: map[string]format.Func{
	"Date":      format.Date,
	"Dividends": format.Price,
}}

var fastInfoFormat = &format.Spec{
	Fields: map[string]format.Func{
		"lastPrice":               format.Price,
		"lastVolume":              format.Volume,
		"open":                    format.Price,
		"previousClose":           format.Price,
		"dayHigh":                 format.Price,
		"dayLow":                  format.Price,
		"yearHigh":                format.Price,
		"yearLow":                 format.Price,
		"yearChange":              format.PercentOf("yearChange"),
		"marketCap":               format.MarketCap,
		"shares":                  format.Volume,
		"tenDayAverageVolume":     format.Volume,
		"threeMonthAverageVolume": format.Volume,
		"fiftyDayAverage":         format.Price,
		"twoHundredDayAverage":    format.Price,
	},
	Default: format.String,
}

var newsFormat = &format.Spec{
	Fields:  map[string]format.Func{"Date": format.Date},
	Default: format.String,
}

var earningsCalendarFormat = &format.Spec{
	Fields: map[string]format.Func{
		"Marketcap":        format.MarketCap,
		"Event Start Date": format.Date,
		"EPS Estimate":     format.Decimal,
		"Reported EPS":     format.Decimal,
		"Surprise(%)":      format.PercentOf("Surprise(%)"),
	},
	Default: format.String,
}

var ipoCalendarFormat = &format.Spec{
	Fields: map[string]format.Func{
		"Filing Date":  format.Date,
		"Date":         format.Date,
		"Amended Date": format.Date,
		"Price From":   format.Price,
		"Price To":     format.Price,
		"Price":        format.Price,
		"Shares":       format.Volume,
	},
	Default: format.String,
}

var economicEventsFormat = &format.Spec{
	Fields: map[string]format.Func{
		"Event Time": format.Date,
		"Actual":     format.Decimal,
		"Expected":   format.Decimal,
		"Last":       format.Decimal,
		"Revised":    format.Decimal,
	},
	Default: format.String,
}

// Statement columns are period end dates, so every field but the metric name
// is an amount.
var statementFormat = &format.Spec{
	Fields:  map[string]format.Func{"Metric": format.String},
	Default: format.LargeNumber,
}

var earningsDatesFormat = &format.Spec{
	Fields: map[string]format.Func{
		"Earnings Date": format.Date,
		"EPS Estimate":  format.Decimal,
		"Reported EPS":  format.Decimal,
		"Surprise(%)":   format.PercentOf("Surprise(%)"),
	},
	Default: format.String,
}

var holdersFormat = &format.Spec{
	Fields: map[string]format.Func{
		"Date Reported": format.Date,
		"pctHeld":       format.PercentOf("pctHeld"),
		"Shares":        format.Volume,
		"Value":         format.LargeNumber,
		"pctChange":     format.PercentOf("pctChange"),
	},
	Default: format.String,
}
