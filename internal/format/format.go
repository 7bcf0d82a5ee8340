// Package format renders scalar values as human readable table cells.
//
// Every formatter maps an absent value (nil, NaN or something that cannot be
// read as the expected type) to NotAvailable.
package format

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
)

// NotAvailable is rendered for absent values.
const NotAvailable = "N/A"

// Func formats one value.
type Func func(v any) string

// number reads v as a finite float. Booleans are not numbers here even though
// cast would convert them.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if t == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// grouped renders f with decimals fraction digits and comma separated
// thousands. Rounding is strconv's, and the whole part has no size limit.
func grouped(f float64, decimals int) string {
	digits := strconv.FormatFloat(math.Abs(f), 'f', decimals, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	n, _ := new(big.Int).SetString(whole, 10)

	s := humanize.BigComma(n)
	if frac != "" {
		s += "." + frac
	}
	if f < 0 && strings.Trim(digits, "0.") != "" {
		s = "-" + s
	}
	return s
}

// Decimal renders a grouped number with two decimals, e.g. 1,234.50.
func Decimal(v any) string {
	f, ok := number(v)
	if !ok {
		return NotAvailable
	}
	return grouped(f, 2)
}

// Price renders a currency amount, e.g. $1,234.50.
func Price(v any) string {
	if _, ok := number(v); !ok {
		return NotAvailable
	}
	return "$" + Decimal(v)
}

// Volume renders a grouped integer, e.g. 1,200,000.
func Volume(v any) string {
	f, ok := number(v)
	if !ok {
		return NotAvailable
	}
	return grouped(f, 0)
}

// LargeNumber scales v to a K, M, B or T suffix with two decimals. The sign is
// kept in front of the scaled value.
func LargeNumber(v any) string {
	f, ok := number(v)
	if !ok {
		return NotAvailable
	}
	if f < 0 {
		return "-" + LargeNumber(-f)
	}
	switch {
	case f >= 1e12:
		return fmt.Sprintf("%.2fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.2fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.2fK", f/1e3)
	default:
		return grouped(f, 2)
	}
}

// MarketCap renders a large currency amount, e.g. $3.10T.
func MarketCap(v any) string {
	if _, ok := number(v); !ok {
		return NotAvailable
	}
	return "$" + LargeNumber(v)
}

// Percent renders a fraction as a percentage: 0.1234 becomes 12.34%.
func Percent(v any) string {
	f, ok := number(v)
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", f*100)
}

// PercentPoints renders a value already on the 0-100 scale: 5.2 becomes 5.2%.
func PercentPoints(v any) string {
	f, ok := number(v)
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

// Date renders the calendar date of v as YYYY-MM-DD, ignoring time of day and
// zone. Strings in any layout cast understands are accepted.
func Date(v any) string {
	switch t := v.(type) {
	case nil, bool:
		return NotAvailable
	case time.Time:
		if t.IsZero() {
			return NotAvailable
		}
		return t.Format(time.DateOnly)
	case string:
		if t == "" {
			return NotAvailable
		}
	}
	t, err := cast.ToTimeE(v)
	if err != nil || t.IsZero() {
		return NotAvailable
	}
	return t.Format(time.DateOnly)
}

// String renders v as text.
func String(v any) string {
	if v == nil {
		return NotAvailable
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return NotAvailable
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return NotAvailable
	}
	return s
}

// Raw converts v to a cell without any formatting. Nil becomes an empty cell.
func Raw(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
