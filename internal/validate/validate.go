// Package validate checks and normalizes command arguments before any request
// is made. Every failure is a *UsageError.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

// rangeDays is the span used to derive a missing end of a date range.
const rangeDays = 7

// Choice returns value if it is one of allowed. Matching is exact.
func Choice(value string, allowed []string) (string, error) {
	if !lo.Contains(allowed, value) {
		return "", Usage(InvalidChoice,
			fmt.Sprintf("Invalid choice '%s'. Choose from: %s", value, strings.Join(allowed, ", ")))
	}
	return value, nil
}

// Date returns value unchanged if it is a ten-character YYYY-MM-DD calendar date.
func Date(value string) (string, error) {
	if _, err := parseDate(value); err != nil {
		return "", err
	}
	return value, nil
}

func parseDate(value string) (time.Time, error) {
	if len(value) != len(DateLayout) {
		return time.Time{}, dateError(value)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, dateError(value)
	}
	return t, nil
}

func dateError(value string) error {
	return Usage(InvalidDateFormat, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", value))
}

// DateRange fills in a missing start or end date and checks ordering. An empty
// string means the date was not supplied. With neither supplied the range is
// today through today+7; with one supplied the other is seven days away.
func DateRange(start, end string, now time.Time) (string, string, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var s, e time.Time
	var err error
	switch {
	case start == "" && end == "":
		s, e = today, today.AddDate(0, 0, rangeDays)
	case start == "":
		if e, err = parseDate(end); err != nil {
			return "", "", err
		}
		s = e.AddDate(0, 0, -rangeDays)
	case end == "":
		if s, err = parseDate(start); err != nil {
			return "", "", err
		}
		e = s.AddDate(0, 0, rangeDays)
	default:
		if s, err = parseDate(start); err != nil {
			return "", "", err
		}
		if e, err = parseDate(end); err != nil {
			return "", "", err
		}
	}

	if s.After(e) {
		return "", "", Usage(InvalidRange, "Start date must be before end date.")
	}
	return s.Format(DateLayout), e.Format(DateLayout), nil
}

// CountSpecified returns how many of values are non-empty.
func CountSpecified(values ...string) int {
	return lo.CountBy(values, func(v string) bool { return v != "" })
}

// AtMost fails when more than max of values are non-empty. Names are the flag
// names reported in the message, in the same order as values.
func AtMost(max int, names []string, values ...string) error {
	if CountSpecified(values...) > max {
		return Usage(TooManyOptions,
			fmt.Sprintf("At most %d of %s can be specified together.", max, flagList(names, ", ")))
	}
	return nil
}

// ExactlyOne fails unless exactly one of values is non-empty.
func ExactlyOne(names []string, values ...string) error {
	n := CountSpecified(values...)
	if n == 1 {
		return nil
	}

	kind := TooManyOptions
	if n == 0 {
		kind = MissingOption
	}
	list := flagList(names, ", ")
	switch {
	case len(names) == 2:
		list = flagList(names, " or ")
	case len(names) > 2:
		list = flagList(names[:len(names)-1], ", ") + ", or " + flagList(names[len(names)-1:], "")
	}
	return Usage(kind, fmt.Sprintf("Exactly one of %s must be specified.", list))
}

func flagList(names []string, sep string) string {
	return strings.Join(lo.Map(names, func(n string, _ int) string { return "--" + n }), sep)
}

// IsNumber reports whether value parses as a float64.
func IsNumber(value string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil
}

// Number parses value as a float64.
func Number(value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, Usage(InvalidNumber, fmt.Sprintf("Invalid number: '%s'", value))
	}
	return f, nil
}

// Ticker trims and upper-cases a ticker symbol.
func Ticker(value string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(value))
	if t == "" {
		return "", Usage(InvalidArgument, "Ticker symbol must not be empty.")
	}
	if strings.ContainsAny(t, " /?#&") {
		return "", Usage(InvalidArgument, fmt.Sprintf("Invalid ticker symbol: '%s'", value))
	}
	return t, nil
}

// AtLeast fails when the integer flag name is below min.
func AtLeast(name string, value, min int) error {
	if value < min {
		return Usage(InvalidArgument, fmt.Sprintf("--%s must be at least %d, got %d.", name, min, value))
	}
	return nil
}
