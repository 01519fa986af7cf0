package services

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fenilmodi00/cse-site/models"
)

// HomeCurrency is the currency every price on the site is quoted in.
var HomeCurrency = currency.MustParseISO("LKR")

var (
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
	thousand = decimal.New(1, 3)
)

// All display rounding is half away from zero on the shortest decimal
// representation of the input (decimal.NewFromFloat + StringFixed), so
// -3.455 shows as "-3.46" rather than following the binary value down.

// toDecimal maps NaN and infinities to zero; decimal.NewFromFloat panics on them.
func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// FormatPercentageChange rounds change to two fraction digits and classifies
// its sign. Zero counts as positive.
func FormatPercentageChange(change float64) models.FormattedChange {
	d := toDecimal(change)

	if d.Sign() >= 0 {
		return models.FormattedChange{
			Value:      d.StringFixed(2),
			IsPositive: true,
			Color:      models.ColorPositive,
		}
	}

	return models.FormattedChange{
		Value:      d.StringFixed(2),
		IsPositive: false,
		Color:      models.ColorNegative,
	}
}

// FormatCurrency renders an amount as "LKR 1,234.50"; negatives as "-LKR 1,234.50".
func FormatCurrency(value float64) string {
	d := toDecimal(value).Round(2)
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Abs()
	}
	return sign + HomeCurrency.String() + " " + groupDigits(d)
}

// FormatIndexValue renders an index level with grouping and two fraction digits.
func FormatIndexValue(value float64) string {
	d := toDecimal(value).Round(2)
	if d.Sign() < 0 {
		return "-" + groupDigits(d.Abs())
	}
	return groupDigits(d)
}

// FormatLargeNumber scales value to B, M or K at the first threshold its
// magnitude reaches, checked from largest to smallest.
func FormatLargeNumber(value float64) string {
	d := toDecimal(value)
	abs := d.Abs()

	switch {
	case abs.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(2) + "K"
	default:
		return d.StringFixed(2)
	}
}

var groupingPrinter = message.NewPrinter(language.English)

// groupDigits formats a non-negative, already rounded amount with thousands
// separators and exactly two fraction digits.
func groupDigits(d decimal.Decimal) string {
	return groupingPrinter.Sprintf("%.2f", d.InexactFloat64())
}
