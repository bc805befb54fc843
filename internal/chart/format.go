package chart

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// significantDigits matches the precision of the chart axis and tooltips.
const significantDigits = 3

var locale = language.BrazilianPortuguese

// FormatNumber formats v for pt-BR with at most three significant digits,
// e.g. 11734129 becomes "11.700.000".
func FormatNumber(v float64) string {
	p := message.NewPrinter(locale)
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return p.Sprintf("%v", number.Decimal(0))
	}
	rounded, fraction := roundSignificant(v, significantDigits)
	if fraction == 0 {
		return p.Sprintf("%v", number.Decimal(int64(rounded)))
	}
	return p.Sprintf("%v", number.Decimal(rounded, number.MaxFractionDigits(fraction)))
}

// roundSignificant rounds v to digits significant digits and reports how
// many fraction digits remain.
func roundSignificant(v float64, digits int) (float64, int) {
	magnitude := int(math.Floor(math.Log10(math.Abs(v)))) + 1
	shift := digits - magnitude
	if shift <= 0 {
		scale := math.Pow(10, float64(-shift))
		return math.Round(v/scale) * scale, 0
	}
	scale := math.Pow(10, float64(shift))
	rounded := math.Round(v*scale) / scale
	if rounded == math.Trunc(rounded) {
		return rounded, 0
	}
	return rounded, shift
}
