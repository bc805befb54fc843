// Package dataset reshapes API records into chart datasets.
package dataset

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verte-zerg/nomes/internal/model"
)

// SeriesLabel is the label of the single series built from API records.
const SeriesLabel = "Quantidade de pessoas"

// DefaultStyle is the series style used for every dataset.
var DefaultStyle = model.SeriesStyle{
	BackgroundColor: "rgba(54, 162, 235, 0.2)",
	BorderColor:     "rgba(54, 162, 235, 1)",
	BorderWidth:     1,
}

// LabelSelector picks the label of a record.
type LabelSelector func(model.NameRecord) string

// ByName labels records with their capitalized name.
func ByName(r model.NameRecord) string {
	return Capitalize(r.Nome)
}

// ByPeriod labels records with their period string as received.
func ByPeriod(r model.NameRecord) string {
	return r.Periodo
}

// Build converts records into a dataset with one series. Labels and values
// keep the order of records.
func Build(records []model.NameRecord, label LabelSelector) model.ChartDataset {
	labels := make([]string, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		labels[i] = label(r)
		values[i] = float64(r.Frequencia)
	}
	return model.ChartDataset{
		Labels: labels,
		Series: []model.Series{{
			Label:  SeriesLabel,
			Values: values,
			Style:  DefaultStyle,
		}},
	}
}

// Capitalize upper-cases the first code point of s and lower-cases the
// rest using Portuguese case mappings.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	head := cases.Upper(language.BrazilianPortuguese).String(s[:size])
	tail := cases.Lower(language.BrazilianPortuguese).String(s[size:])
	return head + tail
}
