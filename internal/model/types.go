// Package model defines shared data structures.
package model

import "time"

// NameRecord is one data point returned by the statistics API. Ranking
// responses fill Nome; per-name history responses fill Periodo.
type NameRecord struct {
	Nome       string `json:"nome,omitempty" yaml:"nome,omitempty"`
	Frequencia int64  `json:"frequencia" yaml:"frequencia"`
	Periodo    string `json:"periodo,omitempty" yaml:"periodo,omitempty"`
	Ranking    int    `json:"ranking,omitempty" yaml:"ranking,omitempty"`
}

// ResultSet is a single element of the API response envelope.
type ResultSet struct {
	Nome       string       `json:"nome,omitempty"`
	Localidade string       `json:"localidade,omitempty"`
	Sexo       *string      `json:"sexo"`
	Res        []NameRecord `json:"res"`
}

// SeriesStyle carries the display attributes of a series.
type SeriesStyle struct {
	BackgroundColor string
	BorderColor     string
	BorderWidth     int
}

// Series is a labelled sequence of values drawn against the dataset labels.
type Series struct {
	Label  string
	Values []float64
	Style  SeriesStyle
}

// ChartDataset is the label/value structure consumed by the chart renderer.
type ChartDataset struct {
	Labels []string
	Series []Series
}

// Len returns the number of labels in the dataset.
func (d ChartDataset) Len() int {
	return len(d.Labels)
}

// ViewState is the state owned by the ranking view. A nil ChartData means
// a request is in flight.
type ViewState struct {
	ChartData  *ChartDataset
	SearchText string
}

// Loading reports whether the view should show the loading indicator.
func (s ViewState) Loading() bool {
	return s.ChartData == nil
}

// Config defines the runtime settings of the ranking view.
type Config struct {
	APIBaseURL    string
	Timeout       time.Duration
	ToastDuration time.Duration
	Verbose       bool
	ForceColor    bool
	LogPath       string
	DatasetPath   string
	ServeAddress  string
}
