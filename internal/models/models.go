package models

import "time"

// GlobalSelection is the dropdown value meaning "all countries".
const GlobalSelection = "Global"

// CaseRecord is one row of the time-series table.
type CaseRecord struct {
	Country   string    `json:"country"`
	Date      time.Time `json:"date"`
	Confirmed int64     `json:"confirmed"`
	Deaths    int64     `json:"deaths"`
	Recovered int64     `json:"recovered"`
}

// CountrySnapshot is one row of the latest per-country summary table.
type CountrySnapshot struct {
	Country   string `json:"country"`
	Confirmed int64  `json:"confirmed"`
	Deaths    int64  `json:"deaths"`
	Recovered int64  `json:"recovered"`
}

type Totals struct {
	Confirmed int64 `json:"confirmed"`
	Deaths    int64 `json:"deaths"`
	Recovered int64 `json:"recovered"`
}

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Confirmed: t.Confirmed + o.Confirmed,
		Deaths:    t.Deaths + o.Deaths,
		Recovered: t.Recovered + o.Recovered,
	}
}

// Sum is confirmed + deaths + recovered.
func (t Totals) Sum() int64 {
	return t.Confirmed + t.Deaths + t.Recovered
}

// Option is one entry of the country dropdown.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MetricsBlock is the small text block shown under the dropdown.
type MetricsBlock struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
	Totals  Totals   `json:"totals"`
}

// OutputBundle is everything the dashboard re-renders after a selection change.
type OutputBundle struct {
	Selection      string       `json:"selection"`
	Metrics        MetricsBlock `json:"metrics"`
	CasesByCountry Figure       `json:"cases_by_country"`
	CasesOverTime  Figure       `json:"cases_over_time"`
	CaseTypes      Figure       `json:"bar_chart"`
	Distribution   Figure       `json:"pie_chart"`
}

// Outputs returns the five artifacts in registration order:
// metrics, country bar chart, time series, grouped bar chart, pie chart.
func (b OutputBundle) Outputs() []any {
	return []any{b.Metrics, b.CasesByCountry, b.CasesOverTime, b.CaseTypes, b.Distribution}
}
