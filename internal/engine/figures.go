package engine

import (
	"time"

	"github.com/valyala/fasttemplate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"coviddash/internal/models"
)

const (
	labelConfirmed = "Confirmed"
	labelDeaths    = "Deaths"
	labelRecovered = "Recovered"
)

var metricLine = fasttemplate.New("Total {{label}}: {{value}}", "{{", "}}")

// FormatCount renders n with thousands separators, e.g. 1234567 -> "1,234,567".
func FormatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// BuildFigures derives the output bundle from already filtered tables.
// global holds the whole-table totals used by the "Global" metrics block.
func BuildFigures(selection string, cases CaseView, snaps []models.CountrySnapshot, global models.Totals) models.OutputBundle {
	snapTotals := SumSnapshots(snaps)

	metrics := metricsBlock(selection+" Metrics", snapTotals)
	if selection == models.GlobalSelection {
		metrics = metricsBlock("Global Metrics", global)
	}

	return models.OutputBundle{
		Selection:      selection,
		Metrics:        metrics,
		CasesByCountry: casesByCountry(snaps),
		CasesOverTime:  casesOverTime(cases),
		CaseTypes:      caseTypes(selection, snaps),
		Distribution:   distribution(selection, snapTotals),
	}
}

func metricsBlock(heading string, t models.Totals) models.MetricsBlock {
	line := func(label string, v int64) string {
		return metricLine.ExecuteString(map[string]interface{}{
			"label": label,
			"value": FormatCount(v),
		})
	}
	return models.MetricsBlock{
		Heading: heading,
		Lines: []string{
			line(labelConfirmed, t.Confirmed),
			line(labelDeaths, t.Deaths),
			line(labelRecovered, t.Recovered),
		},
		Totals: t,
	}
}

func casesByCountry(snaps []models.CountrySnapshot) models.Figure {
	tr := models.Trace{Type: "bar", X: make([]string, 0, len(snaps)), Y: make([]int64, 0, len(snaps))}
	for _, s := range snaps {
		tr.X = append(tr.X, s.Country)
		tr.Y = append(tr.Y, s.Confirmed)
	}
	return models.Figure{
		Kind: models.KindBar,
		Data: []models.Trace{tr},
		Layout: models.Layout{
			Title: models.Text{Text: "Cases by Country"},
			XAxis: &models.Axis{Title: models.Text{Text: colCountry}},
			YAxis: &models.Axis{Title: models.Text{Text: labelConfirmed}},
		},
	}
}

// casesOverTime keeps source row order; rows are not re-sorted by date.
func casesOverTime(cases CaseView) models.Figure {
	n := cases.Len()
	tr := models.Trace{Type: "scatter", Mode: "lines", X: make([]string, 0, n), Y: make([]int64, 0, n)}
	for i := 0; i < n; i++ {
		r := cases.Record(i)
		tr.X = append(tr.X, r.Date.Format(time.DateOnly))
		tr.Y = append(tr.Y, r.Confirmed)
	}
	return models.Figure{
		Kind: models.KindLine,
		Data: []models.Trace{tr},
		Layout: models.Layout{
			Title: models.Text{Text: "Cases Over Time"},
			XAxis: &models.Axis{Title: models.Text{Text: colDate}, Type: "date"},
			YAxis: &models.Axis{Title: models.Text{Text: labelConfirmed}},
		},
	}
}

func caseTypes(selection string, snaps []models.CountrySnapshot) models.Figure {
	countries := make([]string, 0, len(snaps))
	for _, s := range snaps {
		countries = append(countries, s.Country)
	}
	series := func(name string, get func(models.CountrySnapshot) int64) models.Trace {
		y := make([]int64, 0, len(snaps))
		for _, s := range snaps {
			y = append(y, get(s))
		}
		return models.Trace{Type: "bar", Name: name, X: countries, Y: y}
	}
	return models.Figure{
		Kind: models.KindBar,
		Data: []models.Trace{
			series(labelConfirmed, func(s models.CountrySnapshot) int64 { return s.Confirmed }),
			series(labelDeaths, func(s models.CountrySnapshot) int64 { return s.Deaths }),
			series(labelRecovered, func(s models.CountrySnapshot) int64 { return s.Recovered }),
		},
		Layout: models.Layout{
			Title:   models.Text{Text: "COVID-19 Cases in " + selection},
			XAxis:   &models.Axis{Title: models.Text{Text: colCountry}},
			YAxis:   &models.Axis{Title: models.Text{Text: "Cases"}},
			BarMode: "group",
			Legend:  &models.Legend{Title: models.Text{Text: "Type"}},
		},
	}
}

func distribution(selection string, t models.Totals) models.Figure {
	return models.Figure{
		Kind: models.KindPie,
		Data: []models.Trace{{
			Type:   "pie",
			Labels: []string{labelConfirmed, labelDeaths, labelRecovered},
			Values: []int64{t.Confirmed, t.Deaths, t.Recovered},
		}},
		Layout: models.Layout{
			Title: models.Text{Text: "Distribution of Cases in " + selection},
		},
	}
}
