// Package layout declares the static page as a tree of typed nodes. The tree is
// built once at startup and only ever read afterwards.
package layout

import (
	"coviddash/internal/engine"
	"coviddash/internal/models"
)

// Component ids shared by the page, the static script and the update callback.
const (
	DropdownID       = "country-dropdown"
	MetricsID        = "country-metrics"
	CasesByCountryID = "cases-by-country"
	CasesOverTimeID  = "cases-over-time"
	BarChartID       = "bar-chart"
	PieChartID       = "pie-chart"
)

// GraphIDs lists the graph components in output order.
var GraphIDs = []string{CasesByCountryID, CasesOverTimeID, BarChartID, PieChartID}

type Kind string

const (
	KindContainer Kind = "container"
	KindRow       Kind = "row"
	KindCol       Kind = "col"
	KindHeading   Kind = "heading"
	KindCard      Kind = "card"
	KindLabel     Kind = "label"
	KindDropdown  Kind = "dropdown"
	KindDiv       Kind = "div"
	KindGraph     Kind = "graph"
)

type Node struct {
	Kind  Kind
	ID    string
	Class string
	Style string
	Text  string
	// Level is the heading level (1-6).
	Level int
	// Width is the grid column span (1-12).
	Width int

	Options     []models.Option
	Value       string
	Placeholder string

	Children []*Node
}

func el(kind Kind, class string, children ...*Node) *Node {
	return &Node{Kind: kind, Class: class, Children: children}
}

func heading(level int, text, class string) *Node {
	return &Node{Kind: KindHeading, Level: level, Text: text, Class: class}
}

func col(width int, children ...*Node) *Node {
	return &Node{Kind: KindCol, Width: width, Children: children}
}

func metricCard(title string, value int64, class string) *Node {
	return col(4, el(KindCard, "",
		heading(3, title, "text-center"),
		heading(4, engine.FormatCount(value), "text-center "+class),
	))
}

// Build declares the page: title, three metric cards, the country dropdown,
// the per-selection metrics block and four graph placeholders.
func Build(totals models.Totals, options []models.Option) *Node {
	return el(KindContainer, "",
		el(KindRow, "", col(0, heading(1, "COVID-19 Dashboard", "text-center mb-4"))),

		el(KindRow, "mb-4",
			metricCard("Total Cases", totals.Confirmed, "text-danger"),
			metricCard("Total Deaths", totals.Deaths, "text-dark"),
			metricCard("Total Recoveries", totals.Recovered, "text-success"),
		),

		&Node{Kind: KindDiv, Style: "width: 50%; margin: 0 auto", Children: []*Node{
			{Kind: KindLabel, Text: "Select Country:", Class: "font-weight-bold"},
			{
				Kind:        KindDropdown,
				ID:          DropdownID,
				Options:     options,
				Value:       models.GlobalSelection,
				Placeholder: "Select a country",
			},
		}},

		&Node{Kind: KindDiv, ID: MetricsID, Style: "text-align: center; margin-top: 20px"},

		el(KindRow, "mb-4",
			col(6, &Node{Kind: KindGraph, ID: CasesByCountryID}),
			col(6, &Node{Kind: KindGraph, ID: CasesOverTimeID}),
		),
		el(KindRow, "",
			col(6, &Node{Kind: KindGraph, ID: BarChartID}),
			col(6, &Node{Kind: KindGraph, ID: PieChartID}),
		),
	)
}

// Figure returns the figure of b shown by the graph component id.
func Figure(b models.OutputBundle, id string) (models.Figure, bool) {
	switch id {
	case CasesByCountryID:
		return b.CasesByCountry, true
	case CasesOverTimeID:
		return b.CasesOverTime, true
	case BarChartID:
		return b.CaseTypes, true
	case PieChartID:
		return b.Distribution, true
	}
	return models.Figure{}, false
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given id, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}
