package models

// FigureKind names the chart type of a Figure.
type FigureKind string

const (
	KindBar  FigureKind = "bar"
	KindLine FigureKind = "line"
	KindPie  FigureKind = "pie"
)

// Figure is a self-contained chart description. Data and Layout follow the
// Plotly figure schema so the browser can hand them to Plotly.react as-is.
type Figure struct {
	Kind   FigureKind `json:"kind"`
	Data   []Trace    `json:"data"`
	Layout Layout     `json:"layout"`
}

// Trace is one series. Bar and line traces use X/Y, pie traces Labels/Values.
type Trace struct {
	Type   string   `json:"type"`
	Name   string   `json:"name,omitempty"`
	Mode   string   `json:"mode,omitempty"`
	X      []string `json:"x,omitempty"`
	Y      []int64  `json:"y,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Values []int64  `json:"values,omitempty"`
}

type Layout struct {
	Title   Text    `json:"title"`
	XAxis   *Axis   `json:"xaxis,omitempty"`
	YAxis   *Axis   `json:"yaxis,omitempty"`
	BarMode string  `json:"barmode,omitempty"`
	Legend  *Legend `json:"legend,omitempty"`
}

type Text struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Text   `json:"title"`
	Type  string `json:"type,omitempty"`
}

type Legend struct {
	Title Text `json:"title"`
}

