// Package render draws dashboard figures as PNG images for export and for
// clients that cannot run the browser charting library.
package render

import (
	"errors"
	"fmt"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"coviddash/internal/engine"
	"coviddash/internal/models"
)

// ErrNoData is returned for figures with nothing to draw (no points, or a pie
// whose slices are all zero).
var ErrNoData = errors.New("figure has no data")

const (
	defaultWidth  = 800
	defaultHeight = 500

	barWidth   = 24
	barSpacing = 6
)

var seriesColors = []drawing.Color{chart.ColorRed, chart.ColorBlack, chart.ColorGreen}

type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// PNG writes fig to w.
func PNG(w io.Writer, fig models.Figure, opts Options) error {
	switch fig.Kind {
	case models.KindBar:
		return barPNG(w, fig, opts)
	case models.KindLine:
		return linePNG(w, fig, opts)
	case models.KindPie:
		return piePNG(w, fig, opts)
	}
	return fmt.Errorf("unsupported figure kind %q", fig.Kind)
}

func barPNG(w io.Writer, fig models.Figure, opts Options) error {
	width, height := opts.size()

	var bars []chart.Value
	var top int64
	if len(fig.Data) > 0 {
		// Grouped traces share X; interleave them per category.
		for i := range fig.Data[0].X {
			for ti, tr := range fig.Data {
				if i >= len(tr.Y) {
					continue
				}
				label := tr.X[i]
				if len(fig.Data) > 1 {
					label += " " + tr.Name
				}
				color := seriesColors[ti%len(seriesColors)]
				bars = append(bars, chart.Value{
					Label: label,
					Value: float64(tr.Y[i]),
					Style: chart.Style{FillColor: color, StrokeColor: color},
				})
				top = max(top, tr.Y[i])
			}
		}
	}
	if len(bars) == 0 {
		return ErrNoData
	}

	bc := chart.BarChart{
		Title:      fig.Layout.Title.Text,
		Width:      max(width, len(bars)*(barWidth+barSpacing)+120),
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Name:           axisTitle(fig.Layout.YAxis),
			Range:          &chart.ContinuousRange{Min: 0, Max: ceiling(top)},
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func linePNG(w io.Writer, fig models.Figure, opts Options) error {
	width, height := opts.size()
	if len(fig.Data) == 0 || len(fig.Data[0].X) == 0 {
		return ErrNoData
	}
	tr := fig.Data[0]

	times := make([]time.Time, 0, len(tr.X)+1)
	ys := make([]float64, 0, len(tr.Y)+1)
	var top int64
	for i, x := range tr.X {
		t, err := time.Parse(time.DateOnly, x)
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		times = append(times, t)
		ys = append(ys, float64(tr.Y[i]))
		top = max(top, tr.Y[i])
	}
	// A zero-width time range cannot be drawn; stretch it by one day.
	if !spansTime(times) {
		times = append(times, times[0].AddDate(0, 0, 1))
		ys = append(ys, ys[len(ys)-1])
	}

	ch := chart.Chart{
		Title:      fig.Layout.Title.Text,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           axisTitle(fig.Layout.XAxis),
			ValueFormatter: chart.TimeValueFormatterWithFormat(time.DateOnly),
		},
		YAxis: chart.YAxis{
			Name:           axisTitle(fig.Layout.YAxis),
			Range:          &chart.ContinuousRange{Min: 0, Max: ceiling(top)},
			ValueFormatter: countFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    axisTitle(fig.Layout.YAxis),
				XValues: times,
				YValues: ys,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

func piePNG(w io.Writer, fig models.Figure, opts Options) error {
	width, height := opts.size()
	if len(fig.Data) == 0 {
		return ErrNoData
	}
	tr := fig.Data[0]

	var sum int64
	values := make([]chart.Value, 0, len(tr.Values))
	for i, v := range tr.Values {
		sum += v
		if v == 0 {
			continue
		}
		color := seriesColors[i%len(seriesColors)]
		values = append(values, chart.Value{
			Label: tr.Labels[i],
			Value: float64(v),
			Style: chart.Style{FillColor: color},
		})
	}
	if sum <= 0 {
		return ErrNoData
	}

	pc := chart.PieChart{
		Title:  fig.Layout.Title.Text,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pc.Render(chart.PNG, w)
}

func axisTitle(a *models.Axis) string {
	if a == nil {
		return ""
	}
	return a.Title.Text
}

func spansTime(ts []time.Time) bool {
	for _, t := range ts[1:] {
		if !t.Equal(ts[0]) {
			return true
		}
	}
	return false
}

// ceiling leaves 10% headroom above the tallest value.
func ceiling(top int64) float64 {
	if top <= 0 {
		return 1
	}
	return float64(top) * 1.1
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return engine.FormatCount(int64(f))
	}
	return fmt.Sprintf("%v", v)
}
