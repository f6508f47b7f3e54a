package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coviddash/internal/models"
)

func TestFormatCount(t *testing.T) {
	cases := map[int64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		16480485:   "16,480,485",
		4290259189: "4,290,259,189",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCount(in), in)
	}
}

func TestUpdateGlobal(t *testing.T) {
	d := NewDashboard(newTestDataset())

	b := d.Update(models.GlobalSelection)

	assert.Equal(t, "Global Metrics", b.Metrics.Heading)
	assert.Equal(t, []string{
		"Total Confirmed: 150",
		"Total Deaths: 5",
		"Total Recovered: 15",
	}, b.Metrics.Lines)

	// Global metrics come from the whole case table.
	assert.Equal(t, d.Totals(), b.Metrics.Totals)

	require.Len(t, b.CasesByCountry.Data, 1)
	assert.Equal(t, []string{"Afghanistan", "Albania"}, b.CasesByCountry.Data[0].X)
	assert.Equal(t, []int64{100, 50}, b.CasesByCountry.Data[0].Y)

	require.Len(t, b.CasesOverTime.Data, 1)
	assert.Len(t, b.CasesOverTime.Data[0].Y, 4)
}

func TestUpdateCountry(t *testing.T) {
	d := NewDashboard(newTestDataset())

	b := d.Update("Albania")

	assert.Equal(t, "Albania Metrics", b.Metrics.Heading)
	assert.Equal(t, []string{
		"Total Confirmed: 50",
		"Total Deaths: 1",
		"Total Recovered: 5",
	}, b.Metrics.Lines)

	// one bar
	require.Len(t, b.CasesByCountry.Data, 1)
	assert.Equal(t, []string{"Albania"}, b.CasesByCountry.Data[0].X)

	// two points in source order
	line := b.CasesOverTime.Data[0]
	assert.Equal(t, []string{"2020-01-22", "2020-01-23"}, line.X)
	assert.Equal(t, []int64{40, 50}, line.Y)
	assert.Equal(t, "lines", line.Mode)

	// grouped bars
	assert.Equal(t, "group", b.CaseTypes.Layout.BarMode)
	assert.Equal(t, "COVID-19 Cases in Albania", b.CaseTypes.Layout.Title.Text)
	require.Len(t, b.CaseTypes.Data, 3)
	for i, name := range []string{"Confirmed", "Deaths", "Recovered"} {
		assert.Equal(t, name, b.CaseTypes.Data[i].Name)
		assert.Equal(t, []string{"Albania"}, b.CaseTypes.Data[i].X)
	}
	assert.Equal(t, []int64{1}, b.CaseTypes.Data[1].Y)

	assert.Equal(t, "Distribution of Cases in Albania", b.Distribution.Layout.Title.Text)
}

func TestUpdateUnknownSelection(t *testing.T) {
	d := NewDashboard(newTestDataset())

	b := d.Update("Atlantis")

	assert.Equal(t, models.Totals{}, b.Metrics.Totals)
	assert.Equal(t, []string{
		"Total Confirmed: 0",
		"Total Deaths: 0",
		"Total Recovered: 0",
	}, b.Metrics.Lines)
	assert.Empty(t, b.CasesByCountry.Data[0].X)
	assert.Empty(t, b.CasesOverTime.Data[0].Y)
	assert.Equal(t, []int64{0, 0, 0}, b.Distribution.Data[0].Values)
}

func TestPieMatchesMetrics(t *testing.T) {
	d := NewDashboard(newTestDataset())

	for _, o := range d.Options() {
		if o.Value == models.GlobalSelection {
			continue
		}
		b := d.Update(o.Value)
		pie := b.Distribution.Data[0]

		require.Equal(t, []string{"Confirmed", "Deaths", "Recovered"}, pie.Labels)
		m := b.Metrics.Totals
		assert.Equal(t, []int64{m.Confirmed, m.Deaths, m.Recovered}, pie.Values, o.Value)

		var sum int64
		for _, v := range pie.Values {
			sum += v
		}
		assert.Equal(t, m.Sum(), sum, o.Value)
	}
}

// Global metrics sum the case table while the global pie sums the summary
// rows, so the two differ whenever the tables disagree.
func TestGlobalMetricsAndPieSources(t *testing.T) {
	ds := newTestDataset()
	ds.Snapshots[0].Confirmed = 120
	ds.Snapshots[1].Recovered = 9
	d := NewDashboard(ds)

	b := d.Update(models.GlobalSelection)

	assert.Equal(t, models.Totals{Confirmed: 150, Deaths: 5, Recovered: 15}, b.Metrics.Totals)
	assert.Equal(t, "Total Confirmed: 150", b.Metrics.Lines[0])
	assert.Equal(t, []int64{170, 5, 19}, b.Distribution.Data[0].Values)
	assert.Equal(t, d.Totals(), b.Metrics.Totals)
}

func TestUpdateIsIdempotent(t *testing.T) {
	d := NewDashboard(newTestDataset())

	for _, o := range d.Options() {
		first := d.Update(o.Value)
		second := d.Update(o.Value)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Update(%q) mismatch (-first +second):\n%s", o.Value, diff)
		}
	}
}

func TestDashboardOptions(t *testing.T) {
	d := NewDashboard(newTestDataset())

	opts := d.Options()
	require.Len(t, opts, 3)
	assert.Equal(t, models.GlobalSelection, opts[0].Value)

	for _, o := range opts {
		assert.True(t, d.Valid(o.Value), o.Value)
	}
	assert.False(t, d.Valid("Atlantis"))

	// Options hands out a copy.
	opts[1].Value = "changed"
	assert.Equal(t, "Afghanistan", d.Options()[1].Value)
}

func TestFigureKinds(t *testing.T) {
	b := NewDashboard(newTestDataset()).Update(models.GlobalSelection)

	assert.Equal(t, models.KindBar, b.CasesByCountry.Kind)
	assert.Equal(t, models.KindLine, b.CasesOverTime.Kind)
	assert.Equal(t, models.KindBar, b.CaseTypes.Kind)
	assert.Equal(t, models.KindPie, b.Distribution.Kind)

	assert.Equal(t, "Country/Region", b.CasesByCountry.Layout.XAxis.Title.Text)
	assert.Equal(t, "date", b.CasesOverTime.Layout.XAxis.Type)
	assert.Equal(t, "Cases", b.CaseTypes.Layout.YAxis.Title.Text)
	assert.Equal(t, "Type", b.CaseTypes.Layout.Legend.Title.Text)

	outs := b.Outputs()
	require.Len(t, outs, 5)
	assert.Equal(t, b.Metrics, outs[0])
	assert.Equal(t, b.Distribution, outs[4])
}
