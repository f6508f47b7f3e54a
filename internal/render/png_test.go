package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coviddash/internal/engine"
	"coviddash/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testBundle(t *testing.T, selection string) models.OutputBundle {
	t.Helper()
	ds := &engine.Dataset{
		Cases: &engine.CaseTable{
			Dates:       []int32{20200122, 20200122, 20200123},
			Confirmed:   []int64{30, 40, 50},
			Deaths:      []int64{2, 0, 1},
			Recovered:   []int64{5, 2, 3},
			CountryIDs:  []int32{0, 1, 1},
			CountryDict: []string{"Afghanistan", "Albania"},
		},
		Snapshots: []models.CountrySnapshot{
			{Country: "Afghanistan", Confirmed: 100, Deaths: 4, Recovered: 10},
			{Country: "Albania", Confirmed: 50, Deaths: 1, Recovered: 5},
		},
	}
	return engine.NewDashboard(ds).Update(selection)
}

func TestPNG(t *testing.T) {
	for _, sel := range []string{models.GlobalSelection, "Albania", "Afghanistan"} {
		b := testBundle(t, sel)
		figs := map[string]models.Figure{
			"cases-by-country": b.CasesByCountry,
			"cases-over-time":  b.CasesOverTime,
			"bar-chart":        b.CaseTypes,
			"pie-chart":        b.Distribution,
		}
		for name, fig := range figs {
			t.Run(sel+"/"+name, func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, PNG(&buf, fig, Options{Width: 640, Height: 400}))
				assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
			})
		}
	}
}

func TestPNGNoData(t *testing.T) {
	b := testBundle(t, "Atlantis")

	for _, fig := range []models.Figure{b.CasesByCountry, b.CasesOverTime, b.CaseTypes, b.Distribution} {
		var buf bytes.Buffer
		err := PNG(&buf, fig, Options{})
		assert.ErrorIs(t, err, ErrNoData, fig.Layout.Title.Text)
		assert.Zero(t, buf.Len())
	}
}

func TestPNGUnsupportedKind(t *testing.T) {
	var buf bytes.Buffer
	err := PNG(&buf, models.Figure{Kind: "scatter3d"}, Options{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestCeiling(t *testing.T) {
	assert.Equal(t, 1.0, ceiling(0))
	assert.InDelta(t, 110.0, ceiling(100), 1e-9)
}
