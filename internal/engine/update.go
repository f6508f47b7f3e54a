package engine

import (
	"slices"

	"coviddash/internal/models"
)

// Dashboard owns the loaded dataset together with what is derived from it once
// at startup: the global totals and the dropdown options.
type Dashboard struct {
	data    *Dataset
	totals  models.Totals
	options []models.Option
	known   map[string]struct{}
}

func NewDashboard(ds *Dataset) *Dashboard {
	d := &Dashboard{
		data:    ds,
		options: CountryOptions(ds.Snapshots),
	}
	if ds.Cases != nil {
		d.totals = ds.Cases.Aggregate()
	}
	d.known = make(map[string]struct{}, len(d.options))
	for _, o := range d.options {
		d.known[o.Value] = struct{}{}
	}
	return d
}

// Totals are the sums over the whole case table, shown on the static cards.
func (d *Dashboard) Totals() models.Totals {
	return d.totals
}

func (d *Dashboard) Options() []models.Option {
	return slices.Clone(d.options)
}

// Valid reports whether selection is one of the dropdown values.
func (d *Dashboard) Valid(selection string) bool {
	_, ok := d.known[selection]
	return ok
}

// Update filters by selection and rebuilds every output. It does not validate
// selection: unknown values produce empty figures and zero metrics.
func (d *Dashboard) Update(selection string) models.OutputBundle {
	cases, snaps := Filter(d.data, selection)
	return BuildFigures(selection, cases, snaps, d.totals)
}
