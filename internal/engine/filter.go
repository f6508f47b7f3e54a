package engine

import (
	"slices"

	"coviddash/internal/models"
)

// Filter narrows both tables to selection. "Global" passes every row through.
// A selection matching no country yields two empty views.
func Filter(ds *Dataset, selection string) (CaseView, []models.CountrySnapshot) {
	if selection == models.GlobalSelection {
		return CaseView{table: ds.Cases, all: true}, slices.Clone(ds.Snapshots)
	}

	cases := CaseView{table: ds.Cases}
	if ds.Cases != nil {
		if id := ds.Cases.countryID(selection); id >= 0 {
			for i, cid := range ds.Cases.CountryIDs {
				if cid == id {
					cases.rows = append(cases.rows, int32(i))
				}
			}
		}
	}

	var snaps []models.CountrySnapshot
	for _, s := range ds.Snapshots {
		if s.Country == selection {
			snaps = append(snaps, s)
		}
	}
	return cases, snaps
}
