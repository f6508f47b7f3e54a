package engine

import (
	"testing"

	"coviddash/internal/models"
)

// newTestDataset builds the fixture used across the engine tests.
//
// Snapshot: Afghanistan (100,4,10), Albania (50,1,5).
// Cases: Albania has two dates with confirmed 40 then 50; the whole table
// sums to the same totals as the snapshot.
func newTestDataset() *Dataset {
	return &Dataset{
		Cases: &CaseTable{
			Dates:     []int32{20200122, 20200122, 20200123, 20200123},
			Confirmed: []int64{30, 40, 30, 50},
			Deaths:    []int64{2, 0, 2, 1},
			Recovered: []int64{5, 2, 5, 3},

			CountryIDs:  []int32{0, 1, 0, 1}, // 0=Afghanistan, 1=Albania
			CountryDict: []string{"Afghanistan", "Albania"},
		},
		Snapshots: []models.CountrySnapshot{
			{Country: "Afghanistan", Confirmed: 100, Deaths: 4, Recovered: 10},
			{Country: "Albania", Confirmed: 50, Deaths: 1, Recovered: 5},
		},
	}
}

func TestAggregate(t *testing.T) {
	ds := newTestDataset()

	got := ds.Cases.Aggregate()

	want := models.Totals{Confirmed: 150, Deaths: 5, Recovered: 15}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestAggregateMoreWorkersThanRows(t *testing.T) {
	cs := &CaseTable{
		Dates:       []int32{20200122},
		Confirmed:   []int64{7},
		Deaths:      []int64{1},
		Recovered:   []int64{2},
		CountryIDs:  []int32{0},
		CountryDict: []string{"Albania"},
	}
	if got := cs.Aggregate(); got.Confirmed != 7 || got.Deaths != 1 || got.Recovered != 2 {
		t.Errorf("unexpected totals %+v", got)
	}

	empty := &CaseTable{}
	if got := empty.Aggregate(); got != (models.Totals{}) {
		t.Errorf("Expected zero totals for empty table, got %+v", got)
	}
}

func TestCountryOptions(t *testing.T) {
	rows := []models.CountrySnapshot{
		{Country: "Albania"},
		{Country: "Afghanistan"},
		{Country: "Albania"},
		{Country: models.GlobalSelection},
	}

	opts := CountryOptions(rows)

	want := []string{"Global", "Albania", "Afghanistan"}
	if len(opts) != len(want) {
		t.Fatalf("Expected %d options, got %d: %+v", len(want), len(opts), opts)
	}
	for i, w := range want {
		if opts[i].Value != w || opts[i].Label != w {
			t.Errorf("option %d: expected %q, got %+v", i, w, opts[i])
		}
	}
}
