package engine

import (
	"fmt"
	"time"

	"coviddash/internal/models"
)

// CaseTable holds the time series in Struct-of-Arrays format
type CaseTable struct {
	// Data Columns (Flat Arrays)
	Dates     []int32 // YYYYMMDD
	Confirmed []int64
	Deaths    []int64
	Recovered []int64

	// Dictionary Encoded IDs (0..N)
	CountryIDs []int32

	// Dictionary (ID -> String)
	CountryDict []string
}

func (t *CaseTable) Len() int {
	return len(t.Dates)
}

// countryID returns the dictionary id for name, or -1.
func (t *CaseTable) countryID(name string) int32 {
	for id, c := range t.CountryDict {
		if c == name {
			return int32(id)
		}
	}
	return -1
}

// Record materialises row i.
func (t *CaseTable) Record(i int) models.CaseRecord {
	return models.CaseRecord{
		Country:   t.CountryDict[t.CountryIDs[i]],
		Date:      dateToTime(t.Dates[i]),
		Confirmed: t.Confirmed[i],
		Deaths:    t.Deaths[i],
		Recovered: t.Recovered[i],
	}
}

// Dataset is the pair of tables loaded at startup. Nothing writes to it after
// LoadDataset returns.
type Dataset struct {
	Cases     *CaseTable
	Snapshots []models.CountrySnapshot
}

// CaseView is a read-only selection of CaseTable rows in source order.
type CaseView struct {
	table *CaseTable
	rows  []int32
	all   bool
}

func (v CaseView) Len() int {
	if v.table == nil {
		return 0
	}
	if v.all {
		return v.table.Len()
	}
	return len(v.rows)
}

func (v CaseView) index(i int) int {
	if v.all {
		return i
	}
	return int(v.rows[i])
}

func (v CaseView) Record(i int) models.CaseRecord {
	return v.table.Record(v.index(i))
}

// --- date encoding ---

// parseDate parses "2020-01-22" -> 20200122
func parseDate(s string) (int32, error) {
	tm, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return int32(tm.Year()*10000 + int(tm.Month())*100 + tm.Day()), nil
}

func dateToTime(d int32) time.Time {
	return time.Date(int(d/10000), time.Month(d/100%100), int(d%100), 0, 0, 0, 0, time.UTC)
}
