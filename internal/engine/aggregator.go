package engine

import (
	"runtime"
	"sync"

	"coviddash/internal/models"
)

// Aggregate sums confirmed/deaths/recovered over every row of the table.
// Rows are split into one chunk per CPU and the partial sums merged at the end.
func (cs *CaseTable) Aggregate() models.Totals {
	n := cs.Len()
	numWorkers := runtime.NumCPU()
	if numWorkers > n {
		numWorkers = max(n, 1)
	}
	chunkSize := n / numWorkers

	results := make(chan models.Totals, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if i == numWorkers-1 {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()

			// Capture slice headers to avoid bounds checks in loop
			conf := cs.Confirmed[s:e]
			dead := cs.Deaths[s:e]
			recv := cs.Recovered[s:e]

			var p models.Totals
			for j := range conf {
				p.Confirmed += conf[j]
				p.Deaths += dead[j]
				p.Recovered += recv[j]
			}
			results <- p
		}(start, end)
	}

	go func() { wg.Wait(); close(results) }()

	var total models.Totals
	for p := range results {
		total = total.Add(p)
	}
	return total
}

// SumSnapshots adds up the metric fields of rows.
func SumSnapshots(rows []models.CountrySnapshot) models.Totals {
	var t models.Totals
	for _, r := range rows {
		t.Confirmed += r.Confirmed
		t.Deaths += r.Deaths
		t.Recovered += r.Recovered
	}
	return t
}

// CountryOptions returns the dropdown options: Global first, then every distinct
// snapshot country in table order.
func CountryOptions(rows []models.CountrySnapshot) []models.Option {
	options := []models.Option{{Label: models.GlobalSelection, Value: models.GlobalSelection}}
	seen := make(map[string]struct{}, len(rows)+1)
	seen[models.GlobalSelection] = struct{}{}
	for _, r := range rows {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		options = append(options, models.Option{Label: r.Country, Value: r.Country})
	}
	return options
}
