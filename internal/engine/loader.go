package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coviddash/internal/models"
)

// Column headers shared by both source files.
const (
	colCountry   = "Country/Region"
	colDate      = "Date"
	colConfirmed = "Confirmed"
	colDeaths    = "Deaths"
	colRecovered = "Recovered"
)

var ErrMissingColumn = errors.New("missing column")

var (
	caseColumns    = []string{colCountry, colDate, colConfirmed, colDeaths, colRecovered}
	summaryColumns = []string{colCountry, colConfirmed, colDeaths, colRecovered}

	columnTypes = map[string]arrow.DataType{
		colCountry:   arrow.BinaryTypes.String,
		colDate:      arrow.BinaryTypes.String,
		colConfirmed: arrow.PrimitiveTypes.Int64,
		colDeaths:    arrow.PrimitiveTypes.Int64,
		colRecovered: arrow.PrimitiveTypes.Int64,
	}
)

const defaultChunk = 4096

type LoadOptions struct {
	// Allocator backs the arrow record batches. Defaults to the Go allocator.
	Allocator memory.Allocator
	// Chunk is the number of CSV rows decoded per record batch.
	Chunk  int
	Logger *zap.Logger
}

func (o LoadOptions) allocator() memory.Allocator {
	if o.Allocator == nil {
		return memory.NewGoAllocator()
	}
	return o.Allocator
}

func (o LoadOptions) chunk() int {
	if o.Chunk <= 0 {
		return defaultChunk
	}
	return o.Chunk
}

func (o LoadOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// LoadDataset reads the time series and the per-country summary concurrently.
// Any error is final: there is no partial dataset.
func LoadDataset(ctx context.Context, casesPath, summaryPath string, opts LoadOptions) (*Dataset, error) {
	start := time.Now()
	ds := &Dataset{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cases, err := LoadCases(gctx, casesPath, opts)
		if err != nil {
			return fmt.Errorf("load cases: %w", err)
		}
		ds.Cases = cases
		return nil
	})
	g.Go(func() error {
		snaps, err := LoadSnapshots(gctx, summaryPath, opts)
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		ds.Snapshots = snaps
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.logger().Info("dataset loaded",
		zap.Int("case_rows", ds.Cases.Len()),
		zap.Int("countries", len(ds.Snapshots)),
		zap.Duration("took", time.Since(start)))
	return ds, nil
}

// LoadCases reads the time-series CSV into a dictionary-encoded CaseTable.
func LoadCases(ctx context.Context, path string, opts LoadOptions) (*CaseTable, error) {
	start := time.Now()
	opts.logger().Debug("loading case records", zap.String("path", path))

	t := &CaseTable{}
	dict := make(map[string]int32)
	row := 0

	err := scanCSV(ctx, path, caseColumns, opts, func(rec arrow.Record) error {
		country, err := column[*array.String](rec, colCountry)
		if err != nil {
			return err
		}
		dates, err := column[*array.String](rec, colDate)
		if err != nil {
			return err
		}
		metrics, err := metricColumns(rec)
		if err != nil {
			return err
		}

		for i := 0; i < int(rec.NumRows()); i++ {
			row++
			d, err := parseDate(dates.Value(i))
			if err != nil {
				return fmt.Errorf("row %d: %w", row, err)
			}

			// Value aliases the record buffer; clone only when it enters the dict.
			name := country.Value(i)
			id, ok := dict[name]
			if !ok {
				name = strings.Clone(name)
				id = int32(len(t.CountryDict))
				t.CountryDict = append(t.CountryDict, name)
				dict[name] = id
			}

			t.Dates = append(t.Dates, d)
			t.CountryIDs = append(t.CountryIDs, id)
			t.Confirmed = append(t.Confirmed, int64At(metrics[0], i))
			t.Deaths = append(t.Deaths, int64At(metrics[1], i))
			t.Recovered = append(t.Recovered, int64At(metrics[2], i))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.logger().Info("case records loaded",
		zap.String("path", path),
		zap.Int("rows", t.Len()),
		zap.Int("countries", len(t.CountryDict)),
		zap.Duration("took", time.Since(start)))
	return t, nil
}

// LoadSnapshots reads the latest per-country summary CSV.
func LoadSnapshots(ctx context.Context, path string, opts LoadOptions) ([]models.CountrySnapshot, error) {
	start := time.Now()
	var snaps []models.CountrySnapshot

	err := scanCSV(ctx, path, summaryColumns, opts, func(rec arrow.Record) error {
		country, err := column[*array.String](rec, colCountry)
		if err != nil {
			return err
		}
		metrics, err := metricColumns(rec)
		if err != nil {
			return err
		}
		for i := 0; i < int(rec.NumRows()); i++ {
			snaps = append(snaps, models.CountrySnapshot{
				Country:   strings.Clone(country.Value(i)),
				Confirmed: int64At(metrics[0], i),
				Deaths:    int64At(metrics[1], i),
				Recovered: int64At(metrics[2], i),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.logger().Info("country snapshots loaded",
		zap.String("path", path),
		zap.Int("rows", len(snaps)),
		zap.Duration("took", time.Since(start)))
	return snaps, nil
}

// scanCSV decodes only the named columns of path and hands each record batch
// to fn. Records are released after fn returns.
func scanCSV(ctx context.Context, path string, cols []string, opts LoadOptions, fn func(arrow.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	types := make(map[string]arrow.DataType, len(cols))
	for _, c := range cols {
		types[c] = columnTypes[c]
	}

	r := csv.NewInferringReader(f,
		csv.WithHeader(true),
		csv.WithAllocator(opts.allocator()),
		csv.WithChunk(opts.chunk()),
		csv.WithColumnTypes(types),
		csv.WithIncludeColumns(cols),
		csv.WithNullReader(false),
	)
	defer r.Release()

	for r.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r.Record()); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func column[T arrow.Array](rec arrow.Record, name string) (T, error) {
	var zero T
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return zero, fmt.Errorf("%w %q", ErrMissingColumn, name)
	}
	col, ok := rec.Column(idx[0]).(T)
	if !ok {
		return zero, fmt.Errorf("column %q: unexpected type %s", name, rec.Column(idx[0]).DataType())
	}
	return col, nil
}

func metricColumns(rec arrow.Record) ([3]*array.Int64, error) {
	var out [3]*array.Int64
	for i, name := range []string{colConfirmed, colDeaths, colRecovered} {
		col, err := column[*array.Int64](rec, name)
		if err != nil {
			return out, err
		}
		out[i] = col
	}
	return out, nil
}

// int64At reads an empty cell as 0.
func int64At(col *array.Int64, i int) int64 {
	if col.IsNull(i) {
		return 0
	}
	return col.Value(i)
}
