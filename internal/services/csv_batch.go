package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/geo"
	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/platform/obs"
	"air-demand-service/internal/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var routesHeader = []string{
	"hub_id",
	"destination_id",
	"distance",
	"first_class_demand",
	"business_class_demand",
	"economy_class_demand",
}

// BatchSummary counts the rows a CSV population pass produced.
type BatchSummary struct {
	Written int
	Skipped int
}

func formatDistance(km float64) string {
	return decimal.NewFromFloat(km).StringFixed(2)
}

// PopulateRoutesCSV estimates every route from hub to destinations and writes
// one row per route. The hub itself is skipped, as are routes that cannot be
// estimated. limit caps the number of destinations considered when positive.
func PopulateRoutesCSV(
	ctx context.Context,
	est *Estimator,
	hub string,
	destinations []string,
	w io.Writer,
	limit int,
) (BatchSummary, error) {
	hub = normalizeCode(hub)

	targets := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = normalizeCode(d)
		if d == "" || d == hub {
			continue
		}
		targets = append(targets, d)
		if limit > 0 && len(targets) == limit {
			break
		}
	}

	results, err := est.EstimateMany(ctx, hub, targets)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("populate routes csv: %w", err)
	}

	log := logging.Named("batch")
	cw := csv.NewWriter(w)
	if err := cw.Write(routesHeader); err != nil {
		return BatchSummary{}, fmt.Errorf("populate routes csv: write header: %w", err)
	}

	var sum BatchSummary
	for _, r := range results {
		if r.Err != nil {
			log.Warn("skipping route", zap.String("hub", hub), zap.String("destination", r.Destination), zap.Error(r.Err))
			sum.Skipped++
			continue
		}

		d := r.Estimation.Demand
		row := []string{
			hub,
			r.Destination,
			formatDistance(r.Estimation.Route.DistanceKm()),
			strconv.Itoa(d.First),
			strconv.Itoa(d.Business),
			strconv.Itoa(d.Economy),
		}
		if err := cw.Write(row); err != nil {
			return sum, fmt.Errorf("populate routes csv: write %s: %w", r.Destination, err)
		}
		sum.Written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return sum, fmt.Errorf("populate routes csv: flush: %w", err)
	}
	return sum, nil
}

// PopulateDemandsCSV fills the demand columns of an existing routes file whose
// rows start with hub, destination and distance. The first three header cells
// are kept and the demand column names follow them. The file is rewritten through
// a temporary file in the same directory and renamed into place. Rows that
// cannot be estimated keep empty demand cells.
func PopulateDemandsCSV(ctx context.Context, est *Estimator, path string) (_ BatchSummary, err error) {
	defer obs.Time(ctx, "batch.PopulateDemandsCSV")(&err)

	in, err := os.Open(path)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("populate demands csv: %w", err)
	}
	header, rows, err := readRouteRows(in)
	in.Close()
	if err != nil {
		return BatchSummary{}, fmt.Errorf("populate demands csv: %s: %w", path, err)
	}

	asOf := est.clock.Now()
	demands := make([][]string, len(rows))
	failed := make([]error, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(est.concurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := est.EstimateAt(gctx, row[0], row[1], asOf)
			if err != nil {
				failed[i] = err
				demands[i] = []string{"", "", ""}
				return nil
			}
			demands[i] = []string{
				strconv.Itoa(e.Demand.First),
				strconv.Itoa(e.Demand.Business),
				strconv.Itoa(e.Demand.Economy),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchSummary{}, fmt.Errorf("populate demands csv: %w", err)
	}

	log := logging.Named("batch")
	out := make([][]string, 0, len(rows)+1)
	out = append(out, append(header, routesHeader[3:]...))

	var sum BatchSummary
	for i, row := range rows {
		if failed[i] != nil {
			log.Warn("leaving demand empty", zap.String("hub", row[0]), zap.String("destination", row[1]), zap.Error(failed[i]))
			sum.Skipped++
		} else {
			sum.Written++
		}
		out = append(out, append(row[:3:3], demands[i]...))
	}

	if err := writeFileAtomic(path, out); err != nil {
		return BatchSummary{}, fmt.Errorf("populate demands csv: %w", err)
	}
	return sum, nil
}

// readRouteRows returns the header and the hub, destination and distance
// cells of every following row. The first line is always the header.
func readRouteRows(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, err
	}
	if len(header) < 3 {
		return nil, nil, fmt.Errorf("line 1: want a header with at least 3 columns, got %d", len(header))
	}

	var rows [][]string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) < 3 {
			return nil, nil, fmt.Errorf("line %d: want at least 3 columns, got %d", line, len(rec))
		}
		rows = append(rows, []string{strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])})
	}
	return header[:3:3], rows, nil
}

// PopulateDistancesCSV appends the great-circle distance to every hub,
// destination row of the file at path, rewriting it in place. Unlike the
// demand pass it fails on the first route that cannot be built.
func PopulateDistancesCSV(ctx context.Context, airports ports.AirportResolver, path string) (_ int, err error) {
	defer obs.Time(ctx, "batch.PopulateDistancesCSV")(&err)

	in, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("populate distances csv: %w", err)
	}
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	in.Close()
	if err != nil {
		return 0, fmt.Errorf("populate distances csv: %s: %w", path, err)
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return 0, fmt.Errorf("populate distances csv: %s: want a hub,destination header", path)
	}

	out := make([][]string, 0, len(records))
	out = append(out, append(records[0][:2:2], "distance"))

	for i, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		origin, err := airports.ResolveAirport(ctx, normalizeCode(rec[0]))
		if err != nil {
			return 0, fmt.Errorf("populate distances csv: line %d: %w", i+2, err)
		}
		dest, err := airports.ResolveAirport(ctx, normalizeCode(rec[1]))
		if err != nil {
			return 0, fmt.Errorf("populate distances csv: line %d: %w", i+2, err)
		}
		route, err := domain.NewRoute(origin, dest, geo.GreatCircleDistance)
		if err != nil {
			return 0, fmt.Errorf("populate distances csv: line %d: %w", i+2, err)
		}
		out = append(out, []string{strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), formatDistance(route.DistanceKm())})
	}

	if err := writeFileAtomic(path, out); err != nil {
		return 0, fmt.Errorf("populate distances csv: %w", err)
	}
	return len(out) - 1, nil
}

// writeFileAtomic writes records to a temporary file next to path and
// renames it over path.
func writeFileAtomic(path string, records [][]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	cw := csv.NewWriter(tmp)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
