package repositories

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/platform/obs"

	"go.uber.org/zap"
)

// Table describes a CSV importable table. Columns are listed in file order
// and the first one is the primary key.
type Table struct {
	Name    string
	Columns []string
}

var (
	HubsTable = Table{Name: "hubs", Columns: []string{
		"icao", "full_name", "location", "country", "time_zone",
	}}
	DestinationsTable = Table{Name: "destinations", Columns: []string{
		"icao", "full_name", "location", "country", "time_zone",
	}}
	AircraftsTable = Table{Name: "aircrafts", Columns: []string{
		"aircraft_id", "model", "max_range", "avg_speed", "turnaround_time",
		"first_class_capacity", "business_class_capacity", "economy_class_capacity",
	}}
	FleetTable = Table{Name: "fleet", Columns: []string{
		"registration", "aircraft_id",
	}}
)

// Tables lists the importable tables by name.
var Tables = map[string]Table{
	HubsTable.Name:         HubsTable,
	DestinationsTable.Name: DestinationsTable,
	AircraftsTable.Name:    AircraftsTable,
	FleetTable.Name:        FleetTable,
}

// ImportResult counts what an import did.
type ImportResult struct {
	Added     int
	Duplicate int
	Malformed int
}

// Changed reports whether any row was added.
func (r ImportResult) Changed() bool { return r.Added > 0 }

// Row is one parsed CSV line. Empty cells are nil and digit-only cells are int64.
type Row struct {
	Line   int
	Values []any
}

// ParseImportRows reads comma separated rows after a header line. The header
// fixes the expected column count; rows with another count are reported
// through skip and left out.
func ParseImportRows(r io.Reader, skip func(line int, text string)) ([]Row, int, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, 0, fmt.Errorf("read header: %w", err)
		}
		return nil, 0, errors.New("read header: empty file")
	}
	expected := len(strings.Split(strings.TrimSpace(sc.Text()), ","))

	var rows []Row
	for line := 2; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		cells := strings.Split(text, ",")
		if len(cells) != expected {
			if skip != nil {
				skip(line, text)
			}
			continue
		}

		values := make([]any, len(cells))
		for i, c := range cells {
			values[i] = cellValue(c)
		}
		rows = append(rows, Row{Line: line, Values: values})
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}

	return rows, expected, nil
}

func cellValue(c string) any {
	c = strings.TrimSpace(c)
	if c == "" {
		return nil
	}
	if isDigits(c) {
		if n, err := strconv.ParseInt(c, 10, 64); err == nil {
			return n
		}
	}
	return c
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func insertQuery(t Table) string {
	placeholders := make([]string, len(t.Columns))
	for i := range t.Columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING;",
		t.Name,
		strings.Join(t.Columns, ", "),
		strings.Join(placeholders, ", "),
		t.Columns[0],
	)
}

// ImportCSV inserts the rows of a CSV file into t in a single transaction.
// Rows whose primary key already exists are skipped, as are rows whose column
// count differs from the header. Empty cells are stored as NULL.
func ImportCSV(ctx context.Context, db *sql.DB, t Table, path string) (_ ImportResult, err error) {
	defer obs.Time(ctx, "repositories.ImportCSV."+t.Name)(&err)

	if db == nil {
		return ImportResult{}, errors.New("import csv: DB is nil")
	}

	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: %w", t.Name, err)
	}
	defer f.Close()

	log := logging.Named("import").With(zap.String("table", t.Name))
	var res ImportResult

	rows, width, err := ParseImportRows(f, func(line int, text string) {
		log.Info("skipping line due to incorrect number of values", zap.Int("line", line), zap.String("text", text))
		res.Malformed++
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: %s: %w", t.Name, path, err)
	}
	if width != len(t.Columns) {
		return ImportResult{}, fmt.Errorf("import %s: header has %d columns, table has %d", t.Name, width, len(t.Columns))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: begin tx: %w", t.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertQuery(t))
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: prepare insert: %w", t.Name, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		r, err := stmt.ExecContext(ctx, row.Values...)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: line %d: %w", t.Name, row.Line, err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: line %d: %w", t.Name, row.Line, err)
		}
		if n == 0 {
			log.Info("skipping line due to duplicate primary key", zap.Int("line", row.Line))
			res.Duplicate++
			continue
		}
		res.Added++
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("import %s: commit tx: %w", t.Name, err)
	}

	return res, nil
}
