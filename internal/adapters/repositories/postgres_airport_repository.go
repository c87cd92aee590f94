package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/obs"
)

// PostgresAirportRepository resolves airports from the hubs and destinations
// tables joined with airport_positions.
type PostgresAirportRepository struct {
	DB *sql.DB
}

func NewPostgresAirportRepository(db *sql.DB) *PostgresAirportRepository {
	return &PostgresAirportRepository{DB: db}
}

func (r *PostgresAirportRepository) ResolveAirport(ctx context.Context, code string) (_ domain.Airport, err error) {
	defer obs.Time(ctx, "airport.repo.ResolveAirport")(&err)

	if r.DB == nil {
		return domain.Airport{}, errors.New("airport repository: db is nil")
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Airport{}, fmt.Errorf("resolve airport: empty code: %w", domain.ErrAirportNotFound)
	}

	q := `
	SELECT a.icao, a.full_name, a.location, a.country, COALESCE(a.time_zone, ''), p.lat, p.lon
	FROM (
		SELECT icao, full_name, location, country, time_zone FROM hubs
		UNION
		SELECT icao, full_name, location, country, time_zone FROM destinations
	) a
	LEFT JOIN airport_positions p ON p.icao = a.icao
	WHERE a.icao = $1
	LIMIT 1;
	`

	var a domain.Airport
	var lat, lon sql.NullFloat64
	err = r.DB.QueryRowContext(ctx, q, code).Scan(&a.ICAO, &a.FullName, &a.Location, &a.Country, &a.TimeZone, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Airport{}, fmt.Errorf("resolve airport %q: %w", code, domain.ErrAirportNotFound)
	}
	if err != nil {
		return domain.Airport{}, fmt.Errorf("resolve airport %q: %w", code, err)
	}

	if lat.Valid && lon.Valid {
		a.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}
	return a, nil
}

// ListAirportCodes returns every destination code in ascending order.
func (r *PostgresAirportRepository) ListAirportCodes(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "airport.repo.ListAirportCodes")(&err)

	if r.DB == nil {
		return nil, errors.New("airport repository: db is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT icao FROM destinations ORDER BY icao;`)
	if err != nil {
		return nil, fmt.Errorf("list airport codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("list airport codes: scan rows: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list airport codes: row iteration: %w", err)
	}
	return codes, nil
}

// PutPositions stores airport positions, replacing existing ones.
func (r *PostgresAirportRepository) PutPositions(ctx context.Context, positions map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "airport.repo.PutPositions")(&err)

	if r.DB == nil {
		return errors.New("airport repository: db is nil")
	}

	if len(positions) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert airport positions: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO airport_positions (icao, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (icao) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("insert airport positions: db prepare: %w", err)
	}
	defer stmt.Close()

	for code, c := range positions {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return errors.New("insert airport positions: empty icao key")
		}
		if !c.Valid() {
			return fmt.Errorf("insert airport positions: icao=%q: invalid coordinates %v", code, c)
		}

		if _, err := stmt.ExecContext(ctx, code, c.Lat, c.Lon); err != nil {
			return fmt.Errorf("insert airport positions icao=%q: %w", code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert airport positions commit: %w", err)
	}
	return nil
}
