package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the airline tables when they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	airportColumns := `
		icao TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		location TEXT NOT NULL,
		country TEXT NOT NULL,
		time_zone TEXT
	`

	createHubsQuery := `CREATE TABLE IF NOT EXISTS hubs (` + airportColumns + `);`
	createDestinationsQuery := `CREATE TABLE IF NOT EXISTS destinations (` + airportColumns + `);`

	createPositionsQuery := `
	CREATE TABLE IF NOT EXISTS airport_positions (
		icao TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`

	createAircraftsQuery := `
	CREATE TABLE IF NOT EXISTS aircrafts (
		aircraft_id INTEGER PRIMARY KEY,
		model TEXT NOT NULL,
		max_range INTEGER NOT NULL,
		avg_speed INTEGER NOT NULL,
		turnaround_time INTEGER NOT NULL,
		first_class_capacity INTEGER,
		business_class_capacity INTEGER,
		economy_class_capacity INTEGER
	);
	`

	createFleetQuery := `
	CREATE TABLE IF NOT EXISTS fleet (
		registration TEXT PRIMARY KEY,
		aircraft_id INTEGER NOT NULL REFERENCES aircrafts(aircraft_id)
	);
	`

	createRouteDemandsQuery := `
	CREATE TABLE IF NOT EXISTS route_demands (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km NUMERIC(10, 2) NOT NULL,
		first_class_demand INTEGER NOT NULL,
		business_class_demand INTEGER NOT NULL,
		economy_class_demand INTEGER NOT NULL,
		estimated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_demands_destination_origin
	ON route_demands(destination, origin);
	`

	statements := []string{
		createHubsQuery,
		createDestinationsQuery,
		createPositionsQuery,
		createAircraftsQuery,
		createFleetQuery,
		createRouteDemandsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
