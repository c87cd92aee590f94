package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/obs"
)

type PostgresFleetRepository struct {
	DB *sql.DB
}

func NewPostgresFleetRepository(db *sql.DB) *PostgresFleetRepository {
	return &PostgresFleetRepository{DB: db}
}

// ListFleet returns every registered airframe with its aircraft type details.
func (r *PostgresFleetRepository) ListFleet(ctx context.Context) (_ []domain.Aircraft, err error) {
	defer obs.Time(ctx, "fleet.repo.ListFleet")(&err)

	if r.DB == nil {
		return nil, errors.New("fleet repository: db is nil")
	}

	q := `
	SELECT f.registration, a.aircraft_id, a.model, a.max_range, a.avg_speed, a.turnaround_time,
		a.first_class_capacity, a.business_class_capacity, a.economy_class_capacity
	FROM fleet f
	JOIN aircrafts a ON a.aircraft_id = f.aircraft_id
	ORDER BY f.registration;
	`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list fleet: query fleet table: %w", err)
	}
	defer rows.Close()

	var fleet []domain.Aircraft
	for rows.Next() {
		var a domain.Aircraft
		var first, business, economy sql.NullInt64
		if err := rows.Scan(
			&a.Registration, &a.AircraftID, &a.Model, &a.MaxRangeKm, &a.AvgSpeedKmh, &a.TurnaroundMins,
			&first, &business, &economy,
		); err != nil {
			return nil, fmt.Errorf("list fleet: scan rows: %w", err)
		}

		a.Capacity = make(map[string]int, 3)
		for class, n := range map[string]sql.NullInt64{"first": first, "business": business, "economy": economy} {
			if n.Valid {
				a.Capacity[class] = int(n.Int64)
			}
		}
		fleet = append(fleet, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fleet: row iteration: %w", err)
	}

	return fleet, nil
}
