package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/obs"

	"github.com/shopspring/decimal"
)

// PostgresRouteDemandRepository persists route demand estimations.
// Distances are stored as NUMERIC with two decimals.
type PostgresRouteDemandRepository struct {
	DB *sql.DB
}

func NewPostgresRouteDemandRepository(db *sql.DB) *PostgresRouteDemandRepository {
	return &PostgresRouteDemandRepository{DB: db}
}

// Fetch stored estimations for one origin and multiple destinations.
func (s *PostgresRouteDemandRepository) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]domain.RouteDemand, err error) {
	defer obs.Time(ctx, "route_demand.repo.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("route demand repository: db is nil")
	}

	origin = strings.ToUpper(strings.TrimSpace(origin))
	if origin == "" {
		return nil, errors.New("get route demands: origin must not be empty")
	}

	uniq := uniqueCodes(destinations)
	if len(uniq) == 0 {
		return map[string]domain.RouteDemand{}, nil
	}

	q := `
	SELECT destination, distance_km, first_class_demand, business_class_demand, economy_class_demand, estimated_at
	FROM route_demands
	WHERE origin = $1
		AND destination = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq)
	if err != nil {
		return nil, fmt.Errorf("get route demands: query route_demands table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.RouteDemand, len(uniq))
	for rows.Next() {
		var (
			dest     string
			distance decimal.Decimal
			d        domain.ClassDemand
			at       time.Time
		)
		if err := rows.Scan(&dest, &distance, &d.First, &d.Business, &d.Economy, &at); err != nil {
			return nil, fmt.Errorf("get route demands: scan rows: %w", err)
		}
		out[dest] = domain.RouteDemand{
			Origin:      origin,
			Destination: dest,
			DistanceKm:  distance.InexactFloat64(),
			Demand:      d,
			EstimatedAt: at,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get route demands: row iteration: %w", err)
	}

	return out, nil
}

// Store many estimations for a single origin, replacing existing rows.
func (s *PostgresRouteDemandRepository) PutMany(
	ctx context.Context,
	origin string,
	demands []domain.RouteDemand,
) (err error) {
	defer obs.Time(ctx, "route_demand.repo.PutMany")(&err)

	if s.DB == nil {
		return errors.New("route demand repository: db is nil")
	}

	origin = strings.ToUpper(strings.TrimSpace(origin))
	if origin == "" {
		return errors.New("insert route demands: origin must not be empty")
	}

	if len(demands) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert route demands: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_demands (origin, destination, distance_km, first_class_demand, business_class_demand, economy_class_demand, estimated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		first_class_demand = EXCLUDED.first_class_demand,
		business_class_demand = EXCLUDED.business_class_demand,
		economy_class_demand = EXCLUDED.economy_class_demand,
		estimated_at = EXCLUDED.estimated_at;
	`)
	if err != nil {
		return fmt.Errorf("insert route demands: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, rd := range demands {
		dest := strings.ToUpper(strings.TrimSpace(rd.Destination))
		if dest == "" {
			return errors.New("insert route demands: empty destination")
		}
		if rd.Origin != "" && !strings.EqualFold(rd.Origin, origin) {
			return fmt.Errorf("insert route demands: dest=%q has origin %q, want %q", dest, rd.Origin, origin)
		}

		distance := decimal.NewFromFloat(rd.DistanceKm).Round(2)
		d := rd.Demand
		if _, err := stmt.ExecContext(ctx, origin, dest, distance, d.First, d.Business, d.Economy, rd.EstimatedAt); err != nil {
			return fmt.Errorf("insert route demands dest=%q: %w", dest, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert route demands commit: %w", err)
	}

	return nil
}

func uniqueCodes(codes []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}

		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	return uniq
}
