package airports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"air-demand-service/internal/domain"
)

// Store is an in-memory airport resolver keyed by ICAO code.
// It is read-only after construction and safe for concurrent use.
type Store struct {
	byCode map[string]domain.Airport
	codes  []string
}

func NewStore(airports []domain.Airport) *Store {
	m := make(map[string]domain.Airport, len(airports))
	for _, a := range airports {
		code := strings.ToUpper(strings.TrimSpace(a.ICAO))
		if code == "" {
			continue
		}
		a.ICAO = code
		m[code] = a
	}

	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	return &Store{byCode: m, codes: codes}
}

func (s *Store) ResolveAirport(ctx context.Context, code string) (domain.Airport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	a, ok := s.byCode[code]
	if !ok {
		return domain.Airport{}, fmt.Errorf("resolve airport %q: %w", code, domain.ErrAirportNotFound)
	}
	return a, nil
}

func (s *Store) ListAirportCodes(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.codes...), nil
}

func (s *Store) Len() int { return len(s.byCode) }
