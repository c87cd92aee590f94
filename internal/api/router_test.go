package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"air-demand-service/internal/adapters/airports"
	"air-demand-service/internal/adapters/indicators"
	"air-demand-service/internal/api/dto"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/ports"
	"air-demand-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testDate = time.Date(2024, time.September, 15, 12, 0, 0, 0, time.UTC)

type staticFleet struct {
	fleet []domain.Aircraft
	err   error
}

func (f staticFleet) ListFleet(ctx context.Context) ([]domain.Aircraft, error) {
	return f.fleet, f.err
}

func newTestRouter(fleet ports.FleetRepository, opts ...func(*Deps)) http.Handler {
	store := airports.NewStore([]domain.Airport{
		{ICAO: "AAAA", FullName: "Alpha Intl", Location: "Alpha City", Country: "Alphaland", TimeZone: "UTC", Coordinates: &domain.Coordinates{Lat: 0, Lon: 0}},
		{ICAO: "BBBB", FullName: "Beta Intl", Location: "Beta City", Country: "Betaland", Coordinates: &domain.Coordinates{Lat: 8, Lon: 0}},
		{ICAO: "CCCC", FullName: "Gamma Field", Location: "Gamma City", Country: "Gammaland", Coordinates: &domain.Coordinates{Lat: -8, Lon: 0}},
		{ICAO: "DDDD", FullName: "Delta Strip", Location: "Delta City", Country: "Deltaland"},
	})
	provider := indicators.NewStaticProvider([]indicators.StaticValue{
		{Subject: "Alpha City", Metric: domain.MetricPopulation, Value: 1000},
		{Subject: "Beta City", Metric: domain.MetricPopulation, Value: 2000},
		{Subject: "Gamma City", Metric: domain.MetricPopulation, Value: 500},
		{Subject: "Alphaland", Metric: domain.MetricGDPPerCapita, Value: 10},
		{Subject: "Betaland", Metric: domain.MetricGDPPerCapita, Value: 30},
		{Subject: "Alphaland", Metric: domain.MetricPriceLevelIndex, Value: 1.1},
		{Subject: "Betaland", Metric: domain.MetricPriceLevelIndex, Value: 1.2},
		{Subject: "Alphaland", Metric: domain.MetricTourismExpenditure, Value: 20},
		{Subject: "Betaland", Metric: domain.MetricTourismExpenditure, Value: 40},
	})

	est := services.NewEstimator(store, provider, services.WithClock(ports.FixedClock(testDate)))
	deps := Deps{
		Estimator:  est,
		Airports:   store,
		Fleet:      fleet,
		DefaultHub: "AAAA",
		MaxBatch:   3,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return NewRouter(deps)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestGetAirport(t *testing.T) {
	h := newTestRouter(nil)

	rec := do(t, h, http.MethodGet, "/airports/aaaa", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.AirportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "AAAA", res.ICAO)
	assert.True(t, res.Resolved)
	require.NotNil(t, res.Lat)

	rec = do(t, h, http.MethodGet, "/airports/DDDD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Resolved)
	assert.Nil(t, res.Lat)

	rec = do(t, h, http.MethodGet, "/airports/ZZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteDemand(t *testing.T) {
	h := newTestRouter(nil)

	rec := do(t, h, http.MethodGet, "/routes/AAAA/BBBB/demand", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.DemandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "AAAA", res.Origin)
	assert.Equal(t, "BBBB", res.Destination)
	assert.Equal(t, "2024-09-15", res.Date)
	assert.Equal(t, dto.ClassDemandResponse{First: 74, Business: 396, Economy: 7650, Total: 8120}, res.Demand)
	assert.Equal(t, 1.0, res.Factors.Seasonality)
	assert.InDelta(t, 890.55, res.DistanceKm, 0.01)
}

func TestRouteDemand_Date(t *testing.T) {
	h := newTestRouter(nil)

	rec := do(t, h, http.MethodGet, "/routes/AAAA/BBBB/demand?date=2024-07-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.DemandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1.5, res.Factors.Seasonality)
	assert.Equal(t, 112, res.Demand.First)

	rec = do(t, h, http.MethodGet, "/routes/AAAA/BBBB/demand?date=01-07-2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteDemand_ErrorMapping(t *testing.T) {
	h := newTestRouter(nil)

	tests := []struct {
		target string
		want   int
	}{
		{target: "/routes/AAAA/ZZZZ/demand", want: http.StatusNotFound},
		{target: "/routes/AAAA/DDDD/demand", want: http.StatusNotFound},
		{target: "/routes/AAAA/CCCC/demand", want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestBatchDemands(t *testing.T) {
	h := newTestRouter(nil)

	rec := do(t, h, http.MethodPost, "/demands", `{"destinations":["BBBB","CCCC"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.BatchDemandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "AAAA", res.Hub)
	require.Len(t, res.Routes, 2)

	require.NotNil(t, res.Routes[0].Result)
	assert.Equal(t, 7650, res.Routes[0].Result.Demand.Economy)
	assert.Empty(t, res.Routes[0].Error)

	assert.Nil(t, res.Routes[1].Result)
	assert.Contains(t, res.Routes[1].Error, "indicator unavailable")
}

func TestBatchDemands_BadRequests(t *testing.T) {
	h := newTestRouter(nil)

	for _, body := range []string{
		`not json`,
		`{"hub":"AAAA","destinations":["BBBB"],"extra":1}`,
		`{"hub":"AAAA","destinations":[]}`,
		`{"hub":"AAAA","destinations":["BBBB",""]}`,
		`{"hub":"AAAA","destinations":["BBBB","CCCC","DDDD","EEEE"]}`,
		`{"hub":"AAAA","destinations":["BBBB"]}{}`,
	} {
		rec := do(t, h, http.MethodPost, "/demands", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRouteAircraft(t *testing.T) {
	fleet := staticFleet{fleet: []domain.Aircraft{
		{Registration: "HB-AAA", AircraftID: 1, Model: "Dash 8", MaxRangeKm: 800, Capacity: map[string]int{"economy": 78}},
		{Registration: "HB-AAB", AircraftID: 2, Model: "A220", MaxRangeKm: 6300, Capacity: map[string]int{"business": 12, "economy": 118}},
	}}
	h := newTestRouter(fleet)

	rec := do(t, h, http.MethodGet, "/routes/AAAA/BBBB/aircraft", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.RouteAircraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Aircraft, 1)
	assert.Equal(t, "HB-AAB", res.Aircraft[0].Registration)
	assert.Equal(t, 130, res.Aircraft[0].Seats)

	rec = do(t, h, http.MethodGet, "/routes/AAAA/DDDD/aircraft", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteAircraft_FleetErrors(t *testing.T) {
	rec := do(t, newTestRouter(nil), http.MethodGet, "/routes/AAAA/BBBB/aircraft", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, newTestRouter(staticFleet{err: errors.New("db down")}), http.MethodGet, "/routes/AAAA/BBBB/aircraft", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

type staticRouteDemands struct {
	rows map[string]domain.RouteDemand
	err  error
}

func (s staticRouteDemands) GetMany(ctx context.Context, origin string, destinations []string) (map[string]domain.RouteDemand, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]domain.RouteDemand{}
	for _, d := range destinations {
		if rd, ok := s.rows[origin+"|"+d]; ok {
			out[d] = rd
		}
	}
	return out, nil
}

func (s staticRouteDemands) PutMany(ctx context.Context, origin string, demands []domain.RouteDemand) error {
	return s.err
}

func withRouteDemands(repo ports.RouteDemandRepository) func(*Deps) {
	return func(d *Deps) { d.RouteDemands = repo }
}

func TestStoredDemands(t *testing.T) {
	repo := staticRouteDemands{rows: map[string]domain.RouteDemand{
		"AAAA|BBBB": {
			Origin:      "AAAA",
			Destination: "BBBB",
			DistanceKm:  890.55,
			Demand:      domain.ClassDemand{First: 74, Business: 396, Economy: 7650},
			EstimatedAt: testDate,
		},
	}}
	h := newTestRouter(nil, withRouteDemands(repo))

	rec := do(t, h, http.MethodGet, "/hubs/aaaa/demands?destinations=bbbb,CCCC", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.StoredDemandsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "AAAA", res.Hub)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, "BBBB", res.Routes[0].Destination)
	assert.Equal(t, 8120, res.Routes[0].Demand.Total)
	assert.Equal(t, "2024-09-15T12:00:00Z", res.Routes[0].EstimatedAt)
	assert.Equal(t, []string{"CCCC"}, res.Missing)
}

func TestStoredDemands_Errors(t *testing.T) {
	rec := do(t, newTestRouter(nil), http.MethodGet, "/hubs/AAAA/demands?destinations=BBBB", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h := newTestRouter(nil, withRouteDemands(staticRouteDemands{}))
	rec = do(t, h, http.MethodGet, "/hubs/AAAA/demands", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/hubs/AAAA/demands?destinations=B1,B2,B3,B4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = newTestRouter(nil, withRouteDemands(staticRouteDemands{err: errors.New("db down")}))
	rec = do(t, h, http.MethodGet, "/hubs/AAAA/demands?destinations=BBBB", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
