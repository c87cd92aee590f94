package worldbank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countriesJSON = `[{"page":1,"pages":1,"per_page":"400","total":2},
[{"id":"CHE","iso2Code":"CH","name":"Switzerland"},{"id":"GBR","iso2Code":"GB","name":"United Kingdom"}]]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, Year: 2022, Timeout: 2 * time.Second, RetryMax: 1})
}

func TestClient_LookupIndicator(t *testing.T) {
	var countryCalls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		switch r.URL.Path {
		case "/country":
			countryCalls.Add(1)
			fmt.Fprint(w, countriesJSON)
		case "/country/CHE/indicator/NY.GDP.PCAP.CD":
			assert.Equal(t, "2022", r.URL.Query().Get("date"))
			fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":50,"total":1},[{"date":"2022","value":92434.5}]]`)
		case "/country/GBR/indicator/PA.NUS.PPPC.RF":
			fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":50,"total":1},[{"date":"2022","value":null}]]`)
		case "/country/GBR/indicator/ST.INT.XPND.CD":
			fmt.Fprint(w, `[{"page":0,"pages":0,"per_page":50,"total":0},null]`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	v, err := c.LookupIndicator(ctx, "switzerland", domain.MetricGDPPerCapita, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 92434.5, v)

	_, err = c.LookupIndicator(ctx, "United Kingdom", domain.MetricPriceLevelIndex, time.Now())
	assert.True(t, errors.Is(err, domain.ErrIndicatorUnavailable), "null value")

	_, err = c.LookupIndicator(ctx, "United Kingdom", domain.MetricTourismExpenditure, time.Now())
	assert.True(t, errors.Is(err, domain.ErrIndicatorUnavailable), "no data")

	_, err = c.LookupIndicator(ctx, "Atlantis", domain.MetricGDPPerCapita, time.Now())
	assert.True(t, errors.Is(err, domain.ErrIndicatorUnavailable))
	assert.True(t, errors.Is(err, ErrUnknownCountry))

	_, err = c.LookupIndicator(ctx, "Switzerland", domain.MetricPopulation, time.Now())
	assert.True(t, errors.Is(err, domain.ErrIndicatorUnavailable))

	assert.Equal(t, int32(1), countryCalls.Load(), "country map is fetched once")
}

func TestClient_APIMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/country" {
			fmt.Fprint(w, countriesJSON)
			return
		}
		fmt.Fprint(w, `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`)
	})

	_, err := c.LookupIndicator(context.Background(), "Switzerland", domain.MetricGDPPerCapita, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api message 120")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, countriesJSON)
	})

	id, err := c.CountryCode(context.Background(), "Switzerland")
	require.NoError(t, err)
	assert.Equal(t, "CHE", id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := c.CountryCodes(context.Background())
	require.Error(t, err)

	var se *httpclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func catalogHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/indicators", r.URL.Path)
		q := r.URL.Query()
		switch q.Get("source") + "/" + q.Get("page") {
		case "1/1":
			fmt.Fprint(w, `[{"page":1,"pages":2,"per_page":"50","total":3},[
				{"id":"NY.GDP.PCAP.CD","name":"GDP per capita (current US$)","source":{"id":"2","value":"World Development Indicators"}},
				{"id":"SP.POP.TOTL","name":"Population, total","source":{"id":"2","value":"World Development Indicators"}}]]`)
		case "1/2":
			fmt.Fprint(w, `[{"page":2,"pages":2,"per_page":"50","total":3},[
				{"id":"PA.NUS.PPPC.RF","name":"Price level ratio of PPP conversion factor (GDP) to market exchange rate","source":{"id":"2","value":"World Development Indicators"}}]]`)
		case "2/1":
			w.WriteHeader(http.StatusBadRequest)
		case "3/1":
			fmt.Fprint(w, `[{"unexpected":true}]`)
		default:
			t.Errorf("unexpected request %s", r.URL.RawQuery)
		}
	}
}

func TestIndicatorPager(t *testing.T) {
	c := newTestClient(t, catalogHandler(t))
	p := c.IndicatorPager()
	p.maxSrc = 3
	ctx := context.Background()

	page, ok := p.Next(ctx)
	require.True(t, ok)
	require.Len(t, page, 2)
	assert.Equal(t, Indicator{ID: "NY.GDP.PCAP.CD", Name: "GDP per capita (current US$)", Source: 2}, page[0])

	page, ok = p.Next(ctx)
	require.True(t, ok)
	require.Len(t, page, 1)

	// Sources 2 and 3 fail and are skipped.
	_, ok = p.Next(ctx)
	assert.False(t, ok)
	_, ok = p.Next(ctx)
	assert.False(t, ok)

	p.Reset()
	assert.Equal(t, 1, p.Source())
	_, ok = p.Next(ctx)
	assert.True(t, ok)
}

func TestWriteIndicatorCatalog(t *testing.T) {
	c := newTestClient(t, catalogHandler(t))
	p := c.IndicatorPager()
	p.maxSrc = 3

	var buf bytes.Buffer
	n, err := WriteIndicatorCatalog(context.Background(), p, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "source;indicator_id;indicator_name", lines[0])
	assert.Equal(t, "2;ny.gdp.pcap.cd;GDP per capita (current US$)", lines[1])
	assert.Equal(t, "2;sp.pop.totl;Population, total", lines[2])
}
