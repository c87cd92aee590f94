// Package geonames looks up city populations through the GeoNames search API.
package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/httpclient"
	"air-demand-service/internal/platform/obs"

	"github.com/anyascii/go"
	"github.com/hashicorp/go-retryablehttp"
)

const DefaultBaseURL = "http://api.geonames.org/"

type Options struct {
	BaseURL  string
	Username string
	Timeout  time.Duration
	RetryMax int
}

// Client implements ports.IndicatorProvider for domain.MetricPopulation.
type Client struct {
	session  *retryablehttp.Client
	baseURL  string
	username string
}

func NewClient(opts Options) (*Client, error) {
	if opts.Username == "" {
		return nil, errors.New("geonames username is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Client{
		session:  httpclient.New(opts.RetryMax, opts.Timeout),
		baseURL:  opts.BaseURL,
		username: opts.Username,
	}, nil
}

type searchResponse struct {
	TotalResultsCount int `json:"totalResultsCount"`
	Geonames          []struct {
		Name        string `json:"name"`
		CountryName string `json:"countryName"`
		Population  int64  `json:"population"`
	} `json:"geonames"`
	Status *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status"`
}

// QueryName folds a city name to the ASCII form used as search query.
func QueryName(city string) string {
	return strings.Join(strings.Fields(anyascii.Transliterate(city)), " ")
}

// CityPopulation returns the population of the best match for city.
// A missing match or a zero population wraps domain.ErrIndicatorUnavailable.
func (c *Client) CityPopulation(ctx context.Context, city string) (_ float64, err error) {
	defer obs.Time(ctx, "geonames.CityPopulation")(&err)

	q := QueryName(city)
	if q == "" {
		return 0, fmt.Errorf("geonames population: empty city: %w", domain.ErrIndicatorUnavailable)
	}

	u := c.baseURL + "searchJSON?" + url.Values{
		"q":        {q},
		"maxRows":  {"1"},
		"username": {c.username},
	}.Encode()

	resp, err := httpclient.Get(ctx, c.session, u)
	if err != nil {
		return 0, fmt.Errorf("geonames population %q: %w", q, err)
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("geonames population %q: decode response: %w", q, err)
	}
	if body.Status != nil {
		return 0, fmt.Errorf("geonames population %q: status %d: %s", q, body.Status.Value, body.Status.Message)
	}
	if len(body.Geonames) == 0 || body.Geonames[0].Population <= 0 {
		return 0, fmt.Errorf("geonames population %q: %w", q, domain.ErrIndicatorUnavailable)
	}

	return float64(body.Geonames[0].Population), nil
}

func (c *Client) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	if metric != domain.MetricPopulation {
		return 0, fmt.Errorf("geonames: metric %s not served: %w", metric, domain.ErrIndicatorUnavailable)
	}
	return c.CityPopulation(ctx, subject)
}
