// Package worldbank reads country indicators from the World Bank open data API.
package worldbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/httpclient"
	"air-demand-service/internal/platform/obs"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultBaseURL = "https://api.worldbank.org/v2/"
	DefaultYear    = 2022

	IndicatorGDPPerCapita       = "NY.GDP.PCAP.CD"
	IndicatorPriceLevelIndex    = "PA.NUS.PPPC.RF"
	IndicatorTourismExpenditure = "ST.INT.XPND.CD"
)

var indicatorCodes = map[domain.Metric]string{
	domain.MetricGDPPerCapita:       IndicatorGDPPerCapita,
	domain.MetricPriceLevelIndex:    IndicatorPriceLevelIndex,
	domain.MetricTourismExpenditure: IndicatorTourismExpenditure,
}

// ErrUnknownCountry is returned when a country name has no World Bank id.
var ErrUnknownCountry = errors.New("unknown country")

type Options struct {
	BaseURL  string
	Year     int
	Timeout  time.Duration
	RetryMax int
}

// Client implements ports.IndicatorProvider for the country level metrics.
//
// The country name to id map is fetched on first use and kept for the
// lifetime of the client. The client is safe for concurrent use.
type Client struct {
	session *retryablehttp.Client
	baseURL string
	year    int

	mu        sync.Mutex
	countries map[string]string
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Year == 0 {
		opts.Year = DefaultYear
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Client{
		session: httpclient.New(opts.RetryMax, opts.Timeout),
		baseURL: opts.BaseURL,
		year:    opts.Year,
	}
}

// pageInfo is the metadata element that heads every World Bank response.
type pageInfo struct {
	Page    json.Number `json:"page"`
	Pages   json.Number `json:"pages"`
	PerPage json.Number `json:"per_page"`
	Total   json.Number `json:"total"`
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

type country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type observation struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// getPage fetches a two element World Bank payload into its metadata and data parts.
// A payload without data (a null second element) leaves data untouched.
func (c *Client) getPage(ctx context.Context, path string, query url.Values, data any) (pageInfo, error) {
	query.Set("format", "json")
	u := c.baseURL + path + "?" + query.Encode()

	resp, err := httpclient.Get(ctx, c.session, u)
	if err != nil {
		return pageInfo{}, err
	}
	defer resp.Body.Close()

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return pageInfo{}, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) == 0 {
		return pageInfo{}, errors.New("empty response")
	}

	var info pageInfo
	if err := json.Unmarshal(raw[0], &info); err != nil {
		return pageInfo{}, fmt.Errorf("decode page info: %w", err)
	}
	if len(info.Message) > 0 {
		return info, fmt.Errorf("api message %s: %s", info.Message[0].ID, info.Message[0].Value)
	}
	if len(raw) != 2 || info.Page == "" {
		return info, errors.New("unexpected response structure")
	}

	if string(raw[1]) != "null" {
		if err := json.Unmarshal(raw[1], data); err != nil {
			return info, fmt.Errorf("decode data: %w", err)
		}
	}
	return info, nil
}

// CountryCodes returns the World Bank country id for every country name.
// Keys are lower case.
func (c *Client) CountryCodes(ctx context.Context) (_ map[string]string, err error) {
	defer obs.Time(ctx, "worldbank.CountryCodes")(&err)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.countries != nil {
		return c.countries, nil
	}

	var list []country
	if _, err := c.getPage(ctx, "country", url.Values{"per_page": {"400"}}, &list); err != nil {
		return nil, fmt.Errorf("world bank countries: %w", err)
	}

	m := make(map[string]string, len(list))
	for _, ct := range list {
		m[strings.ToLower(strings.TrimSpace(ct.Name))] = ct.ID
	}
	c.countries = m
	return m, nil
}

// CountryCode returns the World Bank id of a country name.
func (c *Client) CountryCode(ctx context.Context, name string) (string, error) {
	codes, err := c.CountryCodes(ctx)
	if err != nil {
		return "", err
	}
	id, ok := codes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("world bank country %q: %w", name, ErrUnknownCountry)
	}
	return id, nil
}

// IndicatorValue returns the value of a World Bank indicator for a country id
// and year. A missing or null value wraps domain.ErrIndicatorUnavailable.
func (c *Client) IndicatorValue(ctx context.Context, countryID, indicator string, year int) (_ float64, err error) {
	defer obs.Time(ctx, "worldbank.IndicatorValue")(&err)

	path := "country/" + url.PathEscape(countryID) + "/indicator/" + url.PathEscape(indicator)

	var obsList []observation
	if _, err := c.getPage(ctx, path, url.Values{"date": {strconv.Itoa(year)}}, &obsList); err != nil {
		return 0, fmt.Errorf("world bank %s for %s: %w", indicator, countryID, err)
	}

	if len(obsList) == 0 || obsList[0].Value == nil {
		return 0, fmt.Errorf("world bank %s for %s in %d: %w", indicator, countryID, year, domain.ErrIndicatorUnavailable)
	}
	return *obsList[0].Value, nil
}

// LookupIndicator resolves the country name and reads the metric for the
// configured year. asOf is not used: indicators are annual and pinned.
func (c *Client) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	code, ok := indicatorCodes[metric]
	if !ok {
		return 0, fmt.Errorf("world bank: metric %s not served: %w", metric, domain.ErrIndicatorUnavailable)
	}

	id, err := c.CountryCode(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUnknownCountry) {
			return 0, fmt.Errorf("%w: %w", domain.ErrIndicatorUnavailable, err)
		}
		return 0, err
	}

	return c.IndicatorValue(ctx, id, code, c.year)
}

// Year returns the indicator year the client reads.
func (c *Client) Year() int { return c.year }
