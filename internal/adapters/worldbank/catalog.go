package worldbank

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"air-demand-service/internal/platform/logging"

	"go.uber.org/zap"
)

// MaxSourceID is the highest World Bank data source walked by the catalog.
const MaxSourceID = 89

// Indicator is one entry of the World Bank indicator catalog.
type Indicator struct {
	ID     string
	Name   string
	Source int
}

type catalogEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source struct {
		ID   string `json:"id"`
		Name string `json:"value"`
	} `json:"source"`
}

// IndicatorPager walks the indicator catalog source by source, one page per
// call to Next. A source that fails or returns a malformed page is skipped.
// The pager is not safe for concurrent use.
type IndicatorPager struct {
	client   *Client
	maxSrc   int
	source   int
	page     int
	finished bool
}

func (c *Client) IndicatorPager() *IndicatorPager {
	return &IndicatorPager{client: c, maxSrc: MaxSourceID, source: 1, page: 1}
}

// Source returns the source the next page will be read from.
func (p *IndicatorPager) Source() int { return p.source }

// Reset rewinds the pager to the first page of the first source.
func (p *IndicatorPager) Reset() {
	p.source, p.page, p.finished = 1, 1, false
}

// Next returns the next non-empty page of indicators. It returns false once
// every source has been walked or ctx is done.
func (p *IndicatorPager) Next(ctx context.Context) ([]Indicator, bool) {
	log := logging.Named("worldbank")

	for !p.finished {
		if ctx.Err() != nil {
			return nil, false
		}
		if p.source > p.maxSrc {
			p.finished = true
			break
		}

		source, page := p.source, p.page
		var entries []catalogEntry
		info, err := p.client.getPage(ctx, "indicators", url.Values{
			"source": {strconv.Itoa(source)},
			"page":   {strconv.Itoa(page)},
		}, &entries)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false
			}
			log.Info("skipping source", zap.Int("source", source), zap.Error(err))
			p.nextSource()
			continue
		}

		current, _ := info.Page.Int64()
		pages, _ := info.Pages.Int64()
		if current >= pages {
			p.nextSource()
		} else {
			p.page++
		}

		if len(entries) == 0 {
			continue
		}

		out := make([]Indicator, 0, len(entries))
		for _, e := range entries {
			id := source
			if n, err := strconv.Atoi(strings.TrimSpace(e.Source.ID)); err == nil {
				id = n
			}
			out = append(out, Indicator{ID: e.ID, Name: e.Name, Source: id})
		}
		return out, true
	}

	return nil, false
}

func (p *IndicatorPager) nextSource() {
	p.source++
	p.page = 1
}

// WriteIndicatorCatalog walks the whole catalog and writes one
// source;indicator_id;indicator_name line per indicator after a header.
// Indicator ids are lower case.
func WriteIndicatorCatalog(ctx context.Context, p *IndicatorPager, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("source;indicator_id;indicator_name\n"); err != nil {
		return 0, fmt.Errorf("write indicator catalog: %w", err)
	}

	n := 0
	for {
		page, ok := p.Next(ctx)
		if !ok {
			break
		}
		for _, ind := range page {
			if _, err := fmt.Fprintf(bw, "%d;%s;%s\n", ind.Source, strings.ToLower(ind.ID), ind.Name); err != nil {
				return n, fmt.Errorf("write indicator catalog: %w", err)
			}
			n++
		}
	}
	if err := ctx.Err(); err != nil {
		return n, fmt.Errorf("write indicator catalog: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("write indicator catalog: %w", err)
	}
	return n, nil
}
