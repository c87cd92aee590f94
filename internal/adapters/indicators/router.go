package indicators

import (
	"context"
	"fmt"
	"time"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/ports"
)

// Router dispatches each metric to the provider registered for it.
type Router struct {
	routes   map[domain.Metric]ports.IndicatorProvider
	fallback ports.IndicatorProvider
}

// NewRouter returns a Router sending unregistered metrics to fallback,
// which may be nil.
func NewRouter(fallback ports.IndicatorProvider) *Router {
	return &Router{
		routes:   make(map[domain.Metric]ports.IndicatorProvider),
		fallback: fallback,
	}
}

// Handle registers p for metric and returns the router for chaining.
func (r *Router) Handle(metric domain.Metric, p ports.IndicatorProvider) *Router {
	r.routes[metric] = p
	return r
}

func (r *Router) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	p, ok := r.routes[metric]
	if !ok {
		p = r.fallback
	}
	if p == nil {
		return 0, fmt.Errorf("route indicator %s: no provider: %w", metric, domain.ErrIndicatorUnavailable)
	}
	return p.LookupIndicator(ctx, subject, metric, asOf)
}
