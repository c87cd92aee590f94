package indicators

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"air-demand-service/internal/domain"
)

type StaticValue struct {
	Subject string
	Metric  domain.Metric
	Value   float64
}

// StaticProvider serves indicator values from memory, ignoring the date.
// Subjects are matched case-insensitively.
type StaticProvider struct {
	m     map[string]float64
	calls atomic.Int64
}

func NewStaticProvider(values []StaticValue) *StaticProvider {
	m := make(map[string]float64, len(values))
	for _, v := range values {
		m[staticKey(v.Subject, v.Metric)] = v.Value
	}
	return &StaticProvider{m: m}
}

func staticKey(subject string, metric domain.Metric) string {
	return strings.ToLower(strings.TrimSpace(subject)) + "|" + string(metric)
}

func (p *StaticProvider) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	p.calls.Add(1)

	v, ok := p.m[staticKey(subject, metric)]
	if !ok {
		return 0, fmt.Errorf("static indicator %s for %q: %w", metric, subject, domain.ErrIndicatorUnavailable)
	}
	return v, nil
}

// Calls returns how many lookups were served, including misses.
func (p *StaticProvider) Calls() int64 { return p.calls.Load() }
