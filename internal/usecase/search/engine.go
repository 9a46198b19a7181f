package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
)

// Result is the outcome of a composed search.
type Result struct {
	Listings []listing.Listing
	// Applied is false when the criteria carried no facet.
	Applied bool
	Facets  []Facet
}

// Engine runs every applicable strategy and intersects their results by listing ID.
type Engine struct {
	strategies []Strategy
	logger     *zap.Logger
	observer   Observer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithObserver records per-facet timings and result sizes.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine evaluating strategies in the given order.
func NewEngine(strategies []Strategy, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{strategies: strategies, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// DefaultStrategies returns one strategy per facet in evaluation order:
// city, price, property_type, listing_type, keyword, geo.
func DefaultStrategies(repo Repository, resolve LocationResolver, logger *zap.Logger) []Strategy {
	return []Strategy{
		NewCityStrategy(repo),
		NewPriceStrategy(repo),
		NewPropertyTypeStrategy(repo),
		NewListingTypeStrategy(repo),
		NewKeywordStrategy(repo),
		NewGeoStrategy(repo, resolve, logger),
	}
}

// Search composes every applicable facet by set intersection.
// The result is sorted by listing ID. No applicable facet yields an empty, unapplied result.
func (e *Engine) Search(ctx context.Context, c criteria.Criteria) (Result, error) {
	var (
		running map[string]listing.Listing
		applied []Facet
	)

	for _, s := range e.strategies {
		if !s.Applies(c) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		start := time.Now()
		found, err := s.Search(ctx, c)
		if err != nil {
			return Result{}, fmt.Errorf("facet %s: %w", s.Facet(), err)
		}
		if e.observer != nil {
			e.observer.ObserveFacet(s.Facet(), time.Since(start), len(found))
		}

		applied = append(applied, s.Facet())
		if running == nil {
			running = toSet(found)
		} else {
			running = intersect(running, found)
		}
		if len(running) == 0 {
			break
		}
	}

	if applied == nil {
		e.logger.Warn("no search criteria provided")
		return Result{Listings: []listing.Listing{}}, nil
	}

	out := make([]listing.Listing, 0, len(running))
	for _, l := range running {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })

	if e.observer != nil {
		e.observer.ObserveResult(len(out))
	}
	return Result{Listings: out, Applied: true, Facets: applied}, nil
}

func toSet(ls []listing.Listing) map[string]listing.Listing {
	m := make(map[string]listing.Listing, len(ls))
	for _, l := range ls {
		m[l.ID()] = l
	}
	return m
}

func intersect(running map[string]listing.Listing, found []listing.Listing) map[string]listing.Listing {
	next := make(map[string]listing.Listing, min(len(running), len(found)))
	for _, l := range found {
		if prev, ok := running[l.ID()]; ok {
			next[l.ID()] = prev
		}
	}
	return next
}

// PrometheusObserver records engine measurements on Prometheus histograms.
type PrometheusObserver struct {
	FacetDuration *prometheus.HistogramVec
	FacetResults  *prometheus.HistogramVec
	Results       prometheus.Histogram
}

// ObserveFacet implements Observer.
func (o *PrometheusObserver) ObserveFacet(facet Facet, took time.Duration, results int) {
	if o.FacetDuration != nil {
		o.FacetDuration.WithLabelValues(string(facet)).Observe(took.Seconds())
	}
	if o.FacetResults != nil {
		o.FacetResults.WithLabelValues(string(facet)).Observe(float64(results))
	}
}

// ObserveResult implements Observer.
func (o *PrometheusObserver) ObserveResult(results int) {
	if o.Results != nil {
		o.Results.Observe(float64(results))
	}
}
