// Package prometheus exposes capture and search metrics using the
// Prometheus client library.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/capture"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the agent's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Outcomes       *prometheus.CounterVec
	Skips          *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	SubmitDuration prometheus.Histogram
	Searches       *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	TrackedTabs    prometheus.GaugeFunc
	ExcludedTabs   prometheus.GaugeFunc
}

// NewMetrics registers the collectors on a fresh registry. If tabs is not
// nil, gauges report the size of its records and exclusion set.
func NewMetrics(tabs recall.TabState) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		Outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_capture_outcomes_total",
				Help: "Capture pipeline runs by final state",
			},
			[]string{"state"},
		),
		Skips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_capture_skips_total",
				Help: "Navigation signals declined by the capture gate",
			},
			[]string{"reason"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_index_submissions_total",
				Help: "Submissions to the indexing service by result code",
			},
			[]string{"code"},
		),
		SubmitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recall_index_submit_duration_seconds",
				Help:    "Indexing service request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		Searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recall_searches_total",
				Help: "Search flows by result",
			},
			[]string{"result"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recall_search_duration_seconds",
				Help:    "Search flow duration in seconds, including page load",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	if tabs != nil {
		m.TrackedTabs = factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "recall_tracked_tabs",
				Help: "Tabs with a last submitted URL",
			},
			func() float64 { return float64(len(tabs.Records())) },
		)
		m.ExcludedTabs = factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "recall_excluded_tabs",
				Help: "Tabs excluded from capture",
			},
			func() float64 { return float64(len(tabs.Exclusions())) },
		)
	}
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOutcome records a capture pipeline run. It has the signature of
// capture.Agent.OnOutcome.
func (m *Metrics) ObserveOutcome(out capture.Outcome) {
	m.Outcomes.WithLabelValues(out.Result().String()).Inc()
	if out.Reason != capture.SkipNone {
		m.Skips.WithLabelValues(string(out.Reason)).Inc()
	}
}

// Ensure Indexer implements recall.Indexer at compile time.
var _ recall.Indexer = (*Indexer)(nil)

// Indexer wraps an Indexer with submission metrics.
type Indexer struct {
	next    recall.Indexer
	metrics *Metrics
}

// NewIndexer creates a new Indexer.
func NewIndexer(next recall.Indexer, m *Metrics) *Indexer {
	return &Indexer{next: next, metrics: m}
}

// Submit delegates to the wrapped indexer and records the result.
func (i *Indexer) Submit(ctx context.Context, page *recall.PageContent) (ack *recall.IndexAck, err error) {
	defer func(begin time.Time) {
		i.metrics.SubmitDuration.Observe(time.Since(begin).Seconds())
		i.metrics.Submissions.WithLabelValues(resultCode(err)).Inc()
	}(time.Now())
	return i.next.Submit(ctx, page)
}

// Ensure Finder implements recall.Finder at compile time.
var _ recall.Finder = (*Finder)(nil)

// Finder wraps a Finder with search metrics.
type Finder struct {
	next    recall.Finder
	metrics *Metrics
}

// NewFinder creates a new Finder.
func NewFinder(next recall.Finder, m *Metrics) *Finder {
	return &Finder{next: next, metrics: m}
}

// Find delegates to the wrapped finder and records the result.
func (f *Finder) Find(ctx context.Context, query string) (res *recall.FindResult, err error) {
	defer func(begin time.Time) {
		f.metrics.SearchDuration.Observe(time.Since(begin).Seconds())
		result := resultCode(err)
		if err == nil && res.Highlighted {
			result = "highlighted"
		}
		f.metrics.Searches.WithLabelValues(result).Inc()
	}(time.Now())
	return f.next.Find(ctx, query)
}

// resultCode labels a result by its error code.
func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return recall.ErrorCode(err)
}
