package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Runs          *prometheus.CounterVec
	StageFailures *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	SearchLatency prometheus.Histogram
	ScrapedPages  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_search",
			Name:      "runs_total",
			Help:      "Pipeline runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_search",
			Name:      "stage_failures_total",
			Help:      "Recoverable and fatal stage failures.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smart_search",
			Name:      "run_duration_seconds",
			Help:      "End to end pipeline duration.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"mode"}),
		SearchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smart_search",
			Name:      "web_search_latency_ms",
			Help:      "Latency reported for the web search call.",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 10),
		}),
		ScrapedPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_search",
			Name:      "scraped_pages_total",
			Help:      "Scrape attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Runs, m.StageFailures, m.RunDuration, m.SearchLatency, m.ScrapedPages,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
