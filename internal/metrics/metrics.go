package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitemap_pulse_analyses_total",
		Help: "Number of sitemap analyses attempted.",
	})

	AnalysisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitemap_pulse_analysis_errors_total",
		Help: "Number of failed analyses by error kind.",
	}, []string{"kind"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitemap_pulse_analysis_duration_seconds",
		Help:    "End-to-end duration of one analysis run.",
		Buckets: prometheus.DefBuckets,
	})

	SitemapEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitemap_pulse_sitemap_entries",
		Help:    "URL entries found per fetched sitemap.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
)
