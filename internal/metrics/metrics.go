// Package metrics collects sitemap generation measurements for Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Collector struct {
	registry         *prometheus.Registry
	categoryItems    *prometheus.GaugeVec
	categoryAuthors  *prometheus.GaugeVec
	categoryFailures *prometheus.CounterVec
	entriesWritten   prometheus.Gauge
	runDuration      prometheus.Histogram
	lastRun          prometheus.Gauge
	sitemapServed    prometheus.Counter
}

// NewCollector builds a collector on its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		categoryItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "starlit_sitemap_category_items",
			Help: "Items listed per category in the last run",
		}, []string{"category"}),
		categoryAuthors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "starlit_sitemap_category_authors",
			Help: "Distinct authors per category in the last run",
		}, []string{"category"}),
		categoryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "starlit_sitemap_category_failures_total",
			Help: "Category fetches that degraded to zero entries",
		}, []string{"category"}),
		entriesWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starlit_sitemap_entries",
			Help: "Entries written by the last run",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "starlit_sitemap_run_duration_seconds",
			Help:    "Wall time of a generation run",
			Buckets: prometheus.DefBuckets,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "starlit_sitemap_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		sitemapServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "starlit_sitemap_served_total",
			Help: "sitemap.xml responses served by the preview server",
		}),
	}

	c.registry.MustRegister(
		c.categoryItems,
		c.categoryAuthors,
		c.categoryFailures,
		c.entriesWritten,
		c.runDuration,
		c.lastRun,
		c.sitemapServed,
	)

	return c
}

func (c *Collector) RecordCategory(category string, items, authors int) {
	c.categoryItems.WithLabelValues(category).Set(float64(items))
	c.categoryAuthors.WithLabelValues(category).Set(float64(authors))
}

func (c *Collector) RecordCategoryFailure(category string) {
	c.categoryFailures.WithLabelValues(category).Inc()
	c.categoryItems.WithLabelValues(category).Set(0)
	c.categoryAuthors.WithLabelValues(category).Set(0)
}

func (c *Collector) RecordEntriesWritten(count int) {
	c.entriesWritten.Set(float64(count))
	c.lastRun.SetToCurrentTime()
}

func (c *Collector) RecordRunDuration(d time.Duration) {
	c.runDuration.Observe(d.Seconds())
}

func (c *Collector) RecordSitemapServed() {
	c.sitemapServed.Inc()
}

// Handler exposes the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Push sends the current values to a Pushgateway under job.
func (c *Collector) Push(gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(c.registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
