// Package metrics exposes Prometheus collectors for the enrichment service.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal     *prometheus.CounterVec
	fetchBytesTotal       *prometheus.CounterVec
	jobsTotal             *prometheus.CounterVec
	candidatesTotal       *prometheus.CounterVec
	politenessWaitSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_pages_fetched_total",
				Help: "Total pages fetched, labeled by host.",
			},
			[]string{"host"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_fetch_bytes_total",
				Help: "Total bytes fetched, labeled by host.",
			},
			[]string{"host"},
		)

		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_jobs_total",
				Help: "Total enrichment jobs finished, labeled by status.",
			},
			[]string{"status"},
		)

		candidatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrich_candidates_total",
				Help: "Total candidate facts extracted, labeled by kind.",
			},
			[]string{"kind"},
		)

		politenessWaitSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "enrich_politeness_wait_seconds",
				Help:    "Histogram of per-host politeness wait durations.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"host"},
		)
	})
}

// SanitizeHost extracts a lowercase hostname from a URL, or "unknown".
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the page counters for one fetched page.
func ObservePage(site string, bytesFetched int) {
	if pagesFetchedTotal == nil {
		return
	}
	host := SanitizeHost(site)
	pagesFetchedTotal.WithLabelValues(host).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(host).Add(float64(bytesFetched))
	}
}

// ObserveJob increments the job counter for a terminal status.
func ObserveJob(status string) {
	if jobsTotal == nil {
		return
	}
	jobsTotal.WithLabelValues(status).Inc()
}

// ObserveCandidates adds extracted candidate counts for one kind.
func ObserveCandidates(kind string, n int) {
	if candidatesTotal == nil || n <= 0 {
		return
	}
	candidatesTotal.WithLabelValues(kind).Add(float64(n))
}

// ObservePolitenessWait records one politeness delay.
func ObservePolitenessWait(host string, d time.Duration) {
	if politenessWaitSeconds == nil {
		return
	}
	politenessWaitSeconds.WithLabelValues(strings.ToLower(host)).Observe(d.Seconds())
}
