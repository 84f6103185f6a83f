package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/web-spider/internal/crawler"
	"github.com/alvmarrod/web-spider/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int

	events        *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewTracker creates a new metrics tracker. Its Prometheus collectors are
// registered on reg unless reg is nil.
func NewTracker(reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spider",
				Name:      "events_total",
				Help:      "Crawl events by kind",
			},
			[]string{"event"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "spider",
				Name:      "page_fetch_duration_seconds",
				Help:      "Duration of page fetches, retries included",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(t.events, t.fetchDuration)
	}

	return t
}

// Observe updates the counters from a crawl event. It is meant to be
// passed to the crawler as an event hook.
func (t *Tracker) Observe(e crawler.Event) {
	t.events.WithLabelValues(e.Kind.String()).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case crawler.EventDomainDiscovered:
		t.data.DomainsDiscovered++
	case crawler.EventDomainCrawled:
		t.data.DomainsCrawled++
	case crawler.EventDomainSkipped:
		t.data.DomainsSkipped++
	case crawler.EventRobotsFailed:
		t.data.RobotsFailed++
	case crawler.EventEdgeRecorded:
		t.data.EdgesRecorded++
	case crawler.EventPageFetched:
		t.data.PagesFetched++
		t.recordFetchTime(e.Duration)
	case crawler.EventPageFailed:
		t.data.PagesFailed++
		t.recordFetchTime(e.Duration)
	case crawler.EventPageDenied:
		t.data.PagesDenied++
	case crawler.EventLinkSkipped:
		t.data.LinksSkipped++
	}
}

// recordFetchTime records a page fetch duration. Callers hold t.mu.
func (t *Tracker) recordFetchTime(duration time.Duration) {
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
	t.fetchDuration.Observe(duration.Seconds())
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs

	// Calculate average fetch time
	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.mu.Unlock()

	jsonData, err := json.MarshalIndent(t.GetSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress renders the main counters on one line
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Domains: %d discovered, %d crawled | Edges: %d | Pages: %d fetched, %d failed, %d denied",
		t.data.DomainsDiscovered,
		t.data.DomainsCrawled,
		t.data.EdgesRecorded,
		t.data.PagesFetched,
		t.data.PagesFailed,
		t.data.PagesDenied,
	)
}
