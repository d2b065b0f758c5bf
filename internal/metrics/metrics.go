package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the jobs and the API report to. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	syncOrganizers *prometheus.CounterVec
	eventsUpserted prometheus.Counter
	batchesFailed  prometheus.Counter
	remoteRequests *prometheus.CounterVec
	analysisEvents *prometheus.CounterVec
	unmatchedNames prometheus.Counter
	cacheLookups   *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.syncOrganizers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "sync_organizers_total",
		Help:      "Organizers processed by the event sync, by result",
	}, []string{"result"})
	m.eventsUpserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "sync_events_upserted_total",
		Help:      "Event rows written by the event sync",
	})
	m.batchesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "sync_batches_failed_total",
		Help:      "Upsert batches that failed and were skipped",
	})
	m.remoteRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "remote_requests_total",
		Help:      "HTTP attempts against the event source API, by status code",
	}, []string{"status"})
	m.analysisEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "analysis_events_total",
		Help:      "Events processed by interest classification, by result",
	}, []string{"result"})
	m.unmatchedNames = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "analysis_unmatched_names_total",
		Help:      "Interest names returned by the classifier that matched no known interest",
	})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      "cache_lookups_total",
		Help:      "Live-events cache lookups, by outcome",
	}, []string{"result"})
	m.jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventhub",
		Name:      "job_duration_seconds",
		Help:      "Wall time of batch jobs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"job"})

	m.Registry.MustRegister(
		m.syncOrganizers, m.eventsUpserted, m.batchesFailed, m.remoteRequests,
		m.analysisEvents, m.unmatchedNames, m.cacheLookups, m.jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrganizerSynced(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.syncOrganizers.WithLabelValues(result).Inc()
}

func (m *Metrics) EventsUpserted(n int) {
	if m == nil {
		return
	}
	m.eventsUpserted.Add(float64(n))
}

func (m *Metrics) BatchFailed() {
	if m == nil {
		return
	}
	m.batchesFailed.Inc()
}

// RemoteRequest records one HTTP attempt; status 0 means the request never got a response.
func (m *Metrics) RemoteRequest(status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.remoteRequests.WithLabelValues(label).Inc()
}

func (m *Metrics) AnalysisEvent(result string) {
	if m == nil {
		return
	}
	m.analysisEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) UnmatchedNames(n int) {
	if m == nil || n == 0 {
		return
	}
	m.unmatchedNames.Add(float64(n))
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) JobFinished(job string, seconds float64) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}
