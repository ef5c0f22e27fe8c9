package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family CompoundForge exports.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Analysis
	AnalysesTotal          CounterVec
	AnalysisDuration       HistogramVec
	AnalysisCandidateCount HistogramVec
	BatchSize              HistogramVec

	// Elements
	ElementLookupsTotal CounterVec

	// Infrastructure
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	EventsPublishedTotal CounterVec
	ReportsArchivedTotal CounterVec
	FeedClients          GaugeVec
	DBQueryDuration      HistogramVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
	DefaultAnalysisDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5}
	DefaultCandidateBuckets        = []float64{0, 1, 2, 5, 10, 20}
	DefaultBatchBuckets            = []float64{1, 5, 10, 25, 50, 100}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
)

// NewAppMetrics registers all metric families on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	m.AnalysesTotal = collector.RegisterCounter("analyses_total", "Compound analyses by verdict", "likelihood", "bond_type", "source")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Engine analysis duration", DefaultAnalysisDurationBuckets, "path")
	m.AnalysisCandidateCount = collector.RegisterHistogram("analysis_candidates", "Surfaced candidates per analysis", DefaultCandidateBuckets, "likelihood")
	m.BatchSize = collector.RegisterHistogram("analysis_batch_size", "Requests per batch", DefaultBatchBuckets, "status")

	m.ElementLookupsTotal = collector.RegisterCounter("element_lookups_total", "Element lookups", "operation", "status")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Events published", "topic", "status")
	m.ReportsArchivedTotal = collector.RegisterCounter("reports_archived_total", "Analysis reports archived", "status")
	m.FeedClients = collector.RegisterGauge("feed_clients", "Connected feed clients", "feed")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")
	return m
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordGRPCRequest(m *AppMetrics, service, method, code string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordAnalysis counts one verdict. source is "engine", "memory" or "redis".
func RecordAnalysis(m *AppMetrics, likelihood, bondType, source string, candidates int) {
	m.AnalysesTotal.WithLabelValues(likelihood, bondType, source).Inc()
	m.AnalysisCandidateCount.WithLabelValues(likelihood).Observe(float64(candidates))
}

func RecordBatch(m *AppMetrics, size int, err error) {
	m.BatchSize.WithLabelValues(statusLabel(err)).Observe(float64(size))
}

func RecordElementLookup(m *AppMetrics, operation string, err error) {
	m.ElementLookupsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func RecordEventPublish(m *AppMetrics, topic string, err error) {
	m.EventsPublishedTotal.WithLabelValues(topic, statusLabel(err)).Inc()
}

func RecordArchive(m *AppMetrics, err error) {
	m.ReportsArchivedTotal.WithLabelValues(statusLabel(err)).Inc()
}

func RecordDBQuery(m *AppMetrics, operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues("database", "query_error").Inc()
	}
}

func RecordError(m *AppMetrics, component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// NewNopAppMetrics returns metrics that discard every observation.
func NewNopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:      noopCounterVec{},
		HTTPRequestDuration:    noopHistogramVec{},
		HTTPActiveRequests:     noopGaugeVec{},
		GRPCRequestsTotal:      noopCounterVec{},
		GRPCRequestDuration:    noopHistogramVec{},
		AnalysesTotal:          noopCounterVec{},
		AnalysisDuration:       noopHistogramVec{},
		AnalysisCandidateCount: noopHistogramVec{},
		BatchSize:              noopHistogramVec{},
		ElementLookupsTotal:    noopCounterVec{},
		CacheHitsTotal:         noopCounterVec{},
		CacheMissesTotal:       noopCounterVec{},
		EventsPublishedTotal:   noopCounterVec{},
		ReportsArchivedTotal:   noopCounterVec{},
		FeedClients:            noopGaugeVec{},
		DBQueryDuration:        noopHistogramVec{},
		ErrorsTotal:            noopCounterVec{},
	}
}
