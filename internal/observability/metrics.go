package observability

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsConfig holds configuration for the metrics subsystem.
type MetricsConfig struct {
	// Enabled controls whether /metrics is served.
	Enabled bool `yaml:"enabled"`
	// Namespace prefix for all metrics (default: leadsearch).
	Namespace string `yaml:"namespace"`
	// Version is the application version for the info metric.
	Version string `yaml:"-"`
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "leadsearch",
		Version:   "dev",
	}
}

// ApplyEnv overrides cfg from the environment.
// LEADSEARCH_METRICS_ENABLED: true/false
// APP_VERSION: version string
func (cfg MetricsConfig) ApplyEnv() MetricsConfig {
	if v := os.Getenv("LEADSEARCH_METRICS_ENABLED"); v != "" {
		cfg.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("APP_VERSION"); v != "" {
		cfg.Version = v
	}
	return cfg
}

// Metrics collects request and search counters and renders them in the
// Prometheus text format. Safe for concurrent use; a nil *Metrics records
// nothing.
type Metrics struct {
	namespace string
	version   string

	mu       sync.Mutex
	requests map[string]*atomic.Int64 // "method path status"
	searches map[string]*atomic.Int64 // "criterion mode"
	failures map[string]*atomic.Int64 // criterion
	latency  map[string]*durationCollector

	auditFailures     atomic.Int64
	rateLimitRejected atomic.Int64
	inFlight          atomic.Int64
}

// NewMetrics creates a new Metrics collector.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "leadsearch"
	}
	return &Metrics{
		namespace: cfg.Namespace,
		version:   cfg.Version,
		requests:  make(map[string]*atomic.Int64),
		searches:  make(map[string]*atomic.Int64),
		failures:  make(map[string]*atomic.Int64),
		latency:   make(map[string]*durationCollector),
	}
}

func (m *Metrics) counter(set map[string]*atomic.Int64, key string) *atomic.Int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := set[key]
	if !ok {
		c = &atomic.Int64{}
		set[key] = c
	}
	return c
}

// RecordHTTPRequest records one finished request. Paths are registered
// routes so cardinality stays bounded.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.counter(m.requests, fmt.Sprintf("%s %s %d", method, path, statusCode)).Add(1)

	key := method + " " + path
	m.mu.Lock()
	dc, ok := m.latency[key]
	if !ok {
		dc = newDurationCollector(1000)
		m.latency[key] = dc
	}
	m.mu.Unlock()
	dc.add(duration)
}

// RecordSearch counts an executed lead search.
func (m *Metrics) RecordSearch(criterion, mode string) {
	if m == nil {
		return
	}
	m.counter(m.searches, criterion+" "+mode).Add(1)
}

// RecordSearchFailure counts a search that failed in the datastore.
func (m *Metrics) RecordSearchFailure(criterion string) {
	if m == nil {
		return
	}
	m.counter(m.failures, criterion).Add(1)
}

// RecordAuditFailure counts a search audit entry that could not be written.
func (m *Metrics) RecordAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Add(1)
}

// RecordRateLimitRejected counts a request refused by the rate limiter.
func (m *Metrics) RecordRateLimitRejected() {
	if m == nil {
		return
	}
	m.rateLimitRejected.Add(1)
}

// Handler returns an http.Handler that serves Prometheus-format metrics.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.WritePrometheus(w)
	})
}

// WritePrometheus writes all metrics in Prometheus text format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	ns := m.namespace
	fmt.Fprintf(w, "# HELP %s_info Application information\n# TYPE %s_info gauge\n", ns, ns)
	fmt.Fprintf(w, "%s_info{version=%q} 1\n\n", ns, m.version)

	fmt.Fprintf(w, "# HELP %s_http_requests_total Total number of HTTP requests\n# TYPE %s_http_requests_total counter\n", ns, ns)
	for _, kv := range m.snapshot(m.requests) {
		parts := strings.SplitN(kv.key, " ", 3)
		fmt.Fprintf(w, "%s_http_requests_total{method=%q,path=%q,status=%q} %d\n", ns, parts[0], parts[1], parts[2], kv.value)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP %s_http_request_duration_seconds HTTP request duration in seconds\n# TYPE %s_http_request_duration_seconds summary\n", ns, ns)
	m.mu.Lock()
	keys := make([]string, 0, len(m.latency))
	for k := range m.latency {
		keys = append(keys, k)
	}
	collectors := make(map[string]*durationCollector, len(m.latency))
	for k, v := range m.latency {
		collectors[k] = v
	}
	m.mu.Unlock()
	sort.Strings(keys)
	for _, key := range keys {
		dc := collectors[key]
		method, path, _ := strings.Cut(key, " ")
		for _, q := range []float64{0.5, 0.9, 0.99} {
			fmt.Fprintf(w, "%s_http_request_duration_seconds{method=%q,path=%q,quantile=\"%.2f\"} %.6f\n", ns, method, path, q, dc.quantile(q))
		}
		fmt.Fprintf(w, "%s_http_request_duration_seconds_sum{method=%q,path=%q} %.6f\n", ns, method, path, dc.sum())
		fmt.Fprintf(w, "%s_http_request_duration_seconds_count{method=%q,path=%q} %d\n", ns, method, path, dc.count())
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP %s_lead_searches_total Lead searches executed\n# TYPE %s_lead_searches_total counter\n", ns, ns)
	for _, kv := range m.snapshot(m.searches) {
		criterion, mode, _ := strings.Cut(kv.key, " ")
		fmt.Fprintf(w, "%s_lead_searches_total{criterion=%q,match=%q} %d\n", ns, criterion, mode, kv.value)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP %s_lead_search_failures_total Lead searches that failed in the datastore\n# TYPE %s_lead_search_failures_total counter\n", ns, ns)
	for _, kv := range m.snapshot(m.failures) {
		fmt.Fprintf(w, "%s_lead_search_failures_total{criterion=%q} %d\n", ns, kv.key, kv.value)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP %s_search_audit_failures_total Search audit entries that could not be written\n# TYPE %s_search_audit_failures_total counter\n", ns, ns)
	fmt.Fprintf(w, "%s_search_audit_failures_total %d\n\n", ns, m.auditFailures.Load())

	fmt.Fprintf(w, "# HELP %s_rate_limit_rejected_total Requests refused by the rate limiter\n# TYPE %s_rate_limit_rejected_total counter\n", ns, ns)
	fmt.Fprintf(w, "%s_rate_limit_rejected_total %d\n\n", ns, m.rateLimitRejected.Load())

	fmt.Fprintf(w, "# HELP %s_http_requests_in_flight Requests currently being served\n# TYPE %s_http_requests_in_flight gauge\n", ns, ns)
	fmt.Fprintf(w, "%s_http_requests_in_flight %d\n", ns, m.inFlight.Load())
}

type keyValue struct {
	key   string
	value int64
}

func (m *Metrics) snapshot(set map[string]*atomic.Int64) []keyValue {
	m.mu.Lock()
	out := make([]keyValue, 0, len(set))
	for k, v := range set {
		out = append(out, keyValue{k, v.Load()})
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// MetricsMiddleware returns an HTTP middleware that records request metrics.
// route maps a request to the label used for its path.
func MetricsMiddleware(m *Metrics, route func(*http.Request) string) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if route == nil {
		route = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			m.inFlight.Add(1)
			defer m.inFlight.Add(-1)

			start := time.Now()
			sw := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(sw, r)
			m.RecordHTTPRequest(r.Method, route(r), sw.Status, time.Since(start))
		})
	}
}

// StatusRecorder wraps http.ResponseWriter to capture the status code.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (w *StatusRecorder) WriteHeader(code int) {
	w.Status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *StatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// durationCollector keeps a sliding window of duration samples for
// quantile computation.
type durationCollector struct {
	mu      sync.Mutex
	samples []float64
	maxSize int
}

func newDurationCollector(maxSize int) *durationCollector {
	return &durationCollector{samples: make([]float64, 0, maxSize), maxSize: maxSize}
}

func (d *durationCollector) add(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.samples) >= d.maxSize {
		copy(d.samples, d.samples[1:])
		d.samples = d.samples[:len(d.samples)-1]
	}
	d.samples = append(d.samples, duration.Seconds())
}

func (d *durationCollector) quantile(q float64) float64 {
	d.mu.Lock()
	sorted := append([]float64(nil), d.samples...)
	d.mu.Unlock()
	if len(sorted) == 0 {
		return 0
	}
	sort.Float64s(sorted)

	idx := q * float64(len(sorted)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func (d *durationCollector) sum() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var total float64
	for _, s := range d.samples {
		total += s
	}
	return total
}

func (d *durationCollector) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.samples)
}
