package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	if !cfg.Enabled || cfg.Namespace != "leadsearch" || cfg.Version != "dev" {
		t.Errorf("DefaultMetricsConfig() = %+v", cfg)
	}
}

func TestMetricsConfigApplyEnv(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{"nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LEADSEARCH_METRICS_ENABLED", tt.env)
			t.Setenv("APP_VERSION", "1.2.3")
			cfg := DefaultMetricsConfig().ApplyEnv()
			if cfg.Enabled != tt.want {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.want)
			}
			if cfg.Version != "1.2.3" {
				t.Errorf("Version = %q", cfg.Version)
			}
		})
	}
}

func render(m *Metrics) string {
	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	return buf.String()
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())
	m.RecordHTTPRequest("GET", "/search/leads", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/search/leads", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("POST", "/search/leads", 401, time.Millisecond)

	out := render(m)
	for _, want := range []string{
		`leadsearch_http_requests_total{method="GET",path="/search/leads",status="200"} 2`,
		`leadsearch_http_requests_total{method="POST",path="/search/leads",status="401"} 1`,
		`leadsearch_http_request_duration_seconds_count{method="GET",path="/search/leads"} 2`,
		`leadsearch_info{version="dev"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestSearchMetrics(t *testing.T) {
	m := NewMetrics(MetricsConfig{Namespace: "test"})
	m.RecordSearch("fname", "substring")
	m.RecordSearch("fname", "substring")
	m.RecordSearch("crm_id", "exact")
	m.RecordSearchFailure("email")
	m.RecordAuditFailure()
	m.RecordRateLimitRejected()
	m.RecordRateLimitRejected()

	out := render(m)
	for _, want := range []string{
		`test_lead_searches_total{criterion="fname",match="substring"} 2`,
		`test_lead_searches_total{criterion="crm_id",match="exact"} 1`,
		`test_lead_search_failures_total{criterion="email"} 1`,
		`test_search_audit_failures_total 1`,
		`test_rate_limit_rejected_total 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordSearch("fname", "substring")
	m.RecordSearchFailure("fname")
	m.RecordAuditFailure()
	m.RecordRateLimitRejected()
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())
	m.RecordSearch("lname", "substring")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), `leadsearch_lead_searches_total{criterion="lname",match="substring"} 1`) {
		t.Errorf("body missing search counter:\n%s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rr.Code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())
	h := MetricsMiddleware(m, func(*http.Request) string { return "/search/leads" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.inFlight.Load() != 1 {
			t.Errorf("in flight = %d during request", m.inFlight.Load())
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/search/leads?page=3", nil))

	// Scrapes are neither counted nor tracked as in flight.
	scrape := MetricsMiddleware(m, func(r *http.Request) string { return r.URL.Path })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.inFlight.Load() != 0 {
			t.Errorf("in flight = %d during scrape", m.inFlight.Load())
		}
	}))
	scrape.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	out := render(m)
	if !strings.Contains(out, `leadsearch_http_requests_total{method="GET",path="/search/leads",status="401"} 1`) {
		t.Errorf("request not recorded:\n%s", out)
	}
	if strings.Contains(out, `path="/metrics"`) {
		t.Errorf("scrape recorded:\n%s", out)
	}
	if m.inFlight.Load() != 0 {
		t.Errorf("in flight = %d after request", m.inFlight.Load())
	}
}

func TestMetricsMiddlewareNil(t *testing.T) {
	called := false
	h := MetricsMiddleware(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("next handler not called")
	}
}

func TestStatusRecorderUnwrap(t *testing.T) {
	rr := httptest.NewRecorder()
	sr := &StatusRecorder{ResponseWriter: rr, Status: http.StatusOK}
	if sr.Unwrap() != rr {
		t.Error("Unwrap() should return the wrapped writer")
	}
	sr.WriteHeader(http.StatusTeapot)
	if sr.Status != http.StatusTeapot || rr.Code != http.StatusTeapot {
		t.Errorf("status = %d / %d", sr.Status, rr.Code)
	}
}

func TestDurationCollector(t *testing.T) {
	dc := newDurationCollector(3)
	if dc.quantile(0.5) != 0 {
		t.Error("empty collector quantile should be 0")
	}
	for _, ms := range []int{10, 20, 30, 40} {
		dc.add(time.Duration(ms) * time.Millisecond)
	}
	if dc.count() != 3 {
		t.Fatalf("count = %d, want 3 after eviction", dc.count())
	}
	if got := dc.quantile(0.5); got < 0.0299 || got > 0.0301 {
		t.Errorf("median = %f, want 0.03", got)
	}
	if got := dc.sum(); got < 0.0899 || got > 0.0901 {
		t.Errorf("sum = %f, want 0.09", got)
	}
}

func TestMetricsConcurrentAccess(t *testing.T) {
	m := NewMetrics(DefaultMetricsConfig())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.RecordSearch("fname", "substring")
				m.RecordHTTPRequest("GET", "/search/leads", 200, time.Millisecond)
				_ = render(m)
			}
		}()
	}
	wg.Wait()
	if !strings.Contains(render(m), `leadsearch_lead_searches_total{criterion="fname",match="substring"} 1000`) {
		t.Error("concurrent searches not all counted")
	}
}
