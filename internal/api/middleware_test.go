package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"leadsearch/internal/auth"
	"leadsearch/internal/observability"
)

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var captured string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = observability.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get(requestIDHeader); got == "" {
		t.Fatalf("expected request id header to be set")
	}
	if captured == "" || captured != rr.Header().Get(requestIDHeader) {
		t.Fatalf("context request id %q does not match header", captured)
	}
}

func TestRequestIDMiddlewareIncoming(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"valid id kept", "req-123_abc.def", true},
		{"spaces trimmed", "  req-9  ", true},
		{"invalid characters replaced", "req<script>", false},
		{"too long replaced", strings.Repeat("a", maxRequestIDLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = observability.RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestIDHeader, tt.incoming)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			want := strings.TrimSpace(tt.incoming)
			if tt.keep && captured != want {
				t.Errorf("request id = %q, want %q", captured, want)
			}
			if !tt.keep && (captured == "" || captured == tt.incoming) {
				t.Errorf("request id = %q, want a generated id", captured)
			}
		})
	}
}

func TestApplyMiddlewaresOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := ApplyMiddlewares(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestLoggingMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.Config{Level: "debug", Format: "json", Output: &buf})
	handler := ApplyMiddlewares(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), RequestIDMiddleware(), LoggingMiddleware(logger))

	req := httptest.NewRequest(http.MethodGet, "/search/leads", nil)
	req.Header.Set(requestIDHeader, "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" || entry["status"] != float64(401) || entry["request_id"] != "req-42" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestLoggingMiddlewareRecoversPanic(t *testing.T) {
	handler := LoggingMiddleware(observability.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestRateLimitMiddlewareBlocksAfterBurstExhausted(t *testing.T) {
	metrics := observability.NewMetrics(observability.DefaultMetricsConfig())
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 5, Burst: 1}, nil, metrics)(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", second.Code)
	}
	retry, err := strconv.Atoi(second.Header().Get("Retry-After"))
	if err != nil || retry < 1 {
		t.Fatalf("Retry-After = %q", second.Header().Get("Retry-After"))
	}

	var out bytes.Buffer
	metrics.WritePrometheus(&out)
	if !strings.Contains(out.String(), "leadsearch_rate_limit_rejected_total 1") {
		t.Errorf("rejection not counted:\n%s", out.String())
	}

	// Wait for a token to replenish and try again.
	time.Sleep(300 * time.Millisecond)
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/", nil))
	if third.Code != http.StatusOK {
		t.Fatalf("expected third request after wait to succeed, got %d", third.Code)
	}
}

func TestRateLimitMiddlewareHeaders(t *testing.T) {
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 10, Burst: 5}, nil, nil)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}
	remaining, err := strconv.Atoi(rr.Header().Get("X-RateLimit-Remaining"))
	if err != nil || remaining < 0 || remaining > 5 {
		t.Errorf("X-RateLimit-Remaining = %q", rr.Header().Get("X-RateLimit-Remaining"))
	}
	reset, err := strconv.ParseInt(rr.Header().Get("X-RateLimit-Reset"), 10, 64)
	now := time.Now().Unix()
	if err != nil || reset < now || reset > now+2 {
		t.Errorf("X-RateLimit-Reset = %q (now %d)", rr.Header().Get("X-RateLimit-Reset"), now)
	}
}

func TestRateLimitMiddlewarePerClient(t *testing.T) {
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, nil, nil)(okHandler())

	for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", addr, rr.Code)
		}
	}
}

func TestRateLimitMiddlewareTrustedProxy(t *testing.T) {
	proxies, err := ParseTrustedProxies("10.0.0.0/8, 192.168.1.0/24")
	if err != nil {
		t.Fatalf("ParseTrustedProxies: %v", err)
	}
	handler := RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, Proxies: proxies}, nil, nil)(okHandler())

	send := func(remote, xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("10.1.1.1:80", "203.0.113.5"); code != http.StatusOK {
		t.Fatalf("first forwarded client: %d", code)
	}
	if code := send("10.1.1.1:80", "203.0.113.6, 10.1.1.1"); code != http.StatusOK {
		t.Fatalf("second forwarded client should have its own bucket: %d", code)
	}
	// An untrusted peer cannot pick its bucket through the header.
	if code := send("198.51.100.7:80", "203.0.113.99"); code != http.StatusOK {
		t.Fatalf("untrusted first request: %d", code)
	}
	if code := send("198.51.100.7:80", "203.0.113.100"); code != http.StatusTooManyRequests {
		t.Fatalf("untrusted spoofed header should share the peer bucket: %d", code)
	}
}

func TestParseTrustedProxiesInvalid(t *testing.T) {
	if _, err := ParseTrustedProxies("10.0.0.0/8,not-a-cidr"); err == nil {
		t.Fatal("expected error")
	}
	cfg, err := ParseTrustedProxies("")
	if err != nil || len(cfg.CIDRs) != 0 {
		t.Fatalf("empty list = %+v, %v", cfg, err)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	handler := RateLimitMiddleware(RateLimitConfig{}, nil, nil)(okHandler())
	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, rr.Code)
		}
		if rr.Header().Get("X-RateLimit-Limit") != "" {
			t.Fatal("disabled limiter should not set headers")
		}
	}
}

type erroringSessions struct{ auth.SessionStore }

func (erroringSessions) Get(context.Context, string) (*auth.Session, error) {
	return nil, errors.New("database is locked")
}

func TestSessionMiddleware(t *testing.T) {
	store := auth.NewMemorySessionStore()
	valid, _ := auth.NewSession(3, 8, time.Hour)
	expired, _ := auth.NewSession(3, 8, time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	for _, s := range []*auth.Session{valid, expired} {
		if err := store.Create(context.Background(), s); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name     string
		store    auth.SessionStore
		cookie   string
		wantCode int
		wantErr  error
	}{
		{"valid session", store, valid.ID, http.StatusOK, nil},
		{"no cookie", store, "", http.StatusUnauthorized, auth.ErrSessionNotFound},
		{"unknown session", store, "deadbeef", http.StatusUnauthorized, auth.ErrSessionNotFound},
		{"expired session", store, expired.ID, http.StatusUnauthorized, auth.ErrSessionExpired},
		{"store failure", erroringSessions{}, "abc", http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotErr error
			deny := func(w http.ResponseWriter, r *http.Request, code int, err error) {
				gotErr = err
				w.WriteHeader(code)
			}
			var owner, agent int64
			handler := SessionMiddleware(tt.store, nil, deny)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				owner, agent = auth.Scope(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/search/leads", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantErr != nil && !errors.Is(gotErr, tt.wantErr) {
				t.Errorf("deny error = %v, want %v", gotErr, tt.wantErr)
			}
			if tt.wantCode == http.StatusOK && (owner != 3 || agent != 8) {
				t.Errorf("scope = %d/%d, want 3/8", owner, agent)
			}
		})
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/search/leads":          "/search/leads",
		"/healthz":               "/healthz",
		"/api/v1/audit/searches": "/api/v1/audit/searches",
		"/search/leads/123":      "other",
		"/wp-admin":              "other",
	}
	for path, want := range tests {
		if got := routeLabel(httptest.NewRequest(http.MethodGet, path, nil)); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}
