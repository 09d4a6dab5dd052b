// Package testutil provides fixtures and assertion helpers shared by the
// leadsearch tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// DoRequest performs an HTTP request and returns the response.
func DoRequest(t *testing.T, client *http.Client, req *http.Request) *http.Response {
	t.Helper()

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, got, expected int) {
	t.Helper()

	if got != expected {
		t.Errorf("expected status %d, got %d", expected, got)
	}
}

// AssertContains checks that the body contains the expected string.
func AssertContains(t *testing.T, body io.Reader, expected string) {
	t.Helper()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !bytes.Contains(data, []byte(expected)) {
		t.Errorf("expected body to contain %q, got: %s", expected, string(data))
	}
}

// AssertHeader checks that the response has the expected header value.
func AssertHeader(t *testing.T, resp *http.Response, key, expected string) {
	t.Helper()

	if got := resp.Header.Get(key); got != expected {
		t.Errorf("expected header %s=%q, got %q", key, expected, got)
	}
}

// AssertHeaderExists checks that the response has the specified header.
func AssertHeaderExists(t *testing.T, resp *http.Response, key string) {
	t.Helper()

	if resp.Header.Get(key) == "" {
		t.Errorf("expected header %s to exist", key)
	}
}

// ReadJSONResponse reads and unmarshals a JSON response body.
func ReadJSONResponse(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to unmarshal response: %v\nBody: %s", err, string(data))
	}
}
