package jira

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordedRequest stores what the mock server received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// mockJira is an httptest server that records requests and delegates to a
// per-test handler.
type mockJira struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newMockJira(t *testing.T, handler http.HandlerFunc) *mockJira {
	t.Helper()

	m := &mockJira{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.requests = append(m.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		m.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockJira) Requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *mockJira) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// newDirectClient returns a direct-mode client pointed at the mock server.
func newDirectClient(t *testing.T, m *mockJira) *Client {
	t.Helper()
	c, err := NewClient(
		Direct{SiteURL: m.URL},
		Credentials{Email: "ops@example.com", APIToken: "secret"},
	)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
