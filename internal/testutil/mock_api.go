// Package testutil provides testing utilities for the Pulse API client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock Pulse endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock Pulse server for testing. Page chains are
// scripted per collection path; requests are tracked so tests can assert
// exactly which pages a traversal touched.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	RequestedURIs     []string
	LastRequestHeader http.Header
}

// NewMockAPI creates a new mock Pulse server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.RequestedURIs = append(mock.RequestedURIs, r.URL.RequestURI())
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.RequestedURIs = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if resp.Headers["Content-Type"] == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPages scripts a cursor chain for a collection path. Each page is a list
// of raw JSON records. Page n is served at path?cursor=n; every page except
// the last carries an absolute $next URL to its successor, the last carries
// null. An empty slice scripts an empty page, cursor included, which lets
// tests prove that traversals stop there.
func (m *MockAPI) SetPages(path string, pages ...[]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		idx, _ := strconv.Atoi(r.URL.Query().Get("cursor"))
		if idx < 0 || idx >= len(pages) {
			http.NotFound(w, r)
			return
		}

		next := ""
		if idx+1 < len(pages) {
			next = fmt.Sprintf("%s%s?cursor=%d", m.URL(), path, idx+1)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(PageBody(pages[idx], next)))
	})
}

// SetEndlessPages scripts a collection that never runs out: every page holds
// perPage generated records and a cursor to the next page. Only bounded
// policies terminate against it.
func (m *MockAPI) SetEndlessPages(path string, perPage int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		idx, _ := strconv.Atoi(r.URL.Query().Get("cursor"))

		records := make([]string, perPage)
		for i := range records {
			records[i] = fmt.Sprintf(`{"id": "p%d-%d"}`, idx, i)
		}
		next := fmt.Sprintf("%s%s?cursor=%d", m.URL(), path, idx+1)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(PageBody(records, next)))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequestedURIs returns the request URIs seen so far, in order.
func (m *MockAPI) GetRequestedURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uris := make([]string, len(m.RequestedURIs))
	copy(uris, m.RequestedURIs)
	return uris
}

// LastBearerToken returns the bearer credential of the most recent request,
// or "" when none was sent.
func (m *MockAPI) LastBearerToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LastRequestHeader == nil {
		return ""
	}
	auth := m.LastRequestHeader.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// defaultHandler rejects unscripted paths loudly. A silent 200 would decode
// as an empty page and make traversals end quietly, hiding test bugs.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `{"error": "no handler for %s"}`, r.URL.Path)
}

// PageBody builds a page envelope from raw JSON records and a next URL.
// next == "" encodes the null cursor.
func PageBody(records []string, next string) string {
	nextJSON := "null"
	if next != "" {
		nextJSON = strconv.Quote(next)
	}
	return fmt.Sprintf(`{"$data": [%s], "$next": %s}`, strings.Join(records, ", "), nextJSON)
}

// NewPageResponse creates a 200 response carrying one page envelope.
func NewPageResponse(records []string, next string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       PageBody(records, next),
	}
}

// NewEmptyPageResponse creates a 200 response with an empty page. A non-empty
// next scripts the server handing out a cursor alongside no data.
func NewEmptyPageResponse(next string) MockResponse {
	return NewPageResponse(nil, next)
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "internal server error"}`,
	}
}

// NewUnauthorizedResponse creates a 401 response for credential tests.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"error": "invalid bearer token"}`,
	}
}

// NewMalformedResponse creates a 200 response whose body is not a valid page
// envelope.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"$data": "not an array"`,
	}
}
