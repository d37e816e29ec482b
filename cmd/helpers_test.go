package cmd

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// lastFMServer answers Last.fm methods with canned <lfm> bodies.
type lastFMServer struct {
	t       *testing.T
	mu      sync.Mutex
	bodies  map[string]func(url.Values) string
	methods []string
	server  *httptest.Server
}

func newLastFMServer(t *testing.T) *lastFMServer {
	s := &lastFMServer{t: t, bodies: make(map[string]func(url.Values) string)}
	s.server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.server.Close)
	return s
}

func (s *lastFMServer) on(method, body string) *lastFMServer {
	return s.onFunc(method, func(url.Values) string { return body })
}

func (s *lastFMServer) onFunc(method string, fn func(url.Values) string) *lastFMServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[method] = fn
	return s
}

func (s *lastFMServer) calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, m := range s.methods {
		if m == method {
			n++
		}
	}
	return n
}

func (s *lastFMServer) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.t.Errorf("failed to parse form: %v", err)
	}
	method := r.Form.Get("method")

	s.mu.Lock()
	s.methods = append(s.methods, method)
	fn, ok := s.bodies[method]
	s.mu.Unlock()

	if !ok {
		s.t.Errorf("unexpected method %q", method)
		_, _ = w.Write([]byte(`<lfm status="failed"><error code="3">Invalid Method</error></lfm>`))
		return
	}
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>` + "\n" + fn(r.Form)))
}

// newClient builds a client for cfg that talks to the fake server.
func (s *lastFMServer) newClient(cfg lastfm.Config) (*lastfm.Client, error) {
	cfg.BaseURL = s.server.URL
	cfg.MaxRetries = 1
	return lastfm.NewClient(cfg)
}

func (s *lastFMServer) client() *lastfm.Client {
	s.t.Helper()
	c, err := s.newClient(lastfm.Config{APIKey: "test-key"})
	require.NoError(s.t, err)
	return c
}
