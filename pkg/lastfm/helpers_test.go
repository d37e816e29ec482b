package lastfm

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// lfmOK wraps body in a successful <lfm> envelope.
func lfmOK(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<lfm status="ok">` + body + `</lfm>`
}

// lfmFailed returns a failed <lfm> envelope.
func lfmFailed(code int, message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<lfm status="failed"><error code="%d">%s</error></lfm>`, code, message)
}

// fakeAPI answers Last.fm methods from canned handlers and records every
// request it receives.
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]func(url.Values) string
	requests []*http.Request
	forms    []url.Values
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{t: t, handlers: make(map[string]func(url.Values) string)}
}

// on registers a static response for method.
func (f *fakeAPI) on(method, body string) *fakeAPI {
	return f.onFunc(method, func(url.Values) string { return body })
}

// onFunc registers a response built from the request parameters.
func (f *fakeAPI) onFunc(method string, fn func(url.Values) string) *fakeAPI {
	f.handlers[method] = fn
	return f
}

// calls returns how many requests named method.
func (f *fakeAPI) calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, form := range f.forms {
		if form.Get("method") == method {
			n++
		}
	}
	return n
}

// lastForm returns the parameters of the most recent request.
func (f *fakeAPI) lastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.forms) == 0 {
		return nil
	}
	return f.forms[len(f.forms)-1]
}

// lastHTTPMethod returns the HTTP verb of the most recent request.
func (f *fakeAPI) lastHTTPMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.requests) == 0 {
		return ""
	}
	return f.requests[len(f.requests)-1].Method
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.t.Errorf("failed to parse form: %v", err)
	}

	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.forms = append(f.forms, r.Form)
	fn, ok := f.handlers[r.Form.Get("method")]
	f.mu.Unlock()

	if !ok {
		f.t.Errorf("unexpected method %q", r.Form.Get("method"))
		_, _ = w.Write([]byte(lfmFailed(ErrCodeInvalidMethod, "Invalid Method")))
		return
	}
	_, _ = w.Write([]byte(fn(r.Form)))
}

// client starts a server for f and returns a client pointed at it. cfg
// fields other than BaseURL are kept.
func (f *fakeAPI) client(cfg Config) *Client {
	f.t.Helper()

	server := httptest.NewServer(f)
	f.t.Cleanup(server.Close)

	if cfg.APIKey == "" {
		cfg.APIKey = "test-api-key"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	cfg.BaseURL = server.URL

	c, err := NewClient(cfg)
	if err != nil {
		f.t.Fatalf("failed to create client: %v", err)
	}
	return c
}
