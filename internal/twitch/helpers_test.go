package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"vodgrep/internal/httputil"
)

const (
	testClientID     = "test-client"
	testClientSecret = "s3cr3t-value"
	testToken        = "test-token"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// recorder keeps every request the fake API served, in arrival order.
type recorder struct {
	mu   sync.Mutex
	reqs []*http.Request
}

func (r *recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.reqs = append(r.reqs, req.Clone(context.Background()))
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

// served returns the requests made to path.
func (r *recorder) served(path string) []*http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*http.Request
	for _, req := range r.reqs {
		if req.URL.Path == path {
			out = append(out, req)
		}
	}
	return out
}

func tokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"access_token":"` + testToken + `","expires_in":5011271,"token_type":"bearer"}`))
}

func testOptions(srv *httptest.Server) []Option {
	return []Option{
		WithHTTPClient(srv.Client()),
		WithEndpoints(Endpoints{API: srv.URL, ID: srv.URL}),
		WithRateLimit(0),
		WithRetry(httputil.RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}),
		WithClock(func() time.Time { return testNow }),
	}
}

// newTestSession serves mux behind TLS, adds the token endpoint, and
// authenticates against it.
func newTestSession(t *testing.T, mux *http.ServeMux) (*Session, *recorder) {
	t.Helper()

	mux.HandleFunc("POST /oauth2/token", tokenHandler)

	rec := &recorder{}
	srv := httptest.NewTLSServer(rec.wrap(mux))
	t.Cleanup(srv.Close)

	s, err := Authenticate(context.Background(), testClientID, testClientSecret, testOptions(srv)...)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return s, rec
}

func serveFile(t *testing.T, name string) http.HandlerFunc {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", name, err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func serveString(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}
