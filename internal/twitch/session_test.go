package twitch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestAuthenticate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/helix/users", serveString(`{"data":[]}`))
	s, rec := newTestSession(t, mux)

	tokenReqs := rec.served("/oauth2/token")
	if len(tokenReqs) != 1 {
		t.Fatalf("token requests = %d, want 1", len(tokenReqs))
	}
	q := tokenReqs[0].URL.Query()
	if q.Get("grant_type") != "client_credentials" {
		t.Errorf("grant_type = %q, want client_credentials", q.Get("grant_type"))
	}
	if q.Get("client_id") != testClientID || q.Get("client_secret") != testClientSecret {
		t.Errorf("credentials not sent: %v", q)
	}

	if s.ClientID() != testClientID {
		t.Errorf("ClientID() = %q, want %q", s.ClientID(), testClientID)
	}
	if want := testNow.Add(5011271 * time.Second); !s.Expiry().Equal(want) {
		t.Errorf("Expiry() = %v, want %v", s.Expiry(), want)
	}
}

func TestFetchHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/helix/users", serveString(`{"data":[]}`))
	s, rec := newTestSession(t, mux)

	ctx := context.Background()
	url := s.apiURL(nil, "helix", "users")

	if _, err := s.Fetch(ctx, http.MethodGet, url, true); err != nil {
		t.Fatalf("Fetch with client header: %v", err)
	}
	if _, err := s.Fetch(ctx, http.MethodGet, url, false); err != nil {
		t.Fatalf("Fetch without client header: %v", err)
	}

	reqs := rec.served("/helix/users")
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	for i, req := range reqs {
		if got := req.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("request %d Authorization = %q, want Bearer %s", i, got, testToken)
		}
	}
	if got := reqs[0].Header.Get("Client-Id"); got != testClientID {
		t.Errorf("Client-Id = %q, want %q", got, testClientID)
	}
	if got := reqs[1].Header.Get("Client-Id"); got != "" {
		t.Errorf("Client-Id = %q, want it omitted", got)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	closed := httptest.NewTLSServer(http.NotFoundHandler())
	closedURL := closed.URL
	closedClient := closed.Client()
	closed.Close()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		id      string
		secret  string
	}{
		{
			name: "rejected credentials",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"status":403,"message":"invalid client secret"}`, http.StatusForbidden)
			},
			id: testClientID, secret: testClientSecret,
		},
		{
			name:    "no token in response",
			handler: serveString(`{"status":400,"message":"missing client id"}`),
			id:      testClientID, secret: testClientSecret,
		},
		{
			name:    "empty token",
			handler: serveString(`{"access_token":""}`),
			id:      testClientID, secret: testClientSecret,
		},
		{
			name:    "truncated response",
			handler: serveString(`{"access_tok`),
			id:      testClientID, secret: testClientSecret,
		},
		{
			name:    "missing secret",
			handler: tokenHandler,
			id:      testClientID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewTLSServer(tt.handler)
			defer srv.Close()

			_, err := Authenticate(context.Background(), tt.id, tt.secret, testOptions(srv)...)
			var authErr *AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("Authenticate error = %v, want *AuthError", err)
			}
			if strings.Contains(err.Error(), testClientSecret) {
				t.Errorf("error leaks the client secret: %v", err)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		_, err := Authenticate(context.Background(), testClientID, testClientSecret,
			WithHTTPClient(closedClient),
			WithEndpoints(Endpoints{API: closedURL, ID: closedURL}),
			WithRateLimit(0),
		)
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("Authenticate error = %v, want *AuthError", err)
		}
		if strings.Contains(err.Error(), testClientSecret) {
			t.Errorf("error leaks the client secret: %v", err)
		}
	})

	t.Run("plain http", func(t *testing.T) {
		_, err := Authenticate(context.Background(), testClientID, testClientSecret,
			WithEndpoints(Endpoints{API: "http://api.example", ID: "http://id.example"}),
		)
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("Authenticate error = %v, want *AuthError", err)
		}
	})
}

func TestAuthenticateIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := Authenticate(context.Background(), testClientID, testClientSecret, testOptions(srv)...); err == nil {
		t.Fatal("expected an error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("token endpoint called %d times, want 1", got)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	})
	s, _ := newTestSession(t, mux)

	if _, err := s.Fetch(context.Background(), http.MethodGet, s.apiURL(nil, "helix", "users"), true); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestFetchRetriesAfterTimeout(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", tokenHandler)
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
			}
			return
		}
		w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 100 * time.Millisecond
	opts := append(testOptions(srv), WithHTTPClient(client))

	s, err := Authenticate(context.Background(), testClientID, testClientSecret, opts...)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if _, err := s.Fetch(context.Background(), http.MethodGet, s.apiURL(nil, "helix", "users"), true); err != nil {
		t.Fatalf("Fetch after a stalled first attempt: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestFetchHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})
	s, rec := newTestSession(t, mux)

	_, err := s.Fetch(context.Background(), http.MethodGet, s.apiURL(nil, "helix", "users"), true)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Fetch error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", httpErr.StatusCode)
	}
	if got := len(rec.served("/helix/users")); got != 1 {
		t.Errorf("4xx was retried: %d requests", got)
	}
}

func TestFetchRejectsInsecureURL(t *testing.T) {
	s, _ := newTestSession(t, http.NewServeMux())

	if _, err := s.Fetch(context.Background(), http.MethodGet, "http://api.twitch.tv/helix/users", true); err == nil {
		t.Error("expected an error for a plain HTTP URL")
	}
}

func TestAuthenticateAsync(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(tokenHandler))
	defer srv.Close()

	ctx := context.Background()
	pending := AuthenticateAsync(ctx, testClientID, testClientSecret, testOptions(srv)...)

	first, err := pending.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	second, err := pending.Wait(ctx)
	if err != nil || second != first {
		t.Errorf("second Wait = %p, %v; want the same session", second, err)
	}
}

func TestAuthenticateAsyncWaitCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		tokenHandler(w, r)
	}))
	defer srv.Close()
	defer close(release)

	pending := AuthenticateAsync(context.Background(), testClientID, testClientSecret, testOptions(srv)...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pending.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v, want context.Canceled", err)
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://id.twitch.tv/oauth2/token?client_id=a&client_secret=hunter2&grant_type=client_credentials")
	if strings.Contains(got, "hunter2") {
		t.Errorf("redactURL kept the secret: %s", got)
	}
	if !strings.Contains(got, "client_id=a") {
		t.Errorf("redactURL dropped other parameters: %s", got)
	}

	plain := "https://api.twitch.tv/helix/users?login=twitch"
	if got := redactURL(plain); got != plain {
		t.Errorf("redactURL(%q) = %q, want it unchanged", plain, got)
	}
}
