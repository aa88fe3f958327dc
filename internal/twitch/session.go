// Package twitch walks the Twitch Helix and legacy v5 APIs: it resolves
// channels and broadcasts, pages through clip searches and replayed chat, and
// derives HLS manifest URLs for stored videos.
package twitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"vodgrep/internal/extract"
	"vodgrep/internal/httputil"
)

// LegacyClientID is the client id the v5 comments endpoint insists on,
// independent of the credentials the session was created with.
const LegacyClientID = "kimne78kx3ncx6brgo4mv6wki5h1ko"

const userAgent = "vodgrep/1.0"

// Endpoints are the base URLs of the two API hosts.
type Endpoints struct {
	API string // Helix and legacy resources
	ID  string // OAuth token exchange
}

// DefaultEndpoints point at production.
var DefaultEndpoints = Endpoints{
	API: "https://api.twitch.tv",
	ID:  "https://id.twitch.tv",
}

type options struct {
	client         *http.Client
	endpoints      Endpoints
	legacyClientID string
	retry          httputil.RetryConfig
	limiter        *rate.Limiter
	concurrency    int
	now            func() time.Time
}

// Option configures a Session.
type Option func(*options)

// WithHTTPClient replaces the hardened default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.client = httputil.NewClient(d) }
}

// WithEndpoints points the session at different hosts.
func WithEndpoints(e Endpoints) Option {
	return func(o *options) { o.endpoints = e }
}

// WithLegacyClientID overrides the client id sent to the v5 comments endpoint.
func WithLegacyClientID(id string) Option {
	return func(o *options) { o.legacyClientID = id }
}

// WithRetry sets how idempotent requests are retried.
func WithRetry(rc httputil.RetryConfig) Option {
	return func(o *options) { o.retry = rc }
}

// WithRateLimit paces requests to perSecond. Zero or negative disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// WithConcurrency bounds how many broadcasts are resolved at once.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = max(1, n) }
}

// WithClock overrides the source of "now" used for clip search windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func defaultOptions() options {
	return options{
		client:         httputil.NewClient(httputil.DefaultTimeout),
		endpoints:      DefaultEndpoints,
		legacyClientID: LegacyClientID,
		retry:          httputil.DefaultRetryConfig,
		limiter:        rate.NewLimiter(rate.Limit(10), 10),
		concurrency:    4,
		now:            time.Now,
	}
}

// Session is an authenticated API client. It is immutable once returned by
// Authenticate and safe for concurrent use.
type Session struct {
	clientID     string
	clientSecret string
	token        *oauth2.Token
	opts         options
}

// Authenticate exchanges client credentials for an app access token.
// Any failure is an *AuthError and is never retried.
func Authenticate(ctx context.Context, clientID, clientSecret string, opts ...Option) (*Session, error) {
	if clientID == "" || clientSecret == "" {
		return nil, &AuthError{Err: errors.New("client id and client secret are required")}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		clientID:     clientID,
		clientSecret: clientSecret,
		opts:         o,
	}

	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", clientID)
	q.Set("client_secret", clientSecret)
	tokenURL := httputil.BuildURL(o.endpoints.ID, q, "oauth2", "token")
	if err := httputil.ValidateURL(tokenURL); err != nil {
		return nil, &AuthError{Err: fmt.Errorf("identity endpoint: %w", err)}
	}

	body, err := s.do(ctx, http.MethodPost, tokenURL, true)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("%s is unreachable or the client id/secret is invalid: %w", o.endpoints.ID, err)}
	}

	doc := extract.Parse(body)
	access, ok := doc.First("access_token")
	if !ok || access == "" {
		return nil, &AuthError{Err: errors.New("no access_token in identity response")}
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if raw, ok := doc.First("expires_in"); ok {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			tok.Expiry = o.now().Add(time.Duration(secs) * time.Second)
		}
	}
	s.token = tok

	return s, nil
}

// ClientID returns the client id the session authenticated with.
func (s *Session) ClientID() string {
	return s.clientID
}

// Expiry returns when the bearer token lapses, zero if the server did not say.
func (s *Session) Expiry() time.Time {
	return s.token.Expiry
}

// Fetch issues a request and returns the response body. The bearer token is
// always attached; the Client-Id header only when includeClientHeader is set.
// GET and HEAD are retried on transient failures, other methods are not.
func (s *Session) Fetch(ctx context.Context, method, rawURL string, includeClientHeader bool) ([]byte, error) {
	if err := httputil.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	rc := s.opts.retry
	if method != http.MethodGet && method != http.MethodHead {
		rc = httputil.NoRetry
	}

	return httputil.RetryDo(ctx, rc, func() ([]byte, error) {
		return s.do(ctx, method, rawURL, includeClientHeader)
	})
}

func (s *Session) do(ctx context.Context, method, rawURL string, includeClientHeader bool) ([]byte, error) {
	if err := s.opts.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if includeClientHeader {
		req.Header.Set("Client-Id", s.clientID)
	}
	if s.token != nil {
		s.token.SetAuthHeader(req)
	}

	resp, err := s.opts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", redactError(err))
	}

	return httputil.ReadBody(resp, redactURL(rawURL))
}

func (s *Session) apiURL(query url.Values, segments ...string) string {
	return httputil.BuildURL(s.opts.endpoints.API, query, segments...)
}

// redactURL hides the client secret in URLs that end up in error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has("client_secret") {
		return rawURL
	}
	q.Set("client_secret", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}

func redactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redactURL(urlErr.URL), Err: urlErr.Err}
	}
	return err
}

// PendingSession is a token exchange running in the background.
type PendingSession struct {
	done    chan struct{}
	session *Session
	err     error
}

// AuthenticateAsync starts Authenticate in its own goroutine so the exchange
// can overlap with other setup. Wait joins it.
func AuthenticateAsync(ctx context.Context, clientID, clientSecret string, opts ...Option) *PendingSession {
	p := &PendingSession{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.session, p.err = Authenticate(ctx, clientID, clientSecret, opts...)
	}()
	return p
}

// Wait blocks until authentication has finished and returns its result.
// It may be called any number of times.
func (p *PendingSession) Wait(ctx context.Context) (*Session, error) {
	select {
	case <-p.done:
		return p.session, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
