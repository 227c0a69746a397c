// Package auth provides bearer tokens for the lookup services: a fixed
// token, and a handler that fetches a JWT from a token endpoint and keeps
// it fresh.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/donaldgifford/intellisearch-client/internal/metrics"
)

const (
	// DefaultTokenPath is the response field holding the token.
	DefaultTokenPath     = "jwtToken"
	defaultRefreshBuffer = 60 * time.Second
	defaultMinRefresh    = 5 * time.Second
)

// ErrTokenMissing is returned when the token endpoint response has no
// string at the token path.
var ErrTokenMissing = errors.New("token not found in response")

// StaticToken is a fixed bearer token.
type StaticToken string

// AuthenticationToken returns the token.
func (s StaticToken) AuthenticationToken() string {
	return string(s)
}

// Handler fetches a JWT from a token endpoint and caches it. Run keeps the
// token fresh by refreshing shortly before the exp claim. Safe for
// concurrent use.
type Handler struct {
	tokenURL      string
	tokenPath     []string
	client        *http.Client
	refreshBuffer time.Duration
	minRefresh    time.Duration
	log           *slog.Logger
	nowFunc       func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithTokenPath sets the dotted path of the token in the response JSON,
// for example "auth.jwtToken".
func WithTokenPath(path string) HandlerOption {
	return func(h *Handler) {
		h.tokenPath = strings.Split(path, ".")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) HandlerOption {
	return func(h *Handler) {
		h.client = c
	}
}

// WithRefreshBuffer sets how long before expiry the token is refreshed.
func WithRefreshBuffer(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.refreshBuffer = d
	}
}

// WithMinRefreshInterval sets the shortest wait between two refreshes in
// Run. It applies when a token lives shorter than the refresh buffer or is
// already expired.
func WithMinRefreshInterval(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.minRefresh = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.log = l
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.nowFunc = f
	}
}

// NewHandler creates a token handler for tokenURL. The default client keeps
// cookies, since token endpoints usually authenticate the session cookie.
func NewHandler(tokenURL string, opts ...HandlerOption) *Handler {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // nil options never fail
	h := &Handler{
		tokenURL:      tokenURL,
		tokenPath:     []string{DefaultTokenPath},
		client:        &http.Client{Timeout: 10 * time.Second, Jar: jar},
		refreshBuffer: defaultRefreshBuffer,
		minRefresh:    defaultMinRefresh,
		log:           slog.New(slog.DiscardHandler),
		nowFunc:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AuthenticationToken returns the cached token, or "" before the first
// successful refresh.
func (h *Handler) AuthenticationToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Expiry returns the exp claim of the cached token. It is zero when the
// token carries no expiry.
func (h *Handler) Expiry() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.expiry
}

// Refresh fetches a new token and replaces the cached one.
func (h *Handler) Refresh(ctx context.Context) error {
	token, expiry, err := h.fetch(ctx)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}

	h.mu.Lock()
	h.token = token
	h.expiry = expiry
	h.mu.Unlock()

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	h.log.Debug("authentication token refreshed", "expiry", expiry)
	return nil
}

// Run refreshes the token now and again before each expiry, until ctx is
// done or a refresh fails. It returns nil when ctx ends, and returns nil
// without looping when the token has no exp claim.
func (h *Handler) Run(ctx context.Context) error {
	for {
		if err := h.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		expiry := h.Expiry()
		if expiry.IsZero() {
			return nil
		}

		t := time.NewTimer(h.nextRefresh(expiry))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// nextRefresh returns the wait before refreshing a token expiring at
// expiry. Tokens living shorter than the refresh buffer are refreshed at
// half their remaining lifetime, never sooner than the minimum interval.
func (h *Handler) nextRefresh(expiry time.Time) time.Duration {
	lifetime := expiry.Sub(h.nowFunc())
	if wait := lifetime - h.refreshBuffer; wait >= h.minRefresh {
		return wait
	}

	wait := max(lifetime/2, h.minRefresh)
	h.log.Warn("token lifetime is shorter than the refresh buffer",
		"lifetime", lifetime,
		"refresh_buffer", h.refreshBuffer,
		"next_refresh", wait,
	)
	return wait
}

func (h *Handler) fetch(ctx context.Context) (string, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.tokenURL, http.NoBody)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf(
			"token request failed (status %d): %s",
			resp.StatusCode,
			string(body),
		)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", time.Time{}, fmt.Errorf("parsing token response: %w", err)
	}

	token, ok := lookupPath(doc, h.tokenPath)
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w at %q", ErrTokenMissing, strings.Join(h.tokenPath, "."))
	}

	expiry, err := tokenExpiry(token)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiry, nil
}

func lookupPath(doc any, path []string) (string, bool) {
	for _, key := range path {
		m, ok := doc.(map[string]any)
		if !ok {
			return "", false
		}
		doc = m[key]
	}
	s, ok := doc.(string)
	return s, ok && s != ""
}

// tokenExpiry reads the exp claim without verifying the signature; the
// token is only forwarded, never trusted locally.
func tokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing token claims: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
