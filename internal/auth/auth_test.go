package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiry *time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "user-1"}
	if expiry != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiry)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func jsonHandler(t *testing.T, status int, v any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func TestStaticToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", StaticToken("abc").AuthenticationToken())
	assert.Empty(t, StaticToken("").AuthenticationToken())
}

func TestHandler_Refresh(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name       string
		path       string
		status     int
		body       func(t *testing.T) any
		wantErr    bool
		errContain string
		wantExpiry time.Time
	}{
		{
			name:   "default token path",
			status: http.StatusOK,
			body: func(t *testing.T) any {
				t.Helper()
				return map[string]string{"jwtToken": signedToken(t, &exp)}
			},
			wantExpiry: exp,
		},
		{
			name:   "nested token path",
			path:   "auth.jwt",
			status: http.StatusOK,
			body: func(t *testing.T) any {
				t.Helper()
				return map[string]any{"auth": map[string]string{"jwt": signedToken(t, &exp)}}
			},
			wantExpiry: exp,
		},
		{
			name:   "token without expiry",
			status: http.StatusOK,
			body: func(t *testing.T) any {
				t.Helper()
				return map[string]string{"jwtToken": signedToken(t, nil)}
			},
		},
		{
			name:   "missing token",
			status: http.StatusOK,
			body: func(*testing.T) any {
				return map[string]string{"other": "x"}
			},
			wantErr:    true,
			errContain: "token not found",
		},
		{
			name:   "not a jwt",
			status: http.StatusOK,
			body: func(*testing.T) any {
				return map[string]string{"jwtToken": "opaque"}
			},
			wantErr:    true,
			errContain: "parsing token claims",
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body: func(*testing.T) any {
				return map[string]string{"error": "no session"}
			},
			wantErr:    true,
			errContain: "status 401",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(jsonHandler(t, tt.status, tt.body(t)))
			defer srv.Close()

			var opts []HandlerOption
			if tt.path != "" {
				opts = append(opts, WithTokenPath(tt.path))
			}
			h := NewHandler(srv.URL, opts...)

			err := h.Refresh(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				assert.Empty(t, h.AuthenticationToken())
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, h.AuthenticationToken())
			assert.True(t, tt.wantExpiry.Equal(h.Expiry()), "expiry %v, want %v", h.Expiry(), tt.wantExpiry)
		})
	}
}

func TestHandler_KeepsCookies(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour)
	token := signedToken(t, &exp)

	var withCookie atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil && c.Value == "s1" {
			withCookie.Add(1)
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]string{"jwtToken": token})
	}))
	defer srv.Close()

	h := NewHandler(srv.URL)
	require.NoError(t, h.Refresh(context.Background()))
	require.NoError(t, h.Refresh(context.Background()))

	assert.Equal(t, int32(1), withCookie.Load())
}

func TestHandler_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns after one refresh without expiry", func(t *testing.T) {
		t.Parallel()

		token := signedToken(t, nil)
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]string{"jwtToken": token})
		}))
		defer srv.Close()

		require.NoError(t, NewHandler(srv.URL).Run(context.Background()))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("refreshes before expiry until failure", func(t *testing.T) {
		t.Parallel()

		exp := time.Now().Add(40 * time.Millisecond)
		token := signedToken(t, &exp)
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"jwtToken": token})
		}))
		defer srv.Close()

		// A buffer larger than the lifetime refreshes at the minimum interval.
		h := NewHandler(srv.URL, WithRefreshBuffer(time.Hour), WithMinRefreshInterval(10*time.Millisecond))
		err := h.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
		assert.Equal(t, int32(3), hits.Load())
		assert.Equal(t, token, h.AuthenticationToken(), "last good token is kept")
	})

	t.Run("stops when context is done", func(t *testing.T) {
		t.Parallel()

		exp := time.Now().Add(time.Hour)
		token := signedToken(t, &exp)
		srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]string{"jwtToken": token}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		h := NewHandler(srv.URL)

		errc := make(chan error, 1)
		go func() { errc <- h.Run(ctx) }()

		require.Eventually(t, func() bool { return h.AuthenticationToken() != "" }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case err := <-errc:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Run did not stop")
		}
	})

	t.Run("returns nil when context ends during a refresh", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		require.NoError(t, NewHandler(srv.URL).Run(ctx))
	})
}

func TestHandler_Run_ShortLivedTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ttl     time.Duration
		maxHits int32
	}{
		// Half of 30s is far beyond the test window.
		{name: "ttl shorter than buffer", ttl: 30 * time.Second, maxHits: 1},
		// An expired token is refetched at the minimum interval only.
		{name: "already expired", ttl: -time.Minute, maxHits: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				exp := time.Now().Add(tt.ttl)
				_ = json.NewEncoder(w).Encode(map[string]string{"jwtToken": signedToken(t, &exp)})
			}))
			defer srv.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			h := NewHandler(srv.URL, WithMinRefreshInterval(50*time.Millisecond))
			require.NoError(t, h.Run(ctx))

			assert.GreaterOrEqual(t, hits.Load(), int32(1))
			assert.LessOrEqual(t, hits.Load(), tt.maxHits)
		})
	}
}

func TestHandler_NextRefresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHandler("http://unused",
		WithNowFunc(func() time.Time { return now }),
		WithRefreshBuffer(time.Minute),
		WithMinRefreshInterval(5*time.Second),
	)

	tests := []struct {
		name   string
		expiry time.Time
		want   time.Duration
	}{
		{name: "long lived", expiry: now.Add(time.Hour), want: 59 * time.Minute},
		{name: "inside buffer", expiry: now.Add(30 * time.Second), want: 15 * time.Second},
		{name: "nearly expired", expiry: now.Add(4 * time.Second), want: 5 * time.Second},
		{name: "expired", expiry: now.Add(-time.Minute), want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, h.nextRefresh(tt.expiry))
		})
	}
}
