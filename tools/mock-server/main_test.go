package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/intellisearch-client/internal/auth"
	"github.com/donaldgifford/intellisearch-client/internal/find"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestServer(t *testing.T, requireAuth bool) *httptest.Server {
	t.Helper()

	fixture, err := loadFixture(filepath.Join("testdata", "find_response.json"))
	require.NoError(t, err)

	e := newServer(testLogger(), fixture, serverConfig{
		signingKey:  []byte("test-key"),
		tokenTTL:    time.Minute,
		requireAuth: requireAuth,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func getMatches(t *testing.T, url string) (int, domain.Matches) {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close()

	var m domain.Matches
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	}
	return resp.StatusCode, m
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	fixture, err := loadFixture(filepath.Join("testdata", "find_response.json"))
	require.NoError(t, err)
	require.NotEmpty(t, fixture.SearchMatches)
	assert.Equal(t, len(fixture.SearchMatches), fixture.SearchMatchCount)
}

func TestLoadFixture_Missing(t *testing.T) {
	t.Parallel()

	_, err := loadFixture(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading fixture")
}

func TestFindHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantIDs   []string
		wantNext  *domain.PageLink
		wantPrev  *domain.PageLink
	}{
		{
			name:      "all matches",
			query:     "",
			wantCount: 6,
		},
		{
			name:      "text filter",
			query:     "q=release",
			wantCount: 3,
			wantIDs:   []string{"doc-1", "doc-2", "doc-6"},
		},
		{
			name:      "every word must match",
			query:     "q=release+notes",
			wantCount: 1,
			wantIDs:   []string{"doc-1"},
		},
		{
			name:      "category filter",
			query:     "q=release&f=System%7CWiki",
			wantCount: 2,
			wantIDs:   []string{"doc-1", "doc-2"},
		},
		{
			name:      "category prefix filter",
			query:     "f=FileType",
			wantCount: 2,
			wantIDs:   []string{"doc-4", "doc-6"},
		},
		{
			name:      "order by date",
			query:     "q=release&o=Date",
			wantCount: 3,
			wantIDs:   []string{"doc-1", "doc-6", "doc-2"},
		},
		{
			name:      "first page",
			query:     "ps=2&p=1",
			wantCount: 6,
			wantIDs:   []string{"doc-1", "doc-2"},
			wantNext:  &domain.PageLink{Page: 2},
		},
		{
			name:      "middle page",
			query:     "ps=2&p=2",
			wantCount: 6,
			wantIDs:   []string{"doc-3", "doc-4"},
			wantNext:  &domain.PageLink{Page: 3},
			wantPrev:  &domain.PageLink{Page: 1},
		},
		{
			name:      "page past the end",
			query:     "ps=2&p=9",
			wantCount: 6,
			wantIDs:   []string{},
			wantPrev:  &domain.PageLink{Page: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, m := getMatches(t, srv.URL+"/api/v4/find?"+tt.query)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.wantCount, m.SearchMatchCount)
			assert.NotNil(t, m.SearchMatches)
			if tt.wantIDs != nil {
				ids := make([]string, 0, len(m.SearchMatches))
				for _, sm := range m.SearchMatches {
					ids = append(ids, sm.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
			}
			assert.Equal(t, tt.wantNext, m.NextPage)
			assert.Equal(t, tt.wantPrev, m.PrevPage)
		})
	}
}

func TestTokenHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/auth/token", "application/json", http.NoBody) //nolint:noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["jwtToken"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie set")
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)

	status, _ := getMatches(t, srv.URL+"/api/v4/find?q=release")
	assert.Equal(t, http.StatusUnauthorized, status)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v4/find", http.NoBody) //nolint:noctx // test
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestClientAgainstMockServer drives the find service and token handler
// end to end.
func TestClientAgainstMockServer(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)
	ctx := context.Background()

	tokens := auth.NewHandler(srv.URL + "/auth/token")
	require.NoError(t, tokens.Refresh(ctx))
	assert.True(t, tokens.Expiry().After(time.Now()))

	f, err := find.New(srv.URL, nil, tokens)
	require.NoError(t, err)

	q := domain.NewQuery()
	q.QueryText = "release"
	q.MatchOrderBy = domain.OrderByDate
	q.MatchPageSize = 2

	m, err := f.Lookup(ctx, q, true)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.SearchMatchCount)
	require.Len(t, m.SearchMatches, 2)
	assert.Equal(t, "doc-1", m.SearchMatches[0].ID)
	assert.Equal(t, &domain.PageLink{Page: 2}, m.NextPage)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/healthz") //nolint:noctx // test
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
