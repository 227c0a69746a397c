// Package find implements the find lookup service and its trigger
// configuration on top of the shared lookup base.
package find

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/donaldgifford/intellisearch-client/internal/lookup"
	"github.com/donaldgifford/intellisearch-client/internal/metrics"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

const (
	// DefaultPath is appended to the base URL when settings carry none.
	DefaultPath = "api/v4"

	serviceName = "find"
	endpoint    = "find"
)

// Find looks up matches for a query.
type Find struct {
	*lookup.Base[domain.Matches]

	triggers FindTriggers
	client   *http.Client
	inflight sync.WaitGroup
}

// Option configures Find.
type Option func(*config)

type config struct {
	triggers FindTriggers
	client   *http.Client
	base     []lookup.Option
}

// WithTriggers replaces the default triggers.
func WithTriggers(t FindTriggers) Option {
	return func(c *config) {
		c.triggers = t
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.client = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.base = append(c.base, lookup.WithLogger(l))
	}
}

// WithContext sets the context for triggered lookups.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.base = append(c.base, lookup.WithContext(ctx))
	}
}

// New creates a find service for baseURL. settings may be nil, in which case
// results are only available through Lookup.
func New(
	baseURL string,
	settings *lookup.Settings[domain.Matches],
	auth lookup.AuthToken,
	opts ...Option,
) (*Find, error) {
	cfg := config{
		triggers: DefaultFindTriggers(),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if settings == nil {
		settings = &lookup.Settings[domain.Matches]{}
	}
	if settings.Path == "" {
		s := *settings
		s.Path = DefaultPath
		settings = &s
	}

	f := &Find{
		triggers: cfg.triggers,
		client:   cfg.client,
	}

	base, err := lookup.New(
		f,
		baseURL,
		settings,
		auth,
		append([]lookup.Option{lookup.WithServiceName(serviceName)}, cfg.base...)...,
	)
	if err != nil {
		return nil, err
	}
	f.Base = base

	return f, nil
}

// Triggers returns the trigger configuration.
func (f *Find) Triggers() FindTriggers {
	return f.triggers
}

// Fetch runs Lookup in the background. Failures are reported through the
// error callback.
func (f *Find) Fetch(ctx context.Context, q *domain.Query, suppressCallbacks bool) {
	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		_, _ = f.Lookup(ctx, q, suppressCallbacks)
	}()
}

// Wait blocks until all background lookups started by Fetch have returned.
func (f *Find) Wait() {
	f.inflight.Wait()
}

// Lookup performs a find request for q and returns the decoded matches. A
// nil q is treated as an empty query. When the request callback vetoes the
// call, Lookup returns nil matches and a nil error without touching the
// network.
func (f *Find) Lookup(
	ctx context.Context,
	q *domain.Query,
	suppressCallbacks bool,
) (*domain.Matches, error) {
	if q == nil {
		q = &domain.Query{}
	}

	u := f.URL(q)
	reqInit := f.RequestObject()

	proceed, err := f.NotifyRequest(suppressCallbacks, u, reqInit)
	if err != nil {
		return nil, err
	}
	if !proceed {
		metrics.LookupsTotal.WithLabelValues(serviceName, "vetoed").Inc()
		f.Logger().Debug("lookup vetoed by request callback", "url", u)
		return nil, nil
	}

	start := time.Now()
	matches, err := f.do(ctx, u, reqInit)
	metrics.LookupDuration.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LookupsTotal.WithLabelValues(serviceName, "error").Inc()
		f.Logger().Warn("lookup failed", "url", u, "error", err)
		if cbErr := f.NotifyError(suppressCallbacks, err, u, reqInit); cbErr != nil {
			return nil, cbErr
		}
		return nil, err
	}

	metrics.LookupsTotal.WithLabelValues(serviceName, "success").Inc()
	if err := f.NotifySuccess(suppressCallbacks, *matches, u, reqInit); err != nil {
		return nil, err
	}
	return matches, nil
}

func (f *Find) do(
	ctx context.Context,
	u string,
	reqInit lookup.RequestInit,
) (*domain.Matches, error) {
	req, err := lookup.NewRequest(ctx, u, reqInit)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, fmt.Errorf("search API not reachable at %s: %w", f.BaseURL(), err)
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var matches domain.Matches
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &matches, nil
}

// URL returns the find request URL for q.
func (f *Find) URL(q *domain.Query) string {
	params := url.Values{}

	if q.ClientID != "" {
		params.Set("c", q.ClientID)
	}
	if q.DateFrom.String() != "" {
		params.Set("df", q.DateFrom.String())
	}
	if q.DateTo.String() != "" {
		params.Set("dt", q.DateTo.String())
	}
	for _, flt := range q.Filters {
		params.Add("f", flt.Key())
	}
	params.Set("g", strconv.FormatBool(q.MatchGrouping))
	params.Set("gc", strconv.FormatBool(q.MatchGenerateContent))
	params.Set("gch", strconv.FormatBool(q.MatchGenerateContentHighlights))
	if q.MatchOrderBy != "" {
		params.Set("o", string(q.MatchOrderBy))
	}
	if q.MatchPage > 0 {
		params.Set("p", strconv.Itoa(q.MatchPage))
	}
	if q.MatchPageSize > 0 {
		params.Set("ps", strconv.Itoa(q.MatchPageSize))
	}
	params.Set("q", q.QueryText)
	if q.SearchType != "" {
		params.Set("s", string(q.SearchType))
	}
	if q.UILanguageCode != "" {
		params.Set("u", q.UILanguageCode)
	}

	return strings.TrimRight(f.BaseURL(), "/") + "/" + endpoint + "?" + params.Encode()
}

// Changed decides whether a property change triggers a lookup. Query text
// changes go through the instant pattern and the debounce delay; any other
// enabled property updates immediately. Nothing triggers while the query
// text is shorter than the minimum length.
func (f *Find) Changed(c lookup.Change) {
	text := ""
	if c.Query != nil {
		text = c.Query.QueryText
	}

	if c.Property == lookup.QueryText {
		switch f.triggers.QueryDecision(text) {
		case TriggerInstant:
			f.Update(c.Query)
		case TriggerDelayed:
			f.Schedule(f.triggers.Delay(), c.Query)
		case TriggerNone:
		}
		return
	}

	if !f.triggers.Enabled(c.Property) || !f.triggers.MeetsMinLength(text) {
		return
	}
	f.Update(c.Query)
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused")
}
