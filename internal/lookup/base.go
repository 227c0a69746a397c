// Package lookup provides the shared request lifecycle for the find,
// categorize and autocomplete services: base URL handling, auth headers,
// update deferral, the delayed-trigger slot and callback dispatch.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/donaldgifford/intellisearch-client/internal/metrics"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

var (
	// ErrInvalidBaseURL is returned by New when the normalized base URL is
	// not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New(
		"no valid baseUrl is defined, supply one in the format: http[s]://<domain.com>[:port][/path]",
	)

	// ErrSettingsMissing is returned by the Notify helpers when the service
	// was created without settings.
	ErrSettingsMissing = errors.New("settings cannot be empty")
)

var urlValidator = validator.New()

// Fetcher performs the network call for a service. Implementations must not
// block the caller; the response is reported through the Notify helpers.
type Fetcher interface {
	Fetch(ctx context.Context, q *domain.Query, suppressCallbacks bool)
}

// AuthToken exposes the bearer token sent with every request.
type AuthToken interface {
	AuthenticationToken() string
}

// Settings holds the per-service path and optional callbacks.
type Settings[T any] struct {
	// Path is appended to the base URL after a single slash.
	Path string

	// OnRequest is consulted before a request is sent. Returning false
	// aborts the call.
	OnRequest func(url string, req RequestInit) bool

	// OnSuccess receives the decoded response.
	OnSuccess func(data T)

	// OnError receives request and transport failures.
	OnError func(err error)
}

// Base is embedded by the concrete lookup services.
type Base[T any] struct {
	baseURL  string
	settings *Settings[T]
	auth     AuthToken
	fetcher  Fetcher
	ctx      context.Context
	log      *slog.Logger
	service  string

	mu            sync.Mutex
	idle          *sync.Cond
	deferUpdate   bool
	deferredQuery *domain.Query
	delay         *time.Timer
	delayQuery    *domain.Query
	delayGen      uint64
	firing        int
}

// Option configures a Base.
type Option func(*options)

type options struct {
	ctx     context.Context
	log     *slog.Logger
	service string
}

// WithContext sets the context handed to Fetch for updates triggered
// through Update, DeferUpdates and Schedule.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithServiceName sets the service label used in logs and metrics.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// New validates baseURL and returns a Base that dispatches fetches to
// fetcher. Trailing slashes are stripped from baseURL before "/" and
// settings.Path are appended. settings and auth may be nil.
func New[T any](
	fetcher Fetcher,
	baseURL string,
	settings *Settings[T],
	auth AuthToken,
	opts ...Option,
) (*Base[T], error) {
	o := options{
		ctx:     context.Background(),
		log:     slog.New(slog.DiscardHandler),
		service: "lookup",
	}
	for _, opt := range opts {
		opt(&o)
	}

	path := ""
	if settings != nil {
		path = settings.Path
	}
	u := strings.TrimRight(baseURL, "/") + "/" + path

	if err := urlValidator.Var(u, "required,http_url"); err != nil {
		return nil, fmt.Errorf("%w (got %q)", ErrInvalidBaseURL, u)
	}

	b := &Base[T]{
		baseURL:  u,
		settings: settings,
		auth:     auth,
		fetcher:  fetcher,
		ctx:      o.ctx,
		log:      o.log.With("service", o.service),
		service:  o.service,
	}
	b.idle = sync.NewCond(&b.mu)
	return b, nil
}

// BaseURL returns the normalized base URL including the settings path.
func (b *Base[T]) BaseURL() string {
	return b.baseURL
}

// Settings returns the settings the service was created with, or nil.
func (b *Base[T]) Settings() *Settings[T] {
	return b.settings
}

// Logger returns the service logger.
func (b *Base[T]) Logger() *slog.Logger {
	return b.log
}

// Context returns the context used for triggered fetches.
func (b *Base[T]) Context() context.Context {
	return b.ctx
}

// DeferUpdates turns deferral on or off. When deferral ends, a query queued
// in the meantime is passed to Update unless skipPending is set, in which
// case it is dropped. A nil queued query is never replayed. skipPending is
// ignored when state is true.
func (b *Base[T]) DeferUpdates(state, skipPending bool) {
	b.mu.Lock()
	b.deferUpdate = state
	if state || b.deferredQuery == nil {
		b.mu.Unlock()
		return
	}

	q := b.deferredQuery
	b.deferredQuery = nil
	b.mu.Unlock()

	if skipPending {
		metrics.DiscardedUpdatesTotal.WithLabelValues(b.service).Inc()
		b.log.Debug("pending update discarded")
		return
	}
	b.Update(q)
}

// Deferring reports whether updates are currently deferred.
func (b *Base[T]) Deferring() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deferUpdate
}

// Update fetches q now, cancelling any scheduled trigger. While deferring
// it only remembers q, replacing any query queued before it; queueing nil
// clears the queue. Outside deferral a nil q is passed to the fetcher as is.
func (b *Base[T]) Update(q *domain.Query) {
	b.mu.Lock()
	if b.deferUpdate {
		b.queueLocked(q)
		b.mu.Unlock()
		return
	}
	b.stopDelayLocked()
	b.mu.Unlock()

	b.fetcher.Fetch(b.ctx, q, false)
}

// Schedule arms the delayed trigger to call Update(q) after d, replacing
// any trigger armed before. A replaced or cancelled trigger never fetches.
func (b *Base[T]) Schedule(d time.Duration, q *domain.Query) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopDelayLocked()
	gen := b.delayGen
	b.delayQuery = q
	b.delay = time.AfterFunc(d, func() {
		b.mu.Lock()
		if gen != b.delayGen {
			b.mu.Unlock()
			return
		}
		fetch := b.fireLocked(q)
		b.mu.Unlock()
		if fetch {
			b.dispatch(q)
		}
	})
	metrics.ScheduledTriggersTotal.WithLabelValues(b.service).Inc()
	b.log.Debug("delayed trigger armed", "delay", d)
}

// Flush fires the armed delayed trigger now instead of waiting for it. It
// first waits for a trigger that already fired to hand its query to the
// fetcher, so once Flush returns every triggered query has been passed to
// Fetch or queued for deferral.
func (b *Base[T]) Flush() {
	b.mu.Lock()
	for b.firing > 0 {
		b.idle.Wait()
	}
	if b.delay == nil {
		b.mu.Unlock()
		return
	}
	q := b.delayQuery
	fetch := b.fireLocked(q)
	b.mu.Unlock()

	if fetch {
		b.dispatch(q)
	}
}

// Cancel disarms the delayed trigger without fetching.
func (b *Base[T]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopDelayLocked()
}

// Pending reports whether a delayed trigger is armed.
func (b *Base[T]) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delay != nil
}

// fireLocked retires the armed trigger as fired. It queues q while
// deferring and otherwise reserves a dispatch, reporting whether the caller
// must call dispatch.
func (b *Base[T]) fireLocked(q *domain.Query) bool {
	b.delayGen++
	if b.delay != nil {
		b.delay.Stop()
		b.delay = nil
	}
	b.delayQuery = nil

	if b.deferUpdate {
		b.queueLocked(q)
		return false
	}
	b.firing++
	return true
}

func (b *Base[T]) dispatch(q *domain.Query) {
	b.fetcher.Fetch(b.ctx, q, false)

	b.mu.Lock()
	b.firing--
	if b.firing == 0 {
		b.idle.Broadcast()
	}
	b.mu.Unlock()
}

func (b *Base[T]) queueLocked(q *domain.Query) {
	b.deferredQuery = q
	metrics.DeferredUpdatesTotal.WithLabelValues(b.service).Inc()
	b.log.Debug("update deferred", "cleared", q == nil)
}

func (b *Base[T]) stopDelayLocked() {
	b.delayGen++
	if b.delay == nil {
		return
	}
	b.delay.Stop()
	b.delay = nil
	b.delayQuery = nil
	metrics.SupersededTriggersTotal.WithLabelValues(b.service).Inc()
}

// Changed is the default change hook and does nothing. Services override it
// to decide whether a property change calls Update.
func (*Base[T]) Changed(Change) {}
