// Package session holds the current query and notifies lookup services
// when one of its properties changes.
package session

import (
	"maps"
	"sync"

	"github.com/donaldgifford/intellisearch-client/internal/lookup"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

// Service is a lookup service that reacts to query changes.
type Service interface {
	lookup.ChangeHandler
	DeferUpdates(state, skipPending bool)
}

// Session owns the query shared by its services.
type Session struct {
	mu       sync.Mutex
	query    *domain.Query
	services []Service
}

// New creates a session starting from q, or from domain.NewQuery when q is
// nil.
func New(q *domain.Query, services ...Service) *Session {
	if q == nil {
		q = domain.NewQuery()
	}
	return &Session{query: q.Clone(), services: services}
}

// Add registers another service.
func (s *Session) Add(svc Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append(s.services, svc)
}

// Query returns a snapshot of the current query.
func (s *Session) Query() *domain.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.Clone()
}

// DeferUpdates turns deferral on or off for every service.
func (s *Session) DeferUpdates(state, skipPending bool) {
	for _, svc := range s.snapshotServices() {
		svc.DeferUpdates(state, skipPending)
	}
}

func (s *Session) snapshotServices() []Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Service(nil), s.services...)
}

// apply runs mutate on a copy of the query. When changed reports a
// difference the copy becomes current and every service is told.
func (s *Session) apply(p lookup.Property, mutate func(q *domain.Query) (old any, changed bool)) {
	s.mu.Lock()
	next := s.query.Clone()
	old, changed := mutate(next)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.query = next
	services := append([]Service(nil), s.services...)
	s.mu.Unlock()

	for _, svc := range services {
		svc.Changed(lookup.Change{Property: p, Old: old, Query: next.Clone()})
	}
}

func set[V comparable](field *V, v V) (any, bool) {
	old := *field
	if old == v {
		return old, false
	}
	*field = v
	return old, true
}

// SetClientCategoryFilters replaces the client-side category filters.
func (s *Session) SetClientCategoryFilters(v map[string]string) {
	s.apply(lookup.ClientCategoryFilters, func(q *domain.Query) (any, bool) {
		old := q.ClientCategoryFilters
		if maps.Equal(old, v) {
			return old, false
		}
		q.ClientCategoryFilters = maps.Clone(v)
		return old, true
	})
}

// SetClientID sets the client id.
func (s *Session) SetClientID(v string) {
	s.apply(lookup.ClientID, func(q *domain.Query) (any, bool) { return set(&q.ClientID, v) })
}

// SetCategorizationType sets the categorization type.
func (s *Session) SetCategorizationType(v domain.CategorizationType) {
	s.apply(lookup.CategorizationType, func(q *domain.Query) (any, bool) { return set(&q.CategorizationType, v) })
}

// SetDateFrom sets the lower date bound. Nil clears it.
func (s *Session) SetDateFrom(v *domain.DateSpecification) {
	s.apply(lookup.DateFrom, func(q *domain.Query) (any, bool) {
		old := q.DateFrom
		if old.Equal(v) {
			return old, false
		}
		q.DateFrom = (&domain.Query{DateFrom: v}).Clone().DateFrom
		return old, true
	})
}

// SetDateTo sets the upper date bound. Nil clears it.
func (s *Session) SetDateTo(v *domain.DateSpecification) {
	s.apply(lookup.DateTo, func(q *domain.Query) (any, bool) {
		old := q.DateTo
		if old.Equal(v) {
			return old, false
		}
		q.DateTo = (&domain.Query{DateTo: v}).Clone().DateTo
		return old, true
	})
}

// SetFilters replaces the category filters.
func (s *Session) SetFilters(v []domain.Filter) {
	s.apply(lookup.Filters, func(q *domain.Query) (any, bool) {
		old := q.Filters
		if domain.FiltersEqual(old, v) {
			return old, false
		}
		q.Filters = (&domain.Query{Filters: v}).Clone().Filters
		return old, true
	})
}

// SetMatchGenerateContent toggles content generation for matches.
func (s *Session) SetMatchGenerateContent(v bool) {
	s.apply(lookup.MatchGenerateContent, func(q *domain.Query) (any, bool) { return set(&q.MatchGenerateContent, v) })
}

// SetMatchGenerateContentHighlights toggles highlights in generated content.
func (s *Session) SetMatchGenerateContentHighlights(v bool) {
	s.apply(lookup.MatchGenerateContentHighlights, func(q *domain.Query) (any, bool) {
		return set(&q.MatchGenerateContentHighlights, v)
	})
}

// SetMatchGrouping toggles grouping of matches.
func (s *Session) SetMatchGrouping(v bool) {
	s.apply(lookup.MatchGrouping, func(q *domain.Query) (any, bool) { return set(&q.MatchGrouping, v) })
}

// SetMatchOrderBy sets the match ordering.
func (s *Session) SetMatchOrderBy(v domain.OrderBy) {
	s.apply(lookup.MatchOrderBy, func(q *domain.Query) (any, bool) { return set(&q.MatchOrderBy, v) })
}

// SetMatchPage sets the result page.
func (s *Session) SetMatchPage(v int) {
	s.apply(lookup.MatchPage, func(q *domain.Query) (any, bool) { return set(&q.MatchPage, v) })
}

// SetMatchPageSize sets the result page size.
func (s *Session) SetMatchPageSize(v int) {
	s.apply(lookup.MatchPageSize, func(q *domain.Query) (any, bool) { return set(&q.MatchPageSize, v) })
}

// SetMaxSuggestions sets the autocomplete suggestion limit.
func (s *Session) SetMaxSuggestions(v int) {
	s.apply(lookup.MaxSuggestions, func(q *domain.Query) (any, bool) { return set(&q.MaxSuggestions, v) })
}

// SetQueryText sets the query text.
func (s *Session) SetQueryText(v string) {
	s.apply(lookup.QueryText, func(q *domain.Query) (any, bool) { return set(&q.QueryText, v) })
}

// SetSearchType sets the search type.
func (s *Session) SetSearchType(v domain.SearchType) {
	s.apply(lookup.SearchType, func(q *domain.Query) (any, bool) { return set(&q.SearchType, v) })
}

// SetUILanguageCode sets the UI language code.
func (s *Session) SetUILanguageCode(v string) {
	s.apply(lookup.UILanguageCode, func(q *domain.Query) (any, bool) { return set(&q.UILanguageCode, v) })
}
