// Package domain defines the query model and response types exchanged with
// the IntelliSearch lookup API.
package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// SearchType selects how the query text is interpreted by the API.
type SearchType string

// Search type constants.
const (
	SearchKeywords  SearchType = "Keywords"
	SearchRelevance SearchType = "Relevance"
)

// OrderBy selects the ordering of find matches.
type OrderBy string

// Order constants.
const (
	OrderByRelevance OrderBy = "Relevance"
	OrderByDate      OrderBy = "Date"
)

// CategorizationType selects which category counts the categorize service returns.
type CategorizationType string

// Categorization type constants.
const (
	CategorizationAll      CategorizationType = "All"
	CategorizationDocument CategorizationType = "DocumentHitsOnly"
)

// DateSpecification is either an absolute time or a relative expression
// understood by the API ("now-7d", "now"). Time wins when both are set.
type DateSpecification struct {
	Time       *time.Time `json:"time,omitempty"       yaml:"time,omitempty"`
	Expression string     `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// String returns the wire form of the date, or "" when unset.
func (d *DateSpecification) String() string {
	if d == nil {
		return ""
	}
	if d.Time != nil {
		return d.Time.UTC().Format(time.RFC3339)
	}
	return d.Expression
}

// Equal reports whether two specifications have the same wire form.
func (d *DateSpecification) Equal(o *DateSpecification) bool {
	return d.String() == o.String()
}

// Filter restricts matches to a category node, addressed by its path from
// the category root.
type Filter struct {
	DisplayName  string   `json:"displayName,omitempty"`
	CategoryPath []string `json:"categoryPath"`
}

// Key returns the wire form of the filter.
func (f Filter) Key() string {
	return strings.Join(f.CategoryPath, "|")
}

// Query holds every lookup parameter. Services receive snapshots and never
// mutate them.
type Query struct {
	ClientCategoryFilters          map[string]string  `json:"clientCategoryFilters,omitempty"`
	ClientID                       string             `json:"clientId,omitempty"`
	CategorizationType             CategorizationType `json:"categorizationType,omitempty"`
	DateFrom                       *DateSpecification `json:"dateFrom,omitempty"`
	DateTo                         *DateSpecification `json:"dateTo,omitempty"`
	Filters                        []Filter           `json:"filters,omitempty"`
	MatchGenerateContent           bool               `json:"matchGenerateContent"`
	MatchGenerateContentHighlights bool               `json:"matchGenerateContentHighlights"`
	MatchGrouping                  bool               `json:"matchGrouping"`
	MatchOrderBy                   OrderBy            `json:"matchOrderBy,omitempty"`
	MatchPage                      int                `json:"matchPage"`
	MatchPageSize                  int                `json:"matchPageSize"`
	MaxSuggestions                 int                `json:"maxSuggestions"`
	QueryText                      string             `json:"queryText"`
	SearchType                     SearchType         `json:"searchType,omitempty"`
	UILanguageCode                 string             `json:"uiLanguageCode,omitempty"`
}

// NewQuery returns a query with the API defaults applied.
func NewQuery() *Query {
	return &Query{
		MatchOrderBy:   OrderByRelevance,
		MatchPage:      1,
		MatchPageSize:  10,
		MaxSuggestions: 10,
		SearchType:     SearchKeywords,
	}
}

// Clone returns a deep copy of q.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	c := *q
	c.ClientCategoryFilters = maps.Clone(q.ClientCategoryFilters)
	c.DateFrom = cloneDate(q.DateFrom)
	c.DateTo = cloneDate(q.DateTo)
	if q.Filters != nil {
		c.Filters = make([]Filter, len(q.Filters))
		for i, f := range q.Filters {
			c.Filters[i] = Filter{
				DisplayName:  f.DisplayName,
				CategoryPath: slices.Clone(f.CategoryPath),
			}
		}
	}
	return &c
}

func cloneDate(d *DateSpecification) *DateSpecification {
	if d == nil {
		return nil
	}
	c := *d
	if d.Time != nil {
		t := *d.Time
		c.Time = &t
	}
	return &c
}

// FiltersEqual reports whether two filter lists select the same categories
// in the same order.
func FiltersEqual(a, b []Filter) bool {
	return slices.EqualFunc(a, b, func(x, y Filter) bool {
		return x.Key() == y.Key()
	})
}

// Matches is the find response.
type Matches struct {
	SearchMatches    []SearchMatch `json:"searchMatches"`
	SearchMatchCount int           `json:"searchMatchCount"`
	NextPage         *PageLink     `json:"nextPage,omitempty"`
	PrevPage         *PageLink     `json:"prevPage,omitempty"`
}

// PageLink points at a neighbouring result page.
type PageLink struct {
	Page int `json:"page"`
}

// SearchMatch is a single find hit.
type SearchMatch struct {
	ID         string         `json:"id,omitempty"`
	Title      string         `json:"title"`
	Abstract   string         `json:"abstract,omitempty"`
	URL        string         `json:"url"`
	Date       string         `json:"date,omitempty"`
	Categories []CategoryPath `json:"categories,omitempty"`
	Extracts   []string       `json:"extracts,omitempty"`
	Content    []string       `json:"content,omitempty"`
}

// CategoryPath is a category node reference attached to a match.
type CategoryPath struct {
	CategoryName []string `json:"categoryName"`
}
