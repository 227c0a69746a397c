package lookup

import (
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

// Property identifies a watchable query property.
type Property int

// Watchable properties.
const (
	ClientCategoryFilters Property = iota
	ClientID
	CategorizationType
	DateFrom
	DateTo
	Filters
	MatchGenerateContent
	MatchGenerateContentHighlights
	MatchGrouping
	MatchOrderBy
	MatchPage
	MatchPageSize
	MaxSuggestions
	QueryText
	SearchType
	UILanguageCode
)

var propertyNames = [...]string{
	ClientCategoryFilters:          "clientCategoryFilters",
	ClientID:                       "clientId",
	CategorizationType:             "categorizationType",
	DateFrom:                       "dateFrom",
	DateTo:                         "dateTo",
	Filters:                        "filters",
	MatchGenerateContent:           "matchGenerateContent",
	MatchGenerateContentHighlights: "matchGenerateContentHighlights",
	MatchGrouping:                  "matchGrouping",
	MatchOrderBy:                   "matchOrderBy",
	MatchPage:                      "matchPage",
	MatchPageSize:                  "matchPageSize",
	MaxSuggestions:                 "maxSuggestions",
	QueryText:                      "queryText",
	SearchType:                     "searchType",
	UILanguageCode:                 "uiLanguageCode",
}

func (p Property) String() string {
	if p < 0 || int(p) >= len(propertyNames) {
		return "unknown"
	}
	return propertyNames[p]
}

// Change reports that Property moved away from Old. Query is a snapshot
// with the new value applied.
type Change struct {
	Property Property
	Old      any
	Query    *domain.Query
}

// ChangeHandler receives property changes.
type ChangeHandler interface {
	Changed(c Change)
}
