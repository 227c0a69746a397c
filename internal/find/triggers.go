package find

import (
	"regexp"
	"time"
	"unicode/utf16"

	"github.com/donaldgifford/intellisearch-client/internal/lookup"
)

// DefaultInstantPattern triggers on the first whitespace typed after a
// non-space character, i.e. SPACE or ENTER after a word. RE2's \s is ASCII
// only, so the class spells out the Unicode spaces (NBSP, ideographic space,
// line and paragraph separators, BOM) as well.
const DefaultInstantPattern = `[^` + spaceClass + `][` + spaceClass + `]$`

const spaceClass = `\s\v\p{Z}\x{FEFF}`

var defaultInstantRegex = regexp.MustCompile(DefaultInstantPattern)

// FindTriggers decides which query changes cause a find lookup.
type FindTriggers struct {
	ClientCategoryFilterChanged           bool
	ClientIDChanged                       bool
	DateFromChanged                       bool
	DateToChanged                         bool
	FilterChanged                         bool
	MatchGenerateContentChanged           bool
	MatchGenerateContentHighlightsChanged bool
	MatchGroupingChanged                  bool
	MatchOrderByChanged                   bool
	MatchPageChanged                      bool
	MatchPageSizeChanged                  bool

	// QueryChange turns all query-text triggers on or off.
	QueryChange bool

	// QueryChangeDelay debounces query-text changes, in milliseconds. The
	// instant regex takes precedence; a negative delay means only instant
	// matches trigger.
	QueryChangeDelay int

	// QueryChangeInstantRegex fires immediately when it matches the query
	// text. Nil disables instant triggering.
	QueryChangeInstantRegex *regexp.Regexp

	// QueryChangeMinLength is the shortest query text that triggers at all.
	QueryChangeMinLength int

	SearchTypeChanged bool

	// UILanguageCodeChanged is off by default: find results carry no
	// language-dependent data.
	UILanguageCodeChanged bool
}

// TriggerOverrides is a partial FindTriggers. Nil fields keep the default.
type TriggerOverrides struct {
	ClientCategoryFilterChanged           *bool          `yaml:"client_category_filter_changed"`
	ClientIDChanged                       *bool          `yaml:"client_id_changed"`
	DateFromChanged                       *bool          `yaml:"date_from_changed"`
	DateToChanged                         *bool          `yaml:"date_to_changed"`
	FilterChanged                         *bool          `yaml:"filter_changed"`
	MatchGenerateContentChanged           *bool          `yaml:"match_generate_content_changed"`
	MatchGenerateContentHighlightsChanged *bool          `yaml:"match_generate_content_highlights_changed"`
	MatchGroupingChanged                  *bool          `yaml:"match_grouping_changed"`
	MatchOrderByChanged                   *bool          `yaml:"match_order_by_changed"`
	MatchPageChanged                      *bool          `yaml:"match_page_changed"`
	MatchPageSizeChanged                  *bool          `yaml:"match_page_size_changed"`
	QueryChange                           *bool          `yaml:"query_change"`
	QueryChangeDelay                      *int           `yaml:"query_change_delay"`
	QueryChangeInstantRegex               *regexp.Regexp `yaml:"-"`
	QueryChangeMinLength                  *int           `yaml:"query_change_min_length"`
	SearchTypeChanged                     *bool          `yaml:"search_type_changed"`
	UILanguageCodeChanged                 *bool          `yaml:"ui_language_code_changed"`
}

// DefaultFindTriggers returns the find defaults.
func DefaultFindTriggers() FindTriggers {
	return FindTriggers{
		ClientCategoryFilterChanged:           true,
		ClientIDChanged:                       true,
		DateFromChanged:                       true,
		DateToChanged:                         true,
		FilterChanged:                         true,
		MatchGenerateContentChanged:           true,
		MatchGenerateContentHighlightsChanged: true,
		MatchGroupingChanged:                  true,
		MatchOrderByChanged:                   true,
		MatchPageChanged:                      true,
		MatchPageSizeChanged:                  true,
		QueryChange:                           true,
		QueryChangeDelay:                      2000,
		QueryChangeInstantRegex:               defaultInstantRegex,
		QueryChangeMinLength:                  2,
		SearchTypeChanged:                     true,
		UILanguageCodeChanged:                 false,
	}
}

// NewFindTriggers merges o onto the defaults field by field. Values are
// taken as given.
func NewFindTriggers(o TriggerOverrides) FindTriggers {
	t := DefaultFindTriggers()
	setBool(&t.ClientCategoryFilterChanged, o.ClientCategoryFilterChanged)
	setBool(&t.ClientIDChanged, o.ClientIDChanged)
	setBool(&t.DateFromChanged, o.DateFromChanged)
	setBool(&t.DateToChanged, o.DateToChanged)
	setBool(&t.FilterChanged, o.FilterChanged)
	setBool(&t.MatchGenerateContentChanged, o.MatchGenerateContentChanged)
	setBool(&t.MatchGenerateContentHighlightsChanged, o.MatchGenerateContentHighlightsChanged)
	setBool(&t.MatchGroupingChanged, o.MatchGroupingChanged)
	setBool(&t.MatchOrderByChanged, o.MatchOrderByChanged)
	setBool(&t.MatchPageChanged, o.MatchPageChanged)
	setBool(&t.MatchPageSizeChanged, o.MatchPageSizeChanged)
	setBool(&t.QueryChange, o.QueryChange)
	setBool(&t.SearchTypeChanged, o.SearchTypeChanged)
	setBool(&t.UILanguageCodeChanged, o.UILanguageCodeChanged)
	if o.QueryChangeDelay != nil {
		t.QueryChangeDelay = *o.QueryChangeDelay
	}
	if o.QueryChangeMinLength != nil {
		t.QueryChangeMinLength = *o.QueryChangeMinLength
	}
	if o.QueryChangeInstantRegex != nil {
		t.QueryChangeInstantRegex = o.QueryChangeInstantRegex
	}
	return t
}

func setBool(dst, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Enabled reports whether a change to p should trigger a lookup. Properties
// find does not depend on always report false.
func (t *FindTriggers) Enabled(p lookup.Property) bool {
	switch p {
	case lookup.ClientCategoryFilters:
		return t.ClientCategoryFilterChanged
	case lookup.ClientID:
		return t.ClientIDChanged
	case lookup.DateFrom:
		return t.DateFromChanged
	case lookup.DateTo:
		return t.DateToChanged
	case lookup.Filters:
		return t.FilterChanged
	case lookup.MatchGenerateContent:
		return t.MatchGenerateContentChanged
	case lookup.MatchGenerateContentHighlights:
		return t.MatchGenerateContentHighlightsChanged
	case lookup.MatchGrouping:
		return t.MatchGroupingChanged
	case lookup.MatchOrderBy:
		return t.MatchOrderByChanged
	case lookup.MatchPage:
		return t.MatchPageChanged
	case lookup.MatchPageSize:
		return t.MatchPageSizeChanged
	case lookup.QueryText:
		return t.QueryChange
	case lookup.SearchType:
		return t.SearchTypeChanged
	case lookup.UILanguageCode:
		return t.UILanguageCodeChanged
	default:
		return false
	}
}

// MeetsMinLength reports whether text is long enough to trigger. Length is
// counted in UTF-16 code units, the unit the search frontends measure in, so
// a character outside the BMP counts twice.
func (t *FindTriggers) MeetsMinLength(text string) bool {
	return t.QueryChangeMinLength <= 0 || utf16Len(text) >= t.QueryChangeMinLength
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// QueryTrigger is the outcome of a query-text change.
type QueryTrigger int

// Query-text trigger outcomes.
const (
	TriggerNone QueryTrigger = iota
	TriggerInstant
	TriggerDelayed
)

func (q QueryTrigger) String() string {
	switch q {
	case TriggerInstant:
		return "instant"
	case TriggerDelayed:
		return "delayed"
	default:
		return "none"
	}
}

// QueryDecision decides how a change of the query text to text triggers.
func (t *FindTriggers) QueryDecision(text string) QueryTrigger {
	if !t.QueryChange || !t.MeetsMinLength(text) {
		return TriggerNone
	}
	if t.QueryChangeInstantRegex != nil && t.QueryChangeInstantRegex.MatchString(text) {
		return TriggerInstant
	}
	if t.QueryChangeDelay >= 0 {
		return TriggerDelayed
	}
	return TriggerNone
}

// Delay returns QueryChangeDelay as a duration.
func (t *FindTriggers) Delay() time.Duration {
	return time.Duration(t.QueryChangeDelay) * time.Millisecond
}
