package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printMatchesTable(w io.Writer, m *domain.Matches) error {
	tw := newTabWriter(w)
	tw.writef("TITLE\tDATE\tCATEGORY\tURL\n")
	for i := range m.SearchMatches {
		sm := &m.SearchMatches[i]
		tw.writef("%s\t%s\t%s\t%s\n",
			truncate(sm.Title, 50),
			shortDate(sm.Date),
			firstCategory(sm),
			sm.URL,
		)
	}
	tw.writef("\n%d of %d matches%s\n", len(m.SearchMatches), m.SearchMatchCount, pageHint(m))
	return tw.finish()
}

func printMatches(w io.Writer, m *domain.Matches, asJSON bool) error {
	if asJSON {
		return outputJSON(w, m)
	}
	return printMatchesTable(w, m)
}

func firstCategory(sm *domain.SearchMatch) string {
	if len(sm.Categories) == 0 {
		return "-"
	}
	return strings.Join(sm.Categories[0].CategoryName, "/")
}

func shortDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	if s == "" {
		return "-"
	}
	return s
}

func pageHint(m *domain.Matches) string {
	var parts []string
	if m.PrevPage != nil {
		parts = append(parts, fmt.Sprintf("prev page %d", m.PrevPage.Page))
	}
	if m.NextPage != nil {
		parts = append(parts, fmt.Sprintf("next page %d", m.NextPage.Page))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
