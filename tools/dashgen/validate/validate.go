// Package validate checks generated dashboards and rules for PromQL syntax
// errors and references to metrics the client does not export.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/intellisearch-client/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings
// are reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Merge appends the findings of o to r.
func (r *Result) Merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Expr parses a single PromQL expression and checks every metric it
// selects against known.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: invalid PromQL %q: %v", where, expr, err))
		return res
	}

	for _, name := range metricNames(node) {
		if !known[name] {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown metric %q", where, name))
		}
	}
	return res
}

// Dashboard validates every query expression in dash. Panels without a
// title produce a warning.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return res
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	walkPanels(tree, func(title string, panel map[string]any) {
		if title == "" {
			res.Warnings = append(res.Warnings, "panel without a title")
			title = "untitled panel"
		}
		targets, _ := panel["targets"].([]any)
		for _, t := range targets {
			target, _ := t.(map[string]any)
			expr, _ := target["expr"].(string)
			if expr == "" {
				continue
			}
			refID, _ := target["refId"].(string)
			res.Merge(Expr(fmt.Sprintf("panel %q target %s", title, refID), expr, known))
		}
	})
	return res
}

// Rules validates every rule expression in cr. Alerts without a severity
// label produce a warning.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			where := fmt.Sprintf("%s/%s", g.Name, name)
			res.Merge(Expr(where, r.Expr, known))
			if r.Alert != "" && r.Labels["severity"] == "" {
				res.Warnings = append(res.Warnings, where+": alert has no severity label")
			}
		}
	}
	return res
}

func metricNames(node parser.Node) []string {
	seen := make(map[string]bool)
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			seen[vs.Name] = true
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// walkPanels calls fn for every non-row panel, descending into rows.
func walkPanels(v any, fn func(title string, panel map[string]any)) {
	root, ok := v.(map[string]any)
	if !ok {
		return
	}
	panels, _ := root["panels"].([]any)
	for _, p := range panels {
		panel, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if panel["type"] == "row" {
			walkPanels(panel, fn)
			continue
		}
		title, _ := panel["title"].(string)
		fn(title, panel)
	}
}
