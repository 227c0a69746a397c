package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "isl-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "isl-recording",
					Rules: []Rule{
						{
							Record: "isl:lookups:rate5m",
							Expr:   `sum(rate(isl_lookups_total{outcome!="vetoed"}[5m]))`,
						},
						{
							Record: "isl:lookup_errors:rate5m",
							Expr:   `sum(rate(isl_lookups_total{outcome="error"}[5m]))`,
						},
						{
							Record: "isl:scheduled_triggers:rate5m",
							Expr:   `sum(rate(isl_scheduled_triggers_total[5m]))`,
						},
						{
							Record: "isl:superseded_triggers:rate5m",
							Expr:   `sum(rate(isl_superseded_triggers_total[5m]))`,
						},
						{
							Record: "isl:token_refresh_errors:rate5m",
							Expr:   `sum(rate(isl_token_refreshes_total{outcome="error"}[5m]))`,
						},
						{
							Record: "isl:http_requests:rate5m",
							Expr:   `sum(rate(isl_http_requests_total[5m]))`,
						},
						{
							Record: "isl:http_errors:rate5m",
							Expr:   `sum(rate(isl_http_requests_total{status=~"5.."}[5m]))`,
						},
					},
				},
			},
		},
	}
}
