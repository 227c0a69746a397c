package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// intellisearch-client lookups and the mock search server.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "isl-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "isl-alerts",
					Rules: []Rule{
						{
							Alert: "IslClientDown",
							Expr:  `absent(up{job="islookup"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "islookup metrics endpoint is down",
								"description": "The islookup job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "IslHighLookupErrorRate",
							Expr:  `isl:lookup_errors:rate5m / isl:lookups:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High lookup error rate",
								"description": "More than 5% of lookups have failed over the last 5 minutes.",
							},
						},
						{
							Alert: "IslSlowLookups",
							Expr:  `histogram_quantile(0.95, sum(rate(isl_lookup_duration_seconds_bucket[5m])) by (le)) > 2`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Lookups are slow",
								"description": "The p95 lookup duration has been above 2s for 10 minutes.",
							},
						},
						{
							Alert: "IslTokenRefreshFailing",
							Expr:  `isl:token_refresh_errors:rate5m > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Authentication token refresh is failing",
								"description": "Token refreshes have been failing for 5 minutes. Lookups will be rejected once the current token expires.",
							},
						},
						{
							Alert: "IslMockServerErrors",
							Expr:  `isl:http_errors:rate5m / isl:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "info",
							},
							Annotations: map[string]string{
								"summary":     "Mock search server is returning errors",
								"description": "More than 5% of mock server requests returned 5xx over the last 5 minutes.",
							},
						},
					},
				},
			},
		},
	}
}
