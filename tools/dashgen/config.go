package main

import "errors"

// KnownMetrics is the set of metric names exported by intellisearch-client
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// Lookup metrics.
	"isl_lookups_total":                  true,
	"isl_lookup_duration_seconds_bucket": true,

	// Deferral and trigger metrics.
	"isl_deferred_updates_total":    true,
	"isl_discarded_updates_total":   true,
	"isl_scheduled_triggers_total":  true,
	"isl_superseded_triggers_total": true,

	// Auth metrics.
	"isl_token_refreshes_total": true,

	// Mock server HTTP metrics.
	"isl_http_request_duration_seconds_bucket": true,
	"isl_http_requests_total":                  true,

	// Recording rules.
	"isl:lookups:rate5m":              true,
	"isl:lookup_errors:rate5m":        true,
	"isl:superseded_triggers:rate5m":  true,
	"isl:scheduled_triggers:rate5m":   true,
	"isl:token_refresh_errors:rate5m": true,
	"isl:http_requests:rate5m":        true,
	"isl:http_errors:rate5m":          true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
