package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// LookupRate returns a timeseries panel showing lookups per second split by
// outcome.
func LookupRate() *timeseries.PanelBuilder {
	return lineSeries("Lookup Rate", "Lookups per second by service and outcome (success, error, vetoed)").
		Span(ThirdWidth).
		WithTarget(PromQuery(
			ClientRate("isl_lookups_total", "service", "outcome"),
			"{{service}} {{outcome}}", "A",
		)).
		Unit("reqps").
		Legend(TableLegend("mean", "max"))
}

// LookupLatency returns a timeseries panel showing p50, p95 and p99 lookup
// durations.
func LookupLatency() *timeseries.PanelBuilder {
	return percentiles(
		lineSeries("Lookup Latency", "Duration of lookup HTTP calls"),
		"isl_lookup_duration_seconds", ClientJob,
	).
		Span(ThirdWidth).
		Unit("s").
		Legend(TableLegend("mean", "max"))
}

// LookupErrorRate returns a timeseries panel showing failed lookups as a
// percentage.
func LookupErrorRate() *timeseries.PanelBuilder {
	return lineSeries("Lookup Error %", "Failed lookups as a percentage of all lookups").
		Span(ThirdWidth).
		WithTarget(PromQuery(
			Percent("isl:lookup_errors:rate5m", "isl:lookups:rate5m"),
			"error %", "A",
		)).
		Unit("percent").
		Thresholds(ErrorPercentThresholds()).
		ColorScheme(ColorSchemeThresholds())
}
