package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RequestRate returns a timeseries panel showing the mock server request rate.
func RequestRate() *timeseries.PanelBuilder {
	return lineSeries("Request Rate", "HTTP requests per second").
		Span(ThirdWidth).
		WithTarget(PromQuery(`isl:http_requests:rate5m`, "req/s", "A")).
		Unit("reqps").
		Legend(TableLegend("mean", "max"))
}

// LatencyPercentiles returns a timeseries panel showing p50, p95, and p99
// HTTP request latencies.
func LatencyPercentiles() *timeseries.PanelBuilder {
	return percentiles(
		lineSeries("Latency Percentiles", "Mock server request duration percentiles by route"),
		"isl_http_request_duration_seconds", ServerJob,
	).
		Span(ThirdWidth).
		Unit("s").
		Legend(TableLegend("mean", "max"))
}

// ErrorRate returns a timeseries panel showing the HTTP 5xx error rate
// as a percentage.
func ErrorRate() *timeseries.PanelBuilder {
	return lineSeries("Error Rate %", "HTTP 5xx error rate as percentage of total requests").
		Span(ThirdWidth).
		WithTarget(PromQuery(
			Percent("isl:http_errors:rate5m", "isl:http_requests:rate5m"),
			"error %", "A",
		)).
		Unit("percent").
		Thresholds(ErrorPercentThresholds()).
		ColorScheme(ColorSchemeThresholds())
}
