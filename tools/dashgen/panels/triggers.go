package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// DelayedTriggers returns a timeseries panel comparing armed and superseded
// delayed triggers.
func DelayedTriggers() *timeseries.PanelBuilder {
	return lineSeries("Delayed Triggers", "Debounce timers armed versus cancelled before firing").
		Span(TSWidth).
		WithTarget(PromQuery(`isl:scheduled_triggers:rate5m`, "armed", "A")).
		WithTarget(PromQuery(`isl:superseded_triggers:rate5m`, "superseded", "B")).
		Unit("ops")
}

// DeferredUpdates returns a timeseries panel showing updates queued during
// deferral and pending updates dropped when it ended.
func DeferredUpdates() *timeseries.PanelBuilder {
	return lineSeries("Deferred Updates", "Updates queued while deferring, and queued updates discarded").
		Span(TSWidth).
		WithTarget(PromQuery(
			ClientRate("isl_deferred_updates_total", "service"),
			"{{service}} deferred", "A",
		)).
		WithTarget(PromQuery(
			ClientRate("isl_discarded_updates_total", "service"),
			"{{service}} discarded", "B",
		)).
		Unit("ops")
}
