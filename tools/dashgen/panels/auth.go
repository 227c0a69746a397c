package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// TokenRefreshes returns a bar panel showing hourly token refreshes by
// outcome.
func TokenRefreshes() *timeseries.PanelBuilder {
	return lineSeries("Token Refreshes", "Authentication token refreshes by outcome").
		Span(FullWidth).
		WithTarget(PromQuery(
			ClientIncrease("isl_token_refreshes_total", "1h", "outcome"),
			"{{outcome}}", "A",
		)).
		Legend(TableLegend("sum")).
		DrawStyle(common.GraphDrawStyleBars)
}
