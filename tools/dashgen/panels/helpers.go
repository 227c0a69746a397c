// Package panels provides Grafana dashboard panel builders for
// intellisearch-client metrics.
package panels

import (
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// Scrape job names for the client and the mock server.
const (
	ClientJob = "islookup"
	ServerJob = "isl-mock-server"
)

// rateWindow is the range used by every rate and quantile expression so the
// panels line up with the isl:*:rate5m recording rules.
const rateWindow = "5m"

// Standard panel dimensions for a 24-column grid.
const (
	StatWidth  = 6
	StatHeight = 4

	TSWidth  = 12
	TSHeight = 8

	// ThirdWidth fits the three-across lookup and HTTP rows.
	ThirdWidth = 8

	FullWidth = 24
)

// DSRef returns a datasource reference pointing at the ${datasource}
// template variable.
func DSRef() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

// PromQuery builds a Prometheus query target with the given expression,
// legend format, and ref ID.
func PromQuery(expr, legendFormat, refID string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legendFormat).
		RefId(refID)
}

// Selector scopes a metric to a scrape job, e.g. isl_lookups_total{job="islookup"}.
func Selector(metric, job string) string {
	return fmt.Sprintf("%s{job=%q}", metric, job)
}

// ClientRate sums the per-second rate of a client counter, grouped by the
// given labels.
func ClientRate(counter string, by ...string) string {
	return groupBy(fmt.Sprintf("sum(rate(%s[%s]))", Selector(counter, ClientJob), rateWindow), by)
}

// ClientIncrease sums the increase of a client counter over window, grouped
// by the given labels.
func ClientIncrease(counter, window string, by ...string) string {
	return groupBy(fmt.Sprintf("sum(increase(%s[%s]))", Selector(counter, ClientJob), window), by)
}

// Quantile returns the histogram_quantile expression for phi over the
// _bucket series of histogram scraped from job.
func Quantile(phi float64, histogram, job string) string {
	return fmt.Sprintf(
		"histogram_quantile(%.2f, sum(rate(%s[%s])) by (le))",
		phi, Selector(histogram+"_bucket", job), rateWindow,
	)
}

// Percent expresses num as a percentage of den. Both are usually
// isl:*:rate5m recording rules.
func Percent(num, den string) string {
	return num + " / " + den + " * 100"
}

func groupBy(expr string, by []string) string {
	if len(by) == 0 {
		return expr
	}
	return expr + " by (" + strings.Join(by, ", ") + ")"
}

// Step is a threshold color that applies from At upwards.
type Step struct {
	At    float64
	Color string
}

// Thresholds returns absolute thresholds that start at base and switch
// color at each step in order.
func Thresholds(base string, steps ...Step) cog.Builder[dashboard.ThresholdsConfig] {
	out := make([]dashboard.Threshold, 0, len(steps)+1)
	out = append(out, dashboard.Threshold{Color: base})
	for _, s := range steps {
		out = append(out, dashboard.Threshold{Value: cog.ToPtr(s.At), Color: s.Color})
	}
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(out)
}

// ErrorPercentThresholds is green under 1%, yellow to 5%, red beyond.
func ErrorPercentThresholds() cog.Builder[dashboard.ThresholdsConfig] {
	return Thresholds("green", Step{At: 1, Color: "yellow"}, Step{At: 5, Color: "red"})
}

// ColorSchemeThresholds returns a color scheme that maps to threshold colors.
func ColorSchemeThresholds() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().
		Mode(dashboard.FieldColorModeIdThresholds)
}

// ColorSchemePaletteClassic returns a color scheme using the classic palette.
func ColorSchemePaletteClassic() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().
		Mode(dashboard.FieldColorModeIdPaletteClassic)
}

// TableLegend returns a legend configuration displaying as a table at the
// bottom with the specified calculation columns.
func TableLegend(calcs ...string) *common.VizLegendOptionsBuilder {
	return common.NewVizLegendOptionsBuilder().
		DisplayMode(common.LegendDisplayModeTable).
		Placement(common.LegendPlacementBottom).
		Calcs(calcs)
}

// MultiTooltip returns a tooltip configuration showing all series sorted
// descending.
func MultiTooltip() *common.VizTooltipOptionsBuilder {
	return common.NewVizTooltipOptionsBuilder().
		Mode(common.TooltipDisplayModeMulti).
		Sort(common.SortOrderDescending)
}

// lineSeries is the base for every islookup timeseries panel: thin filled
// lines on the classic palette with a shared tooltip. Callers add targets,
// unit and width, and may override the draw style or colors.
func lineSeries(title, description string) *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(Thresholds("green")).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// percentiles adds p50, p95 and p99 targets for a histogram to panel.
func percentiles(panel *timeseries.PanelBuilder, histogram, job string) *timeseries.PanelBuilder {
	return panel.
		WithTarget(PromQuery(Quantile(0.50, histogram, job), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.95, histogram, job), "p95", "B")).
		WithTarget(PromQuery(Quantile(0.99, histogram, job), "p99", "C"))
}
