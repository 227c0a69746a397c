package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// ClientUpStat returns a stat panel showing whether the client is scraped.
func ClientUpStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Client Up").
		Description("Scrape status of the islookup metrics endpoint (1 = up)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery("max("+Selector("up", ClientJob)+")", "", "A")).
		Thresholds(Thresholds("red", Step{At: 1, Color: "green"})).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// LookupSuccessGauge returns a gauge panel showing the share of lookups that
// succeeded over the last five minutes.
func LookupSuccessGauge() *gauge.PanelBuilder {
	return gauge.NewPanelBuilder().
		Title("Lookup Success %").
		Description("Successful lookups as a percentage of all non-vetoed lookups").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			`(1 - isl:lookup_errors:rate5m / isl:lookups:rate5m) * 100`,
			"", "A",
		)).
		Unit("percent").
		Min(0).
		Max(100).
		Thresholds(Thresholds("red", Step{At: 95, Color: "green"})).
		ColorScheme(ColorSchemeThresholds())
}

// SupersededRatioStat returns a stat panel showing how many delayed
// triggers were replaced before firing.
func SupersededRatioStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Superseded Triggers %").
		Description("Delayed triggers cancelled by a newer change, as a share of those armed").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			Percent("isl:superseded_triggers:rate5m", "isl:scheduled_triggers:rate5m"),
			"", "A",
		)).
		Unit("percent").
		Thresholds(Thresholds("green")).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// UptimeStat returns a stat panel showing client process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since the client process started").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			"time() - "+Selector("process_start_time_seconds", ClientJob),
			"", "A",
		)).
		Unit("s").
		Thresholds(Thresholds("green")).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}
