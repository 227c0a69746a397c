// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/intellisearch-client/tools/dashgen/panels"
)

// BuildOverview constructs the ISL Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("ISL Overview").
		Uid("isl-overview").
		Tags([]string{"isl", "intellisearch-client"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.ClientUpStat()).
		WithPanel(panels.LookupSuccessGauge()).
		WithPanel(panels.SupersededRatioStat()).
		WithPanel(panels.UptimeStat()))

	// Row 2: Lookups.
	b.WithRow(dashboard.NewRowBuilder("Lookups").
		WithPanel(panels.LookupRate()).
		WithPanel(panels.LookupLatency()).
		WithPanel(panels.LookupErrorRate()))

	// Row 3: Triggers.
	b.WithRow(dashboard.NewRowBuilder("Triggers").
		WithPanel(panels.DelayedTriggers()).
		WithPanel(panels.DeferredUpdates()))

	// Row 4: Auth.
	b.WithRow(dashboard.NewRowBuilder("Auth").
		WithPanel(panels.TokenRefreshes()))

	// Row 5: Mock server.
	b.WithRow(dashboard.NewRowBuilder("Mock Server").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
