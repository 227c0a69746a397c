package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/intellisearch-client/tools/dashgen/dashboards"
	"github.com/donaldgifford/intellisearch-client/tools/dashgen/rules"
	"github.com/donaldgifford/intellisearch-client/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	builder := dashboards.BuildOverview()
	dash, err := builder.Build()
	require.NoError(t, err)

	// Verify dashboard metadata.
	require.NotNil(t, dash.Uid)
	assert.Equal(t, "isl-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "ISL Overview", *dash.Title)

	// Verify template variable.
	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	// Verify we have 5 rows.
	assert.Len(t, dash.Panels, 5)

	// Count total inner panels.
	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 13, totalPanels)

	// Validate PromQL and metrics.
	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "isl-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "isl-recording", group.Name)
	require.Len(t, group.Rules, 7)

	expectedRecords := []string{
		"isl:lookups:rate5m",
		"isl:lookup_errors:rate5m",
		"isl:scheduled_triggers:rate5m",
		"isl:superseded_triggers:rate5m",
		"isl:token_refresh_errors:rate5m",
		"isl:http_requests:rate5m",
		"isl:http_errors:rate5m",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.NotEmpty(t, rule.Expr)
		assert.True(t, KnownMetrics[rule.Record], "%s missing from KnownMetrics", rule.Record)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)

	// Verify YAML marshaling works.
	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "isl-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "isl-alerts", group.Name)
	require.Len(t, group.Rules, 5)

	expectedAlerts := []string{
		"IslClientDown",
		"IslHighLookupErrorRate",
		"IslSlowLookups",
		"IslTokenRefreshFailing",
		"IslMockServerErrors",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Expr)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateExpr(t *testing.T) {
	t.Parallel()

	known := map[string]bool{"isl_lookups_total": true}

	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{name: "known metric", expr: `sum(rate(isl_lookups_total[5m]))`},
		{name: "unknown metric", expr: `rate(isl_nope_total[5m])`, wantErr: `unknown metric "isl_nope_total"`},
		{name: "syntax error", expr: `sum(rate(isl_lookups_total[5m])`, wantErr: "invalid PromQL"},
		{name: "no selectors", expr: `time()`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := validate.Expr("test", tt.expr, known)
			if tt.wantErr == "" {
				assert.True(t, res.Ok(), "unexpected errors: %v", res.Errors)
				return
			}
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tt.wantErr)
		})
	}
}

func TestValidateRules_MissingSeverity(t *testing.T) {
	t.Parallel()

	cr := rules.PrometheusRule{Spec: rules.PrometheusRuleSpec{Groups: []rules.RuleGroup{{
		Name:  "g",
		Rules: []rules.Rule{{Alert: "A", Expr: `up == 0`}},
	}}}}

	res := validate.Rules(cr, KnownMetrics)
	assert.True(t, res.Ok())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "g/A")
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, false))

	dash, err := os.ReadFile(filepath.Join(dir, "grafana", "isl-overview.json"))
	require.NoError(t, err)
	assert.Contains(t, string(dash), `"uid": "isl-overview"`)

	for _, name := range []string{"isl-recording-rules.yaml", "isl-alerts.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, "prometheus", name))
		require.NoError(t, err, name)
		assert.True(t, len(data) > len(generatedHeader))
		assert.Equal(t, generatedHeader, string(data[:len(generatedHeader)]), name)

		var cr rules.PrometheusRule
		require.NoError(t, yaml.Unmarshal(data, &cr), name)
		assert.Equal(t, "PrometheusRule", cr.Kind)
	}

	data, err := os.ReadFile(filepath.Join(dir, "prometheus", "rules", "isl.rules.yaml"))
	require.NoError(t, err)
	var f rules.RuleFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	assert.Len(t, f.Groups, 2)
}

func TestRun_ValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_RulesOnly(t *testing.T) {
	t.Parallel()

	files, res, err := generate(Config{OutputDir: "x", RulesEnabled: true})
	require.NoError(t, err)
	assert.True(t, res.Ok())
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join("prometheus", "isl-recording-rules.yaml"), files[0].path)
	assert.Equal(t, filepath.Join("prometheus", "isl-alerts.yaml"), files[1].path)
	assert.Equal(t, filepath.Join("prometheus", "rules", "isl.rules.yaml"), files[2].path)
}

func TestMergeRuleFile(t *testing.T) {
	t.Parallel()

	f := rules.Merge(rules.RecordingRules(), rules.AlertRules())
	require.Len(t, f.Groups, 2)
	assert.Equal(t, "isl-recording", f.Groups[0].Name)
	assert.Equal(t, "isl-alerts", f.Groups[1].Name)
	assert.Len(t, f.Rules(), 12)

	data, err := yaml.Marshal(f)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "apiVersion")

	var back rules.RuleFile
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, f, back)
}
