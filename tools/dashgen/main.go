package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/intellisearch-client/tools/dashgen/dashboards"
	"github.com/donaldgifford/intellisearch-client/tools/dashgen/rules"
	"github.com/donaldgifford/intellisearch-client/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// artifact is one generated file, relative to the output directory.
type artifact struct {
	path string
	data []byte
}

func run(cfg Config, validateOnly bool) error {
	files, res, err := generate(cfg)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !res.Ok() {
		return fmt.Errorf("validation failed:\n  %s", strings.Join(res.Errors, "\n  "))
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	for _, f := range files {
		path := filepath.Join(cfg.OutputDir, f.path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.data, 0o644); err != nil { //nolint:gosec // generated artifacts are meant to be world-readable
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("dashgen: wrote %s\n", path)
	}
	return nil
}

// generate builds the enabled artifacts and validates their PromQL.
func generate(cfg Config) ([]artifact, validate.Result, error) {
	var (
		files []artifact
		res   validate.Result
	)

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return nil, res, fmt.Errorf("building dashboard: %w", err)
		}
		res.Merge(validate.Dashboard(dash, KnownMetrics))

		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return nil, res, fmt.Errorf("marshaling dashboard: %w", err)
		}
		files = append(files, artifact{
			path: filepath.Join("grafana", "isl-overview.json"),
			data: append(data, '\n'),
		})
	}

	if cfg.RulesEnabled {
		for _, rf := range []struct {
			name string
			cr   rules.PrometheusRule
		}{
			{name: "isl-recording-rules.yaml", cr: rules.RecordingRules()},
			{name: "isl-alerts.yaml", cr: rules.AlertRules()},
		} {
			res.Merge(validate.Rules(rf.cr, KnownMetrics))

			data, err := yaml.Marshal(rf.cr)
			if err != nil {
				return nil, res, fmt.Errorf("marshaling %s: %w", rf.name, err)
			}
			files = append(files, artifact{
				path: filepath.Join("prometheus", rf.name),
				data: append([]byte(generatedHeader), data...),
			})
		}

		data, err := yaml.Marshal(rules.Merge(rules.RecordingRules(), rules.AlertRules()))
		if err != nil {
			return nil, res, fmt.Errorf("marshaling rules file: %w", err)
		}
		files = append(files, artifact{
			path: filepath.Join("prometheus", "rules", "isl.rules.yaml"),
			data: append([]byte(generatedHeader), data...),
		})
	}

	return files, res, nil
}
