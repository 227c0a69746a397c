// Package cmd implements the islookup CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/intellisearch-client/internal/auth"
	"github.com/donaldgifford/intellisearch-client/internal/config"
	"github.com/donaldgifford/intellisearch-client/internal/find"
	"github.com/donaldgifford/intellisearch-client/internal/lookup"
	"github.com/donaldgifford/intellisearch-client/pkg/logger"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "islookup",
		Short: "Command-line client for IntelliSearch lookups",
		Long: "islookup queries an IntelliSearch find service from the terminal.\n" +
			"It runs one-off searches, or reads query text line by line and\n" +
			"lets the find triggers decide when to search.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().
		String("server", "", "search service base URL, e.g. https://host/RestService")
	rootCmd.PersistentFlags().
		String("token", "", "static bearer token")
	rootCmd.PersistentFlags().
		String("token-url", "", "JWT token endpoint, refreshed before expiry")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("log-level", "", "log level (debug, info, warn, error)")

	for _, name := range []string{"server", "token", "token-url", "output", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(typeaheadCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	viper.SetEnvPrefix("ISL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file when one is given and lets flags and
// ISL_* environment variables override it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if v := viper.GetString("server"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := viper.GetString("token"); v != "" {
		cfg.Auth.Token = v
		cfg.Auth.TokenURL = ""
	}
	if v := viper.GetString("token-url"); v != "" {
		cfg.Auth.TokenURL = v
		cfg.Auth.Token = ""
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if cfg.Query.ClientID == "" {
		cfg.Query.ClientID = "islookup-" + uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

// newAuth returns the token source for cfg. A token URL starts a refresh
// loop bound to ctx after the first token is fetched.
func newAuth(ctx context.Context, cfg *config.Config, log *slog.Logger) (lookup.AuthToken, error) {
	switch {
	case cfg.Auth.TokenURL != "":
		h := auth.NewHandler(
			cfg.Auth.TokenURL,
			auth.WithTokenPath(cfg.Auth.TokenPath),
			auth.WithRefreshBuffer(cfg.Auth.RefreshBuffer),
			auth.WithLogger(log),
		)
		if err := h.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("fetching authentication token: %w", err)
		}
		go func() {
			if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("token refresh stopped", "error", err)
			}
		}()
		return h, nil
	case cfg.Auth.Token != "":
		return auth.StaticToken(cfg.Auth.Token), nil
	default:
		return nil, nil
	}
}

func newFind(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	settings *lookup.Settings[domain.Matches],
) (*find.Find, error) {
	tokens, err := newAuth(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	s := *settings
	s.Path = cfg.Service.Path

	return find.New(
		cfg.Service.BaseURL,
		&s,
		tokens,
		find.WithTriggers(cfg.FindTriggers()),
		find.WithHTTPClient(newHTTPClient(cfg)),
		find.WithLogger(log),
		find.WithContext(ctx),
	)
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Service.Timeout}
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
