package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/intellisearch-client/internal/lookup"
	"github.com/donaldgifford/intellisearch-client/internal/session"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

func typeaheadCmd() *cobra.Command {
	var (
		batch       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "typeahead",
		Short: "Feed query text from stdin through the find triggers",
		Long: "Reads stdin line by line. Each line replaces the query text, as if\n" +
			"typed into a search box; the find triggers decide whether it searches\n" +
			"now, after the debounce delay, or not at all. With --batch triggered\n" +
			"lookups are held back and only the last one runs.",
		Example: `  printf 'rel\nrelease \n' | islookup typeahead --server http://localhost:9000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTypeahead(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), batch, metricsAddr)
		},
	}
	cmd.Flags().BoolVar(&batch, "batch", false, "defer lookups until stdin is exhausted")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running, e.g. :9464")

	return cmd
}

func runTypeahead(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	batch bool,
	metricsAddr string,
) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if metricsAddr != "" {
		stop := serveMetrics(metricsAddr, log)
		defer stop()
	}

	asJSON := jsonOutput()
	var mu sync.Mutex
	settings := &lookup.Settings[domain.Matches]{
		OnSuccess: func(m domain.Matches) {
			mu.Lock()
			defer mu.Unlock()
			if err := printMatches(out, &m, asJSON); err != nil {
				log.Error("printing matches", "error", err)
			}
		},
		OnError: func(err error) {
			log.Error("find failed", "error", err)
		},
	}

	svc, err := newFind(ctx, cfg, log, settings)
	if err != nil {
		return err
	}

	s := session.New(cfg.InitialQuery(), svc)
	if batch {
		s.DeferUpdates(true, false)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		s.SetQueryText(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	// Input ended before the debounce fired; trigger the armed text now.
	svc.Flush()
	if batch {
		s.DeferUpdates(false, false)
	}

	svc.Wait()
	return nil
}

// serveMetrics exposes /metrics on addr and returns a func that shuts the
// listener down.
func serveMetrics(addr string, log *slog.Logger) func() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			log.Warn("shutting down metrics server", "error", err)
		}
	}
}
