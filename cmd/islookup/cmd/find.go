package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/intellisearch-client/internal/lookup"
	domain "github.com/donaldgifford/intellisearch-client/pkg/types"
)

type findFlags struct {
	page     int
	pageSize int
	orderBy  string
	filters  []string
	grouping bool
	content  bool
	dateFrom string
	dateTo   string
}

func findCmd() *cobra.Command {
	var f findFlags

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Run a single find lookup",
		Long:  "Sends one find request and prints the matches.",
		Example: `  islookup find "release notes" --server https://search.example.com/RestService
  islookup find release --filter "System|Wiki" --order Date --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, strings.Join(args, " "), f)
		},
	}
	cmd.Flags().IntVar(&f.page, "page", 1, "result page")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "matches per page (default from config)")
	cmd.Flags().StringVar(&f.orderBy, "order", "", "order by (Relevance, Date)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "category filter path, levels separated by |")
	cmd.Flags().BoolVar(&f.grouping, "group", false, "group matches")
	cmd.Flags().BoolVar(&f.content, "content", false, "generate match content")
	cmd.Flags().StringVar(&f.dateFrom, "from", "", "lower date bound, e.g. now-7d")
	cmd.Flags().StringVar(&f.dateTo, "to", "", "upper date bound")

	return cmd
}

func runFind(cmd *cobra.Command, text string, f findFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	svc, err := newFind(cmd.Context(), cfg, log, &lookup.Settings[domain.Matches]{})
	if err != nil {
		return err
	}

	q := cfg.InitialQuery()
	q.QueryText = text
	q.MatchPage = f.page
	if f.pageSize > 0 {
		q.MatchPageSize = f.pageSize
	}
	if f.orderBy != "" {
		q.MatchOrderBy = domain.OrderBy(f.orderBy)
	}
	for _, path := range f.filters {
		q.Filters = append(q.Filters, domain.Filter{CategoryPath: strings.Split(path, "|")})
	}
	q.MatchGrouping = f.grouping
	q.MatchGenerateContent = f.content
	if f.dateFrom != "" {
		q.DateFrom = &domain.DateSpecification{Expression: f.dateFrom}
	}
	if f.dateTo != "" {
		q.DateTo = &domain.DateSpecification{Expression: f.dateTo}
	}

	log.Debug("find", "url", svc.URL(q))

	matches, err := svc.Lookup(cmd.Context(), q, true)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	return printMatches(cmd.OutOrStdout(), matches, jsonOutput())
}
