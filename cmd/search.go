package cmd

import (
	"context"
	"fmt"
	"strings"

	"charm.land/log/v2"
	"github.com/spf13/cobra"

	"mdlbot/output"
	"mdlbot/tui"
)

func newSearchCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "search <title>...",
		Short: "Search MyDramaList from the terminal",
		Long: "Searches by title and opens an interactive results browser on a TTY,\n" +
			"or prints a plain listing otherwise.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runSearch(c.Context(), cfg, strings.Join(args, " "))
		},
	}
}

func runSearch(ctx context.Context, cfg *config, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("empty search query")
	}

	logger := newLogger(log.InfoLevel)

	scr, err := cfg.newScraper(logger)
	if err != nil {
		return err
	}
	defer func() { _ = scr.Close() }()

	results, err := scr.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		logger.Warn("No results", "query", query)
		return nil
	}

	if tui.IsTTY() {
		return tui.Browse(ctx, query, results, scr.Details)
	}

	output.ListResults(results)
	return nil
}
