package cmd

import (
	"context"
	"fmt"

	"charm.land/log/v2"
	"github.com/spf13/cobra"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"mdlbot/output"
	"mdlbot/scraper"
	"mdlbot/tui"
)

func newDumpCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <url>",
		Short: "Fetch a rendered page and print it as markdown",
		Long: "Debugging aid: fetches a page the same way the bot does and prints the\n" +
			"rendered content as markdown, so extraction problems can be inspected.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runDump(c.Context(), cfg, args[0])
		},
	}
}

func runDump(ctx context.Context, cfg *config, pageURL string) error {
	logger := newLogger(log.WarnLevel)

	var fetcher scraper.Fetcher
	if cfg.Static {
		fetcher = scraper.NewStatic(cfg.Timeout)
	} else {
		fetcher = scraper.NewSession(cfg.Timeout, cfg.Headless, logger)
	}
	defer func() { _ = fetcher.Close() }()

	html, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(html, converter.WithDomain(pageURL))
	if err != nil {
		return fmt.Errorf("markdown conversion failed: %w", err)
	}

	if !tui.IsTTY() {
		fmt.Println(md)
		return nil
	}
	return output.RenderMarkdown(fmt.Sprintf("# %s\n\n%s", pageURL, md), cfg.WordWrap)
}
