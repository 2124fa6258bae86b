// Package output renders scrape results for the terminal.
package output

import (
	"fmt"
	"os"
	"strings"

	"charm.land/glamour/v2"

	"mdlbot/scraper"
)

// DetailMarkdown renders a detail record as a markdown document. Shared by
// the TUI pager and the plain search listing; the bot formats its own
// Telegram HTML instead.
func DetailMarkdown(d *scraper.Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	fmt.Fprintf(&b, "- **Rating:** %s/10\n", d.Rating)
	fmt.Fprintf(&b, "- **Country:** %s\n", d.Country)
	fmt.Fprintf(&b, "- **Type:** %s\n", d.Type)
	fmt.Fprintf(&b, "- **Episodes:** %s\n", d.Episodes)
	fmt.Fprintf(&b, "- **Aired:** %s\n", d.Aired)
	fmt.Fprintf(&b, "- **Duration:** %s\n", d.Duration)
	fmt.Fprintf(&b, "- **Genres:** %s\n\n", d.Genres)
	fmt.Fprintf(&b, "## Synopsis\n\n%s\n\n", d.Synopsis)
	fmt.Fprintf(&b, "[View on MyDramaList](%s)\n", d.URL)
	return b.String()
}

// RenderMarkdown pretty-prints markdown to stdout using glamour.
func RenderMarkdown(md string, wordWrap int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Print(rendered)
	return nil
}

// ListResults prints a plain numbered search listing for non-TTY output.
func ListResults(results []scraper.SearchResult) {
	for i, r := range results {
		line := fmt.Sprintf("%2d. %s", i+1, r.Title)
		if r.TypeYear != "" {
			line += fmt.Sprintf(" (%s)", r.TypeYear)
		}
		fmt.Fprintln(os.Stdout, line)
		fmt.Fprintf(os.Stdout, "    %s\n", r.URL)
	}
}
