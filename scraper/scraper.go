// Package scraper turns MyDramaList pages into structured records. It
// owns the headless-browser session lifecycle and the fixed extraction
// rules; callers get plain values and typed errors, never DOM handles.
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"charm.land/log/v2"
)

// DefaultBaseURL is the site all URLs are built against unless overridden.
const DefaultBaseURL = "https://mydramalist.com"

// Options configures a Scraper.
type Options struct {
	BaseURL  string        // defaults to DefaultBaseURL
	Timeout  time.Duration // per-fetch navigation timeout, defaults to 30s
	Headless bool          // headless browser mode (ignored with Static)
	Static   bool          // plain HTTP instead of a headless browser
	Logger   *log.Logger
}

// Scraper binds a Fetcher to the site's URL scheme: queries become search
// result lists, detail URLs become detail records. Close releases whatever
// the fetcher holds and is expected after every logical interaction; the
// next call relaunches lazily.
type Scraper struct {
	base    *url.URL
	fetcher Fetcher
	logger  *log.Logger
}

// New builds a Scraper from options.
func New(opts Options) (*Scraper, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var fetcher Fetcher
	if opts.Static {
		fetcher = NewStatic(opts.Timeout)
	} else {
		fetcher = NewSession(opts.Timeout, opts.Headless, logger)
	}

	return &Scraper{base: base, fetcher: fetcher, logger: logger}, nil
}

// Search fetches the search page for query and extracts its result list.
// An empty result page yields an empty slice and no error.
func (s *Scraper) Search(ctx context.Context, query string) ([]SearchResult, error) {
	searchURL := s.base.JoinPath("search")
	searchURL.RawQuery = "q=" + url.QueryEscape(query)

	s.logger.Info("Searching", "query", query, "url", searchURL.String())
	html, err := s.fetcher.Fetch(ctx, searchURL.String())
	if err != nil {
		return nil, err
	}

	results := ParseSearchResults(html, s.base)
	s.logger.Info("Search complete", "query", query, "results", len(results))
	return results, nil
}

// Details fetches and parses one title's detail page. A page that cannot
// be parsed into the minimum detail structure yields ErrDetailsUnavailable.
func (s *Scraper) Details(ctx context.Context, detailURL string) (*Details, error) {
	s.logger.Info("Fetching details", "url", detailURL)
	html, err := s.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return nil, err
	}

	d, ok := ParseDetailPage(html, s.base, detailURL)
	if !ok {
		return nil, ErrDetailsUnavailable
	}
	s.logger.Info("Details fetched", "title", d.Title)
	return &d, nil
}

// Close releases the underlying fetcher. Idempotent.
func (s *Scraper) Close() error { return s.fetcher.Close() }
