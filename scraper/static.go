package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// Static fetches pages over plain HTTP without a browser. It serves
// server-rendered pages and tests; select it with --static.
type Static struct {
	timeout time.Duration
}

// NewStatic returns a plain-HTTP Fetcher.
func NewStatic(timeout time.Duration) *Static {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Static{timeout: timeout}
}

// Fetch downloads url and returns the raw response body.
func (s *Static) Fetch(ctx context.Context, url string) (string, error) {
	c := colly.NewCollector(colly.UserAgent(firefoxUA))
	c.SetRequestTimeout(s.timeout)

	var body string
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &FetchError{
			URL: url,
			Err: fmt.Errorf("request failed (status %d): %w", r.StatusCode, err),
		}
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return "", fetchErr
		}
		return "", &FetchError{URL: url, Err: err}
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}

// Close implements Fetcher; there is nothing to tear down.
func (s *Static) Close() error { return nil }
