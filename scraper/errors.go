package scraper

import (
	"errors"
	"fmt"
)

// ErrDetailsUnavailable is returned when a fetched page cannot be parsed
// into a detail record.
var ErrDetailsUnavailable = errors.New("details unavailable")

// LaunchError wraps a failure to start the headless browser.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("launch browser: %v", e.Err) }

func (e *LaunchError) Unwrap() error { return e.Err }

// FetchError wraps a navigation or transport failure for a single URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }
