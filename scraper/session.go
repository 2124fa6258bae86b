package scraper

import (
	"context"
	"sync"
	"time"

	"charm.land/log/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// firefoxUA is the fixed user agent sent with every fetch; the site serves
// fully rendered pages to it.
const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// defaultTimeout bounds a single navigation, network-idle wait included.
const defaultTimeout = 30 * time.Second

// Fetcher retrieves the HTML for a single URL. Close releases whatever the
// fetcher holds; it must be safe to call repeatedly.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// Session owns at most one headless browser process and hands out fully
// rendered pages. The browser launches lazily on the first Fetch after
// construction or after a Close, and every Fetch runs in its own incognito
// browsing context so no cookies or storage leak between fetches.
//
// The browser handle is shared across interactions without cross-call
// coordination: one logical interaction is expected to own the session end
// to end. Concurrent interactions racing to launch or close it is a known,
// accepted limitation.
type Session struct {
	timeout  time.Duration
	headless bool
	logger   *log.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewSession returns a Session that will launch its browser on first use.
func NewSession(timeout time.Duration, headless bool, logger *log.Logger) *Session {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Session{timeout: timeout, headless: headless, logger: logger}
}

// ensure launches and connects the browser if none is running. Idempotent.
func (s *Session) ensure() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	s.logger.Info("Launching headless browser")
	l := launcher.New().Headless(s.headless)
	controlURL, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return nil, &LaunchError{Err: err}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, &LaunchError{Err: err}
	}

	s.browser = browser
	s.launcher = l
	return browser, nil
}

// Fetch renders url in a fresh incognito browsing context and returns the
// page HTML once the document is loaded and the network has gone idle.
// The page and its browsing context are disposed on every return path.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	browser, err := s.ensure()
	if err != nil {
		return "", err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer func() {
		err := proto.TargetDisposeBrowserContext{
			BrowserContextID: incognito.BrowserContextID,
		}.Call(browser)
		if err != nil {
			s.logger.Debug("Dispose browsing context", "err", err)
		}
	}()

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer func() { _ = page.Close() }()

	// One deadline covers navigation, the idle wait and the HTML read.
	page = page.Context(ctx).Timeout(s.timeout)

	err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: firefoxUA})
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(url); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	wait()

	html, err := page.HTML()
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return html, nil
}

// Close tears down the browser and its launcher and resets the session to
// its pre-launch state. Safe to call at any time and repeatedly; teardown
// errors are logged, never returned.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return nil
	}

	s.logger.Info("Closing headless browser")
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("Browser close", "err", err)
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	s.browser = nil
	s.launcher = nil
	return nil
}
