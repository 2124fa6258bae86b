package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"charm.land/log/v2"
	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlbot/scraper"
)

// stubScraper counts facade calls and tracks whether a scrape session is
// still open at the end of an interaction.
type stubScraper struct {
	results    []scraper.SearchResult
	searchErr  error
	details    *scraper.Details
	detailsErr error

	searches int
	lookups  int
	closes   int
	open     bool
}

func (s *stubScraper) Search(_ context.Context, _ string) ([]scraper.SearchResult, error) {
	s.searches++
	s.open = true
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func (s *stubScraper) Details(_ context.Context, _ string) (*scraper.Details, error) {
	s.lookups++
	s.open = true
	if s.detailsErr != nil {
		return nil, s.detailsErr
	}
	return s.details, nil
}

func (s *stubScraper) Close() error {
	s.closes++
	s.open = false
	return nil
}

// panicScraper blows up mid-search, after the session is notionally open.
type panicScraper struct{ stubScraper }

func (s *panicScraper) Search(_ context.Context, _ string) ([]scraper.SearchResult, error) {
	s.open = true
	panic("browser gone")
}

// apiRecorder is a fake Telegram API server recording every method call
// and its request body.
type apiRecorder struct {
	mu      sync.Mutex
	methods []string
	bodies  []string
}

func (a *apiRecorder) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.methods = append(a.methods, path.Base(r.URL.Path))
	a.bodies = append(a.bodies, string(body))
	a.mu.Unlock()

	switch path.Base(r.URL.Path) {
	case "sendMessage", "editMessageText", "sendPhoto":
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":99,"chat":{"id":1,"type":"private"},"date":1}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}

func (a *apiRecorder) called(method string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range a.methods {
		if m == method {
			return true
		}
	}
	return false
}

func (a *apiRecorder) sawText(substr string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.bodies {
		if strings.Contains(b, substr) {
			return true
		}
	}
	return false
}

func newTestBot(t *testing.T, scr Scraper) (*Bot, *apiRecorder) {
	t.Helper()

	rec := &apiRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handle))
	t.Cleanup(srv.Close)

	b, err := newBot(
		Config{Token: "123456:test", Scraper: scr, Logger: log.New(io.Discard)},
		tg.WithServerURL(srv.URL),
		tg.WithSkipGetMe(),
		tg.WithNotAsyncHandlers(),
	)
	require.NoError(t, err)
	return b, rec
}

func dramaUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Text: text,
			Chat: models.Chat{ID: 1},
			From: &models.User{ID: 7},
		},
	}
}

func selectUpdate(data string) *models.Update {
	return &models.Update{
		ID: 2,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb1",
			From: models.User{ID: 7},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 10, Chat: models.Chat{ID: 1}},
			},
		},
	}
}

func TestDramaCommand(t *testing.T) {
	scr := &stubScraper{results: squidResults()}
	b, rec := newTestBot(t, scr)

	b.api.ProcessUpdate(context.Background(), dramaUpdate("/drama Squid Game"))

	assert.Equal(t, 1, scr.searches)
	assert.Equal(t, 1, scr.closes)
	assert.False(t, scr.open)
	assert.True(t, rec.called("editMessageText"))
	assert.True(t, rec.sawText("Search Results for"))

	// The stored set must resolve the ids the keyboard offers.
	_, ok := b.sessions.Get(7, "12345")
	assert.True(t, ok)
}

// An empty query is a usage error: nothing is fetched, so there is no
// session to close.
func TestDramaCommandEmptyQuery(t *testing.T) {
	for _, text := range []string{"/drama", "/drama   "} {
		scr := &stubScraper{results: squidResults()}
		b, rec := newTestBot(t, scr)

		b.api.ProcessUpdate(context.Background(), dramaUpdate(text))

		assert.Zero(t, scr.searches, "text %q", text)
		assert.Zero(t, scr.closes, "text %q", text)
		assert.True(t, rec.sawText("Please provide a drama title"), "text %q", text)
	}
}

// A search transport failure still closes the session exactly once and
// tells the user the site is unavailable rather than "no results".
func TestDramaCommandFetchFailure(t *testing.T) {
	scr := &stubScraper{searchErr: &scraper.FetchError{URL: "u", Err: context.DeadlineExceeded}}
	b, rec := newTestBot(t, scr)

	b.api.ProcessUpdate(context.Background(), dramaUpdate("/drama Squid Game"))

	assert.Equal(t, 1, scr.searches)
	assert.Equal(t, 1, scr.closes)
	assert.False(t, scr.open)
	assert.True(t, rec.sawText("unavailable right now"))
	assert.False(t, rec.sawText("No results found"))
}

func TestDramaCommandNoResults(t *testing.T) {
	scr := &stubScraper{}
	b, rec := newTestBot(t, scr)

	b.api.ProcessUpdate(context.Background(), dramaUpdate("/drama nothing here"))

	assert.Equal(t, 1, scr.searches)
	assert.Equal(t, 1, scr.closes)
	assert.True(t, rec.sawText("No results found for"))
}

func TestSelect(t *testing.T) {
	scr := &stubScraper{details: &scraper.Details{
		Title:    "Squid Game",
		ImageURL: "https://i.mydramalist.com/p.jpg",
		URL:      "https://mydramalist.com/12345",
	}}
	b, rec := newTestBot(t, scr)
	b.sessions.Put(7, "Squid Game", squidResults())

	b.api.ProcessUpdate(context.Background(), selectUpdate("mdl_12345"))

	assert.Equal(t, 1, scr.lookups)
	assert.Equal(t, 1, scr.closes)
	assert.False(t, scr.open)
	assert.True(t, rec.called("answerCallbackQuery"))
	assert.True(t, rec.called("sendPhoto"))
	assert.True(t, rec.called("deleteMessage"))
}

// A stale or unknown id never reaches the scraper, so no session opens.
func TestSelectStaleID(t *testing.T) {
	scr := &stubScraper{}
	b, rec := newTestBot(t, scr)
	b.sessions.Put(7, "Squid Game", squidResults())

	b.api.ProcessUpdate(context.Background(), selectUpdate("mdl_99999"))

	assert.Zero(t, scr.lookups)
	assert.Zero(t, scr.closes)
	assert.True(t, rec.sawText("Please search again"))
}

func TestSelectDetailsError(t *testing.T) {
	scr := &stubScraper{detailsErr: scraper.ErrDetailsUnavailable}
	b, rec := newTestBot(t, scr)
	b.sessions.Put(7, "Squid Game", squidResults())

	b.api.ProcessUpdate(context.Background(), selectUpdate("mdl_12345"))

	assert.Equal(t, 1, scr.lookups)
	assert.Equal(t, 1, scr.closes)
	assert.False(t, scr.open)
	assert.True(t, rec.sawText("Could not fetch drama details"))
	assert.False(t, rec.called("sendPhoto"))
}

// No-poster details go out as a text edit, never a photo.
func TestSelectWithoutPoster(t *testing.T) {
	scr := &stubScraper{details: &scraper.Details{Title: "Squid Game", URL: "https://mydramalist.com/12345"}}
	b, rec := newTestBot(t, scr)
	b.sessions.Put(7, "Squid Game", squidResults())

	b.api.ProcessUpdate(context.Background(), selectUpdate("mdl_12345"))

	assert.False(t, rec.called("sendPhoto"))
	assert.False(t, rec.called("deleteMessage"))
	assert.True(t, rec.called("editMessageText"))
	assert.Equal(t, 1, scr.closes)
}

// A handler panic must not leave the scrape session open and the user
// gets a generic failure message instead of silence.
func TestGuardReleasesSessionOnPanic(t *testing.T) {
	scr := &panicScraper{}
	b, rec := newTestBot(t, scr)

	require.NotPanics(t, func() {
		b.api.ProcessUpdate(context.Background(), dramaUpdate("/drama Squid Game"))
	})

	assert.False(t, scr.open)
	assert.GreaterOrEqual(t, scr.closes, 1)
	assert.True(t, rec.sawText("An error occurred"))
}
