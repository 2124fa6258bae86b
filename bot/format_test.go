package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlbot/scraper"
)

func TestResultKeyboard(t *testing.T) {
	kb := resultKeyboard(squidResults())
	require.Len(t, kb.InlineKeyboard, 3)

	first := kb.InlineKeyboard[0][0]
	assert.Equal(t, "Squid Game", first.Text)
	assert.Equal(t, "mdl_12345", first.CallbackData)
}

func TestResultKeyboardTypeYearSuffix(t *testing.T) {
	kb := resultKeyboard([]scraper.SearchResult{
		{ID: "1", Title: "Squid Game", TypeYear: "Korean Drama - 2021"},
	})
	assert.Equal(t, "Squid Game (Korean Drama - 2021)", kb.InlineKeyboard[0][0].Text)
}

func TestResultKeyboardLabelCap(t *testing.T) {
	kb := resultKeyboard([]scraper.SearchResult{
		{ID: "1", Title: strings.Repeat("a", 100)},
	})
	label := kb.InlineKeyboard[0][0].Text
	assert.Len(t, []rune(label), labelLimit)
}

// The id embedded in callback data must round-trip through the session
// store lookup.
func TestCallbackDataRoundTrip(t *testing.T) {
	store := NewSessionStore()
	results := squidResults()
	store.Put(1, "Squid Game", results)

	kb := resultKeyboard(results)
	for i, row := range kb.InlineKeyboard {
		id := strings.TrimPrefix(row[0].CallbackData, callbackPrefix)
		r, ok := store.Get(1, id)
		require.True(t, ok)
		assert.Equal(t, results[i].ID, r.ID)
	}
}

func TestDetailCaption(t *testing.T) {
	d := &scraper.Details{
		Title:    "Squid Game",
		Rating:   "8.4",
		Country:  "South Korea",
		Type:     "Drama",
		Episodes: "9",
		Aired:    "Sep 17, 2021",
		Duration: "54 min.",
		Genres:   "Thriller, Drama",
		Synopsis: "Hundreds of cash-strapped players accept a strange invitation.",
		URL:      "https://mydramalist.com/12345-squid-game",
	}

	caption := detailCaption(d)
	assert.Contains(t, caption, "<b>Squid Game</b>")
	assert.Contains(t, caption, "<b>Rating:</b> 8.4/10")
	assert.Contains(t, caption, "<b>Country:</b> South Korea")
	assert.Contains(t, caption, "<b>Episodes:</b> 9")
	assert.Contains(t, caption, "<b>Aired:</b> Sep 17, 2021")
	assert.Contains(t, caption, "<b>Duration:</b> 54 min.")
	assert.Contains(t, caption, "<b>Genres:</b> Thriller, Drama")
	assert.Contains(t, caption, "<b>Synopsis:</b>\nHundreds of cash-strapped players")
}

func TestDetailCaptionEscapesMarkup(t *testing.T) {
	d := &scraper.Details{Title: "Alice <3 & Bob", Rating: "N/A"}
	caption := detailCaption(d)
	assert.Contains(t, caption, "Alice &lt;3 &amp; Bob")
	assert.NotContains(t, caption, "Alice <3")
}

func TestLinkKeyboard(t *testing.T) {
	kb := linkKeyboard("https://mydramalist.com/12345")
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "https://mydramalist.com/12345", kb.InlineKeyboard[0][0].URL)
	assert.Empty(t, kb.InlineKeyboard[0][0].CallbackData)
}
