package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"

	"mdlbot/scraper"
)

// callbackPrefix namespaces result-selection callback data.
const callbackPrefix = "mdl_"

// labelLimit is Telegram's inline button label cap.
const labelLimit = 64

const welcomeText = `👋 <b>Welcome to MyDramaList Search Bot!</b>

🔍 <b>Commands:</b>
<code>/drama &lt;title&gt;</code> - Search for a drama
<code>/help</code> - Show this message

<b>Example:</b>
<code>/drama Squid Game</code>`

const helpText = `📺 <b>MyDramaList Search Bot Help</b>

<b>How to use:</b>
1. Send <code>/drama &lt;title&gt;</code> to search for a drama
2. Click on a result to view details

<b>Examples:</b>
<code>/drama Squid Game</code>
<code>/drama Crash Landing on You</code>
<code>/drama Kingdom</code>

Bot will fetch information from MyDramaList.com`

const usageText = `❌ Please provide a drama title to search.

<b>Usage:</b> <code>/drama &lt;title&gt;</code>
<b>Example:</b> <code>/drama Squid Game</code>`

const genericErrorText = "❌ An error occurred. Please try again."

const searchFailedText = "⚠️ Search failed: MyDramaList is unavailable right now. Please try again later."

// resultKeyboard renders one button per search result, labelled with the
// title and, when present, its type/year subtitle. Callback data carries
// the result id under the callback prefix.
func resultKeyboard(results []scraper.SearchResult) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(results))
	for _, r := range results {
		label := r.Title
		if r.TypeYear != "" {
			label = fmt.Sprintf("%s (%s)", r.Title, r.TypeYear)
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         truncateLabel(label, labelLimit),
			CallbackData: callbackPrefix + r.ID,
		}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// linkKeyboard is the single link-out button under a detail message.
func linkKeyboard(detailURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "🌐 View on MyDramaList", URL: detailURL},
	}}}
}

// detailCaption formats a detail record for Telegram's HTML parse mode.
func detailCaption(d *scraper.Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", esc(d.Title))
	fmt.Fprintf(&b, "⭐ <b>Rating:</b> %s/10\n", esc(d.Rating))
	fmt.Fprintf(&b, "🌍 <b>Country:</b> %s\n", esc(d.Country))
	fmt.Fprintf(&b, "📺 <b>Type:</b> %s\n", esc(d.Type))
	fmt.Fprintf(&b, "📊 <b>Episodes:</b> %s\n", esc(d.Episodes))
	fmt.Fprintf(&b, "📅 <b>Aired:</b> %s\n", esc(d.Aired))
	fmt.Fprintf(&b, "⏱ <b>Duration:</b> %s\n", esc(d.Duration))
	fmt.Fprintf(&b, "🎭 <b>Genres:</b> %s\n\n", esc(d.Genres))
	fmt.Fprintf(&b, "📖 <b>Synopsis:</b>\n%s", esc(d.Synopsis))
	return b.String()
}

// esc keeps scraped text from being read as Telegram HTML markup.
func esc(s string) string { return html.EscapeString(s) }

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
