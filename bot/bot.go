// Package bot wires Telegram updates to the scraper. One command or button
// click is one interaction: it may open a scrape session lazily and always
// closes it before the interaction finishes, so browser state never bleeds
// between users.
package bot

import (
	"context"
	"fmt"
	"strings"

	"charm.land/log/v2"
	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"mdlbot/scraper"
)

// Scraper is the part of the scrape facade the handlers drive. Satisfied
// by *scraper.Scraper.
type Scraper interface {
	Search(ctx context.Context, query string) ([]scraper.SearchResult, error)
	Details(ctx context.Context, url string) (*scraper.Details, error)
	Close() error
}

// Config carries everything the bot needs to run.
type Config struct {
	Token   string
	Scraper Scraper
	Logger  *log.Logger
}

// Bot is the interaction controller between Telegram and the scraper.
type Bot struct {
	api      *tg.Bot
	scraper  Scraper
	sessions *SessionStore
	logger   *log.Logger
}

// New creates the Telegram client and registers all handlers.
func New(cfg Config) (*Bot, error) {
	return newBot(cfg)
}

func newBot(cfg Config, opts ...tg.Option) (*Bot, error) {
	b := &Bot{
		scraper:  cfg.Scraper,
		sessions: NewSessionStore(),
		logger:   cfg.Logger,
	}
	if b.logger == nil {
		b.logger = log.Default()
	}

	api, err := tg.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	b.api = api

	api.RegisterHandler(tg.HandlerTypeMessageText, "/start", tg.MatchTypePrefix, b.onStart)
	api.RegisterHandler(tg.HandlerTypeMessageText, "/help", tg.MatchTypePrefix, b.onHelp)
	api.RegisterHandler(tg.HandlerTypeMessageText, "/drama", tg.MatchTypePrefix, b.guard(b.onDrama))
	api.RegisterHandler(tg.HandlerTypeCallbackQueryData, callbackPrefix, tg.MatchTypePrefix, b.guard(b.onSelect))

	return b, nil
}

// Run blocks on long polling until ctx is cancelled, then tears down any
// live scrape session.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("Bot started")
	b.api.Start(ctx)
	_ = b.scraper.Close()
	b.logger.Info("Bot stopped")
}

// guard keeps a panicking handler from killing the process: the scrape
// session is released and the user gets a generic failure message instead
// of silence.
func (b *Bot) guard(h tg.HandlerFunc) tg.HandlerFunc {
	return func(ctx context.Context, api *tg.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Handler panic", "panic", r)
				_ = b.scraper.Close()
				b.reply(ctx, update, genericErrorText)
			}
		}()
		h(ctx, api, update)
	}
}

func (b *Bot) onStart(ctx context.Context, _ *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.sendHTML(ctx, update.Message.Chat.ID, welcomeText, nil)
}

func (b *Bot) onHelp(ctx context.Context, _ *tg.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.sendHTML(ctx, update.Message.Chat.ID, helpText, nil)
}

// onDrama handles "/drama <title>": search, store the result set for the
// user, and offer the results as an inline keyboard.
func (b *Bot) onDrama(ctx context.Context, _ *tg.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	var query string
	if _, rest, ok := strings.Cut(msg.Text, " "); ok {
		query = strings.TrimSpace(rest)
	}
	if query == "" {
		// Usage error: no session is opened, nothing to close.
		b.sendHTML(ctx, msg.Chat.ID, usageText, nil)
		return
	}

	defer func() { _ = b.scraper.Close() }()

	b.logger.Info("Drama command", "user", msg.From.ID, "query", query)
	status := b.sendHTML(ctx, msg.Chat.ID,
		fmt.Sprintf("🔍 Searching for: <b>%s</b>...", esc(query)), nil)

	results, err := b.scraper.Search(ctx, query)
	if err != nil {
		b.logger.Error("Search failed", "query", query, "err", err)
		b.editStatus(ctx, status, msg.Chat.ID, searchFailedText, nil)
		return
	}
	if len(results) == 0 {
		b.editStatus(ctx, status, msg.Chat.ID,
			fmt.Sprintf("❌ No results found for: <b>%s</b>\n\nTry a different search term.", esc(query)), nil)
		return
	}

	b.sessions.Put(msg.From.ID, query, results)
	b.editStatus(ctx, status, msg.Chat.ID,
		fmt.Sprintf("📺 <b>Search Results for:</b> %s\n\nFound %d drama(s). Click to view details:",
			esc(query), len(results)),
		resultKeyboard(results))
}

// onSelect handles a result button click: resolve the id against the
// user's active result set, fetch details, and render them with a link-out
// button, as a photo caption when a poster is available.
func (b *Bot) onSelect(ctx context.Context, api *tg.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	_, _ = api.AnswerCallbackQuery(ctx, &tg.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	msg := cb.Message.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	id := strings.TrimPrefix(cb.Data, callbackPrefix)

	result, ok := b.sessions.Get(cb.From.ID, id)
	if !ok {
		// Stale or unknown selection; no fetch is performed.
		b.editHTML(ctx, chatID, msg.ID, "❌ Error: Drama information not found. Please search again.", nil)
		return
	}

	defer func() { _ = b.scraper.Close() }()

	b.logger.Info("Result selected", "user", cb.From.ID, "id", id)
	b.editHTML(ctx, chatID, msg.ID, "⏳ Loading drama details...", nil)

	details, err := b.scraper.Details(ctx, result.URL)
	if err != nil {
		b.logger.Error("Details failed", "url", result.URL, "err", err)
		b.editHTML(ctx, chatID, msg.ID, "❌ Error: Could not fetch drama details.", nil)
		return
	}

	caption := detailCaption(details)
	kb := linkKeyboard(details.URL)

	if details.ImageURL != "" {
		if b.sendPhoto(ctx, chatID, details.ImageURL, caption, kb) {
			_, _ = api.DeleteMessage(ctx, &tg.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID})
			return
		}
		b.logger.Warn("Photo delivery failed, falling back to text", "image", details.ImageURL)
	}
	b.editHTML(ctx, chatID, msg.ID, caption, kb)
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, text string, kb *models.InlineKeyboardMarkup) *models.Message {
	params := &tg.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	msg, err := b.api.SendMessage(ctx, params)
	if err != nil {
		b.logger.Error("Send message", "err", err)
		return nil
	}
	return msg
}

func (b *Bot) editHTML(ctx context.Context, chatID int64, messageID int, text string, kb *models.InlineKeyboardMarkup) {
	params := &tg.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: tg.True()},
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.api.EditMessageText(ctx, params); err != nil {
		b.logger.Error("Edit message", "err", err)
	}
}

// editStatus edits the earlier status message, or sends a fresh message if
// the status send itself had failed.
func (b *Bot) editStatus(ctx context.Context, status *models.Message, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	if status == nil {
		b.sendHTML(ctx, chatID, text, kb)
		return
	}
	b.editHTML(ctx, chatID, status.ID, text, kb)
}

func (b *Bot) sendPhoto(ctx context.Context, chatID int64, photoURL, caption string, kb *models.InlineKeyboardMarkup) bool {
	_, err := b.api.SendPhoto(ctx, &tg.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileString{Data: photoURL},
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb,
	})
	return err == nil
}

func (b *Bot) reply(ctx context.Context, update *models.Update, text string) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		chatID = update.CallbackQuery.Message.Message.Chat.ID
	default:
		return
	}
	b.sendHTML(ctx, chatID, text, nil)
}
