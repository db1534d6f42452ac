// Package bot wires Telegram updates to the parse, search, and posting
// flow. One goroutine consumes the update channel; session state keeps
// concurrent uploads in the same chat independent.
package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Nomadcxx/cinepost/internal/cache"
	"github.com/Nomadcxx/cinepost/internal/config"
	"github.com/Nomadcxx/cinepost/internal/health"
	"github.com/Nomadcxx/cinepost/internal/logging"
	"github.com/Nomadcxx/cinepost/internal/naming"
	"github.com/Nomadcxx/cinepost/internal/session"
	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

// Bot is the Telegram frontend.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	log     *logging.Logger
	store   *session.Store
	tmdb    *tmdb.Client
	posters *cache.PosterCache // nil when the cache is disabled

	parserMu sync.RWMutex
	parser   *naming.Parser

	stats     stats
	startedAt time.Time
}

// New connects to Telegram and builds the bot. The session store's expiry
// callback should be wired to NotifyExpired so uploaders learn their
// session timed out.
func New(cfg *config.Config, tmdbClient *tmdb.Client, store *session.Store, posters *cache.PosterCache, parser *naming.Parser, log *logging.Logger) (*Bot, error) {
	if log == nil {
		log = logging.Nop()
	}
	if parser == nil {
		parser = naming.DefaultParser()
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram: %w", err)
	}

	log.Info("bot", "authorized", logging.F("username", api.Self.UserName))

	return &Bot{
		api:       api,
		cfg:       cfg,
		log:       log,
		store:     store,
		tmdb:      tmdbClient,
		posters:   posters,
		parser:    parser,
		startedAt: time.Now(),
	}, nil
}

// SetParser swaps the filename parser, used when the rules file changes.
func (b *Bot) SetParser(p *naming.Parser) {
	b.parserMu.Lock()
	b.parser = p
	b.parserMu.Unlock()
}

func (b *Bot) currentParser() *naming.Parser {
	b.parserMu.RLock()
	defer b.parserMu.RUnlock()
	return b.parser
}

// NotifyExpired tells the uploader their session timed out. Intended as
// the session store's expiry callback.
func (b *Bot) NotifyExpired(s *session.Session) {
	b.stats.sessionsExpired.Add(1)
	msg := tgbotapi.NewMessage(s.Key().ChatID,
		fmt.Sprintf("⌛ Session for <code>%s</code> expired. Send the file again to retry.",
			html.EscapeString(s.FileName())))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("bot", "failed to send expiry notice", logging.F("chat_id", s.Key().ChatID))
	}
}

// StatusSnapshot implements health.StatusSource.
func (b *Bot) StatusSnapshot() health.Snapshot {
	snap := health.Snapshot{
		Uptime:          time.Since(b.startedAt).Round(time.Second).String(),
		ActiveSessions:  b.store.Count(),
		FilesReceived:   b.stats.filesReceived.Load(),
		SearchesRun:     b.stats.searchesRun.Load(),
		PostsPublished:  b.stats.postsPublished.Load(),
		SessionsExpired: b.stats.sessionsExpired.Load(),
	}
	if b.posters != nil {
		if n, err := b.posters.Count(); err == nil {
			snap.CachedPosters = n
		}
	}
	return snap
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot", "update loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot", "update loop stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		msg := update.Message
		if msg.From != nil && !b.cfg.IsUserAllowed(msg.From.ID) {
			b.reply(msg, "⛔ You are not allowed to use this bot.")
			return
		}
		switch {
		case msg.IsCommand():
			b.handleCommand(ctx, msg)
		case msg.Document != nil:
			b.handleDocument(ctx, msg)
		case msg.Text != "":
			b.handleText(ctx, msg)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		name := "there"
		if msg.From != nil && msg.From.FirstName != "" {
			name = msg.From.FirstName
		}
		b.reply(msg, startMessage(name))
	case "help":
		b.reply(msg, helpMessage())
	case "status":
		b.reply(msg, b.statusMessage())
	case "parse":
		b.handleParseCommand(msg)
	case "cancel":
		b.handleCancelCommand(msg)
	default:
		b.reply(msg, "Unknown command. Try /help.")
	}
}

// handleParseCommand runs the filename parser on command arguments so
// users can test what a filename resolves to.
func (b *Bot) handleParseCommand(msg *tgbotapi.Message) {
	b.stats.parseRequests.Add(1)

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.reply(msg, "<b>Filename Parser Test</b>\n\n"+
			"Usage: <code>/parse filename.mkv</code>\n\n"+
			"Examples:\n"+
			"• <code>/parse Movie.Name.2024.1080p.WEB-DL.mkv</code>\n"+
			"• <code>/parse Movie_2023_BluRay_x264.mp4</code>")
		return
	}

	guess := b.currentParser().Parse(args)
	year := "Not detected"
	if guess.Year > 0 {
		year = fmt.Sprintf("%d", guess.Year)
	}

	b.reply(msg, fmt.Sprintf(
		"🔍 <b>Filename Parser Result</b>\n\n"+
			"<b>Input:</b>\n<code>%s</code>\n\n"+
			"🎬 <b>Title:</b> %s\n"+
			"📅 <b>Year:</b> %s\n\n"+
			"<b>Final:</b> <u>%s</u>",
		html.EscapeString(args),
		html.EscapeString(guess.Title),
		year,
		html.EscapeString(guess.String())))
}

// handleCancelCommand abandons every open session in the chat.
func (b *Bot) handleCancelCommand(msg *tgbotapi.Message) {
	n := b.store.CancelChat(msg.Chat.ID)
	if n == 0 {
		b.reply(msg, "Nothing to cancel.")
		return
	}
	b.reply(msg, fmt.Sprintf("❌ Cancelled %d pending operation(s).", n))
}

func (b *Bot) statusMessage() string {
	snap := b.StatusSnapshot()
	return fmt.Sprintf(
		"🤖 <b>Cinepost Status</b>\n\n"+
			"<b>Uptime:</b> %s\n"+
			"<b>Active sessions:</b> %d\n"+
			"<b>Files received:</b> %d\n"+
			"<b>Searches run:</b> %d\n"+
			"<b>Posts published:</b> %d\n"+
			"<b>Sessions expired:</b> %d\n"+
			"<b>Cached posters:</b> %d\n\n"+
			"<b>Channel ID:</b> <code>%d</code>",
		snap.Uptime,
		snap.ActiveSessions,
		snap.FilesReceived,
		snap.SearchesRun,
		snap.PostsPublished,
		snap.SessionsExpired,
		snap.CachedPosters,
		b.cfg.Telegram.ChannelID)
}

func startMessage(firstName string) string {
	return fmt.Sprintf(
		"👋 Hello, %s!\n\n"+
			"🎬 <b>Welcome to Cinepost!</b>\n\n"+
			"Send me a movie file and I will:\n"+
			"• 🔍 Parse the title from the filename\n"+
			"• ✏️ Let you correct it if needed\n"+
			"• 📸 Find the poster and details on TMDB\n"+
			"• 📤 Post it all to the channel\n\n"+
			"Try /help for the full command list.",
		html.EscapeString(firstName))
}

func helpMessage() string {
	return "📖 <b>Cinepost Help</b>\n\n" +
		"<b>Commands:</b>\n" +
		"/start - Welcome message\n" +
		"/help - This help message\n" +
		"/status - Bot status and counters\n" +
		"/parse - Test the filename parser\n" +
		"/cancel - Cancel pending operations\n\n" +
		"<b>How to use:</b>\n" +
		"1. Forward me a movie file\n" +
		"2. Confirm or edit the detected title\n" +
		"3. Pick the right movie from the results\n" +
		"4. The post lands in the channel\n\n" +
		"<b>How to use /parse:</b>\n" +
		"Send: <code>/parse Movie.Name.2024.1080p.mkv</code>"
}

// reply sends an HTML message in response to msg.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.log.Warn("bot", "failed to send reply", logging.F("chat_id", msg.Chat.ID))
	}
}
