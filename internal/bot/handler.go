package bot

import (
	"context"
	"errors"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Nomadcxx/cinepost/internal/logging"
	"github.com/Nomadcxx/cinepost/internal/naming"
	"github.com/Nomadcxx/cinepost/internal/ranker"
	"github.com/Nomadcxx/cinepost/internal/session"
	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

// handleDocument gates, parses, and opens a session for an uploaded file.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	filename := msg.Document.FileName
	if filename == "" {
		b.reply(msg, "⚠️ This file has no name, so I can't parse it.")
		return
	}

	if naming.IsArchiveFilename(filename) {
		b.reply(msg, "📦 Archives are skipped. Extract the file and send the video.")
		return
	}
	if !naming.IsVideoFilename(filename) {
		b.reply(msg, "⚠️ Unsupported file type. Send a video file (MKV, MP4, AVI, ...).")
		return
	}

	b.stats.filesReceived.Add(1)

	guess := b.currentParser().Parse(filename)
	b.log.Info("bot", "file received",
		logging.F("filename", filename),
		logging.F("title", guess.Title),
		logging.F("year", guess.Year))

	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	key := session.Key{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	b.store.Put(session.New(key, userID, msg.Document.FileID, filename, guess))

	prompt := tgbotapi.NewMessage(msg.Chat.ID, detectedPrompt(guess))
	prompt.ParseMode = tgbotapi.ModeHTML
	prompt.ReplyToMessageID = msg.MessageID
	prompt.ReplyMarkup = confirmKeyboard(msg.MessageID)
	if _, err := b.api.Send(prompt); err != nil {
		b.log.Error("bot", "failed to send confirmation prompt", err,
			logging.F("chat_id", msg.Chat.ID))
		b.store.Delete(key)
	}
}

// handleCallback routes inline keyboard taps to the right session.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn("bot", "failed to answer callback query")
	}

	if query.Message == nil {
		return
	}

	cb, err := parseCallback(query.Data)
	if err != nil {
		b.log.Warn("bot", "bad callback data", logging.F("data", query.Data))
		return
	}

	chatID := query.Message.Chat.ID
	key := session.Key{ChatID: chatID, MessageID: cb.MessageID}
	sess, ok := b.store.Get(key)
	if !ok {
		b.editPrompt(chatID, query.Message.MessageID, "⌛ This session has expired. Send the file again.")
		return
	}

	switch cb.Action {
	case actionSearch:
		if err := sess.CheckSearch(); err != nil {
			text := terminalText(err)
			if errors.Is(err, session.ErrInvalidTransition) {
				text = "✏️ Send me the corrected movie title first."
			}
			b.editPrompt(chatID, query.Message.MessageID, text)
			return
		}
		b.editPrompt(chatID, query.Message.MessageID, "🔍 Searching TMDB...")
		b.runSearch(ctx, sess, chatID, query.Message.MessageID)
	case actionEdit:
		if err := sess.EditTitle(); err != nil {
			b.editPrompt(chatID, query.Message.MessageID, terminalText(err))
			return
		}
		b.editPrompt(chatID, query.Message.MessageID,
			"✏️ Send me the correct movie title (you can include the year):")
	case actionCancel:
		if err := sess.Cancel(); err != nil {
			b.editPrompt(chatID, query.Message.MessageID, terminalText(err))
			return
		}
		b.store.Delete(key)
		b.editPrompt(chatID, query.Message.MessageID, "❌ Cancelled.")
	case actionChoose:
		chosen, err := sess.Choose(cb.Index)
		if err != nil {
			b.editPrompt(chatID, query.Message.MessageID, chooseErrorText(err))
			return
		}
		b.store.Delete(key)
		b.publish(ctx, sess, chosen, chatID, query.Message.MessageID)
	case actionNone:
		if err := sess.ChooseNone(); err != nil {
			b.editPrompt(chatID, query.Message.MessageID, terminalText(err))
			return
		}
		b.editPrompt(chatID, query.Message.MessageID,
			"✏️ None matched. Send me the correct movie title:")
	}
}

// handleText routes free-text replies to the chat's session that is
// waiting for a corrected title.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	sess, ok := b.store.ManualTitleSession(msg.Chat.ID)
	if !ok {
		return
	}

	if err := sess.SubmitTitle(msg.Text); err != nil {
		switch {
		case errors.Is(err, naming.ErrEmptyTitle):
			b.reply(msg, "⚠️ That title is empty. Send the movie name as plain text.")
		case errors.Is(err, session.ErrExpired), errors.Is(err, session.ErrNotActive):
			b.store.Delete(sess.Key())
			b.reply(msg, terminalText(err))
		default:
			b.reply(msg, "⚠️ Could not use that title, try again.")
		}
		return
	}

	prompt := tgbotapi.NewMessage(msg.Chat.ID, detectedPrompt(sess.Guess()))
	prompt.ParseMode = tgbotapi.ModeHTML
	prompt.ReplyMarkup = confirmKeyboard(sess.Key().MessageID)
	if _, err := b.api.Send(prompt); err != nil {
		b.log.Error("bot", "failed to send confirmation prompt", err,
			logging.F("chat_id", msg.Chat.ID))
	}
}

// runSearch queries the provider and presents candidates. A provider
// failure keeps the session where it is so the uploader can retry.
func (b *Bot) runSearch(ctx context.Context, sess *session.Session, chatID int64, promptID int) {
	b.stats.searchesRun.Add(1)

	guess := sess.Guess()
	candidates, err := b.tmdb.SearchMovies(ctx, guess.Title, guess.Year, b.cfg.Session.MaxResults)
	if err != nil {
		b.log.Error("bot", "provider search failed", err, logging.F("title", guess.Title))
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, promptID,
			"⚠️ Search failed, the movie database may be down. Try again.",
			confirmKeyboard(sess.Key().MessageID))
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(edit); err != nil {
			b.log.Warn("bot", "failed to edit prompt", logging.F("chat_id", chatID))
		}
		return
	}

	candidates = ranker.Select(candidates, b.cfg.Session.MaxResults, b.cfg.TMDB.TrustOrder)

	if err := sess.SetCandidates(candidates); err != nil {
		b.editPrompt(chatID, promptID, terminalText(err))
		return
	}

	if len(candidates) == 0 {
		b.editPrompt(chatID, promptID, fmt.Sprintf(
			"😕 No results for <code>%s</code>.\n\nSend me the correct movie title:",
			html.EscapeString(guess.String())))
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, promptID,
		selectionCaption(candidates),
		selectionKeyboard(sess.Key().MessageID, candidates))
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("bot", "failed to present candidates", logging.F("chat_id", chatID))
	}
}

// publish posts the chosen movie to the channel: poster with caption,
// then the original file forwarded after it.
func (b *Bot) publish(ctx context.Context, sess *session.Session, chosen *tmdb.Candidate, chatID int64, promptID int) {
	b.editPrompt(chatID, promptID,
		fmt.Sprintf("📤 Posting <b>%s</b> to the channel...", html.EscapeString(chosen.Title)))

	if err := b.verifyChannelAccess(); err != nil {
		b.log.Error("bot", "channel access check failed", err,
			logging.F("channel_id", b.cfg.Telegram.ChannelID))
		b.editPrompt(chatID, promptID,
			"⚠️ I can't post to the channel. Make sure the bot is a channel administrator.")
		return
	}

	caption := channelCaption(*chosen)
	channelID := b.cfg.Telegram.ChannelID

	posted := false
	if chosen.PosterURL != "" {
		if data, err := b.fetchPoster(ctx, chosen.PosterURL); err == nil {
			photo := tgbotapi.NewPhoto(channelID, tgbotapi.FileBytes{
				Name:  "poster.jpg",
				Bytes: data,
			})
			photo.Caption = caption
			photo.ParseMode = tgbotapi.ModeHTML
			if _, err := b.api.Send(photo); err == nil {
				posted = true
			} else {
				b.log.Error("bot", "failed to send poster", err)
			}
		} else {
			b.log.Warn("bot", "poster fetch failed", logging.F("url", chosen.PosterURL))
		}
	}
	if !posted {
		text := tgbotapi.NewMessage(channelID, caption)
		text.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(text); err != nil {
			b.log.Error("bot", "failed to post caption", err)
			b.editPrompt(chatID, promptID, "⚠️ There was an issue posting to the channel.")
			return
		}
	}

	forward := tgbotapi.NewForward(channelID, chatID, sess.Key().MessageID)
	if _, err := b.api.Send(forward); err != nil {
		b.log.Error("bot", "failed to forward file", err)
		b.editPrompt(chatID, promptID, "⚠️ Posted the details but could not forward the file.")
		return
	}

	b.stats.postsPublished.Add(1)
	b.log.Info("bot", "posted to channel",
		logging.F("title", chosen.Title),
		logging.F("tmdb_id", chosen.ID))
	b.editPrompt(chatID, promptID,
		fmt.Sprintf("✅ Posted <b>%s</b> to the channel!", html.EscapeString(chosen.Title)))
}

// fetchPoster returns poster bytes, from the cache when possible.
func (b *Bot) fetchPoster(ctx context.Context, url string) ([]byte, error) {
	if b.posters != nil {
		if data, err := b.posters.Get(url); err == nil && data != nil {
			return data, nil
		}
	}

	data, err := b.tmdb.FetchPoster(ctx, url)
	if err != nil {
		return nil, err
	}

	if b.posters != nil {
		if err := b.posters.Put(url, data); err != nil {
			b.log.Warn("bot", "failed to cache poster", logging.F("url", url))
		}
	}
	return data, nil
}

// verifyChannelAccess checks the bot is an administrator of the target
// channel before trying to post.
func (b *Bot) verifyChannelAccess() error {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: b.cfg.Telegram.ChannelID,
			UserID: b.api.Self.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("looking up bot membership: %w", err)
	}
	if member.Status != "administrator" && member.Status != "creator" {
		return fmt.Errorf("bot is %q in the channel, needs administrator", member.Status)
	}
	return nil
}

func (b *Bot) editPrompt(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("bot", "failed to edit prompt", logging.F("chat_id", chatID))
	}
}

func confirmKeyboard(fileMessageID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Search", encodeCallback(actionSearch, fileMessageID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit Title", encodeCallback(actionEdit, fileMessageID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", encodeCallback(actionCancel, fileMessageID)),
		),
	)
}

func selectionKeyboard(fileMessageID int, candidates []tmdb.Candidate) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(candidates)+1)
	for i, c := range candidates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(candidateButton(i, c), encodeChoice(fileMessageID, i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ None of these", encodeCallback(actionNone, fileMessageID)),
		tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel", encodeCallback(actionCancel, fileMessageID)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// terminalText maps terminal-state errors to a user-facing notice.
func terminalText(err error) string {
	if errors.Is(err, session.ErrExpired) {
		return "⌛ This session has expired. Send the file again."
	}
	return "This operation has already finished."
}

func chooseErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNoSuchCandidate):
		return "⚠️ Invalid selection."
	case errors.Is(err, session.ErrInvalidTransition):
		return "⚠️ Run a search before picking a movie."
	default:
		return terminalText(err)
	}
}
