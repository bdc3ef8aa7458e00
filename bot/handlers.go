package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/onnwee/moviebot/movies"
	"github.com/onnwee/moviebot/telegram"
	"github.com/onnwee/moviebot/telemetry"
)

// dispatch routes one text message. Commands are matched on the first token;
// anything else is a free-text title query. Per-message state only — there is
// no multi-turn flow.
func (b *Bot) dispatch(ctx context.Context, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if !strings.HasPrefix(text, "/") {
		b.handleQuery(ctx, chatID, userID, text, true)
		return
	}

	cmd, arg := splitCommand(text)
	switch cmd {
	case "start":
		b.reply(ctx, chatID, msgWelcome)
	case "help":
		b.reply(ctx, chatID, msgHelp)
	case "history":
		b.handleHistory(ctx, chatID, userID)
	case "stats":
		b.handleStats(ctx, chatID, userID)
	case "clearhistory":
		b.handleClearHistory(ctx, chatID, userID)
	case "search":
		if arg == "" {
			b.reply(ctx, chatID, msgSearchUsage)
			return
		}
		b.handleQuery(ctx, chatID, userID, arg, true)
	case "random":
		// Discovery feature: same fetch+format path, never recorded as a search.
		b.handleQuery(ctx, chatID, userID, randomTitle(), false)
	case "quote":
		b.reply(ctx, chatID, randomQuote())
	default:
		b.reply(ctx, chatID, msgUnknownCommand)
	}
}

// splitCommand parses "/cmd@botname arg..." into a lowered command name and the
// trimmed remainder.
func splitCommand(text string) (cmd, arg string) {
	text = strings.TrimPrefix(text, "/")
	cmd, arg, _ = strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// handleQuery resolves a title and replies with the formatted record, as a photo
// message when a poster URL is available. History and the stat counter are
// touched only for recorded, non-absent lookups.
func (b *Bot) handleQuery(ctx context.Context, chatID, userID int64, query string, recordHistory bool) {
	log := telemetry.LoggerWithCorr(ctx)

	rec, ok := b.Resolver.Lookup(ctx, query)
	if !ok {
		b.reply(ctx, chatID, msgNotFound)
		return
	}

	if recordHistory && b.Store != nil {
		if err := b.Store.RecordSearch(ctx, userID, query); err != nil {
			// The lookup succeeded; a bookkeeping failure must not eat the reply.
			log.Error("failed to record search", slog.Int64("user", userID), slog.String("query", query), slog.Any("err", err))
		}
	}

	text := movies.Format(rec)
	if rec.PosterURL != "" {
		if err := b.Client.SendPhoto(ctx, chatID, rec.PosterURL, text, telegram.ParseModeMarkdown); err != nil {
			telemetry.RepliesFailed.Inc()
			log.Error("failed to send photo reply", slog.Int64("chat", chatID), slog.Any("err", err))
		}
		return
	}
	b.reply(ctx, chatID, text)
}

func (b *Bot) handleHistory(ctx context.Context, chatID, userID int64) {
	history, err := b.Store.SearchHistory(ctx, userID, 10)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("failed to load history", slog.Int64("user", userID), slog.Any("err", err))
		b.reply(ctx, chatID, msgError)
		return
	}
	if len(history) == 0 {
		b.reply(ctx, chatID, msgHistoryEmpty)
		return
	}
	var sb strings.Builder
	sb.WriteString(msgHistoryHeader)
	for i, q := range history {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}
	b.reply(ctx, chatID, sb.String())
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	count, err := b.Store.SearchCount(ctx, userID)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("failed to load stats", slog.Int64("user", userID), slog.Any("err", err))
		b.reply(ctx, chatID, msgError)
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf(msgStatsFmt, count))
}

func (b *Bot) handleClearHistory(ctx context.Context, chatID, userID int64) {
	if err := b.Store.ClearHistory(ctx, userID); err != nil {
		telemetry.LoggerWithCorr(ctx).Error("failed to clear history", slog.Int64("user", userID), slog.Any("err", err))
		b.reply(ctx, chatID, msgError)
		return
	}
	b.reply(ctx, chatID, msgHistoryCleared)
}
