// Package bot wires the Telegram update loop to the query-resolution pipeline.
// A single poller goroutine feeds a bounded queue drained by a pool of workers,
// so one slow provider or store call cannot head-of-line-block other chats.
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/moviebot/movies"
	"github.com/onnwee/moviebot/telegram"
	"github.com/onnwee/moviebot/telemetry"
)

// offsetKey is the kv key under which the last confirmed update offset is kept,
// so a restart does not replay already-handled messages.
const offsetKey = "telegram_offset"

// Store is the persistence surface consumed by command dispatch.
// *db.Store satisfies it; tests use in-memory fakes.
type Store interface {
	RecordSearch(ctx context.Context, userID int64, query string) error
	SearchHistory(ctx context.Context, userID int64, limit int) ([]string, error)
	SearchCount(ctx context.Context, userID int64) (int, error)
	ClearHistory(ctx context.Context, userID int64) error
	GetKV(ctx context.Context, key string) (string, error)
	SetKV(ctx context.Context, key, value string) error
}

// Bot runs the long-poll loop and dispatches inbound messages.
type Bot struct {
	Client   *telegram.Client
	Resolver *movies.Resolver
	Store    Store

	// Workers is the dispatch pool size. Zero means 4.
	Workers int
	// PollTimeout is the getUpdates long-poll window. Zero means 30s.
	PollTimeout time.Duration
}

func (b *Bot) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return 4
}

func (b *Bot) pollTimeout() time.Duration {
	if b.PollTimeout > 0 {
		return b.PollTimeout
	}
	return 30 * time.Second
}

// Run polls for updates until ctx is canceled, then drains the queue and waits
// for all workers to exit.
func (b *Bot) Run(ctx context.Context) {
	telemetry.Init()

	offset := b.loadOffset(ctx)
	queue := make(chan telegram.Update, 64)

	var wg sync.WaitGroup
	for i := 0; i < b.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range queue {
				telemetry.SetQueueDepth(len(queue))
				b.handleUpdate(ctx, u)
			}
		}()
	}

	slog.Info("bot started", slog.Int("workers", b.workers()), slog.Int64("offset", offset))
	for ctx.Err() == nil {
		updates, err := b.Client.GetUpdates(ctx, offset, b.pollTimeout())
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Warn("getUpdates failed", slog.Any("err", err))
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			select {
			case queue <- u:
				telemetry.SetQueueDepth(len(queue))
			case <-ctx.Done():
			}
		}
		if len(updates) > 0 {
			b.saveOffset(ctx, offset)
		}
	}

	close(queue)
	wg.Wait()
	slog.Info("bot stopped")
}

func (b *Bot) loadOffset(ctx context.Context) int64 {
	if b.Store == nil {
		return 0
	}
	v, err := b.Store.GetKV(ctx, offsetKey)
	if err != nil {
		slog.Warn("failed to load update offset", slog.Any("err", err))
		return 0
	}
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("invalid stored update offset", slog.String("value", v))
		return 0
	}
	return n
}

func (b *Bot) saveOffset(ctx context.Context, offset int64) {
	if b.Store == nil {
		return
	}
	if err := b.Store.SetKV(ctx, offsetKey, strconv.FormatInt(offset, 10)); err != nil {
		slog.Warn("failed to persist update offset", slog.Any("err", err))
	}
}

// handleUpdate processes one inbound update. Panics are recovered here so a
// single bad message cannot take down the worker; the user gets a generic
// error reply and the process keeps serving other chats.
func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil || u.Message.Text == "" {
		return
	}
	msg := u.Message

	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	ctx, span := telemetry.StartSpan(ctx, "bot", "update.handle")
	defer span.End()
	log := telemetry.LoggerWithCorr(ctx)

	defer func() {
		if r := recover(); r != nil {
			telemetry.HandlerPanics.Inc()
			log.Error("panic in message handler", slog.Any("panic", r), slog.String("text", msg.Text), slog.Int64("chat", msg.Chat.ID))
			b.reply(ctx, msg.Chat.ID, msgError)
		}
	}()

	telemetry.MessagesHandled.Inc()
	telemetry.TimeFunc(telemetry.HandleDuration, func() {
		b.dispatch(ctx, msg)
	})
}

// reply sends plain text and counts delivery failures. Used for every non-photo
// outbound message.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.Client.SendMessage(ctx, chatID, text, telegram.ParseModeMarkdown); err != nil {
		telemetry.RepliesFailed.Inc()
		telemetry.LoggerWithCorr(ctx).Error("failed to send reply", slog.Int64("chat", chatID), slog.Any("err", err))
	}
}
