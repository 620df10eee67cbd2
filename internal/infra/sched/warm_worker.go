package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-worldtime-bot/internal/domain/ports/adapter"
	"telegram-worldtime-bot/internal/domain/ports/repository"
	red "telegram-worldtime-bot/internal/infra/redis"
)

// WarmWorker periodically pre-resolves display names for registered members
// so list commands render without per-member gateway lookups. A Redis lock
// keeps the cycle single-flight when several bot instances run.
type WarmWorker struct {
	interval time.Duration
	zones    repository.MemberZoneRepository
	bot      adapter.TelegramBotAdapter
	locker   red.Locker
	log      *zerolog.Logger
}

func NewWarmWorker(interval time.Duration, zones repository.MemberZoneRepository, bot adapter.TelegramBotAdapter, locker red.Locker, logger *zerolog.Logger) *WarmWorker {
	warmLog := logger.With().Str("component", "WarmWorker").Logger()
	return &WarmWorker{
		interval: interval,
		zones:    zones,
		bot:      bot,
		locker:   locker,
		log:      &warmLog,
	}
}

func (w *WarmWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting warm worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping warm worker")
			return ctx.Err()
		case <-ticker.C:
			if err := w.warmAll(ctx); err != nil {
				w.log.Error().Err(err).Msg("warm worker error")
			}
		}
	}
}

func (w *WarmWorker) warmAll(ctx context.Context) error {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, red.WarmLockKey, w.interval)
		if err != nil {
			if errors.Is(err, red.ErrLockHeld) {
				w.log.Debug().Msg("warm cycle running elsewhere, skipping")
				return nil
			}
			return err
		}
		defer func() { _ = w.locker.Unlock(ctx, red.WarmLockKey, token) }()
	}

	chats, err := w.zones.ListChats(ctx, nil)
	if err != nil {
		return err
	}
	for _, chatID := range chats {
		members, err := w.zones.ListMembers(ctx, nil, chatID)
		if err != nil {
			w.log.Warn().Err(err).Int64("chat_id", chatID).Msg("skipping chat warm")
			continue
		}
		w.bot.WarmMembers(ctx, chatID, members)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	w.log.Debug().Int("chats", len(chats)).Msg("member name warm complete")
	return nil
}
