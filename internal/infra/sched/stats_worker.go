package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-worldtime-bot/internal/infra/metrics"
	"telegram-worldtime-bot/internal/usecase"
)

// StatsWorker periodically publishes registry totals to the log and the
// metrics registry.
type StatsWorker struct {
	interval time.Duration
	statsUC  usecase.StatsUseCase
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, statsUC usecase.StatsUseCase, logger *zerolog.Logger) *StatsWorker {
	statsLog := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		statsUC:  statsUC,
		log:      &statsLog,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			chats, zones, err := w.statsUC.Totals(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("stats worker error")
				continue
			}
			metrics.SetRegisteredChats(chats)
			metrics.SetDistinctZones(zones)
			w.log.Info().Int("chats", chats).Int("zones", zones).Msg("registry totals")
		}
	}
}
