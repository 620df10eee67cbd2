package usecase

import (
	"context"

	"telegram-worldtime-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Totals reports chats served and distinct zones in use, for /help and
	// the periodic report.
	Totals(ctx context.Context) (chats int, zones int, err error)
}

type statsUC struct {
	zones repository.MemberZoneRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(zones repository.MemberZoneRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{zones: zones, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (int, int, error) {
	chats, err := s.zones.CountChats(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	zones, err := s.zones.DistinctZoneCount(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	return chats, zones, nil
}
