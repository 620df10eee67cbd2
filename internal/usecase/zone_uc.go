package usecase

import (
	"context"

	"telegram-worldtime-bot/internal/domain/model"
	"telegram-worldtime-bot/internal/domain/ports/repository"
	"telegram-worldtime-bot/internal/infra/logging"
	"telegram-worldtime-bot/internal/infra/metrics"
	"telegram-worldtime-bot/internal/tzdata"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ZoneUseCase = (*zoneUC)(nil)

// ZoneUseCase exposes the zone registration operations used by bot commands.
type ZoneUseCase interface {
	// SetZone validates input against the catalog, stores the registration
	// and returns the canonical zone identifier.
	SetZone(ctx context.Context, chatID, userID int64, input string) (string, error)

	// RemoveZone deletes the registration. Removing an absent one succeeds.
	RemoveZone(ctx context.Context, chatID, userID int64) error

	// GetZone returns the registered zone regardless of activity recency.
	GetZone(ctx context.Context, chatID, userID int64) (string, error)

	// ListActive returns recently active members grouped by zone, or
	// domain.ErrNotFound when the chat has no recent registrations.
	ListActive(ctx context.Context, chatID int64) (map[string][]int64, error)

	// TouchActivity is called on every inbound group message. Storage
	// failures are logged and swallowed; the message path must not fail
	// over a lost activity timestamp.
	TouchActivity(ctx context.Context, chatID, userID int64)
}

type zoneUC struct {
	catalog *tzdata.Catalog
	zones   repository.MemberZoneRepository
	log     *zerolog.Logger
}

func NewZoneUseCase(catalog *tzdata.Catalog, zones repository.MemberZoneRepository, logger *zerolog.Logger) *zoneUC {
	return &zoneUC{catalog: catalog, zones: zones, log: logger}
}

func (u *zoneUC) SetZone(ctx context.Context, chatID, userID int64, input string) (string, error) {
	defer logging.TraceDuration(u.log, "ZoneUC.SetZone")()

	canonical, err := u.catalog.Resolve(input)
	if err != nil {
		return "", err
	}
	record, err := model.NewMemberZone(chatID, userID, canonical)
	if err != nil {
		return "", err
	}
	if err := u.zones.Upsert(ctx, nil, record); err != nil {
		return "", err
	}
	return canonical, nil
}

func (u *zoneUC) RemoveZone(ctx context.Context, chatID, userID int64) error {
	defer logging.TraceDuration(u.log, "ZoneUC.RemoveZone")()
	return u.zones.Delete(ctx, nil, chatID, userID)
}

func (u *zoneUC) GetZone(ctx context.Context, chatID, userID int64) (string, error) {
	defer logging.TraceDuration(u.log, "ZoneUC.GetZone")()
	record, err := u.zones.Find(ctx, nil, chatID, userID)
	if err != nil {
		return "", err
	}
	return record.Zone, nil
}

func (u *zoneUC) ListActive(ctx context.Context, chatID int64) (map[string][]int64, error) {
	defer logging.TraceDuration(u.log, "ZoneUC.ListActive")()
	return u.zones.ListActiveGrouped(ctx, nil, chatID)
}

func (u *zoneUC) TouchActivity(ctx context.Context, chatID, userID int64) {
	if err := u.zones.TouchActivity(ctx, nil, chatID, userID); err != nil {
		metrics.IncActivityTouchFailure()
		logging.With(ctx, u.log).Warn().Err(err).
			Int64("chat_id", chatID).Int64("user_id", userID).
			Msg("activity touch dropped")
	}
}
