package postgres

import (
	"context"
	"strconv"
	"time"

	"telegram-worldtime-bot/internal/domain/model"
	"telegram-worldtime-bot/internal/domain/ports/repository"
	"telegram-worldtime-bot/internal/infra/metrics"
	red "telegram-worldtime-bot/internal/infra/redis"
)

var _ repository.MemberZoneRepository = (*memberZoneRepoCacheDecorator)(nil)

const (
	distinctZonesKey = "stats:distinct_zones"
	chatCountKey     = "stats:chat_count"
)

// memberZoneRepoCacheDecorator caches the global statistics queries, which
// back /help and the periodic report and tolerate short staleness. Point
// lookups and writes pass through; writes invalidate the cached counts.
type memberZoneRepoCacheDecorator struct {
	inner repository.MemberZoneRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewMemberZoneRepoCacheDecorator(inner repository.MemberZoneRepository, cache red.RedisClient, ttl time.Duration) repository.MemberZoneRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &memberZoneRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *memberZoneRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, record *model.MemberZone) error {
	_ = d.cache.Del(ctx, distinctZonesKey, chatCountKey)
	return d.inner.Upsert(ctx, tx, record)
}

func (d *memberZoneRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, chatID, userID int64) error {
	_ = d.cache.Del(ctx, distinctZonesKey, chatCountKey)
	return d.inner.Delete(ctx, tx, chatID, userID)
}

func (d *memberZoneRepoCacheDecorator) TouchActivity(ctx context.Context, tx repository.Tx, chatID, userID int64) error {
	return d.inner.TouchActivity(ctx, tx, chatID, userID)
}

func (d *memberZoneRepoCacheDecorator) Find(ctx context.Context, tx repository.Tx, chatID, userID int64) (*model.MemberZone, error) {
	return d.inner.Find(ctx, tx, chatID, userID)
}

func (d *memberZoneRepoCacheDecorator) ListActiveGrouped(ctx context.Context, tx repository.Tx, chatID int64) (map[string][]int64, error) {
	return d.inner.ListActiveGrouped(ctx, tx, chatID)
}

func (d *memberZoneRepoCacheDecorator) HasAny(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	return d.inner.HasAny(ctx, tx, chatID)
}

func (d *memberZoneRepoCacheDecorator) ListChats(ctx context.Context, tx repository.Tx) ([]int64, error) {
	return d.inner.ListChats(ctx, tx)
}

func (d *memberZoneRepoCacheDecorator) ListMembers(ctx context.Context, tx repository.Tx, chatID int64) ([]int64, error) {
	return d.inner.ListMembers(ctx, tx, chatID)
}

func (d *memberZoneRepoCacheDecorator) DistinctZoneCount(ctx context.Context, tx repository.Tx) (int, error) {
	return d.cachedCount(ctx, distinctZonesKey, "distinct_zones", func() (int, error) {
		return d.inner.DistinctZoneCount(ctx, tx)
	})
}

func (d *memberZoneRepoCacheDecorator) CountChats(ctx context.Context, tx repository.Tx) (int, error) {
	return d.cachedCount(ctx, chatCountKey, "chat_count", func() (int, error) {
		return d.inner.CountChats(ctx, tx)
	})
}

func (d *memberZoneRepoCacheDecorator) cachedCount(ctx context.Context, key, name string, load func() (int, error)) (int, error) {
	if val, err := d.cache.Get(ctx, key); err == nil {
		if n, convErr := strconv.Atoi(val); convErr == nil {
			metrics.IncCacheRequest(name, "hit")
			return n, nil
		}
	}
	metrics.IncCacheRequest(name, "miss")
	n, err := load()
	if err != nil {
		return 0, err
	}
	_ = d.cache.Set(ctx, key, strconv.Itoa(n), d.ttl)
	return n, nil
}
