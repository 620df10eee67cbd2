//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-worldtime-bot/internal/domain/model"
	"telegram-worldtime-bot/internal/domain/ports/repository"
	red "telegram-worldtime-bot/internal/infra/redis"
)

// --- Mocks for cache decorator tests ---

// mockInnerMemberZoneRepo mocks the database repository that the decorator wraps.
type mockInnerMemberZoneRepo struct {
	UpsertFunc            func(ctx context.Context, tx repository.Tx, record *model.MemberZone) error
	DeleteFunc            func(ctx context.Context, tx repository.Tx, chatID, userID int64) error
	TouchActivityFunc     func(ctx context.Context, tx repository.Tx, chatID, userID int64) error
	FindFunc              func(ctx context.Context, tx repository.Tx, chatID, userID int64) (*model.MemberZone, error)
	ListActiveGroupedFunc func(ctx context.Context, tx repository.Tx, chatID int64) (map[string][]int64, error)
	HasAnyFunc            func(ctx context.Context, tx repository.Tx, chatID int64) (bool, error)
	ListChatsFunc         func(ctx context.Context, tx repository.Tx) ([]int64, error)
	ListMembersFunc       func(ctx context.Context, tx repository.Tx, chatID int64) ([]int64, error)
	DistinctZoneCountFunc func(ctx context.Context, tx repository.Tx) (int, error)
	CountChatsFunc        func(ctx context.Context, tx repository.Tx) (int, error)
}

var _ repository.MemberZoneRepository = (*mockInnerMemberZoneRepo)(nil)

func (m *mockInnerMemberZoneRepo) Upsert(ctx context.Context, tx repository.Tx, record *model.MemberZone) error {
	return m.UpsertFunc(ctx, tx, record)
}
func (m *mockInnerMemberZoneRepo) Delete(ctx context.Context, tx repository.Tx, chatID, userID int64) error {
	return m.DeleteFunc(ctx, tx, chatID, userID)
}
func (m *mockInnerMemberZoneRepo) TouchActivity(ctx context.Context, tx repository.Tx, chatID, userID int64) error {
	return m.TouchActivityFunc(ctx, tx, chatID, userID)
}
func (m *mockInnerMemberZoneRepo) Find(ctx context.Context, tx repository.Tx, chatID, userID int64) (*model.MemberZone, error) {
	return m.FindFunc(ctx, tx, chatID, userID)
}
func (m *mockInnerMemberZoneRepo) ListActiveGrouped(ctx context.Context, tx repository.Tx, chatID int64) (map[string][]int64, error) {
	return m.ListActiveGroupedFunc(ctx, tx, chatID)
}
func (m *mockInnerMemberZoneRepo) HasAny(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	return m.HasAnyFunc(ctx, tx, chatID)
}
func (m *mockInnerMemberZoneRepo) ListChats(ctx context.Context, tx repository.Tx) ([]int64, error) {
	return m.ListChatsFunc(ctx, tx)
}
func (m *mockInnerMemberZoneRepo) ListMembers(ctx context.Context, tx repository.Tx, chatID int64) ([]int64, error) {
	return m.ListMembersFunc(ctx, tx, chatID)
}
func (m *mockInnerMemberZoneRepo) DistinctZoneCount(ctx context.Context, tx repository.Tx) (int, error) {
	return m.DistinctZoneCountFunc(ctx, tx)
}
func (m *mockInnerMemberZoneRepo) CountChats(ctx context.Context, tx repository.Tx) (int, error) {
	return m.CountChatsFunc(ctx, tx)
}

// mockRedisClient is a minimal in-memory stand-in for our Redis wrapper.
type mockRedisClient struct {
	store map[string]string
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{store: make(map[string]string)}
}

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case string:
		m.store[key] = v
	case []byte:
		m.store[key] = string(v)
	}
	return nil
}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return "", errMockCacheMiss
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 1, nil }

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.store, k)
	}
	return nil
}

func (m *mockRedisClient) Close() error { return nil }
