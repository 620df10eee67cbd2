//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-worldtime-bot/internal/domain"
	"telegram-worldtime-bot/internal/domain/model"
	"telegram-worldtime-bot/internal/domain/ports/repository"
)

// newQuietLogger creates a silent zerolog.Logger for use in tests.
func newQuietLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// MockMemberZoneRepo is an in-memory MemberZoneRepository with overridable
// behavior per method. The default logic mimics the Postgres implementation.
type MockMemberZoneRepo struct {
	mu      sync.Mutex
	records map[[2]int64]zoneRecord

	window   time.Duration
	topZones int

	UpsertFunc        func(ctx context.Context, tx repository.Tx, record *model.MemberZone) error
	DeleteFunc        func(ctx context.Context, tx repository.Tx, chatID, userID int64) error
	TouchActivityFunc func(ctx context.Context, tx repository.Tx, chatID, userID int64) error
}

type zoneRecord struct {
	chatID     int64
	userID     int64
	zone       string
	lastActive time.Time
}

var _ repository.MemberZoneRepository = (*MockMemberZoneRepo)(nil)

func NewMockMemberZoneRepo() *MockMemberZoneRepo {
	return &MockMemberZoneRepo{
		records:  make(map[[2]int64]zoneRecord),
		window:   30 * 24 * time.Hour,
		topZones: 20,
	}
}

// Seed inserts a record directly with a chosen activity timestamp.
func (m *MockMemberZoneRepo) Seed(chatID, userID int64, zone string, lastActive time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[[2]int64{chatID, userID}] = zoneRecord{chatID, userID, zone, lastActive}
}

// Record returns the stored record, if any.
func (m *MockMemberZoneRepo) Record(chatID, userID int64) (zoneRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[[2]int64{chatID, userID}]
	return r, ok
}

func (m *MockMemberZoneRepo) Upsert(ctx context.Context, tx repository.Tx, record *model.MemberZone) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, record)
	}
	m.Seed(record.ChatID, record.UserID, record.Zone, record.LastActive)
	return nil
}

func (m *MockMemberZoneRepo) Delete(ctx context.Context, tx repository.Tx, chatID, userID int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, chatID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, [2]int64{chatID, userID})
	return nil
}

func (m *MockMemberZoneRepo) TouchActivity(ctx context.Context, tx repository.Tx, chatID, userID int64) error {
	if m.TouchActivityFunc != nil {
		return m.TouchActivityFunc(ctx, tx, chatID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{chatID, userID}
	if r, ok := m.records[key]; ok {
		r.lastActive = time.Now()
		m.records[key] = r
	}
	return nil
}

func (m *MockMemberZoneRepo) Find(ctx context.Context, tx repository.Tx, chatID, userID int64) (*model.MemberZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[[2]int64{chatID, userID}]; ok {
		return &model.MemberZone{ChatID: r.chatID, UserID: r.userID, Zone: r.zone, LastActive: r.lastActive}, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockMemberZoneRepo) ListActiveGrouped(ctx context.Context, tx repository.Tx, chatID int64) (map[string][]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-m.window)
	out := make(map[string][]int64)
	for _, r := range m.records {
		if r.chatID != chatID || r.lastActive.Before(cutoff) {
			continue
		}
		out[r.zone] = append(out[r.zone], r.userID)
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *MockMemberZoneRepo) HasAny(ctx context.Context, tx repository.Tx, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.chatID == chatID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMemberZoneRepo) ListChats(ctx context.Context, tx repository.Tx) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int64]struct{})
	var chats []int64
	for _, r := range m.records {
		if _, ok := seen[r.chatID]; !ok {
			seen[r.chatID] = struct{}{}
			chats = append(chats, r.chatID)
		}
	}
	return chats, nil
}

func (m *MockMemberZoneRepo) ListMembers(ctx context.Context, tx repository.Tx, chatID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var members []int64
	for _, r := range m.records {
		if r.chatID == chatID {
			members = append(members, r.userID)
		}
	}
	return members, nil
}

func (m *MockMemberZoneRepo) DistinctZoneCount(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	zones := make(map[string]struct{})
	for _, r := range m.records {
		zones[r.zone] = struct{}{}
	}
	return len(zones), nil
}

func (m *MockMemberZoneRepo) CountChats(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chats := make(map[int64]struct{})
	for _, r := range m.records {
		chats[r.chatID] = struct{}{}
	}
	return len(chats), nil
}
