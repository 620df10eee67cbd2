package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"telegram-worldtime-bot/internal/application"
	"telegram-worldtime-bot/internal/domain"
)

// mock zone usecase implementing the surface used by BotFacade
type mockZoneUC struct {
	zones map[[2]int64]string

	setErr    error
	listErr   error
	removeErr error
	touched   [][2]int64
	list      map[string][]int64
}

func newMockZoneUC() *mockZoneUC {
	return &mockZoneUC{zones: make(map[[2]int64]string)}
}

func (m *mockZoneUC) SetZone(ctx context.Context, chatID, userID int64, input string) (string, error) {
	if m.setErr != nil {
		return "", m.setErr
	}
	// crude stand-in for catalog resolution
	canonical := strings.TrimSpace(input)
	m.zones[[2]int64{chatID, userID}] = canonical
	return canonical, nil
}

func (m *mockZoneUC) RemoveZone(ctx context.Context, chatID, userID int64) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.zones, [2]int64{chatID, userID})
	return nil
}

func (m *mockZoneUC) GetZone(ctx context.Context, chatID, userID int64) (string, error) {
	if z, ok := m.zones[[2]int64{chatID, userID}]; ok {
		return z, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockZoneUC) ListActive(ctx context.Context, chatID int64) (map[string][]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.list) == 0 {
		return nil, domain.ErrNotFound
	}
	return m.list, nil
}

func (m *mockZoneUC) TouchActivity(ctx context.Context, chatID, userID int64) {
	m.touched = append(m.touched, [2]int64{chatID, userID})
}

type mockStatsUC struct {
	chats, zones int
	err          error
}

func (m *mockStatsUC) Totals(ctx context.Context) (int, int, error) {
	return m.chats, m.zones, m.err
}

// mockNamer returns deterministic display names.
type mockNamer struct{}

func (mockNamer) MemberName(ctx context.Context, chatID, userID int64) string {
	return fmt.Sprintf("user%d", userID)
}

// fixedClock pins rendering to 2024-06-15 12:00 UTC.
func fixedClock() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newFacade(zone *mockZoneUC, stats *mockStatsUC) *application.BotFacade {
	f := application.NewBotFacade(zone, stats, mockNamer{})
	f.Now = fixedClock
	return f
}

func TestHandleSetZone(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms with current local time", func(t *testing.T) {
		zone := newMockZoneUC()
		f := newFacade(zone, &mockStatsUC{})

		out, err := f.HandleSetZone(ctx, 100, 1, "UTC")
		if err != nil {
			t.Fatalf("HandleSetZone failed: %v", err)
		}
		if !strings.Contains(out, "Your zone has been set to UTC") {
			t.Errorf("unexpected confirmation: %q", out)
		}
		if !strings.Contains(out, "15-Jun 12:00") {
			t.Errorf("expected rendered clock in reply, got %q", out)
		}
	})

	t.Run("answers invalid zone in chat instead of erroring", func(t *testing.T) {
		zone := newMockZoneUC()
		zone.setErr = domain.ErrInvalidZone
		f := newFacade(zone, &mockStatsUC{})

		out, err := f.HandleSetZone(ctx, 100, 1, "Middle/Nowhere")
		if err != nil {
			t.Fatalf("invalid zone should not surface an error, got %v", err)
		}
		if !strings.Contains(out, "Not a valid zone name: Middle/Nowhere") {
			t.Errorf("unexpected reply: %q", out)
		}
	})

	t.Run("storage failures surface as errors", func(t *testing.T) {
		zone := newMockZoneUC()
		zone.setErr = errors.New("pool exhausted")
		f := newFacade(zone, &mockStatsUC{})

		if _, err := f.HandleSetZone(ctx, 100, 1, "UTC"); err == nil {
			t.Fatal("expected error to propagate")
		}
	})
}

func TestHandleShow(t *testing.T) {
	ctx := context.Background()

	t.Run("shows another member's local time", func(t *testing.T) {
		zone := newMockZoneUC()
		zone.zones[[2]int64{100, 2}] = "America/New_York"
		f := newFacade(zone, &mockStatsUC{})

		out, err := f.HandleShow(ctx, 100, 2, false)
		if err != nil {
			t.Fatalf("HandleShow failed: %v", err)
		}
		// 12:00 UTC is 08:00 EDT in June.
		if !strings.Contains(out, "user2") || !strings.Contains(out, "08:00") {
			t.Errorf("unexpected reply: %q", out)
		}
	})

	t.Run("tells the caller to register first", func(t *testing.T) {
		f := newFacade(newMockZoneUC(), &mockStatsUC{})

		out, err := f.HandleShow(ctx, 100, 1, true)
		if err != nil {
			t.Fatalf("HandleShow failed: %v", err)
		}
		if !strings.Contains(out, "You have not set a time zone") {
			t.Errorf("unexpected reply: %q", out)
		}
	})
}

func TestHandleList(t *testing.T) {
	ctx := context.Background()

	t.Run("orders zones by local clock and lists members", func(t *testing.T) {
		zone := newMockZoneUC()
		zone.list = map[string][]int64{
			"Asia/Tokyo":       {3},
			"America/New_York": {1, 2},
			"UTC":              {4},
		}
		f := newFacade(zone, &mockStatsUC{})

		out, err := f.HandleList(ctx, 100)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		// At 12:00 UTC on Jun 15: New York 08:00, UTC 12:00, Tokyo 21:00.
		ny := strings.Index(out, "08:00")
		utc := strings.Index(out, "12:00")
		tokyo := strings.Index(out, "21:00")
		if ny < 0 || utc < 0 || tokyo < 0 {
			t.Fatalf("missing zone clocks in board:\n%s", out)
		}
		if !(ny < utc && utc < tokyo) {
			t.Errorf("zones not ordered by local clock:\n%s", out)
		}
		if !strings.Contains(out, "user1, user2") {
			t.Errorf("expected member names grouped per zone:\n%s", out)
		}
	})

	t.Run("caps spelled-out member names per zone", func(t *testing.T) {
		members := make([]int64, 14)
		for i := range members {
			members[i] = int64(i + 1)
		}
		zone := newMockZoneUC()
		zone.list = map[string][]int64{"UTC": members}
		f := newFacade(zone, &mockStatsUC{})

		out, err := f.HandleList(ctx, 100)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		if !strings.Contains(out, "and more...") {
			t.Errorf("expected overflow marker:\n%s", out)
		}
		if got := strings.Count(out, "user"); got != 10 {
			t.Errorf("expected 10 spelled-out names, got %d:\n%s", got, out)
		}
	})

	t.Run("explains an empty board", func(t *testing.T) {
		f := newFacade(newMockZoneUC(), &mockStatsUC{})

		out, err := f.HandleList(ctx, 100)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		if !strings.Contains(out, "Nothing to show") {
			t.Errorf("unexpected reply: %q", out)
		}
	})

	t.Run("skips zones the host database cannot load", func(t *testing.T) {
		zone := newMockZoneUC()
		zone.list = map[string][]int64{
			"UTC":            {1},
			"Broken/Nowhere": {2},
		}
		f := newFacade(zone, &mockStatsUC{})

		out, err := f.HandleList(ctx, 100)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		if strings.Contains(out, "user2") {
			t.Errorf("unloadable zone should be skipped:\n%s", out)
		}
		if !strings.Contains(out, "user1") {
			t.Errorf("loadable zone should remain:\n%s", out)
		}
	})
}

func TestHandleRemove(t *testing.T) {
	ctx := context.Background()

	zone := newMockZoneUC()
	zone.zones[[2]int64{100, 1}] = "UTC"
	f := newFacade(zone, &mockStatsUC{})

	out, err := f.HandleRemove(ctx, 100, 1)
	if err != nil {
		t.Fatalf("HandleRemove failed: %v", err)
	}
	if !strings.Contains(out, "removed") {
		t.Errorf("unexpected reply: %q", out)
	}
	if _, ok := zone.zones[[2]int64{100, 1}]; ok {
		t.Error("registration should be gone")
	}
}

func TestHandleHelp(t *testing.T) {
	ctx := context.Background()

	t.Run("includes service totals when available", func(t *testing.T) {
		f := newFacade(newMockZoneUC(), &mockStatsUC{chats: 12, zones: 7})

		out, err := f.HandleHelp(ctx)
		if err != nil {
			t.Fatalf("HandleHelp failed: %v", err)
		}
		if !strings.Contains(out, "Serving 12 chats across 7 time zones.") {
			t.Errorf("expected totals line:\n%s", out)
		}
	})

	t.Run("omits totals when stats fail", func(t *testing.T) {
		f := newFacade(newMockZoneUC(), &mockStatsUC{err: errors.New("db down")})

		out, err := f.HandleHelp(ctx)
		if err != nil {
			t.Fatalf("HandleHelp failed: %v", err)
		}
		if strings.Contains(out, "Serving") {
			t.Errorf("totals should be omitted on failure:\n%s", out)
		}
	})
}

func TestTouchActivityForwarding(t *testing.T) {
	zone := newMockZoneUC()
	f := newFacade(zone, &mockStatsUC{})

	f.TouchActivity(context.Background(), 100, 1)

	if len(zone.touched) != 1 || zone.touched[0] != [2]int64{100, 1} {
		t.Errorf("expected one forwarded touch, got %v", zone.touched)
	}
}
