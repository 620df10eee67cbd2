package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"telegram-worldtime-bot/internal/domain"
	"telegram-worldtime-bot/internal/usecase"
)

// maxNamesPerZone caps how many member names a zone line spells out
// before collapsing the rest into "and more...".
const maxNamesPerZone = 10

// MemberNamer resolves a chat member's display name. The Telegram adapter
// implements it over the Bot API with a local cache.
type MemberNamer interface {
	MemberName(ctx context.Context, chatID, userID int64) string
}

// BotFacade composes usecases into high-level bot commands.
// Keep the facade methods returning strings so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	ZoneUC  usecase.ZoneUseCase
	StatsUC usecase.StatsUseCase
	Names   MemberNamer

	// Now is the clock used for rendering zone times. Tests override it.
	Now func() time.Time
}

func NewBotFacade(zoneUC usecase.ZoneUseCase, statsUC usecase.StatsUseCase, names MemberNamer) *BotFacade {
	return &BotFacade{
		ZoneUC:  zoneUC,
		StatsUC: statsUC,
		Names:   names,
		Now:     time.Now,
	}
}

// HandleSetZone registers the caller's time zone and confirms with the
// current time there.
func (b *BotFacade) HandleSetZone(ctx context.Context, chatID, userID int64, input string) (string, error) {
	zone, err := b.ZoneUC.SetZone(ctx, chatID, userID, input)
	if errors.Is(err, domain.ErrInvalidZone) {
		return fmt.Sprintf("Not a valid zone name: %s\nTo find your zone, try the tool at: https://kevinnovak.github.io/Time-Zone-Picker/", strings.TrimSpace(input)), nil
	}
	if err != nil {
		return "", fmt.Errorf("set zone: %w", err)
	}
	return fmt.Sprintf("Your zone has been set to %s.\nThe current time there is %s.", zone, b.clockIn(zone)), nil
}

// HandleSetZoneFor registers a zone on behalf of another member. The
// adapter gates this behind a chat administrator check.
func (b *BotFacade) HandleSetZoneFor(ctx context.Context, chatID, targetUserID int64, input string) (string, error) {
	zone, err := b.ZoneUC.SetZone(ctx, chatID, targetUserID, input)
	if errors.Is(err, domain.ErrInvalidZone) {
		return fmt.Sprintf("Not a valid zone name: %s", strings.TrimSpace(input)), nil
	}
	if err != nil {
		return "", fmt.Errorf("set zone for member: %w", err)
	}
	name := b.Names.MemberName(ctx, chatID, targetUserID)
	return fmt.Sprintf("The zone for %s has been set to %s.", name, zone), nil
}

// HandleShow renders the current time for one member.
func (b *BotFacade) HandleShow(ctx context.Context, chatID, targetUserID int64, self bool) (string, error) {
	zone, err := b.ZoneUC.GetZone(ctx, chatID, targetUserID)
	if errors.Is(err, domain.ErrNotFound) {
		if self {
			return "You have not set a time zone. Use the set command to set one.", nil
		}
		return fmt.Sprintf("%s has not set a time zone.", b.Names.MemberName(ctx, chatID, targetUserID)), nil
	}
	if err != nil {
		return "", fmt.Errorf("get zone: %w", err)
	}
	display, _, err := b.zoneClock(zone)
	if err != nil {
		return "", fmt.Errorf("render zone %s: %w", zone, err)
	}
	if self {
		return fmt.Sprintf("Your current time: %s (%s)", display, zone), nil
	}
	return fmt.Sprintf("Current time for %s: %s (%s)", b.Names.MemberName(ctx, chatID, targetUserID), display, zone), nil
}

// HandleList renders the chat's board of recently active members grouped by
// zone. Zones are ordered by their local clock, earliest first.
func (b *BotFacade) HandleList(ctx context.Context, chatID int64) (string, error) {
	groups, err := b.ZoneUC.ListActive(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return "Nothing to show. Members with registered zones must be active to appear here.", nil
	}
	if err != nil {
		return "", fmt.Errorf("list active: %w", err)
	}

	type line struct {
		sortKey string
		text    string
	}
	lines := make([]line, 0, len(groups))
	for zone, members := range groups {
		display, sortKey, err := b.zoneClock(zone)
		if err != nil {
			// A zone the host tzdb no longer knows; skip rather than sink the board.
			continue
		}
		lines = append(lines, line{
			sortKey: sortKey + "\x00" + zone,
			text:    fmt.Sprintf("● %s\n  %s", display, b.memberNames(ctx, chatID, members)),
		})
	}
	if len(lines) == 0 {
		return "Nothing to show. Members with registered zones must be active to appear here.", nil
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].sortKey < lines[j].sortKey })

	sb := strings.Builder{}
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.text)
	}
	return sb.String(), nil
}

// HandleRemove deletes the caller's registration. Removing an absent one
// still reads as success.
func (b *BotFacade) HandleRemove(ctx context.Context, chatID, userID int64) (string, error) {
	if err := b.ZoneUC.RemoveZone(ctx, chatID, userID); err != nil {
		return "", fmt.Errorf("remove zone: %w", err)
	}
	return "Your zone data has been removed.", nil
}

// HandleRemoveFor deletes another member's registration. Admin-gated by the
// adapter.
func (b *BotFacade) HandleRemoveFor(ctx context.Context, chatID, targetUserID int64) (string, error) {
	if err := b.ZoneUC.RemoveZone(ctx, chatID, targetUserID); err != nil {
		return "", fmt.Errorf("remove zone for member: %w", err)
	}
	return fmt.Sprintf("Zone data for %s has been removed.", b.Names.MemberName(ctx, chatID, targetUserID)), nil
}

// HandleHelp returns the command reference together with service totals.
func (b *BotFacade) HandleHelp(ctx context.Context) (string, error) {
	sb := strings.Builder{}
	sb.WriteString("World Time keeps a per-chat board of everyone's local time.\n\n")
	sb.WriteString("Commands:\n")
	sb.WriteString("/time — show the board of active members' local times\n")
	sb.WriteString("/time @user — show one member's local time\n")
	sb.WriteString("/set <zone> — register your time zone (e.g. /set Europe/Warsaw)\n")
	sb.WriteString("/remove — forget your zone in this chat\n")
	sb.WriteString("/setfor @user <zone> — set a member's zone (admins)\n")
	sb.WriteString("/removefor @user — remove a member's zone (admins)\n")
	if b.StatsUC != nil {
		if chats, zones, err := b.StatsUC.Totals(ctx); err == nil {
			sb.WriteString(fmt.Sprintf("\nServing %d chats across %d time zones.", chats, zones))
		}
	}
	return sb.String(), nil
}

// TouchActivity forwards an activity ping for a chat member.
func (b *BotFacade) TouchActivity(ctx context.Context, chatID, userID int64) {
	b.ZoneUC.TouchActivity(ctx, chatID, userID)
}

// zoneClock renders the current wall clock of a zone along with a sortable
// key derived from its local month-day-hour-minute.
func (b *BotFacade) zoneClock(zone string) (display, sortKey string, err error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", "", err
	}
	local := b.Now().In(loc)
	display = local.Format("02-Jan 15:04 MST (UTC-07:00)")
	sortKey = local.Format("01021504")
	return display, sortKey, nil
}

func (b *BotFacade) clockIn(zone string) string {
	display, _, err := b.zoneClock(zone)
	if err != nil {
		return "unknown"
	}
	return display
}

func (b *BotFacade) memberNames(ctx context.Context, chatID int64, userIDs []int64) string {
	names := make([]string, 0, len(userIDs))
	more := false
	for i, id := range userIDs {
		if i == maxNamesPerZone {
			more = true
			break
		}
		names = append(names, b.Names.MemberName(ctx, chatID, id))
	}
	out := strings.Join(names, ", ")
	if more {
		out += ", and more..."
	}
	return out
}
