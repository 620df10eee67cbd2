package repository

import (
	"context"

	"telegram-worldtime-bot/internal/domain/model"
)

// -----------------------------
// Member zones
// -----------------------------

// MemberZoneRepository owns all persistence for zone registrations. Records
// are keyed by (chat, user); every write is a single atomic statement.
type MemberZoneRepository interface {
	// Upsert stores or fully replaces the registration, including its
	// activity timestamp. Records come from model.NewMemberZone.
	Upsert(ctx context.Context, tx Tx, record *model.MemberZone) error

	// Delete removes the registration if present. Deleting an absent record
	// is not an error.
	Delete(ctx context.Context, tx Tx, chatID, userID int64) error

	// TouchActivity refreshes last_active for an existing registration.
	// It never creates one.
	TouchActivity(ctx context.Context, tx Tx, chatID, userID int64) error

	// Find returns the stored registration regardless of activity recency,
	// or domain.ErrNotFound.
	Find(ctx context.Context, tx Tx, chatID, userID int64) (*model.MemberZone, error)

	// ListActiveGrouped returns members registered in the chat, grouped by
	// zone, restricted to recent activity and the most popular zones.
	// Member order within a group is intentionally unspecified.
	// Returns domain.ErrNotFound when nothing falls in the window.
	ListActiveGrouped(ctx context.Context, tx Tx, chatID int64) (map[string][]int64, error)

	// HasAny reports whether the chat holds at least one registration.
	HasAny(ctx context.Context, tx Tx, chatID int64) (bool, error)

	// ListChats returns the distinct chats that hold registrations.
	ListChats(ctx context.Context, tx Tx) ([]int64, error)

	// ListMembers returns the user IDs registered in the chat.
	ListMembers(ctx context.Context, tx Tx, chatID int64) ([]int64, error)

	// DistinctZoneCount counts distinct zones in use across all chats.
	DistinctZoneCount(ctx context.Context, tx Tx) (int, error)

	// CountChats counts chats holding at least one registration.
	CountChats(ctx context.Context, tx Tx) (int, error)
}
