package model

import (
	"time"

	"telegram-worldtime-bot/internal/domain"
)

// MemberZone is a domain entity representing one member's registered time zone
// within one group chat. The (ChatID, UserID) pair identifies the record.
type MemberZone struct {
	ChatID     int64
	UserID     int64
	Zone       string
	LastActive time.Time
}

// NewMemberZone builds a record for a zone that has already been resolved
// through the catalog. The storage layer does not re-validate the zone.
func NewMemberZone(chatID, userID int64, zone string) (*MemberZone, error) {
	if chatID == 0 || userID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if zone == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &MemberZone{
		ChatID:     chatID,
		UserID:     userID,
		Zone:       zone,
		LastActive: time.Now(),
	}, nil
}
