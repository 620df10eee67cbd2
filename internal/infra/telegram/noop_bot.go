package telegram

import (
	"context"
	"log"
	"time"

	"telegram-worldtime-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct{}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

// SendMessage logs the message and simulates small delay.
func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To chat %d: %s\n", chatID, text)
	return nil
}

// WarmMembers logs the warm request.
func (b *NoopBotAdapter) WarmMembers(ctx context.Context, chatID int64, userIDs []int64) {
	log.Printf("[noop-telegram] Warm %d members of chat %d", len(userIDs), chatID)
}
