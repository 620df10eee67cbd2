// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// TelegramBotAdapter is the minimal surface background workers need from the
// gateway client.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error

	// WarmMembers pre-resolves display names for the given chat members so
	// listing commands don't pay a lookup per member.
	WarmMembers(ctx context.Context, chatID int64, userIDs []int64)
}
