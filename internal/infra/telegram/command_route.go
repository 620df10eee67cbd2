package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-worldtime-bot/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.handleHelpCommand,
		"help":  r.handleHelpCommand,

		"time":   r.handleTimeCommand,
		"set":    r.handleSetCommand,
		"remove": r.handleRemoveCommand,

		// These handlers are wrapped in the chatAdminOnly middleware.
		"setfor":    r.chatAdminOnly(r.handleSetForCommand),
		"removefor": r.chatAdminOnly(r.handleRemoveForCommand),
	}
}

// chatAdminOnly gates a handler behind the sender being an administrator or
// the creator of the chat.
func (r *RealTelegramBotAdapter) chatAdminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: message.Chat.ID,
				UserID: message.From.ID,
			},
		})
		if err != nil {
			return r.SendMessage(ctx, message.Chat.ID, "Could not verify chat permissions. Please try again.")
		}
		if !member.IsAdministrator() && !member.IsCreator() {
			metrics.IncCommand("/"+message.Command(), "unauthorized")
			return r.SendMessage(ctx, message.Chat.ID, "That command is limited to chat administrators.")
		}
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleHelp(ctx)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleTimeCommand shows the chat board, or one member's time when a target
// is given.
func (r *RealTelegramBotAdapter) handleTimeCommand(ctx context.Context, message *tgbotapi.Message) error {
	if !isGroupChat(message) {
		return r.SendMessage(ctx, message.Chat.ID, "This command only works in group chats.")
	}

	target, hasTarget := r.targetMember(message)
	var (
		text string
		err  error
	)
	switch {
	case hasTarget:
		text, err = r.facade.HandleShow(ctx, message.Chat.ID, target, target == message.From.ID)
	case strings.TrimSpace(message.CommandArguments()) != "":
		text = "I could not tell who that is. Reply to their message or mention them."
	default:
		text, err = r.facade.HandleList(ctx, message.Chat.ID)
	}
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleSetCommand(ctx context.Context, message *tgbotapi.Message) error {
	if !isGroupChat(message) {
		return r.SendMessage(ctx, message.Chat.ID, "This command only works in group chats.")
	}
	input := strings.TrimSpace(message.CommandArguments())
	if input == "" {
		return r.SendMessage(ctx, message.Chat.ID, "Usage: /set <zone name>\nExample: /set Europe/Warsaw")
	}
	text, err := r.facade.HandleSetZone(ctx, message.Chat.ID, message.From.ID, input)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleRemoveCommand(ctx context.Context, message *tgbotapi.Message) error {
	if !isGroupChat(message) {
		return r.SendMessage(ctx, message.Chat.ID, "This command only works in group chats.")
	}
	text, err := r.facade.HandleRemove(ctx, message.Chat.ID, message.From.ID)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleSetForCommand(ctx context.Context, message *tgbotapi.Message) error {
	target, ok := r.targetMember(message)
	if !ok {
		return r.SendMessage(ctx, message.Chat.ID, "Usage: /setfor <member> <zone name>\nReply to the member's message or mention them.")
	}
	input := strings.TrimSpace(stripTarget(message))
	if input == "" {
		return r.SendMessage(ctx, message.Chat.ID, "Usage: /setfor <member> <zone name>")
	}
	text, err := r.facade.HandleSetZoneFor(ctx, message.Chat.ID, target, input)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleRemoveForCommand(ctx context.Context, message *tgbotapi.Message) error {
	target, ok := r.targetMember(message)
	if !ok {
		return r.SendMessage(ctx, message.Chat.ID, "Usage: /removefor <member>\nReply to the member's message or mention them.")
	}
	text, err := r.facade.HandleRemoveFor(ctx, message.Chat.ID, target)
	if err != nil {
		return err
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// targetMember resolves which chat member a command refers to: the replied-to
// message's author, a text mention entity, or a bare numeric user id.
func (r *RealTelegramBotAdapter) targetMember(message *tgbotapi.Message) (int64, bool) {
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		return message.ReplyToMessage.From.ID, true
	}
	if message.Entities != nil {
		for _, e := range message.Entities {
			if e.Type == "text_mention" && e.User != nil {
				return e.User.ID, true
			}
		}
	}
	for _, field := range strings.Fields(message.CommandArguments()) {
		if id, err := strconv.ParseInt(field, 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// stripTarget removes the member reference from the command arguments,
// leaving only the payload (e.g. the zone name for /setfor).
func stripTarget(message *tgbotapi.Message) string {
	fields := strings.Fields(message.CommandArguments())
	if message.ReplyToMessage != nil {
		return strings.Join(fields, " ")
	}
	out := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "@") {
			continue
		}
		if id, err := strconv.ParseInt(f, 10, 64); err == nil && id > 0 {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

func isGroupChat(message *tgbotapi.Message) bool {
	return message.Chat.IsGroup() || message.Chat.IsSuperGroup()
}
