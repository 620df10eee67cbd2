package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-worldtime-bot/internal/application"
	"telegram-worldtime-bot/internal/config"
	"telegram-worldtime-bot/internal/domain/ports/adapter"
	"telegram-worldtime-bot/internal/infra/logging"
	"telegram-worldtime-bot/internal/infra/metrics"
	red "telegram-worldtime-bot/internal/infra/redis"
)

// commandCooldown is the per-user, per-command rate limit window.
const (
	commandCooldown = 10 * time.Second
	commandBudget   = 3 // commands allowed per cooldown window
)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
// It also serves as the facade's MemberNamer, backed by a per-chat name cache.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc

	namesMu sync.RWMutex
	names   map[int64]map[int64]string // chatID -> userID -> display name
}

var (
	_ application.MemberNamer    = (*RealTelegramBotAdapter)(nil)
	_ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)
)

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           logger,
		updateWorkers: workers,
		names:         make(map[int64]map[int64]string),
	}, nil
}

// StartPolling begins polling Telegram for updates and fans them out to a
// fixed worker pool. It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up, ok := <-updateChan:
					if !ok {
						return
					}
					r.handleUpdate(ctx, up)
				}
			}
		}(i + 1)
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage sends plain text to a chat.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

// handleUpdate processes a single Telegram update. Every group message
// refreshes the sender's activity; commands are routed on top of that.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithChatID(ctx, msg.Chat.ID)
	ctx = logging.WithTgID(ctx, msg.From.ID)
	log := logging.With(ctx, r.log)

	r.rememberName(msg.Chat.ID, msg.From)

	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		r.facade.TouchActivity(ctx, msg.Chat.ID, msg.From.ID)
	}

	if !msg.IsCommand() {
		return
	}

	command := msg.Command()
	handler, ok := r.commandRoutes()[command]
	if !ok {
		return
	}

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(msg.From.ID, command), commandBudget, commandCooldown)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing command")
		}
		if !allowed {
			metrics.IncRateLimitTriggered()
			log.Debug().Str("command", command).Msg("command rate limited")
			return
		}
	}

	if err := handler(ctx, msg); err != nil {
		metrics.IncCommand("/"+command, "error")
		log.Error().Err(err).Str("command", command).Msg("command failed")
		_ = r.SendMessage(ctx, msg.Chat.ID, "Something went wrong. Please try again later.")
		return
	}
	metrics.IncCommand("/"+command, "ok")
}

// WarmMembers pre-resolves display names for a chat's registered members.
func (r *RealTelegramBotAdapter) WarmMembers(ctx context.Context, chatID int64, userIDs []int64) {
	for _, id := range userIDs {
		if r.cachedName(chatID, id) != "" {
			continue
		}
		member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: id},
		})
		if err != nil {
			continue
		}
		if member.User != nil {
			r.rememberName(chatID, member.User)
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// MemberName resolves a member's display name, preferring the cache.
func (r *RealTelegramBotAdapter) MemberName(ctx context.Context, chatID, userID int64) string {
	if name := r.cachedName(chatID, userID); name != "" {
		return name
	}
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil || member.User == nil {
		return "(unknown member)"
	}
	r.rememberName(chatID, member.User)
	return displayName(member.User)
}

func (r *RealTelegramBotAdapter) cachedName(chatID, userID int64) string {
	r.namesMu.RLock()
	defer r.namesMu.RUnlock()
	return r.names[chatID][userID]
}

func (r *RealTelegramBotAdapter) rememberName(chatID int64, user *tgbotapi.User) {
	r.namesMu.Lock()
	defer r.namesMu.Unlock()
	chat, ok := r.names[chatID]
	if !ok {
		chat = make(map[int64]string)
		r.names[chatID] = chat
	}
	chat[user.ID] = displayName(user)
}

func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return "@" + user.UserName
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}
