package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/clients"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	log     *slog.Logger
	states  *dialog.Repo
	clients *clients.Repo
	ledger  *ledger.Ledger
	allowed func(chatID int64) bool
	now     func() time.Time
}

// New wires the bot. allowed decides which chats may use it.
func New(api *tgbotapi.BotAPI, log *slog.Logger,
	statesRepo *dialog.Repo, clientsRepo *clients.Repo,
	l *ledger.Ledger, allowed func(chatID int64) bool) *Bot {

	return &Bot{
		api: api, log: log, states: statesRepo,
		clients: clientsRepo, ledger: l,
		allowed: allowed, now: time.Now,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg.Chat == nil {
		return
	}
	if !b.allowed(msg.Chat.ID) {
		b.log.Warn("rejected chat", "chat_id", msg.Chat.ID)
		b.reply(msg.Chat.ID, "Accès refusé.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	if !b.allowed(cb.Message.Chat.ID) {
		_ = b.answerCallback(cb, "Accès refusé", true)
		return
	}
	b.handleCallback(ctx, cb)
}

func (b *Bot) location() *time.Location {
	return b.ledger.Location()
}
