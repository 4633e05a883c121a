package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
)

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.api.Request(resp)
	return err
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	b.send(doc)
}

// clearPrevStep removes the inline keyboard of the previous step, if any.
func (b *Bot) clearPrevStep(ctx context.Context, chatID int64) {
	st, _ := b.states.Get(ctx, chatID)
	if st == nil || st.Payload == nil {
		return
	}
	if mid, ok := dialog.GetInt64(st.Payload, "last_mid"); ok {
		rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, int(mid), rm))
	}
}

// saveLastStep remembers newMID as the message carrying the current step.
func (b *Bot) saveLastStep(ctx context.Context, chatID int64, nextState dialog.State, payload dialog.Payload, newMID int) {
	if payload == nil {
		payload = dialog.Payload{}
	}
	payload["last_mid"] = float64(newMID)
	if err := b.states.Set(ctx, chatID, nextState, payload); err != nil {
		b.log.Error("save dialog state failed", "chat_id", chatID, "err", err)
	}
}

// ask sends a fresh prompt and makes it the current step.
func (b *Bot) ask(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup, next dialog.State, payload dialog.Payload) {
	b.clearPrevStep(ctx, chatID)
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	sent, err := b.api.Send(m)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return
	}
	b.saveLastStep(ctx, chatID, next, payload, sent.MessageID)
}

// step shows a prompt: in place when editMsgID is set, as a new message otherwise.
func (b *Bot) step(ctx context.Context, chatID int64, editMsgID *int, text string, kb tgbotapi.InlineKeyboardMarkup, next dialog.State, payload dialog.Payload) {
	if editMsgID == nil {
		b.ask(ctx, chatID, text, kb, next, payload)
		return
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, *editMsgID, text, kb))
	b.saveLastStep(ctx, chatID, next, payload, *editMsgID)
}

// downloadTelegramFile fetches a file by FileID through the Telegram API.
func (b *Bot) downloadTelegramFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

func badge(b bool) string {
	if b {
		return "🟢"
	}
	return "🚫"
}
