package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
)

const (
	btnReception = "Réception"
	btnCutting   = "Découpe"
	btnStock     = "Stock"
	btnReport    = "Rapport"
	btnClients   = "Clients"
)

// listLimit caps inline lists; Telegram rejects very large keyboards.
const listLimit = 40

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Annuler", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnReception), tgbotapi.NewKeyboardButton(btnCutting)},
			{tgbotapi.NewKeyboardButton(btnStock), tgbotapi.NewKeyboardButton(btnReport)},
			{tgbotapi.NewKeyboardButton(btnClients)},
		},
	}
}

// materialKeyboard lists material kinds as prefix+kind callbacks. With all
// set, a "Toutes" button sends prefix+"-".
func materialKeyboard(prefix string, all bool, back bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	row := []tgbotapi.InlineKeyboardButton{}
	for _, k := range ledger.MaterialKinds {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(materialLabel(k), prefix+string(k)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = []tgbotapi.InlineKeyboardButton{}
		}
	}
	if all {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Toutes", prefix+"-"))
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(back, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func skipKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Passer", "step:skip"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func confirmKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Enregistrer", data),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}
