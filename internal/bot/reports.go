package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/infra/xlsx"
)

func (b *Bot) showReportClients(ctx context.Context, chatID int64, editMsgID *int) {
	cs := b.ledger.Clients()
	if len(cs) == 0 {
		b.step(ctx, chatID, editMsgID, "Aucun client n'a encore de matière en stock.",
			navKeyboard(false, true), dialog.StateRepClient, dialog.Payload{})
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, c := range cs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, "rep:cli:"+c.ID),
		))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	b.step(ctx, chatID, editMsgID, "Rapport d'inventaire : choisissez le client",
		tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateRepClient, dialog.Payload{})
}

func (b *Bot) showReportPeriods(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload) {
	name, _ := dialog.GetString(p, "client_name")
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ce mois", "rep:cur"),
			tgbotapi.NewInlineKeyboardButtonData("Mois précédent", "rep:prev"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Autre période", "rep:custom"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
	b.step(ctx, chatID, editMsgID, fmt.Sprintf("Rapport %s : période ?", name), kb, dialog.StateRepPeriod, p)
}

func (b *Bot) onReportCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string) string {
	chatID, mid := cb.Message.Chat.ID, cb.Message.MessageID

	if strings.HasPrefix(action, "cli:") {
		id := strings.TrimPrefix(action, "cli:")
		b.showReportPeriods(ctx, chatID, &mid, dialog.Payload{"client_id": id, "client_name": b.clientName(id)})
		return ""
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil || st.State != dialog.StateRepPeriod {
		return ""
	}
	now := b.now().In(b.location())
	switch action {
	case "cur":
		from, to := monthRange(now, 0)
		b.sendReport(ctx, chatID, &mid, st.Payload, from, to)
	case "prev":
		from, to := monthRange(now, -1)
		b.sendReport(ctx, chatID, &mid, st.Payload, from, to)
	case "custom":
		b.step(ctx, chatID, &mid, "Période au format JJ.MM.AAAA-JJ.MM.AAAA (ou un seul jour) :",
			navKeyboard(true, true), dialog.StateRepCustom, st.Payload)
	}
	return ""
}

func (b *Bot) onReportPeriodText(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	from, to, err := parsePeriod(text, b.location())
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error())
		return
	}
	b.clearPrevStep(ctx, chatID)
	b.sendReport(ctx, chatID, nil, st.Payload, from, to)
}

// sendReport answers with the summary text and the report workbook.
func (b *Bot) sendReport(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload, from, to time.Time) {
	_ = b.states.Reset(ctx, chatID)
	clientID, _ := dialog.GetString(p, "client_id")
	name, _ := dialog.GetString(p, "client_name")

	rep := b.ledger.GenerateInventoryReport(clientID, from, to)
	text := reportSummary(rep, name)
	if editMsgID != nil {
		b.editTextAndClear(chatID, *editMsgID, text)
	} else {
		b.reply(chatID, text)
	}

	data, err := xlsx.ReportWorkbook(rep, name)
	if err != nil {
		b.log.Error("report workbook failed", "client_id", clientID, "err", err)
		b.reply(chatID, "Impossible de générer le fichier du rapport.")
		return
	}
	b.sendDocument(chatID, fmt.Sprintf("rapport_%s_%s_%s.xlsx", clientID,
		rep.StartDate.Format("20060102"), rep.EndDate.Format("20060102")), data, "")
}
