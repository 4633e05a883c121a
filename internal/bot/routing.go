package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
)

const helpText = `Commandes :
/start : afficher le menu
/search <terme> : chercher un lot (client, n° de BL, description)
/cancel : annuler l'opération en cours
/help : cette aide

Menu :
Réception : enregistrer une arrivée de matière ou importer un fichier
Découpe : prélever des pièces sur un lot
Stock : consulter, filtrer, exporter ou supprimer des lots
Rapport : rapport d'inventaire par client et période
Clients : gérer la liste des clients`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Bonjour ! Utilisez le menu ci-dessous pour gérer le stock de l'atelier.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)

	case "help":
		b.reply(chatID, helpText)

	case "search":
		term := strings.TrimSpace(msg.CommandArguments())
		if term == "" {
			b.reply(chatID, "Usage : /search <terme>")
			return
		}
		b.showStockList(ctx, chatID, nil, dialog.Payload{"q": term})

	case "cancel":
		b.clearPrevStep(ctx, chatID)
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Opération annulée.")

	default:
		b.reply(chatID, "Commande inconnue. Tapez /help")
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Text {
	case btnReception:
		b.showReceptionMenu(ctx, chatID, nil)
		return
	case btnCutting:
		b.showCuttingLots(ctx, chatID, nil)
		return
	case btnStock:
		b.showStockList(ctx, chatID, nil, dialog.Payload{})
		return
	case btnReport:
		b.showReportClients(ctx, chatID, nil)
		return
	case btnClients:
		b.showClientsMenu(ctx, chatID, nil)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		b.reply(chatID, userError(err))
		return
	}

	if i := receptionForm.index(st.State); i >= 0 {
		b.onFormInput(ctx, chatID, st, receptionForm, i, msg.Text, b.showReceptionSummary)
		return
	}
	if i := cuttingForm.index(st.State); i >= 0 {
		b.onFormInput(ctx, chatID, st, cuttingForm, i, msg.Text, b.showCuttingSummary)
		return
	}

	switch st.State {
	case dialog.StateRcvImport:
		if msg.Document == nil {
			b.reply(chatID, "Envoyez un fichier Excel (.xlsx) construit sur le modèle d'import.")
			return
		}
		data, err := b.downloadTelegramFile(msg.Document.FileID)
		if err != nil {
			b.log.Error("download import failed", "err", err)
			b.reply(chatID, "Impossible de télécharger le fichier depuis Telegram.")
			return
		}
		b.importReceipts(ctx, chatID, data)

	case dialog.StateStockSearch:
		p := st.Payload.Clone()
		p["q"] = strings.TrimSpace(msg.Text)
		b.showStockList(ctx, chatID, nil, p)

	case dialog.StateRepCustom:
		b.onReportPeriodText(ctx, chatID, st, msg.Text)

	case dialog.StateCliName:
		b.onClientName(ctx, chatID, msg.Text)

	case dialog.StateCliRename:
		b.onClientRename(ctx, chatID, st, msg.Text)

	default:
		m := tgbotapi.NewMessage(chatID, "Utilisez le menu ci-dessous.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID

	var toast string
	switch {
	case data == "nav:cancel":
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Opération annulée.")
		toast = "Annulé"
	case data == "nav:back":
		b.handleBack(ctx, cb)
	case data == "step:skip":
		b.handleSkip(ctx, cb)
	case strings.HasPrefix(data, "rcv:"):
		toast = b.onReceptionCallback(ctx, cb, strings.TrimPrefix(data, "rcv:"))
	case strings.HasPrefix(data, "cut:"):
		toast = b.onCuttingCallback(ctx, cb, strings.TrimPrefix(data, "cut:"))
	case strings.HasPrefix(data, "stk:"):
		toast = b.onStockCallback(ctx, cb, strings.TrimPrefix(data, "stk:"))
	case strings.HasPrefix(data, "rep:"):
		toast = b.onReportCallback(ctx, cb, strings.TrimPrefix(data, "rep:"))
	case strings.HasPrefix(data, "cli:"):
		toast = b.onClientsCallback(ctx, cb, strings.TrimPrefix(data, "cli:"))
	default:
		b.log.Debug("unknown callback", "data", data)
	}
	_ = b.answerCallback(cb, toast, false)
}

func (b *Bot) handleSkip(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID, mid := cb.Message.Chat.ID, cb.Message.MessageID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		return
	}
	if i := receptionForm.index(st.State); i >= 0 {
		b.onFormSkip(ctx, chatID, mid, st, receptionForm, i, b.showReceptionSummary)
		return
	}
	if i := cuttingForm.index(st.State); i >= 0 {
		b.onFormSkip(ctx, chatID, mid, st, cuttingForm, i, b.showCuttingSummary)
	}
}

func (b *Bot) handleBack(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	mid := cb.Message.MessageID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		return
	}

	if i := receptionForm.index(st.State); i >= 0 {
		if i == 0 {
			b.showReceptionMaterials(ctx, chatID, mid, st.Payload)
			return
		}
		b.askForm(ctx, chatID, &mid, receptionForm, i-1, st.Payload)
		return
	}
	if i := cuttingForm.index(st.State); i >= 0 {
		if i == 0 {
			b.showCuttingLots(ctx, chatID, &mid)
			return
		}
		b.askForm(ctx, chatID, &mid, cuttingForm, i-1, st.Payload)
		return
	}

	switch st.State {
	case dialog.StateRcvClient, dialog.StateRcvImport:
		b.showReceptionMenu(ctx, chatID, &mid)
	case dialog.StateRcvMaterial:
		b.showReceptionClients(ctx, chatID, &mid)
	case dialog.StateRcvConfirm:
		b.askForm(ctx, chatID, &mid, receptionForm, len(receptionForm)-1, st.Payload)

	case dialog.StateCutConfirm:
		b.askForm(ctx, chatID, &mid, cuttingForm, len(cuttingForm)-1, st.Payload)

	case dialog.StateStockMaterial, dialog.StateStockClient, dialog.StateStockSearch, dialog.StateStockItem:
		p := st.Payload.Clone()
		delete(p, "lot_id")
		b.showStockList(ctx, chatID, &mid, p)
	case dialog.StateStockDelete:
		id, _ := dialog.GetString(st.Payload, "lot_id")
		b.showLotCard(ctx, chatID, &mid, id, st.Payload)

	case dialog.StateRepPeriod:
		b.showReportClients(ctx, chatID, &mid)
	case dialog.StateRepCustom:
		b.showReportPeriods(ctx, chatID, &mid, st.Payload)

	case dialog.StateCliItem, dialog.StateCliName:
		b.showClientsMenu(ctx, chatID, &mid)
	case dialog.StateCliRename:
		id, _ := dialog.GetInt64(st.Payload, "cli_id")
		b.showClientItem(ctx, chatID, &mid, id)

	default:
		_ = b.states.Reset(ctx, chatID)
		b.editTextAndClear(chatID, mid, "Utilisez le menu ci-dessous.")
	}
}
