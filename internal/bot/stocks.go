package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/Spok95/metalcut-bot/internal/infra/xlsx"
)

// lot cards list at most this many cuttings, newest last
const cardCuttings = 20

func criteriaFrom(p dialog.Payload) ledger.Criteria {
	var c ledger.Criteria
	c.SearchTerm, _ = dialog.GetString(p, "q")
	mat, _ := dialog.GetString(p, "material")
	c.MaterialType = ledger.MaterialKind(mat)
	c.ClientID, _ = dialog.GetString(p, "client")
	return c
}

// criteriaPayload keeps only the filter keys.
func criteriaPayload(p dialog.Payload) dialog.Payload {
	out := dialog.Payload{}
	for _, k := range []string{"q", "material", "client"} {
		if v, ok := dialog.GetString(p, k); ok && v != "" {
			out[k] = v
		}
	}
	return out
}

func (b *Bot) clientName(id string) string {
	for _, c := range b.ledger.Clients() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func (b *Bot) showStockList(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload) {
	p = criteriaPayload(p)
	c := criteriaFrom(p)
	lots := b.ledger.Filter(c)

	text := fmt.Sprintf("Stock : %s\n%d lot(s)", criteriaText(c, b.clientName(c.ClientID)), len(lots))
	if len(lots) > listLimit {
		text += fmt.Sprintf(", %d affichés", listLimit)
		lots = lots[:listLimit]
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, l := range lots {
		label := lotButton(l)
		if l.Status == ledger.StatusDepleted {
			label = "⚪ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "stk:lot:"+l.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Rechercher", "stk:search"),
			tgbotapi.NewInlineKeyboardButtonData("🧱 Matière", "stk:mat"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Client", "stk:cli"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Export xlsx", "stk:xlsx"),
			tgbotapi.NewInlineKeyboardButtonData("♻️ Tout afficher", "stk:all"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	b.step(ctx, chatID, editMsgID, text, tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateStockList, p)
}

func (b *Bot) showLotCard(ctx context.Context, chatID int64, editMsgID *int, id string, p dialog.Payload) {
	lot, ok := b.ledger.Lot(id)
	if !ok {
		b.showStockList(ctx, chatID, editMsgID, p)
		return
	}
	cuts := b.ledger.CuttingsForLot(id)
	if len(cuts) > cardCuttings {
		cuts = cuts[len(cuts)-cardCuttings:]
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	if lot.RemainingQuantity > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✂️ Découper", "stk:cut:"+id),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Bons de livraison", "stk:notes:"+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Supprimer", "stk:del:"+id),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)

	next := criteriaPayload(p)
	next["lot_id"] = id
	b.step(ctx, chatID, editMsgID, lotCard(lot, cuts), tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateStockItem, next)
}

func (b *Bot) onStockCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string) string {
	chatID, mid := cb.Message.Chat.ID, cb.Message.MessageID
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("load dialog state failed", "chat_id", chatID, "err", err)
		return "Erreur"
	}
	p := st.Payload

	switch {
	case action == "all":
		b.showStockList(ctx, chatID, &mid, dialog.Payload{})

	case action == "search":
		b.step(ctx, chatID, &mid, "Terme recherché (client, n° de BL ou description) :",
			navKeyboard(true, true), dialog.StateStockSearch, criteriaPayload(p))

	case action == "mat":
		b.step(ctx, chatID, &mid, "Filtrer par matière :",
			materialKeyboard("stk:mat:", true, true), dialog.StateStockMaterial, criteriaPayload(p))

	case strings.HasPrefix(action, "mat:"):
		next := criteriaPayload(p)
		if k := strings.TrimPrefix(action, "mat:"); k == "-" {
			delete(next, "material")
		} else {
			next["material"] = k
		}
		b.showStockList(ctx, chatID, &mid, next)

	case action == "cli":
		rows := [][]tgbotapi.InlineKeyboardButton{}
		for _, c := range b.ledger.Clients() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(c.Name, "stk:cli:"+c.ID),
			))
		}
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Tous", "stk:cli:-")),
			navKeyboard(true, true).InlineKeyboard[0],
		)
		b.step(ctx, chatID, &mid, "Filtrer par client :",
			tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateStockClient, criteriaPayload(p))

	case strings.HasPrefix(action, "cli:"):
		next := criteriaPayload(p)
		if id := strings.TrimPrefix(action, "cli:"); id == "-" {
			delete(next, "client")
		} else {
			next["client"] = id
		}
		b.showStockList(ctx, chatID, &mid, next)

	case action == "xlsx":
		data, err := xlsx.LotsWorkbook(b.ledger.Filter(criteriaFrom(p)))
		if err != nil {
			b.log.Error("lots workbook failed", "err", err)
			return "Erreur d'export"
		}
		b.sendDocument(chatID, "stock.xlsx", data, "Stock : "+criteriaText(criteriaFrom(p), b.clientName(criteriaFrom(p).ClientID)))

	case strings.HasPrefix(action, "lot:"):
		b.showLotCard(ctx, chatID, &mid, strings.TrimPrefix(action, "lot:"), p)

	case strings.HasPrefix(action, "cut:"):
		return b.startCutting(ctx, chatID, mid, strings.TrimPrefix(action, "cut:"))

	case strings.HasPrefix(action, "notes:"):
		notes := b.ledger.NotesForLot(strings.TrimPrefix(action, "notes:"))
		if len(notes) == 0 {
			return "Aucun bon"
		}
		for _, n := range notes {
			b.sendNote(chatID, n)
		}

	case strings.HasPrefix(action, "del:"):
		id := strings.TrimPrefix(action, "del:")
		lot, ok := b.ledger.Lot(id)
		if !ok {
			return "Lot introuvable"
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Confirmer la suppression", "stk:delok:"+id),
			),
			navKeyboard(true, true).InlineKeyboard[0],
		)
		next := criteriaPayload(p)
		next["lot_id"] = id
		b.step(ctx, chatID, &mid, fmt.Sprintf("Supprimer le lot %s et ses bons de livraison ?", lot.DeliveryNoteNumber),
			kb, dialog.StateStockDelete, next)

	case strings.HasPrefix(action, "delok:"):
		if st.State != dialog.StateStockDelete {
			return "Déjà traité"
		}
		id := strings.TrimPrefix(action, "delok:")
		if err := b.ledger.DeleteMaterial(ctx, id); err != nil {
			b.log.Warn("delete lot refused", "lot_id", id, "err", err)
			b.step(ctx, chatID, &mid, "⛔ "+userError(err), navKeyboard(true, true), dialog.StateStockDelete, p)
			return ""
		}
		b.log.Info("lot deleted", "lot_id", id)
		b.showStockList(ctx, chatID, &mid, p)
		return "Lot supprimé"
	}
	return ""
}
