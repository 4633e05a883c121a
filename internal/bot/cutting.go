package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
)

// showCuttingLots lists the lots that still have pieces.
func (b *Bot) showCuttingLots(ctx context.Context, chatID int64, editMsgID *int) {
	var lots []ledger.MaterialLot
	for _, l := range b.ledger.Lots() {
		if l.RemainingQuantity > 0 {
			lots = append(lots, l)
		}
	}
	if len(lots) == 0 {
		b.step(ctx, chatID, editMsgID, "Aucun lot en stock.", navKeyboard(false, true), dialog.StateCutPickLot, dialog.Payload{})
		return
	}

	text := "Lot à découper :"
	if len(lots) > listLimit {
		text = fmt.Sprintf("Lot à découper (%d premiers sur %d, affinez via Stock) :", listLimit, len(lots))
		lots = lots[:listLimit]
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, l := range lots {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lotButton(l), "cut:lot:"+l.ID),
		))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	b.step(ctx, chatID, editMsgID, text, tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateCutPickLot, dialog.Payload{})
}

// startCutting opens the cutting form for a lot.
func (b *Bot) startCutting(ctx context.Context, chatID int64, mid int, lotID string) string {
	lot, ok := b.ledger.Lot(lotID)
	if !ok {
		return "Lot introuvable"
	}
	if lot.RemainingQuantity == 0 {
		return "Lot épuisé"
	}
	b.askForm(ctx, chatID, &mid, cuttingForm, 0, dialog.Payload{"lot_id": lot.ID})
	return ""
}

func (b *Bot) onCuttingCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string) string {
	chatID, mid := cb.Message.Chat.ID, cb.Message.MessageID

	switch {
	case strings.HasPrefix(action, "lot:"):
		return b.startCutting(ctx, chatID, mid, strings.TrimPrefix(action, "lot:"))

	case action == "save":
		st, err := b.states.Get(ctx, chatID)
		if err != nil || st.State != dialog.StateCutConfirm {
			return "Déjà traité"
		}
		cut, note, err := b.ledger.RecordCutting(ctx, cuttingInputFrom(st.Payload))
		_ = b.states.Reset(ctx, chatID)
		if err != nil {
			if !errors.Is(err, ledger.ErrInsufficientStock) && !errors.Is(err, ledger.ErrInvalidQuantity) {
				b.log.Error("record cutting failed", "err", err)
			}
			b.editTextAndClear(chatID, mid, "⛔ "+userError(err))
			return ""
		}
		lot, _ := b.ledger.Lot(cut.MaterialID)
		b.log.Info("cutting recorded", "lot_id", cut.MaterialID, "cutting_id", cut.ID, "qty", cut.Quantity)
		text := fmt.Sprintf("✅ Découpe enregistrée : %d pièce(s) %s×%s mm\nBL %s\nReste sur le lot : %d",
			cut.Quantity, num(cut.Length), num(cut.Width), note.DeliveryNoteNumber, lot.RemainingQuantity)
		if lot.Status == ledger.StatusDepleted {
			text += " (lot épuisé)"
		}
		b.editTextAndClear(chatID, mid, text)
		b.sendNote(chatID, note)
		return "Enregistré"
	}
	return ""
}

// showCuttingSummary runs the advisory checks before asking for confirmation.
// An insufficient stock removes the save button; other warnings keep it.
func (b *Bot) showCuttingSummary(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload) {
	in := cuttingInputFrom(p)
	lot, ok := b.ledger.Lot(in.MaterialID)
	if !ok {
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, userError(ledger.ErrLotNotFound))
		return
	}

	var sb strings.Builder
	sb.WriteString("Vérifiez la découpe :\n\n")
	fmt.Fprintf(&sb, "Lot : %s\n", lotButton(lot))
	fmt.Fprintf(&sb, "Découpe : %d × %s×%s mm\n", in.Quantity, num(in.Length), num(in.Width))
	if in.Description != "" {
		fmt.Fprintf(&sb, "Description : %s\n", in.Description)
	}

	kb := confirmKeyboard("cut:save")
	switch err := ledger.ValidateCutting(lot, in); {
	case err == nil:
	case errors.Is(err, ledger.ErrInsufficientStock):
		fmt.Fprintf(&sb, "\n⛔ %s Reste : %d.", userError(err), lot.RemainingQuantity)
		kb = navKeyboard(true, true)
	default:
		fmt.Fprintf(&sb, "\n⚠️ %s Enregistrer quand même ?", userError(err))
	}
	b.step(ctx, chatID, editMsgID, sb.String(), kb, dialog.StateCutConfirm, p)
}

func cuttingInputFrom(p dialog.Payload) ledger.CuttingInput {
	in := ledger.CuttingInput{}
	in.MaterialID, _ = dialog.GetString(p, "lot_id")
	in.Length, _ = dialog.GetFloat(p, "length")
	in.Width, _ = dialog.GetFloat(p, "width")
	qty, _ := dialog.GetInt64(p, "qty")
	in.Quantity = int(qty)
	in.Description, _ = dialog.GetString(p, "desc")
	return in
}
