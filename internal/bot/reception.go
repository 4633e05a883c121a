package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/Spok95/metalcut-bot/internal/infra/xlsx"
)

func (b *Bot) showReceptionMenu(ctx context.Context, chatID int64, editMsgID *int) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Nouvelle réception", "rcv:new"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬆️ Importer un fichier", "rcv:import"),
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Modèle d'import", "rcv:tpl"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	b.step(ctx, chatID, editMsgID, "Réception de matière : choisissez une action", kb, dialog.StateRcvMenu, dialog.Payload{})
}

func (b *Bot) showReceptionClients(ctx context.Context, chatID int64, editMsgID *int) {
	list, err := b.clients.List(ctx, true)
	if err != nil {
		b.log.Error("list clients failed", "err", err)
		b.step(ctx, chatID, editMsgID, "Erreur de chargement des clients.", navKeyboard(true, true), dialog.StateRcvClient, dialog.Payload{})
		return
	}
	if len(list) == 0 {
		b.step(ctx, chatID, editMsgID, "Aucun client actif. Créez-en un via « Clients ».",
			navKeyboard(true, true), dialog.StateRcvClient, dialog.Payload{})
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, c := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, fmt.Sprintf("rcv:cli:%d", c.ID)),
		))
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	b.step(ctx, chatID, editMsgID, "Client propriétaire de la matière :",
		tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateRcvClient, dialog.Payload{})
}

func (b *Bot) showReceptionMaterials(ctx context.Context, chatID int64, editMsgID int, p dialog.Payload) {
	name, _ := dialog.GetString(p, "client_name")
	b.step(ctx, chatID, &editMsgID, fmt.Sprintf("Client : %s\nMatière :", name),
		materialKeyboard("rcv:mat:", false, true), dialog.StateRcvMaterial, p)
}

func (b *Bot) onReceptionCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string) string {
	chatID, mid := cb.Message.Chat.ID, cb.Message.MessageID

	switch {
	case action == "new":
		b.showReceptionClients(ctx, chatID, &mid)

	case action == "import":
		b.step(ctx, chatID, &mid, "Envoyez le fichier .xlsx des réceptions (colonnes du modèle d'import).",
			navKeyboard(true, true), dialog.StateRcvImport, dialog.Payload{})

	case action == "tpl":
		data, err := xlsx.ReceiptTemplate()
		if err != nil {
			b.log.Error("receipt template failed", "err", err)
			return "Erreur"
		}
		b.sendDocument(chatID, "modele_reception.xlsx", data,
			"Une ligne par lot. matiere : inox, fer, aluminium, cuivre ou laiton. date : JJ/MM/AAAA.")

	case strings.HasPrefix(action, "cli:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(action, "cli:"), 10, 64)
		if err != nil {
			return ""
		}
		c, err := b.clients.GetByID(ctx, id)
		if err != nil || c == nil {
			return "Client introuvable"
		}
		b.showReceptionMaterials(ctx, chatID, mid, dialog.Payload{"client_id": c.LedgerID(), "client_name": c.Name})

	case strings.HasPrefix(action, "mat:"):
		st, err := b.states.Get(ctx, chatID)
		if err != nil || st.State != dialog.StateRcvMaterial {
			return ""
		}
		p := st.Payload.Clone()
		p["material"] = strings.TrimPrefix(action, "mat:")
		b.askForm(ctx, chatID, &mid, receptionForm, 0, p)

	case action == "save":
		st, err := b.states.Get(ctx, chatID)
		if err != nil || st.State != dialog.StateRcvConfirm {
			return "Déjà traité"
		}
		lot, err := b.ledger.ReceiveMaterial(ctx, receiveInputFrom(st.Payload))
		_ = b.states.Reset(ctx, chatID)
		if err != nil {
			b.log.Error("receive material failed", "err", err)
			b.editTextAndClear(chatID, mid, userError(err))
			return ""
		}
		b.log.Info("material received", "lot_id", lot.ID, "client_id", lot.ClientID, "qty", lot.Quantity)
		b.editTextAndClear(chatID, mid, fmt.Sprintf("✅ Réception enregistrée : %s\n%s", lot.DeliveryNoteNumber, lotButton(lot)))
		for _, n := range b.ledger.NotesForLot(lot.ID) {
			b.sendNote(chatID, n)
		}
		return "Enregistré"
	}
	return ""
}

func (b *Bot) showReceptionSummary(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload) {
	in := receiveInputFrom(p)
	number := in.DeliveryNote
	if number == "" {
		number = "(généré automatiquement)"
	}
	var sb strings.Builder
	sb.WriteString("Vérifiez la réception :\n\n")
	fmt.Fprintf(&sb, "Client : %s\n", in.ClientName)
	fmt.Fprintf(&sb, "Matière : %s, ép. %s mm\n", materialLabel(in.Material), num(in.Thickness))
	fmt.Fprintf(&sb, "Format : %s × %s mm\n", num(in.Length), num(in.Width))
	fmt.Fprintf(&sb, "Quantité : %d\n", in.Quantity)
	fmt.Fprintf(&sb, "N° BL : %s\n", number)
	if in.Description != "" {
		fmt.Fprintf(&sb, "Description : %s\n", in.Description)
	}
	b.step(ctx, chatID, editMsgID, sb.String(), confirmKeyboard("rcv:save"), dialog.StateRcvConfirm, p)
}

// receiveInputFrom builds the ledger input from the reception dialog payload.
func receiveInputFrom(p dialog.Payload) ledger.ReceiveInput {
	in := ledger.ReceiveInput{}
	in.ClientID, _ = dialog.GetString(p, "client_id")
	in.ClientName, _ = dialog.GetString(p, "client_name")
	in.DeliveryNote, _ = dialog.GetString(p, "number")
	in.Description, _ = dialog.GetString(p, "desc")
	mat, _ := dialog.GetString(p, "material")
	in.Material = ledger.MaterialKind(mat)
	in.Thickness, _ = dialog.GetFloat(p, "thickness")
	in.Length, _ = dialog.GetFloat(p, "length")
	in.Width, _ = dialog.GetFloat(p, "width")
	qty, _ := dialog.GetInt64(p, "qty")
	in.Quantity = int(qty)
	return in
}

// importReceipts registers one lot per spreadsheet row. Client names are
// added to the client list when missing.
func (b *Bot) importReceipts(ctx context.Context, chatID int64, data []byte) {
	inputs, err := xlsx.ParseReceipts(data, b.location())
	if err != nil {
		var re *xlsx.RowError
		if errors.As(err, &re) {
			b.reply(chatID, "Fichier refusé, "+re.Error())
			return
		}
		b.log.Warn("parse import failed", "err", err)
		b.reply(chatID, "Impossible de lire le fichier (.xlsx attendu).")
		return
	}
	if len(inputs) == 0 {
		b.reply(chatID, "Aucune ligne à importer.")
		return
	}

	var lots, pieces int
	for _, in := range inputs {
		if in.ClientName != "" {
			c, err := b.clients.Create(ctx, in.ClientName)
			if err != nil {
				b.log.Error("create client failed", "name", in.ClientName, "err", err)
			} else if in.ClientID == "" {
				in.ClientID = c.LedgerID()
			}
		}
		lot, err := b.ledger.ReceiveMaterial(ctx, in)
		if err != nil {
			b.log.Error("import receive failed", "saved", lots, "total", len(inputs), "err", err)
			b.reply(chatID, importSummary(lots, pieces, len(inputs), &in, err))
			return
		}
		lots++
		pieces += lot.Quantity
	}

	b.clearPrevStep(ctx, chatID)
	_ = b.states.Reset(ctx, chatID)
	b.log.Info("receipts imported", "lots", lots, "pieces", pieces)
	b.reply(chatID, importSummary(lots, pieces, len(inputs), nil, nil))
}

func (b *Bot) sendNote(chatID int64, n ledger.DeliveryNote) {
	data, err := xlsx.DeliveryNoteWorkbook(n)
	if err != nil {
		b.log.Error("note workbook failed", "note_id", n.ID, "err", err)
		return
	}
	b.sendDocument(chatID, n.DeliveryNoteNumber+".xlsx", data, "Bon de livraison "+n.DeliveryNoteNumber)
}
