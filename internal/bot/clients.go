package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/clients"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
)

func (b *Bot) showClientsMenu(ctx context.Context, chatID int64, editMsgID *int) {
	list, err := b.clients.List(ctx, false)
	if err != nil {
		b.log.Error("list clients failed", "err", err)
		b.reply(chatID, "Erreur de chargement des clients.")
		return
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, c := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(badge(c.Active)+" "+c.Name, fmt.Sprintf("cli:item:%d", c.ID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Nouveau client", "cli:new")),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	text := "Clients"
	if len(list) == 0 {
		text = "Aucun client pour l'instant."
	}
	b.step(ctx, chatID, editMsgID, text, tgbotapi.NewInlineKeyboardMarkup(rows...), dialog.StateCliMenu, dialog.Payload{})
}

func (b *Bot) showClientItem(ctx context.Context, chatID int64, editMsgID *int, id int64) {
	c, err := b.clients.GetByID(ctx, id)
	if err != nil || c == nil {
		b.showClientsMenu(ctx, chatID, editMsgID)
		return
	}

	var pieces, open int
	lots := b.ledger.LotsByClient(c.LedgerID())
	for _, l := range lots {
		pieces += l.RemainingQuantity
		if l.RemainingQuantity > 0 {
			open++
		}
	}
	status, toggle := "actif", "🚫 Désactiver"
	if !c.Active {
		status, toggle = "inactif", "🟢 Activer"
	}
	text := fmt.Sprintf("Client : %s\nStatut : %s\nLots : %d (%d en stock, %d pièce(s))",
		c.Name, status, len(lots), open, pieces)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Renommer", fmt.Sprintf("cli:ren:%d", c.ID)),
			tgbotapi.NewInlineKeyboardButtonData(toggle, fmt.Sprintf("cli:toggle:%d", c.ID)),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
	b.step(ctx, chatID, editMsgID, text, kb, dialog.StateCliItem, dialog.Payload{"cli_id": c.ID})
}

func (b *Bot) onClientsCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string) string {
	chatID, mid := cb.Message.Chat.ID, cb.Message.MessageID

	if action == "new" {
		b.step(ctx, chatID, &mid, "Nom du nouveau client :", navKeyboard(true, true), dialog.StateCliName, dialog.Payload{})
		return ""
	}

	verb, rawID, ok := strings.Cut(action, ":")
	if !ok {
		return ""
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return ""
	}

	switch verb {
	case "item":
		b.showClientItem(ctx, chatID, &mid, id)
	case "ren":
		b.step(ctx, chatID, &mid, "Nouveau nom du client :", navKeyboard(true, true), dialog.StateCliRename, dialog.Payload{"cli_id": id})
	case "toggle":
		c, err := b.clients.GetByID(ctx, id)
		if err != nil || c == nil {
			return "Client introuvable"
		}
		if _, err := b.clients.SetActive(ctx, id, !c.Active); err != nil {
			b.log.Error("toggle client failed", "client_id", id, "err", err)
			return "Erreur"
		}
		b.showClientItem(ctx, chatID, &mid, id)
	}
	return ""
}

func (b *Bot) onClientName(ctx context.Context, chatID int64, text string) {
	c, err := b.clients.Create(ctx, text)
	if errors.Is(err, clients.ErrEmptyName) {
		b.reply(chatID, "⚠️ Le nom ne peut pas être vide.")
		return
	}
	if err != nil {
		b.log.Error("create client failed", "err", err)
		b.reply(chatID, "Impossible d'enregistrer le client.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Client « %s » enregistré.", c.Name))
	b.showClientsMenu(ctx, chatID, nil)
}

func (b *Bot) onClientRename(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	id, ok := dialog.GetInt64(st.Payload, "cli_id")
	if !ok {
		_ = b.states.Reset(ctx, chatID)
		return
	}
	c, err := b.clients.Rename(ctx, id, text)
	if errors.Is(err, clients.ErrEmptyName) {
		b.reply(chatID, "⚠️ Le nom ne peut pas être vide.")
		return
	}
	if err != nil || c == nil {
		b.log.Error("rename client failed", "client_id", id, "err", err)
		b.reply(chatID, "Impossible de renommer le client (nom déjà utilisé ?).")
		return
	}
	if n := b.syncClientName(ctx, *c); n > 0 {
		b.reply(chatID, fmt.Sprintf("Client renommé, %d lot(s) mis à jour.", n))
	} else {
		b.reply(chatID, "Client renommé.")
	}
	b.showClientItem(ctx, chatID, nil, id)
}

// syncClientName copies the client name onto its lots so reports and notes
// issued from now on carry it.
func (b *Bot) syncClientName(ctx context.Context, c clients.Client) int {
	var n int
	name := c.Name
	for _, l := range b.ledger.LotsByClient(c.LedgerID()) {
		if l.ClientName == name {
			continue
		}
		if _, _, err := b.ledger.UpdateMaterial(ctx, l.ID, ledger.MaterialPatch{ClientName: &name}); err != nil {
			b.log.Error("update lot client name failed", "lot_id", l.ID, "err", err)
			continue
		}
		n++
	}
	return n
}
