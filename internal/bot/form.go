package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/metalcut-bot/internal/dialog"
)

type inputKind int

const (
	inputDecimal inputKind = iota
	inputCount
	inputText
)

// formStep is one typed answer of a multi-message dialog.
type formStep struct {
	state    dialog.State
	key      string
	prompt   string
	kind     inputKind
	positive bool
	optional bool
}

func (s formStep) parse(text string) (any, error) {
	switch s.kind {
	case inputDecimal:
		f, err := parseDecimal(text)
		if err != nil {
			return nil, err
		}
		if s.positive && f == 0 {
			return nil, errors.New("la valeur doit être supérieure à zéro")
		}
		return f, nil
	case inputCount:
		n, err := parseCount(text)
		if err != nil {
			return nil, err
		}
		if s.positive && n == 0 {
			return nil, errors.New("la quantité doit être supérieure à zéro")
		}
		return n, nil
	default:
		t := strings.TrimSpace(text)
		if t == "" {
			return nil, errors.New("texte vide")
		}
		return t, nil
	}
}

type form []formStep

func (f form) index(st dialog.State) int {
	for i, s := range f {
		if s.state == st {
			return i
		}
	}
	return -1
}

func (f form) keyboard(i int) tgbotapi.InlineKeyboardMarkup {
	if f[i].optional {
		return skipKeyboard()
	}
	return navKeyboard(true, true)
}

var receptionForm = form{
	{state: dialog.StateRcvThickness, key: "thickness", prompt: "Épaisseur (mm) :", kind: inputDecimal},
	{state: dialog.StateRcvLength, key: "length", prompt: "Longueur (mm) :", kind: inputDecimal},
	{state: dialog.StateRcvWidth, key: "width", prompt: "Largeur (mm) :", kind: inputDecimal},
	{state: dialog.StateRcvQty, key: "qty", prompt: "Quantité (pièces) :", kind: inputCount},
	{state: dialog.StateRcvNumber, key: "number", prompt: "Numéro du bon de livraison client :", kind: inputText, optional: true},
	{state: dialog.StateRcvDesc, key: "desc", prompt: "Description :", kind: inputText, optional: true},
}

var cuttingForm = form{
	{state: dialog.StateCutLength, key: "length", prompt: "Longueur de découpe (mm) :", kind: inputDecimal, positive: true},
	{state: dialog.StateCutWidth, key: "width", prompt: "Largeur de découpe (mm) :", kind: inputDecimal, positive: true},
	{state: dialog.StateCutQty, key: "qty", prompt: "Nombre de pièces :", kind: inputCount, positive: true},
	{state: dialog.StateCutDesc, key: "desc", prompt: "Description :", kind: inputText, optional: true},
}

type formDone func(ctx context.Context, chatID int64, editMsgID *int, p dialog.Payload)

func (b *Bot) askForm(ctx context.Context, chatID int64, editMsgID *int, f form, i int, p dialog.Payload) {
	b.step(ctx, chatID, editMsgID, f[i].prompt, f.keyboard(i), f[i].state, p)
}

// onFormInput stores the typed answer for step i and moves on.
func (b *Bot) onFormInput(ctx context.Context, chatID int64, st *dialog.Item, f form, i int, text string, done formDone) {
	v, err := f[i].parse(text)
	if err != nil {
		b.reply(chatID, "⚠️ "+err.Error()+". Réessayez.")
		return
	}
	p := st.Payload.Clone()
	p[f[i].key] = v
	b.nextFormStep(ctx, chatID, nil, f, i, p, done)
}

// onFormSkip leaves an optional step empty.
func (b *Bot) onFormSkip(ctx context.Context, chatID int64, msgID int, st *dialog.Item, f form, i int, done formDone) {
	if !f[i].optional {
		return
	}
	p := st.Payload.Clone()
	delete(p, f[i].key)
	b.nextFormStep(ctx, chatID, &msgID, f, i, p, done)
}

func (b *Bot) nextFormStep(ctx context.Context, chatID int64, editMsgID *int, f form, i int, p dialog.Payload, done formDone) {
	if i+1 < len(f) {
		b.askForm(ctx, chatID, editMsgID, f, i+1, p)
		return
	}
	done(ctx, chatID, editMsgID, p)
}
