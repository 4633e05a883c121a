package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists ledger mutations. Each call must be atomic on its own:
// the ledger applies a change in memory only after the store accepted it.
type Store interface {
	SaveReception(ctx context.Context, lot MaterialLot, note DeliveryNote) error
	SaveCutting(ctx context.Context, lot MaterialLot, cut Cutting, note DeliveryNote) error
	UpdateLot(ctx context.Context, lot MaterialLot) error
	DeleteLot(ctx context.Context, id string) error
	Load(ctx context.Context) (Snapshot, error)
}

// Snapshot is the full ledger state in insertion order.
type Snapshot struct {
	Lots     []MaterialLot
	Cuttings []Cutting
	Notes    []DeliveryNote
}

// Recorder receives operation outcomes, typically for metrics.
type Recorder interface {
	ObserveOp(op, outcome string)
	SetLots(received, depleted int)
}

type Config struct {
	// Location defines day boundaries for reports. Defaults to UTC.
	Location *time.Location
	Clock    func() time.Time
	Recorder Recorder
}

// Ledger owns material lots, their cuttings and delivery notes.
// All mutations are serialised by mu; a store failure leaves memory untouched.
type Ledger struct {
	mu    sync.RWMutex
	store Store
	loc   *time.Location
	now   func() time.Time
	rec   Recorder
	newID func() string

	lots     *ordered[MaterialLot]
	cuttings *ordered[Cutting]
	notes    *ordered[DeliveryNote]

	cutsByLot  map[string][]string
	notesByLot map[string][]string

	lastStamp int64
}

// New builds an empty ledger. store may be nil for a memory-only ledger.
func New(store Store, cfg Config) *Ledger {
	l := &Ledger{
		store:      store,
		loc:        cfg.Location,
		now:        cfg.Clock,
		rec:        cfg.Recorder,
		newID:      uuid.NewString,
		lots:       newOrdered[MaterialLot](),
		cuttings:   newOrdered[Cutting](),
		notes:      newOrdered[DeliveryNote](),
		cutsByLot:  make(map[string][]string),
		notesByLot: make(map[string][]string),
	}
	if l.loc == nil {
		l.loc = time.UTC
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.rec == nil {
		l.rec = nopRecorder{}
	}
	return l
}

// Load replaces the in-memory state with the store contents.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	snap, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lots = newOrdered[MaterialLot]()
	l.cuttings = newOrdered[Cutting]()
	l.notes = newOrdered[DeliveryNote]()
	l.cutsByLot = make(map[string][]string)
	l.notesByLot = make(map[string][]string)
	for _, lot := range snap.Lots {
		l.lots.set(lot.ID, lot)
	}
	for _, c := range snap.Cuttings {
		l.putCutting(c)
	}
	for _, n := range snap.Notes {
		l.putNote(n)
		l.reserveStamp(n.DeliveryNoteNumber)
	}
	l.publishLots()
	return nil
}

// ReceiveMaterial registers a new lot together with its reception note.
// Negative numbers are coerced to 0; an unknown material is rejected.
func (l *Ledger) ReceiveMaterial(ctx context.Context, in ReceiveInput) (MaterialLot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	qty := max(in.Quantity, 0)
	lot := MaterialLot{
		ID:                 l.newID(),
		ClientID:           strings.TrimSpace(in.ClientID),
		ClientName:         strings.TrimSpace(in.ClientName),
		DeliveryNoteNumber: strings.TrimSpace(in.DeliveryNote),
		Material:           normalizeKind(in.Material),
		Thickness:          max(in.Thickness, 0),
		Length:             max(in.Length, 0),
		Width:              max(in.Width, 0),
		Quantity:           qty,
		RemainingQuantity:  qty,
		Description:        strings.TrimSpace(in.Description),
		ReceiptDate:        in.ReceiptDate,
		Status:             StatusReceived,
		CreatedAt:          now,
	}
	if !lot.Material.Valid() {
		l.rec.ObserveOp("receive", "rejected")
		return MaterialLot{}, fmt.Errorf("%w: %q", ErrInvalidMaterial, in.Material)
	}
	if lot.DeliveryNoteNumber == "" {
		lot.DeliveryNoteNumber = fmt.Sprintf("BL-%d", l.nextStamp())
	} else {
		l.reserveStamp(lot.DeliveryNoteNumber)
	}
	if lot.ReceiptDate.IsZero() {
		lot.ReceiptDate = now
	}

	note := DeliveryNote{
		ID:                 l.newID(),
		MaterialID:         lot.ID,
		ClientID:           lot.ClientID,
		ClientName:         lot.ClientName,
		DeliveryNoteNumber: lot.DeliveryNoteNumber,
		Date:               lot.ReceiptDate,
		Type:               NoteReception,
		Items: []NoteItem{{
			Material:    lot.Material,
			Thickness:   lot.Thickness,
			Length:      lot.Length,
			Width:       lot.Width,
			Quantity:    lot.Quantity,
			Description: lot.Description,
		}},
	}

	if l.store != nil {
		if err := l.store.SaveReception(ctx, lot, note); err != nil {
			l.rec.ObserveOp("receive", "error")
			return MaterialLot{}, fmt.Errorf("ledger: receive: %w", err)
		}
	}
	l.lots.set(lot.ID, lot)
	l.putNote(note)
	l.rec.ObserveOp("receive", "ok")
	l.publishLots()
	return lot, nil
}

// UpdateMaterial merges patch into the lot. ok is false when id is unknown.
func (l *Ledger) UpdateMaterial(ctx context.Context, id string, patch MaterialPatch) (MaterialLot, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lot, found := l.lots.get(id)
	if !found {
		return MaterialLot{}, false, nil
	}
	if patch.ClientID != nil {
		lot.ClientID = strings.TrimSpace(*patch.ClientID)
	}
	if patch.ClientName != nil {
		lot.ClientName = strings.TrimSpace(*patch.ClientName)
	}
	if patch.DeliveryNoteNumber != nil && strings.TrimSpace(*patch.DeliveryNoteNumber) != "" {
		lot.DeliveryNoteNumber = strings.TrimSpace(*patch.DeliveryNoteNumber)
	}
	if patch.Material != nil {
		lot.Material = normalizeKind(*patch.Material)
		if !lot.Material.Valid() {
			l.rec.ObserveOp("update", "rejected")
			return MaterialLot{}, true, fmt.Errorf("%w: %q", ErrInvalidMaterial, *patch.Material)
		}
	}
	if patch.Thickness != nil {
		lot.Thickness = max(*patch.Thickness, 0)
	}
	if patch.Length != nil {
		lot.Length = max(*patch.Length, 0)
	}
	if patch.Width != nil {
		lot.Width = max(*patch.Width, 0)
	}
	if patch.Description != nil {
		lot.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ReceiptDate != nil && !patch.ReceiptDate.IsZero() {
		lot.ReceiptDate = *patch.ReceiptDate
	}
	if patch.Quantity != nil && *patch.Quantity != lot.Quantity {
		if len(l.cutsByLot[id]) > 0 {
			l.rec.ObserveOp("update", "rejected")
			return MaterialLot{}, true, ErrQuantityLocked
		}
		lot.Quantity = max(*patch.Quantity, 0)
		lot.RemainingQuantity = lot.Quantity
		lot.refreshStatus()
	}

	if l.store != nil {
		if err := l.store.UpdateLot(ctx, lot); err != nil {
			l.rec.ObserveOp("update", "error")
			return MaterialLot{}, true, fmt.Errorf("ledger: update %s: %w", id, err)
		}
	}
	l.lots.set(id, lot)
	l.reserveStamp(lot.DeliveryNoteNumber)
	l.rec.ObserveOp("update", "ok")
	l.publishLots()
	return lot, true, nil
}

// DeleteMaterial removes a lot and its delivery notes. Lots with cuttings
// are kept and ErrBlockedByDependents is returned.
func (l *Ledger) DeleteMaterial(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.lots.get(id); !ok {
		return ErrLotNotFound
	}
	if n := len(l.cutsByLot[id]); n > 0 {
		l.rec.ObserveOp("delete", "rejected")
		return fmt.Errorf("%w: %d cutting(s) reference lot %s", ErrBlockedByDependents, n, id)
	}
	if l.store != nil {
		if err := l.store.DeleteLot(ctx, id); err != nil {
			l.rec.ObserveOp("delete", "error")
			return fmt.Errorf("ledger: delete %s: %w", id, err)
		}
	}
	for _, nid := range l.notesByLot[id] {
		l.notes.del(nid)
	}
	delete(l.notesByLot, id)
	delete(l.cutsByLot, id)
	l.lots.del(id)
	l.rec.ObserveOp("delete", "ok")
	l.publishLots()
	return nil
}

// RecordCutting takes in.Quantity pieces from the lot and issues the cutting
// note. Nothing changes when the stock is insufficient.
func (l *Ledger) RecordCutting(ctx context.Context, in CuttingInput) (Cutting, DeliveryNote, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if in.Quantity <= 0 {
		l.rec.ObserveOp("cutting", "rejected")
		return Cutting{}, DeliveryNote{}, ErrInvalidQuantity
	}
	lot, ok := l.lots.get(in.MaterialID)
	if !ok {
		l.rec.ObserveOp("cutting", "rejected")
		return Cutting{}, DeliveryNote{}, fmt.Errorf("%w: lot %s not found", ErrInsufficientStock, in.MaterialID)
	}
	if lot.RemainingQuantity < in.Quantity {
		l.rec.ObserveOp("cutting", "rejected")
		return Cutting{}, DeliveryNote{}, fmt.Errorf("%w: requested %d, remaining %d",
			ErrInsufficientStock, in.Quantity, lot.RemainingQuantity)
	}

	now := l.now()
	cut := Cutting{
		ID:          l.newID(),
		MaterialID:  lot.ID,
		Length:      in.Length,
		Width:       in.Width,
		Quantity:    in.Quantity,
		Description: strings.TrimSpace(in.Description),
		Thickness:   lot.Thickness,
		Material:    lot.Material,
		ClientID:    lot.ClientID,
		ClientName:  lot.ClientName,
		CreatedAt:   now,
	}
	lot.RemainingQuantity -= in.Quantity
	lot.refreshStatus()

	note := DeliveryNote{
		ID:                 l.newID(),
		MaterialID:         lot.ID,
		ClientID:           lot.ClientID,
		ClientName:         lot.ClientName,
		DeliveryNoteNumber: fmt.Sprintf("BL-C-%d", l.nextStamp()),
		Date:               now,
		Type:               NoteCutting,
		CuttingID:          cut.ID,
		Items: []NoteItem{{
			Material:    cut.Material,
			Thickness:   cut.Thickness,
			Length:      cut.Length,
			Width:       cut.Width,
			Quantity:    cut.Quantity,
			Description: cut.Description,
		}},
	}

	if l.store != nil {
		if err := l.store.SaveCutting(ctx, lot, cut, note); err != nil {
			l.rec.ObserveOp("cutting", "error")
			return Cutting{}, DeliveryNote{}, fmt.Errorf("ledger: cutting: %w", err)
		}
	}
	l.lots.set(lot.ID, lot)
	l.putCutting(cut)
	l.putNote(note)
	l.rec.ObserveOp("cutting", "ok")
	l.publishLots()
	return cut, note.clone(), nil
}

func (l *Ledger) Lot(id string) (MaterialLot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lots.get(id)
}

func (l *Ledger) Lots() []MaterialLot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]MaterialLot, 0, l.lots.len())
	l.lots.each(func(_ string, v MaterialLot) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (l *Ledger) LotsByClient(clientID string) []MaterialLot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []MaterialLot
	l.lots.each(func(_ string, v MaterialLot) bool {
		if v.ClientID == clientID {
			out = append(out, v)
		}
		return true
	})
	return out
}

func (l *Ledger) Cutting(id string) (Cutting, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cuttings.get(id)
}

func (l *Ledger) Cuttings() []Cutting {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Cutting, 0, l.cuttings.len())
	l.cuttings.each(func(_ string, v Cutting) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (l *Ledger) CuttingsForLot(lotID string) []Cutting {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.cutsByLot[lotID]
	out := make([]Cutting, 0, len(ids))
	for _, id := range ids {
		if c, ok := l.cuttings.get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func (l *Ledger) Note(id string) (DeliveryNote, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.notes.get(id)
	if !ok {
		return DeliveryNote{}, false
	}
	return n.clone(), true
}

func (l *Ledger) Notes() []DeliveryNote {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]DeliveryNote, 0, l.notes.len())
	l.notes.each(func(_ string, v DeliveryNote) bool {
		out = append(out, v.clone())
		return true
	})
	return out
}

func (l *Ledger) NotesForLot(lotID string) []DeliveryNote {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.notesByLot[lotID]
	out := make([]DeliveryNote, 0, len(ids))
	for _, id := range ids {
		if n, ok := l.notes.get(id); ok {
			out = append(out, n.clone())
		}
	}
	return out
}

// Clients returns distinct clients in first-seen order.
func (l *Ledger) Clients() []Client {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]bool)
	var out []Client
	l.lots.each(func(_ string, v MaterialLot) bool {
		if !seen[v.ClientID] {
			seen[v.ClientID] = true
			out = append(out, Client{ID: v.ClientID, Name: v.ClientName})
		}
		return true
	})
	return out
}

// Location is the zone used for day boundaries.
func (l *Ledger) Location() *time.Location { return l.loc }

func (l *Ledger) putCutting(c Cutting) {
	l.cuttings.set(c.ID, c)
	l.cutsByLot[c.MaterialID] = append(l.cutsByLot[c.MaterialID], c.ID)
}

func (l *Ledger) putNote(n DeliveryNote) {
	l.notes.set(n.ID, n.clone())
	l.notesByLot[n.MaterialID] = append(l.notesByLot[n.MaterialID], n.ID)
}

// nextStamp returns a strictly increasing unix-millis stamp for note numbers.
func (l *Ledger) nextStamp() int64 {
	ms := l.now().UnixMilli()
	if ms <= l.lastStamp {
		ms = l.lastStamp + 1
	}
	l.lastStamp = ms
	return ms
}

// reserveStamp keeps generated numbers above a BL number that came from
// outside nextStamp (operator input or a loaded note).
func (l *Ledger) reserveStamp(number string) {
	if s := stampOf(number); s > l.lastStamp {
		l.lastStamp = s
	}
}

func (l *Ledger) publishLots() {
	var received, depleted int
	l.lots.each(func(_ string, v MaterialLot) bool {
		if v.Status == StatusDepleted {
			depleted++
		} else {
			received++
		}
		return true
	})
	l.rec.SetLots(received, depleted)
}

func stampOf(number string) int64 {
	s := strings.TrimPrefix(strings.TrimPrefix(number, "BL-"), "C-")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type nopRecorder struct{}

func (nopRecorder) ObserveOp(string, string) {}
func (nopRecorder) SetLots(int, int)         {}
