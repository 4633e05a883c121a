package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	snap    Snapshot
	fail    error
	calls   int
	deleted []string
}

func (s *memoryStore) SaveReception(_ context.Context, lot MaterialLot, note DeliveryNote) error {
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	s.snap.Lots = append(s.snap.Lots, lot)
	s.snap.Notes = append(s.snap.Notes, note)
	return nil
}

func (s *memoryStore) SaveCutting(_ context.Context, lot MaterialLot, cut Cutting, note DeliveryNote) error {
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	for i := range s.snap.Lots {
		if s.snap.Lots[i].ID == lot.ID {
			s.snap.Lots[i] = lot
		}
	}
	s.snap.Cuttings = append(s.snap.Cuttings, cut)
	s.snap.Notes = append(s.snap.Notes, note)
	return nil
}

func (s *memoryStore) UpdateLot(_ context.Context, lot MaterialLot) error {
	s.calls++
	return s.fail
}

func (s *memoryStore) DeleteLot(_ context.Context, id string) error {
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memoryStore) Load(context.Context) (Snapshot, error) { return s.snap, s.fail }

type countingRecorder struct {
	ops      map[string]int
	received int
	depleted int
}

func (r *countingRecorder) ObserveOp(op, outcome string) {
	if r.ops == nil {
		r.ops = map[string]int{}
	}
	r.ops[op+":"+outcome]++
}

func (r *countingRecorder) SetLots(received, depleted int) {
	r.received, r.depleted = received, depleted
}

func stepClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		cur := t
		t = t.Add(step)
		return cur
	}
}

func newTestLedger(store Store) *Ledger {
	return New(store, Config{Clock: stepClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), time.Minute)})
}

func inoxInput() ReceiveInput {
	return ReceiveInput{
		ClientName: "A",
		ClientID:   "1",
		Material:   MaterialInox,
		Thickness:  2,
		Length:     1000,
		Width:      500,
		Quantity:   50,
	}
}

func requireConsistent(t *testing.T, l *Ledger) {
	t.Helper()
	for _, lot := range l.Lots() {
		require.GreaterOrEqual(t, lot.RemainingQuantity, 0)
		require.LessOrEqual(t, lot.RemainingQuantity, lot.Quantity)
		sum := 0
		for _, c := range l.CuttingsForLot(lot.ID) {
			sum += c.Quantity
		}
		require.Equal(t, lot.Quantity-lot.RemainingQuantity, sum, "lot %s", lot.ID)
	}
}

func TestReceiveMaterialCreatesReceptionNote(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()

	lot, err := l.ReceiveMaterial(ctx, inoxInput())
	require.NoError(t, err)
	require.NotEmpty(t, lot.ID)
	require.Equal(t, 50, lot.RemainingQuantity)
	require.Equal(t, StatusReceived, lot.Status)
	require.Regexp(t, `^BL-\d+$`, lot.DeliveryNoteNumber)
	require.Equal(t, lot.CreatedAt, lot.ReceiptDate)

	notes := l.NotesForLot(lot.ID)
	require.Len(t, notes, 1)
	require.Equal(t, NoteReception, notes[0].Type)
	require.Equal(t, lot.DeliveryNoteNumber, notes[0].DeliveryNoteNumber)
	require.Len(t, notes[0].Items, 1)
	require.Equal(t, 50, notes[0].Items[0].Quantity)
	require.Equal(t, MaterialInox, notes[0].Items[0].Material)
}

func TestReceiveMaterialKeepsSuppliedNumberAndCoercesNegatives(t *testing.T) {
	l := newTestLedger(nil)
	in := inoxInput()
	in.DeliveryNote = " BL-CLIENT-7 "
	in.Quantity = -4
	in.Width = -1

	lot, err := l.ReceiveMaterial(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "BL-CLIENT-7", lot.DeliveryNoteNumber)
	require.Equal(t, 0, lot.Quantity)
	require.Equal(t, 0, lot.RemainingQuantity)
	require.Zero(t, lot.Width)
}

func TestGeneratedNoteNumbersAreUnique(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	l := New(nil, Config{Clock: func() time.Time { return fixed }})
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		lot, err := l.ReceiveMaterial(ctx, inoxInput())
		require.NoError(t, err)
		require.False(t, seen[lot.DeliveryNoteNumber], lot.DeliveryNoteNumber)
		seen[lot.DeliveryNoteNumber] = true
	}
}

func TestSuppliedNumberIsNeverGeneratedAgain(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	l := New(nil, Config{Clock: func() time.Time { return fixed }})
	ctx := context.Background()

	in := inoxInput()
	in.DeliveryNote = fmt.Sprintf("BL-%d", fixed.UnixMilli())
	supplied, err := l.ReceiveMaterial(ctx, in)
	require.NoError(t, err)

	generated, err := l.ReceiveMaterial(ctx, inoxInput())
	require.NoError(t, err)
	require.NotEqual(t, supplied.DeliveryNoteNumber, generated.DeliveryNoteNumber)
	require.Greater(t, stampOf(generated.DeliveryNoteNumber), stampOf(supplied.DeliveryNoteNumber))

	_, note, err := l.RecordCutting(ctx, CuttingInput{MaterialID: generated.ID, Length: 1, Width: 1, Quantity: 1})
	require.NoError(t, err)
	require.Greater(t, stampOf(note.DeliveryNoteNumber), stampOf(generated.DeliveryNoteNumber))

	// a number patched onto a lot is reserved too
	ahead := fmt.Sprintf("BL-%d", fixed.UnixMilli()+1000)
	_, _, err = l.UpdateMaterial(ctx, supplied.ID, MaterialPatch{DeliveryNoteNumber: &ahead})
	require.NoError(t, err)
	next, err := l.ReceiveMaterial(ctx, inoxInput())
	require.NoError(t, err)
	require.Greater(t, stampOf(next.DeliveryNoteNumber), stampOf(ahead))
}

func TestReceiveMaterialNormalizesAndRejectsMaterial(t *testing.T) {
	rec := &countingRecorder{}
	l := New(nil, Config{Recorder: rec})
	ctx := context.Background()

	in := inoxInput()
	in.Material = " INOX "
	lot, err := l.ReceiveMaterial(ctx, in)
	require.NoError(t, err)
	require.Equal(t, MaterialInox, lot.Material)

	in.Material = "titane"
	_, err = l.ReceiveMaterial(ctx, in)
	require.ErrorIs(t, err, ErrInvalidMaterial)
	in.Material = ""
	_, err = l.ReceiveMaterial(ctx, in)
	require.ErrorIs(t, err, ErrInvalidMaterial)

	require.Len(t, l.Lots(), 1)
	require.Len(t, l.Notes(), 1)
	require.Equal(t, 2, rec.ops["receive:rejected"])
}

func TestUpdateMaterialNormalizesAndRejectsMaterial(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	lot, _ := l.ReceiveMaterial(ctx, inoxInput())

	fer := MaterialKind("Fer")
	got, ok, err := l.UpdateMaterial(ctx, lot.ID, MaterialPatch{Material: &fer})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, MaterialFer, got.Material)

	bad := MaterialKind("bois")
	desc := "changed"
	_, ok, err = l.UpdateMaterial(ctx, lot.ID, MaterialPatch{Material: &bad, Description: &desc})
	require.ErrorIs(t, err, ErrInvalidMaterial)
	require.True(t, ok)

	stored, _ := l.Lot(lot.ID)
	require.Equal(t, MaterialFer, stored.Material)
	require.Empty(t, stored.Description)
}

func TestRecordCuttingDecrementsStock(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	lot, err := l.ReceiveMaterial(ctx, inoxInput())
	require.NoError(t, err)

	cut, note, err := l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 100, Width: 50, Quantity: 10, Description: "flasques"})
	require.NoError(t, err)
	require.Equal(t, 10, cut.Quantity)
	require.Equal(t, lot.ClientID, cut.ClientID)
	require.Equal(t, lot.ClientName, cut.ClientName)
	require.Equal(t, lot.Thickness, cut.Thickness)
	require.Equal(t, lot.Material, cut.Material)

	require.Equal(t, NoteCutting, note.Type)
	require.Equal(t, cut.ID, note.CuttingID)
	require.Regexp(t, `^BL-C-\d+$`, note.DeliveryNoteNumber)

	got, ok := l.Lot(lot.ID)
	require.True(t, ok)
	require.Equal(t, 40, got.RemainingQuantity)
	require.Len(t, l.Cuttings(), 1)
	require.Len(t, l.NotesForLot(lot.ID), 2)
	requireConsistent(t, l)
}

func TestRecordCuttingInsufficientStockIsAtomic(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	lot, _ := l.ReceiveMaterial(ctx, inoxInput())
	_, _, err := l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 100, Width: 50, Quantity: 10})
	require.NoError(t, err)

	lotsBefore, cutsBefore, notesBefore := l.Lots(), l.Cuttings(), l.Notes()

	_, _, err = l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 41})
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.Equal(t, lotsBefore, l.Lots())
	require.Equal(t, cutsBefore, l.Cuttings())
	require.Equal(t, notesBefore, l.Notes())
	got, _ := l.Lot(lot.ID)
	require.Equal(t, 40, got.RemainingQuantity)
}

func TestRecordCuttingUnknownLot(t *testing.T) {
	l := newTestLedger(nil)
	_, _, err := l.RecordCutting(context.Background(), CuttingInput{MaterialID: "missing", Length: 1, Width: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Empty(t, l.Cuttings())
	require.Empty(t, l.Notes())
}

func TestRecordCuttingRejectsNonPositiveQuantity(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	lot, _ := l.ReceiveMaterial(ctx, inoxInput())

	for _, q := range []int{0, -3} {
		_, _, err := l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 1, Width: 1, Quantity: q})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
	got, _ := l.Lot(lot.ID)
	require.Equal(t, 50, got.RemainingQuantity)
}

func TestLotDepletesOneWay(t *testing.T) {
	rec := &countingRecorder{}
	l := New(nil, Config{Recorder: rec})
	ctx := context.Background()
	in := inoxInput()
	in.Quantity = 5
	lot, _ := l.ReceiveMaterial(ctx, in)

	_, _, err := l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 5})
	require.NoError(t, err)
	got, _ := l.Lot(lot.ID)
	require.Equal(t, 0, got.RemainingQuantity)
	require.Equal(t, StatusDepleted, got.Status)
	require.Equal(t, 0, rec.received)
	require.Equal(t, 1, rec.depleted)

	_, _, err = l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 1})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 1, rec.ops["cutting:ok"])
	require.Equal(t, 1, rec.ops["cutting:rejected"])
}

func TestDeleteMaterialBlockedByCuttings(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	lot, _ := l.ReceiveMaterial(ctx, inoxInput())
	_, _, err := l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 1})
	require.NoError(t, err)

	err = l.DeleteMaterial(ctx, lot.ID)
	require.ErrorIs(t, err, ErrBlockedByDependents)
	_, ok := l.Lot(lot.ID)
	require.True(t, ok)
	require.Len(t, l.NotesForLot(lot.ID), 2)
}

func TestDeleteMaterialCascadesNotesOnly(t *testing.T) {
	store := &memoryStore{}
	l := newTestLedger(store)
	ctx := context.Background()
	victim, _ := l.ReceiveMaterial(ctx, inoxInput())
	other, _ := l.ReceiveMaterial(ctx, inoxInput())
	_, _, err := l.RecordCutting(ctx, CuttingInput{MaterialID: other.ID, Length: 10, Width: 10, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, l.DeleteMaterial(ctx, victim.ID))
	require.Equal(t, []string{victim.ID}, store.deleted)

	_, ok := l.Lot(victim.ID)
	require.False(t, ok)
	for _, n := range l.Notes() {
		require.NotEqual(t, victim.ID, n.MaterialID)
	}
	require.Len(t, l.Notes(), 2)
	require.Len(t, l.Lots(), 1)

	require.ErrorIs(t, l.DeleteMaterial(ctx, victim.ID), ErrLotNotFound)
}

func TestUpdateMaterial(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	lot, _ := l.ReceiveMaterial(ctx, inoxInput())

	desc := "tôle brossée"
	qty := 60
	got, ok, err := l.UpdateMaterial(ctx, lot.ID, MaterialPatch{Description: &desc, Quantity: &qty})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, desc, got.Description)
	require.Equal(t, 60, got.Quantity)
	require.Equal(t, 60, got.RemainingQuantity)

	_, ok, err = l.UpdateMaterial(ctx, "nope", MaterialPatch{Description: &desc})
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 5})
	require.NoError(t, err)
	qty = 10
	_, _, err = l.UpdateMaterial(ctx, lot.ID, MaterialPatch{Quantity: &qty})
	require.ErrorIs(t, err, ErrQuantityLocked)
	requireConsistent(t, l)
}

func TestStoreFailureLeavesMemoryUntouched(t *testing.T) {
	store := &memoryStore{}
	l := newTestLedger(store)
	ctx := context.Background()
	lot, err := l.ReceiveMaterial(ctx, inoxInput())
	require.NoError(t, err)

	store.fail = errors.New("db down")
	_, err = l.ReceiveMaterial(ctx, inoxInput())
	require.Error(t, err)
	_, _, err = l.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 5})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInsufficientStock)
	require.Error(t, l.DeleteMaterial(ctx, lot.ID))

	require.Len(t, l.Lots(), 1)
	require.Empty(t, l.Cuttings())
	require.Len(t, l.Notes(), 1)
	got, _ := l.Lot(lot.ID)
	require.Equal(t, 50, got.RemainingQuantity)
}

func TestLoadRestoresState(t *testing.T) {
	store := &memoryStore{}
	src := newTestLedger(store)
	ctx := context.Background()
	lot, _ := src.ReceiveMaterial(ctx, inoxInput())
	_, note, err := src.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 7})
	require.NoError(t, err)

	dst := New(store, Config{Clock: func() time.Time { return time.Unix(0, 0) }})
	require.NoError(t, dst.Load(ctx))
	require.Equal(t, src.Lots(), dst.Lots())
	require.Equal(t, src.Cuttings(), dst.Cuttings())
	require.Equal(t, src.Notes(), dst.Notes())
	requireConsistent(t, dst)

	// numbering continues after the highest loaded stamp even with a clock in the past
	_, next, err := dst.RecordCutting(ctx, CuttingInput{MaterialID: lot.ID, Length: 10, Width: 10, Quantity: 1})
	require.NoError(t, err)
	require.Greater(t, stampOf(next.DeliveryNoteNumber), stampOf(note.DeliveryNoteNumber))
}

func TestClientsDistinct(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	_, _ = l.ReceiveMaterial(ctx, inoxInput())
	in := inoxInput()
	in.ClientID, in.ClientName = "2", "B"
	_, _ = l.ReceiveMaterial(ctx, in)
	_, _ = l.ReceiveMaterial(ctx, inoxInput())

	require.Equal(t, []Client{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}, l.Clients())
	require.Len(t, l.LotsByClient("1"), 2)
}

func TestInvariantsHoldOverSequence(t *testing.T) {
	l := newTestLedger(nil)
	ctx := context.Background()
	var ids []string
	for i := 1; i <= 3; i++ {
		in := inoxInput()
		in.Quantity = i * 4
		lot, _ := l.ReceiveMaterial(ctx, in)
		ids = append(ids, lot.ID)
	}
	for step := 0; step < 30; step++ {
		id := ids[step%len(ids)]
		_, _, _ = l.RecordCutting(ctx, CuttingInput{MaterialID: id, Length: 1, Width: 1, Quantity: step%5 + 1})
		requireConsistent(t, l)
	}
}
