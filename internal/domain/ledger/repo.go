package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres Store.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const insertLotSQL = `
	INSERT INTO material_lots (id, client_id, client_name, delivery_note_number, material,
		thickness, length, width, quantity, remaining_quantity, description, receipt_date, status, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`

const insertNoteSQL = `
	INSERT INTO delivery_notes (id, material_id, client_id, client_name, delivery_note_number, date, type, cutting_id, items)
	VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),$9)
`

func (r *Repo) SaveReception(ctx context.Context, lot MaterialLot, note DeliveryNote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, insertLotSQL,
		lot.ID, lot.ClientID, lot.ClientName, lot.DeliveryNoteNumber, string(lot.Material),
		lot.Thickness, lot.Length, lot.Width, lot.Quantity, lot.RemainingQuantity,
		lot.Description, lot.ReceiptDate, string(lot.Status), lot.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	if err = insertNote(ctx, tx, note); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) SaveCutting(ctx context.Context, lot MaterialLot, cut Cutting, note DeliveryNote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// decrement relative to the stored value: another writer may have cut since we loaded
	tag, err := tx.Exec(ctx, `
		UPDATE material_lots
		SET remaining_quantity = remaining_quantity - $2,
			status = CASE WHEN remaining_quantity - $2 <= 0 THEN 'depleted' ELSE 'received' END
		WHERE id=$1 AND remaining_quantity >= $2
	`, lot.ID, cut.Quantity)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrInsufficientStock
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO cuttings (id, material_id, length, width, quantity, description,
			thickness, material, client_id, client_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, cut.ID, cut.MaterialID, cut.Length, cut.Width, cut.Quantity, cut.Description,
		cut.Thickness, string(cut.Material), cut.ClientID, cut.ClientName, cut.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert cutting: %w", err)
	}
	if err = insertNote(ctx, tx, note); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateLot writes the descriptive fields. Quantity and remaining stock are
// only rewritten while no cutting exists for the lot in the database.
func (r *Repo) UpdateLot(ctx context.Context, lot MaterialLot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE material_lots SET client_id=$2, client_name=$3, delivery_note_number=$4, material=$5,
			thickness=$6, length=$7, width=$8, description=$9, receipt_date=$10
		WHERE id=$1
	`, lot.ID, lot.ClientID, lot.ClientName, lot.DeliveryNoteNumber, string(lot.Material),
		lot.Thickness, lot.Length, lot.Width, lot.Description, lot.ReceiptDate)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrLotNotFound
	}

	tag, err = tx.Exec(ctx, `
		UPDATE material_lots SET quantity=$2, remaining_quantity=$2, status=$3
		WHERE id=$1 AND quantity <> $2
			AND NOT EXISTS (SELECT 1 FROM cuttings WHERE material_id=$1)
	`, lot.ID, lot.Quantity, string(lot.Status))
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var stored int
		if err = tx.QueryRow(ctx, `SELECT quantity FROM material_lots WHERE id=$1`, lot.ID).Scan(&stored); err != nil {
			return fmt.Errorf("read quantity: %w", err)
		}
		if stored != lot.Quantity {
			return ErrQuantityLocked
		}
	}
	return tx.Commit(ctx)
}

// DeleteLot relies on ON DELETE CASCADE for notes and RESTRICT for cuttings.
func (r *Repo) DeleteLot(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM material_lots WHERE id=$1`, id)
	return err
}

func (r *Repo) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, client_name, delivery_note_number, material, thickness, length, width,
			quantity, remaining_quantity, description, receipt_date, status, created_at
		FROM material_lots
		ORDER BY seq
	`)
	if err != nil {
		return snap, fmt.Errorf("load lots: %w", err)
	}
	for rows.Next() {
		var l MaterialLot
		if err := rows.Scan(&l.ID, &l.ClientID, &l.ClientName, &l.DeliveryNoteNumber, &l.Material,
			&l.Thickness, &l.Length, &l.Width, &l.Quantity, &l.RemainingQuantity,
			&l.Description, &l.ReceiptDate, &l.Status, &l.CreatedAt); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Lots = append(snap.Lots, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, material_id, length, width, quantity, description, thickness, material,
			client_id, client_name, created_at
		FROM cuttings
		ORDER BY seq
	`)
	if err != nil {
		return snap, fmt.Errorf("load cuttings: %w", err)
	}
	for rows.Next() {
		var c Cutting
		if err := rows.Scan(&c.ID, &c.MaterialID, &c.Length, &c.Width, &c.Quantity, &c.Description,
			&c.Thickness, &c.Material, &c.ClientID, &c.ClientName, &c.CreatedAt); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Cuttings = append(snap.Cuttings, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, material_id, client_id, client_name, delivery_note_number, date, type,
			COALESCE(cutting_id,''), items
		FROM delivery_notes
		ORDER BY seq
	`)
	if err != nil {
		return snap, fmt.Errorf("load notes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n DeliveryNote
		var raw []byte
		if err := rows.Scan(&n.ID, &n.MaterialID, &n.ClientID, &n.ClientName, &n.DeliveryNoteNumber,
			&n.Date, &n.Type, &n.CuttingID, &raw); err != nil {
			return snap, err
		}
		if err := json.Unmarshal(raw, &n.Items); err != nil {
			return snap, fmt.Errorf("note %s items: %w", n.ID, err)
		}
		snap.Notes = append(snap.Notes, n)
	}
	return snap, rows.Err()
}

func insertNote(ctx context.Context, tx pgx.Tx, n DeliveryNote) error {
	items, err := json.Marshal(n.Items)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertNoteSQL,
		n.ID, n.MaterialID, n.ClientID, n.ClientName, n.DeliveryNoteNumber,
		n.Date, string(n.Type), n.CuttingID, items,
	); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}
