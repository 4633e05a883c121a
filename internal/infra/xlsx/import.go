package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

// ReceiptHeader is the column order expected by ParseReceipts.
var ReceiptHeader = []any{"client_id", "client", "bl", "matiere", "epaisseur", "longueur", "largeur", "quantite", "description", "date"}

var ErrBadRow = errors.New("xlsx: invalid row")

// RowError points at the 1-based spreadsheet row that failed.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string { return fmt.Sprintf("ligne %d: %s", e.Row, e.Reason) }
func (e *RowError) Unwrap() error { return ErrBadRow }

// ParseReceipts reads a reception import from the active sheet. Numbers that
// do not parse become 0; rows missing client or material are rejected.
func ParseReceipts(data []byte, loc *time.Location) ([]ledger.ReceiveInput, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, fmt.Errorf("xlsx: read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	if len(rows[0]) < 8 {
		return nil, &RowError{Row: 1, Reason: "en-tête incomplet (8 colonnes minimum)"}
	}
	if loc == nil {
		loc = time.UTC
	}

	var out []ledger.ReceiveInput
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		col := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}
		if strings.Join(row, "") == "" {
			continue
		}

		in := ledger.ReceiveInput{
			ClientID:     col(0),
			ClientName:   col(1),
			DeliveryNote: col(2),
			Material:     ledger.MaterialKind(strings.ToLower(col(3))),
			Thickness:    parseFloat(col(4)),
			Length:       parseFloat(col(5)),
			Width:        parseFloat(col(6)),
			Quantity:     int(parseFloat(col(7))),
			Description:  col(8),
			ReceiptDate:  parseDate(col(9), loc),
		}
		if in.ClientName == "" && in.ClientID == "" {
			return nil, &RowError{Row: i + 1, Reason: "client manquant"}
		}
		if !in.Material.Valid() {
			return nil, &RowError{Row: i + 1, Reason: fmt.Sprintf("matière inconnue %q", col(3))}
		}
		out = append(out, in)
	}
	return out, nil
}

// ReceiptTemplate is an empty import file with the expected header.
func ReceiptTemplate() ([]byte, error) {
	f := excelize.NewFile()
	s := newSheet(f, "Réceptions")
	s.write(ReceiptHeader...)
	return finish(f, s)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDate(s string, loc *time.Location) time.Time {
	for _, layout := range []string{dateLayout, "2006-01-02", "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
