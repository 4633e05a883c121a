package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestDeliveryNoteWorkbook(t *testing.T) {
	note := ledger.DeliveryNote{
		ID:                 "n1",
		MaterialID:         "lot-1",
		ClientName:         "Atelier Dupont",
		DeliveryNoteNumber: "BL-C-1741600000000",
		Date:               time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Type:               ledger.NoteCutting,
		CuttingID:          "cut-1",
		Items:              []ledger.NoteItem{{Material: ledger.MaterialInox, Thickness: 2, Length: 100, Width: 50, Quantity: 10}},
	}
	data, err := DeliveryNoteWorkbook(note)
	require.NoError(t, err)

	rows := readRows(t, data, "BL")
	require.Equal(t, "Bon de livraison - découpe", rows[0][0])
	require.Equal(t, []string{"Numéro", "BL-C-1741600000000"}, rows[1])
	require.Equal(t, []string{"Date", "10/03/2025"}, rows[2])
	require.Equal(t, []string{"Découpe", "cut-1"}, rows[5])
	require.Equal(t, "inox", rows[8][0])
	require.Equal(t, "2", rows[8][1])
	require.Equal(t, "10", rows[8][4])
	require.Equal(t, "10", rows[9][4])
}

func TestReportWorkbookSheets(t *testing.T) {
	rep := ledger.InventoryReport{
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		ReceivedMaterials: []ledger.DeliveryNote{{
			DeliveryNoteNumber: "BL-1",
			Items:              []ledger.NoteItem{{Material: ledger.MaterialFer, Quantity: 20}},
		}},
		Cuttings:       []ledger.Cutting{{MaterialID: "lot-1", Quantity: 5}},
		RemainingStock: []ledger.StockLine{{ID: "lot-1", Material: ledger.MaterialFer, InitialQuantity: 20, RemainingQuantity: 15}},
		Totals:         ledger.ReportTotals{Received: 20, Cut: 5, Remaining: 15},
	}
	data, err := ReportWorkbook(rep, "Garage Martin")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, []string{"Réceptions", "Découpes", "Bons de livraison", "Stock"}, f.GetSheetList())
	_ = f.Close()

	rec := readRows(t, data, "Réceptions")
	require.Equal(t, "01/03/2025 - 31/03/2025", rec[0][3])
	require.Equal(t, "BL-1", rec[3][0])
	require.Equal(t, "20", rec[5][6])

	stock := readRows(t, data, "Stock")
	require.Equal(t, []string{"lot-1", "fer", "0", "20", "15"}, stock[1])
}

func TestLotsWorkbook(t *testing.T) {
	data, err := LotsWorkbook([]ledger.MaterialLot{{ID: "a", ClientName: "A", Material: ledger.MaterialCuivre, Quantity: 3, RemainingQuantity: 1, Status: ledger.StatusReceived}})
	require.NoError(t, err)
	rows := readRows(t, data, "Stock")
	require.Len(t, rows, 2)
	require.Equal(t, "cuivre", rows[1][3])
	require.Equal(t, "1", rows[1][8])
}

func buildImport(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	all := append([][]any{ReceiptHeader}, rows...)
	for i, r := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}

func TestParseReceipts(t *testing.T) {
	data := buildImport(t,
		[]any{"1", "Atelier Dupont", "BL-9", "Inox", "2,5", "1000", "500", "12", "tôle", "05/03/2025"},
		[]any{"", "", "", "", "", "", "", "", "", ""},
		[]any{"2", "Garage Martin", "", "fer", "abc", "600", "", "4", "", ""},
	)
	got, err := ParseReceipts(data, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, ledger.ReceiveInput{
		ClientID: "1", ClientName: "Atelier Dupont", DeliveryNote: "BL-9", Material: ledger.MaterialInox,
		Thickness: 2.5, Length: 1000, Width: 500, Quantity: 12, Description: "tôle",
		ReceiptDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	}, got[0])
	require.Zero(t, got[1].Thickness)
	require.Zero(t, got[1].Width)
	require.True(t, got[1].ReceiptDate.IsZero())
}

func TestParseReceiptsRejectsUnknownMaterial(t *testing.T) {
	data := buildImport(t, []any{"1", "A", "", "bois", "1", "1", "1", "1", "", ""})
	_, err := ParseReceipts(data, nil)
	require.ErrorIs(t, err, ErrBadRow)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, 2, rowErr.Row)
}

func TestReceiptTemplate(t *testing.T) {
	data, err := ReceiptTemplate()
	require.NoError(t, err)
	rows := readRows(t, data, "Réceptions")
	require.Len(t, rows, 1)
	require.Equal(t, "client_id", rows[0][0])
}
