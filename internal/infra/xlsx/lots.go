package xlsx

import (
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

// LotsWorkbook exports a lot list, usually a Filter result.
func LotsWorkbook(lots []ledger.MaterialLot) ([]byte, error) {
	f := excelize.NewFile()
	s := newSheet(f, "Stock")
	s.write("Lot", "Client", "BL", "Matière", "Épaisseur", "Longueur", "Largeur",
		"Quantité", "Restant", "Statut", "Réception", "Description")
	for _, l := range lots {
		s.write(l.ID, l.ClientName, l.DeliveryNoteNumber, string(l.Material), l.Thickness, l.Length, l.Width,
			l.Quantity, l.RemainingQuantity, string(l.Status), day(l.ReceiptDate), l.Description)
	}
	return finish(f, s)
}
