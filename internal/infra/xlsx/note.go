package xlsx

import (
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

func noteTitle(t ledger.NoteType) string {
	if t == ledger.NoteCutting {
		return "Bon de livraison - découpe"
	}
	return "Bon de livraison - réception"
}

// DeliveryNoteWorkbook renders one printable delivery note.
func DeliveryNoteWorkbook(n ledger.DeliveryNote) ([]byte, error) {
	f := excelize.NewFile()
	s := newSheet(f, "BL")
	s.write(noteTitle(n.Type))
	s.write("Numéro", n.DeliveryNoteNumber)
	s.write("Date", day(n.Date))
	s.write("Client", n.ClientName)
	s.write("Lot", n.MaterialID)
	if n.CuttingID != "" {
		s.write("Découpe", n.CuttingID)
	}
	s.blank()
	s.write("Matière", "Épaisseur", "Longueur", "Largeur", "Quantité", "Description")
	total := 0
	for _, it := range n.Items {
		s.write(string(it.Material), it.Thickness, it.Length, it.Width, it.Quantity, it.Description)
		total += it.Quantity
	}
	s.write("Total", "", "", "", total)
	return finish(f, s)
}
