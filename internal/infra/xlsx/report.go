package xlsx

import (
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

// ReportWorkbook renders an inventory report on four sheets.
func ReportWorkbook(rep ledger.InventoryReport, clientName string) ([]byte, error) {
	f := excelize.NewFile()

	rec := newSheet(f, "Réceptions")
	rec.write("Client", clientName, "Période", day(rep.StartDate)+" - "+day(rep.EndDate))
	rec.blank()
	rec.write("BL", "Date", "Matière", "Épaisseur", "Longueur", "Largeur", "Quantité", "Description")
	for _, n := range rep.ReceivedMaterials {
		for _, it := range n.Items {
			rec.write(n.DeliveryNoteNumber, day(n.Date), string(it.Material), it.Thickness, it.Length, it.Width, it.Quantity, it.Description)
		}
	}
	rec.blank()
	rec.write("Total reçu", "", "", "", "", "", rep.Totals.Received)

	cuts := newSheet(f, "Découpes")
	cuts.write("Date", "Lot", "Matière", "Épaisseur", "Longueur", "Largeur", "Quantité", "Description")
	for _, c := range rep.Cuttings {
		cuts.write(day(c.CreatedAt), c.MaterialID, string(c.Material), c.Thickness, c.Length, c.Width, c.Quantity, c.Description)
	}
	cuts.blank()
	cuts.write("Total découpé", "", "", "", "", "", rep.Totals.Cut)

	notes := newSheet(f, "Bons de livraison")
	notes.write("BL", "Date", "Découpe", "Matière", "Épaisseur", "Longueur", "Largeur", "Quantité")
	for _, n := range rep.DeliveryNotes {
		for _, it := range n.Items {
			notes.write(n.DeliveryNoteNumber, day(n.Date), n.CuttingID, string(it.Material), it.Thickness, it.Length, it.Width, it.Quantity)
		}
	}

	stock := newSheet(f, "Stock")
	stock.write("Lot", "Matière", "Épaisseur", "Quantité initiale", "Quantité restante")
	for _, s := range rep.RemainingStock {
		stock.write(s.ID, string(s.Material), s.Thickness, s.InitialQuantity, s.RemainingQuantity)
	}
	stock.blank()
	stock.write("Total restant", "", "", "", rep.Totals.Remaining)

	return finish(f, rec, cuts, notes, stock)
}
