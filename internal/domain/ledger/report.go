package ledger

import "time"

type StockLine struct {
	ID                string       `json:"id"`
	Material          MaterialKind `json:"material"`
	Thickness         float64      `json:"thickness"`
	InitialQuantity   int          `json:"initial_quantity"`
	RemainingQuantity int          `json:"remaining_quantity"`
}

type ReportTotals struct {
	Received  int `json:"received"`
	Cut       int `json:"cut"`
	Remaining int `json:"remaining"`
}

// InventoryReport summarises one client's activity over a day range.
type InventoryReport struct {
	ClientID          string         `json:"client_id"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	ReceivedMaterials []DeliveryNote `json:"received_materials"`
	Cuttings          []Cutting      `json:"cuttings"`
	DeliveryNotes     []DeliveryNote `json:"delivery_notes"`
	RemainingStock    []StockLine    `json:"remaining_stock"`
	Totals            ReportTotals   `json:"totals"`
}

// DayRange is [From, To) covering whole calendar days.
type DayRange struct {
	From time.Time
	To   time.Time
}

// NewDayRange truncates start and end to days in loc; end is inclusive.
func NewDayRange(start, end time.Time, loc *time.Location) DayRange {
	if loc == nil {
		loc = time.UTC
	}
	return DayRange{From: startOfDay(start, loc), To: startOfDay(end, loc).AddDate(0, 0, 1)}
}

func (r DayRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// GenerateInventoryReport never mutates the ledger. Remaining stock covers
// every current lot of the client regardless of the range.
func (l *Ledger) GenerateInventoryReport(clientID string, startDate, endDate time.Time) InventoryReport {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rng := NewDayRange(startDate, endDate, l.loc)
	rep := InventoryReport{
		ClientID:          clientID,
		StartDate:         rng.From,
		EndDate:           rng.To.AddDate(0, 0, -1),
		ReceivedMaterials: []DeliveryNote{},
		Cuttings:          []Cutting{},
		DeliveryNotes:     []DeliveryNote{},
		RemainingStock:    []StockLine{},
	}

	l.notes.each(func(_ string, n DeliveryNote) bool {
		if n.ClientID != clientID || !rng.Contains(n.Date) {
			return true
		}
		switch n.Type {
		case NoteReception:
			rep.ReceivedMaterials = append(rep.ReceivedMaterials, n.clone())
			for _, it := range n.Items {
				rep.Totals.Received += it.Quantity
			}
		case NoteCutting:
			rep.DeliveryNotes = append(rep.DeliveryNotes, n.clone())
		}
		return true
	})

	l.cuttings.each(func(_ string, c Cutting) bool {
		lot, ok := l.lots.get(c.MaterialID)
		if !ok || lot.ClientID != clientID || !rng.Contains(c.CreatedAt) {
			return true
		}
		rep.Cuttings = append(rep.Cuttings, c)
		rep.Totals.Cut += c.Quantity
		return true
	})

	l.lots.each(func(_ string, lot MaterialLot) bool {
		if lot.ClientID != clientID {
			return true
		}
		rep.RemainingStock = append(rep.RemainingStock, StockLine{
			ID:                lot.ID,
			Material:          lot.Material,
			Thickness:         lot.Thickness,
			InitialQuantity:   lot.Quantity,
			RemainingQuantity: lot.RemainingQuantity,
		})
		rep.Totals.Remaining += lot.RemainingQuantity
		return true
	})
	return rep
}
