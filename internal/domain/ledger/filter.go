package ledger

import "strings"

// Criteria selects lots. Empty fields match everything.
type Criteria struct {
	SearchTerm   string
	MaterialType MaterialKind
	ClientID     string
}

// Filter returns the lots matching c, in input order. The search term is a
// case-insensitive substring of client name, delivery note number or description.
func Filter(lots []MaterialLot, c Criteria) []MaterialLot {
	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))
	out := make([]MaterialLot, 0, len(lots))
	for _, lot := range lots {
		if c.MaterialType != "" && lot.Material != c.MaterialType {
			continue
		}
		if c.ClientID != "" && lot.ClientID != c.ClientID {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(lot.ClientName), term) &&
			!strings.Contains(strings.ToLower(lot.DeliveryNoteNumber), term) &&
			!strings.Contains(strings.ToLower(lot.Description), term) {
			continue
		}
		out = append(out, lot)
	}
	return out
}

// Filter applies Criteria to the current lots.
func (l *Ledger) Filter(c Criteria) []MaterialLot {
	return Filter(l.Lots(), c)
}
