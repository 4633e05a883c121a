package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
)

const dayLayout = "02.01.2006"

var materialLabels = map[ledger.MaterialKind]string{
	ledger.MaterialInox:      "Inox",
	ledger.MaterialFer:       "Fer",
	ledger.MaterialAluminium: "Aluminium",
	ledger.MaterialCuivre:    "Cuivre",
	ledger.MaterialLaiton:    "Laiton",
}

func materialLabel(k ledger.MaterialKind) string {
	if s, ok := materialLabels[k]; ok {
		return s
	}
	return string(k)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseDecimal accepts "2", "2.5" and "2,5". Negative values are refused.
func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("nombre invalide %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("nombre négatif %q", s)
	}
	return f, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("entier invalide %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("nombre négatif %q", s)
	}
	return n, nil
}

// monthRange returns the first and last day of the month offset months away
// from now, in now's location.
func monthRange(now time.Time, offset int) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, offset, 0)
	return first, first.AddDate(0, 1, -1)
}

// parsePeriod reads "JJ.MM.AAAA-JJ.MM.AAAA" or a single day.
func parsePeriod(s string, loc *time.Location) (time.Time, time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) > 2 {
		return time.Time{}, time.Time{}, errors.New("format attendu JJ.MM.AAAA-JJ.MM.AAAA")
	}
	from, err := time.ParseInLocation(dayLayout, strings.TrimSpace(parts[0]), loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("format attendu JJ.MM.AAAA-JJ.MM.AAAA")
	}
	to := from
	if len(parts) == 2 {
		to, err = time.ParseInLocation(dayLayout, strings.TrimSpace(parts[1]), loc)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("format attendu JJ.MM.AAAA-JJ.MM.AAAA")
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("la date de fin précède la date de début")
	}
	return from, to, nil
}

// userError maps ledger errors to operator messages.
func userError(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientStock):
		return "Stock insuffisant pour cette découpe."
	case errors.Is(err, ledger.ErrBlockedByDependents):
		return "Suppression impossible : ce lot a déjà des découpes."
	case errors.Is(err, ledger.ErrLotNotFound):
		return "Lot introuvable."
	case errors.Is(err, ledger.ErrInvalidQuantity):
		return "La quantité doit être supérieure à zéro."
	case errors.Is(err, ledger.ErrQuantityLocked):
		return "La quantité ne peut plus être modifiée : le lot a des découpes."
	case errors.Is(err, ledger.ErrInvalidCutting):
		return "Dimensions de découpe hors des dimensions du lot."
	case errors.Is(err, ledger.ErrInvalidMaterial):
		return "Matière inconnue."
	default:
		return "Erreur interne, réessayez plus tard."
	}
}

// importSummary reports an import run. Lots saved before a failure are kept,
// so the operator must not re-import those rows.
func importSummary(saved, pieces, total int, failed *ledger.ReceiveInput, err error) string {
	if err == nil {
		return fmt.Sprintf("Import terminé : %d lot(s), %d pièce(s).", saved, pieces)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Import interrompu : %s\n", userError(err))
	if failed != nil {
		fmt.Fprintf(&sb, "Ligne en échec : %s, %s", failed.ClientName, materialLabel(failed.Material))
		if failed.DeliveryNote != "" {
			fmt.Fprintf(&sb, ", BL %s", failed.DeliveryNote)
		}
		sb.WriteString("\n")
	}
	if saved == 0 {
		sb.WriteString("Aucun lot n'a été enregistré.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%d lot(s) sur %d déjà enregistré(s) (%d pièce(s)) et conservé(s). "+
		"Retirez-les du fichier avant de le renvoyer.", saved, total, pieces)
	return sb.String()
}

func lotButton(l ledger.MaterialLot) string {
	return fmt.Sprintf("%s · %s %smm · %d/%d",
		l.ClientName, materialLabel(l.Material), num(l.Thickness), l.RemainingQuantity, l.Quantity)
}

func lotCard(l ledger.MaterialLot, cuts []ledger.Cutting) string {
	var sb strings.Builder
	status := "en stock"
	if l.Status == ledger.StatusDepleted {
		status = "épuisé"
	}
	fmt.Fprintf(&sb, "Lot %s (%s)\n", l.DeliveryNoteNumber, status)
	fmt.Fprintf(&sb, "Client : %s\n", l.ClientName)
	fmt.Fprintf(&sb, "Matière : %s, ép. %s mm\n", materialLabel(l.Material), num(l.Thickness))
	fmt.Fprintf(&sb, "Format : %s × %s mm\n", num(l.Length), num(l.Width))
	fmt.Fprintf(&sb, "Quantité : %d reçue(s), %d restante(s)\n", l.Quantity, l.RemainingQuantity)
	fmt.Fprintf(&sb, "Reçu le %s\n", l.ReceiptDate.Format(dayLayout))
	if l.Description != "" {
		fmt.Fprintf(&sb, "Description : %s\n", l.Description)
	}
	if len(cuts) == 0 {
		sb.WriteString("\nAucune découpe.")
		return sb.String()
	}
	sb.WriteString("\nDécoupes :\n")
	for _, c := range cuts {
		fmt.Fprintf(&sb, "— %s : %d × %s×%s mm", c.CreatedAt.Format(dayLayout), c.Quantity, num(c.Length), num(c.Width))
		if c.Description != "" {
			fmt.Fprintf(&sb, " (%s)", c.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func reportSummary(rep ledger.InventoryReport, clientName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rapport %s\nDu %s au %s\n\n", clientName,
		rep.StartDate.Format(dayLayout), rep.EndDate.Format(dayLayout))
	fmt.Fprintf(&sb, "Réceptions : %d bon(s), %d pièce(s)\n", len(rep.ReceivedMaterials), rep.Totals.Received)
	fmt.Fprintf(&sb, "Découpes : %d, %d pièce(s)\n", len(rep.Cuttings), rep.Totals.Cut)
	fmt.Fprintf(&sb, "Bons de livraison : %d\n", len(rep.DeliveryNotes))
	fmt.Fprintf(&sb, "Stock restant : %d pièce(s) sur %d lot(s)", rep.Totals.Remaining, len(rep.RemainingStock))
	return sb.String()
}

func criteriaText(c ledger.Criteria, clientName string) string {
	var parts []string
	if c.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("« %s »", c.SearchTerm))
	}
	if c.MaterialType != "" {
		parts = append(parts, materialLabel(c.MaterialType))
	}
	if c.ClientID != "" {
		parts = append(parts, clientName)
	}
	if len(parts) == 0 {
		return "tous les lots"
	}
	return strings.Join(parts, ", ")
}
