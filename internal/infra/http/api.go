package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
	"github.com/Spok95/metalcut-bot/internal/infra/xlsx"
)

const queryDate = "2006-01-02"

// API is the read-only HTTP view over the ledger.
type API struct {
	ledger *ledger.Ledger
	log    *slog.Logger
	now    func() time.Time
}

func NewAPI(l *ledger.Ledger, log *slog.Logger) *API {
	return &API{ledger: l, log: log, now: time.Now}
}

func (a *API) Routes(r chi.Router) {
	r.Get("/lots", a.listLots)
	r.Get("/lots/{id}", a.getLot)
	r.Get("/lots.xlsx", a.lotsXLSX)
	r.Get("/clients", a.listClients)
	r.Get("/clients/{clientID}/report", a.report)
	r.Get("/clients/{clientID}/report.xlsx", a.reportXLSX)
	r.Get("/notes/{id}", a.getNote)
	r.Get("/notes/{id}/xlsx", a.noteXLSX)
}

type lotDetail struct {
	Lot      ledger.MaterialLot    `json:"lot"`
	Cuttings []ledger.Cutting      `json:"cuttings"`
	Notes    []ledger.DeliveryNote `json:"notes"`
}

func criteriaFrom(r *http.Request) ledger.Criteria {
	q := r.URL.Query()
	return ledger.Criteria{
		SearchTerm:   q.Get("q"),
		MaterialType: ledger.MaterialKind(q.Get("material")),
		ClientID:     q.Get("client"),
	}
}

func (a *API) listLots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.ledger.Filter(criteriaFrom(r)))
}

func (a *API) lotsXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := xlsx.LotsWorkbook(a.ledger.Filter(criteriaFrom(r)))
	if err != nil {
		a.fail(w, "lots workbook", err)
		return
	}
	writeXLSX(w, "stock.xlsx", data)
}

func (a *API) getLot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lot, ok := a.ledger.Lot(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "lot not found")
		return
	}
	writeJSON(w, http.StatusOK, lotDetail{
		Lot:      lot,
		Cuttings: a.ledger.CuttingsForLot(id),
		Notes:    a.ledger.NotesForLot(id),
	})
}

func (a *API) listClients(w http.ResponseWriter, _ *http.Request) {
	clients := a.ledger.Clients()
	if clients == nil {
		clients = []ledger.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// period parses from/to (YYYY-MM-DD) in the ledger location; both default to
// the current month.
func (a *API) period(r *http.Request) (time.Time, time.Time, error) {
	loc := a.ledger.Location()
	now := a.now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, -1)

	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		t, err := time.ParseInLocation(queryDate, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", s)
		}
		from = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.ParseInLocation(queryDate, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", s)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to is before from")
	}
	return from, to, nil
}

func (a *API) buildReport(w http.ResponseWriter, r *http.Request) (ledger.InventoryReport, bool) {
	from, to, err := a.period(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return ledger.InventoryReport{}, false
	}
	return a.ledger.GenerateInventoryReport(chi.URLParam(r, "clientID"), from, to), true
}

func (a *API) report(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.buildReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) reportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.buildReport(w, r)
	if !ok {
		return
	}
	data, err := xlsx.ReportWorkbook(rep, a.clientName(rep.ClientID))
	if err != nil {
		a.fail(w, "report workbook", err)
		return
	}
	writeXLSX(w, fmt.Sprintf("rapport_%s_%s.xlsx", rep.ClientID, rep.StartDate.Format("200601")), data)
}

func (a *API) getNote(w http.ResponseWriter, r *http.Request) {
	n, ok := a.ledger.Note(chi.URLParam(r, "id"))
	if !ok {
		writeProblem(w, http.StatusNotFound, "delivery note not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) noteXLSX(w http.ResponseWriter, r *http.Request) {
	n, ok := a.ledger.Note(chi.URLParam(r, "id"))
	if !ok {
		writeProblem(w, http.StatusNotFound, "delivery note not found")
		return
	}
	data, err := xlsx.DeliveryNoteWorkbook(n)
	if err != nil {
		a.fail(w, "note workbook", err)
		return
	}
	writeXLSX(w, n.DeliveryNoteNumber+".xlsx", data)
}

func (a *API) clientName(id string) string {
	for _, c := range a.ledger.Clients() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func (a *API) fail(w http.ResponseWriter, what string, err error) {
	if a.log != nil {
		a.log.Error(what+" failed", "err", err)
	}
	writeProblem(w, http.StatusInternalServerError, "")
}
