package ledger

import (
	"errors"
	"strings"
	"time"
)

type MaterialKind string

const (
	MaterialInox      MaterialKind = "inox"
	MaterialFer       MaterialKind = "fer"
	MaterialAluminium MaterialKind = "aluminium"
	MaterialCuivre    MaterialKind = "cuivre"
	MaterialLaiton    MaterialKind = "laiton"
)

// MaterialKinds lists the kinds in display order.
var MaterialKinds = []MaterialKind{MaterialInox, MaterialFer, MaterialAluminium, MaterialCuivre, MaterialLaiton}

func (k MaterialKind) Valid() bool {
	for _, v := range MaterialKinds {
		if v == k {
			return true
		}
	}
	return false
}

func normalizeKind(k MaterialKind) MaterialKind {
	return MaterialKind(strings.ToLower(strings.TrimSpace(string(k))))
}

type LotStatus string

const (
	StatusReceived LotStatus = "received"
	StatusDepleted LotStatus = "depleted"
)

type NoteType string

const (
	NoteReception NoteType = "reception"
	NoteCutting   NoteType = "cutting"
)

// MaterialLot is a received batch of client-owned raw material.
type MaterialLot struct {
	ID                 string       `json:"id"`
	ClientID           string       `json:"client_id"`
	ClientName         string       `json:"client_name"`
	DeliveryNoteNumber string       `json:"delivery_note_number"`
	Material           MaterialKind `json:"material"`
	Thickness          float64      `json:"thickness"`
	Length             float64      `json:"length"`
	Width              float64      `json:"width"`
	Quantity           int          `json:"quantity"`
	RemainingQuantity  int          `json:"remaining_quantity"`
	Description        string       `json:"description"`
	ReceiptDate        time.Time    `json:"receipt_date"`
	Status             LotStatus    `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
}

func (l *MaterialLot) refreshStatus() {
	if l.RemainingQuantity <= 0 {
		l.Status = StatusDepleted
		return
	}
	l.Status = StatusReceived
}

// Cutting is an allocation of pieces taken from a lot. Thickness, material and
// client fields are copied from the lot when the cut is recorded.
type Cutting struct {
	ID          string       `json:"id"`
	MaterialID  string       `json:"material_id"`
	Length      float64      `json:"length"`
	Width       float64      `json:"width"`
	Quantity    int          `json:"quantity"`
	Description string       `json:"description"`
	Thickness   float64      `json:"thickness"`
	Material    MaterialKind `json:"material"`
	ClientID    string       `json:"client_id"`
	ClientName  string       `json:"client_name"`
	CreatedAt   time.Time    `json:"created_at"`
}

type NoteItem struct {
	Material    MaterialKind `json:"material"`
	Thickness   float64      `json:"thickness"`
	Length      float64      `json:"length"`
	Width       float64      `json:"width"`
	Quantity    int          `json:"quantity"`
	Description string       `json:"description,omitempty"`
}

// DeliveryNote documents a reception or a cutting event.
type DeliveryNote struct {
	ID                 string     `json:"id"`
	MaterialID         string     `json:"material_id"`
	ClientID           string     `json:"client_id"`
	ClientName         string     `json:"client_name"`
	DeliveryNoteNumber string     `json:"delivery_note_number"`
	Date               time.Time  `json:"date"`
	Type               NoteType   `json:"type"`
	CuttingID          string     `json:"cutting_id,omitempty"`
	Items              []NoteItem `json:"items"`
}

func (n DeliveryNote) clone() DeliveryNote {
	items := make([]NoteItem, len(n.Items))
	copy(items, n.Items)
	n.Items = items
	return n
}

// ReceiveInput carries the reception form. Missing numbers stay 0.
type ReceiveInput struct {
	ClientName   string
	ClientID     string
	DeliveryNote string
	Material     MaterialKind
	Thickness    float64
	Length       float64
	Width        float64
	Quantity     int
	Description  string
	ReceiptDate  time.Time
}

type CuttingInput struct {
	MaterialID  string  `validate:"required"`
	Length      float64 `validate:"gt=0"`
	Width       float64 `validate:"gt=0"`
	Quantity    int     `validate:"gt=0"`
	Description string
}

// MaterialPatch lists editable lot fields; nil means unchanged.
// RemainingQuantity is deliberately absent: it only moves through RecordCutting.
type MaterialPatch struct {
	ClientID           *string
	ClientName         *string
	DeliveryNoteNumber *string
	Material           *MaterialKind
	Thickness          *float64
	Length             *float64
	Width              *float64
	Quantity           *int
	Description        *string
	ReceiptDate        *time.Time
}

// Client is a distinct client seen in the ledger.
type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	// ErrInsufficientStock is returned when a cutting exceeds the remaining
	// quantity or the lot does not exist.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrBlockedByDependents is returned when deleting a lot that has cuttings.
	ErrBlockedByDependents = errors.New("ledger: lot has cuttings")
	ErrLotNotFound         = errors.New("ledger: lot not found")
	ErrInvalidMaterial     = errors.New("ledger: unknown material")
	ErrInvalidQuantity     = errors.New("ledger: quantity must be > 0")
	// ErrQuantityLocked is returned when patching the quantity of a lot that
	// already has cuttings.
	ErrQuantityLocked = errors.New("ledger: quantity cannot change once cut")
	// ErrInvalidCutting wraps advisory validation failures.
	ErrInvalidCutting = errors.New("ledger: invalid cutting")
)
