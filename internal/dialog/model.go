package dialog

type State string

const (
	StateIdle State = "idle"

	// Réception
	StateRcvMenu      State = "rcv_menu"
	StateRcvClient    State = "rcv_client"
	StateRcvMaterial  State = "rcv_material"
	StateRcvThickness State = "rcv_thickness"
	StateRcvLength    State = "rcv_length"
	StateRcvWidth     State = "rcv_width"
	StateRcvQty       State = "rcv_qty"
	StateRcvNumber    State = "rcv_number" // optional BL number
	StateRcvDesc      State = "rcv_desc"
	StateRcvConfirm   State = "rcv_confirm"
	StateRcvImport    State = "rcv_import" // waiting for an .xlsx upload

	// Découpe
	StateCutPickLot State = "cut_pick_lot"
	StateCutLength  State = "cut_length"
	StateCutWidth   State = "cut_width"
	StateCutQty     State = "cut_qty"
	StateCutDesc    State = "cut_desc"
	StateCutConfirm State = "cut_confirm"

	// Stock
	StateStockList     State = "stock_list"
	StateStockMaterial State = "stock_material"
	StateStockClient   State = "stock_client"
	StateStockSearch   State = "stock_search"
	StateStockItem     State = "stock_item"
	StateStockDelete   State = "stock_delete"

	// Rapport
	StateRepClient State = "rep_client"
	StateRepPeriod State = "rep_period"
	StateRepCustom State = "rep_custom" // free-text period

	// Clients
	StateCliMenu   State = "cli_menu"
	StateCliItem   State = "cli_item"
	StateCliName   State = "cli_name"
	StateCliRename State = "cli_rename"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
