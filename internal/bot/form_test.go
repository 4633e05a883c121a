package bot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/metalcut-bot/internal/dialog"
	"github.com/Spok95/metalcut-bot/internal/domain/ledger"
)

func TestFormStepParse(t *testing.T) {
	v, err := formStep{kind: inputDecimal}.parse("0")
	require.NoError(t, err)
	require.Equal(t, 0.0, v)

	_, err = formStep{kind: inputDecimal, positive: true}.parse("0")
	require.Error(t, err)

	v, err = formStep{kind: inputCount}.parse("7")
	require.NoError(t, err)
	require.Equal(t, 7, v)

	_, err = formStep{kind: inputCount, positive: true}.parse("0")
	require.Error(t, err)

	v, err = formStep{kind: inputText}.parse("  tôle 304 ")
	require.NoError(t, err)
	require.Equal(t, "tôle 304", v)

	_, err = formStep{kind: inputText}.parse("   ")
	require.Error(t, err)
}

func TestFormIndex(t *testing.T) {
	require.Equal(t, 0, receptionForm.index(dialog.StateRcvThickness))
	require.Equal(t, len(receptionForm)-1, receptionForm.index(dialog.StateRcvDesc))
	require.Equal(t, -1, receptionForm.index(dialog.StateCutLength))
	require.Equal(t, 2, cuttingForm.index(dialog.StateCutQty))
}

// roundTrip mimics the JSONB storage of dialog payloads.
func roundTrip(t *testing.T, p dialog.Payload) dialog.Payload {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	out := dialog.Payload{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestReceiveInputFrom(t *testing.T) {
	p := roundTrip(t, dialog.Payload{
		"client_id": "3", "client_name": "Atelier Dupont", "material": "inox",
		"thickness": 2.0, "length": 2000.0, "width": 1000.0, "qty": 12, "desc": "304L",
	})
	require.Equal(t, ledger.ReceiveInput{
		ClientID: "3", ClientName: "Atelier Dupont", Material: ledger.MaterialInox,
		Thickness: 2, Length: 2000, Width: 1000, Quantity: 12, Description: "304L",
	}, receiveInputFrom(p))
}

func TestCuttingInputFrom(t *testing.T) {
	p := roundTrip(t, dialog.Payload{"lot_id": "abc", "length": 500.0, "width": 250.5, "qty": 4})
	require.Equal(t, ledger.CuttingInput{MaterialID: "abc", Length: 500, Width: 250.5, Quantity: 4}, cuttingInputFrom(p))
}
