package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCutting(t *testing.T) {
	lot := MaterialLot{ID: "l1", Length: 1000, Width: 500, RemainingQuantity: 10}

	require.NoError(t, ValidateCutting(lot, CuttingInput{MaterialID: "l1", Length: 1000, Width: 500, Quantity: 10}))

	cases := map[string]CuttingInput{
		"zero length":   {MaterialID: "l1", Length: 0, Width: 10, Quantity: 1},
		"too long":      {MaterialID: "l1", Length: 1001, Width: 10, Quantity: 1},
		"too wide":      {MaterialID: "l1", Length: 10, Width: 501, Quantity: 1},
		"negative qty":  {MaterialID: "l1", Length: 10, Width: 10, Quantity: -1},
		"other lot":     {MaterialID: "l2", Length: 10, Width: 10, Quantity: 1},
		"no lot at all": {Length: 10, Width: 10, Quantity: 1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, ValidateCutting(lot, in), ErrInvalidCutting)
		})
	}

	require.ErrorIs(t, ValidateCutting(lot, CuttingInput{MaterialID: "l1", Length: 10, Width: 10, Quantity: 11}), ErrInsufficientStock)
}

func TestValidateCuttingMessages(t *testing.T) {
	lot := MaterialLot{ID: "l1", Length: 1000, Width: 500, RemainingQuantity: 10}

	err := ValidateCutting(lot, CuttingInput{Length: 10, Width: 10, Quantity: 1})
	require.EqualError(t, err, "ledger: invalid cutting: MaterialID is required")

	err = ValidateCutting(lot, CuttingInput{MaterialID: "l1", Length: 0, Width: 10, Quantity: 1})
	require.EqualError(t, err, "ledger: invalid cutting: Length must be gt 0")
}
