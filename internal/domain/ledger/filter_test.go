package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	lots := []MaterialLot{
		{ID: "1", ClientID: "c1", ClientName: "Atelier Dupont", DeliveryNoteNumber: "BL-100", Material: MaterialInox, Description: "tôle 304"},
		{ID: "2", ClientID: "c2", ClientName: "Garage Martin", DeliveryNoteNumber: "BL-200", Material: MaterialFer, Description: "plat"},
		{ID: "3", ClientID: "c1", ClientName: "Atelier Dupont", DeliveryNoteNumber: "CL-42", Material: MaterialFer, Description: "Cornière"},
	}

	ids := func(ls []MaterialLot) []string {
		out := []string{}
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"empty matches all", Criteria{}, []string{"1", "2", "3"}},
		{"client name case-insensitive", Criteria{SearchTerm: "dupont"}, []string{"1", "3"}},
		{"note number", Criteria{SearchTerm: "bl-2"}, []string{"2"}},
		{"description", Criteria{SearchTerm: "CORNI"}, []string{"3"}},
		{"material exact", Criteria{MaterialType: MaterialFer}, []string{"2", "3"}},
		{"client exact", Criteria{ClientID: "c1"}, []string{"1", "3"}},
		{"combined", Criteria{SearchTerm: "atelier", MaterialType: MaterialFer, ClientID: "c1"}, []string{"3"}},
		{"no match", Criteria{SearchTerm: "laiton"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(Filter(lots, tt.c)))
		})
	}
}

func TestFilterIsPure(t *testing.T) {
	lots := []MaterialLot{{ID: "1", ClientName: "A"}, {ID: "2", ClientName: "B"}}
	c := Criteria{SearchTerm: "a"}
	first := Filter(lots, c)
	second := Filter(lots, c)
	require.Equal(t, first, second)

	first[0].ClientName = "changed"
	require.Equal(t, "A", lots[0].ClientName)
}
