package dialog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadGetters(t *testing.T) {
	p := Payload{"name": "Dupont", "qty": 3, "id": int64(42)}

	s, ok := GetString(p, "name")
	require.True(t, ok)
	require.Equal(t, "Dupont", s)

	_, ok = GetString(p, "qty")
	require.False(t, ok)

	n, ok := GetInt64(p, "id")
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	_, ok = GetFloat(p, "missing")
	require.False(t, ok)
}

func TestPayloadAfterJSON(t *testing.T) {
	raw, err := json.Marshal(Payload{"thickness": 1.5, "qty": 12})
	require.NoError(t, err)
	var p Payload
	require.NoError(t, json.Unmarshal(raw, &p))

	f, ok := GetFloat(p, "thickness")
	require.True(t, ok)
	require.Equal(t, 1.5, f)

	n, ok := GetInt64(p, "qty")
	require.True(t, ok)
	require.Equal(t, int64(12), n)
}

func TestPayloadClone(t *testing.T) {
	p := Payload{"a": "1"}
	c := p.Clone()
	c["b"] = "2"
	require.Len(t, p, 1)
	require.Len(t, c, 2)
}
