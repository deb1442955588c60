package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	line := NewMoney(50000).Times(3)
	assert.True(t, line.Equal(NewMoney(150000)))

	total := line.Minus(NewMoney(10000)).Plus(NewMoney(15000))
	assert.Equal(t, int64(155000), total.IntPart())
}

func TestMoneyEncodesAsNumber(t *testing.T) {
	raw, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: NewMoney(15000)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":15000}`, string(raw))
}

func TestMoneyDecodesNumbersStringsAndNull(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12000.0,"b":"500","c":null}`), &payload))
	assert.Equal(t, int64(12000), payload.A.IntPart())
	assert.Equal(t, int64(500), payload.B.IntPart())
	assert.True(t, payload.C.IsZero())
}
