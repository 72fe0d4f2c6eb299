package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	total := MustMoney("8.99").Times(2).Plus(MustMoney("5.99"))
	assert.Equal(t, "23.97", total.String())
	assert.True(t, total.Equals(MustMoney("23.970")))
}

func TestMoney_MinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"23.97", 2397},
		{"0.00", 0},
		{"10", 1000},
		{"0.005", 1},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, MustMoney(tt.amount).MinorUnits())
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{MustMoney("20")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"20.00"}`, string(out))

	var in struct {
		Price Money `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 12.5}`), &in))
	assert.Equal(t, "12.50", in.Price.String())

	require.NoError(t, json.Unmarshal([]byte(`{"price": "7.25"}`), &in))
	assert.Equal(t, "7.25", in.Price.String())
}

func TestMoney_ScanAndValue(t *testing.T) {
	value, err := MustMoney("14.9").Value()
	require.NoError(t, err)
	assert.Equal(t, "14.90", value)

	var m Money
	require.NoError(t, m.Scan(8.99))
	assert.Equal(t, "8.99", m.String())

	require.NoError(t, m.Scan(int64(20)))
	assert.Equal(t, "20.00", m.String())

	require.NoError(t, m.Scan([]byte("5.99")))
	assert.Equal(t, "5.99", m.String())
}

func TestParseMoney_Invalid(t *testing.T) {
	_, err := ParseMoney("twelve")
	assert.Error(t, err)
}
