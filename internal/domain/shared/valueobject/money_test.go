package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyFromFloat(19.99, USD)
		b := NewMoneyFromFloat(0.01, USD)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "20.00", sum.StringFixed(2))
	})

	t.Run("add currency mismatch", func(t *testing.T) {
		a := NewMoneyFromFloat(10, USD)
		b := NewMoneyFromFloat(10, EUR)

		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("multiply by quantity keeps precision", func(t *testing.T) {
		price := NewMoneyFromFloat(19.99, USD)
		total := price.MultiplyByInt(3)
		assert.Equal(t, "59.97", total.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		a := NewMoneyFromFloat(100, USD)
		b := NewMoneyFromFloat(33.33, USD)

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "66.67", diff.StringFixed(2))
	})
}

func TestMoneyString(t *testing.T) {
	m, err := NewMoneyFromString("1234.5", USD)
	require.NoError(t, err)
	assert.Equal(t, "1234.50 USD", m.String())

	_, err = NewMoneyFromString("not-a-number", USD)
	assert.Error(t, err)
}

func TestMoneyDefaultCurrency(t *testing.T) {
	m := NewMoney(decimal.NewFromInt(5), "")
	assert.Equal(t, DefaultCurrency, m.Currency())
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyFromFloat(42.5, USD)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.5","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("19.99"))
	assert.Equal(t, "19.99", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan([]byte("0.10")))
	assert.Equal(t, "0.10", m.StringFixed(2))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(struct{}{}))
}
