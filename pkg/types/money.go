package types

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Money is a currency amount encoded as a bare JSON number. Amounts are whole units
// (VND); decimal keeps arithmetic exact when the backend sends float-looking values.
type Money struct {
	decimal.Decimal
}

func NewMoney(amount int64) Money {
	return Money{Decimal: decimal.NewFromInt(amount)}
}

func (m Money) Plus(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

func (m Money) Minus(other Money) Money {
	return Money{Decimal: m.Decimal.Sub(other.Decimal)}
}

func (m Money) Times(quantity int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}
