package orders

import "github.com/angelmondragon/lttsale-console/pkg/types"

// LineAmount is the part of a line item that totals depend on.
type LineAmount struct {
	UnitPrice types.Money `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
}

// Totals is the computed money breakdown of an order.
type Totals struct {
	Subtotal    types.Money `json:"subtotal"`
	Discount    types.Money `json:"discount"`
	ShippingFee types.Money `json:"shippingFee"`
	TotalPrice  types.Money `json:"totalPrice"`
}

// ComputeTotals sums unitPrice x quantity per line with no rounding, then applies
// discount and shipping. A nil discount or shipping fee counts as zero.
func ComputeTotals(lines []LineAmount, discount, shippingFee *types.Money) Totals {
	subtotal := types.NewMoney(0)
	for _, line := range lines {
		subtotal = subtotal.Plus(line.UnitPrice.Times(line.Quantity))
	}
	totals := Totals{
		Subtotal:    subtotal,
		Discount:    types.NewMoney(0),
		ShippingFee: types.NewMoney(0),
	}
	if discount != nil {
		totals.Discount = *discount
	}
	if shippingFee != nil {
		totals.ShippingFee = *shippingFee
	}
	totals.TotalPrice = subtotal.Minus(totals.Discount).Plus(totals.ShippingFee)
	return totals
}
