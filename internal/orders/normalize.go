package orders

import (
	"strings"
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	"github.com/angelmondragon/lttsale-console/pkg/types"
)

// rawOrder is the commerce API's order payload before defaults are applied.
type rawOrder struct {
	ID             string       `json:"id"`
	OrderNumber    int64        `json:"orderNumber"`
	CustomerID     string       `json:"customerId"`
	Customer       *rawCustomer `json:"customer"`
	Status         string       `json:"status"`
	PaymentStatus  string       `json:"paymentStatus"`
	Items          []rawItem    `json:"items"`
	ItemCount      int          `json:"itemCount"`
	Subtotal       types.Money  `json:"subtotal"`
	Discount       types.Money  `json:"discount"`
	DiscountReason string       `json:"discountReason"`
	ShippingFee    types.Money  `json:"shippingFee"`
	TotalPrice     types.Money  `json:"totalPrice"`
	Note           string       `json:"note"`
	DeliveryImage  string       `json:"deliveryImage"`
	PaidAt         string       `json:"paidAt"`
	DeliveredAt    string       `json:"deliveredAt"`
	CancelledAt    string       `json:"cancelledAt"`
	CancelReason   string       `json:"cancelReason"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
}

type rawCustomer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	BuildingID  string `json:"buildingId"`
	PhoneNumber string `json:"phoneNumber"`
	Image       string `json:"image"`
}

type rawItem struct {
	ID              string      `json:"id"`
	OrderID         string      `json:"orderId"`
	ProductID       string      `json:"productId"`
	ProductName     string      `json:"productName"`
	ProductImage    string      `json:"productImage"`
	ProductCategory string      `json:"productCategory"`
	UnitPrice       types.Money `json:"unitPrice"`
	Quantity        int         `json:"quantity"`
	LineTotal       types.Money `json:"lineTotal"`
	Note            string      `json:"note"`
	CreatedAt       string      `json:"createdAt"`
}

type rawHistory struct {
	ID         string `json:"id"`
	OrderID    string `json:"orderId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	ChangedBy  string `json:"changedBy"`
	Note       string `json:"note"`
	CreatedAt  string `json:"createdAt"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeOrder is the one place backend defaults are applied: a missing status is
// pending, missing payment is unpaid, a missing item count falls back to the number of
// items (1 when items are absent), a missing subtotal falls back to the total and
// missing discount or shipping is zero.
func normalizeOrder(raw rawOrder) Order {
	status := enums.OrderStatus(strings.TrimSpace(raw.Status))
	if status == "" {
		status = enums.OrderStatusPending
	}
	payment := enums.PaymentStatus(strings.TrimSpace(raw.PaymentStatus))
	if payment == "" {
		payment = enums.PaymentStatusUnpaid
	}

	items := make([]OrderItem, 0, len(raw.Items))
	for _, item := range raw.Items {
		items = append(items, OrderItem{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductImage:    item.ProductImage,
			ProductCategory: item.ProductCategory,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			LineTotal:       item.LineTotal,
			Note:            item.Note,
			CreatedAt:       timeOrZero(item.CreatedAt),
		})
	}

	itemCount := raw.ItemCount
	if itemCount == 0 {
		if raw.Items == nil {
			itemCount = 1
		} else {
			itemCount = len(raw.Items)
		}
	}

	subtotal := raw.Subtotal
	if subtotal.IsZero() {
		subtotal = raw.TotalPrice
	}

	order := Order{
		ID:             raw.ID,
		OrderNumber:    raw.OrderNumber,
		CustomerID:     raw.CustomerID,
		Status:         status,
		PaymentStatus:  payment,
		NextStatuses:   AllowedTransitions(status),
		Items:          items,
		ItemCount:      itemCount,
		Subtotal:       orZero(subtotal),
		Discount:       orZero(raw.Discount),
		DiscountReason: raw.DiscountReason,
		ShippingFee:    orZero(raw.ShippingFee),
		TotalPrice:     orZero(raw.TotalPrice),
		Note:           raw.Note,
		DeliveryImage:  raw.DeliveryImage,
		PaidAt:         parseTime(raw.PaidAt),
		DeliveredAt:    parseTime(raw.DeliveredAt),
		CancelledAt:    parseTime(raw.CancelledAt),
		CancelReason:   raw.CancelReason,
		CreatedAt:      timeOrZero(raw.CreatedAt),
		UpdatedAt:      timeOrZero(raw.UpdatedAt),
	}
	if raw.Customer != nil {
		order.Customer = &CustomerSnapshot{
			ID:          raw.Customer.ID,
			Name:        raw.Customer.Name,
			Address:     raw.Customer.Address,
			Building:    raw.Customer.BuildingID,
			PhoneNumber: raw.Customer.PhoneNumber,
			Image:       raw.Customer.Image,
		}
	}
	return order
}

func normalizeOrders(raws []rawOrder) []Order {
	out := make([]Order, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalizeOrder(raw))
	}
	return out
}

func normalizeHistory(raws []rawHistory) []StatusHistory {
	out := make([]StatusHistory, 0, len(raws))
	for _, raw := range raws {
		out = append(out, StatusHistory{
			ID:         raw.ID,
			OrderID:    raw.OrderID,
			FromStatus: raw.FromStatus,
			ToStatus:   raw.ToStatus,
			ChangedBy:  raw.ChangedBy,
			Note:       raw.Note,
			CreatedAt:  timeOrZero(raw.CreatedAt),
		})
	}
	return out
}

// orZero replaces the zero-value decimal with an explicit zero so it encodes as 0.
func orZero(m types.Money) types.Money {
	if m.IsZero() {
		return types.NewMoney(0)
	}
	return m
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}

func timeOrZero(value string) time.Time {
	if parsed := parseTime(value); parsed != nil {
		return *parsed
	}
	return time.Time{}
}
