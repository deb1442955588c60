package orders

import (
	"time"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	"github.com/angelmondragon/lttsale-console/pkg/types"
)

// Order is the normalized order record the console works with. It is always replaced
// wholesale by the backend's latest copy.
type Order struct {
	ID             string              `json:"id"`
	OrderNumber    int64               `json:"orderNumber"`
	CustomerID     string              `json:"customerId"`
	Customer       *CustomerSnapshot   `json:"customer,omitempty"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"paymentStatus"`
	NextStatuses   []enums.OrderStatus `json:"nextStatuses"`
	Items          []OrderItem         `json:"items"`
	ItemCount      int                 `json:"itemCount"`
	Subtotal       types.Money         `json:"subtotal"`
	Discount       types.Money         `json:"discount"`
	DiscountReason string              `json:"discountReason,omitempty"`
	ShippingFee    types.Money         `json:"shippingFee"`
	TotalPrice     types.Money         `json:"totalPrice"`
	Note           string              `json:"note,omitempty"`
	DeliveryImage  string              `json:"deliveryImage,omitempty"`
	PaidAt         *time.Time          `json:"paidAt,omitempty"`
	DeliveredAt    *time.Time          `json:"deliveredAt,omitempty"`
	CancelledAt    *time.Time          `json:"cancelledAt,omitempty"`
	CancelReason   string              `json:"cancelReason,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// CustomerSnapshot is the customer as denormalized onto the order for display.
type CustomerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Building    string `json:"building"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Image       string `json:"image,omitempty"`
}

type OrderItem struct {
	ID              string      `json:"id"`
	OrderID         string      `json:"orderId"`
	ProductID       string      `json:"productId"`
	ProductName     string      `json:"productName"`
	ProductImage    string      `json:"productImage,omitempty"`
	ProductCategory string      `json:"productCategory,omitempty"`
	UnitPrice       types.Money `json:"unitPrice"`
	Quantity        int         `json:"quantity"`
	LineTotal       types.Money `json:"lineTotal"`
	Note            string      `json:"note,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// StatusHistory is one entry of an order's append-only status log.
type StatusHistory struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	ChangedBy  string    `json:"changedBy,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListFilter narrows the order list. Empty fields are not sent.
type ListFilter struct {
	DateFrom   string            `json:"dateFrom,omitempty"`
	DateTo     string            `json:"dateTo,omitempty"`
	Status     enums.OrderStatus `json:"status,omitempty"`
	IsPaid     *bool             `json:"isPaid,omitempty"`
	CustomerID string            `json:"customerId,omitempty"`
	Search     string            `json:"search,omitempty"`
}

type ItemInput struct {
	ProductID string       `json:"productId" validate:"notblank"`
	Quantity  int          `json:"quantity" validate:"gte=1"`
	UnitPrice *types.Money `json:"unitPrice,omitempty"`
	Note      string       `json:"note,omitempty"`
}

// CreateOrderInput is the multi-item creation payload.
type CreateOrderInput struct {
	CustomerID     string       `json:"customerId" validate:"notblank"`
	Items          []ItemInput  `json:"items" validate:"min=1,dive"`
	Discount       *types.Money `json:"discount,omitempty"`
	DiscountReason string       `json:"discountReason,omitempty"`
	ShippingFee    *types.Money `json:"shippingFee,omitempty"`
	Note           string       `json:"note,omitempty"`
}

// LegacyOrderInput is the single-product creation payload kept for older integrations.
type LegacyOrderInput struct {
	ProductID  string       `json:"productId" validate:"notblank"`
	Quantity   int          `json:"quantity" validate:"gte=1"`
	CustomerID string       `json:"customerId" validate:"notblank"`
	Note       string       `json:"note,omitempty"`
	TotalPrice *types.Money `json:"totalPrice,omitempty"`
}

type UpdateOrderInput struct {
	CustomerID     *string      `json:"customerId,omitempty" validate:"omitempty,notblank"`
	Items          []ItemInput  `json:"items,omitempty" validate:"omitempty,dive"`
	Discount       *types.Money `json:"discount,omitempty"`
	DiscountReason *string      `json:"discountReason,omitempty"`
	ShippingFee    *types.Money `json:"shippingFee,omitempty"`
	Note           *string      `json:"note,omitempty"`
	DeliveryImage  *string      `json:"deliveryImage,omitempty"`
	TotalPrice     *types.Money `json:"totalPrice,omitempty"`
}

// StatusInput requests a status change. Reason is required when Status is cancelled.
type StatusInput struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
	Note   string            `json:"note,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

type CancelInput struct {
	Reason string `json:"reason" validate:"notblank"`
}

type MarkPaidInput struct {
	PaidAt *time.Time `json:"paidAt,omitempty"`
	Note   string     `json:"note,omitempty"`
}

// DraftInput is an unsaved order form; it is only ever priced, never sent.
type DraftInput struct {
	Items       []LineAmount `json:"items" validate:"dive"`
	Discount    *types.Money `json:"discount,omitempty"`
	ShippingFee *types.Money `json:"shippingFee,omitempty"`
}
