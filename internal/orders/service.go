package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/types"
	"github.com/angelmondragon/lttsale-console/pkg/validation"
)

// Backend is the order API surface the service drives; *Client implements it.
type Backend interface {
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	Create(ctx context.Context, input CreateOrderInput) (*Order, error)
	CreateLegacy(ctx context.Context, input LegacyOrderInput) (*Order, error)
	Update(ctx context.Context, id string, input UpdateOrderInput) (*Order, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status enums.OrderStatus, note string) (*Order, error)
	Cancel(ctx context.Context, id, reason string) (*Order, error)
	MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*Order, error)
	AddItem(ctx context.Context, id string, input ItemInput) (*Order, error)
	RemoveItem(ctx context.Context, id, itemID string) (*Order, error)
	History(ctx context.Context, id string) ([]StatusHistory, error)
	ToggleDelivered(ctx context.Context, id string) (*Order, error)
	TogglePaid(ctx context.Context, id string) (*Order, error)
}

// Service applies the order rules the console enforces before anything reaches the
// backend: input validation, the status transition table and the cancel reason.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	Create(ctx context.Context, input CreateOrderInput) (*Order, error)
	CreateLegacy(ctx context.Context, input LegacyOrderInput) (*Order, error)
	Update(ctx context.Context, id string, input UpdateOrderInput) (*Order, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, input StatusInput) (*Order, error)
	Cancel(ctx context.Context, id, reason string) (*Order, error)
	MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*Order, error)
	AddItem(ctx context.Context, id string, input ItemInput) (*Order, error)
	RemoveItem(ctx context.Context, id, itemID string) (*Order, error)
	History(ctx context.Context, id string) ([]StatusHistory, error)
	ToggleDelivered(ctx context.Context, id string) (*Order, error)
	TogglePaid(ctx context.Context, id string) (*Order, error)
	PreviewTotals(input DraftInput) (Totals, error)
}

type service struct {
	backend Backend
}

// NewService builds the order service over the provided backend.
func NewService(backend Backend) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("orders backend required")
	}
	return &service{backend: backend}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", filter.Status))
	}
	return s.backend.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	return s.backend.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := nonNegative(map[string]*types.Money{"discount": input.Discount, "shippingFee": input.ShippingFee}); err != nil {
		return nil, err
	}
	if err := itemPricesNonNegative(input.Items); err != nil {
		return nil, err
	}
	return s.backend.Create(ctx, input)
}

func (s *service) CreateLegacy(ctx context.Context, input LegacyOrderInput) (*Order, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := nonNegative(map[string]*types.Money{"totalPrice": input.TotalPrice}); err != nil {
		return nil, err
	}
	return s.backend.CreateLegacy(ctx, input)
}

func (s *service) Update(ctx context.Context, id string, input UpdateOrderInput) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := nonNegative(map[string]*types.Money{
		"discount":    input.Discount,
		"shippingFee": input.ShippingFee,
		"totalPrice":  input.TotalPrice,
	}); err != nil {
		return nil, err
	}
	if err := itemPricesNonNegative(input.Items); err != nil {
		return nil, err
	}
	return s.backend.Update(ctx, id, input)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := requireID("order id", id); err != nil {
		return err
	}
	return s.backend.Delete(ctx, id)
}

// UpdateStatus moves an order along the transition table. A move to cancelled goes
// through Cancel so the reason requirement always applies.
func (s *service) UpdateStatus(ctx context.Context, id string, input StatusInput) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}
	if input.Status == enums.OrderStatusCancelled {
		return s.Cancel(ctx, id, input.Reason)
	}

	current, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, input.Status); err != nil {
		return nil, err
	}
	return s.backend.UpdateStatus(ctx, id, input.Status, strings.TrimSpace(input.Note))
}

// Cancel requires a non-blank reason, checked before any backend call.
func (s *service) Cancel(ctx context.Context, id, reason string) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := validation.Struct(CancelInput{Reason: reason}); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancel reason is required").
			WithDetails(map[string]string{"reason": "is required"})
	}

	current, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, enums.OrderStatusCancelled); err != nil {
		return nil, err
	}
	return s.backend.Cancel(ctx, id, reason)
}

// MarkPaid is independent of the order status.
func (s *service) MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	return s.backend.MarkPaid(ctx, id, input)
}

func (s *service) AddItem(ctx context.Context, id string, input ItemInput) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := itemPricesNonNegative([]ItemInput{input}); err != nil {
		return nil, err
	}
	return s.backend.AddItem(ctx, id, input)
}

func (s *service) RemoveItem(ctx context.Context, id, itemID string) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	if err := requireID("item id", itemID); err != nil {
		return nil, err
	}
	return s.backend.RemoveItem(ctx, id, itemID)
}

func (s *service) History(ctx context.Context, id string) ([]StatusHistory, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	return s.backend.History(ctx, id)
}

func (s *service) ToggleDelivered(ctx context.Context, id string) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	return s.backend.ToggleDelivered(ctx, id)
}

func (s *service) TogglePaid(ctx context.Context, id string) (*Order, error) {
	if err := requireID("order id", id); err != nil {
		return nil, err
	}
	return s.backend.TogglePaid(ctx, id)
}

// PreviewTotals prices an unsaved form. Nothing is sent to the backend.
func (s *service) PreviewTotals(input DraftInput) (Totals, error) {
	details := map[string]string{}
	for i, line := range input.Items {
		if line.Quantity < 0 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than or equal to 0"
		}
		if line.UnitPrice.IsNegative() {
			details[fmt.Sprintf("items[%d].unitPrice", i)] = "must be greater than or equal to 0"
		}
	}
	if len(details) > 0 {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	if err := nonNegative(map[string]*types.Money{"discount": input.Discount, "shippingFee": input.ShippingFee}); err != nil {
		return Totals{}, err
	}
	return ComputeTotals(input.Items, input.Discount, input.ShippingFee), nil
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	return nil
}

func nonNegative(amounts map[string]*types.Money) error {
	details := map[string]string{}
	for field, amount := range amounts {
		if amount != nil && amount.IsNegative() {
			details[field] = "must be greater than or equal to 0"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func itemPricesNonNegative(items []ItemInput) error {
	details := map[string]string{}
	for i, item := range items {
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			details[fmt.Sprintf("items[%d].unitPrice", i)] = "must be greater than or equal to 0"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
