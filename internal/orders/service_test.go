package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend keeps orders in memory and records every call by name.
type stubBackend struct {
	mu     sync.Mutex
	orders map[string]Order
	calls  []string
	err    error
	listed int
	// onCall runs before each backend call returns.
	onCall func(name string)
}

func newStubBackend(orders ...Order) *stubBackend {
	b := &stubBackend{orders: map[string]Order{}}
	for _, o := range orders {
		b.orders[o.ID] = o
	}
	return b
}

func (b *stubBackend) record(name string) error {
	b.mu.Lock()
	b.calls = append(b.calls, name)
	err, hook := b.err, b.onCall
	b.mu.Unlock()
	if hook != nil {
		hook(name)
	}
	return err
}

func (b *stubBackend) callNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *stubBackend) withStatus(id string, status enums.OrderStatus) (*Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	o.Status = status
	o.NextStatuses = AllowedTransitions(status)
	b.orders[id] = o
	return &o, nil
}

func (b *stubBackend) List(context.Context, ListFilter) ([]Order, error) {
	if err := b.record("List"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listed++
	out := make([]Order, 0, len(b.orders))
	for _, id := range []string{"o1", "o2", "o3", "new"} {
		if o, ok := b.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (b *stubBackend) Get(_ context.Context, id string) (*Order, error) {
	if err := b.record("Get"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return &o, nil
}

func (b *stubBackend) Create(context.Context, CreateOrderInput) (*Order, error) {
	if err := b.record("Create"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	o := Order{ID: "new", Status: enums.OrderStatusPending}
	b.orders[o.ID] = o
	return &o, nil
}

func (b *stubBackend) CreateLegacy(context.Context, LegacyOrderInput) (*Order, error) {
	if err := b.record("CreateLegacy"); err != nil {
		return nil, err
	}
	return &Order{ID: "new"}, nil
}

func (b *stubBackend) Update(_ context.Context, id string, _ UpdateOrderInput) (*Order, error) {
	if err := b.record("Update"); err != nil {
		return nil, err
	}
	return b.Get(context.Background(), id)
}

func (b *stubBackend) Delete(_ context.Context, id string) error {
	if err := b.record("Delete"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.orders, id)
	return nil
}

func (b *stubBackend) UpdateStatus(_ context.Context, id string, status enums.OrderStatus, _ string) (*Order, error) {
	if err := b.record("UpdateStatus"); err != nil {
		return nil, err
	}
	return b.withStatus(id, status)
}

func (b *stubBackend) Cancel(_ context.Context, id, _ string) (*Order, error) {
	if err := b.record("Cancel"); err != nil {
		return nil, err
	}
	return b.withStatus(id, enums.OrderStatusCancelled)
}

func (b *stubBackend) MarkPaid(_ context.Context, id string, _ MarkPaidInput) (*Order, error) {
	if err := b.record("MarkPaid"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.orders[id]
	o.PaymentStatus = enums.PaymentStatusPaid
	b.orders[id] = o
	return &o, nil
}

func (b *stubBackend) AddItem(_ context.Context, id string, _ ItemInput) (*Order, error) {
	if err := b.record("AddItem"); err != nil {
		return nil, err
	}
	return &Order{ID: id, ItemCount: 2}, nil
}

func (b *stubBackend) RemoveItem(_ context.Context, id, _ string) (*Order, error) {
	if err := b.record("RemoveItem"); err != nil {
		return nil, err
	}
	return &Order{ID: id}, nil
}

func (b *stubBackend) History(context.Context, string) ([]StatusHistory, error) {
	if err := b.record("History"); err != nil {
		return nil, err
	}
	return []StatusHistory{{ID: "h1"}}, nil
}

func (b *stubBackend) ToggleDelivered(_ context.Context, id string) (*Order, error) {
	if err := b.record("ToggleDelivered"); err != nil {
		return nil, err
	}
	return b.withStatus(id, enums.OrderStatusDelivered)
}

func (b *stubBackend) TogglePaid(_ context.Context, id string) (*Order, error) {
	if err := b.record("TogglePaid"); err != nil {
		return nil, err
	}
	return &Order{ID: id, PaymentStatus: enums.PaymentStatusPaid}, nil
}

func newTestService(t *testing.T, backend Backend) Service {
	t.Helper()
	svc, err := NewService(backend)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresBackend(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestCreateValidatesBeforeCalling(t *testing.T) {
	backend := newStubBackend()
	svc := newTestService(t, backend)

	_, err := svc.Create(context.Background(), CreateOrderInput{CustomerID: " "})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "customerId")
	assert.Contains(t, details, "items")

	_, err = svc.Create(context.Background(), CreateOrderInput{
		CustomerID: "c1",
		Items:      []ItemInput{{ProductID: "p1", Quantity: 0}},
	})
	require.Error(t, err)
	details = pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "items[0].quantity")

	_, err = svc.Create(context.Background(), CreateOrderInput{
		CustomerID: "c1",
		Items:      []ItemInput{{ProductID: "p1", Quantity: 1}},
		Discount:   moneyPtr(-1),
	})
	require.Error(t, err)
	details = pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "discount")

	assert.Empty(t, backend.callNames())
}

func TestCreateCallsBackendWhenValid(t *testing.T) {
	backend := newStubBackend()
	svc := newTestService(t, backend)
	order, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID:  "c1",
		Items:       []ItemInput{{ProductID: "p1", Quantity: 3}},
		Discount:    moneyPtr(10000),
		ShippingFee: moneyPtr(15000),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", order.ID)
	assert.Equal(t, []string{"Create"}, backend.callNames())
}

func TestCancelWithoutReasonMakesNoCalls(t *testing.T) {
	backend := newStubBackend(Order{ID: "o1", Status: enums.OrderStatusPending})
	svc := newTestService(t, backend)

	for _, reason := range []string{"", "   "} {
		_, err := svc.Cancel(context.Background(), "o1", reason)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
	_, err := svc.UpdateStatus(context.Background(), "o1", StatusInput{Status: enums.OrderStatusCancelled})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Empty(t, backend.callNames())
}

func TestCancelChecksTransitionTable(t *testing.T) {
	backend := newStubBackend(
		Order{ID: "o1", Status: enums.OrderStatusPreparing},
		Order{ID: "o2", Status: enums.OrderStatusShipped},
	)
	svc := newTestService(t, backend)

	order, err := svc.Cancel(context.Background(), "o1", "out of stock")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, order.Status)

	_, err = svc.Cancel(context.Background(), "o2", "too late")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	assert.Equal(t, []string{"Get", "Cancel", "Get"}, backend.callNames())
}

func TestUpdateStatusFollowsTable(t *testing.T) {
	backend := newStubBackend(Order{ID: "o1", Status: enums.OrderStatusPending})
	svc := newTestService(t, backend)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "o1", StatusInput{Status: enums.OrderStatusShipped})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	order, err := svc.UpdateStatus(ctx, "o1", StatusInput{Status: enums.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusPreparing, enums.OrderStatusCancelled}, order.NextStatuses)

	order, err = svc.UpdateStatus(ctx, "o1", StatusInput{Status: enums.OrderStatusCancelled, Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, order.Status)

	_, err = svc.UpdateStatus(ctx, "o1", StatusInput{Status: "lost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Equal(t, []string{"Get", "Get", "UpdateStatus", "Get", "Cancel"}, backend.callNames())
}

func TestLegacyTogglesBypassTable(t *testing.T) {
	backend := newStubBackend(Order{ID: "o1", Status: enums.OrderStatusPending})
	svc := newTestService(t, backend)

	order, err := svc.ToggleDelivered(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, order.Status)
	assert.Equal(t, []string{"ToggleDelivered"}, backend.callNames())
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	backend := newStubBackend()
	svc := newTestService(t, backend)
	_, err := svc.List(context.Background(), ListFilter{Status: "archived"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, backend.callNames())
}

func TestRemoveItemRequiresIDs(t *testing.T) {
	backend := newStubBackend()
	svc := newTestService(t, backend)
	_, err := svc.RemoveItem(context.Background(), "o1", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, backend.callNames())
}

func TestPreviewTotals(t *testing.T) {
	svc := newTestService(t, newStubBackend())

	totals, err := svc.PreviewTotals(DraftInput{
		Items:       []LineAmount{{UnitPrice: money(50000), Quantity: 3}},
		Discount:    moneyPtr(10000),
		ShippingFee: moneyPtr(15000),
	})
	require.NoError(t, err)
	assert.True(t, totals.TotalPrice.Equal(money(155000)))

	_, err = svc.PreviewTotals(DraftInput{Items: []LineAmount{{UnitPrice: money(-5), Quantity: 1}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.PreviewTotals(DraftInput{ShippingFee: moneyPtr(-1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
