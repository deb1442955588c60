package orders

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
)

// State is a point-in-time copy of the order container.
type State struct {
	Orders  []Order    `json:"orders"`
	Loading bool       `json:"loading"`
	Error   string     `json:"error,omitempty"`
	Filter  ListFilter `json:"filter"`
}

// Store caches the order list for one workspace. Every mutation goes through the
// Service; the cache only changes after the backend confirms.
type Store struct {
	svc Service

	mu      sync.RWMutex
	orders  []Order
	loading bool
	err     string
	filter  ListFilter
}

func NewStore(svc Service) *Store {
	return &Store{svc: svc}
}

// Snapshot returns a copy of the container state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return State{Orders: out, Loading: s.loading, Error: s.err, Filter: s.filter}
}

// Find returns the cached order with the given id.
func (s *Store) Find(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Fetch reloads the list with filter and remembers it for later refetches.
func (s *Store) Fetch(ctx context.Context, filter ListFilter) ([]Order, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.filter = filter
	s.mu.Unlock()

	list, err := s.svc.List(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = failureMessage(err, "Failed to fetch orders")
		return nil, err
	}
	s.orders = list
	out := make([]Order, len(list))
	copy(out, list)
	return out, nil
}

func (s *Store) Create(ctx context.Context, input CreateOrderInput) (*Order, error) {
	s.begin()
	order, err := s.svc.Create(ctx, input)
	if err != nil {
		s.fail(err, "Failed to create order")
		return nil, err
	}
	s.refetch(ctx)
	return order, nil
}

func (s *Store) CreateLegacy(ctx context.Context, input LegacyOrderInput) (*Order, error) {
	s.begin()
	order, err := s.svc.CreateLegacy(ctx, input)
	if err != nil {
		s.fail(err, "Failed to create order")
		return nil, err
	}
	s.refetch(ctx)
	return order, nil
}

func (s *Store) Update(ctx context.Context, id string, input UpdateOrderInput) (*Order, error) {
	s.begin()
	order, err := s.svc.Update(ctx, id, input)
	if err != nil {
		s.fail(err, "Failed to update order")
		return nil, err
	}
	s.refetch(ctx)
	return order, nil
}

// Delete drops the order locally only once the backend has removed it.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.svc.Delete(ctx, id); err != nil {
		s.fail(err, "Failed to delete order")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.orders[:0:0]
	for _, o := range s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	s.loading = false
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, input StatusInput) (*Order, error) {
	s.begin()
	order, err := s.svc.UpdateStatus(ctx, id, input)
	return s.replace(order, err, "Failed to update order status")
}

func (s *Store) Cancel(ctx context.Context, id, reason string) (*Order, error) {
	s.begin()
	order, err := s.svc.Cancel(ctx, id, reason)
	return s.replace(order, err, "Failed to cancel order")
}

func (s *Store) MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*Order, error) {
	s.begin()
	order, err := s.svc.MarkPaid(ctx, id, input)
	return s.replace(order, err, "Failed to mark order as paid")
}

func (s *Store) AddItem(ctx context.Context, id string, input ItemInput) (*Order, error) {
	s.begin()
	order, err := s.svc.AddItem(ctx, id, input)
	return s.replace(order, err, "Failed to add item")
}

func (s *Store) RemoveItem(ctx context.Context, id, itemID string) (*Order, error) {
	s.begin()
	order, err := s.svc.RemoveItem(ctx, id, itemID)
	return s.replace(order, err, "Failed to remove item")
}

func (s *Store) ToggleDelivered(ctx context.Context, id string) (*Order, error) {
	s.begin()
	order, err := s.svc.ToggleDelivered(ctx, id)
	return s.replace(order, err, "Failed to update delivery status")
}

func (s *Store) TogglePaid(ctx context.Context, id string) (*Order, error) {
	s.begin()
	order, err := s.svc.TogglePaid(ctx, id)
	return s.replace(order, err, "Failed to update payment status")
}

// replace swaps the cached copy of a mutated order for the server's response. Orders
// that are not in the current list are left out rather than appended.
func (s *Store) replace(order *Order, err error, fallback string) (*Order, error) {
	if err != nil {
		s.fail(err, fallback)
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			s.orders[i] = *order
			break
		}
	}
	s.loading = false
	return order, nil
}

// refetch reloads with the last filter. A failed refetch is recorded on the container
// but does not undo the mutation that preceded it.
func (s *Store) refetch(ctx context.Context) {
	s.mu.RLock()
	filter := s.filter
	s.mu.RUnlock()
	_, _ = s.Fetch(ctx, filter)
}

// begin marks the container busy and clears the previous failure.
func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.err = ""
}

func (s *Store) fail(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = failureMessage(err, fallback)
}

func failureMessage(err error, fallback string) string {
	if msg := pkgerrors.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}
