package orders

import (
	"fmt"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
)

// allowedTransitions maps a status to the statuses an operator may move it to, in the
// order they are offered. Terminal statuses have no entry.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:   {enums.OrderStatusDelivered},
}

// AllowedTransitions returns the statuses offered from current. Unknown and terminal
// statuses yield an empty list.
func AllowedTransitions(current enums.OrderStatus) []enums.OrderStatus {
	allowed := allowedTransitions[current]
	out := make([]enums.OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether next is offered from current.
func CanTransition(current, next enums.OrderStatus) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidateTransition rejects any move not in the transition table.
func ValidateTransition(current, next enums.OrderStatus) error {
	if !next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}
	if CanTransition(current, next) {
		return nil
	}
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and cannot change status", current)).
			WithDetails(map[string]any{"from": current, "to": next, "allowed": AllowedTransitions(current)})
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot transition from %s to %s", current, next)).
		WithDetails(map[string]any{"from": current, "to": next, "allowed": AllowedTransitions(current)})
}
