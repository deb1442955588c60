package controllers

import (
	"net/http"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/api/validators"
	"github.com/angelmondragon/lttsale-console/internal/orders"
	"github.com/angelmondragon/lttsale-console/pkg/enums"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

func orderFilter(r *http.Request) (orders.ListFilter, error) {
	isPaid, err := validators.ParseQueryBool(r, "isPaid")
	if err != nil {
		return orders.ListFilter{}, err
	}
	return orders.ListFilter{
		DateFrom:   validators.QueryString(r, "dateFrom"),
		DateTo:     validators.QueryString(r, "dateTo"),
		Status:     enums.OrderStatus(validators.QueryString(r, "status")),
		IsPaid:     isPaid,
		CustomerID: validators.QueryString(r, "customerId"),
		Search:     validators.QueryString(r, "search"),
	}, nil
}

// OrdersList refreshes the workspace's order list with the query filters.
func OrdersList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		filter, err := orderFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := ws.Orders.Fetch(r.Context(), filter)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrdersState returns the cached list with its loading and error flags.
func OrdersState(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Orders.Snapshot())
	}
}

func OrdersCreate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.Create(r.Context(), input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrdersCreateLegacy(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.LegacyOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.CreateLegacy(r.Context(), input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersPreviewTotals prices an unsaved order form.
func OrdersPreviewTotals(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.DraftInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := ws.OrderService().PreviewTotals(input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

type transitionOption struct {
	Status enums.OrderStatus `json:"status"`
	Label  string            `json:"label"`
}

// OrdersTransitions lists the statuses offered from ?from=<status>.
func OrdersTransitions(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := enums.OrderStatus(validators.QueryString(r, "from"))
		allowed := orders.AllowedTransitions(current)
		out := make([]transitionOption, 0, len(allowed))
		for _, s := range allowed {
			out = append(out, transitionOption{Status: s, Label: s.Label()})
		}
		responses.WriteSuccess(w, out)
	}
}

func OrdersGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		order, err := ws.OrderService().Get(r.Context(), pathParam(r, "orderId"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersUpdate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.UpdateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.Update(r.Context(), pathParam(r, "orderId"), input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersDelete(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		if err := ws.Orders.Delete(r.Context(), pathParam(r, "orderId")); err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteMessage(w, "Order deleted")
	}
}

// OrdersUpdateStatus moves an order along the transition table.
func OrdersUpdateStatus(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.StatusInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.UpdateStatus(r.Context(), pathParam(r, "orderId"), input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// cancelRequest is decoded without validation; the order service owns the reason rule.
type cancelRequest struct {
	Reason string `json:"reason"`
}

func OrdersCancel(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var req cancelRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.Cancel(r.Context(), pathParam(r, "orderId"), req.Reason)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersMarkPaid(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.MarkPaidInput
		if err := validators.DecodeOptionalJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.MarkPaid(r.Context(), pathParam(r, "orderId"), input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersAddItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		var input orders.ItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ws.Orders.AddItem(r.Context(), pathParam(r, "orderId"), input)
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		order, err := ws.Orders.RemoveItem(r.Context(), pathParam(r, "orderId"), pathParam(r, "itemId"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersHistory(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		history, err := ws.OrderService().History(r.Context(), pathParam(r, "orderId"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// OrdersToggleDelivered and OrdersTogglePaid flip flags without consulting the
// transition table.
func OrdersToggleDelivered(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		order, err := ws.Orders.ToggleDelivered(r.Context(), pathParam(r, "orderId"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersTogglePaid(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		order, err := ws.Orders.TogglePaid(r.Context(), pathParam(r, "orderId"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
