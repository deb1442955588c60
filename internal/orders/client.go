package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/pagination"
	"github.com/angelmondragon/lttsale-console/pkg/types"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
)

const ordersPath = "/api/orders"

// Client wraps the commerce API's order endpoints and normalizes every order it returns.
type Client struct {
	api *upstream.Client
}

// NewClient builds an order client over a commerce upstream client.
func NewClient(api *upstream.Client) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("commerce upstream client required")
	}
	return &Client{api: api}, nil
}

// List fetches every order matching filter in a single page.
func (c *Client) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	q := url.Values{}
	pagination.All().Apply(q)
	if filter.DateFrom != "" {
		q.Set("dateFrom", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q.Set("dateTo", filter.DateTo)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status.String())
	}
	if filter.IsPaid != nil {
		q.Set("isPaid", strconv.FormatBool(*filter.IsPaid))
	}
	if filter.CustomerID != "" {
		q.Set("customerId", filter.CustomerID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q.Set("search", search)
	}

	var body json.RawMessage
	if err := c.api.Do(ctx, upstream.Request{Method: http.MethodGet, Path: ordersPath, Query: q}, &body); err != nil {
		return nil, err
	}
	raws, err := decodeOrderList(body)
	if err != nil {
		return nil, err
	}
	return normalizeOrders(raws), nil
}

// decodeOrderList accepts the repackaged page shape or a bare array.
func decodeOrderList(body json.RawMessage) ([]rawOrder, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var raws []rawOrder
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order list")
		}
		return raws, nil
	}
	var page types.Page[rawOrder]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order list")
	}
	return page.Items, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Order, error) {
	return c.order(ctx, http.MethodGet, orderPath(id), nil)
}

func (c *Client) Create(ctx context.Context, input CreateOrderInput) (*Order, error) {
	return c.order(ctx, http.MethodPost, ordersPath, input)
}

func (c *Client) CreateLegacy(ctx context.Context, input LegacyOrderInput) (*Order, error) {
	return c.order(ctx, http.MethodPost, ordersPath+"/legacy", input)
}

func (c *Client) Update(ctx context.Context, id string, input UpdateOrderInput) (*Order, error) {
	return c.order(ctx, http.MethodPut, orderPath(id), input)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.api.Do(ctx, upstream.Request{Method: http.MethodDelete, Path: orderPath(id)}, nil)
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status enums.OrderStatus, note string) (*Order, error) {
	body := map[string]string{"status": status.String()}
	if note != "" {
		body["note"] = note
	}
	return c.order(ctx, http.MethodPatch, orderPath(id)+"/status", body)
}

func (c *Client) Cancel(ctx context.Context, id, reason string) (*Order, error) {
	return c.order(ctx, http.MethodPost, orderPath(id)+"/cancel", map[string]string{"reason": reason})
}

func (c *Client) MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*Order, error) {
	return c.order(ctx, http.MethodPost, orderPath(id)+"/paid", input)
}

func (c *Client) AddItem(ctx context.Context, id string, input ItemInput) (*Order, error) {
	return c.order(ctx, http.MethodPost, orderPath(id)+"/items", input)
}

func (c *Client) RemoveItem(ctx context.Context, id, itemID string) (*Order, error) {
	return c.order(ctx, http.MethodDelete, orderPath(id)+"/items/"+url.PathEscape(itemID), nil)
}

func (c *Client) History(ctx context.Context, id string) ([]StatusHistory, error) {
	var raws []rawHistory
	if err := c.api.Do(ctx, upstream.Request{Method: http.MethodGet, Path: orderPath(id) + "/history"}, &raws); err != nil {
		return nil, err
	}
	return normalizeHistory(raws), nil
}

// ToggleDelivered flips delivered without consulting the transition table.
func (c *Client) ToggleDelivered(ctx context.Context, id string) (*Order, error) {
	return c.order(ctx, http.MethodPatch, orderPath(id)+"/toggle-delivered", nil)
}

// TogglePaid flips paid without consulting the transition table.
func (c *Client) TogglePaid(ctx context.Context, id string) (*Order, error) {
	return c.order(ctx, http.MethodPatch, orderPath(id)+"/toggle-paid", nil)
}

func (c *Client) order(ctx context.Context, method, path string, body any) (*Order, error) {
	var raw rawOrder
	if err := c.api.Do(ctx, upstream.Request{Method: method, Path: path, Body: body}, &raw); err != nil {
		return nil, err
	}
	order := normalizeOrder(raw)
	return &order, nil
}

func orderPath(id string) string {
	return ordersPath + "/" + url.PathEscape(strings.TrimSpace(id))
}
