package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/angelmondragon/lttsale-console/pkg/upstream"
)

// Catalog groups the commerce API's reference data clients.
type Catalog struct {
	Products   *Products
	Customers  *Customers
	Buildings  *Resource[Named]
	Categories *Resource[Named]
	Apartments *Resource[Named]
	Analytics  *Analytics
}

// New builds every catalog client over one commerce upstream client.
func New(api *upstream.Client) (*Catalog, error) {
	if api == nil {
		return nil, fmt.Errorf("commerce upstream client required")
	}
	return &Catalog{
		Products:   &Products{Resource: NewResource[Product](api, Paths{Base: "/api/products"})},
		Customers:  &Customers{Resource: NewResource[Customer](api, Paths{Base: "/v1/customers", Create: "/api/customers"})},
		Buildings:  NewResource[Named](api, Paths{Base: "/v1/buildings", Create: "/api/buildings"}),
		Categories: NewResource[Named](api, Paths{Base: "/api/categories"}),
		Apartments: NewResource[Named](api, Paths{Base: "/api/apartments"}),
		Analytics:  &Analytics{api: api},
	}, nil
}

type Products struct {
	*Resource[Product]
}

func (p *Products) Search(ctx context.Context, filter ProductFilter) ([]Product, error) {
	return p.List(ctx, url.Values{
		"categoryId":  {filter.CategoryID},
		"isPublished": {boolQuery(filter.IsPublished)},
		"search":      {filter.Search},
	})
}

func (p *Products) TogglePublished(ctx context.Context, id string) (*Product, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return p.one(ctx, http.MethodPatch, p.paths.item(id)+"/toggle-published", nil)
}

type Customers struct {
	*Resource[Customer]
}

func (c *Customers) Search(ctx context.Context, filter CustomerFilter) ([]Customer, error) {
	return c.List(ctx, url.Values{
		"buildingId": {filter.BuildingID},
		"search":     {filter.Search},
	})
}

// ByBuilding lists the customers of one building. The backend does not page it.
func (c *Customers) ByBuilding(ctx context.Context, buildingID string) ([]Customer, error) {
	if err := requireID(buildingID); err != nil {
		return nil, err
	}
	return c.list(ctx, c.paths.Base+"/building/"+url.PathEscape(buildingID), nil)
}

type Analytics struct {
	api *upstream.Client
}

// Orders returns the order summary for the filter; empty fields are not sent.
func (a *Analytics) Orders(ctx context.Context, filter AnalyticsFilter) (*OrderAnalytics, error) {
	q := url.Values{}
	for key, value := range map[string]string{
		"dateFrom":   filter.DateFrom,
		"dateTo":     filter.DateTo,
		"customerId": filter.CustomerID,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	var out OrderAnalytics
	if err := a.api.Do(ctx, upstream.Request{Method: http.MethodGet, Path: "/api/analytics", Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
