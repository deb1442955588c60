package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/api/validators"
	"github.com/angelmondragon/lttsale-console/internal/catalog"
	"github.com/angelmondragon/lttsale-console/internal/console"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
)

// CatalogHandlers are the CRUD handlers for one reference collection.
type CatalogHandlers struct {
	List   http.HandlerFunc
	Get    http.HandlerFunc
	Create http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
}

type listFunc[T any] func(ctx context.Context, r *http.Request, ws *console.Workspace) ([]T, error)

// crud builds handlers over the workspace resource pick returns. In and Up are the
// create and update payloads; item routes read the {id} path parameter.
func crud[T, In, Up any](pick func(*console.Workspace) *catalog.Resource[T], list listFunc[T], deleted string, logg *logger.Logger) CatalogHandlers {
	run := func(w http.ResponseWriter, r *http.Request, status int, fn func(ctx context.Context, res *catalog.Resource[T]) (any, error)) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		out, err := fn(r.Context(), pick(ws))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}

	return CatalogHandlers{
		List: func(w http.ResponseWriter, r *http.Request) {
			ws, ok := workspace(w, r, logg)
			if !ok {
				return
			}
			var (
				items []T
				err   error
			)
			if list != nil {
				items, err = list(r.Context(), r, ws)
			} else {
				items, err = pick(ws).List(r.Context(), url.Values{"search": {validators.QueryString(r, "search")}})
			}
			if err != nil {
				fail(w, r, logg, err)
				return
			}
			responses.WriteSuccess(w, items)
		},
		Get: func(w http.ResponseWriter, r *http.Request) {
			run(w, r, http.StatusOK, func(ctx context.Context, res *catalog.Resource[T]) (any, error) {
				return res.Get(ctx, pathParam(r, "id"))
			})
		},
		Create: func(w http.ResponseWriter, r *http.Request) {
			var input In
			if err := validators.DecodeJSONBody(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			run(w, r, http.StatusCreated, func(ctx context.Context, res *catalog.Resource[T]) (any, error) {
				return res.Create(ctx, input)
			})
		},
		Update: func(w http.ResponseWriter, r *http.Request) {
			var input Up
			if err := validators.DecodeJSONBody(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			run(w, r, http.StatusOK, func(ctx context.Context, res *catalog.Resource[T]) (any, error) {
				return res.Update(ctx, pathParam(r, "id"), input)
			})
		},
		Delete: func(w http.ResponseWriter, r *http.Request) {
			ws, ok := workspace(w, r, logg)
			if !ok {
				return
			}
			if err := pick(ws).Delete(r.Context(), pathParam(r, "id")); err != nil {
				fail(w, r, logg, err)
				return
			}
			responses.WriteMessage(w, deleted)
		},
	}
}

func Products(logg *logger.Logger) CatalogHandlers {
	return crud[catalog.Product, catalog.ProductInput, catalog.ProductUpdate](
		func(ws *console.Workspace) *catalog.Resource[catalog.Product] { return ws.Catalog.Products.Resource },
		func(ctx context.Context, r *http.Request, ws *console.Workspace) ([]catalog.Product, error) {
			published, err := validators.ParseQueryBool(r, "isPublished")
			if err != nil {
				return nil, err
			}
			return ws.Catalog.Products.Search(ctx, catalog.ProductFilter{
				CategoryID:  validators.QueryString(r, "categoryId"),
				IsPublished: published,
				Search:      validators.QueryString(r, "search"),
			})
		},
		"Product deleted", logg)
}

func ProductsTogglePublished(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		product, err := ws.Catalog.Products.TogglePublished(r.Context(), pathParam(r, "id"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func Customers(logg *logger.Logger) CatalogHandlers {
	return crud[catalog.Customer, catalog.CustomerInput, catalog.CustomerUpdate](
		func(ws *console.Workspace) *catalog.Resource[catalog.Customer] { return ws.Catalog.Customers.Resource },
		func(ctx context.Context, r *http.Request, ws *console.Workspace) ([]catalog.Customer, error) {
			return ws.Catalog.Customers.Search(ctx, catalog.CustomerFilter{
				BuildingID: validators.QueryString(r, "buildingId"),
				Search:     validators.QueryString(r, "search"),
			})
		},
		"Customer deleted", logg)
}

func CustomersByBuilding(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		customers, err := ws.Catalog.Customers.ByBuilding(r.Context(), pathParam(r, "buildingId"))
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, customers)
	}
}

func Buildings(logg *logger.Logger) CatalogHandlers {
	return crud[catalog.Named, catalog.NameInput, catalog.NameInput](
		func(ws *console.Workspace) *catalog.Resource[catalog.Named] { return ws.Catalog.Buildings },
		nil, "Building deleted", logg)
}

func Categories(logg *logger.Logger) CatalogHandlers {
	return crud[catalog.Named, catalog.NameInput, catalog.NameInput](
		func(ws *console.Workspace) *catalog.Resource[catalog.Named] { return ws.Catalog.Categories },
		nil, "Category deleted", logg)
}

func Apartments(logg *logger.Logger) CatalogHandlers {
	return crud[catalog.Named, catalog.NameInput, catalog.NameInput](
		func(ws *console.Workspace) *catalog.Resource[catalog.Named] { return ws.Catalog.Apartments },
		nil, "Apartment deleted", logg)
}

// OrderAnalytics returns the dashboard summary for the query's date range.
func OrderAnalytics(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r, logg)
		if !ok {
			return
		}
		summary, err := ws.Catalog.Analytics.Orders(r.Context(), catalog.AnalyticsFilter{
			DateFrom:   validators.QueryString(r, "dateFrom"),
			DateTo:     validators.QueryString(r, "dateTo"),
			CustomerID: validators.QueryString(r, "customerId"),
		})
		if err != nil {
			fail(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
