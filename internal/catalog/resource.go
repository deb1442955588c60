package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/pagination"
	"github.com/angelmondragon/lttsale-console/pkg/types"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
	"github.com/angelmondragon/lttsale-console/pkg/validation"
)

// Paths locates a resource on the commerce API. Several resources read and write
// through /v1 while creation still lives under /api, so create has its own base.
type Paths struct {
	Base   string
	Create string
}

func (p Paths) create() string {
	if p.Create != "" {
		return p.Create
	}
	return p.Base
}

func (p Paths) item(id string) string {
	return p.Base + "/" + url.PathEscape(strings.TrimSpace(id))
}

// Resource is the list/get/create/update/delete shape every catalog entity shares.
type Resource[T any] struct {
	api   *upstream.Client
	paths Paths
}

func NewResource[T any](api *upstream.Client, paths Paths) *Resource[T] {
	return &Resource[T]{api: api, paths: paths}
}

// List fetches the whole collection in one page; extra filters are added to query.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	q := url.Values{}
	for key, values := range query {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				q.Add(key, strings.TrimSpace(v))
			}
		}
	}
	pagination.All().Apply(q)
	return r.list(ctx, r.paths.Base, q)
}

func (r *Resource[T]) list(ctx context.Context, path string, q url.Values) ([]T, error) {
	var body json.RawMessage
	if err := r.api.Do(ctx, upstream.Request{Method: http.MethodGet, Path: path, Query: q}, &body); err != nil {
		return nil, err
	}
	return decodeList[T](body)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return r.one(ctx, http.MethodGet, r.paths.item(id), nil)
}

// Create validates input before sending it.
func (r *Resource[T]) Create(ctx context.Context, input any) (*T, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	return r.one(ctx, http.MethodPost, r.paths.create(), input)
}

func (r *Resource[T]) Update(ctx context.Context, id string, input any) (*T, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	return r.one(ctx, http.MethodPut, r.paths.item(id), input)
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return r.api.Do(ctx, upstream.Request{Method: http.MethodDelete, Path: r.paths.item(id)}, nil)
}

func (r *Resource[T]) one(ctx context.Context, method, path string, body any) (*T, error) {
	var out T
	if err := r.api.Do(ctx, upstream.Request{Method: method, Path: path, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeList accepts the repackaged page shape or a bare array.
func decodeList[T any](body json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode list")
		}
		return items, nil
	}
	var page types.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode list")
	}
	if page.Items == nil {
		return []T{}, nil
	}
	return page.Items, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	return nil
}

func boolQuery(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
