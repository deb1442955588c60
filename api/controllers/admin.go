package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/api/validators"
	"github.com/angelmondragon/lttsale-console/internal/identity"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/pagination"
)

// adminCall runs fn against the workspace's identity client and writes its result.
func adminCall(w http.ResponseWriter, r *http.Request, logg *logger.Logger, status int, fn func(ctx context.Context, c *identity.Client) (any, error)) {
	ws, ok := workspace(w, r, logg)
	if !ok {
		return
	}
	out, err := fn(r.Context(), ws.Identity)
	if err != nil {
		fail(w, r, logg, err)
		return
	}
	if msg, ok := out.(string); ok {
		responses.WriteMessage(w, msg)
		return
	}
	responses.WriteSuccessStatus(w, status, out)
}

func listParams(r *http.Request) (identity.ListParams, error) {
	page, err := validators.ParseQueryInt(r, "page", 0, 0, 100000)
	if err != nil {
		return identity.ListParams{}, err
	}
	size, err := validators.ParseQueryInt(r, "pageSize", 0, 0, pagination.MaxSize)
	if err != nil {
		return identity.ListParams{}, err
	}
	return identity.ListParams{
		Params: pagination.Params{Page: page, Size: size},
		Search: validators.QueryString(r, "search"),
	}, nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(pathParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]string{"field": name})
	}
	return id, nil
}

// withID parses {id} before running fn.
func withID(r *http.Request, fn func(id int64) (any, error)) (any, error) {
	id, err := int64Param(r, "id")
	if err != nil {
		return nil, err
	}
	return fn(id)
}

// withBody decodes a validated payload before running fn.
func withBody[T any](r *http.Request, fn func(input T) (any, error)) (any, error) {
	var input T
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return nil, err
	}
	return fn(input)
}

// AdminHandlers serve the identity administration pages.
type AdminHandlers struct {
	logg *logger.Logger
}

func NewAdminHandlers(logg *logger.Logger) *AdminHandlers {
	return &AdminHandlers{logg: logg}
}

func (h *AdminHandlers) handle(status int, fn func(ctx context.Context, r *http.Request, c *identity.Client) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminCall(w, r, h.logg, status, func(ctx context.Context, c *identity.Client) (any, error) {
			return fn(ctx, r, c)
		})
	}
}

func (h *AdminHandlers) ListAccounts() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		params, err := listParams(r)
		if err != nil {
			return nil, err
		}
		return c.ListAccounts(ctx, params)
	})
}

func (h *AdminHandlers) GetAccount() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return c.GetAccount(ctx, id) })
	})
}

func (h *AdminHandlers) CreateAccount() http.HandlerFunc {
	return h.handle(http.StatusCreated, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withBody(r, func(in identity.CreateAccountInput) (any, error) { return c.CreateAccount(ctx, in) })
	})
}

func (h *AdminHandlers) UpdateAccount() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) {
			return withBody(r, func(in identity.UpdateAccountInput) (any, error) { return c.UpdateAccount(ctx, id, in) })
		})
	})
}

func (h *AdminHandlers) DeleteAccount() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return "Account deleted", c.DeleteAccount(ctx, id) })
	})
}

// AccountRoles degrades to an empty list so the account page still renders.
func (h *AdminHandlers) AccountRoles() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return c.AccountRolesOrEmpty(ctx, id), nil })
	})
}

func (h *AdminHandlers) AssignRoles() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) {
			return withBody(r, func(in identity.AssignRolesInput) (any, error) { return "Roles assigned", c.AssignRoles(ctx, id, in) })
		})
	})
}

func (h *AdminHandlers) RemoveRole() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) {
			return withBody(r, func(in identity.RemoveRoleInput) (any, error) { return "Role removed", c.RemoveRole(ctx, id, in) })
		})
	})
}

// AccountPermissions lists another account's effective grants.
func (h *AdminHandlers) AccountPermissions() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		uid := pathParam(r, "id")
		if uid == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id")
		}
		return c.AccountPermissions(ctx, uid)
	})
}

func (h *AdminHandlers) ListRoles() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		params, err := listParams(r)
		if err != nil {
			return nil, err
		}
		return c.ListRoles(ctx, params)
	})
}

func (h *AdminHandlers) GetRole() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return c.GetRole(ctx, id) })
	})
}

func (h *AdminHandlers) CreateRole() http.HandlerFunc {
	return h.handle(http.StatusCreated, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withBody(r, func(in identity.RoleInput) (any, error) { return c.CreateRole(ctx, in) })
	})
}

func (h *AdminHandlers) UpdateRole() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) {
			return withBody(r, func(in identity.RoleUpdateInput) (any, error) { return c.UpdateRole(ctx, id, in) })
		})
	})
}

func (h *AdminHandlers) DeleteRole() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return "Role deleted", c.DeleteRole(ctx, id) })
	})
}

func (h *AdminHandlers) RolePolicies() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return c.RolePoliciesOrEmpty(ctx, id), nil })
	})
}

func (h *AdminHandlers) ListPermissions() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		params, err := listParams(r)
		if err != nil {
			return nil, err
		}
		return c.ListPermissions(ctx, params)
	})
}

func (h *AdminHandlers) CreatePermission() http.HandlerFunc {
	return h.handle(http.StatusCreated, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withBody(r, func(in identity.PermissionInput) (any, error) { return c.CreatePermission(ctx, in) })
	})
}

func (h *AdminHandlers) UpdatePermission() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) {
			return withBody(r, func(in identity.PermissionUpdateInput) (any, error) { return c.UpdatePermission(ctx, id, in) })
		})
	})
}

func (h *AdminHandlers) DeletePermission() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return "Permission deleted", c.DeletePermission(ctx, id) })
	})
}

func (h *AdminHandlers) ListResources() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return c.ListResources(ctx)
	})
}

func (h *AdminHandlers) CreateResource() http.HandlerFunc {
	return h.handle(http.StatusCreated, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withBody(r, func(in identity.ResourceInput) (any, error) { return c.CreateResource(ctx, in) })
	})
}

func (h *AdminHandlers) UpdateResource() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) {
			return withBody(r, func(in identity.ResourceUpdateInput) (any, error) { return c.UpdateResource(ctx, id, in) })
		})
	})
}

func (h *AdminHandlers) DeleteResource() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withID(r, func(id int64) (any, error) { return "Resource deleted", c.DeleteResource(ctx, id) })
	})
}

// ListPolicies filters by ?roleId when present.
func (h *AdminHandlers) ListPolicies() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return c.ListPolicies(ctx, validators.QueryString(r, "roleId"))
	})
}

func (h *AdminHandlers) AddPolicy() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withBody(r, func(in identity.AddPolicyInput) (any, error) { return "Policy added", c.AddPolicy(ctx, in) })
	})
}

func (h *AdminHandlers) RemovePolicy() http.HandlerFunc {
	return h.handle(http.StatusOK, func(ctx context.Context, r *http.Request, c *identity.Client) (any, error) {
		return withBody(r, func(in identity.RemovePolicyInput) (any, error) { return "Policy removed", c.RemovePolicy(ctx, in) })
	})
}
