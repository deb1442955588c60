package identity

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/lttsale-console/pkg/auth"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
	"github.com/angelmondragon/lttsale-console/pkg/validation"
)

func (c *Client) ListAccounts(ctx context.Context, params ListParams) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, "/v1/account", &params, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) GetAccount(ctx context.Context, id int64) (*Account, error) {
	var account Account
	if err := c.get(ctx, "/v1/account/"+pathID(id), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	var account Account
	if err := c.send(ctx, http.MethodPost, "/v1/account", input, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) UpdateAccount(ctx context.Context, id int64, input UpdateAccountInput) (*Account, error) {
	var account Account
	if err := c.send(ctx, http.MethodPut, "/v1/account/"+pathID(id), input, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/v1/account/"+pathID(id), nil, nil)
}

func (c *Client) AccountRoles(ctx context.Context, id int64) ([]Role, error) {
	var roles []Role
	if err := c.get(ctx, "/v1/account/"+pathID(id)+"/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// AccountRolesOrEmpty is for display: a failed fetch yields no roles instead of an error.
func (c *Client) AccountRolesOrEmpty(ctx context.Context, id int64) []Role {
	roles, err := c.AccountRoles(ctx, id)
	if err != nil || roles == nil {
		return []Role{}
	}
	return roles
}

func (c *Client) AssignRoles(ctx context.Context, id int64, input AssignRolesInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, "/v1/account/"+pathID(id)+"/roles", input, nil)
}

func (c *Client) RemoveRole(ctx context.Context, id int64, input RemoveRoleInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	return c.send(ctx, http.MethodDelete, "/v1/account/"+pathID(id)+"/roles", input, nil)
}

func (c *Client) ListRoles(ctx context.Context, params ListParams) ([]Role, error) {
	var roles []Role
	if err := c.get(ctx, "/v1/role", &params, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) GetRole(ctx context.Context, id int64) (*Role, error) {
	var role Role
	if err := c.get(ctx, "/v1/role/"+pathID(id), nil, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *Client) CreateRole(ctx context.Context, input RoleInput) (*Role, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	var role Role
	if err := c.send(ctx, http.MethodPost, "/v1/role", input, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *Client) UpdateRole(ctx context.Context, id int64, input RoleUpdateInput) (*Role, error) {
	var role Role
	if err := c.send(ctx, http.MethodPut, "/v1/role/"+pathID(id), input, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/v1/role/"+pathID(id), nil, nil)
}

func (c *Client) RolePolicies(ctx context.Context, id int64) ([]Policy, error) {
	var policies []Policy
	if err := c.get(ctx, "/v1/role/"+pathID(id)+"/policies", nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// RolePoliciesOrEmpty is for display: a failed fetch yields no policies instead of an error.
func (c *Client) RolePoliciesOrEmpty(ctx context.Context, id int64) []Policy {
	policies, err := c.RolePolicies(ctx, id)
	if err != nil || policies == nil {
		return []Policy{}
	}
	return policies
}

func (c *Client) ListPermissions(ctx context.Context, params ListParams) ([]auth.Permission, error) {
	var permissions []auth.Permission
	if err := c.get(ctx, "/v1/permission", &params, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (c *Client) CreatePermission(ctx context.Context, input PermissionInput) (*auth.Permission, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	var permission auth.Permission
	if err := c.send(ctx, http.MethodPost, "/v1/permission", input, &permission); err != nil {
		return nil, err
	}
	return &permission, nil
}

func (c *Client) UpdatePermission(ctx context.Context, id int64, input PermissionUpdateInput) (*auth.Permission, error) {
	var permission auth.Permission
	if err := c.send(ctx, http.MethodPut, "/v1/permission/"+pathID(id), input, &permission); err != nil {
		return nil, err
	}
	return &permission, nil
}

func (c *Client) DeletePermission(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/v1/permission/"+pathID(id), nil, nil)
}

// ListResources lists authorization domains.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	var resources []Resource
	if err := c.get(ctx, "/v1/resource", nil, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (c *Client) CreateResource(ctx context.Context, input ResourceInput) (*Resource, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	var resource Resource
	if err := c.send(ctx, http.MethodPost, "/v1/resource", input, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (c *Client) UpdateResource(ctx context.Context, id int64, input ResourceUpdateInput) (*Resource, error) {
	var resource Resource
	if err := c.send(ctx, http.MethodPut, "/v1/resource/"+pathID(id), input, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (c *Client) DeleteResource(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/v1/resource/"+pathID(id), nil, nil)
}

// ListPolicies lists policies, optionally narrowed to one role.
func (c *Client) ListPolicies(ctx context.Context, roleID string) ([]Policy, error) {
	req := upstream.Request{Method: http.MethodGet, Path: "/v1/policy"}
	if roleID = strings.TrimSpace(roleID); roleID != "" {
		req.Query = url.Values{"role_id": {roleID}}
	}
	var policies []Policy
	if err := c.api.Do(ctx, req, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

func (c *Client) AddPolicy(ctx context.Context, input AddPolicyInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, "/v1/policy", input, nil)
}

func (c *Client) RemovePolicy(ctx context.Context, input RemovePolicyInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	return c.send(ctx, http.MethodDelete, "/v1/policy", input, nil)
}
