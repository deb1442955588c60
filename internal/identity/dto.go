package identity

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/angelmondragon/lttsale-console/pkg/pagination"
)

// Account is a user record held by the identity service.
type Account struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	Avatar      string          `json:"avatar"`
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	IsSuper     bool            `json:"is_supper"`
	Gender      *int            `json:"gender,omitempty"`
	DateOfBirth string          `json:"date_of_birth,omitempty"`
	LastLogin   string          `json:"last_login,omitempty"`
	UserRoles   []UserRoleEntry `json:"user_roles,omitempty"`
}

type UserRoleEntry struct {
	UserID     int64 `json:"user_id"`
	RoleID     int64 `json:"role_id"`
	ResourceID int64 `json:"resource_id"`
}

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Resource is an authorization domain.
type Resource struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Policy binds a role within a domain to a path and action.
type Policy struct {
	RoleID   string `json:"role_id"`
	DomainID string `json:"domain_id"`
	Path     string `json:"path"`
	Action   string `json:"action"`
	Effect   string `json:"effect"`
}

// ListParams filters identity admin listings.
type ListParams struct {
	pagination.Params
	Search string
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	p.ApplyIdentity(q)
	if search := strings.TrimSpace(p.Search); search != "" {
		q.Set("search", search)
	}
	return q
}

type CreateAccountInput struct {
	Username  string `json:"username" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Gender    *int   `json:"gender,omitempty"`
	IsActive  *bool  `json:"is_active,omitempty"`
	IsSuper   *bool  `json:"is_supper,omitempty"`
}

type UpdateAccountInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Gender    *int    `json:"gender,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type AssignRolesInput struct {
	Roles    []int64 `json:"roles" validate:"min=1"`
	DomainID int64   `json:"domain_id" validate:"gte=0"`
}

type RemoveRoleInput struct {
	RoleID   int64 `json:"role_id" validate:"required"`
	DomainID int64 `json:"domain_id" validate:"gte=0"`
}

type RoleInput struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description,omitempty"`
}

type RoleUpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type PermissionInput struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path" validate:"notblank"`
	Action      string `json:"action" validate:"notblank"`
}

type PermissionUpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Path        *string `json:"path,omitempty"`
	Action      *string `json:"action,omitempty"`
}

type ResourceInput struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
}

type ResourceUpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type AddPolicyInput struct {
	Roles    []int64 `json:"roles" validate:"min=1"`
	DomainID int64   `json:"domain_id" validate:"gte=0"`
	Path     string  `json:"path" validate:"notblank"`
	Action   string  `json:"action" validate:"notblank"`
	Access   string  `json:"access" validate:"oneof=allow deny"`
}

type RemovePolicyInput struct {
	RoleID   string `json:"role_id" validate:"notblank"`
	DomainID string `json:"domain_id" validate:"notblank"`
	Path     string `json:"path" validate:"notblank"`
	Action   string `json:"action" validate:"notblank"`
}

// Profile is the signed-in user's own account as shown on the account page.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

type ProfileInput struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,notblank"`
	Phone *string `json:"phone,omitempty"`
}

// profileFromAccount maps the loosely shaped account payload; role is filled in by the caller.
func profileFromAccount(raw map[string]json.RawMessage, uid string) Profile {
	profile := Profile{
		ID:       firstText(raw, "id", "uid"),
		Name:     firstText(raw, "username", "name"),
		Email:    firstText(raw, "email"),
		Phone:    firstText(raw, "phone", "mobile"),
		IsActive: true,
	}
	if profile.ID == "" {
		profile.ID = uid
	}
	if status, ok := raw["status"]; ok && strings.TrimSpace(string(status)) == "0" {
		profile.IsActive = false
	}
	return profile
}

// firstText mirrors a ?? chain: the first present, non-null key wins.
func firstText(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		text := strings.TrimSpace(string(value))
		if text == "" || text == "null" {
			continue
		}
		var str string
		if err := json.Unmarshal(value, &str); err == nil {
			return str
		}
		return text
	}
	return ""
}
