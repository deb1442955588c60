package console

import "github.com/angelmondragon/lttsale-console/pkg/auth"

// Requirement is the (method, path) permission a page or route needs.
type Requirement struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Permission checks one requirement, usually session.Manager.HasPermission.
type Permission func(method, path string) bool

var (
	PermAnalytics   = Requirement{Method: "GET", Path: "/api/analytics"}
	PermOrders      = Requirement{Method: "GET", Path: "/api/orders"}
	PermProducts    = Requirement{Method: "GET", Path: "/api/products"}
	PermCustomers   = Requirement{Method: "GET", Path: "/api/customers"}
	PermCategories  = Requirement{Method: "GET", Path: "/api/categories"}
	PermBuildings   = Requirement{Method: "GET", Path: "/api/buildings"}
	PermApartments  = Requirement{Method: "GET", Path: "/api/apartments"}
	PermAccounts    = Requirement{Method: auth.WildcardMethod, Path: "/v1/account"}
	PermRoles       = Requirement{Method: auth.WildcardMethod, Path: "/v1/role"}
	PermPermissions = Requirement{Method: auth.WildcardMethod, Path: "/v1/permission"}
	PermPolicies    = Requirement{Method: auth.WildcardMethod, Path: "/v1/policy"}
	PermResources   = Requirement{Method: auth.WildcardMethod, Path: "/v1/resource"}
)

// AccountPage is reachable by every signed-in user and is the last-resort landing page.
const AccountPage = "/settings/account"

var pagePermissions = map[string]Requirement{
	"/dashboards/analytics":      PermAnalytics,
	"/orders/list":               PermOrders,
	"/products/list":             PermProducts,
	"/customers/list":            PermCustomers,
	"/settings/categories":       PermCategories,
	"/settings/buildings":        PermBuildings,
	"/settings/apartments":       PermApartments,
	"/settings/users":            PermAccounts,
	"/settings/roles":            PermRoles,
	"/settings/permissions":      PermPermissions,
	"/settings/role-permissions": PermPolicies,
	"/settings/domains":          PermResources,
}

type NavItem struct {
	Title    string       `json:"title"`
	Path     string       `json:"path"`
	Required *Requirement `json:"required,omitempty"`
}

type NavSection struct {
	Title string    `json:"title"`
	Items []NavItem `json:"items"`
}

var navigation = []NavSection{
	{Title: "Dashboards", Items: []NavItem{
		{Title: "Analytics", Path: "/dashboards/analytics"},
	}},
	{Title: "Management", Items: []NavItem{
		{Title: "Orders", Path: "/orders/list"},
		{Title: "Products", Path: "/products/list"},
		{Title: "Customers", Path: "/customers/list"},
		{Title: "Categories", Path: "/settings/categories"},
		{Title: "Buildings", Path: "/settings/buildings"},
		{Title: "Apartments", Path: "/settings/apartments"},
	}},
	{Title: "Administration", Items: []NavItem{
		{Title: "Users", Path: "/settings/users"},
		{Title: "Roles", Path: "/settings/roles"},
		{Title: "Permissions", Path: "/settings/permissions"},
		{Title: "Role Permissions", Path: "/settings/role-permissions"},
		{Title: "Domains", Path: "/settings/domains"},
		{Title: "Account", Path: AccountPage},
	}},
}

// PagePermission returns the requirement of a console page, if it has one.
func PagePermission(page string) (Requirement, bool) {
	req, ok := pagePermissions[page]
	return req, ok
}

// PageAllowed reports whether has grants access to page. Pages without a requirement
// and the account page are always allowed.
func PageAllowed(page string, has Permission) bool {
	if page == AccountPage {
		return true
	}
	req, ok := pagePermissions[page]
	if !ok {
		return true
	}
	return has != nil && has(req.Method, req.Path)
}

// Navigation returns the menu filtered by has. Sections left without items are dropped.
func Navigation(has Permission) []NavSection {
	out := make([]NavSection, 0, len(navigation))
	for _, section := range navigation {
		items := make([]NavItem, 0, len(section.Items))
		for _, item := range section.Items {
			if !PageAllowed(item.Path, has) {
				continue
			}
			if req, ok := pagePermissions[item.Path]; ok {
				r := req
				item.Required = &r
			}
			items = append(items, item)
		}
		if len(items) > 0 {
			out = append(out, NavSection{Title: section.Title, Items: items})
		}
	}
	return out
}

// Landing picks where to send a user who may not open current: the first allowed
// page other than current, or the account page.
func Landing(current string, has Permission) string {
	for _, section := range Navigation(has) {
		for _, item := range section.Items {
			if item.Path != "" && item.Path != current {
				return item.Path
			}
		}
	}
	return AccountPage
}
