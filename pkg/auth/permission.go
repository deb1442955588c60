package auth

import "strings"

// WildcardMethod grants a path for every HTTP method.
const WildcardMethod = "*"

// Permission is a grant returned by the identity service for an account.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
	Action      string `json:"action"`
}

// Key renders the grant as "<METHOD> <path>", the form the permission set is matched on.
func (p Permission) Key() string {
	return PermissionKey(p.Action, p.Path)
}

func PermissionKey(method, path string) string {
	return strings.TrimSpace(method) + " " + strings.TrimSpace(path)
}
