package models

import (
	"retail-admin/menu"
	"retail-admin/permission"
)

// PermissionCodesResponse lists the codes a role may be granted
type PermissionCodesResponse struct {
	Codes []string `json:"codes"`
}

// ResolvedPermissionsResponse answers an action-level gate query
type ResolvedPermissionsResponse struct {
	Key     string                       `json:"key"`
	Actions permission.ResolvedActionSet `json:"actions"`
}

// MenuResponse is the caller's filtered sidebar, tracked against a path
type MenuResponse struct {
	ActivePath string            `json:"activePath,omitempty"`
	Open       menu.OpenState    `json:"open"`
	Items      []menu.Descriptor `json:"items"`
	Tree       []menu.Node       `json:"tree"`
}

// MeResponse is the authenticated user with the codes they hold
type MeResponse struct {
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}
