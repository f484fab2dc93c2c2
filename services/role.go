package services

import (
	"context"
	"net/http"
	"net/url"

	"retail-admin/models"
)

// RoleService wraps the /roles endpoints.
type RoleService struct{ c *Client }

// List fetches one page of roles.
func (s *RoleService) List(ctx context.Context, p ListParams) (Response, error) {
	return s.c.do(ctx, http.MethodGet, "/roles", p.Values(), nil)
}

// Get fetches one role.
func (s *RoleService) Get(ctx context.Context, id string) (Response, error) {
	return s.c.do(ctx, http.MethodGet, "/roles/"+url.PathEscape(id), nil, nil)
}

// Create adds a role.
func (s *RoleService) Create(ctx context.Context, req models.CreateRoleRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPost, "/roles", nil, req)
}

// Update edits the role with the given id.
func (s *RoleService) Update(ctx context.Context, id string, req models.UpdateRoleRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPut, "/roles/"+url.PathEscape(id), nil, req)
}

// Delete removes one role.
func (s *RoleService) Delete(ctx context.Context, id string) (Response, error) {
	return s.c.do(ctx, http.MethodDelete, "/roles/"+url.PathEscape(id), nil, nil)
}
