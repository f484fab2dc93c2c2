package services

import (
	"context"
	"net/http"
	"net/url"

	"retail-admin/models"
)

// UserService wraps the /users endpoints.
type UserService struct{ c *Client }

// List fetches one page of users.
func (s *UserService) List(ctx context.Context, p ListParams) (Response, error) {
	return s.c.do(ctx, http.MethodGet, "/users", p.Values(), nil)
}

// Get fetches one user.
func (s *UserService) Get(ctx context.Context, id string) (Response, error) {
	return s.c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil)
}

// Create adds a user.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPost, "/users", nil, req)
}

// Update edits the user with the given id.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, req)
}

// Delete removes one user.
func (s *UserService) Delete(ctx context.Context, id string) (Response, error) {
	return s.c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

// DeleteMany removes a selection of users.
func (s *UserService) DeleteMany(ctx context.Context, ids []string) (Response, error) {
	return s.c.do(ctx, http.MethodDelete, "/users/delete-many", nil, models.DeleteUsersRequest{UserIDs: ids})
}
