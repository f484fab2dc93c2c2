package services

import (
	"context"
	"net/http"

	"retail-admin/models"
)

// AuthService wraps the signup and self-service endpoints.
type AuthService struct{ c *Client }

// Auth returns the auth service.
func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

// Register signs up a new account.
func (s *AuthService) Register(ctx context.Context, req models.CreateUserRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPost, "/auth/signup", nil, req)
}

// Me fetches the caller with their held codes.
func (s *AuthService) Me(ctx context.Context) (Response, error) {
	return s.c.do(ctx, http.MethodGet, "/auth/me", nil, nil)
}

// UpdateMe edits the caller's profile.
func (s *AuthService) UpdateMe(ctx context.Context, req models.UpdateMeRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPut, "/auth/me", nil, req)
}

// ChangePassword replaces the caller's password.
func (s *AuthService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (Response, error) {
	return s.c.do(ctx, http.MethodPatch, "/auth/change-password", nil, req)
}
