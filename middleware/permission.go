package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"retail-admin/database"
	"retail-admin/permission"
	"retail-admin/utils"
)

// PermissionSource resolves a user to their current role and the role to
// the codes it holds.
type PermissionSource interface {
	UserAccess(ctx context.Context, userID string) (database.UserAccess, error)
	Permissions(ctx context.Context, roleID string) ([]string, error)
}

// Guard loads the caller's held codes and gates routes on them.
type Guard struct {
	catalog *permission.Catalog
	source  PermissionSource
	errs    *utils.ErrorHandler
	logger  *zap.Logger
}

func NewGuard(catalog *permission.Catalog, source PermissionSource, errs *utils.ErrorHandler, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{catalog: catalog, source: source, errs: errs, logger: logger}
}

// LoadPermissions runs after AuthMiddleware. The role is read from the
// user's current record, so a reassignment or a block takes effect on the
// next request. A role that no longer exists leaves the caller holding
// nothing.
func (g *Guard) LoadPermissions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			g.errs.HandleUnauthorized(w, "Invalid token claims")
			return
		}

		access, err := g.source.UserAccess(r.Context(), claims.UserID)
		if errors.Is(err, database.ErrUserNotFound) {
			g.errs.HandleUnauthorized(w, "Account no longer exists")
			return
		}
		if err != nil {
			g.logger.Error("load user access", zap.String("user", claims.UserID), zap.Error(err))
			g.errs.HandleInternalError(w, "Error loading permissions")
			return
		}
		if access.Blocked() {
			g.errs.HandleForbidden(w, "This account is blocked")
			return
		}

		codes, err := g.source.Permissions(r.Context(), access.RoleID)
		if err != nil && !errors.Is(err, database.ErrRoleNotFound) {
			g.logger.Error("load role permissions", zap.String("role", access.RoleID), zap.Error(err))
			g.errs.HandleInternalError(w, "Error loading permissions")
			return
		}
		if err != nil {
			g.logger.Warn("user references a missing role", zap.String("user", claims.UserID), zap.String("role", access.RoleID))
		}

		held := permission.NewHeldSet(codes)
		next.ServeHTTP(w, r.WithContext(WithHeld(r.Context(), held)))
	})
}

// Require admits callers for whom action on capabilityPath resolves true.
func (g *Guard) Require(capabilityPath string, action permission.Action) mux.MiddlewareFunc {
	actions := []permission.Action{action}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			held := HeldFromContext(r.Context())
			if !permission.Resolve(g.catalog, capabilityPath, actions, held).Allowed(action) {
				g.errs.HandleForbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Handle wraps h with Require, for single-route registration.
func (g *Guard) Handle(capabilityPath string, action permission.Action, h http.HandlerFunc) http.Handler {
	return g.Require(capabilityPath, action)(h)
}

// WithHeld stores the caller's held set on ctx.
func WithHeld(ctx context.Context, held permission.HeldSet) context.Context {
	return context.WithValue(ctx, heldKey, held)
}

// HeldFromContext returns the held set loaded by Guard, or the empty set.
func HeldFromContext(ctx context.Context) permission.HeldSet {
	held, _ := ctx.Value(heldKey).(permission.HeldSet)
	return held
}
