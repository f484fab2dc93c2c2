package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"retail-admin/utils"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	heldKey   contextKey = "held"
)

// AuthMiddleware verifies the JWT token in the Authorization header
func AuthMiddleware(secret string, errs *utils.ErrorHandler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errs.HandleUnauthorized(w, "Authorization header is required")
				return
			}

			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
				errs.HandleUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := utils.ParseJWT(secret, bearerToken[1])
			if err != nil {
				errs.HandleUnauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores verified token claims on ctx.
func WithClaims(ctx context.Context, c *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the claims set by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*utils.Claims)
	return c, ok && c != nil
}
