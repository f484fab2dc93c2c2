package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RequirePage admits callers holding any of the page's codes, counting the
// basic grants for Basic holders. A page with no codes is open to every
// authenticated caller.
func (g *Guard) RequirePage(codes ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			held := HeldFromContext(r.Context())
			if !held.HasAny(codes...) && !held.MenuGrants().HasAny(codes...) {
				g.errs.HandleForbidden(w, "Forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
