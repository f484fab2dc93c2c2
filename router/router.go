package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"retail-admin/handlers"
	"retail-admin/middleware"
	"retail-admin/permission"
)

// Capability paths gating the REST resources
const (
	UserCapability    = "SYSTEM.USER"
	RoleCapability    = "SYSTEM.ROLE"
	ProductCapability = "MANAGE_PRODUCT.PRODUCT"
)

// SetupRoutes mounts the public auth routes and the guarded resources.
// Protected routes are mounted under explicit prefixes so an unknown path
// is a 404 for everyone.
func SetupRoutes(h *handlers.Handler, guard *middleware.Guard) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(h.Logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ErrorHdlr.HandleNotFound(w, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ErrorHdlr.HandleError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public routes (no authentication required)
	router.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	// Protected routes that require authentication
	protected := func(prefix string) *mux.Router {
		sub := router.PathPrefix(prefix).Subrouter()
		sub.Use(middleware.AuthMiddleware(h.JWTSecret, h.ErrorHdlr))
		sub.Use(guard.LoadPermissions)
		return sub
	}

	me := protected("/auth/me")
	me.HandleFunc("", h.Me).Methods(http.MethodGet)
	me.HandleFunc("", h.UpdateMe).Methods(http.MethodPut)
	me.HandleFunc("/menu", h.MyMenu).Methods(http.MethodGet)
	me.HandleFunc("/permissions", h.MyPermissions).Methods(http.MethodGet)

	protected("/auth/change-password").HandleFunc("", h.ChangePassword).Methods(http.MethodPatch)

	protected("/dashboard").Handle("",
		guard.RequirePage(permission.Dashboard)(http.HandlerFunc(h.GetDashboard))).Methods(http.MethodGet)

	protected("/permissions").Handle("",
		guard.Handle(RoleCapability, permission.View, h.ListPermissionCodes)).Methods(http.MethodGet)

	// User management routes; delete-many is registered before /{id}
	users := protected("/users")
	users.Handle("", guard.Handle(UserCapability, permission.View, h.GetUsers)).Methods(http.MethodGet)
	users.Handle("", guard.Handle(UserCapability, permission.Create, h.CreateUser)).Methods(http.MethodPost)
	users.Handle("/delete-many", guard.Handle(UserCapability, permission.Delete, h.DeleteUsers)).Methods(http.MethodDelete)
	users.Handle("/{id}", guard.Handle(UserCapability, permission.View, h.GetUserDetails)).Methods(http.MethodGet)
	users.Handle("/{id}", guard.Handle(UserCapability, permission.Update, h.UpdateUser)).Methods(http.MethodPut)
	users.Handle("/{id}", guard.Handle(UserCapability, permission.Delete, h.DeleteUser)).Methods(http.MethodDelete)

	// Role management routes
	roles := protected("/roles")
	roles.Handle("", guard.Handle(RoleCapability, permission.View, h.ListRoles)).Methods(http.MethodGet)
	roles.Handle("", guard.Handle(RoleCapability, permission.Create, h.CreateRole)).Methods(http.MethodPost)
	roles.Handle("/{id}", guard.Handle(RoleCapability, permission.View, h.GetRole)).Methods(http.MethodGet)
	roles.Handle("/{id}", guard.Handle(RoleCapability, permission.Update, h.UpdateRole)).Methods(http.MethodPut)
	roles.Handle("/{id}", guard.Handle(RoleCapability, permission.Delete, h.DeleteRole)).Methods(http.MethodDelete)

	// Product routes
	products := protected("/products")
	products.Handle("", guard.Handle(ProductCapability, permission.View, h.GetProducts)).Methods(http.MethodGet)
	products.Handle("", guard.Handle(ProductCapability, permission.Create, h.CreateProduct)).Methods(http.MethodPost)
	products.Handle("/{id}", guard.Handle(ProductCapability, permission.View, h.GetProductDetails)).Methods(http.MethodGet)
	products.Handle("/{id}", guard.Handle(ProductCapability, permission.Update, h.UpdateProduct)).Methods(http.MethodPut)
	products.Handle("/{id}", guard.Handle(ProductCapability, permission.Delete, h.DeleteProduct)).Methods(http.MethodDelete)

	return router
}
