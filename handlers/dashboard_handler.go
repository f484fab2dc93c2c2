package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"retail-admin/database"
	"retail-admin/models"
)

// DashboardResponse holds the record counts shown on the dashboard
type DashboardResponse struct {
	Users             int64 `json:"users"`
	Roles             int64 `json:"roles"`
	Products          int64 `json:"products"`
	PublishedProducts int64 `json:"publishedProducts"`
}

// GetDashboard counts the main collections concurrently
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	var resp DashboardResponse

	count := func(dst *int64, coll string, filter bson.M) {
		g.Go(func() error {
			n, err := h.collection(coll).CountDocuments(ctx, filter)
			*dst = n
			return err
		})
	}
	count(&resp.Users, database.UsersCollection, bson.M{})
	count(&resp.Roles, database.RolesCollection, bson.M{})
	count(&resp.Products, database.ProductsCollection, bson.M{})
	count(&resp.PublishedProducts, database.ProductsCollection, bson.M{"status": models.ProductStatusPublished})

	if err := g.Wait(); err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error loading dashboard")
		return
	}
	h.ResponseHdlr.Success(w, "Dashboard fetched successfully", resp)
}
