package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"retail-admin/database"
	"retail-admin/models"
	"retail-admin/permission"
	"retail-admin/utils"
)

var roleSortFields = map[string]string{
	"name":      "name",
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
}

// ListRoles returns a page of roles filtered by ?search= on the name
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, limit := pagination(r, 10)

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["$or"] = regexAny(search, "name")
	}

	roles := h.collection(database.RolesCollection)
	total, err := roles.CountDocuments(ctx, filter)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error counting roles")
		return
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(sortOrder(r.URL.Query().Get("order"), roleSortFields, bson.D{{Key: "createdAt", Value: -1}}))
	cursor, err := roles.Find(ctx, filter, opts)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error fetching roles")
		return
	}
	defer cursor.Close(ctx)

	items := []models.Role{}
	if err := cursor.All(ctx, &items); err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing roles data")
		return
	}
	for i := range items {
		if items[i].Permissions == nil {
			items[i].Permissions = []string{}
		}
	}

	h.ResponseHdlr.Paginated(w, "Roles fetched successfully", items, page, limit, int(total))
}

// GetRole returns one role
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	objID, ok := h.pathID(w, r, "role")
	if !ok {
		return
	}
	role, err := h.findRole(r, objID)
	if err != nil {
		h.roleLookupError(w, err)
		return
	}
	h.ResponseHdlr.Success(w, "Role fetched successfully", role)
}

// CreateRole stores a role after checking its codes against the catalog
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if msg := h.checkGrantable(req.Permissions); msg != "" {
		h.ErrorHdlr.HandleValidationError(w, []utils.ErrorDetail{{Field: "permissions", Message: msg}})
		return
	}

	now := time.Now()
	role := models.Role{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Permissions: dedupe(req.Permissions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := h.collection(database.RolesCollection).InsertOne(r.Context(), role); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "Role name already exists")
			return
		}
		h.Logger.Error("insert role", zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error creating role")
		return
	}

	h.ResponseHdlr.Created(w, "Role created successfully", role)
}

// UpdateRole renames a role or replaces its codes. The Admin role is fixed.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	objID, ok := h.pathID(w, r, "role")
	if !ok {
		return
	}
	var req models.UpdateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	current, err := h.findRole(r, objID)
	if err != nil {
		h.roleLookupError(w, err)
		return
	}
	if permission.NewHeldSet(current.Permissions).IsAdmin() {
		h.ErrorHdlr.HandleForbidden(w, "The admin role cannot be edited")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Permissions != nil {
		if msg := h.checkGrantable(req.Permissions); msg != "" {
			h.ErrorHdlr.HandleValidationError(w, []utils.ErrorDetail{{Field: "permissions", Message: msg}})
			return
		}
		update["permissions"] = dedupe(req.Permissions)
	}

	roles := h.collection(database.RolesCollection)
	if _, err := roles.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "Role name already exists")
			return
		}
		h.ErrorHdlr.HandleInternalError(w, "Error updating role")
		return
	}
	h.invalidateRole(ctx, objID)

	updated, err := h.findRole(r, objID)
	if err != nil {
		h.roleLookupError(w, err)
		return
	}
	h.ResponseHdlr.Success(w, "Role updated successfully", updated)
}

// DeleteRole removes a role no user is assigned to. The Admin role is fixed.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	objID, ok := h.pathID(w, r, "role")
	if !ok {
		return
	}

	current, err := h.findRole(r, objID)
	if err != nil {
		h.roleLookupError(w, err)
		return
	}
	if permission.NewHeldSet(current.Permissions).IsAdmin() {
		h.ErrorHdlr.HandleForbidden(w, "The admin role cannot be deleted")
		return
	}

	inUse, err := h.collection(database.UsersCollection).CountDocuments(ctx, bson.M{"role": objID})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error checking role usage")
		return
	}
	if inUse > 0 {
		h.ErrorHdlr.HandleBadRequest(w, fmt.Sprintf("Role is assigned to %d users", inUse))
		return
	}

	result, err := h.collection(database.RolesCollection).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error deleting role")
		return
	}
	if result.DeletedCount == 0 {
		h.ErrorHdlr.HandleNotFound(w, "Role not found")
		return
	}
	h.invalidateRole(ctx, objID)

	h.ResponseHdlr.Success(w, "Role successfully deleted", models.NewRoleResponse(*current))
}

// checkGrantable returns a message for the first code that is not a
// grantable catalog code.
func (h *Handler) checkGrantable(codes []string) string {
	for _, code := range codes {
		if code == permission.Admin {
			return "The admin permission cannot be granted"
		}
		if !h.Catalog.Contains(code) {
			return fmt.Sprintf("Unknown permission %q", code)
		}
	}
	return ""
}

func (h *Handler) invalidateRole(ctx context.Context, id primitive.ObjectID) {
	if h.Roles != nil {
		h.Roles.Invalidate(ctx, id.Hex())
	}
}

func (h *Handler) findRole(r *http.Request, id primitive.ObjectID) (*models.Role, error) {
	var role models.Role
	err := h.collection(database.RolesCollection).FindOne(r.Context(), bson.M{"_id": id}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return &role, nil
}

// rolesByID loads every role referenced by ids in one query.
func (h *Handler) rolesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Role, error) {
	out := make(map[primitive.ObjectID]models.Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := h.collection(database.RolesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	for _, role := range roles {
		out[role.ID] = role
	}
	return out, nil
}

func (h *Handler) roleLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrRoleNotFound) {
		h.ErrorHdlr.HandleNotFound(w, "Role not found")
		return
	}
	h.Logger.Error("find role", zap.Error(err))
	h.ErrorHdlr.HandleInternalError(w, "Error finding role")
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
