package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"retail-admin/database"
	"retail-admin/models"
	"retail-admin/permission"
)

var userSortFields = map[string]string{
	"email":     "email",
	"firstName": "firstName",
	"lastName":  "lastName",
	"fullName":  "firstName",
	"createdAt": "createdAt",
	"status":    "status",
}

// GetUsers returns a page of users. Query: search, order, roleId, status.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, limit := pagination(r, 10)

	filter := bson.M{}
	if search := q.Get("search"); search != "" {
		filter["$or"] = regexAny(search, "firstName", "middleName", "lastName", "email")
	}
	if roleID := q.Get("roleId"); roleID != "" {
		var ids []primitive.ObjectID
		for _, part := range strings.Split(roleID, "|") {
			id, err := primitive.ObjectIDFromHex(part)
			if err != nil {
				h.ErrorHdlr.HandleBadRequest(w, "Invalid roleId")
				return
			}
			ids = append(ids, id)
		}
		filter["role"] = bson.M{"$in": ids}
	}
	if status := q.Get("status"); status != "" {
		s, err := strconv.Atoi(status)
		if err != nil {
			h.ErrorHdlr.HandleBadRequest(w, "Invalid status")
			return
		}
		filter["status"] = s
	}

	users := h.collection(database.UsersCollection)
	total, err := users.CountDocuments(ctx, filter)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error counting users")
		return
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(sortOrder(q.Get("order"), userSortFields, bson.D{{Key: "createdAt", Value: -1}}))
	cursor, err := users.Find(ctx, filter, opts)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error fetching users")
		return
	}
	defer cursor.Close(ctx)

	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing users data")
		return
	}

	roleIDs := make([]primitive.ObjectID, 0, len(found))
	for _, u := range found {
		roleIDs = append(roleIDs, u.Role)
	}
	roles, err := h.rolesByID(ctx, roleIDs)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error fetching roles")
		return
	}

	lang := language(r)
	items := make([]models.UserResponse, 0, len(found))
	for _, u := range found {
		var role *models.Role
		if rl, ok := roles[u.Role]; ok {
			role = &rl
		}
		items = append(items, models.NewUserResponse(u, role, lang))
	}

	h.ResponseHdlr.Paginated(w, "Users fetched successfully", items, page, limit, int(total))
}

// GetUserDetails returns one user with the role expanded
func (h *Handler) GetUserDetails(w http.ResponseWriter, r *http.Request) {
	objID, ok := h.pathID(w, r, "user")
	if !ok {
		return
	}
	user, ok := h.loadUser(w, r, objID)
	if !ok {
		return
	}
	role, _ := h.findRole(r, user.Role)
	h.ResponseHdlr.Success(w, "User details fetched successfully", models.NewUserResponse(user, role, language(r)))
}

// CreateUser adds a user from the console. An omitted role means Basic.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	roleID := h.BasicRole
	if req.Role != "" {
		roleID, _ = primitive.ObjectIDFromHex(req.Role)
	}
	role, err := h.findRole(r, roleID)
	if errors.Is(err, database.ErrRoleNotFound) {
		h.ErrorHdlr.HandleBadRequest(w, "Role does not exist")
		return
	}
	if err != nil {
		h.roleLookupError(w, err)
		return
	}

	taken, err := h.emailTaken(r, req.Email, primitive.NilObjectID)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error checking email")
		return
	}
	if taken {
		h.ErrorHdlr.HandleConflict(w, "User with this email already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing password")
		return
	}

	status := models.UserStatusActive
	if req.Status != nil {
		status = *req.Status
	}
	now := time.Now()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Email:       strings.ToLower(req.Email),
		Password:    string(hashedPassword),
		Role:        role.ID,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		City:        req.City,
		Avatar:      req.Avatar,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := h.collection(database.UsersCollection).InsertOne(r.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "User with this email already exists")
			return
		}
		h.Logger.Error("insert user", zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error creating user")
		return
	}

	h.ResponseHdlr.Created(w, "User created successfully", models.NewUserResponse(user, role, language(r)))
}

// UpdateUser applies the provided fields
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	objID, ok := h.pathID(w, r, "user")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	update := bson.M{}
	setIf := func(field, value string) {
		if value != "" {
			update[field] = value
		}
	}
	setIf("firstName", req.FirstName)
	setIf("middleName", req.MiddleName)
	setIf("lastName", req.LastName)
	setIf("phoneNumber", req.PhoneNumber)
	setIf("address", req.Address)
	setIf("city", req.City)
	setIf("avatar", req.Avatar)
	if req.Status != nil {
		update["status"] = *req.Status
	}

	if req.Email != "" {
		taken, err := h.emailTaken(r, req.Email, objID)
		if err != nil {
			h.ErrorHdlr.HandleInternalError(w, "Error checking email")
			return
		}
		if taken {
			h.ErrorHdlr.HandleConflict(w, "User with this email already exists")
			return
		}
		update["email"] = strings.ToLower(req.Email)
	}
	if req.Role != "" {
		roleID, _ := primitive.ObjectIDFromHex(req.Role)
		if _, err := h.findRole(r, roleID); err != nil {
			if errors.Is(err, database.ErrRoleNotFound) {
				h.ErrorHdlr.HandleBadRequest(w, "Role does not exist")
				return
			}
			h.roleLookupError(w, err)
			return
		}
		update["role"] = roleID
	}
	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.ErrorHdlr.HandleInternalError(w, "Error processing password")
			return
		}
		update["password"] = string(hashedPassword)
	}

	if len(update) == 0 {
		h.ErrorHdlr.HandleBadRequest(w, "No fields to update provided")
		return
	}
	update["updatedAt"] = time.Now()

	result, err := h.collection(database.UsersCollection).UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "User with this email already exists")
			return
		}
		h.ErrorHdlr.HandleInternalError(w, "Error updating user")
		return
	}
	if result.MatchedCount == 0 {
		h.ErrorHdlr.HandleNotFound(w, "User not found")
		return
	}
	h.invalidateUsers(ctx, objID)

	user, ok := h.loadUser(w, r, objID)
	if !ok {
		return
	}
	role, _ := h.findRole(r, user.Role)
	h.ResponseHdlr.Success(w, "User updated successfully", models.NewUserResponse(user, role, language(r)))
}

// DeleteUser removes one user. Admin accounts cannot be deleted.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	objID, ok := h.pathID(w, r, "user")
	if !ok {
		return
	}
	user, ok := h.loadUser(w, r, objID)
	if !ok {
		return
	}
	admin, err := h.anyAdmin(r, []models.User{user})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error checking user role")
		return
	}
	if admin {
		h.ErrorHdlr.HandleForbidden(w, "Admin accounts cannot be deleted")
		return
	}

	result, err := h.collection(database.UsersCollection).DeleteOne(r.Context(), bson.M{"_id": objID})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error deleting user")
		return
	}
	if result.DeletedCount == 0 {
		h.ErrorHdlr.HandleNotFound(w, "User not found")
		return
	}
	h.invalidateUsers(r.Context(), objID)

	h.ResponseHdlr.Success(w, "User successfully deleted", map[string]string{"id": objID.Hex()})
}

// DeleteUsers removes a selection of users. The whole request is refused
// when any selected user holds the Admin code.
func (h *Handler) DeleteUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.DeleteUsersRequest
	if !h.decode(w, r, &req) {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			h.ErrorHdlr.HandleBadRequest(w, "Invalid user ID")
			return
		}
		ids = append(ids, objID)
	}

	users := h.collection(database.UsersCollection)
	cursor, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error fetching users")
		return
	}
	var selected []models.User
	if err := cursor.All(ctx, &selected); err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing users data")
		return
	}
	if len(selected) == 0 {
		h.ErrorHdlr.HandleNotFound(w, "Users not found")
		return
	}

	admin, err := h.anyAdmin(r, selected)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error checking user roles")
		return
	}
	if admin {
		h.ErrorHdlr.HandleForbidden(w, "Admin accounts cannot be deleted")
		return
	}

	result, err := users.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error deleting users")
		return
	}
	h.invalidateUsers(ctx, ids...)

	h.ResponseHdlr.Success(w, "Users successfully deleted", map[string]int64{"deletedCount": result.DeletedCount})
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (models.User, bool) {
	var user models.User
	err := h.collection(database.UsersCollection).FindOne(r.Context(), bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrorHdlr.HandleNotFound(w, "User not found")
		} else {
			h.ErrorHdlr.HandleInternalError(w, "Error finding user")
		}
		return models.User{}, false
	}
	return user, true
}

// invalidateUsers drops the cached role and status the guard reads for ids.
func (h *Handler) invalidateUsers(ctx context.Context, ids ...primitive.ObjectID) {
	if h.Roles == nil || len(ids) == 0 {
		return
	}
	hex := make([]string, len(ids))
	for i, id := range ids {
		hex[i] = id.Hex()
	}
	h.Roles.InvalidateUsers(ctx, hex...)
}

// emailTaken reports whether another user than self uses email.
func (h *Handler) emailTaken(r *http.Request, email string, self primitive.ObjectID) (bool, error) {
	filter := bson.M{"email": strings.ToLower(email)}
	if !self.IsZero() {
		filter["_id"] = bson.M{"$ne": self}
	}
	n, err := h.collection(database.UsersCollection).CountDocuments(r.Context(), filter, options.Count().SetLimit(1))
	return n > 0, err
}

// anyAdmin reports whether any of users has a role holding the Admin code.
func (h *Handler) anyAdmin(r *http.Request, users []models.User) (bool, error) {
	ids := make([]primitive.ObjectID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.Role)
	}
	roles, err := h.rolesByID(r.Context(), ids)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if permission.NewHeldSet(role.Permissions).IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}
