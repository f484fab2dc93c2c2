package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"retail-admin/database"
	"retail-admin/menu"
	"retail-admin/middleware"
	"retail-admin/models"
	"retail-admin/permission"
	"retail-admin/utils"
)

// SignUp registers a user with the Basic role
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	users := h.collection(database.UsersCollection)
	taken, err := h.emailTaken(r, req.Email, primitive.NilObjectID)
	if err != nil {
		h.Logger.Error("check email", zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error processing request")
		return
	}
	if taken {
		h.ErrorHdlr.HandleConflict(w, "User with this email already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing request")
		return
	}

	now := time.Now()
	newUser := models.User{
		ID:          primitive.NewObjectID(),
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		Email:       strings.ToLower(req.Email),
		Password:    string(hashedPassword),
		Role:        h.BasicRole,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		City:        req.City,
		Status:      models.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := users.InsertOne(r.Context(), newUser); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			h.ErrorHdlr.HandleConflict(w, "User with this email already exists")
			return
		}
		h.Logger.Error("insert user", zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error creating user")
		return
	}

	role, _ := h.findRole(r, newUser.Role)
	h.ResponseHdlr.Created(w, "User created successfully", models.NewUserResponse(newUser, role, language(r)))
}

// Login exchanges credentials for a token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	var user models.User
	err := h.collection(database.UsersCollection).
		FindOne(r.Context(), bson.M{"email": strings.ToLower(req.Email)}).
		Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.ErrorHdlr.HandleUnauthorized(w, "Invalid email or password")
			return
		}
		h.Logger.Error("find user for login", zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error finding user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.ErrorHdlr.HandleUnauthorized(w, "Invalid email or password")
		return
	}
	if user.Status == models.UserStatusBlocked {
		h.ErrorHdlr.HandleForbidden(w, "This account is blocked")
		return
	}

	token, err := utils.GenerateJWT(h.JWTSecret, user.ID.Hex(), user.Role.Hex(), h.JWTTTL)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error generating token")
		return
	}

	role, _ := h.findRole(r, user.Role)
	h.ResponseHdlr.Success(w, "Login successful", models.LoginResponse{
		Token: token,
		User:  models.NewUserResponse(user, role, language(r)),
	})
}

// Me returns the caller with the codes their role holds
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	user, ok := h.loadUser(w, r, userID)
	if !ok {
		return
	}

	role, _ := h.findRole(r, user.Role)
	h.ResponseHdlr.Success(w, "User fetched successfully", models.MeResponse{
		User:        models.NewUserResponse(user, role, language(r)),
		Permissions: middleware.HeldFromContext(r.Context()).Codes(),
	})
}

// UpdateMe edits the caller's own profile
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var req models.UpdateMeRequest
	if !h.decode(w, r, &req) {
		return
	}

	update := bson.M{}
	for field, value := range map[string]string{
		"firstName":   req.FirstName,
		"middleName":  req.MiddleName,
		"lastName":    req.LastName,
		"phoneNumber": req.PhoneNumber,
		"address":     req.Address,
		"city":        req.City,
		"avatar":      req.Avatar,
	} {
		if value != "" {
			update[field] = value
		}
	}
	if len(update) == 0 {
		h.ErrorHdlr.HandleBadRequest(w, "No fields to update provided")
		return
	}
	update["updatedAt"] = time.Now()

	result, err := h.collection(database.UsersCollection).UpdateOne(r.Context(), bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		h.Logger.Error("update profile", zap.String("user", userID.Hex()), zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error updating profile")
		return
	}
	if result.MatchedCount == 0 {
		h.ErrorHdlr.HandleNotFound(w, "User not found")
		return
	}

	user, ok := h.loadUser(w, r, userID)
	if !ok {
		return
	}
	role, _ := h.findRole(r, user.Role)
	h.ResponseHdlr.Success(w, "Profile updated successfully", models.NewUserResponse(user, role, language(r)))
}

// ChangePassword replaces the caller's password after checking the
// current one
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, ok := h.loadUser(w, r, userID)
	if !ok {
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		h.ErrorHdlr.HandleBadRequest(w, "Current password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error processing password")
		return
	}
	_, err = h.collection(database.UsersCollection).UpdateOne(r.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": string(hashedPassword), "updatedAt": time.Now()}})
	if err != nil {
		h.Logger.Error("change password", zap.String("user", userID.Hex()), zap.Error(err))
		h.ErrorHdlr.HandleInternalError(w, "Error changing password")
		return
	}

	h.ResponseHdlr.Success(w, "Password changed successfully", map[string]string{"id": userID.Hex()})
}

// callerID reads the authenticated user's id from the token claims.
func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.ErrorHdlr.HandleUnauthorized(w, "Invalid token claims")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		h.ErrorHdlr.HandleUnauthorized(w, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// MyPermissions resolves ?key=<capability path>&actions=VIEW,UPDATE for the
// caller. Omitted actions mean all four.
func (h *Handler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		h.ErrorHdlr.HandleBadRequest(w, "Query parameter key is required")
		return
	}
	actions, err := permission.ParseActions(r.URL.Query().Get("actions"))
	if err != nil {
		h.ErrorHdlr.HandleBadRequest(w, err.Error())
		return
	}

	held := middleware.HeldFromContext(r.Context())
	h.ResponseHdlr.Success(w, "Permissions resolved", models.ResolvedPermissionsResponse{
		Key:     key,
		Actions: permission.Resolve(h.Catalog, key, actions, held),
	})
}

// MyMenu returns the caller's sidebar. ?path= tracks the active route and
// opens its branch; ?open= marks a manually expanded node key.
func (h *Handler) MyMenu(w http.ResponseWriter, r *http.Request) {
	held := middleware.HeldFromContext(r.Context())
	visible := menu.Filter(h.Menu, held.MenuGrants())
	if visible == nil {
		visible = []menu.Node{}
	}

	activePath := r.URL.Query().Get("path")
	open, ok := menu.Track(visible, activePath)
	if !ok {
		open = menu.OpenState{}
	}
	if key := r.URL.Query().Get("open"); key != "" {
		if _, found := menu.Find(visible, key); found {
			open = menu.OpenState{key: !open[key]}
		}
	}

	items := menu.Walk(visible, activePath, open)
	if items == nil {
		items = []menu.Descriptor{}
	}
	h.ResponseHdlr.Success(w, "Menu fetched successfully", models.MenuResponse{
		ActivePath: activePath,
		Open:       open,
		Items:      items,
		Tree:       visible,
	})
}

// ListPermissionCodes lists the codes a role can be granted
func (h *Handler) ListPermissionCodes(w http.ResponseWriter, r *http.Request) {
	h.ResponseHdlr.Success(w, "Permissions fetched successfully", models.PermissionCodesResponse{
		Codes: h.Catalog.Codes(permission.Admin, permission.Basic),
	})
}
