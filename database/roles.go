package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"retail-admin/cache"
	"retail-admin/models"
	"retail-admin/permission"
)

// Built-in role names seeded on startup
const (
	AdminRoleName = "Admin"
	BasicRoleName = "Basic"
)

var (
	// ErrRoleNotFound is returned when a role id matches no document.
	ErrRoleNotFound = errors.New("role not found")
	// ErrUserNotFound is returned when a user id matches no document.
	ErrUserNotFound = errors.New("user not found")
)

// UserAccess is what the guard needs from a user record on every request.
type UserAccess struct {
	RoleID string `json:"role"`
	Status int    `json:"status"`
}

// Blocked reports whether the account may no longer act.
func (a UserAccess) Blocked() bool { return a.Status == models.UserStatusBlocked }

// RoleStore reads user access and role permissions with a Redis cache in
// front of Mongo.
type RoleStore struct {
	roles  *mongo.Collection
	users  *mongo.Collection
	ttl    time.Duration
	logger *zap.Logger
}

func NewRoleStore(db *mongo.Database, logger *zap.Logger) *RoleStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleStore{
		roles:  db.Collection(RolesCollection),
		users:  db.Collection(UsersCollection),
		ttl:    15 * time.Minute,
		logger: logger,
	}
}

// Permissions returns the codes held by the role with the given hex id.
func (s *RoleStore) Permissions(ctx context.Context, roleID string) ([]string, error) {
	key := fmt.Sprintf(cache.RolePermissionsPattern, roleID)

	var codes []string
	err := cache.GetCache(ctx, key, &codes)
	if err == nil {
		return codes, nil
	}
	if !cache.IsMiss(err) {
		s.logger.Warn("role permission cache read failed", zap.String("role", roleID), zap.Error(err))
	}

	objID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return nil, fmt.Errorf("role id %q: %w", roleID, ErrRoleNotFound)
	}

	var role models.Role
	err = s.roles.FindOne(ctx, bson.M{"_id": objID}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("role %s: %w", roleID, ErrRoleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find role %s: %w", roleID, err)
	}

	codes = role.Permissions
	if codes == nil {
		codes = []string{}
	}
	if err := cache.SetCache(ctx, key, codes, s.ttl); err != nil && !cache.IsMiss(err) {
		s.logger.Warn("role permission cache write failed", zap.String("role", roleID), zap.Error(err))
	}
	return codes, nil
}

// Invalidate drops the cached codes of a role after it changes.
func (s *RoleStore) Invalidate(ctx context.Context, roleID string) {
	key := fmt.Sprintf(cache.RolePermissionsPattern, roleID)
	if err := cache.DeleteCache(ctx, key); err != nil && !cache.IsMiss(err) {
		s.logger.Warn("role permission cache invalidation failed", zap.String("role", roleID), zap.Error(err))
	}
}

// UserAccess returns the current role and status of the user with the
// given hex id. Tokens only identify the user; the role they carry may be
// outdated.
func (s *RoleStore) UserAccess(ctx context.Context, userID string) (UserAccess, error) {
	key := fmt.Sprintf(cache.UserAccessPattern, userID)

	var access UserAccess
	err := cache.GetCache(ctx, key, &access)
	if err == nil {
		return access, nil
	}
	if !cache.IsMiss(err) {
		s.logger.Warn("user access cache read failed", zap.String("user", userID), zap.Error(err))
	}

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return UserAccess{}, fmt.Errorf("user id %q: %w", userID, ErrUserNotFound)
	}

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return UserAccess{}, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return UserAccess{}, fmt.Errorf("find user %s: %w", userID, err)
	}

	access = UserAccess{RoleID: user.Role.Hex(), Status: user.Status}
	if err := cache.SetCache(ctx, key, access, s.ttl); err != nil && !cache.IsMiss(err) {
		s.logger.Warn("user access cache write failed", zap.String("user", userID), zap.Error(err))
	}
	return access, nil
}

// InvalidateUsers drops the cached access of users after their role or
// status changes or they are deleted.
func (s *RoleStore) InvalidateUsers(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = fmt.Sprintf(cache.UserAccessPattern, id)
	}
	if err := cache.DeleteCache(ctx, keys...); err != nil && !cache.IsMiss(err) {
		s.logger.Warn("user access cache invalidation failed", zap.Strings("users", userIDs), zap.Error(err))
	}
}

// SeedRoles makes sure the Admin and Basic roles exist and returns the id
// of the Basic role, which signups receive.
func SeedRoles(ctx context.Context, db *mongo.Database) (primitive.ObjectID, error) {
	roles := db.Collection(RolesCollection)
	var basicID primitive.ObjectID

	for name, code := range map[string]string{
		AdminRoleName: permission.Admin,
		BasicRoleName: permission.Basic,
	} {
		var existing models.Role
		err := roles.FindOne(ctx, bson.M{"name": name}).Decode(&existing)
		switch {
		case err == nil:
		case errors.Is(err, mongo.ErrNoDocuments):
			now := time.Now()
			existing = models.Role{
				ID:          primitive.NewObjectID(),
				Name:        name,
				Permissions: []string{code},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if _, err := roles.InsertOne(ctx, existing); err != nil {
				return primitive.NilObjectID, fmt.Errorf("seed role %s: %w", name, err)
			}
		default:
			return primitive.NilObjectID, fmt.Errorf("find role %s: %w", name, err)
		}
		if name == BasicRoleName {
			basicID = existing.ID
		}
	}
	return basicID, nil
}
