package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role groups permission codes and is attached to users
type Role struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Permissions []string           `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RoleResponse is the role as embedded in user responses
type RoleResponse struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Permissions []string           `json:"permissions"`
}

func NewRoleResponse(r Role) RoleResponse {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return RoleResponse{ID: r.ID, Name: r.Name, Permissions: perms}
}

// CreateRoleRequest is used for role creation
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Permissions []string `json:"permissions,omitempty" validate:"omitempty,dive,required"`
}

// UpdateRoleRequest is used for role updates. A nil Permissions keeps the
// current set; an empty one clears it.
type UpdateRoleRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}
