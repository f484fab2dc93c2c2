package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values
const (
	UserStatusBlocked = 0
	UserStatusActive  = 1
)

// User is the stored user document
type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	FirstName   string             `json:"firstName,omitempty" bson:"firstName"`
	MiddleName  string             `json:"middleName,omitempty" bson:"middleName"`
	LastName    string             `json:"lastName,omitempty" bson:"lastName"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	Role        primitive.ObjectID `json:"role" bson:"role"`
	PhoneNumber string             `json:"phoneNumber,omitempty" bson:"phoneNumber"`
	Address     string             `json:"address,omitempty" bson:"address"`
	City        string             `json:"city,omitempty" bson:"city"`
	Avatar      string             `json:"avatar,omitempty" bson:"avatar"`
	Status      int                `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// FullName joins the name parts in the order the language expects:
// family name first for "vi", given name first otherwise.
func (u User) FullName(language string) string {
	var parts []string
	if language == "vi" {
		parts = []string{u.LastName, u.MiddleName, u.FirstName}
	} else {
		parts = []string{u.FirstName, u.MiddleName, u.LastName}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// UserResponse is a user as returned to the console, with its role expanded
type UserResponse struct {
	ID          primitive.ObjectID `json:"id"`
	FirstName   string             `json:"firstName,omitempty"`
	MiddleName  string             `json:"middleName,omitempty"`
	LastName    string             `json:"lastName,omitempty"`
	FullName    string             `json:"fullName"`
	Email       string             `json:"email"`
	Role        *RoleResponse      `json:"role,omitempty"`
	PhoneNumber string             `json:"phoneNumber,omitempty"`
	Address     string             `json:"address,omitempty"`
	City        string             `json:"city,omitempty"`
	Avatar      string             `json:"avatar,omitempty"`
	Status      int                `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// NewUserResponse strips the password and attaches role
func NewUserResponse(u User, role *Role, language string) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		MiddleName:  u.MiddleName,
		LastName:    u.LastName,
		FullName:    u.FullName(language),
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		City:        u.City,
		Avatar:      u.Avatar,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
	}
	if role != nil {
		r := NewRoleResponse(*role)
		resp.Role = &r
	}
	return resp
}

// CreateUserRequest is used for console user creation and signup
type CreateUserRequest struct {
	FirstName   string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	MiddleName  string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	LastName    string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role,omitempty" validate:"omitempty,len=24,hexadecimal"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,min=8,max=15"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Status      *int   `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}

// UpdateUserRequest is used for user update requests
type UpdateUserRequest struct {
	FirstName   string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	MiddleName  string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	LastName    string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role        string `json:"role,omitempty" validate:"omitempty,len=24,hexadecimal"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,min=8,max=15"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Status      *int   `json:"status,omitempty" validate:"omitempty,oneof=0 1"`
}

// UpdateMeRequest is the profile a user may edit on their own. Email, role
// and status are managed from the user list.
type UpdateMeRequest struct {
	FirstName   string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	MiddleName  string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	LastName    string `json:"lastName,omitempty" validate:"omitempty,max=50"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,min=8,max=15"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
}

// DeleteUsersRequest is the body of a bulk delete
type DeleteUsersRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,len=24,hexadecimal"`
}

// LoginRequest is used for login requests
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is used for login responses
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
