// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser = "user"
	RoleHost = "host"
)

// User model
type User struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Roles      []string           `json:"roles" bson:"roles"`
	ActiveRole string             `json:"activeRole" bson:"activeRole"`
	Phone      string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio        string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Location   string             `json:"location,omitempty" bson:"location,omitempty"`
	FCMToken   string             `json:"-" bson:"fcmToken,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasRole reports whether the user has been granted role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidRole reports whether role is one the marketplace knows
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleHost
}

// RegisterRequest is the signup body
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user host"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SwitchRoleRequest selects the role the user acts as
type SwitchRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user host"`
}

// ProfileUpdateRequest carries the self-editable profile fields. Omitted
// fields are left alone.
type ProfileUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

// HostProfile is the public view of a host with their dinners and rating
type HostProfile struct {
	Host    *User      `json:"host"`
	Rating  HostRating `json:"rating"`
	Dinners []Listing  `json:"dinners"`
}

// FCMTokenUpdateRequest represents the request body for updating FCM tokens
type FCMTokenUpdateRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}

// AuthResponse carries a freshly issued token and the user it belongs to
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
