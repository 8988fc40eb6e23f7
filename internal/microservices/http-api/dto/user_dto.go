package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
)

type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      policy.Role `json:"role"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
}

// CreateUserRequest: admin payload for POST /users
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=150,username,notme"`
	Email     string `json:"email" binding:"required,max=254,email"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest: partial update; nil fields are left alone
type UpdateUserRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150,username,notme"`
	Email     *string `json:"email" binding:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateProfileRequest: self-service partial update. It has no role field,
// so a role sent by the client is dropped while decoding.
type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150,username,notme"`
	Email     *string `json:"email" binding:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

func (r UpdateProfileRequest) AsUserUpdate() UpdateUserRequest {
	return UpdateUserRequest{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
}

// ApplyTo copies the present profile fields onto u. Role is applied separately
// because it goes through the superuser invariant.
func (r *UpdateUserRequest) ApplyTo(u *models.User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
		LastLogin: u.LastLogin,
	}
}

func ToUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToUserResponse(&users[i]))
	}
	return out
}
