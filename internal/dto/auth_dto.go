package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// RegisterRequest bootstraps the first administrator account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
}

// LoginRequest captures staff credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserCreateRequest creates an additional staff account.
type UserCreateRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Role     string `json:"role" validate:"required,oneof=ADMIN MANAGER"`
}

// UserUpdateRequest updates a staff account. Nil fields are left untouched.
type UserUpdateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN MANAGER"`
	Status   *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// UserResponse is the public view of a staff account.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned after a successful staff login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// StudentLoginRequest captures cabinet credentials.
type StudentLoginRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// StudentAuthResponse is returned after a successful cabinet login.
type StudentAuthResponse struct {
	Token   string          `json:"token"`
	Student StudentResponse `json:"student"`
}

// NewUserResponse converts a staff model.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}
