// Package types provides the request and response shapes of the outreach API.
package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest creates the first admin account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// Admin is an admin account as returned by the API.
type Admin struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse carries the authenticated admin and a bearer token.
type LoginResponse struct {
	Admin     *Admin    `json:"admin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validate validates the RegisterRequest.
func (r *RegisterRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the LoginRequest.
func (r *LoginRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the UpdatePasswordRequest.
func (r *UpdatePasswordRequest) Validate() error {
	return Validator().Struct(r)
}
