package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthID       string    `json:"-"`
	Email         *string   `json:"email"`
	ProfileImage  *string   `json:"profile_image"`
	IsPremium     bool      `json:"is_premium"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Username      string  `json:"username"`
	OAuthProvider string  `json:"oauth_provider"`
	OAuthID       string  `json:"oauth_id"`
	Email         *string `json:"email"`
	ProfileImage  *string `json:"profile_image"`
}

type LoginRequest struct {
	Email   string `json:"email"`
	OAuthID string `json:"oauth_id"`
}

type LoginResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}
