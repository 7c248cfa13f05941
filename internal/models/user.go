package models

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	DisplayName  *string   `json:"display_name"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserUpdate carries the profile fields a user may change about themselves.
type UserUpdate struct {
	DisplayName Optional[string] `json:"display_name"`
	AvatarURL   Optional[string] `json:"avatar_url"`
}

// NewUser is the registration payload.
type NewUser struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}
