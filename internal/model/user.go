package model

import "time"

// User mirrors the 'users' table. Role is either "member" or "admin".
// PasswordHash is never serialized.
type User struct {
	ID           uint64    `json:"id"`
	Pseudo       string    `json:"pseudo"`
	Mail         string    `json:"mail,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
