package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialize
	Age          *int      `json:"age,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents a row in the sessions table. The ID is the opaque
// token held by the browser cookie.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,gte=13,lte=120"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
