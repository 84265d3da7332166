package dto

import "time"

// SignUpRequest is the JSON body for POST /auth/signup.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is returned when user info is needed (e.g. after login).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse carries the access token together with the account.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
