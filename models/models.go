package models

import "github.com/golang-jwt/jwt/v5"

// User represents a user in the system.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Omit from JSON output for security
	CreatedAt    string `json:"createdAt"`
}

// LoginRequest defines the structure for user login and registration requests.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Claims defines the information stored in the JWT.
type Claims struct {
	UserID int `json:"uid"`
	jwt.RegisteredClaims
}
