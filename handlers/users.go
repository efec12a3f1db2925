package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/viswayadeedya/TodoIQ-BE/auth"
	"github.com/viswayadeedya/TodoIQ-BE/database"
	"github.com/viswayadeedya/TodoIQ-BE/models"
)

// RegisterUser handles a new user registration.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Debug("JSON decode error in RegisterUser", "err", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondWithError(w, http.StatusBadRequest, "Username is required")
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		respondWithError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Logger.Error("password hashing error", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := h.Users.Create(r.Context(), req.Username, hashedPassword)
	if errors.Is(err, database.ErrDuplicate) {
		respondWithError(w, http.StatusConflict, "Username already exists")
		return
	}
	if err != nil {
		h.Logger.Error("database error inserting new user", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// LoginUser handles user authentication and returns a JWT.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Logger.Debug("JSON decode error in LoginUser", "err", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, database.ErrNotFound) {
		respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		h.Logger.Error("database error retrieving user for login", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.Logger.Error("error signing token", "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondWithJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}
