package handlers

import (
	"net/http"

	"dandiya-ticketing-platform/internal/services"
)

// AuthHandler handles verifier-app authentication
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	resp, err := h.auth.Login(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"token": resp.Token,
		"user":  resp.Staff,
	})
}
