package handlers

import (
	"net/http"

	"tipnplay/internal/middleware"
	"tipnplay/internal/models"
	"tipnplay/internal/services"
)

// HostHandler handles host account operations
type HostHandler struct {
	authService *services.AuthService
}

// NewHostHandler creates a new host handler
func NewHostHandler(authService *services.AuthService) *HostHandler {
	return &HostHandler{authService: authService}
}

// authResponse carries a token plus the host it belongs to
type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/hosts/register
func (h *HostHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles POST /api/hosts/login
func (h *HostHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, user, err := h.authService.Login(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me handles GET /api/hosts/me
func (h *HostHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, models.ErrUnauthorized)
		return
	}

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/hosts/me, including connecting a payout account
func (h *HostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, models.ErrUnauthorized)
		return
	}

	var req models.UserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
