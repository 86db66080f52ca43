package server

import (
	"net/http"

	"github.com/jonathan/outreach-tracker/internal/server/middleware"
	"github.com/jonathan/outreach-tracker/internal/types"
)

// AuthHandler handles the /auth endpoints.
type AuthHandler struct {
	responder
	admins     *AdminService
	jwtService *JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(rs responder, admins *AdminService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{responder: rs, admins: admins, jwtService: jwtService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	admin, err := h.admins.Register(r.Context(), &req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, admin)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	admin, err := h.admins.Login(r.Context(), &req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, admin)
}

// UpdatePassword handles PUT /auth/password for the authenticated admin.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.AdminID(r)
	if err != nil {
		h.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.UpdatePasswordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.admins.UpdatePassword(r.Context(), adminID, req.CurrentPassword, req.NewPassword); err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, admin *types.Admin) {
	token, expiresAt, err := h.jwtService.GenerateToken(admin.ID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.jsonResponse(w, status, types.LoginResponse{Admin: admin, Token: token, ExpiresAt: expiresAt})
}
