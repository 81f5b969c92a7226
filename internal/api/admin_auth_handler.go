package api

import (
	"encoding/json"
	"net/http"

	apperrors "floorcrm/internal/errors"
	"floorcrm/internal/service"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request body").Write(w)
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		apperrors.Unauthorized("Invalid credentials").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}

func (h *AdminAuthHandler) CreateAdminUser(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.BadRequest("Invalid request body").Write(w)
		return
	}

	if err := h.service.CreateAdmin(req.Email, req.Password); err != nil {
		apperrors.BadRequest(err.Error()).Write(w)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Admin user created"})
}
