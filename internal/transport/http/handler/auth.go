package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dashcrm-api/internal/application/auth"
	"github.com/dashcrm-api/internal/pkg/validate"
)

// AuthHandler handles the two-phase login endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Phone string `json:"phone" validate:"required_without=Email"`
	Email string `json:"email" validate:"omitempty,email"`
}

type verifyCodeRequest struct {
	Phone string `json:"phone" validate:"required_without=Email"`
	Email string `json:"email" validate:"omitempty,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_INPUT")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}

	result, err := h.svc.Login(r.Context(), req.Phone, req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_INPUT")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}

	result, err := h.svc.VerifyCode(r.Context(), req.Phone, req.Email, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
