package api

import (
	"net/http"

	"go.uber.org/zap"

	"turnero/internal/service"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
	logger  *zap.Logger
}

func NewAdminAuthHandler(svc service.AdminAuthService, logger *zap.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc, logger: logger}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		h.logger.Warn("admin login failed", zap.String("email", req.Email))
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
