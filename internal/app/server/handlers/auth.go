package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chatdesk/internal/core/domain"
	"chatdesk/internal/core/services"
	"chatdesk/pkg/middleware"
)

type AuthHandler struct {
	userSvc  *services.UserService
	tokenSvc *services.TokenService
}

func NewAuthHandler(u *services.UserService, t *services.TokenService) *AuthHandler {
	return &AuthHandler{userSvc: u, tokenSvc: t}
}

// Login exchanges email+password for a JWT consumed by the chat, notify
// and tracker endpoints.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.userSvc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.InfoContext(r.Context(), "auth handler - login rejected", "email", req.Email)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	token, err := h.tokenSvc.GenerateToken(user.Email)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - generate token failed", "email", user.Email)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":     token,
		"email":     user.Email,
		"full_name": user.FullName,
	})
	log.InfoContext(r.Context(), "auth handler - login success", "email", user.Email)
}
