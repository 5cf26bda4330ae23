package middleware

import (
	"context"
	"net/http"
	"strings"

	"chatdesk/internal/core/services"
)

type contextKey string

const UserEmailKey contextKey = "user_email"

// AuthMiddleware validates the caller's JWT and injects the subject email
// into the request context. The token comes from the Authorization header
// or, for clients that cannot set headers on an EventSource or WebSocket
// dial, from the "token" query parameter.
func AuthMiddleware(tokenSvc *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}
			email, err := tokenSvc.ValidateToken(raw)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Split(h, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// UserEmail extracts the authenticated identity placed by AuthMiddleware.
func UserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok && email != ""
}
