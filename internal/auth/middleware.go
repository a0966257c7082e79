package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"turnero/internal/service"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the admin claims set by AdminAuthMiddleware, if any.
func ClaimsFromContext(ctx context.Context) (*service.AdminClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*service.AdminClaims)
	return c, ok
}

// AdminAuthMiddleware requires a valid bearer token on admin routes. When no
// admin credentials are configured every request passes through.
func AdminAuthMiddleware(svc service.AdminAuthService, publicPaths ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil || !svc.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			for _, p := range publicPaths {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := svc.ParseToken(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
