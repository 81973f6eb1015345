package middleware

import (
	"net/http"

	"spalena53-be/internal/auth"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/transport"
	"spalena53-be/internal/utils"

	"go.uber.org/zap"
)

// Authenticate resolves the caller from the auth cookie or a Bearer header.
// Requests without a token pass through anonymous; a token that fails
// verification is rejected.
func Authenticate(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tm.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejecting token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				auth.ClearAuthCookie(w)
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		if !utils.IsAdmin(r.Context()) {
			transport.WriteError(w, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
