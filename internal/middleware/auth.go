package middleware

import (
	"context"
	"net/http"

	"github.com/openscenic/backend/internal/auth"
)

// SessionValidator resolves a session token to a user id; "" means the
// token is unknown or expired.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// RequireAuth validates the session cookie and injects the user id into
// the request context. Requests without a live session get a 401.
func RequireAuth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			userID, err := sessions.Validate(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				http.Error(w, `{"error":"session expired"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
