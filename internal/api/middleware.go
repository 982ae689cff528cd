package api

import (
	"net/http"
	"strings"
)

// UserIDHeader carries the caller's user ID
const UserIDHeader = "X-User-ID"

// RequireUser resolves the caller from the X-User-ID header, falling back to
// the user_id query parameter, and rejects requests that carry neither.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := extractUserID(r)
		if userID == "" {
			respondError(w, http.StatusBadRequest, "user_required",
				"provide the "+UserIDHeader+" header or the user_id query parameter")
			return
		}

		ctx := ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractUserID extracts the user ID from request headers or query
func extractUserID(r *http.Request) string {
	if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
		return userID
	}
	return strings.TrimSpace(r.URL.Query().Get("user_id"))
}
