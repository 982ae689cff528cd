package api

import (
	"context"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// UserIDFromContext extracts the caller's user ID from context
func UserIDFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// ContextWithUserID adds the caller's user ID to context
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
