package userctx

import "context"

type contextKey string

const userIDContextKey contextKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

// DefaultOwner is used for every request when authentication is disabled.
const DefaultOwner = "default"

// OwnerOrDefault returns the authenticated user ID or DefaultOwner.
func OwnerOrDefault(ctx context.Context) string {
	if userID, ok := GetUserID(ctx); ok && userID != "" {
		return userID
	}
	return DefaultOwner
}
