package auth

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyUserID is the context key for the authenticated user's ID
	ContextKeyUserID contextKey = "user_id"
)

// WithUserID adds the user ID to the context
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserIDFromContext retrieves the user ID from the context
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}
