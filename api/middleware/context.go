package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

// UserIDFromContext returns the authenticated user, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the session id carried by the access token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the caller identity. Controllers under test use it in
// place of the Auth middleware.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}

func withAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}
