package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey is used for values stored in the request context.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey      = contextKey("logger")
	userIDKey         = contextKey("userID")
	organizationIDKey = contextKey("organizationID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromCtx(c.Request.Context(), userIDKey)
}

// GetOrganizationIDFromContext retrieves the organization the token was issued for.
func GetOrganizationIDFromContext(c *gin.Context) (string, bool) {
	return stringFromCtx(c.Request.Context(), organizationIDKey)
}

func stringFromCtx(ctx context.Context, key contextKey) (string, bool) {
	val, ok := ctx.Value(key).(string)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}
