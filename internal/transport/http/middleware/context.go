package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/infra/logger"
)

const (
	// UserIDKey stores the authenticated user's id on the gin context.
	UserIDKey = "user_id"
	// UserGroupKey stores the authenticated user's group on the gin context.
	UserGroupKey = "user_group"
)

// GetUserID returns the authenticated user's id, or false when the request
// is unauthenticated.
func GetUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// GetUserGroup returns the authenticated user's group.
func GetUserGroup(c *gin.Context) (domain.GroupName, bool) {
	value, exists := c.Get(UserGroupKey)
	if !exists {
		return "", false
	}
	group, ok := value.(domain.GroupName)
	return group, ok
}

// GetRequestID returns the request correlation id set by the RequestID
// middleware.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Request.Context().Value(logger.RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}
