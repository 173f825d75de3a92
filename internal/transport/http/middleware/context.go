package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader is the HTTP header name for the trace ID.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for the trace ID.
	TraceIDKey = "trace_id"
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey = "user_id"
	// RoleNameKey is the context key for the authenticated role name.
	RoleNameKey = "role_name"
	// SessionIDKey is the context key for the session bound to the token.
	SessionIDKey = "session_id"
)

// EnrichContext adds a trace ID to each request.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserID retrieves the authenticated user ID, empty when unauthenticated.
func GetUserID(c *gin.Context) string {
	if value, exists := c.Get(UserIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// GetRoleName retrieves the authenticated role name.
func GetRoleName(c *gin.Context) string {
	if value, exists := c.Get(RoleNameKey); exists {
		if name, ok := value.(string); ok {
			return name
		}
	}
	return ""
}

// GetSessionID retrieves the session ID bound to the presented token.
func GetSessionID(c *gin.Context) string {
	if value, exists := c.Get(SessionIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
