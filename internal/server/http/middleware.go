package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/consultbook/internal/common"
	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server/auth"
)

const (
	userIDKey    = "userID"
	requestIDKey = "requestID"
)

// requestIDMiddleware keeps the caller's X-Request-ID or makes one up,
// echoes it on the response and tags the request's log entries with it.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(common.RequestIDHeaderName))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", id))
		c.Next()
	}
}

func requestLoggerMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// bearerAuthMiddleware accepts "Authorization: Bearer <jwt>" and stores the
// token's user ID for handlers.
func bearerAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimSpace(header[len("Bearer "):]), secret)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
