package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/service"
)

const userIDKey = "user_id"

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": domain.KindUnauthorized})
}

// JWT requires a bearer token and stores the caller's id in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set(userIDKey, userID)
		ctx := logger.NewContext(c.Request.Context(), logger.FromContext(c.Request.Context()).With("user_id", userID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserID returns the id JWT stored for this request.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
