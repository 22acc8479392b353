package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/service"
)

// Chat is what the socket needs from the group service.
type Chat interface {
	Poster
	CanListen(ctx context.Context, groupID, userID uuid.UUID) error
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:  http.StatusNotFound,
	domain.KindForbidden: http.StatusForbidden,
}

// HandleGroupWS streams a group's chat. Browsers cannot set headers on the
// upgrade request, so the JWT comes in the token query parameter.
func HandleGroupWS(hub *Hub, chat Chat, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required", "kind": domain.KindUnauthorized})
			return
		}
		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "kind": domain.KindUnauthorized})
			return
		}

		groupID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id", "kind": domain.KindBadRequest})
			return
		}

		if err := chat.CanListen(c.Request.Context(), groupID, userID); err != nil {
			kind := domain.KindOf(err)
			status, ok := kindStatus[kind]
			if !ok {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(userID, groupID, conn, hub, chat)
		go client.Run()
	}
}
