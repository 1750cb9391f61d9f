package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/adbroker/internal/server/http/dto"
)

const defaultHeartbeat = 25 * time.Second

// StreamHandler serves live notifications over server-sent events and reports presence.
type StreamHandler struct {
	facade    PresenceFacade
	heartbeat time.Duration
}

func NewStreamHandler(facade PresenceFacade) *StreamHandler {
	return &StreamHandler{facade: facade, heartbeat: defaultHeartbeat}
}

// Stream handles GET /api/notifications/stream. The caller is online while the stream is open.
func (h *StreamHandler) Stream(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	messages, unsubscribe := h.facade.Subscribe(actor)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"userId": actor.UserID.String()})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.SSEvent(msg.Event, msg.Payload)
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

// Online handles GET /api/users/:id/online.
func (h *StreamHandler) Online(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.OnlineResponse{UserID: userID, Online: h.facade.IsOnline(userID)})
}
