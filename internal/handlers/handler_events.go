package handlers

import (
	"io"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

const eventsKeepAlive = 25 * time.Second

type eventsHandler struct {
	realtime  portssvc.RealtimeSvc
	keepAlive time.Duration
}

// RegisterEventRoutes registers the server-sent event stream.
func RegisterEventRoutes(rg *gin.RouterGroup, rt portssvc.RealtimeSvc) {
	h := &eventsHandler{realtime: rt, keepAlive: eventsKeepAlive}
	rg.GET("/events", h.streamEvents)
}

// streamEvents godoc
// @Summary Realtime events
// @Description Server-sent events: "refresh" when the user's data changed, "auth" when the sign-in state changed.
// @Description The stream ends after the own session signs out. EventSource clients may pass the token as access_token.
// @Tags events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /events [get]
func (h *eventsHandler) streamEvents(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	logger := middleware.GetLoggerFromContext(c)

	ctx := c.Request.Context()
	notifications, err := h.realtime.Subscribe(ctx, session)
	if err != nil {
		writeError(c, err, http.StatusBadGateway, "Failed to open event stream")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		case n, open := <-notifications:
			if !open {
				return false
			}
			c.SSEvent(n.Type, n)
			if n.Type == portssvc.NotificationAuth && n.Auth != nil && !n.Auth.SignedIn && n.Auth.SessionID == session.ID {
				logger.Info("Session signed out, closing event stream")
				return false
			}
			return true
		}
	})
}
