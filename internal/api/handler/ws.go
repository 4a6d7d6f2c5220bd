package handler

import (
	"net/http"
	"net/url"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/eventhub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// AllowOrigin makes the event feed accept browser connections from origin
// ("*" for any). Same-host connections are always accepted.
func (h *Handler) AllowOrigin(origin string) {
	h.Upgrader.CheckOrigin = func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		if o == "" || origin == "*" || o == origin {
			return true
		}
		u, err := url.Parse(o)
		return err == nil && u.Host == r.Host
	}
}

// ServeEvents upgrades an admin's connection to the live complaint event feed
// of their organization.
func (h *Handler) ServeEvents(c *gin.Context) {
	a := actor(c)
	if !a.IsAdmin() {
		h.respondError(c, apperr.Unauthorized())
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		return
	}

	client := eventhub.NewWebSocketClient(h.Hub, conn, a.OrgID, a.SubjectID, h.Logger)
	if !h.Hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.Run()
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
