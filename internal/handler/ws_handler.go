package handler

import (
	"net/http"

	"taskhub/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WSHandler upgrades authenticated requests to a notification stream.
type WSHandler struct {
	hub *notify.Hub
	log zerolog.Logger
}

func NewWSHandler(hub *notify.Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

func (h *WSHandler) Subscribe(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, p.ID.String()); err != nil {
		// the upgrader has already written the error response
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
	}
}

// Health reports that the process is up.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "API is running"})
}
