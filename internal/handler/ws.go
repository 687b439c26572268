package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cryptoradar/internal/broadcast"
)

type WSHandler struct {
	Hub    *broadcast.Hub
	Logger *zap.Logger
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/ws", h.serve)
}

func (h *WSHandler) serve(c *gin.Context) {
	if err := h.Hub.Serve(c.Writer, c.Request); err != nil && h.Logger != nil {
		// Client disconnects land here; debug is enough.
		h.Logger.Debug("websocket session ended", zap.Error(err))
	}
}
