package handler

import (
	"github.com/gin-gonic/gin"

	"cryptoradar/internal/source"
)

type SourcesHandler struct {
	Board *source.StatusBoard
}

func (h *SourcesHandler) Register(r *gin.Engine) {
	r.GET("/api/sources/status", h.status)
}

func (h *SourcesHandler) status(c *gin.Context) {
	Ok(c, h.Board.Snapshot(), nil)
}
