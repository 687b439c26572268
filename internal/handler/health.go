package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptoradar/internal/db"
)

type HealthHandler struct {
	DB *db.DB
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/health", h.health)
}

func (h *HealthHandler) health(c *gin.Context) {
	if err := db.Ping(h.DB); err != nil {
		Error(c, http.StatusServiceUnavailable, "database unreachable", nil)
		return
	}
	Ok(c, gin.H{"status": "ok"}, nil)
}
