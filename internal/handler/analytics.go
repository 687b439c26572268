package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cryptoradar/internal/analytics"
	rediscache "cryptoradar/internal/cache/redis"
)

type AnalyticsHandler struct {
	Engine *analytics.Engine
	Cache  *rediscache.QueryCache
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/analytics")
	group.GET("/velocity", h.velocity)
	group.GET("/hotness-progression", h.progression)
	group.GET("/source-correlation", h.correlation)

	r.GET("/api/opportunities/:id/history", h.history)
	r.GET("/api/stats", h.stats)
}

func (h *AnalyticsHandler) velocity(c *gin.Context) {
	hours := intQuery(c, "hours", 24)
	records, err := h.Engine.Velocity(c.Request.Context(), hours)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to compute velocity", nil)
		return
	}
	Ok(c, records, map[string]any{"hours": hours})
}

func (h *AnalyticsHandler) progression(c *gin.Context) {
	view, err := h.Engine.HotnessProgression(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to compute hotness progression", nil)
		return
	}
	Ok(c, view, nil)
}

func (h *AnalyticsHandler) correlation(c *gin.Context) {
	records, err := h.Engine.SourceCorrelation(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to compute source correlation", nil)
		return
	}
	Ok(c, records, nil)
}

func (h *AnalyticsHandler) history(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid opportunity id", nil)
		return
	}
	days := intQuery(c, "days", 30)
	series, err := h.Engine.History(c.Request.Context(), id, days)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to build history", nil)
		return
	}
	if series == nil {
		Error(c, http.StatusNotFound, "opportunity not found", nil)
		return
	}
	Ok(c, series, map[string]any{"days": days})
}

func (h *AnalyticsHandler) stats(c *gin.Context) {
	ctx := c.Request.Context()
	if stats, ok := h.Cache.GetStats(ctx); ok {
		Ok(c, stats, map[string]any{"cached": true})
		return
	}
	stats, err := h.Engine.Overview(ctx)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to fetch stats", nil)
		return
	}
	_ = h.Cache.SetStats(ctx, stats)
	Ok(c, stats, nil)
}
