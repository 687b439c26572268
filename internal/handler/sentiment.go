package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptoradar/internal/sentiment"
)

type SentimentHandler struct {
	Tracker *sentiment.Tracker
}

func (h *SentimentHandler) Register(r *gin.Engine) {
	r.GET("/api/sentiment", h.trending)
}

// trending computes sentiment on demand. The shared pacer bounds the extra
// API load this endpoint can generate.
func (h *SentimentHandler) trending(c *gin.Context) {
	if h.Tracker == nil {
		Error(c, http.StatusServiceUnavailable, "sentiment tracking disabled", nil)
		return
	}
	Ok(c, h.Tracker.TrendingSentiment(c.Request.Context()), nil)
}
