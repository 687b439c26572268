package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cryptoradar/internal/alerts"
)

// defaultUserID stands in until the dashboard grows real authentication.
const defaultUserID = "default"

type AlertsHandler struct {
	Book *alerts.Book
}

func (h *AlertsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/alerts")
	group.GET("", h.list)
	group.POST("", h.create)
	group.DELETE("/:id", h.deactivate)
}

func userID(c *gin.Context) string {
	if id := strings.TrimSpace(c.Query("userId")); id != "" {
		return id
	}
	return defaultUserID
}

func (h *AlertsHandler) list(c *gin.Context) {
	Ok(c, h.Book.List(userID(c)), nil)
}

type createAlertRequest struct {
	UserID      string          `json:"userId"`
	Symbol      string          `json:"symbol" binding:"required"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	Condition   string          `json:"condition" binding:"required"`
}

func (h *AlertsHandler) create(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid alert data", nil)
		return
	}
	owner := strings.TrimSpace(req.UserID)
	if owner == "" {
		owner = defaultUserID
	}

	alert, err := h.Book.Create(owner, req.Symbol, req.TargetPrice, req.Condition)
	if err != nil {
		switch {
		case errors.Is(err, alerts.ErrInvalidSymbol),
			errors.Is(err, alerts.ErrInvalidPrice),
			errors.Is(err, alerts.ErrInvalidCondition):
			Error(c, http.StatusBadRequest, err.Error(), nil)
		default:
			Error(c, http.StatusInternalServerError, "failed to create alert", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: alert})
}

func (h *AlertsHandler) deactivate(c *gin.Context) {
	if !h.Book.Deactivate(userID(c), c.Param("id")) {
		Error(c, http.StatusNotFound, "alert not found", nil)
		return
	}
	Ok(c, gin.H{"deactivated": true}, nil)
}
