package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	rediscache "cryptoradar/internal/cache/redis"
	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
)

type OpportunityHandler struct {
	Repo     repository.Repository
	Cache    *rediscache.QueryCache
	Denylist []string
}

func (h *OpportunityHandler) Register(r *gin.Engine) {
	group := r.Group("/api/opportunities")
	group.GET("", h.list)
	group.GET("/hot", h.listHot)
	group.GET("/:id", h.get)
	group.POST("", h.create)
}

func (h *OpportunityHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListParams{Limit: intQuery(c, "limit", 50)}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		params.Category = &category
	}
	if hours := timeFrameHours(c.Query("timeFrame")); hours > 0 {
		since := time.Now().Add(-time.Duration(hours) * time.Hour)
		params.Since = &since
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		params.Search = &search
	}

	items, err := h.Repo.ListOpportunities(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to fetch opportunities", nil)
		return
	}
	Ok(c, applyDenylist(items, h.Denylist), nil)
}

func (h *OpportunityHandler) listHot(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 4)
	ctx := c.Request.Context()

	if items, ok := h.Cache.GetHot(ctx, limit); ok {
		Ok(c, items, map[string]any{"cached": true})
		return
	}

	items, err := h.Repo.ListHotOpportunities(ctx, limit)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to fetch hot opportunities", nil)
		return
	}
	items = applyDenylist(items, h.Denylist)
	_ = h.Cache.SetHot(ctx, limit, items)
	Ok(c, items, nil)
}

func (h *OpportunityHandler) get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid opportunity id", nil)
		return
	}
	item, err := h.Repo.GetOpportunityByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to fetch opportunity", nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "opportunity not found", nil)
		return
	}
	Ok(c, item, nil)
}

type createOpportunityRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	SourceURL   string `json:"sourceUrl" binding:"required"`

	ImageURL   *string `json:"imageUrl"`
	WebsiteURL *string `json:"websiteUrl"`
	DiscordURL *string `json:"discordUrl"`
	TwitterURL *string `json:"twitterUrl"`

	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	TradingVolume  decimal.Decimal  `json:"tradingVolume"`
	MarketCap      decimal.Decimal  `json:"marketCap"`

	Participants     int `json:"participants"`
	TwitterFollowers int `json:"twitterFollowers"`
	DiscordMembers   int `json:"discordMembers"`

	TimeRemaining *string    `json:"timeRemaining"`
	Deadline      *time.Time `json:"deadline"`

	HotnessScore float64 `json:"hotnessScore"`
	IsActive     *bool   `json:"isActive"`
}

func (h *OpportunityHandler) create(c *gin.Context) {
	var req createOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid opportunity data", nil)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	item := models.FromCandidate(models.Candidate{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		SourceURL:        req.SourceURL,
		ImageURL:         req.ImageURL,
		WebsiteURL:       req.WebsiteURL,
		DiscordURL:       req.DiscordURL,
		TwitterURL:       req.TwitterURL,
		EstimatedValue:   req.EstimatedValue,
		TradingVolume:    req.TradingVolume,
		MarketCap:        req.MarketCap,
		Participants:     req.Participants,
		TwitterFollowers: req.TwitterFollowers,
		DiscordMembers:   req.DiscordMembers,
		TimeRemaining:    req.TimeRemaining,
		Deadline:         req.Deadline,
		HotnessScore:     req.HotnessScore,
		IsActive:         active,
	})
	if err := h.Repo.CreateOpportunity(c.Request.Context(), &item); err != nil {
		Error(c, http.StatusInternalServerError, "failed to create opportunity", nil)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: item})
}
