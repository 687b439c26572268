package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cryptoradar/internal/models"
)

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

// timeFrameHours maps the presentation-layer timeFrame labels to trailing
// window lengths. Unknown labels mean "no window".
func timeFrameHours(label string) int {
	switch strings.TrimSpace(label) {
	case "1h":
		return 1
	case "6h":
		return 6
	case "24h":
		return 24
	case "7d":
		return 168
	default:
		return 0
	}
}

// applyDenylist suppresses records whose name matches a mainstream-asset
// name. Presentation-level filter only; storage keeps the records.
func applyDenylist(items []models.Opportunity, denylist []string) []models.Opportunity {
	if len(denylist) == 0 {
		return items
	}
	out := items[:0]
	for _, item := range items {
		if !nameDenied(item.Name, denylist) {
			out = append(out, item)
		}
	}
	return out
}

func nameDenied(name string, denylist []string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, denied := range denylist {
		if lower == strings.ToLower(denied) {
			return true
		}
	}
	return false
}
