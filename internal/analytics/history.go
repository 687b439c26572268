package analytics

import (
	"context"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// HistoryPoint is one day in a synthesized score series.
type HistoryPoint struct {
	Date           string          `json:"date"`
	HotnessScore   int             `json:"hotnessScore"`
	EstimatedValue decimal.Decimal `json:"estimatedValue"`
	SearchVolume   int             `json:"searchVolume"`
}

func (e *Engine) rand() float64 {
	if e.Rand != nil {
		return e.Rand()
	}
	return rand.Float64()
}

// History synthesizes a daily score series for one record. There is no
// persisted event log; the series is the current score plus bounded noise,
// which is enough for the trend sparkline it feeds. Returns nil when the
// record does not exist.
func (e *Engine) History(ctx context.Context, id uint64, days int) ([]HistoryPoint, error) {
	if days <= 0 {
		days = 30
	}
	item, err := e.Repo.GetOpportunityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	base := item.HotnessScore
	if base <= 0 {
		base = 100
	}
	value := decimal.Zero
	if item.EstimatedValue != nil {
		value = *item.EstimatedValue
	}

	now := e.now()
	out := make([]HistoryPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		variation := (e.rand() - 0.5) * 50
		score := math.Max(0, base+variation)
		out = append(out, HistoryPoint{
			Date:           day.Format("2006-01-02"),
			HotnessScore:   int(math.Round(score)),
			EstimatedValue: value,
			SearchVolume:   int(e.rand()*1000) + 100,
		})
	}
	return out, nil
}
