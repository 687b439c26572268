package analytics

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
)

// Engine derives read-only views from the current store contents. Nothing
// here persists state; every view is recomputed on demand and tolerates an
// empty store.
type Engine struct {
	Repo repository.Repository

	// Now and Rand are replaceable for deterministic tests. Nil means
	// time.Now and the shared PRNG.
	Now  func() time.Time
	Rand func() float64
}

func NewEngine(repo repository.Repository) *Engine {
	return &Engine{Repo: repo, Now: time.Now, Rand: rand.Float64}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Overview is the dashboard stats block.
type Overview struct {
	TotalOpportunities int             `json:"totalOpportunities"`
	ActiveAirdrops     int             `json:"activeAirdrops"`
	NewListings        int             `json:"newListings"`
	P2EGames           int             `json:"p2eGames"`
	TotalValue         decimal.Decimal `json:"totalValue"`
}

// Overview counts active records by category. New listings are counted only
// within the trailing 24 hours; the other counters are all-time.
func (e *Engine) Overview(ctx context.Context) (Overview, error) {
	items, err := e.Repo.ListActiveOpportunities(ctx)
	if err != nil {
		return Overview{}, err
	}
	return BuildOverview(items, e.now()), nil
}

func BuildOverview(items []models.Opportunity, now time.Time) Overview {
	cutoff := now.Add(-24 * time.Hour)
	out := Overview{TotalValue: decimal.Zero}
	for _, item := range items {
		out.TotalOpportunities++
		switch item.Category {
		case models.CategoryAirdrops:
			out.ActiveAirdrops++
		case models.CategoryP2E:
			out.P2EGames++
		case models.CategoryNewListings:
			if !item.CreatedAt.Before(cutoff) {
				out.NewListings++
			}
		}
		if item.EstimatedValue != nil {
			out.TotalValue = out.TotalValue.Add(*item.EstimatedValue)
		}
	}
	return out
}

// VelocityRecord describes discovery pace for one category over the window.
type VelocityRecord struct {
	Category   string          `json:"category"`
	Count      int             `json:"count"`
	Rate       float64         `json:"rate"`
	AvgHotness float64         `json:"avgHotness"`
	Sources    []string        `json:"sources"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Trend      string          `json:"trend"`
}

// Velocity groups active records created within the trailing window by
// category. Records are sorted by rate descending.
func (e *Engine) Velocity(ctx context.Context, hours int) ([]VelocityRecord, error) {
	if hours <= 0 {
		hours = 24
	}
	items, err := e.Repo.ListActiveOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	return BuildVelocity(items, e.now(), hours), nil
}

func BuildVelocity(items []models.Opportunity, now time.Time, hours int) []VelocityRecord {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	type acc struct {
		count   int
		hotness float64
		value   decimal.Decimal
		sources map[string]bool
	}
	byCategory := map[string]*acc{}
	for _, item := range items {
		if item.CreatedAt.Before(cutoff) {
			continue
		}
		a := byCategory[item.Category]
		if a == nil {
			a = &acc{value: decimal.Zero, sources: map[string]bool{}}
			byCategory[item.Category] = a
		}
		a.count++
		a.hotness += item.HotnessScore
		a.sources[item.SourceURL] = true
		if item.EstimatedValue != nil {
			a.value = a.value.Add(*item.EstimatedValue)
		}
	}

	out := make([]VelocityRecord, 0, len(byCategory))
	for category, a := range byCategory {
		trend := "slow"
		switch {
		case a.count > 5:
			trend = "accelerating"
		case a.count > 2:
			trend = "steady"
		}
		out = append(out, VelocityRecord{
			Category:   category,
			Count:      a.count,
			Rate:       float64(a.count) / float64(hours),
			AvgHotness: a.hotness / float64(a.count),
			Sources:    sortedKeys(a.sources),
			TotalValue: a.value,
			Trend:      trend,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate > out[j].Rate
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ProgressionBucket is one fixed score range.
type ProgressionBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// CategoryHotness summarizes one category's score spread.
type CategoryHotness struct {
	Category   string  `json:"category"`
	AvgHotness float64 `json:"avgHotness"`
	MaxHotness float64 `json:"maxHotness"`
	Count      int     `json:"count"`
}

// Progression is the hotness-distribution view.
type Progression struct {
	Buckets        []ProgressionBucket `json:"buckets"`
	Categories     []CategoryHotness   `json:"categories"`
	AverageHotness float64             `json:"averageHotness"`
}

// HotnessProgression buckets active records into fixed score ranges. The
// top bucket absorbs everything above its label since scores run to 300.
func (e *Engine) HotnessProgression(ctx context.Context) (Progression, error) {
	items, err := e.Repo.ListActiveOpportunities(ctx)
	if err != nil {
		return Progression{}, err
	}
	return BuildProgression(items), nil
}

func BuildProgression(items []models.Opportunity) Progression {
	buckets := []ProgressionBucket{
		{Range: "80-100"},
		{Range: "60-79"},
		{Range: "40-59"},
		{Range: "<40"},
	}
	type acc struct {
		count int
		sum   float64
		max   float64
	}
	byCategory := map[string]*acc{}
	total := 0.0
	for _, item := range items {
		score := item.HotnessScore
		switch {
		case score >= 80:
			buckets[0].Count++
		case score >= 60:
			buckets[1].Count++
		case score >= 40:
			buckets[2].Count++
		default:
			buckets[3].Count++
		}

		a := byCategory[item.Category]
		if a == nil {
			a = &acc{}
			byCategory[item.Category] = a
		}
		a.count++
		a.sum += score
		if score > a.max {
			a.max = score
		}
		total += score
	}

	categories := make([]CategoryHotness, 0, len(byCategory))
	for category, a := range byCategory {
		categories = append(categories, CategoryHotness{
			Category:   category,
			AvgHotness: a.sum / float64(a.count),
			MaxHotness: a.max,
			Count:      a.count,
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].AvgHotness != categories[j].AvgHotness {
			return categories[i].AvgHotness > categories[j].AvgHotness
		}
		return categories[i].Category < categories[j].Category
	})

	avg := 0.0
	if len(items) > 0 {
		avg = total / float64(len(items))
	}
	return Progression{Buckets: buckets, Categories: categories, AverageHotness: avg}
}

// SourceRecord ranks one originating source by the quality of what it finds.
type SourceRecord struct {
	Source      string               `json:"source"`
	AvgHotness  float64              `json:"avgHotness"`
	Count       int                  `json:"count"`
	Rate24h     float64              `json:"rate24h"`
	Categories  []string             `json:"categories"`
	TopItems    []models.Opportunity `json:"topItems"`
	Performance string               `json:"performance"`
}

// SourceCorrelation groups active records by source URL, sorted by average
// hotness descending.
func (e *Engine) SourceCorrelation(ctx context.Context) ([]SourceRecord, error) {
	items, err := e.Repo.ListActiveOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSourceCorrelation(items, e.now()), nil
}

func BuildSourceCorrelation(items []models.Opportunity, now time.Time) []SourceRecord {
	cutoff := now.Add(-24 * time.Hour)

	type acc struct {
		count      int
		recent     int
		sum        float64
		categories map[string]bool
		items      []models.Opportunity
	}
	bySource := map[string]*acc{}
	for _, item := range items {
		a := bySource[item.SourceURL]
		if a == nil {
			a = &acc{categories: map[string]bool{}}
			bySource[item.SourceURL] = a
		}
		a.count++
		a.sum += item.HotnessScore
		a.categories[item.Category] = true
		a.items = append(a.items, item)
		if !item.CreatedAt.Before(cutoff) {
			a.recent++
		}
	}

	out := make([]SourceRecord, 0, len(bySource))
	for sourceURL, a := range bySource {
		sort.Slice(a.items, func(i, j int) bool {
			return a.items[i].HotnessScore > a.items[j].HotnessScore
		})
		top := a.items
		if len(top) > 3 {
			top = top[:3]
		}
		avg := a.sum / float64(a.count)
		out = append(out, SourceRecord{
			Source:      sourceURL,
			AvgHotness:  avg,
			Count:       a.count,
			Rate24h:     float64(a.recent) / 24.0,
			Categories:  sortedKeys(a.categories),
			TopItems:    top,
			Performance: performanceLabel(avg),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgHotness != out[j].AvgHotness {
			return out[i].AvgHotness > out[j].AvgHotness
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func performanceLabel(avgHotness float64) string {
	switch {
	case avgHotness >= 80:
		return "excellent"
	case avgHotness >= 60:
		return "good"
	case avgHotness >= 40:
		return "fair"
	default:
		return "poor"
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
