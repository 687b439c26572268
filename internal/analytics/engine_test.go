package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cryptoradar/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(items []models.Opportunity) *Engine {
	e := NewEngine(&stubRepo{items: items})
	e.Now = func() time.Time { return testNow }
	return e
}

func opp(id uint64, name, category, sourceURL string, hotness float64, age time.Duration, value int64) models.Opportunity {
	v := decimal.NewFromInt(value)
	return models.Opportunity{
		ID:             id,
		Name:           name,
		Category:       category,
		SourceURL:      sourceURL,
		HotnessScore:   hotness,
		EstimatedValue: &v,
		IsActive:       true,
		CreatedAt:      testNow.Add(-age),
	}
}

func TestViewsTolerateEmptyStore(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()

	velocity, err := e.Velocity(ctx, 24)
	if err != nil || len(velocity) != 0 {
		t.Fatalf("velocity = %v, %v", velocity, err)
	}

	progression, err := e.HotnessProgression(ctx)
	if err != nil {
		t.Fatalf("progression: %v", err)
	}
	if progression.AverageHotness != 0 || len(progression.Buckets) != 4 {
		t.Fatalf("progression = %+v", progression)
	}
	for _, b := range progression.Buckets {
		if b.Count != 0 {
			t.Fatalf("empty store bucket %q has count %d", b.Range, b.Count)
		}
	}

	correlation, err := e.SourceCorrelation(ctx)
	if err != nil || len(correlation) != 0 {
		t.Fatalf("correlation = %v, %v", correlation, err)
	}

	stats, err := e.Overview(ctx)
	if err != nil || stats.TotalOpportunities != 0 || !stats.TotalValue.IsZero() {
		t.Fatalf("stats = %+v, %v", stats, err)
	}
}

func TestVelocityGroupsAndSorts(t *testing.T) {
	items := []models.Opportunity{
		opp(1, "A", models.CategoryP2E, "src1", 100, time.Hour, 500),
		opp(2, "B", models.CategoryP2E, "src2", 200, 2*time.Hour, 300),
		opp(3, "C", models.CategoryP2E, "src1", 150, 3*time.Hour, 200),
		opp(4, "D", models.CategoryAirdrops, "src3", 90, time.Hour, 100),
		// Outside the window, must not count.
		opp(5, "E", models.CategoryAirdrops, "src3", 250, 48*time.Hour, 900),
	}
	e := newTestEngine(items)

	got, err := e.Velocity(context.Background(), 24)
	if err != nil {
		t.Fatalf("Velocity: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].Category != models.CategoryP2E {
		t.Fatalf("highest rate category = %q", got[0].Category)
	}
	p2e := got[0]
	if p2e.Count != 3 {
		t.Fatalf("p2e count = %d", p2e.Count)
	}
	if p2e.Rate != 3.0/24.0 {
		t.Fatalf("p2e rate = %v", p2e.Rate)
	}
	if p2e.AvgHotness != 150 {
		t.Fatalf("p2e avg hotness = %v", p2e.AvgHotness)
	}
	if len(p2e.Sources) != 2 {
		t.Fatalf("p2e sources = %v", p2e.Sources)
	}
	if p2e.TotalValue.IntPart() != 1000 {
		t.Fatalf("p2e total value = %v", p2e.TotalValue)
	}
	if p2e.Trend != "steady" {
		t.Fatalf("3 new in window should be steady, got %q", p2e.Trend)
	}
	if got[1].Trend != "slow" {
		t.Fatalf("1 new in window should be slow, got %q", got[1].Trend)
	}
}

func TestVelocityTrendThresholds(t *testing.T) {
	var items []models.Opportunity
	for i := 0; i < 6; i++ {
		items = append(items, opp(uint64(i+1), "X", models.CategoryDeFi, "src", 100, time.Hour, 0))
	}
	e := newTestEngine(items)
	got, err := e.Velocity(context.Background(), 24)
	if err != nil || len(got) != 1 {
		t.Fatalf("velocity = %v, %v", got, err)
	}
	if got[0].Trend != "accelerating" {
		t.Fatalf("6 new should be accelerating, got %q", got[0].Trend)
	}
}

func TestHotnessProgressionBuckets(t *testing.T) {
	items := []models.Opportunity{
		opp(1, "A", models.CategoryP2E, "src", 250, time.Hour, 0), // top bucket absorbs >100
		opp(2, "B", models.CategoryP2E, "src", 85, time.Hour, 0),
		opp(3, "C", models.CategoryNFT, "src", 70, time.Hour, 0),
		opp(4, "D", models.CategoryNFT, "src", 45, time.Hour, 0),
		opp(5, "E", models.CategoryDeFi, "src", 10, time.Hour, 0),
	}
	e := newTestEngine(items)

	got, err := e.HotnessProgression(context.Background())
	if err != nil {
		t.Fatalf("HotnessProgression: %v", err)
	}
	wantCounts := []int{2, 1, 1, 1}
	for i, want := range wantCounts {
		if got.Buckets[i].Count != want {
			t.Fatalf("bucket %q count = %d, want %d", got.Buckets[i].Range, got.Buckets[i].Count, want)
		}
	}
	if got.AverageHotness != 92 {
		t.Fatalf("average = %v, want 92", got.AverageHotness)
	}
	if got.Categories[0].Category != models.CategoryP2E || got.Categories[0].MaxHotness != 250 {
		t.Fatalf("leading category = %+v", got.Categories[0])
	}
}

func TestSourceCorrelation(t *testing.T) {
	items := []models.Opportunity{
		opp(1, "A", models.CategoryP2E, "good-src", 90, time.Hour, 0),
		opp(2, "B", models.CategoryAirdrops, "good-src", 80, 2*time.Hour, 0),
		opp(3, "C", models.CategoryP2E, "good-src", 70, 3*time.Hour, 0),
		opp(4, "D", models.CategoryP2E, "good-src", 60, 4*time.Hour, 0),
		opp(5, "E", models.CategoryNFT, "weak-src", 20, 48*time.Hour, 0),
	}
	e := newTestEngine(items)

	got, err := e.SourceCorrelation(context.Background())
	if err != nil {
		t.Fatalf("SourceCorrelation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d", len(got))
	}
	best := got[0]
	if best.Source != "good-src" || best.Count != 4 {
		t.Fatalf("best = %+v", best)
	}
	if best.AvgHotness != 75 || best.Performance != "good" {
		t.Fatalf("best avg/label = %v %q", best.AvgHotness, best.Performance)
	}
	if len(best.TopItems) != 3 || best.TopItems[0].HotnessScore != 90 {
		t.Fatalf("top items = %+v", best.TopItems)
	}
	if len(best.Categories) != 2 {
		t.Fatalf("categories = %v", best.Categories)
	}
	if best.Rate24h != 4.0/24.0 {
		t.Fatalf("rate24h = %v", best.Rate24h)
	}
	if got[1].Performance != "poor" || got[1].Rate24h != 0 {
		t.Fatalf("weak = %+v", got[1])
	}
}

func TestOverviewCounts(t *testing.T) {
	items := []models.Opportunity{
		opp(1, "A", models.CategoryAirdrops, "src", 100, time.Hour, 500),
		opp(2, "B", models.CategoryP2E, "src", 100, time.Hour, 300),
		opp(3, "C", models.CategoryNewListings, "src", 100, time.Hour, 0),
		// New listing outside 24h does not count as new.
		opp(4, "D", models.CategoryNewListings, "src", 100, 48*time.Hour, 0),
	}
	e := newTestEngine(items)

	got, err := e.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if got.TotalOpportunities != 4 || got.ActiveAirdrops != 1 || got.P2EGames != 1 || got.NewListings != 1 {
		t.Fatalf("overview = %+v", got)
	}
	if got.TotalValue.IntPart() != 800 {
		t.Fatalf("total value = %v", got.TotalValue)
	}
}
