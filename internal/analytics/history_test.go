package analytics

import (
	"context"
	"testing"
	"time"

	"cryptoradar/internal/models"
)

func TestHistoryNotFound(t *testing.T) {
	e := newTestEngine(nil)
	series, err := e.History(context.Background(), 999, 7)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if series != nil {
		t.Fatalf("expected nil series for missing record")
	}
}

func TestHistorySeriesShape(t *testing.T) {
	items := []models.Opportunity{
		opp(1, "A", models.CategoryP2E, "src", 180, time.Hour, 700),
	}
	e := newTestEngine(items)
	e.Rand = func() float64 { return 0.5 }

	series, err := e.History(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 8 {
		t.Fatalf("series length = %d, want days+1 = 8", len(series))
	}
	if series[0].Date != testNow.AddDate(0, 0, -7).Format("2006-01-02") {
		t.Fatalf("first date = %q", series[0].Date)
	}
	if series[len(series)-1].Date != testNow.Format("2006-01-02") {
		t.Fatalf("last date = %q", series[len(series)-1].Date)
	}
	for _, p := range series {
		// Rand pinned at 0.5 zeroes the variation term.
		if p.HotnessScore != 180 {
			t.Fatalf("score = %d, want 180", p.HotnessScore)
		}
		if p.SearchVolume != 600 {
			t.Fatalf("search volume = %d, want 600", p.SearchVolume)
		}
		if p.EstimatedValue.IntPart() != 700 {
			t.Fatalf("estimated value = %v", p.EstimatedValue)
		}
	}
}

func TestHistoryScoreNeverNegative(t *testing.T) {
	items := []models.Opportunity{
		opp(1, "A", models.CategoryP2E, "src", 5, time.Hour, 0),
	}
	e := newTestEngine(items)
	e.Rand = func() float64 { return 0 } // variation -25 against a low base

	series, err := e.History(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	for _, p := range series {
		if p.HotnessScore < 0 {
			t.Fatalf("score went negative: %d", p.HotnessScore)
		}
	}
}
