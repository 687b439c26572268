package gormrepository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Each pooled connection gets its own in-memory database; a single
	// connection keeps every query on the same one.
	sqldb, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&models.Opportunity{}, &models.SourceSnapshot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(gdb)
}

func seedOpportunity(t *testing.T, s *Store, name string, hotness float64, active bool, createdAt time.Time) {
	t.Helper()
	item := models.Opportunity{
		Name:         name,
		Description:  "seeded",
		Category:     models.CategoryP2E,
		ContentKey:   models.ContentKeyFor(name, "https://example.com/"+name),
		SourceURL:    "https://example.com/" + name,
		HotnessScore: hotness,
		IsActive:     active,
		CreatedAt:    createdAt,
	}
	if err := s.CreateOpportunity(context.Background(), &item); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func TestReadsExcludeInactive(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	seedOpportunity(t, s, "live", 150, true, now)
	seedOpportunity(t, s, "dead", 290, false, now)

	ctx := context.Background()

	all, err := s.ListOpportunities(ctx, repository.ListParams{})
	if err != nil {
		t.Fatalf("ListOpportunities: %v", err)
	}
	if len(all) != 1 || all[0].Name != "live" {
		t.Fatalf("list = %+v, want only the active record", all)
	}

	hot, err := s.ListHotOpportunities(ctx, 10)
	if err != nil {
		t.Fatalf("ListHotOpportunities: %v", err)
	}
	if len(hot) != 1 || hot[0].Name != "live" {
		t.Fatalf("hot = %+v, want only the active record", hot)
	}

	active, err := s.ListActiveOpportunities(ctx)
	if err != nil {
		t.Fatalf("ListActiveOpportunities: %v", err)
	}
	if len(active) != 1 || active[0].Name != "live" {
		t.Fatalf("active = %+v, want only the active record", active)
	}
}

func TestListHotOrderingAndLimit(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	scores := []float64{120, 280, 50, 200, 175}
	for i, score := range scores {
		seedOpportunity(t, s, fmt.Sprintf("opp-%d", i), score, true, now)
	}

	hot, err := s.ListHotOpportunities(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListHotOpportunities: %v", err)
	}
	if len(hot) != 3 {
		t.Fatalf("len = %d, want 3", len(hot))
	}
	want := []float64{280, 200, 175}
	for i, item := range hot {
		if item.HotnessScore != want[i] {
			t.Fatalf("hot[%d] = %v, want %v", i, item.HotnessScore, want[i])
		}
	}

	// Zero limit falls back to the dashboard default of 4.
	hot, err = s.ListHotOpportunities(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListHotOpportunities default: %v", err)
	}
	if len(hot) != 4 {
		t.Fatalf("default len = %d, want 4", len(hot))
	}
}

func TestTimeframeBoundaryInclusive(t *testing.T) {
	s := newTestStore(t)
	cutoff := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	seedOpportunity(t, s, "before", 100, true, cutoff.Add(-time.Hour))
	seedOpportunity(t, s, "at-cutoff", 100, true, cutoff)
	seedOpportunity(t, s, "after", 100, true, cutoff.Add(time.Hour))

	items, err := s.ListOpportunities(context.Background(), repository.ListParams{Since: &cutoff})
	if err != nil {
		t.Fatalf("ListOpportunities: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (boundary record included)", len(items))
	}
	for _, item := range items {
		if item.Name == "before" {
			t.Fatalf("record before the cutoff leaked into the window")
		}
	}
}

func TestListFiltersCategoryAndSearch(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	seedOpportunity(t, s, "Guild Quest", 150, true, now)

	airdrop := models.Opportunity{
		Name:         "Proto Drop",
		Description:  "claim window open",
		Category:     models.CategoryAirdrops,
		SourceURL:    "https://example.com/proto",
		HotnessScore: 120,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := s.CreateOpportunity(context.Background(), &airdrop); err != nil {
		t.Fatalf("seed airdrop: %v", err)
	}

	category := "airdrops"
	items, err := s.ListOpportunities(context.Background(), repository.ListParams{Category: &category})
	if err != nil {
		t.Fatalf("category filter: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Proto Drop" {
		t.Fatalf("category filter = %+v", items)
	}

	search := "CLAIM"
	items, err = s.ListOpportunities(context.Background(), repository.ListParams{Search: &search})
	if err != nil {
		t.Fatalf("search filter: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Proto Drop" {
		t.Fatalf("search filter = %+v", items)
	}
}

func TestUpsertByContentKeyPreservesIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := models.Opportunity{
		Name:         "Nova Chain",
		Description:  "initial discovery",
		Category:     models.CategoryNewListings,
		SourceURL:    "https://example.com/nova",
		HotnessScore: 140,
		IsActive:     true,
	}
	if err := s.UpsertOpportunityByContentKey(ctx, &first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := models.Opportunity{
		Name:         "Nova Chain",
		Description:  "refreshed metrics",
		Category:     models.CategoryNewListings,
		SourceURL:    "https://example.com/nova",
		HotnessScore: 220,
		IsActive:     true,
	}
	if err := s.UpsertOpportunityByContentKey(ctx, &second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	items, err := s.ListActiveOpportunities(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1 deduplicated record", len(items))
	}
	if items[0].ID != first.ID {
		t.Fatalf("id = %d, want original %d", items[0].ID, first.ID)
	}
	if items[0].Description != "refreshed metrics" || items[0].HotnessScore != 220 {
		t.Fatalf("metrics not refreshed: %+v", items[0])
	}
}

func TestCreateClampsHotness(t *testing.T) {
	s := newTestStore(t)
	item := models.Opportunity{
		Name:         "Overflow",
		Description:  "d",
		Category:     models.CategoryOther,
		SourceURL:    "https://example.com/overflow",
		HotnessScore: 900,
		IsActive:     true,
	}
	if err := s.CreateOpportunity(context.Background(), &item); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.GetOpportunityByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.HotnessScore != models.MaxHotness {
		t.Fatalf("hotness = %v, want clamped %v", got.HotnessScore, models.MaxHotness)
	}
}
