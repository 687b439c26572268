package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cryptoradar/internal/config"
	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
	"cryptoradar/internal/scoring"
	"cryptoradar/internal/source"
)

type stubRepo struct {
	mu      sync.Mutex
	upserts []models.Opportunity
	active  []models.Opportunity
}

func (s *stubRepo) CreateOpportunity(ctx context.Context, item *models.Opportunity) error {
	return nil
}

func (s *stubRepo) UpsertOpportunityByContentKey(ctx context.Context, item *models.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, *item)
	return nil
}

func (s *stubRepo) GetOpportunityByID(ctx context.Context, id uint64) (*models.Opportunity, error) {
	return nil, nil
}

func (s *stubRepo) UpdateOpportunity(ctx context.Context, id uint64, updates map[string]any) (*models.Opportunity, error) {
	return nil, nil
}

func (s *stubRepo) DeleteOpportunity(ctx context.Context, id uint64) (bool, error) {
	return false, nil
}

func (s *stubRepo) ListOpportunities(ctx context.Context, params repository.ListParams) ([]models.Opportunity, error) {
	return s.active, nil
}

func (s *stubRepo) ListHotOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error) {
	return s.active, nil
}

func (s *stubRepo) ListActiveOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Opportunity(nil), s.upserts...), nil
}

func (s *stubRepo) InsertSourceSnapshot(ctx context.Context, item *models.SourceSnapshot) error {
	return nil
}

func (s *stubRepo) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts)
}

type stubAdapter struct {
	name       string
	candidates []models.Candidate
	err        error
	block      chan struct{}
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	if a.block != nil {
		<-a.block
	}
	return a.candidates, a.err
}

type recordingHub struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHub) Broadcast(event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func candidate(name string) models.Candidate {
	return models.Candidate{
		Name:        name,
		Description: "d",
		Category:    models.CategoryP2E,
		SourceURL:   "https://example.com",
		IsActive:    true,
	}
}

func newTestScheduler(repo *stubRepo, hub *recordingHub, adapters ...source.Adapter) *Scheduler {
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	return &Scheduler{
		Repo:     repo,
		Scorer:   &scoring.Scorer{Jitter: func() float64 { return 0 }},
		Board:    source.NewStatusBoard(names...),
		Hub:      hub,
		Config:   config.IngestConfig{AdapterDelay: time.Millisecond},
		Adapters: adapters,
	}
}

func TestFailingAdapterDoesNotBlockOthers(t *testing.T) {
	repo := &stubRepo{}
	hub := &recordingHub{}
	s := newTestScheduler(repo, hub,
		&stubAdapter{name: "bad", err: errors.New("boom")},
		&stubAdapter{name: "good", candidates: []models.Candidate{candidate("Alpha")}},
	)

	if !s.RunPass(context.Background()) {
		t.Fatalf("RunPass returned false")
	}

	if repo.upsertCount() != 1 {
		t.Fatalf("upserts = %d, want 1", repo.upsertCount())
	}
	bad, _ := s.Board.Get("bad")
	if bad.Active || bad.Error == nil {
		t.Fatalf("bad source status = %+v", bad)
	}
	good, _ := s.Board.Get("good")
	if !good.Active {
		t.Fatalf("good source status = %+v", good)
	}
	if len(hub.events) != 1 || hub.events[0] != "opportunities_update" {
		t.Fatalf("events = %v", hub.events)
	}
}

func TestFallbackCandidatesStoredDespiteError(t *testing.T) {
	repo := &stubRepo{}
	s := newTestScheduler(repo, &recordingHub{},
		&stubAdapter{
			name:       "listings",
			candidates: []models.Candidate{candidate("Synthetic")},
			err:        errors.New("401"),
		},
	)

	s.RunPass(context.Background())

	if repo.upsertCount() != 1 {
		t.Fatalf("fallback candidates dropped, upserts = %d", repo.upsertCount())
	}
	st, _ := s.Board.Get("listings")
	if st.Active {
		t.Fatalf("failed source marked active")
	}
}

func TestRunPassScoresCandidates(t *testing.T) {
	repo := &stubRepo{}
	c := candidate("Alpha")
	c.TwitterFollowers = 1_000_000
	s := newTestScheduler(repo, &recordingHub{},
		&stubAdapter{name: "src", candidates: []models.Candidate{c}},
	)

	s.RunPass(context.Background())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	// 100 recency + 50 capped social, zero jitter.
	if got := repo.upserts[0].HotnessScore; got != 150 {
		t.Fatalf("stored hotness = %v, want 150", got)
	}
	if repo.upserts[0].ContentKey == "" {
		t.Fatalf("content key not derived")
	}
}

func TestOverlappingPassSkipped(t *testing.T) {
	repo := &stubRepo{}
	block := make(chan struct{})
	s := newTestScheduler(repo, &recordingHub{},
		&stubAdapter{name: "slow", block: block},
	)

	done := make(chan bool, 1)
	go func() { done <- s.RunPass(context.Background()) }()

	// Wait for the first pass to be inside the adapter.
	for i := 0; ; i++ {
		if s.inFlight.Load() {
			break
		}
		if i > 1000 {
			t.Fatalf("first pass never started")
		}
		time.Sleep(time.Millisecond)
	}

	if s.RunPass(context.Background()) {
		t.Fatalf("overlapping pass should be skipped")
	}

	close(block)
	if !<-done {
		t.Fatalf("first pass should report completion")
	}
	if s.RunPass(context.Background()) != true {
		t.Fatalf("pass after completion should run")
	}
}
