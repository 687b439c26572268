package analytics

import (
	"context"

	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
)

// stubRepo is a test-only in-memory implementation of
// repository.Repository. Analytics only reads, so writes are no-ops.
type stubRepo struct {
	items []models.Opportunity
	err   error
}

func (s *stubRepo) CreateOpportunity(ctx context.Context, item *models.Opportunity) error {
	return nil
}

func (s *stubRepo) UpsertOpportunityByContentKey(ctx context.Context, item *models.Opportunity) error {
	return nil
}

func (s *stubRepo) GetOpportunityByID(ctx context.Context, id uint64) (*models.Opportunity, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, nil
}

func (s *stubRepo) UpdateOpportunity(ctx context.Context, id uint64, updates map[string]any) (*models.Opportunity, error) {
	return nil, nil
}

func (s *stubRepo) DeleteOpportunity(ctx context.Context, id uint64) (bool, error) {
	return false, nil
}

func (s *stubRepo) ListOpportunities(ctx context.Context, params repository.ListParams) ([]models.Opportunity, error) {
	return s.items, s.err
}

func (s *stubRepo) ListHotOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error) {
	if limit > len(s.items) {
		limit = len(s.items)
	}
	return s.items[:limit], s.err
}

func (s *stubRepo) ListActiveOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	return s.items, s.err
}

func (s *stubRepo) InsertSourceSnapshot(ctx context.Context, item *models.SourceSnapshot) error {
	return nil
}
