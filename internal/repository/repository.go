package repository

import (
	"context"
	"time"

	"cryptoradar/internal/models"
)

// ListParams narrows opportunity reads. All read paths exclude inactive
// records and order by hotness descending.
type ListParams struct {
	Category *string
	Since    *time.Time
	Search   *string
	Limit    int
}

// Repository is the persistence boundary for the discovery pipeline.
// Not-found is returned as a nil record, never as an error.
type Repository interface {
	// Opportunities
	CreateOpportunity(ctx context.Context, item *models.Opportunity) error
	UpsertOpportunityByContentKey(ctx context.Context, item *models.Opportunity) error
	GetOpportunityByID(ctx context.Context, id uint64) (*models.Opportunity, error)
	UpdateOpportunity(ctx context.Context, id uint64, updates map[string]any) (*models.Opportunity, error)
	DeleteOpportunity(ctx context.Context, id uint64) (bool, error)
	ListOpportunities(ctx context.Context, params ListParams) ([]models.Opportunity, error)
	ListHotOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error)
	ListActiveOpportunities(ctx context.Context) ([]models.Opportunity, error)

	// Raw fetch audit trail.
	InsertSourceSnapshot(ctx context.Context, item *models.SourceSnapshot) error
}
