package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptoradar/internal/models"
	"cryptoradar/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateOpportunity(ctx context.Context, item *models.Opportunity) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.HotnessScore = models.ClampHotness(item.HotnessScore)
	if strings.TrimSpace(item.ContentKey) == "" {
		item.ContentKey = models.ContentKeyFor(item.Name, item.SourceURL)
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// UpsertOpportunityByContentKey inserts a new record or refreshes the
// metrics of an existing one discovered in an earlier pass. Identity and
// created_at of the existing row are preserved.
func (s *Store) UpsertOpportunityByContentKey(ctx context.Context, item *models.Opportunity) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.HotnessScore = models.ClampHotness(item.HotnessScore)
	if strings.TrimSpace(item.ContentKey) == "" {
		item.ContentKey = models.ContentKeyFor(item.Name, item.SourceURL)
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description",
			"image_url",
			"website_url",
			"discord_url",
			"twitter_url",
			"estimated_value",
			"trading_volume",
			"market_cap",
			"participants",
			"twitter_followers",
			"discord_members",
			"time_remaining",
			"deadline",
			"hotness_score",
			"is_active",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetOpportunityByID(ctx context.Context, id uint64) (*models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Opportunity
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateOpportunity(ctx context.Context, id uint64, updates map[string]any) (*models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if score, ok := updates["hotness_score"]; ok {
		if f, ok := score.(float64); ok {
			updates["hotness_score"] = models.ClampHotness(f)
		}
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetOpportunityByID(ctx, id)
}

func (s *Store) DeleteOpportunity(ctx context.Context, id uint64) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Delete(&models.Opportunity{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) ListOpportunities(ctx context.Context, params repository.ListParams) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("is_active = ?", true)
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("lower(category) = ?", strings.ToLower(strings.TrimSpace(*params.Category)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		// Records created exactly at the cutoff are included.
		query = query.Where("created_at >= ?", *params.Since)
	}
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(*params.Search)) + "%"
		query = query.Where(
			"lower(name) LIKE ? OR lower(description) LIKE ? OR lower(category) LIKE ?",
			term, term, term,
		)
	}
	query = query.Order("hotness_score desc")
	if params.Limit > 0 {
		query = query.Limit(normalizeLimit(params.Limit, 200))
	}
	var items []models.Opportunity
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListHotOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Opportunity
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("is_active = ?", true).
		Order("hotness_score desc").
		Limit(normalizeLimit(limit, 4)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListActiveOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	return s.ListOpportunities(ctx, repository.ListParams{})
}

func (s *Store) InsertSourceSnapshot(ctx context.Context, item *models.SourceSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.FetchedAt.IsZero() {
		item.FetchedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// InsertRawSnapshot is a convenience wrapper for the adapter raw sink.
func (s *Store) InsertRawSnapshot(ctx context.Context, sourceName string, payload []byte, items int) error {
	return s.InsertSourceSnapshot(ctx, &models.SourceSnapshot{
		Source:    sourceName,
		ItemCount: items,
		Payload:   datatypes.JSON(payload),
		FetchedAt: time.Now().UTC(),
	})
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}
