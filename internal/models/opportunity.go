package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity category labels. Candidates arriving with anything else are
// folded into CategoryOther.
const (
	CategoryP2E         = "P2E Games"
	CategoryAirdrops    = "Airdrops"
	CategoryNewListings = "New Listings"
	CategoryDeFi        = "DeFi"
	CategoryNFT         = "NFT"
	CategoryOther       = "Other"
)

// MaxHotness is the upper bound of the hotness scale.
const MaxHotness = 300.0

// Opportunity is a discovered crypto item (token, game, airdrop) ranked by
// a volatile hotness score. Money-like values are stored as numeric to avoid
// float errors.
type Opportunity struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"type:varchar(50);not null;index" json:"category"`

	// ContentKey deduplicates repeated discoveries of the same item across
	// ingestion passes (normalized name + source URL).
	ContentKey string `gorm:"type:varchar(500);uniqueIndex" json:"-"`

	SourceURL  string  `gorm:"type:varchar(500);not null" json:"sourceUrl"`
	ImageURL   *string `gorm:"type:varchar(500)" json:"imageUrl"`
	WebsiteURL *string `gorm:"type:varchar(500)" json:"websiteUrl"`
	DiscordURL *string `gorm:"type:varchar(500)" json:"discordUrl"`
	TwitterURL *string `gorm:"type:varchar(500)" json:"twitterUrl"`

	EstimatedValue *decimal.Decimal `gorm:"type:numeric(30,10)" json:"estimatedValue"`
	TradingVolume  decimal.Decimal  `gorm:"type:numeric(30,10);not null;default:0" json:"tradingVolume"`
	MarketCap      decimal.Decimal  `gorm:"type:numeric(30,10);not null;default:0" json:"marketCap"`

	Participants     int `gorm:"not null;default:0" json:"participants"`
	TwitterFollowers int `gorm:"not null;default:0" json:"twitterFollowers"`
	DiscordMembers   int `gorm:"not null;default:0" json:"discordMembers"`

	TimeRemaining *string    `gorm:"type:varchar(50)" json:"timeRemaining"`
	Deadline      *time.Time `gorm:"type:timestamptz" json:"deadline"`

	HotnessScore float64 `gorm:"not null;default:0;index" json:"hotnessScore"`
	IsActive     bool    `gorm:"not null;default:true;index" json:"isActive"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updatedAt"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// Candidate is the insert shape produced by source adapters before the
// store assigns identity and timestamps.
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SourceURL   string `json:"sourceUrl"`

	ImageURL   *string `json:"imageUrl"`
	WebsiteURL *string `json:"websiteUrl"`
	DiscordURL *string `json:"discordUrl"`
	TwitterURL *string `json:"twitterUrl"`

	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	TradingVolume  decimal.Decimal  `json:"tradingVolume"`
	MarketCap      decimal.Decimal  `json:"marketCap"`

	Participants     int `json:"participants"`
	TwitterFollowers int `json:"twitterFollowers"`
	DiscordMembers   int `json:"discordMembers"`

	TimeRemaining *string    `json:"timeRemaining"`
	Deadline      *time.Time `json:"deadline"`

	HotnessScore float64 `json:"hotnessScore"`
	IsActive     bool    `json:"isActive"`
}

// NormalizeCategory folds unrecognized labels into CategoryOther.
func NormalizeCategory(raw string) string {
	switch strings.TrimSpace(raw) {
	case CategoryP2E, CategoryAirdrops, CategoryNewListings, CategoryDeFi, CategoryNFT:
		return strings.TrimSpace(raw)
	default:
		return CategoryOther
	}
}

// ContentKeyFor builds the dedup key for a candidate: lower-cased trimmed
// name plus source URL.
func ContentKeyFor(name, sourceURL string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.TrimSpace(sourceURL)
}

// ClampHotness bounds a score to [0, MaxHotness].
func ClampHotness(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > MaxHotness {
		return MaxHotness
	}
	return score
}

// FromCandidate builds a persistable Opportunity from an adapter candidate.
// The hotness score is clamped and the content key derived here so every
// write path shares the same invariants.
func FromCandidate(c Candidate) Opportunity {
	return Opportunity{
		Name:             strings.TrimSpace(c.Name),
		Description:      c.Description,
		Category:         NormalizeCategory(c.Category),
		ContentKey:       ContentKeyFor(c.Name, c.SourceURL),
		SourceURL:        c.SourceURL,
		ImageURL:         c.ImageURL,
		WebsiteURL:       c.WebsiteURL,
		DiscordURL:       c.DiscordURL,
		TwitterURL:       c.TwitterURL,
		EstimatedValue:   c.EstimatedValue,
		TradingVolume:    c.TradingVolume,
		MarketCap:        c.MarketCap,
		Participants:     c.Participants,
		TwitterFollowers: c.TwitterFollowers,
		DiscordMembers:   c.DiscordMembers,
		TimeRemaining:    c.TimeRemaining,
		Deadline:         c.Deadline,
		HotnessScore:     ClampHotness(c.HotnessScore),
		IsActive:         c.IsActive,
	}
}
