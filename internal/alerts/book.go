package alerts

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ConditionAbove = "above"
	ConditionBelow = "below"
)

var (
	ErrInvalidSymbol    = errors.New("symbol is required")
	ErrInvalidPrice     = errors.New("target price must be positive")
	ErrInvalidCondition = errors.New("condition must be above or below")
)

// Alert is one user's price watch. Alerts are never triggered or expired
// here; removal is by explicit deactivation.
type Alert struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	Condition   string          `json:"condition"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Book holds price alerts keyed per user, in memory only. Alerts are
// presentation-layer state and deliberately live outside the opportunity
// store.
type Book struct {
	mu     sync.RWMutex
	byUser map[string][]*Alert
}

func NewBook() *Book {
	return &Book{byUser: map[string][]*Alert{}}
}

// Create validates and stores a new alert. Symbols are normalized to
// upper case.
func (b *Book) Create(userID, symbol string, targetPrice decimal.Decimal, condition string) (Alert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Alert{}, ErrInvalidSymbol
	}
	if !targetPrice.IsPositive() {
		return Alert{}, ErrInvalidPrice
	}
	if condition != ConditionAbove && condition != ConditionBelow {
		return Alert{}, ErrInvalidCondition
	}

	alert := &Alert{
		ID:          uuid.NewString(),
		UserID:      userID,
		Symbol:      symbol,
		TargetPrice: targetPrice,
		Condition:   condition,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	b.mu.Lock()
	b.byUser[userID] = append(b.byUser[userID], alert)
	b.mu.Unlock()

	return *alert, nil
}

// List returns the user's active alerts, creation order preserved.
func (b *Book) List(userID string) []Alert {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Alert, 0, len(b.byUser[userID]))
	for _, alert := range b.byUser[userID] {
		if alert.IsActive {
			out = append(out, *alert)
		}
	}
	return out
}

// Deactivate marks one alert inactive. Returns false when the user has no
// alert with that id.
func (b *Book) Deactivate(userID, alertID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, alert := range b.byUser[userID] {
		if alert.ID == alertID && alert.IsActive {
			alert.IsActive = false
			return true
		}
	}
	return false
}
