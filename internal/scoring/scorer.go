package scoring

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"cryptoradar/internal/models"
)

// Scoring constants. Every candidate is new at ingestion time, so the
// recency term is flat.
const (
	recencyBonus      = 100.0
	socialCap         = 50.0
	discordCap        = 30.0
	volumeBonus       = 40.0
	valueBonus        = 30.0
	JitterAmplitude   = 50.0
	volumeThreshold   = 100_000
	valueThreshold    = 500
	followersPerPoint = 1000.0
	membersPerPoint   = 500.0
)

// Scorer maps a candidate's attributes to a hotness score in
// [0, models.MaxHotness]. Jitter is a replaceable dependency so
// deterministic tests can pin it to zero.
type Scorer struct {
	Jitter func() float64
}

func New() *Scorer {
	return &Scorer{
		Jitter: func() float64 { return rand.Float64() * JitterAmplitude },
	}
}

// Score never fails and always returns a value in [0, MaxHotness], even
// for negative or absurd input metrics.
func (s *Scorer) Score(c models.Candidate) float64 {
	score := recencyBonus

	if c.TwitterFollowers > 0 {
		social := float64(c.TwitterFollowers) / followersPerPoint
		if social > socialCap {
			social = socialCap
		}
		score += social
	}
	if c.DiscordMembers > 0 {
		discord := float64(c.DiscordMembers) / membersPerPoint
		if discord > discordCap {
			discord = discordCap
		}
		score += discord
	}
	if c.TradingVolume.GreaterThan(decimal.NewFromInt(volumeThreshold)) {
		score += volumeBonus
	}
	if c.EstimatedValue != nil && c.EstimatedValue.GreaterThan(decimal.NewFromInt(valueThreshold)) {
		score += valueBonus
	}

	if s != nil && s.Jitter != nil {
		score += s.Jitter()
	}

	return models.ClampHotness(score)
}
