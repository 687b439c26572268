package sentiment

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"cryptoradar/internal/config"
	"cryptoradar/internal/source"
)

// SourceName is the tracker's entry on the status board.
const SourceName = "social"

const influencerFollowerFloor = 10_000

// Trend is the aggregated view for one tracked term over a poll window.
type Trend struct {
	Term               string  `json:"term"`
	Volume             int     `json:"volume"`
	Sentiment          float64 `json:"sentiment"`
	Mentions24h        int     `json:"mentions24h"`
	InfluencerMentions int     `json:"influencerMentions"`
	Trending           bool    `json:"trending"`
}

// TermSentiment is the compact shape the REST endpoint returns.
type TermSentiment struct {
	Term      string  `json:"term"`
	Sentiment float64 `json:"sentiment"`
	Volume    int     `json:"volume"`
}

// Broadcaster pushes an event to connected clients.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// Tracker polls the search API on two independent cadences: frequent
// mention batches and slower trend aggregation. Terms within a cycle run
// sequentially, and the first failure aborts the rest of that cycle on the
// assumption that it signals a rate limit; whatever was collected before
// the failure is still published. The next cycle retries naturally.
type Tracker struct {
	Client *Client
	Hub    Broadcaster
	Board  *source.StatusBoard
	Logger *zap.Logger
	Config config.SentimentConfig
}

// Run drives both poll loops until the context ends.
func (t *Tracker) Run(ctx context.Context) error {
	mentionWarmup := time.NewTimer(t.Config.MentionWarmup)
	defer mentionWarmup.Stop()
	trendWarmup := time.NewTimer(t.Config.TrendWarmup)
	defer trendWarmup.Stop()

	mentionTicker := time.NewTicker(orDefault(t.Config.MentionInterval, 15*time.Minute))
	defer mentionTicker.Stop()
	trendTicker := time.NewTicker(orDefault(t.Config.TrendInterval, 30*time.Minute))
	defer trendTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-mentionWarmup.C:
			t.trackMentions(ctx)
		case <-trendWarmup.C:
			t.updateTrends(ctx)
		case <-mentionTicker.C:
			t.trackMentions(ctx)
		case <-trendTicker.C:
			t.updateTrends(ctx)
		}
	}
}

// trackMentions polls the priority terms and publishes the most influential
// mentions collected this cycle.
func (t *Tracker) trackMentions(ctx context.Context) {
	var mentions []Mention
	failed := false
	for _, term := range t.Config.PriorityTerms {
		batch, err := t.Client.Search(ctx, term)
		if err != nil {
			t.abortCycle(term, err)
			failed = true
			break
		}
		mentions = append(mentions, batch...)
	}
	if !failed {
		t.Board.MarkSuccess(SourceName)
	}
	if len(mentions) == 0 {
		return
	}

	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].Influence() > mentions[j].Influence()
	})
	if len(mentions) > 10 {
		mentions = mentions[:10]
	}
	if t.Hub != nil {
		t.Hub.Broadcast("twitter_mentions", mentions)
	}
}

// updateTrends aggregates the trend terms and publishes them sorted by
// engagement volume.
func (t *Tracker) updateTrends(ctx context.Context) {
	var trends []Trend
	failed := false
	for _, term := range t.Config.TrendTerms {
		trend, err := t.TrendFor(ctx, term)
		if err != nil {
			t.abortCycle(term, err)
			failed = true
			break
		}
		if trend != nil {
			trends = append(trends, *trend)
		}
	}
	if !failed {
		t.Board.MarkSuccess(SourceName)
	}
	if len(trends) == 0 {
		return
	}

	sort.Slice(trends, func(i, j int) bool { return trends[i].Volume > trends[j].Volume })
	if t.Hub != nil {
		t.Hub.Broadcast("twitter_trends", trends)
	}
}

// TrendFor aggregates one term's recent mentions. Returns nil when the term
// has no mentions this window.
func (t *Tracker) TrendFor(ctx context.Context, term string) (*Trend, error) {
	mentions, err := t.Client.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(mentions) == 0 {
		return nil, nil
	}

	sentimentSum := 0.0
	volume := 0
	influencers := 0
	for _, m := range mentions {
		sentimentSum += SentimentValue(m.Sentiment)
		volume += m.PublicMetrics.RetweetCount + m.PublicMetrics.LikeCount
		if m.AuthorFollowers > influencerFollowerFloor {
			influencers++
		}
	}

	return &Trend{
		Term:               term,
		Volume:             volume,
		Sentiment:          sentimentSum / float64(len(mentions)),
		Mentions24h:        len(mentions),
		InfluencerMentions: influencers,
		Trending:           volume > 100 && len(mentions) > 5,
	}, nil
}

// TrendingSentiment serves the on-demand REST view: the trend terms reduced
// to {term, sentiment, volume}, best effort under the same abort-on-failure
// rule as the poll loops.
func (t *Tracker) TrendingSentiment(ctx context.Context) []TermSentiment {
	var out []TermSentiment
	for _, term := range t.Config.TrendTerms {
		trend, err := t.TrendFor(ctx, term)
		if err != nil {
			t.abortCycle(term, err)
			break
		}
		if trend != nil {
			out = append(out, TermSentiment{Term: trend.Term, Sentiment: trend.Sentiment, Volume: trend.Volume})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Volume > out[j].Volume })
	return out
}

func (t *Tracker) abortCycle(term string, err error) {
	if t.Logger != nil {
		if source.IsRateLimited(err) {
			t.Logger.Warn("rate limited, skipping rest of sentiment cycle", zap.String("term", term))
		} else {
			t.Logger.Warn("sentiment fetch failed, skipping rest of cycle",
				zap.String("term", term), zap.Error(err))
		}
	}
	t.Board.MarkFailure(SourceName, err)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
