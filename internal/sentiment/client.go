package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cryptoradar/internal/config"
	"cryptoradar/internal/source"
)

// Mention is one classified social post.
type Mention struct {
	ID              string        `json:"id"`
	Text            string        `json:"text"`
	Author          string        `json:"author"`
	AuthorFollowers int           `json:"authorFollowers"`
	CreatedAt       time.Time     `json:"createdAt"`
	PublicMetrics   PublicMetrics `json:"publicMetrics"`
	Sentiment       string        `json:"sentiment"`
	RelevantTerms   []string      `json:"relevantTerms"`
	Hashtags        []string      `json:"hashtags"`
}

type PublicMetrics struct {
	RetweetCount int `json:"retweetCount"`
	LikeCount    int `json:"likeCount"`
	ReplyCount   int `json:"replyCount"`
	QuoteCount   int `json:"quoteCount"`
}

// Influence is the ranking weight: reach times engagement.
func (m Mention) Influence() int64 {
	return int64(m.AuthorFollowers) * int64(m.PublicMetrics.RetweetCount+m.PublicMetrics.LikeCount)
}

// Client queries a recent-search API and classifies the results. Every call
// goes through the shared pacer first.
type Client struct {
	HTTP       *http.Client
	Logger     *zap.Logger
	Config     config.SentimentConfig
	Pacer      *Pacer
	Classifier Classifier
}

type searchResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		AuthorID      string `json:"author_id"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			RetweetCount int `json:"retweet_count"`
			LikeCount    int `json:"like_count"`
			ReplyCount   int `json:"reply_count"`
			QuoteCount   int `json:"quote_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
			} `json:"public_metrics"`
		} `json:"users"`
	} `json:"includes"`
}

// Search fetches recent posts mentioning the term and classifies each one.
func (c *Client) Search(ctx context.Context, term string) ([]Mention, error) {
	if err := c.Pacer.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, term)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	followers := map[string]int{}
	usernames := map[string]string{}
	for _, u := range parsed.Includes.Users {
		followers[u.ID] = u.PublicMetrics.FollowersCount
		usernames[u.ID] = u.Username
	}

	mentions := make([]Mention, 0, len(parsed.Data))
	for _, tweet := range parsed.Data {
		author := usernames[tweet.AuthorID]
		if author == "" {
			author = "unknown"
		}
		createdAt, _ := time.Parse(time.RFC3339, tweet.CreatedAt)
		mentions = append(mentions, Mention{
			ID:              tweet.ID,
			Text:            tweet.Text,
			Author:          author,
			AuthorFollowers: followers[tweet.AuthorID],
			CreatedAt:       createdAt,
			PublicMetrics: PublicMetrics{
				RetweetCount: tweet.PublicMetrics.RetweetCount,
				LikeCount:    tweet.PublicMetrics.LikeCount,
				ReplyCount:   tweet.PublicMetrics.ReplyCount,
				QuoteCount:   tweet.PublicMetrics.QuoteCount,
			},
			Sentiment:     c.Classifier.Sentiment(tweet.Text),
			RelevantTerms: c.Classifier.RelevantTerms(tweet.Text),
			Hashtags:      Hashtags(tweet.Text),
		})
	}
	return mentions, nil
}

func (c *Client) get(ctx context.Context, term string) ([]byte, error) {
	maxResults := c.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	params := url.Values{}
	params.Set("query", term)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("expansions", "author_id")
	params.Set("user.fields", "public_metrics")
	params.Set("tweet.fields", "public_metrics,created_at")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if token := os.Getenv(c.Config.BearerTokenEnv); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &source.APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
