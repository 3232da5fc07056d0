package news

import (
	"context"
	"time"
)

// Sentiment is the directional read of a news item for gold.
type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
	SentimentNeutral Sentiment = "NEUTRAL"
)

// Item is a scored news headline.
type Item struct {
	Title      string    `json:"title"`
	Source     string    `json:"source,omitempty"`
	URL        string    `json:"url,omitempty"`
	Sentiment  Sentiment `json:"sentiment"`
	Score      float64   `json:"score"`
	Importance string    `json:"importance,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Provider supplies recent scored news for the traded instrument.
type Provider interface {
	RecentNews(ctx context.Context, limit int) ([]Item, error)
}

// StaticProvider serves a fixed item list. Used in development and tests.
type StaticProvider struct {
	Items []Item
}

func (p *StaticProvider) RecentNews(_ context.Context, limit int) ([]Item, error) {
	if limit <= 0 || limit >= len(p.Items) {
		return p.Items, nil
	}
	return p.Items[:limit], nil
}
