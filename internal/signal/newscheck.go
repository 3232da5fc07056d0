package signal

import (
	"strings"

	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/news"
)

// highImpactKeywords flag headlines likely to move gold violently.
var highImpactKeywords = []string{"rate", "fed", "cpi", "nfp", "inflation", "crisis"}

const maxNewsItems = 10

// checkNewsAlignment aggregates recent sentiment and decides whether it
// conflicts with the technical direction. A conflict needs an opposing
// sentiment majority of at least 1.5x plus two or more high-impact items.
func checkNewsAlignment(items []news.Item, direction market.Direction) NewsCheck {
	if len(items) == 0 {
		return NewsCheck{Sentiment: string(news.SentimentNeutral), Impact: "LOW"}
	}
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}

	var bullish, bearish, highImpact int
	for _, item := range items {
		switch item.Sentiment {
		case news.SentimentBullish:
			bullish++
		case news.SentimentBearish:
			bearish++
		}
		title := strings.ToLower(item.Title)
		for _, keyword := range highImpactKeywords {
			if strings.Contains(title, keyword) {
				highImpact++
				break
			}
		}
	}

	sentiment := news.SentimentNeutral
	if float64(bullish) > float64(bearish)*1.5 {
		sentiment = news.SentimentBullish
	} else if float64(bearish) > float64(bullish)*1.5 {
		sentiment = news.SentimentBearish
	}

	conflicting := highImpact >= 2 &&
		((direction == market.DirectionBuy && sentiment == news.SentimentBearish) ||
			(direction == market.DirectionSell && sentiment == news.SentimentBullish))

	impact := "LOW"
	if highImpact >= 2 {
		impact = "HIGH"
	} else if highImpact == 1 {
		impact = "MEDIUM"
	}

	return NewsCheck{
		Conflicting: conflicting,
		Sentiment:   string(sentiment),
		Impact:      impact,
	}
}
