package signal

import (
	"testing"

	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/news"
)

func newsItem(title string, sentiment news.Sentiment) news.Item {
	return news.Item{Title: title, Sentiment: sentiment}
}

// TestNewsNeutralWhenEmpty tests the no-news default
func TestNewsNeutralWhenEmpty(t *testing.T) {
	check := checkNewsAlignment(nil, market.DirectionBuy)

	if check.Conflicting {
		t.Error("Expected no conflict without news")
	}
	if check.Sentiment != "NEUTRAL" || check.Impact != "LOW" {
		t.Errorf("Expected NEUTRAL/LOW, got %s/%s", check.Sentiment, check.Impact)
	}
}

// TestNewsSentimentMajority tests the 1.5x majority rule
func TestNewsSentimentMajority(t *testing.T) {
	items := []news.Item{
		newsItem("gold demand rises", news.SentimentBullish),
		newsItem("central banks keep buying", news.SentimentBullish),
		newsItem("dollar firms slightly", news.SentimentBearish),
	}

	check := checkNewsAlignment(items, market.DirectionSell)

	// 2 bullish vs 1 bearish: 2 > 1.5, bullish overall.
	if check.Sentiment != "BULLISH" {
		t.Errorf("Expected BULLISH sentiment, got %s", check.Sentiment)
	}
	// No high-impact keywords, so no conflict even against a SELL.
	if check.Conflicting {
		t.Error("Expected no conflict without high-impact items")
	}
	if check.Impact != "LOW" {
		t.Errorf("Expected LOW impact, got %s", check.Impact)
	}
}

// TestNewsConflictNeedsHighImpact tests that a conflict takes two or more
// high-impact opposing headlines
func TestNewsConflictNeedsHighImpact(t *testing.T) {
	items := []news.Item{
		newsItem("Fed signals more rate hikes ahead", news.SentimentBearish),
		newsItem("CPI comes in hot, inflation sticky", news.SentimentBearish),
		newsItem("gold slips on yields", news.SentimentBearish),
	}

	check := checkNewsAlignment(items, market.DirectionBuy)

	if check.Sentiment != "BEARISH" {
		t.Errorf("Expected BEARISH sentiment, got %s", check.Sentiment)
	}
	if check.Impact != "HIGH" {
		t.Errorf("Expected HIGH impact, got %s", check.Impact)
	}
	if !check.Conflicting {
		t.Error("Expected conflict for BUY against high-impact bearish news")
	}

	// Same items do not conflict with a SELL.
	check = checkNewsAlignment(items, market.DirectionSell)
	if check.Conflicting {
		t.Error("Expected aligned news for SELL")
	}
}

// TestNewsSingleHighImpact tests the MEDIUM impact tier
func TestNewsSingleHighImpact(t *testing.T) {
	items := []news.Item{
		newsItem("NFP beats expectations", news.SentimentBearish),
		newsItem("gold steady in quiet trade", news.SentimentNeutral),
	}

	check := checkNewsAlignment(items, market.DirectionBuy)

	if check.Impact != "MEDIUM" {
		t.Errorf("Expected MEDIUM impact, got %s", check.Impact)
	}
	if check.Conflicting {
		t.Error("Expected no conflict with a single high-impact item")
	}
}
