package ict

import (
	"testing"

	"gold-analysis-bot/internal/market"
)

// trendSeries builds 30 gently rising bars and then carves swing extremes
// at fixed indices: highs at 7 and 17, lows at 12 and 22.
func trendSeries(high7, high17, low12, low22 float64) market.BarSeries {
	series := make(market.BarSeries, 30)
	for i := range series {
		h := 101 + float64(i)*0.01
		l := 99 + float64(i)*0.01
		series[i] = bar(i, l+0.5, h, l, l+1)
	}
	series[7].High = high7
	series[17].High = high17
	series[12].Low = low12
	series[22].Low = low22
	return series
}

// TestBullishStructure tests higher highs and higher lows producing a
// bullish trend with a break of structure
func TestBullishStructure(t *testing.T) {
	analyzer := NewStructureAnalyzer()

	ms := analyzer.Analyze(trendSeries(105, 107, 98, 98.5))

	if len(ms.SwingHighs) != 2 {
		t.Fatalf("Expected 2 swing highs, got %d", len(ms.SwingHighs))
	}
	if len(ms.SwingLows) != 2 {
		t.Fatalf("Expected 2 swing lows, got %d", len(ms.SwingLows))
	}
	if ms.SwingHighs[0].Index != 7 || ms.SwingHighs[1].Index != 17 {
		t.Errorf("Expected swing highs at 7 and 17, got %d and %d",
			ms.SwingHighs[0].Index, ms.SwingHighs[1].Index)
	}

	if ms.Current != market.TrendBullish {
		t.Errorf("Expected bullish trend, got %s", ms.Current)
	}
	if !ms.HasBOS() {
		t.Fatal("Expected a break of structure")
	}
	if ms.BOSEvents[0].Type != BullishBOS {
		t.Errorf("Expected BullishBOS, got %s", ms.BOSEvents[0].Type)
	}
	if ms.BOSEvents[0].Level != 105 || ms.BOSEvents[0].BrokenAt != 107 {
		t.Errorf("Expected break of 105 at 107, got %f at %f",
			ms.BOSEvents[0].Level, ms.BOSEvents[0].BrokenAt)
	}
	if len(ms.CHoCHEvents) != 0 {
		t.Errorf("Expected no CHoCH in a continuation, got %d", len(ms.CHoCHEvents))
	}
}

// TestBearishChangeOfCharacter tests lower lows flipping the trend bearish
func TestBearishChangeOfCharacter(t *testing.T) {
	analyzer := NewStructureAnalyzer()

	// Highs descend, lows break lower.
	ms := analyzer.Analyze(trendSeries(107, 105, 98.5, 98))

	if ms.Current != market.TrendBearish {
		t.Errorf("Expected bearish trend, got %s", ms.Current)
	}
	if len(ms.CHoCHEvents) != 1 {
		t.Fatalf("Expected 1 CHoCH event, got %d", len(ms.CHoCHEvents))
	}
	if ms.CHoCHEvents[0].Type != BearishCHoCH {
		t.Errorf("Expected BearishCHoCH, got %s", ms.CHoCHEvents[0].Type)
	}
	if ms.CHoCHEvents[0].Level != 98.5 {
		t.Errorf("Expected broken level 98.5, got %f", ms.CHoCHEvents[0].Level)
	}

	found := false
	for _, ev := range ms.BOSEvents {
		if ev.Type == BearishBOS && ev.Level == 98.5 && ev.BrokenAt == 98 {
			found = true
		}
	}
	if !found {
		t.Error("Expected a BearishBOS on the lower low")
	}
}

// TestStructureShortSeries tests the ranging default on short input
func TestStructureShortSeries(t *testing.T) {
	analyzer := NewStructureAnalyzer()

	ms := analyzer.Analyze(flatSeries(8))

	if ms.Current != market.TrendRanging {
		t.Errorf("Expected ranging trend on short series, got %s", ms.Current)
	}
	if len(ms.SwingHighs) != 0 || len(ms.SwingLows) != 0 {
		t.Error("Expected no swing points on short series")
	}
}

// TestInducementDetection tests a fake breakout reversing within 5 bars
func TestInducementDetection(t *testing.T) {
	analyzer := NewStructureAnalyzer()

	series := make(market.BarSeries, 20)
	for i := range series {
		series[i] = bar(i, 100, 101, 99, 100)
	}
	// Fresh high at 103, reversed below its open 5 bars later.
	series[8] = bar(8, 100, 103, 99, 100.2)
	series[13] = bar(13, 100, 100.5, 99, 99.2)

	ms := analyzer.Analyze(series)

	if !ms.InducementDetected {
		t.Error("Expected inducement to be detected")
	}
}

// TestNoInducementInQuietMarket tests that flat price action stays clean
func TestNoInducementInQuietMarket(t *testing.T) {
	analyzer := NewStructureAnalyzer()

	series := make(market.BarSeries, 20)
	for i := range series {
		series[i] = bar(i, 100, 101, 99, 100)
	}

	ms := analyzer.Analyze(series)

	if ms.InducementDetected {
		t.Error("Expected no inducement in a flat market")
	}
}
