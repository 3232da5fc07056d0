package analysis

import (
	"testing"

	"gold-analysis-bot/internal/market"
)

func hasPattern(patterns []CandlePattern, pt CandlePatternType) bool {
	for _, p := range patterns {
		if p.Type == pt {
			return true
		}
	}
	return false
}

// TestDetectBullishEngulfing tests the two-candle engulfing pattern
func TestDetectBullishEngulfing(t *testing.T) {
	detector := NewCandlestickDetector(10)

	series := market.BarSeries{
		bar(0, 100, 101, 99, 100.5),
		// Bearish candle
		bar(1, 100.5, 100.8, 99.2, 99.5),
		// Bullish candle engulfing the previous body
		bar(2, 99.3, 101.5, 99.1, 101),
	}

	patterns := detector.Detect(market.TF1h, series)

	if !hasPattern(patterns, PatternBullishEngulfing) {
		t.Fatalf("Expected bullish engulfing, got %+v", patterns)
	}
	for _, p := range patterns {
		if p.Type == PatternBullishEngulfing && p.Direction != market.DirectionBuy {
			t.Errorf("Expected BUY direction, got %s", p.Direction)
		}
	}
}

// TestDetectBearishEngulfing tests the mirrored pattern
func TestDetectBearishEngulfing(t *testing.T) {
	detector := NewCandlestickDetector(10)

	series := market.BarSeries{
		bar(0, 100, 101, 99, 100.5),
		// Bullish candle
		bar(1, 100, 101, 99.8, 100.8),
		// Bearish candle engulfing it
		bar(2, 101, 101.2, 99.5, 99.8),
	}

	patterns := detector.Detect(market.TF1h, series)

	if !hasPattern(patterns, PatternBearishEngulfing) {
		t.Fatalf("Expected bearish engulfing, got %+v", patterns)
	}
}

// TestDetectHammer tests the long-lower-wick reversal candle
func TestDetectHammer(t *testing.T) {
	detector := NewCandlestickDetector(10)

	series := market.BarSeries{
		bar(0, 100, 101, 99, 100),
		bar(1, 100, 101, 99, 100),
		// Body 0.5 at the top, lower wick 2.0, no upper wick
		bar(2, 99.5, 100, 97.5, 100),
	}

	patterns := detector.Detect(market.TF1h, series)

	if !hasPattern(patterns, PatternHammer) {
		t.Fatalf("Expected hammer, got %+v", patterns)
	}
}

// TestDetectShootingStar tests the long-upper-wick candle
func TestDetectShootingStar(t *testing.T) {
	detector := NewCandlestickDetector(10)

	series := market.BarSeries{
		bar(0, 100, 101, 99, 100),
		bar(1, 100, 101, 99, 100),
		// Body 0.5 at the bottom, upper wick 2.0
		bar(2, 100.5, 102.5, 100, 100),
	}

	patterns := detector.Detect(market.TF1h, series)

	if !hasPattern(patterns, PatternShootingStar) {
		t.Fatalf("Expected shooting star, got %+v", patterns)
	}
}

// TestDetectDojiVariants tests doji classification precedence
func TestDetectDojiVariants(t *testing.T) {
	detector := NewCandlestickDetector(10)

	// Plain doji: tiny body centered in the range.
	doji := market.BarSeries{
		bar(0, 100, 101, 99, 100.5),
		bar(1, 100, 101, 99, 100.5),
		bar(2, 100, 101, 99, 100.05),
	}
	patterns := detector.Detect(market.TF1h, doji)
	if !hasPattern(patterns, PatternDoji) {
		t.Fatalf("Expected doji, got %+v", patterns)
	}

	// Dragonfly: tiny body at the top, long lower wick.
	dragonfly := market.BarSeries{
		bar(0, 100, 101, 99, 100.5),
		bar(1, 100, 101, 99, 100.5),
		bar(2, 100, 100.05, 98, 100.04),
	}
	patterns = detector.Detect(market.TF1h, dragonfly)
	if !hasPattern(patterns, PatternDragonflyDoji) {
		t.Fatalf("Expected dragonfly doji, got %+v", patterns)
	}
	if hasPattern(patterns, PatternDoji) {
		t.Error("Dragonfly should take precedence over plain doji")
	}
}

// TestDetectMorningStar tests the three-candle reversal
func TestDetectMorningStar(t *testing.T) {
	detector := NewCandlestickDetector(10)

	series := market.BarSeries{
		// Long bearish candle
		bar(0, 103, 103.5, 99.5, 100),
		// Small star
		bar(1, 100, 100.6, 99.4, 100.3),
		// Bullish candle closing above the first body midpoint (101.5)
		bar(2, 100.3, 102.8, 100.2, 102.5),
	}

	patterns := detector.Detect(market.TF1h, series)

	if !hasPattern(patterns, PatternMorningStar) {
		t.Fatalf("Expected morning star, got %+v", patterns)
	}
}

// TestLatestDirectional tests picking the newest non-neutral pattern
func TestLatestDirectional(t *testing.T) {
	detector := NewCandlestickDetector(10)

	series := market.BarSeries{
		bar(0, 100, 101, 99, 100.5),
		bar(1, 100.5, 100.8, 99.2, 99.5),
		// Bullish engulfing at index 2
		bar(2, 99.3, 101.5, 99.1, 101),
		// Neutral doji at index 3
		bar(3, 101, 102, 100, 101.05),
	}

	pattern, ok := detector.LatestDirectional(market.TF1h, series)

	if !ok {
		t.Fatal("Expected a directional pattern")
	}
	if pattern.Type != PatternBullishEngulfing {
		t.Errorf("Expected bullish engulfing as latest directional, got %s", pattern.Type)
	}
}

// TestDetectShortSeries tests the minimum length guard
func TestDetectShortSeries(t *testing.T) {
	detector := NewCandlestickDetector(10)

	patterns := detector.Detect(market.TF1h, market.BarSeries{
		bar(0, 100, 101, 99, 100),
		bar(1, 100, 101, 99, 100),
	})

	if len(patterns) != 0 {
		t.Errorf("Expected no patterns on short series, got %d", len(patterns))
	}
}
