package ict

import (
	"testing"

	"gold-analysis-bot/internal/market"
)

// TestBullishBlockFlipsToBearishBreaker tests a broken bullish order block
// with a failed retest becoming a bearish breaker
func TestBullishBlockFlipsToBearishBreaker(t *testing.T) {
	detector := NewBreakerDetector()

	blocks := []OrderBlock{
		{Type: BullishOB, High: 105, Low: 100, Strength: 3},
	}

	series := market.BarSeries{
		// Break below the block
		bar(0, 101, 101.5, 98.5, 99),
		// Retest reaches into the zone but closes back below it
		bar(1, 99, 104, 98.8, 99.2),
		bar(2, 99.2, 99.5, 97.5, 98),
	}

	breakers := detector.Detect(blocks, series)

	if len(breakers) != 1 {
		t.Fatalf("Expected 1 breaker, got %d", len(breakers))
	}

	brk := breakers[0]

	if brk.Type != BearishBreaker {
		t.Errorf("Expected BearishBreaker, got %s", brk.Type)
	}
	if brk.OriginalType != BullishOB {
		t.Errorf("Expected original BullishOB, got %s", brk.OriginalType)
	}
	if brk.High != 105 || brk.Low != 100 {
		t.Errorf("Expected zone [100, 105], got [%f, %f]", brk.Low, brk.High)
	}
	if brk.Confidence != BreakerHigh {
		t.Errorf("Expected HIGH confidence for strength 3, got %s", brk.Confidence)
	}
}

// TestBearishBlockFlipsToBullishBreaker tests the symmetric bearish case
func TestBearishBlockFlipsToBullishBreaker(t *testing.T) {
	detector := NewBreakerDetector()

	blocks := []OrderBlock{
		{Type: BearishOB, High: 110, Low: 105, Strength: 1.5},
	}

	series := market.BarSeries{
		// Break above the block
		bar(0, 109, 111.5, 108.5, 111),
		// Retest dips toward the zone but closes back above it
		bar(1, 111, 112, 106, 110.5),
		bar(2, 110.5, 112.5, 110, 112),
	}

	breakers := detector.Detect(blocks, series)

	if len(breakers) != 1 {
		t.Fatalf("Expected 1 breaker, got %d", len(breakers))
	}
	if breakers[0].Type != BullishBreaker {
		t.Errorf("Expected BullishBreaker, got %s", breakers[0].Type)
	}
	if breakers[0].Confidence != BreakerMedium {
		t.Errorf("Expected MEDIUM confidence for strength 1.5, got %s", breakers[0].Confidence)
	}
}

// TestIntactBlockIsNotABreaker tests that a block still holding price
// stays an order block
func TestIntactBlockIsNotABreaker(t *testing.T) {
	detector := NewBreakerDetector()

	blocks := []OrderBlock{
		{Type: BullishOB, High: 105, Low: 100, Strength: 3},
	}

	// Price remains above the bullish block.
	series := market.BarSeries{
		bar(0, 106, 107, 105.5, 106.5),
		bar(1, 106.5, 108, 106, 107.5),
	}

	breakers := detector.Detect(blocks, series)

	if len(breakers) != 0 {
		t.Errorf("Expected no breakers while the block holds, got %d", len(breakers))
	}
}

// TestBreakerEmptyInputs tests the empty-result contract
func TestBreakerEmptyInputs(t *testing.T) {
	detector := NewBreakerDetector()

	if got := detector.Detect(nil, flatSeries(5)); len(got) != 0 {
		t.Errorf("Expected no breakers without blocks, got %d", len(got))
	}
	if got := detector.Detect([]OrderBlock{{Type: BullishOB}}, nil); len(got) != 0 {
		t.Errorf("Expected no breakers without bars, got %d", len(got))
	}
}
