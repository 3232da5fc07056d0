package ict

import (
	"time"

	"gold-analysis-bot/internal/market"
)

// BreakerType represents the flipped polarity of a failed order block
type BreakerType string

const (
	BullishBreaker BreakerType = "BULLISH_BREAKER"
	BearishBreaker BreakerType = "BEARISH_BREAKER"
)

// BreakerConfidence grades how reliable a breaker is expected to be
type BreakerConfidence string

const (
	BreakerHigh   BreakerConfidence = "HIGH"
	BreakerMedium BreakerConfidence = "MEDIUM"
)

// BreakerBlock is a former order block that was broken and failed its
// retest, now expected to act with the opposite polarity.
type BreakerBlock struct {
	Type         BreakerType
	OriginalType OrderBlockType
	High         float64
	Low          float64
	Timestamp    time.Time
	Confidence   BreakerConfidence
}

// BreakerDetector reclassifies broken order blocks as breakers
type BreakerDetector struct {
	retestWindow int // bars inspected for a failed retest
}

// NewBreakerDetector creates a detector using a 10-bar retest window.
func NewBreakerDetector() *BreakerDetector {
	return &BreakerDetector{retestWindow: 10}
}

// Detect flags an order block as a breaker when the latest close is beyond
// the block and at least one bar inside the retest window touched the zone
// without reclaiming it: for a broken bullish block, a bar whose low reaches
// the block's high while its close stays below the block's low. The retest
// condition is evaluated per bar and OR-ed across the window.
func (d *BreakerDetector) Detect(blocks []OrderBlock, series market.BarSeries) []BreakerBlock {
	if len(blocks) == 0 || len(series) == 0 {
		return nil
	}

	currentPrice := series.LastClose()
	recent := series.Tail(d.retestWindow)

	var breakers []BreakerBlock

	for _, ob := range blocks {
		switch ob.Type {
		case BullishOB:
			if currentPrice >= ob.Low {
				continue
			}
			if anyBar(recent, func(b market.Bar) bool {
				return b.Low <= ob.High && b.Close < ob.Low
			}) {
				breakers = append(breakers, BreakerBlock{
					Type:         BearishBreaker,
					OriginalType: BullishOB,
					High:         ob.High,
					Low:          ob.Low,
					Timestamp:    ob.Timestamp,
					Confidence:   breakerConfidence(ob.Strength),
				})
			}
		case BearishOB:
			if currentPrice <= ob.High {
				continue
			}
			if anyBar(recent, func(b market.Bar) bool {
				return b.High >= ob.Low && b.Close > ob.High
			}) {
				breakers = append(breakers, BreakerBlock{
					Type:         BullishBreaker,
					OriginalType: BearishOB,
					High:         ob.High,
					Low:          ob.Low,
					Timestamp:    ob.Timestamp,
					Confidence:   breakerConfidence(ob.Strength),
				})
			}
		}
	}

	return breakers
}

func breakerConfidence(strength float64) BreakerConfidence {
	if strength > 2 {
		return BreakerHigh
	}
	return BreakerMedium
}

func anyBar(series market.BarSeries, cond func(market.Bar) bool) bool {
	for _, b := range series {
		if cond(b) {
			return true
		}
	}
	return false
}
