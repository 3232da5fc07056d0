package ict

import (
	"time"

	"gold-analysis-bot/internal/market"
)

// FVGType represents the type of Fair Value Gap
type FVGType string

const (
	BullishFVG FVGType = "BULLISH_FVG"
	BearishFVG FVGType = "BEARISH_FVG"
)

// FVG represents a Fair Value Gap: a three-candle price imbalance presumed
// to attract future price back into it.
type FVG struct {
	Type      FVGType
	Timeframe market.Timeframe
	Timestamp time.Time
	Index     int
	GapHigh   float64
	GapLow    float64
	Size      float64
	Filled    bool
}

// Midpoint returns the center of the gap.
func (f FVG) Midpoint() float64 {
	return (f.GapHigh + f.GapLow) / 2
}

// FVGDetector detects Fair Value Gaps in candlestick data
type FVGDetector struct {
	minGapPrice float64 // minimum gap size in price units
	keep        int
}

// NewFVGDetector creates a detector requiring gaps of at least minGapPrice.
func NewFVGDetector(minGapPrice float64) *FVGDetector {
	if minGapPrice < 0 {
		minGapPrice = 0
	}
	return &FVGDetector{
		minGapPrice: minGapPrice,
		keep:        10,
	}
}

// Detect scans triples (i-2, i-1, i) for gaps. A bullish FVG exists when
// bar i's low clears bar i-2's high by at least the minimum gap; the bearish
// case is symmetric. The Filled flag is evaluated against the latest close,
// and only unfilled gaps are returned, most recent 10.
func (d *FVGDetector) Detect(tf market.Timeframe, series market.BarSeries) []FVG {
	if len(series) < 3 {
		return nil
	}

	var gaps []FVG

	for i := 2; i < len(series); i++ {
		c1 := series[i-2]
		c3 := series[i]

		if gap := c3.Low - c1.High; gap >= d.minGapPrice && gap > 0 {
			gaps = append(gaps, FVG{
				Type:      BullishFVG,
				Timeframe: tf,
				Timestamp: c3.Timestamp,
				Index:     i,
				GapHigh:   c3.Low,
				GapLow:    c1.High,
				Size:      gap,
			})
		} else if gap := c1.Low - c3.High; gap >= d.minGapPrice && gap > 0 {
			gaps = append(gaps, FVG{
				Type:      BearishFVG,
				Timeframe: tf,
				Timestamp: c3.Timestamp,
				Index:     i,
				GapHigh:   c1.Low,
				GapLow:    c3.High,
				Size:      gap,
			})
		}
	}

	currentPrice := series.LastClose()
	unfilled := gaps[:0]
	for _, g := range gaps {
		g.Filled = IsFilled(g, currentPrice)
		if !g.Filled {
			unfilled = append(unfilled, g)
		}
	}

	if len(unfilled) > d.keep {
		unfilled = unfilled[len(unfilled)-d.keep:]
	}
	return unfilled
}

// IsFilled reports whether price has traded back inside the gap. The check
// is idempotent: re-evaluating against any appended close yields the same
// answer for the same price.
func IsFilled(gap FVG, price float64) bool {
	return price >= gap.GapLow && price <= gap.GapHigh
}
