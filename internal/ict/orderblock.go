// Package ict implements Inner Circle Trader (ICT) structure detection:
// order blocks, fair value gaps, liquidity pools, market structure events,
// breaker blocks, and kill-zone session timing.
package ict

import (
	"time"

	"gold-analysis-bot/internal/market"
)

// OrderBlockType represents the polarity of an order block
type OrderBlockType string

const (
	BullishOB OrderBlockType = "BULLISH_ORDER_BLOCK"
	BearishOB OrderBlockType = "BEARISH_ORDER_BLOCK"
)

// OrderBlock represents the last opposite-colored candle before a strong
// directional move, treated as a future support/resistance zone.
type OrderBlock struct {
	Type      OrderBlockType
	Timeframe market.Timeframe
	Timestamp time.Time
	Index     int
	High      float64
	Low       float64
	Open      float64
	Close     float64
	Strength  float64 // move size / trailing average range
	Tested    bool
}

// Midpoint returns the center of the order block zone.
func (ob OrderBlock) Midpoint() float64 {
	return (ob.High + ob.Low) / 2
}

// Contains reports whether price lies inside the order block zone.
func (ob OrderBlock) Contains(price float64) bool {
	return price >= ob.Low && price <= ob.High
}

// OrderBlockDetector detects order blocks in candlestick data
type OrderBlockDetector struct {
	lookback    int     // bars to skip at the start of the series
	rangeWindow int     // trailing window for the average range baseline
	moveFactor  float64 // how many average ranges the follow-up body must span
	keep        int     // most recent blocks retained
}

// NewOrderBlockDetector creates a detector with the given lookback. A
// non-positive lookback falls back to the default of 50 bars.
func NewOrderBlockDetector(lookback int) *OrderBlockDetector {
	if lookback <= 0 {
		lookback = 50
	}
	return &OrderBlockDetector{
		lookback:    lookback,
		rangeWindow: 20,
		moveFactor:  1.5,
		keep:        10,
	}
}

// Detect identifies bullish and bearish order blocks. A bullish order block
// is the last bearish candle before a bullish candle whose body exceeds
// 1.5x the trailing 20-bar average range; the bearish case is symmetric.
// Returns the most recent 10 blocks; short series yield an empty result.
func (d *OrderBlockDetector) Detect(tf market.Timeframe, series market.BarSeries) []OrderBlock {
	if len(series) < d.lookback+2 {
		return nil
	}

	var blocks []OrderBlock

	for i := d.lookback; i < len(series)-1; i++ {
		current := series[i]
		next := series[i+1]

		moveSize := next.Body()
		avgRange := series.AverageRange(i-d.rangeWindow, i)
		if avgRange <= 0 {
			continue
		}
		if moveSize <= avgRange*d.moveFactor {
			continue
		}

		switch {
		case current.IsBearish() && next.IsBullish():
			blocks = append(blocks, OrderBlock{
				Type:      BullishOB,
				Timeframe: tf,
				Timestamp: current.Timestamp,
				Index:     i,
				High:      current.High,
				Low:       current.Low,
				Open:      current.Open,
				Close:     current.Close,
				Strength:  moveSize / avgRange,
			})
		case current.IsBullish() && next.IsBearish():
			blocks = append(blocks, OrderBlock{
				Type:      BearishOB,
				Timeframe: tf,
				Timestamp: current.Timestamp,
				Index:     i,
				High:      current.High,
				Low:       current.Low,
				Open:      current.Open,
				Close:     current.Close,
				Strength:  moveSize / avgRange,
			})
		}
	}

	if len(blocks) > d.keep {
		blocks = blocks[len(blocks)-d.keep:]
	}
	return blocks
}
