package analysis

import (
	"math"
	"time"

	"gold-analysis-bot/internal/market"
)

// CandlePatternType represents candlestick patterns
type CandlePatternType string

const (
	PatternMorningStar      CandlePatternType = "morning_star"
	PatternEveningStar      CandlePatternType = "evening_star"
	PatternShootingStar     CandlePatternType = "shooting_star"
	PatternHammer           CandlePatternType = "hammer"
	PatternBullishEngulfing CandlePatternType = "bullish_engulfing"
	PatternBearishEngulfing CandlePatternType = "bearish_engulfing"
	PatternDoji             CandlePatternType = "doji"
	PatternDragonflyDoji    CandlePatternType = "dragonfly_doji"
	PatternGravestoneDoji   CandlePatternType = "gravestone_doji"
)

// CandlePattern is a detected candlestick pattern.
type CandlePattern struct {
	Type       CandlePatternType
	Timeframe  market.Timeframe
	DetectedAt time.Time
	Index      int
	Direction  market.Direction
}

// CandlestickDetector detects reversal candlestick patterns
type CandlestickDetector struct {
	lookback int // most recent bars scanned
}

// NewCandlestickDetector creates a detector scanning the given number of
// recent bars. Non-positive lookback defaults to 10.
func NewCandlestickDetector(lookback int) *CandlestickDetector {
	if lookback <= 0 {
		lookback = 10
	}
	return &CandlestickDetector{lookback: lookback}
}

// Detect scans the recent window for patterns, oldest first.
func (d *CandlestickDetector) Detect(tf market.Timeframe, series market.BarSeries) []CandlePattern {
	if len(series) < 3 {
		return nil
	}

	start := len(series) - d.lookback
	if start < 2 {
		start = 2
	}

	var patterns []CandlePattern
	add := func(t CandlePatternType, i int, dir market.Direction) {
		patterns = append(patterns, CandlePattern{
			Type:       t,
			Timeframe:  tf,
			DetectedAt: series[i].Timestamp,
			Index:      i,
			Direction:  dir,
		})
	}

	for i := start; i < len(series); i++ {
		c1, c2, c3 := series[i-2], series[i-1], series[i]

		if isMorningStar(c1, c2, c3) {
			add(PatternMorningStar, i, market.DirectionBuy)
		}
		if isEveningStar(c1, c2, c3) {
			add(PatternEveningStar, i, market.DirectionSell)
		}
		if isBullishEngulfing(c2, c3) {
			add(PatternBullishEngulfing, i, market.DirectionBuy)
		}
		if isBearishEngulfing(c2, c3) {
			add(PatternBearishEngulfing, i, market.DirectionSell)
		}

		switch {
		case isDragonflyDoji(c3):
			add(PatternDragonflyDoji, i, market.DirectionBuy)
		case isGravestoneDoji(c3):
			add(PatternGravestoneDoji, i, market.DirectionSell)
		case isDoji(c3):
			add(PatternDoji, i, market.DirectionNeutral)
		case isHammer(c3):
			add(PatternHammer, i, market.DirectionBuy)
		case isShootingStar(c3):
			add(PatternShootingStar, i, market.DirectionSell)
		}
	}
	return patterns
}

// LatestDirectional returns the most recent non-neutral pattern.
func (d *CandlestickDetector) LatestDirectional(tf market.Timeframe, series market.BarSeries) (CandlePattern, bool) {
	patterns := d.Detect(tf, series)
	for i := len(patterns) - 1; i >= 0; i-- {
		if patterns[i].Direction != market.DirectionNeutral {
			return patterns[i], true
		}
	}
	return CandlePattern{}, false
}

func isBullishEngulfing(c1, c2 market.Bar) bool {
	if !c1.IsBearish() || !c2.IsBullish() {
		return false
	}
	// c2 body must engulf c1 body.
	return c2.Open <= c1.Close && c2.Close >= c1.Open
}

func isBearishEngulfing(c1, c2 market.Bar) bool {
	if !c1.IsBullish() || !c2.IsBearish() {
		return false
	}
	return c2.Open >= c1.Close && c2.Close <= c1.Open
}

func isDoji(c market.Bar) bool {
	if c.Range() == 0 {
		return false
	}
	return c.Body()/c.Range() < 0.10
}

func isDragonflyDoji(c market.Bar) bool {
	if !isDoji(c) {
		return false
	}
	return lowerWick(c) > c.Body()*3 && upperWick(c) < c.Body()*0.3
}

func isGravestoneDoji(c market.Bar) bool {
	if !isDoji(c) {
		return false
	}
	return upperWick(c) > c.Body()*3 && lowerWick(c) < c.Body()*0.3
}

// isHammer looks for a small body near the top with a long lower wick.
func isHammer(c market.Bar) bool {
	if c.Range() == 0 || isDoji(c) {
		return false
	}
	return lowerWick(c) >= c.Body()*2 && upperWick(c) <= c.Body()*0.5
}

// isShootingStar is the inverted hammer at the top of a move.
func isShootingStar(c market.Bar) bool {
	if c.Range() == 0 || isDoji(c) {
		return false
	}
	return upperWick(c) >= c.Body()*2 && lowerWick(c) <= c.Body()*0.5
}

// isMorningStar: long bearish, small-bodied star, then a bullish candle
// closing past the first body's midpoint.
func isMorningStar(c1, c2, c3 market.Bar) bool {
	if !c1.IsBearish() || !c3.IsBullish() {
		return false
	}
	if c2.Body() >= c1.Body()*0.5 {
		return false
	}
	midpoint := (c1.Open + c1.Close) / 2
	return c3.Close > midpoint
}

func isEveningStar(c1, c2, c3 market.Bar) bool {
	if !c1.IsBullish() || !c3.IsBearish() {
		return false
	}
	if c2.Body() >= c1.Body()*0.5 {
		return false
	}
	midpoint := (c1.Open + c1.Close) / 2
	return c3.Close < midpoint
}

func upperWick(c market.Bar) float64 {
	return c.High - math.Max(c.Open, c.Close)
}

func lowerWick(c market.Bar) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}
