package ict

import (
	"sort"
	"time"

	"gold-analysis-bot/internal/market"
)

// LiquidityType represents liquidity pool types
type LiquidityType string

const (
	BuySideLiquidity  LiquidityType = "BUY_SIDE_LIQUIDITY"
	SellSideLiquidity LiquidityType = "SELL_SIDE_LIQUIDITY"
)

// LiquidityPool marks a swing extreme where resting stop orders cluster.
type LiquidityPool struct {
	Type      LiquidityType
	Price     float64
	Timestamp time.Time
	Index     int
	Swept     bool
}

// EqualLevel is a cluster of near-identical swing prices (equal highs or
// equal lows), a stronger magnet than a single extreme.
type EqualLevel struct {
	Price    float64
	Count    int
	Strength float64 // count / total candidate prices
}

// Liquidity bundles the pool analysis for one timeframe.
type Liquidity struct {
	BuySide    []LiquidityPool // above market, stops over swing highs
	SellSide   []LiquidityPool // below market, stops under swing lows
	EqualHighs []EqualLevel
	EqualLows  []EqualLevel
}

// PoolCount returns the total number of detected pools.
func (l Liquidity) PoolCount() int {
	return len(l.BuySide) + len(l.SellSide)
}

// SweptRecently reports whether any of the most recent pools on either side
// has been swept.
func (l Liquidity) SweptRecently(perSide int) bool {
	check := func(pools []LiquidityPool) bool {
		start := len(pools) - perSide
		if start < 0 {
			start = 0
		}
		for _, p := range pools[start:] {
			if p.Swept {
				return true
			}
		}
		return false
	}
	return check(l.BuySide) || check(l.SellSide)
}

// LiquidityAnalyzer finds liquidity pools and equal highs/lows
type LiquidityAnalyzer struct {
	swingWindow int     // bars on each side of a swing extreme
	tolerance   float64 // price tolerance for equal-level merging
	sweepWindow int     // recent bars checked for sweeps
}

// NewLiquidityAnalyzer creates an analyzer with the given equal-level price
// tolerance. Window defaults match the 5-bar swing convention.
func NewLiquidityAnalyzer(tolerance float64) *LiquidityAnalyzer {
	return &LiquidityAnalyzer{
		swingWindow: 5,
		tolerance:   tolerance,
		sweepWindow: 10,
	}
}

// Analyze detects swing-point liquidity pools, merges equal levels, and
// flags pools swept by recent price action.
func (a *LiquidityAnalyzer) Analyze(series market.BarSeries) Liquidity {
	var liq Liquidity
	if len(series) < a.swingWindow*2+1 {
		return liq
	}

	for i := a.swingWindow; i < len(series)-a.swingWindow; i++ {
		if isWindowHigh(series, i, a.swingWindow) {
			liq.BuySide = append(liq.BuySide, LiquidityPool{
				Type:      BuySideLiquidity,
				Price:     series[i].High,
				Timestamp: series[i].Timestamp,
				Index:     i,
			})
		}
		if isWindowLow(series, i, a.swingWindow) {
			liq.SellSide = append(liq.SellSide, LiquidityPool{
				Type:      SellSideLiquidity,
				Price:     series[i].Low,
				Timestamp: series[i].Timestamp,
				Index:     i,
			})
		}
	}

	liq.EqualHighs = a.FindEqualLevels(poolPrices(liq.BuySide))
	liq.EqualLows = a.FindEqualLevels(poolPrices(liq.SellSide))

	recentHigh := series.HighestHigh(a.sweepWindow)
	recentLow := series.LowestLow(a.sweepWindow)

	markSwept(liq.BuySide, 5, func(p float64) bool { return recentHigh > p })
	markSwept(liq.SellSide, 5, func(p float64) bool { return recentLow < p })

	return liq
}

// FindEqualLevels sorts candidate prices and greedily merges runs whose
// consecutive difference stays within the tolerance. Runs need at least two
// members to count. Widening the tolerance never shrinks a cluster.
func (a *LiquidityAnalyzer) FindEqualLevels(prices []float64) []EqualLevel {
	if len(prices) == 0 {
		return nil
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	var levels []EqualLevel
	i := 0
	for i < len(sorted) {
		level := sorted[i]
		j := i + 1
		for j < len(sorted) && sorted[j]-level <= a.tolerance {
			j++
		}
		if count := j - i; count >= 2 {
			levels = append(levels, EqualLevel{
				Price:    level,
				Count:    count,
				Strength: float64(count) / float64(len(prices)),
			})
		}
		i = j
	}
	return levels
}

func isWindowHigh(series market.BarSeries, i, window int) bool {
	h := series[i].High
	for j := i - window; j <= i+window; j++ {
		if series[j].High > h {
			return false
		}
	}
	return true
}

func isWindowLow(series market.BarSeries, i, window int) bool {
	l := series[i].Low
	for j := i - window; j <= i+window; j++ {
		if series[j].Low < l {
			return false
		}
	}
	return true
}

func poolPrices(pools []LiquidityPool) []float64 {
	out := make([]float64, len(pools))
	for i, p := range pools {
		out[i] = p.Price
	}
	return out
}

func markSwept(pools []LiquidityPool, lastN int, swept func(float64) bool) {
	start := len(pools) - lastN
	if start < 0 {
		start = 0
	}
	for i := start; i < len(pools); i++ {
		if swept(pools[i].Price) {
			pools[i].Swept = true
		}
	}
}
