// Package analysis computes technical indicators, candlestick patterns,
// and the per-timeframe and multi-timeframe views consumed by the signal
// generator.
package analysis

import (
	"github.com/markcheno/go-talib"

	"gold-analysis-bot/internal/market"
)

// minIndicatorBars is the shortest series the indicator suite accepts.
// MACD and ADX need the most warmup.
const minIndicatorBars = 50

// TrendStrength labels ADX readings
type TrendStrength string

const (
	StrengthVeryStrong TrendStrength = "VERY_STRONG"
	StrengthStrong     TrendStrength = "STRONG"
	StrengthModerate   TrendStrength = "MODERATE"
	StrengthWeak       TrendStrength = "WEAK"
)

// IndicatorSet holds the latest value of every computed indicator.
type IndicatorSet struct {
	EMA7   float64
	EMA20  float64
	EMA50  float64
	EMA200 float64
	SMA20  float64
	SMA50  float64

	RSI float64

	MACD         float64
	MACDSignal   float64
	MACDHist     float64
	PrevMACDHist float64

	StochK float64
	StochD float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	ATR     float64
	ATRMean float64 // 20-bar mean of the ATR series

	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// TrendAnalysis is the combined trend view for one timeframe.
type TrendAnalysis struct {
	Direction    market.TrendDirection
	Strength     TrendStrength
	ADX          float64
	BullishScore int
	BearishScore int
	AboveMAs     bool
	BelowMAs     bool
}

// MomentumAnalysis aggregates the momentum oscillators.
type MomentumAnalysis struct {
	Overall      market.Direction
	RSI          float64
	RSISignal    market.Direction
	MACDSignal   market.Direction
	StochSignal  market.Direction
	BullishCount int
	BearishCount int
}

// VolatilityLevel labels ATR relative to its recent mean
type VolatilityLevel string

const (
	VolatilityHigh     VolatilityLevel = "HIGH"
	VolatilityModerate VolatilityLevel = "MODERATE"
	VolatilityLow      VolatilityLevel = "LOW"
)

// VolatilityAnalysis combines ATR and Bollinger readings.
type VolatilityAnalysis struct {
	Level      VolatilityLevel
	ATR        float64
	ATRMean    float64
	BBPosition float64 // 0 at the lower band, 1 at the upper
	Overbought bool
	Oversold   bool
}

// DivergenceType flags price/oscillator disagreement
type DivergenceType string

const (
	BullishDivergence DivergenceType = "BULLISH_DIVERGENCE"
	BearishDivergence DivergenceType = "BEARISH_DIVERGENCE"
	NoDivergence      DivergenceType = ""
)

// IndicatorAnalyzer computes the indicator suite over one bar series
type IndicatorAnalyzer struct {
	rsiOversold   float64
	rsiOverbought float64
}

// NewIndicatorAnalyzer creates an analyzer with the given RSI bands.
// Non-positive bands fall back to 30/70.
func NewIndicatorAnalyzer(rsiOversold, rsiOverbought float64) *IndicatorAnalyzer {
	if rsiOversold <= 0 || rsiOverbought <= 0 {
		rsiOversold, rsiOverbought = 30, 70
	}
	return &IndicatorAnalyzer{
		rsiOversold:   rsiOversold,
		rsiOverbought: rsiOverbought,
	}
}

// Compute runs the full suite. Series shorter than the warmup yield nil.
func (a *IndicatorAnalyzer) Compute(series market.BarSeries) *IndicatorSet {
	if len(series) < minIndicatorBars {
		return nil
	}

	highs := series.Highs()
	lows := series.Lows()
	closes := series.Closes()

	set := &IndicatorSet{
		EMA7:  last(talib.Ema(closes, 7)),
		EMA20: last(talib.Ema(closes, 20)),
		SMA20: last(talib.Sma(closes, 20)),
		RSI:   last(talib.Rsi(closes, 14)),
	}

	if len(closes) >= 50 {
		set.EMA50 = last(talib.Ema(closes, 50))
		set.SMA50 = last(talib.Sma(closes, 50))
	}
	if len(closes) >= 200 {
		set.EMA200 = last(talib.Ema(closes, 200))
	}

	macd, macdSignal, macdHist := talib.Macd(closes, 12, 26, 9)
	set.MACD = last(macd)
	set.MACDSignal = last(macdSignal)
	set.MACDHist = last(macdHist)
	set.PrevMACDHist = secondLast(macdHist)

	slowK, slowD := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)
	set.StochK = last(slowK)
	set.StochD = last(slowD)

	upper, middle, lower := talib.BBands(closes, 20, 2.0, 2.0, talib.SMA)
	set.BBUpper = last(upper)
	set.BBMiddle = last(middle)
	set.BBLower = last(lower)

	atr := talib.Atr(highs, lows, closes, 14)
	set.ATR = last(atr)
	set.ATRMean = tailMean(atr, 20)

	set.ADX = last(talib.Adx(highs, lows, closes, 14))
	set.PlusDI = last(talib.PlusDI(highs, lows, closes, 14))
	set.MinusDI = last(talib.MinusDI(highs, lows, closes, 14))

	return set
}

// AnalyzeTrend votes on MA ordering, ADX direction, and price position.
// The lead must exceed 2 to leave the ranging state.
func (a *IndicatorAnalyzer) AnalyzeTrend(series market.BarSeries, set *IndicatorSet) TrendAnalysis {
	result := TrendAnalysis{Direction: market.TrendRanging, Strength: StrengthWeak}
	if set == nil {
		return result
	}

	price := series.LastClose()

	bullish, bearish := 0, 0
	mas := []float64{set.EMA7, set.EMA20, set.EMA50, set.EMA200}
	for i := 0; i < len(mas)-1; i++ {
		if mas[i] == 0 || mas[i+1] == 0 {
			continue
		}
		if mas[i] > mas[i+1] {
			bullish++
		} else if mas[i] < mas[i+1] {
			bearish++
		}
	}

	if price > set.EMA20 {
		bullish++
	} else {
		bearish++
	}

	adxBullish := set.PlusDI > set.MinusDI
	if adxBullish {
		bullish++
	} else if set.MinusDI > set.PlusDI {
		bearish++
	}

	result.AboveMAs = price > set.EMA20 && price > set.EMA50
	result.BelowMAs = price < set.EMA20 && price < set.EMA50
	if result.AboveMAs {
		bullish++
	}
	if result.BelowMAs {
		bearish++
	}

	switch {
	case bullish > bearish+2:
		result.Direction = market.TrendBullish
	case bearish > bullish+2:
		result.Direction = market.TrendBearish
	}

	result.ADX = set.ADX
	result.Strength = adxStrength(set.ADX)
	result.BullishScore = bullish
	result.BearishScore = bearish
	return result
}

// AnalyzeMomentum takes RSI, MACD-cross, and Stochastic votes. Two agreeing
// oscillators set the overall direction.
func (a *IndicatorAnalyzer) AnalyzeMomentum(set *IndicatorSet) MomentumAnalysis {
	result := MomentumAnalysis{Overall: market.DirectionNeutral, RSI: 50}
	if set == nil {
		result.RSISignal = market.DirectionNeutral
		result.MACDSignal = market.DirectionNeutral
		result.StochSignal = market.DirectionNeutral
		return result
	}

	result.RSI = set.RSI
	result.RSISignal = market.DirectionNeutral
	if set.RSI < a.rsiOversold {
		result.RSISignal = market.DirectionBuy
	} else if set.RSI > a.rsiOverbought {
		result.RSISignal = market.DirectionSell
	}

	result.MACDSignal = macdSignal(set)

	result.StochSignal = market.DirectionNeutral
	if set.StochK < 20 && set.StochK > set.StochD {
		result.StochSignal = market.DirectionBuy
	} else if set.StochK > 80 && set.StochK < set.StochD {
		result.StochSignal = market.DirectionSell
	}

	for _, s := range []market.Direction{result.RSISignal, result.MACDSignal, result.StochSignal} {
		switch s {
		case market.DirectionBuy:
			result.BullishCount++
		case market.DirectionSell:
			result.BearishCount++
		}
	}

	if result.BullishCount >= 2 {
		result.Overall = market.DirectionBuy
	} else if result.BearishCount >= 2 {
		result.Overall = market.DirectionSell
	}
	return result
}

// AnalyzeVolatility compares ATR against its recent mean and locates price
// within the Bollinger envelope.
func (a *IndicatorAnalyzer) AnalyzeVolatility(series market.BarSeries, set *IndicatorSet) VolatilityAnalysis {
	result := VolatilityAnalysis{Level: VolatilityLow, BBPosition: 0.5}
	if set == nil {
		return result
	}

	result.ATR = set.ATR
	result.ATRMean = set.ATRMean
	switch {
	case set.ATR > set.ATRMean*1.5:
		result.Level = VolatilityHigh
	case set.ATR > set.ATRMean:
		result.Level = VolatilityModerate
	}

	if band := set.BBUpper - set.BBLower; band > 0 {
		result.BBPosition = (series.LastClose() - set.BBLower) / band
	}
	result.Overbought = result.BBPosition > 0.8
	result.Oversold = result.BBPosition < 0.2

	return result
}

// DetectDivergence compares recent price and RSI swings over the last 50
// bars. A higher price high with a lower RSI high is bearish; the mirror
// case is bullish.
func (a *IndicatorAnalyzer) DetectDivergence(series market.BarSeries) DivergenceType {
	if len(series) < minIndicatorBars {
		return NoDivergence
	}

	closes := series.Closes()
	rsi := talib.Rsi(closes, 14)

	window := 50
	if window > len(series) {
		window = len(series)
	}
	highs := series.Highs()[len(series)-window:]
	lows := series.Lows()[len(series)-window:]
	rsiTail := rsi[len(rsi)-window:]

	half := window / 2
	priceHighOld, priceHighNew := maxOf(highs[:half]), maxOf(highs[half:])
	rsiHighOld, rsiHighNew := maxOf(rsiTail[:half]), maxOf(rsiTail[half:])
	if priceHighNew > priceHighOld && rsiHighNew < rsiHighOld {
		return BearishDivergence
	}

	priceLowOld, priceLowNew := minOf(lows[:half]), minOf(lows[half:])
	rsiLowOld, rsiLowNew := minOf(rsiTail[:half]), minOf(rsiTail[half:])
	if priceLowNew < priceLowOld && rsiLowNew > rsiLowOld {
		return BullishDivergence
	}

	return NoDivergence
}

// macdSignal prefers a fresh histogram cross over plain position.
func macdSignal(set *IndicatorSet) market.Direction {
	switch {
	case set.MACDHist > 0 && set.PrevMACDHist <= 0:
		return market.DirectionBuy
	case set.MACDHist < 0 && set.PrevMACDHist >= 0:
		return market.DirectionSell
	case set.MACD > set.MACDSignal && set.MACDHist > 0:
		return market.DirectionBuy
	case set.MACD < set.MACDSignal && set.MACDHist < 0:
		return market.DirectionSell
	}
	return market.DirectionNeutral
}

func adxStrength(adx float64) TrendStrength {
	switch {
	case adx > 50:
		return StrengthVeryStrong
	case adx > 25:
		return StrengthStrong
	case adx > 20:
		return StrengthModerate
	}
	return StrengthWeak
}

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

func secondLast(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return xs[len(xs)-2]
}

func tailMean(xs []float64, n int) float64 {
	if len(xs) == 0 {
		return 0
	}
	if n > len(xs) {
		n = len(xs)
	}
	sum := 0.0
	for _, v := range xs[len(xs)-n:] {
		sum += v
	}
	return sum / float64(n)
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
