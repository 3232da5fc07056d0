// Package levels detects horizontal support/resistance and Fibonacci
// structure used as confluence inputs by the signal generator.
package levels

import (
	"math"
	"sort"

	"github.com/markcheno/go-talib"

	"gold-analysis-bot/internal/market"
)

// Method identifies how a level was derived
type Method string

const (
	MethodSwingHigh     Method = "swing_high"
	MethodSwingLow      Method = "swing_low"
	MethodTested        Method = "tested"
	MethodPsychological Method = "psychological"
	MethodVolumeNode    Method = "volume_node"
	MethodMovingAverage Method = "moving_average"
)

// Level is a consolidated horizontal price level.
type Level struct {
	Price       float64
	Touches     int
	Strength    float64 // ranking score in [0, 1]
	ClusterSize int
	Methods     []Method
}

// HasMethod reports whether the level was derived by the given method.
func (l Level) HasMethod(m Method) bool {
	for _, lm := range l.Methods {
		if lm == m {
			return true
		}
	}
	return false
}

// PivotPoints are the standard floor-trader pivots from the last session.
type PivotPoints struct {
	Pivot          float64
	R1, R2, R3     float64
	S1, S2, S3     float64
}

// CamarillaPivots are the Camarilla intraday levels.
type CamarillaPivots struct {
	H1, H2, H3, H4 float64
	L1, L2, L3, L4 float64
}

// LevelMap bundles every detected level for one series. Support and
// Resistance are sorted strongest first.
type LevelMap struct {
	Support       []Level
	Resistance    []Level
	Pivots        PivotPoints
	Camarilla     CamarillaPivots
	Psychological []Level
}

// rawLevel is a pre-consolidation candidate.
type rawLevel struct {
	price    float64
	touches  int
	strength float64
	method   Method
}

// SupportResistanceAnalyzer finds horizontal levels using pivots, swing
// extrema, historical touch clusters, round numbers, and volume profile.
type SupportResistanceAnalyzer struct {
	pipValue      float64
	swingWindow   int // bars on each side of a strict extreme
	swingExclude  int // most recent bars skipped for swing seeds
	touchExclude  int // most recent bars skipped for historical seeds
	tolerancePips float64
	volumeBins    int
}

// NewSupportResistanceAnalyzer creates an analyzer for the given pip value.
func NewSupportResistanceAnalyzer(pipValue float64) *SupportResistanceAnalyzer {
	return &SupportResistanceAnalyzer{
		pipValue:      pipValue,
		swingWindow:   5,
		swingExclude:  20,
		touchExclude:  50,
		tolerancePips: 10,
		volumeBins:    50,
	}
}

// FindLevels runs every detection method, consolidates nearby candidates,
// and ranks the result. Short series yield an empty map.
func (a *SupportResistanceAnalyzer) FindLevels(series market.BarSeries) LevelMap {
	var lm LevelMap
	if len(series) < 2 {
		return lm
	}

	lm.Pivots, lm.Camarilla = a.calculatePivots(series)
	lm.Psychological = a.psychologicalLevels(series.LastClose())

	var support, resistance []rawLevel

	swingSup, swingRes := a.swingLevels(series)
	support = append(support, swingSup...)
	resistance = append(resistance, swingRes...)

	histSup, histRes := a.historicalLevels(series)
	support = append(support, histSup...)
	resistance = append(resistance, histRes...)

	volSup, volRes := a.volumeProfileLevels(series)
	support = append(support, volSup...)
	resistance = append(resistance, volRes...)

	dynSup, dynRes := a.dynamicLevels(series)
	support = append(support, dynSup...)
	resistance = append(resistance, dynRes...)

	currentPrice := series.LastClose()
	lm.Support = a.rank(a.consolidate(support), currentPrice)
	lm.Resistance = a.rank(a.consolidate(resistance), currentPrice)

	return lm
}

// NearestLevels returns up to count supports below and resistances above
// the given price, nearest first.
func (a *SupportResistanceAnalyzer) NearestLevels(lm LevelMap, price float64, count int) (support, resistance []Level) {
	for _, l := range lm.Support {
		if l.Price < price {
			support = append(support, l)
		}
	}
	for _, l := range lm.Resistance {
		if l.Price > price {
			resistance = append(resistance, l)
		}
	}

	byDistance := func(levels []Level) {
		sort.Slice(levels, func(i, j int) bool {
			return math.Abs(levels[i].Price-price) < math.Abs(levels[j].Price-price)
		})
	}
	byDistance(support)
	byDistance(resistance)

	if len(support) > count {
		support = support[:count]
	}
	if len(resistance) > count {
		resistance = resistance[:count]
	}
	return support, resistance
}

// AtLevel reports whether price sits within tolerancePips of a ranked level.
func (a *SupportResistanceAnalyzer) AtLevel(lm LevelMap, price, tolerancePips float64) (Level, bool) {
	tolerance := tolerancePips * a.pipValue

	for _, l := range lm.Support {
		if math.Abs(price-l.Price) <= tolerance {
			return l, true
		}
	}
	for _, l := range lm.Resistance {
		if math.Abs(price-l.Price) <= tolerance {
			return l, true
		}
	}
	return Level{}, false
}

// calculatePivots derives standard and Camarilla pivots from the latest
// bar's range and the previous close.
func (a *SupportResistanceAnalyzer) calculatePivots(series market.BarSeries) (PivotPoints, CamarillaPivots) {
	high := series.Last().High
	low := series.Last().Low
	close := series[len(series)-2].Close

	pivot := (high + low + close) / 3
	barRange := high - low

	std := PivotPoints{
		Pivot: pivot,
		R1:    2*pivot - low,
		R2:    pivot + barRange,
		R3:    high + 2*(pivot-low),
		S1:    2*pivot - high,
		S2:    pivot - barRange,
		S3:    low - 2*(high-pivot),
	}

	cam := CamarillaPivots{
		H1: close + barRange*1.1/12,
		H2: close + barRange*1.1/6,
		H3: close + barRange*1.1/4,
		H4: close + barRange*1.1/2,
		L1: close - barRange*1.1/12,
		L2: close - barRange*1.1/6,
		L3: close - barRange*1.1/4,
		L4: close - barRange*1.1/2,
	}
	return std, cam
}

// swingLevels collects strict swing extrema, skipping the most recent bars
// so a level has had time to prove itself.
func (a *SupportResistanceAnalyzer) swingLevels(series market.BarSeries) (support, resistance []rawLevel) {
	cutoff := len(series) - a.swingExclude

	for i := a.swingWindow; i < len(series)-a.swingWindow; i++ {
		if i >= cutoff {
			break
		}
		if isStrictHigh(series, i, a.swingWindow) {
			resistance = append(resistance, rawLevel{
				price:    series[i].High,
				touches:  1,
				strength: 1.0,
				method:   MethodSwingHigh,
			})
		}
		if isStrictLow(series, i, a.swingWindow) {
			support = append(support, rawLevel{
				price:    series[i].Low,
				touches:  1,
				strength: 1.0,
				method:   MethodSwingLow,
			})
		}
	}
	return support, resistance
}

// historicalLevels counts how often each seed price was revisited within
// tolerance. Seeds come from older bars only; touches count the full series.
func (a *SupportResistanceAnalyzer) historicalLevels(series market.BarSeries) (support, resistance []rawLevel) {
	if len(series) <= a.touchExclude {
		return nil, nil
	}
	tolerance := a.tolerancePips * a.pipValue
	lows := series.Lows()
	highs := series.Highs()
	seedEnd := len(series) - a.touchExclude

	for i := 0; i < seedEnd; i++ {
		touches := countTouches(lows, i, tolerance)
		if touches >= 2 {
			support = append(support, rawLevel{
				price:    lows[i],
				touches:  touches,
				strength: float64(touches) / float64(len(lows)),
				method:   MethodTested,
			})
		}
	}
	for i := 0; i < seedEnd; i++ {
		touches := countTouches(highs, i, tolerance)
		if touches >= 2 {
			resistance = append(resistance, rawLevel{
				price:    highs[i],
				touches:  touches,
				strength: float64(touches) / float64(len(highs)),
				method:   MethodTested,
			})
		}
	}
	return support, resistance
}

// psychologicalLevels enumerates round numbers around the current price.
// Step sizes scale with price magnitude.
func (a *SupportResistanceAnalyzer) psychologicalLevels(currentPrice float64) []Level {
	if currentPrice <= 0 {
		return nil
	}

	steps := []float64{0.001, 0.005, 0.01}
	if currentPrice >= 10 {
		steps = []float64{0.1, 0.5, 1.0}
	}

	var levels []Level
	for _, step := range steps {
		lower := (math.Trunc(currentPrice/step) - 2) * step
		upper := (math.Trunc(currentPrice/step) + 3) * step

		for level := lower; level <= upper; level += step {
			if math.Abs(level-currentPrice) <= step*0.1 {
				continue
			}
			levels = append(levels, Level{
				Price:       level,
				Touches:     1,
				Strength:    0.5,
				ClusterSize: 1,
				Methods:     []Method{MethodPsychological},
			})
		}
	}
	return levels
}

// volumeProfileLevels bins closes into a fixed-resolution volume profile
// and keeps high-volume nodes at or above the 70th percentile. Series
// without volume contribute nothing.
func (a *SupportResistanceAnalyzer) volumeProfileLevels(series market.BarSeries) (support, resistance []rawLevel) {
	if !series.HasVolume() {
		return nil, nil
	}

	priceMin := series.LowestLow(len(series))
	priceMax := series.HighestHigh(len(series))
	if priceMax <= priceMin {
		return nil, nil
	}

	binCount := a.volumeBins - 1
	binWidth := (priceMax - priceMin) / float64(a.volumeBins-1)
	profile := make([]float64, binCount)

	for _, b := range series {
		idx := int((b.Close - priceMin) / binWidth)
		if idx < 0 {
			idx = 0
		}
		if idx >= binCount {
			idx = binCount - 1
		}
		profile[idx] += b.Volume
	}

	threshold := percentile(profile, 70)
	maxVolume := 0.0
	for _, v := range profile {
		if v > maxVolume {
			maxVolume = v
		}
	}
	if maxVolume == 0 {
		return nil, nil
	}

	currentPrice := series.LastClose()
	for i, v := range profile {
		if v < threshold {
			continue
		}
		price := priceMin + (float64(i)+0.5)*binWidth
		lvl := rawLevel{
			price:    price,
			touches:  1,
			strength: v / maxVolume,
			method:   MethodVolumeNode,
		}
		if price < currentPrice {
			support = append(support, lvl)
		} else {
			resistance = append(resistance, lvl)
		}
	}
	return support, resistance
}

// dynamicLevels treats the latest moving averages as soft levels. Periods
// match the widely watched MA and EMA sets, so the 50/200 cluster shows up
// where price actually reacts to it.
func (a *SupportResistanceAnalyzer) dynamicLevels(series market.BarSeries) (support, resistance []rawLevel) {
	closes := series.Closes()
	currentPrice := series.LastClose()

	add := func(price float64) {
		lvl := rawLevel{
			price:    price,
			touches:  1,
			strength: 0.5,
			method:   MethodMovingAverage,
		}
		if price < currentPrice {
			support = append(support, lvl)
		} else {
			resistance = append(resistance, lvl)
		}
	}

	for _, period := range []int{20, 50, 100, 200} {
		if len(closes) >= period {
			add(talib.Sma(closes, period)[len(closes)-1])
		}
	}
	for _, period := range []int{9, 21, 55} {
		if len(closes) >= period {
			add(talib.Ema(closes, period)[len(closes)-1])
		}
	}
	return support, resistance
}

// consolidate greedily clusters candidates within tolerance, averaging
// price and strength and summing touches.
func (a *SupportResistanceAnalyzer) consolidate(raw []rawLevel) []Level {
	if len(raw) == 0 {
		return nil
	}
	tolerance := a.tolerancePips * a.pipValue

	var consolidated []Level
	used := make([]bool, len(raw))

	for i, seed := range raw {
		if used[i] {
			continue
		}
		used[i] = true

		priceSum := seed.price
		strengthSum := seed.strength
		touches := seed.touches
		methods := []Method{seed.method}
		size := 1

		for j := i + 1; j < len(raw); j++ {
			if used[j] || math.Abs(seed.price-raw[j].price) > tolerance {
				continue
			}
			used[j] = true
			priceSum += raw[j].price
			strengthSum += raw[j].strength
			touches += raw[j].touches
			methods = appendMethod(methods, raw[j].method)
			size++
		}

		consolidated = append(consolidated, Level{
			Price:       priceSum / float64(size),
			Touches:     touches,
			Strength:    strengthSum / float64(size),
			ClusterSize: size,
			Methods:     methods,
		})
	}
	return consolidated
}

// rank scores each level on touches, cluster size, proximity to the current
// price, and derivation method, then sorts strongest first.
func (a *SupportResistanceAnalyzer) rank(levels []Level, currentPrice float64) []Level {
	for i := range levels {
		l := &levels[i]
		score := math.Min(float64(l.Touches)*0.2, 1.0)
		score += math.Min(float64(l.ClusterSize)*0.15, 0.75)

		distancePips := math.Abs(l.Price-currentPrice) / a.pipValue
		switch {
		case distancePips <= 50:
			score += 0.5
		case distancePips <= 100:
			score += 0.3
		case distancePips <= 200:
			score += 0.1
		}

		if l.HasMethod(MethodTested) {
			score += 0.3
		}
		if l.HasMethod(MethodVolumeNode) {
			score += 0.2
		}
		if l.HasMethod(MethodSwingHigh) || l.HasMethod(MethodSwingLow) {
			score += 0.15
		}

		l.Strength = math.Min(score, 1.0)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Strength > levels[j].Strength
	})
	return levels
}

func appendMethod(methods []Method, m Method) []Method {
	for _, existing := range methods {
		if existing == m {
			return methods
		}
	}
	return append(methods, m)
}

func countTouches(prices []float64, seed int, tolerance float64) int {
	touches := 1
	for j, p := range prices {
		if j != seed && math.Abs(prices[seed]-p) <= tolerance {
			touches++
		}
	}
	return touches
}

// isStrictHigh requires the bar's high to exceed every neighbor in the
// window, matching a strict local-extremum definition.
func isStrictHigh(series market.BarSeries, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if series[j].High >= series[i].High {
			return false
		}
	}
	return true
}

func isStrictLow(series market.BarSeries, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if series[j].Low <= series[i].Low {
			return false
		}
	}
	return true
}

// percentile computes the linearly interpolated percentile of values.
func percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := pct / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
