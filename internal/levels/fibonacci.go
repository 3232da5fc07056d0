package levels

import (
	"math"
	"sort"

	"gold-analysis-bot/internal/market"
)

// Standard Fibonacci ratios
var (
	retracementRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}
	extensionRatios   = []float64{1.272, 1.414, 1.618, 2.0, 2.618}
	projectionRatios  = []float64{0.618, 1.0, 1.272, 1.618}
)

// FibLevel is a single ratio level.
type FibLevel struct {
	Ratio float64
	Price float64
}

// Retracement holds retracement levels for one swing, including the 0% and
// 100% anchors.
type Retracement struct {
	SwingHigh float64
	SwingLow  float64
	Uptrend   bool
	Range     float64
	Levels    []FibLevel
}

// Extension holds extension levels beyond the swing, used for targets.
type Extension struct {
	SwingHigh float64
	SwingLow  float64
	Uptrend   bool
	Range     float64
	Levels    []FibLevel
}

// Projection holds ABC projection levels measured from point C.
type Projection struct {
	PointA  float64
	PointB  float64
	PointC  float64
	Uptrend bool
	Levels  []FibLevel
}

// FibConfluence is a cluster of retracement/extension levels at nearly the
// same price.
type FibConfluence struct {
	Price    float64
	Count    int
	Strength float64 // cluster size / total levels
}

// GoldenRatioStatus reports proximity to the 0.618/1.618 levels.
type GoldenRatioStatus struct {
	AtRetracement bool
	AtExtension   bool
	Hit           bool
}

// FibonacciAnalyzer computes retracement, extension, and projection levels
type FibonacciAnalyzer struct {
	pipValue      float64
	swingLookback int
	abcLookback   int
	pivotWindow   int
}

// NewFibonacciAnalyzer creates an analyzer for the given pip value.
func NewFibonacciAnalyzer(pipValue float64) *FibonacciAnalyzer {
	return &FibonacciAnalyzer{
		pipValue:      pipValue,
		swingLookback: 100,
		abcLookback:   150,
		pivotWindow:   5,
	}
}

// Retracement computes retracement levels. Pass zero for both swing prices
// to auto-detect the recent swing from the series.
func (f *FibonacciAnalyzer) Retracement(series market.BarSeries, swingHigh, swingLow float64) Retracement {
	if swingHigh == 0 && swingLow == 0 {
		swingHigh, swingLow = f.recentSwing(series)
	}
	high, low, uptrend := orientSwing(swingHigh, swingLow)
	diff := high - low

	ret := Retracement{
		SwingHigh: high,
		SwingLow:  low,
		Uptrend:   uptrend,
		Range:     diff,
	}

	for _, ratio := range retracementRatios {
		price := high - diff*ratio
		if !uptrend {
			price = low + diff*ratio
		}
		ret.Levels = append(ret.Levels, FibLevel{Ratio: ratio, Price: price})
	}

	// 0% and 100% anchors.
	if uptrend {
		ret.Levels = append(ret.Levels,
			FibLevel{Ratio: 0, Price: high},
			FibLevel{Ratio: 1, Price: low})
	} else {
		ret.Levels = append(ret.Levels,
			FibLevel{Ratio: 0, Price: low},
			FibLevel{Ratio: 1, Price: high})
	}
	return ret
}

// Extension computes extension levels beyond the swing in trend direction.
func (f *FibonacciAnalyzer) Extension(series market.BarSeries, swingHigh, swingLow float64) Extension {
	if swingHigh == 0 && swingLow == 0 {
		swingHigh, swingLow = f.recentSwing(series)
	}
	high, low, uptrend := orientSwing(swingHigh, swingLow)
	diff := high - low

	ext := Extension{
		SwingHigh: high,
		SwingLow:  low,
		Uptrend:   uptrend,
		Range:     diff,
	}

	for _, ratio := range extensionRatios {
		price := high + diff*(ratio-1)
		if !uptrend {
			price = low - diff*(ratio-1)
		}
		ext.Levels = append(ext.Levels, FibLevel{Ratio: ratio, Price: price})
	}
	return ext
}

// Projection computes ABC projection levels from the last three pivots.
func (f *FibonacciAnalyzer) Projection(series market.BarSeries) Projection {
	a, b, c := f.abcPivots(series)

	abDistance := math.Abs(b - a)
	uptrend := b > a

	proj := Projection{
		PointA:  a,
		PointB:  b,
		PointC:  c,
		Uptrend: uptrend,
	}

	for _, ratio := range projectionRatios {
		price := c + abDistance*ratio
		if !uptrend {
			price = c - abDistance*ratio
		}
		proj.Levels = append(proj.Levels, FibLevel{Ratio: ratio, Price: price})
	}
	return proj
}

// Confluences clusters retracement and extension levels within a 10-pip
// tolerance. Strength is cluster size over the total level count.
func (f *FibonacciAnalyzer) Confluences(ret Retracement, ext Extension) []FibConfluence {
	tolerance := 10 * f.pipValue

	all := make([]float64, 0, len(ret.Levels)+len(ext.Levels))
	for _, l := range ret.Levels {
		all = append(all, l.Price)
	}
	for _, l := range ext.Levels {
		all = append(all, l.Price)
	}
	if len(all) == 0 {
		return nil
	}

	var confluences []FibConfluence
	seen := make(map[int64]bool)

	for i, price := range all {
		sum := price
		count := 1
		for j, other := range all {
			if i != j && math.Abs(price-other) <= tolerance {
				sum += other
				count++
			}
		}
		if count < 2 {
			continue
		}

		avg := sum / float64(count)
		key := int64(math.Round(avg / tolerance))
		if seen[key] {
			continue
		}
		seen[key] = true

		confluences = append(confluences, FibConfluence{
			Price:    avg,
			Count:    count,
			Strength: float64(count) / float64(len(all)),
		})
	}

	sort.Slice(confluences, func(i, j int) bool {
		return confluences[i].Strength > confluences[j].Strength
	})
	return confluences
}

// AtGoldenRatio checks whether price sits within tolerancePips of the
// 0.618 retracement or the 1.618 extension.
func (f *FibonacciAnalyzer) AtGoldenRatio(series market.BarSeries, price, tolerancePips float64) GoldenRatioStatus {
	tolerance := tolerancePips * f.pipValue
	ret := f.Retracement(series, 0, 0)
	ext := f.Extension(series, 0, 0)

	var status GoldenRatioStatus
	for _, l := range ret.Levels {
		if l.Ratio == 0.618 && math.Abs(price-l.Price) <= tolerance {
			status.AtRetracement = true
		}
	}
	for _, l := range ext.Levels {
		if l.Ratio == 1.618 && math.Abs(price-l.Price) <= tolerance {
			status.AtExtension = true
		}
	}
	status.Hit = status.AtRetracement || status.AtExtension
	return status
}

// TargetsFrom returns up to three extension levels past the entry in trade
// direction, nearest first.
func (f *FibonacciAnalyzer) TargetsFrom(ext Extension, entry float64, direction market.Direction) []FibLevel {
	var targets []FibLevel
	for _, l := range ext.Levels {
		if direction == market.DirectionBuy && l.Price > entry {
			targets = append(targets, l)
		}
		if direction == market.DirectionSell && l.Price < entry {
			targets = append(targets, l)
		}
	}

	sort.Slice(targets, func(i, j int) bool {
		return math.Abs(targets[i].Price-entry) < math.Abs(targets[j].Price-entry)
	})
	if len(targets) > 3 {
		targets = targets[:3]
	}
	return targets
}

// recentSwing returns the max high and min low over the recent lookback.
func (f *FibonacciAnalyzer) recentSwing(series market.BarSeries) (high, low float64) {
	n := f.swingLookback
	if n > len(series) {
		n = len(series)
	}
	return series.HighestHigh(n), series.LowestLow(n)
}

// abcPivots picks the last three strict pivots ordered by time. With fewer
// than three pivots it falls back to first high, middle low, last close.
func (f *FibonacciAnalyzer) abcPivots(series market.BarSeries) (a, b, c float64) {
	recent := series.Tail(f.abcLookback)
	if len(recent) == 0 {
		return 0, 0, 0
	}

	type pivot struct {
		index int
		price float64
	}
	var pivots []pivot

	for i := f.pivotWindow; i < len(recent)-f.pivotWindow; i++ {
		if isStrictHigh(recent, i, f.pivotWindow) {
			pivots = append(pivots, pivot{index: i, price: recent[i].High})
		}
		if isStrictLow(recent, i, f.pivotWindow) {
			pivots = append(pivots, pivot{index: i, price: recent[i].Low})
		}
	}

	sort.Slice(pivots, func(i, j int) bool { return pivots[i].index < pivots[j].index })

	if len(pivots) >= 3 {
		return pivots[len(pivots)-3].price, pivots[len(pivots)-2].price, pivots[len(pivots)-1].price
	}
	return recent[0].High, recent[len(recent)/2].Low, recent.LastClose()
}

func orientSwing(swingHigh, swingLow float64) (high, low float64, uptrend bool) {
	if swingHigh > swingLow {
		return swingHigh, swingLow, true
	}
	return swingLow, swingHigh, false
}
