package analysis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/market"
)

// AlignmentStatus describes cross-timeframe trend agreement
type AlignmentStatus string

const (
	BullishAligned AlignmentStatus = "BULLISH_ALIGNED"
	BearishAligned AlignmentStatus = "BEARISH_ALIGNED"
	NotAligned     AlignmentStatus = "NOT_ALIGNED"
)

// Alignment is the cross-timeframe trend vote.
type Alignment struct {
	Status       AlignmentStatus
	Confidence   float64
	BullishCount int
	BearishCount int
	RangingCount int
}

// PrimaryTrend is the trend taken from the highest available timeframe.
type PrimaryTrend struct {
	Timeframe market.Timeframe
	Trend     market.TrendDirection
	Strength  TrendStrength
}

// ConfluenceZone is a price area where structures from multiple timeframes
// overlap.
type ConfluenceZone struct {
	Price    float64
	Count    int
	Strength float64
}

// MultiTimeframeAnalysis is the aggregated cross-timeframe view.
type MultiTimeframeAnalysis struct {
	Timeframes      map[market.Timeframe]*TimeframeAnalysis
	Alignment       Alignment
	Primary         PrimaryTrend
	EntryTimeframe  market.Timeframe
	ConfluenceZones []ConfluenceZone
}

// TradeRecommendation is the directional read with accumulated confidence.
type TradeRecommendation struct {
	Direction    market.Direction
	Confidence   float64
	Reasons      []string
	Alignment    AlignmentStatus
	PrimaryTrend market.TrendDirection
}

// MultiTimeframeAnalyzer aggregates per-timeframe analyses
type MultiTimeframeAnalyzer struct {
	analyzer      *TimeframeAnalyzer
	confluenceTol float64
	logger        zerolog.Logger
}

// NewMultiTimeframeAnalyzer creates an aggregator. The confluence tolerance
// is 20 pips.
func NewMultiTimeframeAnalyzer(cfg Config, logger zerolog.Logger) *MultiTimeframeAnalyzer {
	return &MultiTimeframeAnalyzer{
		analyzer:      NewTimeframeAnalyzer(cfg),
		confluenceTol: 20 * cfg.PipValue,
		logger:        logger.With().Str("component", "mtf_analyzer").Logger(),
	}
}

// Analyze runs every timeframe concurrently and aggregates the results.
// Callers validate input first; a timeframe whose analysis still fails is
// skipped with a warning so partial data degrades the view instead of
// failing it.
func (m *MultiTimeframeAnalyzer) Analyze(data map[market.Timeframe]market.BarSeries) *MultiTimeframeAnalysis {
	result := &MultiTimeframeAnalysis{
		Timeframes: make(map[market.Timeframe]*TimeframeAnalysis, len(data)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for tf, series := range data {
		if len(series) == 0 {
			continue
		}
		wg.Add(1)
		go func(tf market.Timeframe, series market.BarSeries) {
			defer wg.Done()
			ta, err := m.analyzer.Analyze(tf, series)
			if err != nil {
				m.logger.Warn().Err(err).Str("timeframe", string(tf)).Msg("skipping timeframe")
				return
			}
			mu.Lock()
			result.Timeframes[tf] = ta
			mu.Unlock()
		}(tf, series)
	}
	wg.Wait()

	result.Alignment = m.checkAlignment(result.Timeframes)
	result.Primary = m.primaryTrend(result.Timeframes)
	result.ConfluenceZones = m.confluenceZones(result.Timeframes)
	result.EntryTimeframe = m.entryTimeframe(result.Timeframes)

	return result
}

// Recommend turns the aggregate into a direction with accumulated
// confidence, capped at 1.0.
func (m *MultiTimeframeAnalyzer) Recommend(analysis *MultiTimeframeAnalysis) TradeRecommendation {
	rec := TradeRecommendation{
		Direction:    market.DirectionNeutral,
		Alignment:    analysis.Alignment.Status,
		PrimaryTrend: analysis.Primary.Trend,
	}

	switch analysis.Alignment.Status {
	case BullishAligned:
		rec.Direction = market.DirectionBuy
		rec.Confidence += 0.3
		rec.Reasons = append(rec.Reasons, "bullish multi-timeframe alignment")
	case BearishAligned:
		rec.Direction = market.DirectionSell
		rec.Confidence += 0.3
		rec.Reasons = append(rec.Reasons, "bearish multi-timeframe alignment")
	}

	switch analysis.Primary.Trend {
	case market.TrendBullish:
		if rec.Direction == market.DirectionBuy {
			rec.Confidence += 0.2
		}
		rec.Reasons = append(rec.Reasons, "primary trend is bullish")
	case market.TrendBearish:
		if rec.Direction == market.DirectionSell {
			rec.Confidence += 0.2
		}
		rec.Reasons = append(rec.Reasons, "primary trend is bearish")
	}

	if entry, ok := analysis.Timeframes[analysis.EntryTimeframe]; ok && entry != nil {
		if entry.KillZone.InKillZone {
			rec.Confidence += 0.15
			rec.Reasons = append(rec.Reasons, fmt.Sprintf("in %s kill zone", entry.KillZone.ZoneName))
		}
		if oe := entry.OptimalEntry; oe != nil && len(oe.Setups) > 0 {
			if oe.Setups[0].Direction == rec.Direction {
				rec.Confidence += 0.2
				rec.Reasons = append(rec.Reasons, fmt.Sprintf("%s setup at entry timeframe", oe.Setups[0].Type))
			}
		}
	}

	if rec.Confidence > 1.0 {
		rec.Confidence = 1.0
	}
	return rec
}

// checkAlignment requires a 70% vote share to call the timeframes aligned.
func (m *MultiTimeframeAnalyzer) checkAlignment(tfs map[market.Timeframe]*TimeframeAnalysis) Alignment {
	al := Alignment{Status: NotAligned, Confidence: 0.5}

	for _, ta := range tfs {
		switch ta.Trend.Direction {
		case market.TrendBullish:
			al.BullishCount++
		case market.TrendBearish:
			al.BearishCount++
		default:
			al.RangingCount++
		}
	}

	total := al.BullishCount + al.BearishCount + al.RangingCount
	if total == 0 {
		return al
	}

	switch {
	case float64(al.BullishCount) >= float64(total)*0.7:
		al.Status = BullishAligned
		al.Confidence = float64(al.BullishCount) / float64(total)
	case float64(al.BearishCount) >= float64(total)*0.7:
		al.Status = BearishAligned
		al.Confidence = float64(al.BearishCount) / float64(total)
	}
	return al
}

// primaryTrend walks the priority list, highest timeframe first.
func (m *MultiTimeframeAnalyzer) primaryTrend(tfs map[market.Timeframe]*TimeframeAnalysis) PrimaryTrend {
	for _, tf := range market.PrimaryTrendPriority {
		if ta, ok := tfs[tf]; ok {
			return PrimaryTrend{Timeframe: tf, Trend: ta.Trend.Direction, Strength: ta.Trend.Strength}
		}
	}
	// Any available timeframe, deterministic order.
	for _, tf := range sortedKeys(tfs) {
		ta := tfs[tf]
		return PrimaryTrend{Timeframe: tf, Trend: ta.Trend.Direction, Strength: ta.Trend.Strength}
	}
	return PrimaryTrend{Trend: market.TrendRanging}
}

// confluenceZones clusters order block and FVG midpoints across timeframes.
func (m *MultiTimeframeAnalyzer) confluenceZones(tfs map[market.Timeframe]*TimeframeAnalysis) []ConfluenceZone {
	var prices []float64
	for _, tf := range sortedKeys(tfs) {
		ta := tfs[tf]
		for _, ob := range ta.OrderBlocks {
			prices = append(prices, ob.Midpoint())
		}
		for _, gap := range ta.FVGs {
			prices = append(prices, gap.Midpoint())
		}
	}
	if len(prices) < 2 {
		return nil
	}

	var zones []ConfluenceZone
	seen := make(map[float64]bool)

	for i, price := range prices {
		count := 1
		for j, other := range prices {
			if i != j && abs(price-other) <= m.confluenceTol {
				count++
			}
		}
		if count < 2 || seen[price] {
			continue
		}
		seen[price] = true
		zones = append(zones, ConfluenceZone{
			Price:    price,
			Count:    count,
			Strength: float64(count) / float64(len(prices)),
		})
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].Strength > zones[j].Strength })
	if len(zones) > 5 {
		zones = zones[:5]
	}
	return zones
}

// entryTimeframe picks the finest available timeframe for entry precision.
func (m *MultiTimeframeAnalyzer) entryTimeframe(tfs map[market.Timeframe]*TimeframeAnalysis) market.Timeframe {
	for _, tf := range market.EntryPriority {
		if _, ok := tfs[tf]; ok {
			return tf
		}
	}
	for _, tf := range sortedKeys(tfs) {
		return tf
	}
	return ""
}

func sortedKeys(tfs map[market.Timeframe]*TimeframeAnalysis) []market.Timeframe {
	keys := make([]market.Timeframe, 0, len(tfs))
	for tf := range tfs {
		keys = append(keys, tf)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
