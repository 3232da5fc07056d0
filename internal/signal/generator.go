package signal

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/analysis"
	"gold-analysis-bot/internal/ict"
	"gold-analysis-bot/internal/levels"
	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/news"
	"gold-analysis-bot/internal/risk"
)

// GeneratorConfig carries the tunables of the signal pipeline.
type GeneratorConfig struct {
	Pair             string
	PipValue         float64
	EntrySnapMinPips float64 // closest OB/FVG snap distance
	EntrySnapMaxPips float64 // furthest OB/FVG snap distance
	StopBufferPips   float64 // buffer past the structural level
	MinStopPips      float64 // candidate floor
	DefaultStopPips  float64 // fallback stop distance
	TargetStepPips   float64 // synthesized extension spacing
	LevelProximity   float64 // pips for the strong-level confirmation
}

// DefaultGeneratorConfig returns the XAU/USD defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Pair:             "XAUUSD",
		PipValue:         0.01,
		EntrySnapMinPips: 10,
		EntrySnapMaxPips: 50,
		StopBufferPips:   10,
		MinStopPips:      15,
		DefaultStopPips:  30,
		TargetStepPips:   50,
		LevelProximity:   20,
	}
}

// Generator runs the full decision pipeline over multi-timeframe data and
// emits at most one signal per cycle.
type Generator struct {
	cfg    GeneratorConfig
	mtf    *analysis.MultiTimeframeAnalyzer
	conf   *ConfirmationSystem
	risk   *risk.Calculator
	logger zerolog.Logger
}

func NewGenerator(cfg GeneratorConfig, mtf *analysis.MultiTimeframeAnalyzer, calc *risk.Calculator, logger zerolog.Logger) *Generator {
	if cfg.PipValue <= 0 {
		cfg.PipValue = 0.01
	}
	return &Generator{
		cfg:    cfg,
		mtf:    mtf,
		conf:   NewConfirmationSystem(),
		risk:   calc,
		logger: logger.With().Str("component", "signal_generator").Logger(),
	}
}

// Generate runs one cycle. A no-signal outcome is reported through
// Result.RejectReasons; only invalid input returns an error.
func (g *Generator) Generate(data map[market.Timeframe]market.BarSeries, newsItems []news.Item) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("no timeframe data supplied")
	}
	for tf, series := range data {
		if err := market.ValidateSeries(tf, series); err != nil {
			return Result{}, fmt.Errorf("timeframe %s: %w", tf, err)
		}
	}

	g.logger.Info().Int("timeframes", len(data)).Msg("starting signal generation")

	mtfAnalysis := g.mtf.Analyze(data)
	if len(mtfAnalysis.Timeframes) == 0 {
		return Result{RejectReasons: []string{"no timeframe passed validation"}}, nil
	}

	rec := g.mtf.Recommend(mtfAnalysis)
	if rec.Direction == market.DirectionNeutral {
		g.logger.Info().Msg("no clear directional bias")
		return Result{RejectReasons: []string{"no clear directional bias"}}, nil
	}

	entryTF := mtfAnalysis.EntryTimeframe
	entry, ok := mtfAnalysis.Timeframes[entryTF]
	if !ok || entry == nil {
		return Result{RejectReasons: []string{fmt.Sprintf("entry timeframe %s not available", entryTF)}}, nil
	}

	confirmations := g.collectConfirmations(rec, mtfAnalysis, entry)

	validation := g.conf.Validate(confirmations, rec.Direction)
	g.logger.Info().
		Int("count", validation.Count).
		Float64("score", validation.WeightedScore).
		Bool("valid", validation.IsValid).
		Msg("confirmation validation")
	if !validation.IsValid {
		return Result{RejectReasons: validation.Reasons}, nil
	}

	newsCheck := checkNewsAlignment(newsItems, rec.Direction)
	if newsCheck.Conflicting {
		g.logger.Warn().Str("sentiment", newsCheck.Sentiment).Msg("news sentiment conflicts with technical signal")
		return Result{RejectReasons: []string{"high-impact news sentiment conflicts with direction"}}, nil
	}

	entryPrice, entryReason := g.calculateEntry(entry.CurrentPrice, rec.Direction, entry)
	stopLoss, stopReason := g.calculateStop(entryPrice, rec.Direction, entry)
	targets := g.calculateTargets(entryPrice, rec.Direction, entry.FibExtension, entry.Levels)

	position := g.risk.CalculatePositionSize(entryPrice, stopLoss)
	multiRR := g.risk.MultiTarget(entryPrice, stopLoss, targets)
	tradeValidation := g.risk.ValidateTradeParams(entryPrice, stopLoss, targets[0].Price)

	conditions := g.assessConditions(entry)
	momentumScore := entry.Momentum.BullishCount
	if rec.Direction == market.DirectionSell {
		momentumScore = entry.Momentum.BearishCount
	}

	sig := &Signal{
		ID:        NewSignalID(),
		Timestamp: time.Now().UTC(),
		Pair:      g.cfg.Pair,

		Direction:   rec.Direction,
		Entry:       round5(entryPrice),
		StopLoss:    round5(stopLoss),
		TakeProfits: targets,

		Position:        position,
		RiskReward:      multiRR,
		TradeValidation: tradeValidation,

		Alignment:     mtfAnalysis.Alignment.Status,
		PrimaryTrend:  mtfAnalysis.Primary.Trend,
		TrendStrength: entry.Trend.Strength,
		MomentumScore: momentumScore,

		Confirmations:     confirmations,
		ConfirmationCount: validation.Count,
		Confidence:        validation.Confidence,

		InKillZone:        entry.KillZone.InKillZone,
		KillZoneName:      entry.KillZone.ZoneName,
		OrderBlocksNearby: len(entry.OrderBlocks),
		FVGPresent:        len(entry.FVGs) > 0,

		Conditions: conditions,
		News:       newsCheck,

		EntryReason: entryReason,
		StopReason:  stopReason,

		Quality: signalQuality(validation, conditions, newsCheck),
	}
	if len(entry.Levels.Support) > 0 {
		p := entry.Levels.Support[0].Price
		sig.NearestSupport = &p
	}
	if len(entry.Levels.Resistance) > 0 {
		p := entry.Levels.Resistance[0].Price
		sig.NearestResistance = &p
	}

	g.logger.Info().
		Str("direction", string(sig.Direction)).
		Float64("entry", sig.Entry).
		Float64("confidence", sig.Confidence).
		Str("quality", string(sig.Quality)).
		Msg("signal generated")

	return Result{Signal: sig}, nil
}

func (g *Generator) collectConfirmations(rec analysis.TradeRecommendation, mtfAnalysis *analysis.MultiTimeframeAnalysis, entry *analysis.TimeframeAnalysis) []Confirmation {
	var confirmations []Confirmation
	direction := rec.Direction
	buy := direction == market.DirectionBuy

	if mtfAnalysis.Alignment.Confidence >= 0.7 && mtfAnalysis.Alignment.Status != analysis.NotAligned {
		confirmations = append(confirmations, ConfMultiTimeframeAlignment)
	}

	if (buy && entry.Trend.Direction == market.TrendBullish) ||
		(!buy && entry.Trend.Direction == market.TrendBearish) {
		confirmations = append(confirmations, ConfTrendAligned)
	}

	if (buy && entry.Momentum.BullishCount >= 2) || (!buy && entry.Momentum.BearishCount >= 2) {
		confirmations = append(confirmations, ConfMomentumStrong)
	}

	for _, ob := range topBlocks(entry.OrderBlocks, 2) {
		if buy && ob.Type == ict.BullishOB {
			confirmations = append(confirmations, ConfBullishOrderBlock)
			break
		}
		if !buy && ob.Type == ict.BearishOB {
			confirmations = append(confirmations, ConfBearishOrderBlock)
			break
		}
	}

	for _, gap := range topGaps(entry.FVGs, 2) {
		if buy && gap.Type == ict.BullishFVG {
			confirmations = append(confirmations, ConfBullishFVG)
			break
		}
		if !buy && gap.Type == ict.BearishFVG {
			confirmations = append(confirmations, ConfBearishFVG)
			break
		}
	}

	if entry.KillZone.InKillZone {
		switch entry.KillZone.ZoneName {
		case "LONDON", "LONDON_CLOSE":
			confirmations = append(confirmations, ConfKillZoneLondon)
		case "NEW_YORK":
			confirmations = append(confirmations, ConfKillZoneNewYork)
		case "ASIAN":
			confirmations = append(confirmations, ConfKillZoneAsian)
		}
	}

	if buy {
		if g.strongLevelNearby(entry.Levels.Support, entry.CurrentPrice) {
			confirmations = append(confirmations, ConfStrongSupport)
		}
	} else {
		if g.strongLevelNearby(entry.Levels.Resistance, entry.CurrentPrice) {
			confirmations = append(confirmations, ConfStrongResistance)
		}
	}

	if entry.GoldenRatio.Hit {
		confirmations = append(confirmations, ConfFibGoldenRatio)
	}

	if entry.Structure.HasBOS() {
		confirmations = append(confirmations, ConfStructureBreak)
	}

	if entry.Liquidity.SweptRecently(2) {
		confirmations = append(confirmations, ConfLiquiditySweep)
	}

	if entry.Volume != nil && entry.Volume.IsHighVolume {
		if (buy && entry.Volume.Pressure == analysis.VolumeBuying) ||
			(!buy && entry.Volume.Pressure == analysis.VolumeSelling) {
			confirmations = append(confirmations, ConfVolumeConfirmation)
		}
	}

	if (buy && entry.Divergence == analysis.BullishDivergence) ||
		(!buy && entry.Divergence == analysis.BearishDivergence) {
		confirmations = append(confirmations, ConfDivergence)
	}

	for _, pattern := range entry.Patterns {
		if pattern.Direction == direction {
			confirmations = append(confirmations, ConfCandlestickPattern)
			break
		}
	}

	return confirmations
}

func (g *Generator) strongLevelNearby(lvls []levels.Level, price float64) bool {
	for i, level := range lvls {
		if i >= 3 {
			break
		}
		if math.Abs(price-level.Price)/g.cfg.PipValue <= g.cfg.LevelProximity && level.Strength >= 0.6 {
			return true
		}
	}
	return false
}

// calculateEntry snaps the entry to a same-direction order block or FVG
// midpoint when one sits a workable distance away, otherwise takes the
// market price.
func (g *Generator) calculateEntry(currentPrice float64, direction market.Direction, entry *analysis.TimeframeAnalysis) (float64, string) {
	buy := direction == market.DirectionBuy

	for _, ob := range entry.OrderBlocks {
		if buy && ob.Type == ict.BullishOB && ob.Low < currentPrice {
			pips := (currentPrice - ob.Low) / g.cfg.PipValue
			if pips >= g.cfg.EntrySnapMinPips && pips <= g.cfg.EntrySnapMaxPips {
				return ob.Midpoint(), "bullish order block"
			}
		}
		if !buy && ob.Type == ict.BearishOB && ob.High > currentPrice {
			pips := (ob.High - currentPrice) / g.cfg.PipValue
			if pips >= g.cfg.EntrySnapMinPips && pips <= g.cfg.EntrySnapMaxPips {
				return ob.Midpoint(), "bearish order block"
			}
		}
	}

	for _, gap := range entry.FVGs {
		if buy && gap.Type == ict.BullishFVG && gap.GapLow < currentPrice {
			pips := (currentPrice - gap.GapLow) / g.cfg.PipValue
			if pips >= g.cfg.EntrySnapMinPips && pips <= g.cfg.EntrySnapMaxPips {
				return gap.Midpoint(), "bullish fair value gap"
			}
		}
		if !buy && gap.Type == ict.BearishFVG && gap.GapHigh > currentPrice {
			pips := (gap.GapHigh - currentPrice) / g.cfg.PipValue
			if pips >= g.cfg.EntrySnapMinPips && pips <= g.cfg.EntrySnapMaxPips {
				return gap.Midpoint(), "bearish fair value gap"
			}
		}
	}

	return currentPrice, "current market price"
}

// calculateStop collects structural candidates and takes the tightest one
// past the minimum floor. With no usable candidate it falls back to the
// default distance; the trade still goes out, the reason records it.
func (g *Generator) calculateStop(entry float64, direction market.Direction, ta *analysis.TimeframeAnalysis) (float64, string) {
	buffer := g.cfg.StopBufferPips * g.cfg.PipValue
	buy := direction == market.DirectionBuy

	var candidates []float64
	for _, ob := range ta.OrderBlocks {
		if buy && ob.Type == ict.BullishOB {
			candidates = append(candidates, ob.Low-buffer)
		}
		if !buy && ob.Type == ict.BearishOB {
			candidates = append(candidates, ob.High+buffer)
		}
	}
	if buy {
		for i, support := range ta.Levels.Support {
			if i >= 2 {
				break
			}
			if support.Price < entry {
				candidates = append(candidates, support.Price-buffer)
			}
		}
	} else {
		for i, resistance := range ta.Levels.Resistance {
			if i >= 2 {
				break
			}
			if resistance.Price > entry {
				candidates = append(candidates, resistance.Price+buffer)
			}
		}
	}

	var valid []float64
	for _, c := range candidates {
		distance := (entry - c) / g.cfg.PipValue
		if !buy {
			distance = (c - entry) / g.cfg.PipValue
		}
		if distance >= g.cfg.MinStopPips {
			valid = append(valid, c)
		}
	}

	if len(valid) == 0 {
		fallback := entry - g.cfg.DefaultStopPips*g.cfg.PipValue
		if !buy {
			fallback = entry + g.cfg.DefaultStopPips*g.cfg.PipValue
		}
		return fallback, fmt.Sprintf("default %.0f-pip stop, no structural level in range", g.cfg.DefaultStopPips)
	}

	stop := valid[0]
	for _, c := range valid[1:] {
		if buy && c > stop {
			stop = c
		}
		if !buy && c < stop {
			stop = c
		}
	}
	return stop, fmt.Sprintf("structural (%.1f pips)", math.Abs(entry-stop)/g.cfg.PipValue)
}

// calculateTargets builds three take-profit levels from fib extensions and
// the next opposing structural level, synthesizing fixed-step extensions
// when structure runs out. Targets are strictly monotonic away from entry.
func (g *Generator) calculateTargets(entry float64, direction market.Direction, ext levels.Extension, lm levels.LevelMap) []risk.Target {
	buy := direction == market.DirectionBuy

	var targets []risk.Target
	if price, ok := extensionPrice(ext, 1.272); ok && beyond(price, entry, buy) {
		targets = append(targets, risk.Target{Price: round5(price), Kind: "fib_1.272", Percentage: 50})
	}
	if price, ok := extensionPrice(ext, 1.618); ok && beyond(price, entry, buy) {
		targets = append(targets, risk.Target{Price: round5(price), Kind: "fib_1.618", Percentage: 30})
	}

	structural := lm.Resistance
	if !buy {
		structural = lm.Support
	}
	for i, level := range structural {
		if i >= 3 {
			break
		}
		if beyond(level.Price, entry, buy) {
			targets = append(targets, risk.Target{Price: round5(level.Price), Kind: "structural", Percentage: 20})
			break
		}
	}

	// Strictly monotonic away from entry, duplicates dropped.
	sort.Slice(targets, func(i, j int) bool {
		if buy {
			return targets[i].Price < targets[j].Price
		}
		return targets[i].Price > targets[j].Price
	})
	kept := targets[:0]
	last := entry
	for _, t := range targets {
		if beyond(t.Price, last, buy) {
			kept = append(kept, t)
			last = t.Price
		}
	}
	targets = kept

	step := g.cfg.TargetStepPips * g.cfg.PipValue
	for len(targets) < 3 {
		next := last + step
		if !buy {
			next = last - step
		}
		targets = append(targets, risk.Target{Price: round5(next), Kind: "extension", Percentage: 10})
		last = next
	}

	return targets[:3]
}

func (g *Generator) assessConditions(ta *analysis.TimeframeAnalysis) MarketConditions {
	liquidity := "LOW"
	switch count := ta.Liquidity.PoolCount(); {
	case count >= 3:
		liquidity = "HIGH"
	case count >= 1:
		liquidity = "MEDIUM"
	}

	score := 0
	if len(ta.OrderBlocks) >= 2 {
		score++
	}
	if len(ta.Levels.Support) >= 2 && len(ta.Levels.Resistance) >= 2 {
		score++
	}
	if ta.Structure.HasBOS() {
		score++
	}
	structure := "WEAK"
	switch {
	case score >= 2:
		structure = "STRONG"
	case score == 1:
		structure = "MODERATE"
	}

	return MarketConditions{
		Volatility: ta.Volatility.Level,
		Liquidity:  liquidity,
		Structure:  structure,
	}
}

func signalQuality(v Validation, conditions MarketConditions, newsCheck NewsCheck) SignalQuality {
	score := 0

	switch {
	case v.Count >= 5:
		score += 3
	case v.Count >= 4:
		score += 2
	case v.Count >= 3:
		score++
	}

	switch {
	case v.Confidence >= 0.8:
		score += 2
	case v.Confidence >= 0.6:
		score++
	}

	switch conditions.Structure {
	case "STRONG":
		score += 2
	case "MODERATE":
		score++
	}

	if !newsCheck.Conflicting {
		score++
	}
	if conditions.Liquidity == "HIGH" {
		score++
	}

	switch {
	case score >= 7:
		return SignalExcellent
	case score >= 5:
		return SignalGood
	case score >= 3:
		return SignalFair
	}
	return SignalPoor
}

func topBlocks(blocks []ict.OrderBlock, n int) []ict.OrderBlock {
	if len(blocks) > n {
		return blocks[len(blocks)-n:]
	}
	return blocks
}

func topGaps(gaps []ict.FVG, n int) []ict.FVG {
	if len(gaps) > n {
		return gaps[len(gaps)-n:]
	}
	return gaps
}

func extensionPrice(ext levels.Extension, ratio float64) (float64, bool) {
	for _, l := range ext.Levels {
		if l.Ratio == ratio {
			return l.Price, true
		}
	}
	return 0, false
}

func beyond(price, reference float64, buy bool) bool {
	if buy {
		return price > reference
	}
	return price < reference
}

func round5(x float64) float64 { return math.Round(x*1e5) / 1e5 }
