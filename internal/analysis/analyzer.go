package analysis

import (
	"gold-analysis-bot/internal/ict"
	"gold-analysis-bot/internal/levels"
	"gold-analysis-bot/internal/market"
)

// Config carries the tunables shared by the per-timeframe analyzers.
type Config struct {
	PipValue               float64
	OrderBlockLookback     int
	FVGMinGapPips          float64
	LiquidityTolerancePips float64
	RSIOversold            float64
	RSIOverbought          float64
}

// TimeframeAnalysis bundles everything computed for one timeframe.
type TimeframeAnalysis struct {
	Timeframe    market.Timeframe
	CurrentPrice float64

	Indicators *IndicatorSet
	Trend      TrendAnalysis
	Momentum   MomentumAnalysis
	Volatility VolatilityAnalysis
	Divergence DivergenceType

	OrderBlocks  []ict.OrderBlock
	FVGs         []ict.FVG
	Liquidity    ict.Liquidity
	Structure    ict.MarketStructure
	Breakers     []ict.BreakerBlock
	KillZone     ict.KillZoneStatus
	OptimalEntry *ict.OptimalEntry

	Levels       levels.LevelMap
	Fibonacci    levels.Retracement
	FibExtension levels.Extension
	GoldenRatio  levels.GoldenRatioStatus

	Volume   *VolumeProfile
	Patterns []CandlePattern
}

// TimeframeAnalyzer runs the full analysis stack over one bar series
type TimeframeAnalyzer struct {
	cfg         Config
	indicators  *IndicatorAnalyzer
	orderBlocks *ict.OrderBlockDetector
	fvgs        *ict.FVGDetector
	liquidity   *ict.LiquidityAnalyzer
	structure   *ict.StructureAnalyzer
	breakers    *ict.BreakerDetector
	killZones   *ict.KillZoneClock
	sr          *levels.SupportResistanceAnalyzer
	fib         *levels.FibonacciAnalyzer
	volume      *VolumeAnalyzer
	candles     *CandlestickDetector
}

// NewTimeframeAnalyzer wires the detector set from one immutable config.
func NewTimeframeAnalyzer(cfg Config) *TimeframeAnalyzer {
	return &TimeframeAnalyzer{
		cfg:         cfg,
		indicators:  NewIndicatorAnalyzer(cfg.RSIOversold, cfg.RSIOverbought),
		orderBlocks: ict.NewOrderBlockDetector(cfg.OrderBlockLookback),
		fvgs:        ict.NewFVGDetector(cfg.FVGMinGapPips * cfg.PipValue),
		liquidity:   ict.NewLiquidityAnalyzer(cfg.LiquidityTolerancePips * cfg.PipValue),
		structure:   ict.NewStructureAnalyzer(),
		breakers:    ict.NewBreakerDetector(),
		killZones:   ict.NewKillZoneClock(nil),
		sr:          levels.NewSupportResistanceAnalyzer(cfg.PipValue),
		fib:         levels.NewFibonacciAnalyzer(cfg.PipValue),
		volume:      NewVolumeAnalyzer(20),
		candles:     NewCandlestickDetector(10),
	}
}

// Analyze validates the series and runs every detector over it. The input
// series is treated as an immutable snapshot.
func (a *TimeframeAnalyzer) Analyze(tf market.Timeframe, series market.BarSeries) (*TimeframeAnalysis, error) {
	if err := market.ValidateSeries(tf, series); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return &TimeframeAnalysis{Timeframe: tf}, nil
	}

	ta := &TimeframeAnalysis{
		Timeframe:    tf,
		CurrentPrice: series.LastClose(),
	}

	ta.Indicators = a.indicators.Compute(series)
	ta.Trend = a.indicators.AnalyzeTrend(series, ta.Indicators)
	ta.Momentum = a.indicators.AnalyzeMomentum(ta.Indicators)
	ta.Volatility = a.indicators.AnalyzeVolatility(series, ta.Indicators)
	ta.Divergence = a.indicators.DetectDivergence(series)

	ta.OrderBlocks = a.orderBlocks.Detect(tf, series)
	ta.FVGs = a.fvgs.Detect(tf, series)
	ta.Liquidity = a.liquidity.Analyze(series)
	ta.Structure = a.structure.Analyze(series)
	ta.Breakers = a.breakers.Detect(ta.OrderBlocks, series)
	// Session timing keyed to the data, not to the wall clock.
	ta.KillZone = a.killZones.Check(series.Last().Timestamp)
	ta.OptimalEntry = ict.FindOptimalEntry(series, ta.OrderBlocks, ta.FVGs)

	ta.Levels = a.sr.FindLevels(series)
	ta.Fibonacci = a.fib.Retracement(series, 0, 0)
	ta.FibExtension = a.fib.Extension(series, 0, 0)
	ta.GoldenRatio = a.fib.AtGoldenRatio(series, ta.CurrentPrice, 5)

	ta.Volume = a.volume.Analyze(series)
	ta.Patterns = a.candles.Detect(tf, series)

	return ta, nil
}
