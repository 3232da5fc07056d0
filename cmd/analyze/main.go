// Command analyze runs a single analysis cycle against the mock data feed
// and prints the outcome as JSON. Useful for tuning detector thresholds
// without starting the full bot.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"gold-analysis-bot/config"
	"gold-analysis-bot/internal/analysis"
	"gold-analysis-bot/internal/logging"
	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/risk"
	"gold-analysis-bot/internal/signal"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: "warn"})

	mtf := analysis.NewMultiTimeframeAnalyzer(analysis.Config{
		PipValue:               cfg.TradingConfig.PipValue,
		OrderBlockLookback:     cfg.AnalysisConfig.OrderBlockLookback,
		FVGMinGapPips:          cfg.AnalysisConfig.FVGMinGapPips,
		LiquidityTolerancePips: cfg.AnalysisConfig.LiquidityTolerancePips,
		RSIOversold:            cfg.AnalysisConfig.RSIOversold,
		RSIOverbought:          cfg.AnalysisConfig.RSIOverbought,
	}, logger)

	calc := risk.NewCalculator(risk.Config{
		AccountBalance: cfg.RiskConfig.AccountBalance,
		RiskPercentage: cfg.RiskConfig.RiskPercentage,
		PipValue:       cfg.TradingConfig.PipValue,
		MinStopPips:    cfg.RiskConfig.MinStopPips,
		MaxStopPips:    cfg.RiskConfig.MaxStopPips,
	}, logger)

	gen := signal.NewGenerator(signal.GeneratorConfig{
		Pair:             cfg.TradingConfig.Pair,
		PipValue:         cfg.TradingConfig.PipValue,
		EntrySnapMinPips: cfg.SignalConfig.EntrySnapMinPips,
		EntrySnapMaxPips: cfg.SignalConfig.EntrySnapMaxPips,
		StopBufferPips:   cfg.SignalConfig.StopBufferPips,
		MinStopPips:      cfg.SignalConfig.MinStopPips,
		DefaultStopPips:  cfg.SignalConfig.DefaultStopPips,
		TargetStepPips:   cfg.SignalConfig.TargetStepPips,
		LevelProximity:   cfg.SignalConfig.LevelProximity,
	}, mtf, calc, logger)

	provider := market.NewMockProvider(2000)
	ctx := context.Background()

	data := make(map[market.Timeframe]market.BarSeries)
	for _, tf := range cfg.Timeframes() {
		series, err := provider.GetBarSeries(ctx, tf, cfg.TradingConfig.BarCount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to fetch %s bars: %v\n", tf, err)
			continue
		}
		data[tf] = series
	}

	result, err := gen.Generate(data, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
