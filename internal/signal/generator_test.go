package signal

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/analysis"
	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/news"
	"gold-analysis-bot/internal/risk"
)

func testGenerator() *Generator {
	cfg := analysis.Config{
		PipValue:               0.01,
		OrderBlockLookback:     50,
		FVGMinGapPips:          50,
		LiquidityTolerancePips: 100,
		RSIOversold:            30,
		RSIOverbought:          70,
	}
	mtf := analysis.NewMultiTimeframeAnalyzer(cfg, zerolog.Nop())
	calc := risk.NewCalculator(risk.DefaultConfig(), zerolog.Nop())
	return NewGenerator(DefaultGeneratorConfig(), mtf, calc, zerolog.Nop())
}

// wavyUptrend builds n bars rising one dollar per bar with a gentle
// oscillation, ending at the given timestamp.
func wavyUptrend(n int, interval time.Duration, end time.Time) market.BarSeries {
	series := make(market.BarSeries, 0, n)
	closeAt := func(i int) float64 {
		return 2000 + float64(i) + 1.5*math.Sin(2*math.Pi*float64(i)/10)
	}
	for i := 0; i < n; i++ {
		open := closeAt(i - 1)
		if i == 0 {
			open = closeAt(0) - 1
		}
		c := closeAt(i)
		series = append(series, market.Bar{
			Timestamp: end.Add(-time.Duration(n-1-i) * interval),
			Open:      open,
			High:      math.Max(open, c) + 0.2,
			Low:       math.Min(open, c) - 0.2,
			Close:     c,
		})
	}
	return series
}

func flatMarket(n int, interval time.Duration, end time.Time) market.BarSeries {
	series := make(market.BarSeries, 0, n)
	for i := 0; i < n; i++ {
		series = append(series, market.Bar{
			Timestamp: end.Add(-time.Duration(n-1-i) * interval),
			Open:      2000,
			High:      2000.2,
			Low:       1999.8,
			Close:     2000,
		})
	}
	return series
}

// TestGenerateBullishSignal runs the full pipeline over a sustained
// uptrend ending inside the London session
func TestGenerateBullishSignal(t *testing.T) {
	g := testGenerator()

	// 08:00 UTC falls inside the London kill zone.
	end := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	data := map[market.Timeframe]market.BarSeries{
		market.TF15m: wavyUptrend(300, 15*time.Minute, end),
		market.TF1h:  wavyUptrend(300, time.Hour, end),
	}

	result, err := g.Generate(data, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.Rejected() {
		t.Fatalf("Expected a signal, rejected: %v", result.RejectReasons)
	}

	sig := result.Signal
	if sig.Direction != market.DirectionBuy {
		t.Errorf("Expected BUY, got %s", sig.Direction)
	}
	if sig.ID == "" {
		t.Error("Expected a signal ID")
	}
	if sig.Alignment != analysis.BullishAligned {
		t.Errorf("Expected bullish alignment, got %s", sig.Alignment)
	}
	if sig.StopLoss >= sig.Entry {
		t.Errorf("Expected stop %.2f below entry %.2f", sig.StopLoss, sig.Entry)
	}
	if len(sig.TakeProfits) != 3 {
		t.Fatalf("Expected 3 take profits, got %d", len(sig.TakeProfits))
	}
	for i, tp := range sig.TakeProfits {
		if tp.Price <= sig.Entry {
			t.Errorf("Take profit %d (%.2f) not above entry %.2f", i+1, tp.Price, sig.Entry)
		}
		if i > 0 && tp.Price <= sig.TakeProfits[i-1].Price {
			t.Errorf("Take profits not strictly increasing at %d", i+1)
		}
	}
	if !sig.InKillZone || sig.KillZoneName != "LONDON" {
		t.Errorf("Expected London kill zone, got %q", sig.KillZoneName)
	}
	if sig.ConfirmationCount < 3 {
		t.Errorf("Expected at least 3 confirmations, got %d", sig.ConfirmationCount)
	}
	if sig.Position.Lots < 0.01 {
		t.Errorf("Expected a sized position, got %f lots", sig.Position.Lots)
	}
	if sig.Quality == "" {
		t.Error("Expected a quality grade")
	}
}

// TestGenerateNoSignalFlatMarket tests the clean no-signal outcome on a
// directionless market
func TestGenerateNoSignalFlatMarket(t *testing.T) {
	g := testGenerator()

	end := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	data := map[market.Timeframe]market.BarSeries{
		market.TF15m: flatMarket(300, 15*time.Minute, end),
		market.TF1h:  flatMarket(300, time.Hour, end),
	}

	result, err := g.Generate(data, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Rejected() {
		t.Fatal("Expected no signal in a flat market")
	}
	if len(result.RejectReasons) == 0 {
		t.Error("Expected reject reasons")
	}
}

// TestGenerateConflictingNews tests the news veto over a technically
// valid setup
func TestGenerateConflictingNews(t *testing.T) {
	g := testGenerator()

	end := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	data := map[market.Timeframe]market.BarSeries{
		market.TF15m: wavyUptrend(300, 15*time.Minute, end),
		market.TF1h:  wavyUptrend(300, time.Hour, end),
	}
	items := []news.Item{
		{Title: "Fed flags aggressive rate path", Sentiment: news.SentimentBearish},
		{Title: "CPI surges, inflation fears return", Sentiment: news.SentimentBearish},
		{Title: "dollar rallies broadly", Sentiment: news.SentimentBearish},
	}

	result, err := g.Generate(data, items)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Rejected() {
		t.Fatal("Expected news conflict to veto the signal")
	}
}

// TestGenerateEmptyInput tests that missing data is an error, not a
// rejection
func TestGenerateEmptyInput(t *testing.T) {
	g := testGenerator()

	if _, err := g.Generate(nil, nil); err == nil {
		t.Error("Expected error for empty data map")
	}
}

// TestGenerateMalformedSeries tests that a broken series fails the whole
// cycle even when another timeframe is valid
func TestGenerateMalformedSeries(t *testing.T) {
	g := testGenerator()
	end := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)

	data := map[market.Timeframe]market.BarSeries{
		market.TF15m: wavyUptrend(300, 15*time.Minute, end),
		market.TF1h:  wavyUptrend(300, time.Hour, end),
	}
	bad := data[market.TF1h]
	bad[150].High, bad[150].Low = bad[150].Low, bad[150].High

	result, err := g.Generate(data, nil)
	if err == nil {
		t.Fatal("Expected an error for the malformed series")
	}
	if result.Signal != nil {
		t.Error("Expected no signal alongside the error")
	}

	var vErr *market.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected a ValidationError, got %v", err)
	}
	if vErr.Timeframe != market.TF1h || vErr.Index != 150 {
		t.Errorf("Expected the 1h violation at bar 150, got %s index %d", vErr.Timeframe, vErr.Index)
	}
}
