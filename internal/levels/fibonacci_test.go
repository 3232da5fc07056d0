package levels

import (
	"math"
	"testing"

	"gold-analysis-bot/internal/market"
)

func fibLevel(levels []FibLevel, ratio float64) (FibLevel, bool) {
	for _, l := range levels {
		if l.Ratio == ratio {
			return l, true
		}
	}
	return FibLevel{}, false
}

// TestRetracementUptrend tests retracement levels for a rising swing
func TestRetracementUptrend(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	ret := analyzer.Retracement(nil, 110, 100)

	if !ret.Uptrend {
		t.Fatal("Expected uptrend orientation")
	}
	approx(t, "range", ret.Range, 10)

	l618, ok := fibLevel(ret.Levels, 0.618)
	if !ok {
		t.Fatal("Missing 0.618 level")
	}
	approx(t, "0.618", l618.Price, 103.82)

	l50, _ := fibLevel(ret.Levels, 0.5)
	approx(t, "0.5", l50.Price, 105)

	anchor0, _ := fibLevel(ret.Levels, 0)
	anchor1, _ := fibLevel(ret.Levels, 1)
	approx(t, "0%", anchor0.Price, 110)
	approx(t, "100%", anchor1.Price, 100)
}

// TestRetracementDowntrend tests the mirrored levels for a falling swing
func TestRetracementDowntrend(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	// Swing given in move order: from 110 down to 100.
	ret := analyzer.Retracement(nil, 100, 110)

	if ret.Uptrend {
		t.Fatal("Expected downtrend orientation")
	}

	l618, _ := fibLevel(ret.Levels, 0.618)
	approx(t, "0.618", l618.Price, 106.18)

	anchor0, _ := fibLevel(ret.Levels, 0)
	approx(t, "0%", anchor0.Price, 100)
}

// TestExtensionLevels tests targets beyond the swing
func TestExtensionLevels(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	ext := analyzer.Extension(nil, 110, 100)

	l1272, _ := fibLevel(ext.Levels, 1.272)
	approx(t, "1.272", l1272.Price, 112.72)

	l1618, _ := fibLevel(ext.Levels, 1.618)
	approx(t, "1.618", l1618.Price, 116.18)
}

// TestTargetsFromEntry tests direction filtering and distance ordering
func TestTargetsFromEntry(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	ext := analyzer.Extension(nil, 110, 100)

	targets := analyzer.TargetsFrom(ext, 111, market.DirectionBuy)

	if len(targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(targets))
	}
	approx(t, "target 1", targets[0].Price, 112.72)
	approx(t, "target 2", targets[1].Price, 114.14)
	approx(t, "target 3", targets[2].Price, 116.18)

	if sellTargets := analyzer.TargetsFrom(ext, 111, market.DirectionSell); len(sellTargets) != 0 {
		t.Errorf("Expected no sell targets above entry, got %d", len(sellTargets))
	}
}

// TestFibConfluences tests clustering of nearby levels
func TestFibConfluences(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	ret := Retracement{Levels: []FibLevel{
		{Ratio: 0.618, Price: 100.00},
		{Ratio: 0.5, Price: 105.00},
	}}
	ext := Extension{Levels: []FibLevel{
		{Ratio: 1.272, Price: 100.05},
		{Ratio: 1.618, Price: 110.00},
	}}

	confs := analyzer.Confluences(ret, ext)

	if len(confs) != 1 {
		t.Fatalf("Expected 1 confluence, got %d", len(confs))
	}
	approx(t, "confluence price", confs[0].Price, 100.025)
	if confs[0].Count != 2 {
		t.Errorf("Expected count 2, got %d", confs[0].Count)
	}
	approx(t, "confluence strength", confs[0].Strength, 0.5)
}

// TestAtGoldenRatio tests proximity to the 0.618 retracement
func TestAtGoldenRatio(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	// Swing auto-detected as 100 to 110.
	series := make(market.BarSeries, 10)
	for i := range series {
		base := 100 + float64(i)
		series[i] = bar(i, base, base+1, base, base+0.5)
	}

	status := analyzer.AtGoldenRatio(series, 103.80, 5)

	if !status.AtRetracement {
		t.Error("Expected price near the 0.618 retracement")
	}
	if status.AtExtension {
		t.Error("Price should not be at the 1.618 extension")
	}
	if !status.Hit {
		t.Error("Expected golden ratio hit")
	}

	if far := analyzer.AtGoldenRatio(series, 108, 5); far.Hit {
		t.Error("Expected no golden ratio hit away from the levels")
	}
}

// TestProjectionFallback tests ABC projection on a series too short for
// pivot detection
func TestProjectionFallback(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	series := market.BarSeries{
		bar(0, 100, 110, 90, 105),
		bar(1, 100, 110, 90, 105),
		bar(2, 100, 110, 90, 105),
		bar(3, 100, 110, 90, 105),
		bar(4, 100, 110, 90, 105),
	}

	proj := analyzer.Projection(series)

	approx(t, "point A", proj.PointA, 110)
	approx(t, "point B", proj.PointB, 90)
	approx(t, "point C", proj.PointC, 105)
	if proj.Uptrend {
		t.Error("Expected downtrend from B below A")
	}

	l618, _ := fibLevel(proj.Levels, 0.618)
	approx(t, "0.618 projection", l618.Price, 105-20*0.618)
}

// TestGoldenRatioLevelExact verifies the auto-detected swing feeding the
// golden ratio check
func TestGoldenRatioLevelExact(t *testing.T) {
	analyzer := NewFibonacciAnalyzer(0.01)

	series := make(market.BarSeries, 10)
	for i := range series {
		base := 100 + float64(i)
		series[i] = bar(i, base, base+1, base, base+0.5)
	}

	ret := analyzer.Retracement(series, 0, 0)

	approx(t, "swing high", ret.SwingHigh, 110)
	approx(t, "swing low", ret.SwingLow, 100)
	l618, _ := fibLevel(ret.Levels, 0.618)
	if math.Abs(103.80-l618.Price) > 0.05 {
		t.Errorf("0.618 level %f not within 5 pips of 103.80", l618.Price)
	}
}
