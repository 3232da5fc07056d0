package ict

import (
	"gold-analysis-bot/internal/market"
)

// StructureEventType classifies swing-sequence events
type StructureEventType string

const (
	BullishBOS   StructureEventType = "BULLISH_BOS"
	BearishBOS   StructureEventType = "BEARISH_BOS"
	BullishCHoCH StructureEventType = "BULLISH_CHOCH"
	BearishCHoCH StructureEventType = "BEARISH_CHOCH"
)

// SwingPoint is a confirmed local extreme.
type SwingPoint struct {
	Price float64
	Index int
}

// StructureEvent records a break of structure or change of character.
type StructureEvent struct {
	Type     StructureEventType
	Level    float64 // the swing level that was broken
	BrokenAt float64 // the swing that broke it
}

// MarketStructure is the swing-sequencing view of one timeframe.
type MarketStructure struct {
	Current            market.TrendDirection
	SwingHighs         []SwingPoint
	SwingLows          []SwingPoint
	BOSEvents          []StructureEvent
	CHoCHEvents        []StructureEvent
	InducementDetected bool
}

// HasBOS reports whether any break of structure was found.
func (ms MarketStructure) HasBOS() bool {
	return len(ms.BOSEvents) > 0
}

// StructureAnalyzer extracts swing points and structure events
type StructureAnalyzer struct {
	swingWindow      int
	inducementWindow int // recent bars scanned for fake-out extremes
	reversalBars     int // bars within which an extreme must reverse
}

// NewStructureAnalyzer creates an analyzer using the 5-bar swing convention.
func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{
		swingWindow:      5,
		inducementWindow: 20,
		reversalBars:     5,
	}
}

// Analyze extracts swing highs/lows and flags BOS (continuation break in
// trend direction), CHoCH (swing-low sequence reversing the established
// direction), and inducement (a fresh extreme immediately reversed within
// the next 5 bars).
func (a *StructureAnalyzer) Analyze(series market.BarSeries) MarketStructure {
	ms := MarketStructure{Current: market.TrendRanging}
	if len(series) < a.swingWindow*2+1 {
		return ms
	}

	for i := a.swingWindow; i < len(series)-a.swingWindow; i++ {
		if isWindowHigh(series, i, a.swingWindow) {
			ms.SwingHighs = append(ms.SwingHighs, SwingPoint{Price: series[i].High, Index: i})
		}
		if isWindowLow(series, i, a.swingWindow) {
			ms.SwingLows = append(ms.SwingLows, SwingPoint{Price: series[i].Low, Index: i})
		}
	}

	if len(ms.SwingHighs) >= 2 {
		prev := ms.SwingHighs[len(ms.SwingHighs)-2]
		last := ms.SwingHighs[len(ms.SwingHighs)-1]
		if last.Price > prev.Price {
			ms.BOSEvents = append(ms.BOSEvents, StructureEvent{
				Type:     BullishBOS,
				Level:    prev.Price,
				BrokenAt: last.Price,
			})
		}
	}

	if len(ms.SwingLows) >= 2 {
		prev := ms.SwingLows[len(ms.SwingLows)-2]
		last := ms.SwingLows[len(ms.SwingLows)-1]
		switch {
		case last.Price > prev.Price:
			ms.Current = market.TrendBullish
		case last.Price < prev.Price:
			ms.Current = market.TrendBearish
			ms.CHoCHEvents = append(ms.CHoCHEvents, StructureEvent{
				Type:  BearishCHoCH,
				Level: prev.Price,
			})
		}
	}

	// Symmetric continuation break on the low side.
	if len(ms.SwingLows) >= 2 && ms.Current == market.TrendBearish {
		prev := ms.SwingLows[len(ms.SwingLows)-2]
		last := ms.SwingLows[len(ms.SwingLows)-1]
		if last.Price < prev.Price {
			ms.BOSEvents = append(ms.BOSEvents, StructureEvent{
				Type:     BearishBOS,
				Level:    prev.Price,
				BrokenAt: last.Price,
			})
		}
	}

	ms.InducementDetected = a.detectInducement(series)

	return ms
}

// detectInducement scans the recent window for a bar that prints a fresh
// extreme against the prior bars and then closes back through its own open
// within the reversal window.
func (a *StructureAnalyzer) detectInducement(series market.BarSeries) bool {
	if len(series) < a.inducementWindow {
		return false
	}
	recent := series.Tail(a.inducementWindow)

	for i := 1; i < len(recent)-a.reversalBars; i++ {
		priorHigh := recent[:i].HighestHigh(i)
		priorLow := recent[:i].LowestLow(i)
		reversalClose := recent[i+a.reversalBars].Close

		// Fake breakout up, then reversal below the breakout bar's open.
		if recent[i].High > priorHigh && reversalClose < recent[i].Open {
			return true
		}
		// Fake breakdown, then reversal above the breakout bar's open.
		if recent[i].Low < priorLow && reversalClose > recent[i].Open {
			return true
		}
	}
	return false
}
