package ict

import (
	"gold-analysis-bot/internal/market"
)

// EntryZone classifies price against the midpoint of the recent range
type EntryZone string

const (
	ZoneDiscount EntryZone = "DISCOUNT" // lower half, favors buying
	ZonePremium  EntryZone = "PREMIUM"  // upper half, favors selling
)

// EntrySetupType identifies the structure backing an entry
type EntrySetupType string

const (
	SetupOrderBlock EntrySetupType = "ORDER_BLOCK"
	SetupFVG        EntrySetupType = "FAIR_VALUE_GAP"
)

// EntrySetup is one candidate entry aligned with the zone.
type EntrySetup struct {
	Type      EntrySetupType
	Direction market.Direction
	ZoneHigh  float64
	ZoneLow   float64
	Strength  float64
}

// OptimalEntry describes where in the range price sits and which zones
// offer an aligned entry.
type OptimalEntry struct {
	Zone          EntryZone
	PricePosition float64 // 0 at the range low, 1 at the range high
	Setups        []EntrySetup
}

// rangeLookback bounds the premium/discount range.
const rangeLookback = 50

// FindOptimalEntry classifies the current price as discount or premium
// against the recent range midpoint, then collects untested order blocks
// and unfilled gaps aligned with that zone. Returns nil when nothing lines
// up, which is a no-setup condition rather than an error.
func FindOptimalEntry(series market.BarSeries, blocks []OrderBlock, gaps []FVG) *OptimalEntry {
	if len(series) == 0 || (len(blocks) == 0 && len(gaps) == 0) {
		return nil
	}

	currentPrice := series.LastClose()
	recentHigh := series.HighestHigh(rangeLookback)
	recentLow := series.LowestLow(rangeLookback)
	rangeSize := recentHigh - recentLow
	if rangeSize <= 0 {
		return nil
	}

	entry := &OptimalEntry{
		PricePosition: (currentPrice - recentLow) / rangeSize,
	}
	if entry.PricePosition <= 0.5 {
		entry.Zone = ZoneDiscount
	} else {
		entry.Zone = ZonePremium
	}

	switch entry.Zone {
	case ZoneDiscount:
		for _, ob := range blocks {
			if ob.Type == BullishOB && !ob.Tested && ob.Contains(currentPrice) {
				entry.Setups = append(entry.Setups, EntrySetup{
					Type:      SetupOrderBlock,
					Direction: market.DirectionBuy,
					ZoneHigh:  ob.High,
					ZoneLow:   ob.Low,
					Strength:  ob.Strength,
				})
			}
		}
		for _, gap := range gaps {
			if gap.Type == BullishFVG && !gap.Filled && currentPrice <= gap.GapHigh {
				entry.Setups = append(entry.Setups, EntrySetup{
					Type:      SetupFVG,
					Direction: market.DirectionBuy,
					ZoneHigh:  gap.GapHigh,
					ZoneLow:   gap.GapLow,
					Strength:  gap.Size,
				})
			}
		}
	case ZonePremium:
		for _, ob := range blocks {
			if ob.Type == BearishOB && !ob.Tested && ob.Contains(currentPrice) {
				entry.Setups = append(entry.Setups, EntrySetup{
					Type:      SetupOrderBlock,
					Direction: market.DirectionSell,
					ZoneHigh:  ob.High,
					ZoneLow:   ob.Low,
					Strength:  ob.Strength,
				})
			}
		}
		for _, gap := range gaps {
			if gap.Type == BearishFVG && !gap.Filled && currentPrice >= gap.GapLow {
				entry.Setups = append(entry.Setups, EntrySetup{
					Type:      SetupFVG,
					Direction: market.DirectionSell,
					ZoneHigh:  gap.GapHigh,
					ZoneLow:   gap.GapLow,
					Strength:  gap.Size,
				})
			}
		}
	}

	if len(entry.Setups) == 0 {
		return nil
	}
	return entry
}
