package signal

import (
	"fmt"
	"sort"
	"strings"

	"gold-analysis-bot/internal/market"
)

// Confirmation is a named piece of evidence supporting a trade direction.
type Confirmation string

const (
	ConfMultiTimeframeAlignment Confirmation = "MULTI_TIMEFRAME_ALIGNMENT"
	ConfTrendAligned            Confirmation = "TREND_ALIGNED"
	ConfMomentumStrong          Confirmation = "MOMENTUM_STRONG"
	ConfBullishOrderBlock       Confirmation = "ICT_BULLISH_ORDER_BLOCK"
	ConfBearishOrderBlock       Confirmation = "ICT_BEARISH_ORDER_BLOCK"
	ConfBullishFVG              Confirmation = "ICT_BULLISH_FVG"
	ConfBearishFVG              Confirmation = "ICT_BEARISH_FVG"
	ConfKillZoneLondon          Confirmation = "ICT_KILL_ZONE_LONDON"
	ConfKillZoneNewYork         Confirmation = "ICT_KILL_ZONE_NEW_YORK"
	ConfKillZoneAsian           Confirmation = "ICT_KILL_ZONE_ASIAN"
	ConfStrongSupport           Confirmation = "STRONG_SUPPORT_LEVEL"
	ConfStrongResistance        Confirmation = "STRONG_RESISTANCE_LEVEL"
	ConfFibGoldenRatio          Confirmation = "FIBONACCI_GOLDEN_RATIO"
	ConfStructureBreak          Confirmation = "MARKET_STRUCTURE_BREAK"
	ConfLiquiditySweep          Confirmation = "LIQUIDITY_SWEEP"
	ConfVolumeConfirmation      Confirmation = "VOLUME_CONFIRMATION"
	ConfDivergence              Confirmation = "DIVERGENCE_DETECTED"
	ConfCandlestickPattern      Confirmation = "CANDLESTICK_PATTERN"
)

// confirmationWeights ranks each confirmation by importance. Unknown labels
// fall back to 0.5.
var confirmationWeights = map[Confirmation]float64{
	ConfMultiTimeframeAlignment: 1.5,
	ConfTrendAligned:            1.3,
	ConfMomentumStrong:          1.0,
	ConfBullishOrderBlock:       1.4,
	ConfBearishOrderBlock:       1.4,
	ConfBullishFVG:              1.2,
	ConfBearishFVG:              1.2,
	ConfKillZoneLondon:          1.3,
	ConfKillZoneNewYork:         1.3,
	ConfKillZoneAsian:           0.8,
	ConfStrongSupport:           1.2,
	ConfStrongResistance:        1.2,
	ConfFibGoldenRatio:          1.1,
	ConfStructureBreak:          1.3,
	ConfLiquiditySweep:          1.2,
	ConfVolumeConfirmation:      1.0,
	ConfDivergence:              1.1,
	ConfCandlestickPattern:      0.9,
}

const defaultConfirmationWeight = 0.5

// Weight returns the importance weight of a confirmation.
func (c Confirmation) Weight() float64 {
	if w, ok := confirmationWeights[c]; ok {
		return w
	}
	return defaultConfirmationWeight
}

// WeightedConfirmation pairs a confirmation with its resolved weight.
type WeightedConfirmation struct {
	Name       Confirmation `json:"name"`
	Weight     float64      `json:"weight"`
	Importance string       `json:"importance,omitempty"`
}

// QualityChecks are the structural sanity checks run on a confirmation set.
type QualityChecks struct {
	HasICTConcept        bool `json:"has_ict_concept"`
	HasTrend             bool `json:"has_trend"`
	HasStructure         bool `json:"has_structure"`
	DirectionalAlignment bool `json:"directional_alignment"`
	Passed               bool `json:"passed"`
}

// Validation is the outcome of weighing a confirmation set.
type Validation struct {
	IsValid       bool                   `json:"is_valid"`
	Count         int                    `json:"count"`
	WeightedScore float64                `json:"weighted_score"`
	Confidence    float64                `json:"confidence"`
	Confirmations []WeightedConfirmation `json:"confirmations"`
	Quality       QualityChecks          `json:"quality_checks"`
	Reasons       []string               `json:"reasons"`
}

// ConfirmationSystem validates that enough independent evidence backs a
// direction before a signal is allowed through.
type ConfirmationSystem struct {
	minConfirmations int
	minWeightedScore float64
}

func NewConfirmationSystem() *ConfirmationSystem {
	return &ConfirmationSystem{
		minConfirmations: 3,
		minWeightedScore: 3.0,
	}
}

// Validate weighs the confirmations and runs the quality checks. Passing
// needs three unique confirmations, a weighted score of 3.0, and at least
// two of the four quality checks.
func (s *ConfirmationSystem) Validate(confirmations []Confirmation, direction market.Direction) Validation {
	if len(confirmations) == 0 {
		return Validation{Reasons: []string{"no confirmations found"}}
	}

	var score float64
	weighted := make([]WeightedConfirmation, 0, len(confirmations))
	unique := make(map[Confirmation]bool)

	for _, c := range confirmations {
		w := c.Weight()
		score += w
		weighted = append(weighted, WeightedConfirmation{Name: c, Weight: w})
		unique[c] = true
	}

	quality := s.qualityChecks(confirmations, direction)

	v := Validation{
		Count:         len(unique),
		WeightedScore: score,
		Confidence:    minFloat(score/10.0, 1.0),
		Confirmations: weighted,
		Quality:       quality,
	}
	v.IsValid = v.Count >= s.minConfirmations &&
		score >= s.minWeightedScore &&
		quality.Passed
	v.Reasons = s.reasons(v)

	return v
}

func (s *ConfirmationSystem) qualityChecks(confirmations []Confirmation, direction market.Direction) QualityChecks {
	var checks QualityChecks

	var bullish, bearish int
	for _, c := range confirmations {
		name := string(c)
		if containsAny(name, "ICT", "ORDER_BLOCK", "FVG", "KILL_ZONE", "LIQUIDITY") {
			checks.HasICTConcept = true
		}
		if containsAny(name, "TREND", "TIMEFRAME") {
			checks.HasTrend = true
		}
		if containsAny(name, "SUPPORT", "RESISTANCE", "FIBONACCI", "STRUCTURE") {
			checks.HasStructure = true
		}
		if containsAny(name, "BULLISH", "SUPPORT") {
			bullish++
		}
		if containsAny(name, "BEARISH", "RESISTANCE") {
			bearish++
		}
	}

	if direction == market.DirectionBuy {
		checks.DirectionalAlignment = bullish > bearish
	} else {
		checks.DirectionalAlignment = bearish > bullish
	}

	passed := 0
	for _, ok := range []bool{checks.HasICTConcept, checks.HasTrend, checks.HasStructure, checks.DirectionalAlignment} {
		if ok {
			passed++
		}
	}
	checks.Passed = passed >= 2

	return checks
}

func (s *ConfirmationSystem) reasons(v Validation) []string {
	var reasons []string
	if v.IsValid {
		reasons = append(reasons,
			fmt.Sprintf("%d strong confirmations detected", v.Count),
			fmt.Sprintf("weighted score %.2f/10", v.WeightedScore))
		if v.Quality.HasICTConcept {
			reasons = append(reasons, "ICT concepts confirmed")
		}
		if v.Quality.HasTrend {
			reasons = append(reasons, "trend alignment confirmed")
		}
		if v.Quality.HasStructure {
			reasons = append(reasons, "market structure confirmed")
		}
		return reasons
	}

	if v.Count < s.minConfirmations {
		reasons = append(reasons, fmt.Sprintf("insufficient confirmations: %d/%d", v.Count, s.minConfirmations))
	}
	if v.WeightedScore < s.minWeightedScore {
		reasons = append(reasons, fmt.Sprintf("low weighted score: %.2f/%.2f", v.WeightedScore, s.minWeightedScore))
	}
	if !v.Quality.Passed {
		reasons = append(reasons, "quality checks failed")
	}
	if !v.Quality.DirectionalAlignment {
		reasons = append(reasons, "conflicting directional signals")
	}
	return reasons
}

// Rank orders confirmations by weight, heaviest first.
func (s *ConfirmationSystem) Rank(confirmations []Confirmation) []WeightedConfirmation {
	ranked := make([]WeightedConfirmation, 0, len(confirmations))
	for _, c := range confirmations {
		w := c.Weight()
		ranked = append(ranked, WeightedConfirmation{
			Name:       c,
			Weight:     w,
			Importance: importanceLevel(w),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Weight > ranked[j].Weight })
	return ranked
}

// Missing suggests up to five absent confirmations relevant to the
// direction, heaviest first.
func (s *ConfirmationSystem) Missing(confirmations []Confirmation, direction market.Direction) []Confirmation {
	present := make(map[Confirmation]bool, len(confirmations))
	for _, c := range confirmations {
		present[c] = true
	}

	var missing []Confirmation
	for c := range confirmationWeights {
		if present[c] {
			continue
		}
		name := string(c)
		if direction == market.DirectionBuy {
			if containsAny(name, "BULLISH", "SUPPORT", "TREND") {
				missing = append(missing, c)
			}
		} else {
			if containsAny(name, "BEARISH", "RESISTANCE", "TREND") {
				missing = append(missing, c)
			}
		}
	}

	sort.SliceStable(missing, func(i, j int) bool {
		wi, wj := missing[i].Weight(), missing[j].Weight()
		if wi != wj {
			return wi > wj
		}
		return missing[i] < missing[j]
	})
	if len(missing) > 5 {
		missing = missing[:5]
	}
	return missing
}

func importanceLevel(weight float64) string {
	switch {
	case weight >= 1.3:
		return "CRITICAL"
	case weight >= 1.0:
		return "HIGH"
	case weight >= 0.8:
		return "MEDIUM"
	}
	return "LOW"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
